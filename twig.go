package twig

import (
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3D vector used for positions, rotations (Euler XYZ, radians),
// directions, and scale throughout the API.
type Vec3 = mgl64.Vec3

// Vec2 is a 2D point used by glyph outlines.
type Vec2 struct {
	X, Y float64
}

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default material tint.
var ColorWhite = Color{1, 1, 1, 1}

// Colors used by the default materials.
var (
	ColorBark  = Color{0x8B / 255.0, 0x45 / 255.0, 0x13 / 255.0, 1}
	ColorGrass = Color{0.36, 0.62, 0.25, 1}
	ColorLeaf  = Color{0x22 / 255.0, 0x8B / 255.0, 0x22 / 255.0, 1}
)

// Range is a general-purpose min/max range.
// Used by the leaf burst and the choreography randomizers.
type Range struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

// Random returns a random float64 in [Min, Max) drawn from rng.
// A nil rng uses the package-level source.
func (r Range) Random(rng *rand.Rand) float64 {
	if r.Min == r.Max {
		return r.Min
	}
	if rng == nil {
		return r.Min + rand.Float64()*(r.Max-r.Min)
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// Role tags what a child node of an entity is for. Lookups use the role
// rather than guessing from geometry size.
type Role uint8

const (
	RoleNone   Role = iota // untagged node
	RoleGlyph              // the letter glyph mesh
	RoleBranch             // the vertical branch tube
	RoleKnot               // the helical knot tube wrapped around the branch
	RoleLeaf               // transient burst particle
)

// String returns the role name used in logs.
func (r Role) String() string {
	switch r {
	case RoleGlyph:
		return "glyph"
	case RoleBranch:
		return "branch"
	case RoleKnot:
		return "knot"
	case RoleLeaf:
		return "leaf"
	default:
		return "none"
	}
}

// Attr selects which node attribute a clip animates.
type Attr uint8

const (
	AttrPosition Attr = iota // Node.Position
	AttrRotation             // Node.Rotation (Euler XYZ)
	AttrScale                // Node.Scale
	AttrOpacity              // Node.Opacity (only the X component is used)
	AttrNone                 // timer clip with no target attribute
)

// String returns the attribute name used in logs.
func (a Attr) String() string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrRotation:
		return "rotation"
	case AttrScale:
		return "scale"
	case AttrOpacity:
		return "opacity"
	default:
		return "none"
	}
}

// Axis is a bitmask of vector components. Values can be combined with
// bitwise OR (e.g. AxisX | AxisZ).
type Axis uint8

const (
	AxisX Axis = 1 << iota
	AxisY
	AxisZ

	AxisXY  = AxisX | AxisY
	AxisXYZ = AxisX | AxisY | AxisZ
)

// Has reports whether component i (0=x, 1=y, 2=z) is in the mask.
func (a Axis) Has(i int) bool {
	return a&(1<<uint(i)) != 0
}
