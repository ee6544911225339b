package twig

import (
	"errors"

	"github.com/ojrac/opensimplex-go"
)

// ErrAlreadyDisplaced is returned when noise displacement is applied to a
// mesh that has already been displaced. Noise must read raw coordinates.
var ErrAlreadyDisplaced = errors.New("twig: mesh already displaced")

// Noise is a coherent 3D gradient-noise function, deterministic per input and
// seed, with output in approximately [-1, 1].
type Noise interface {
	Eval3(x, y, z float64) float64
}

// NewNoise returns OpenSimplex noise seeded with seed.
func NewNoise(seed int64) Noise {
	return opensimplex.New(seed)
}

// Displacement perturbs positions with a single noise sample per vertex. The
// same offset is added to every component in Axes.
type Displacement struct {
	Scale     float64 `toml:"scale"`
	Amplitude float64 `toml:"amplitude"`
	Axes      Axis    `toml:"axes"`
}

// Displacement policies. Structural elements get isotropic noise; wrapped
// decorative elements keep their axial profile (z untouched).
var (
	BranchDisplacement = Displacement{Scale: 0.5, Amplitude: 0.08, Axes: AxisXYZ}
	KnotDisplacement   = Displacement{Scale: 1.0, Amplitude: 0.04, Axes: AxisXY}
)

// IsZero reports whether applying d would leave positions unchanged.
func (d Displacement) IsZero() bool {
	return d.Amplitude == 0 || d.Axes == 0
}

// Offset returns the scalar noise offset for p.
func (d Displacement) Offset(p Vec3, n Noise) float64 {
	return n.Eval3(p[0]*d.Scale, p[1]*d.Scale, p[2]*d.Scale) * d.Amplitude
}

// Apply returns p displaced by d. Amplitude 0 returns p unchanged.
func (d Displacement) Apply(p Vec3, n Noise) Vec3 {
	if d.IsZero() || n == nil {
		return p
	}
	off := d.Offset(p, n)
	for k := 0; k < 3; k++ {
		if d.Axes.Has(k) {
			p[k] += off
		}
	}
	return p
}

// Displace applies d to every vertex of m exactly once. A second call on the
// same mesh returns ErrAlreadyDisplaced and leaves the mesh untouched.
// Normals are recomputed afterwards.
func (d Displacement) Displace(m *Mesh, n Noise) error {
	if m.displaced {
		return ErrAlreadyDisplaced
	}
	m.displaced = true
	if d.IsZero() || n == nil {
		return nil
	}
	for i, p := range m.Positions {
		m.Positions[i] = d.Apply(p, n)
	}
	m.aabbDirty = true
	m.ComputeNormals()
	return nil
}
