package twig

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Entity is a named letter decoration: a root group owning a glyph, a
// branch, and (until untied) a knot.
type Entity struct {
	ID   uuid.UUID
	Name string
	Char rune
	// Home is the position the entity was created at; drops land here.
	Home Vec3
	Root *Node

	scene *Scene
}

// Glyph returns the glyph child, or nil.
func (e *Entity) Glyph() *Node { return e.Root.FindChild(HasRole(RoleGlyph)) }

// Branch returns the branch child, or nil.
func (e *Entity) Branch() *Node { return e.Root.FindChild(HasRole(RoleBranch)) }

// Knot returns the knot child, or nil once it has been removed.
func (e *Entity) Knot() *Node { return e.Root.FindChild(HasRole(RoleKnot)) }

// Position returns the root's local position.
func (e *Entity) Position() Vec3 { return e.Root.Position }

// RemoveKnot cancels clips on the knot, detaches it, and disposes it.
// Reports whether there was a knot to remove.
func (e *Entity) RemoveKnot() bool {
	k := e.Knot()
	if k == nil {
		return false
	}
	e.scene.Destroy(k)
	logger.Debug("knot removed", "entity", e.Name)
	return true
}

// Destroy unregisters the entity and disposes its whole subtree.
func (e *Entity) Destroy() {
	e.scene.registry.Unregister(e.Name)
	e.scene.Destroy(e.Root)
}

// tag stamps e.ID onto every node of the entity.
func (e *Entity) tag() {
	e.Root.Walk(func(n *Node) { n.Entity = e.ID })
}

// LetterName returns the registry name for char. A negative index yields
// "letter-<C>"; otherwise "letter-<C>-<index>" for repeated characters.
func LetterName(char rune, index int) string {
	c := string(unicode.ToUpper(char))
	if index < 0 {
		return "letter-" + c
	}
	return fmt.Sprintf("letter-%s-%d", c, index)
}

// Factory builds letter entities and registers them with its scene.
type Factory struct {
	scene  *Scene
	glyphs GlyphSource
	noise  Noise
	cfg    GeometryConfig
}

// NewFactory creates a factory. glyphs and noise are required.
func NewFactory(scene *Scene, glyphs GlyphSource, noise Noise, cfg GeometryConfig) *Factory {
	return &Factory{scene: scene, glyphs: glyphs, noise: noise, cfg: cfg}
}

// CreateLetter builds the entity "letter-<C>" at base.
func (f *Factory) CreateLetter(char rune, base Vec3) (*Entity, error) {
	return f.CreateNamedLetter(LetterName(char, -1), char, base)
}

// CreateNamedLetter builds a glyph, a branch, and a knot under one root
// group named name, registers it, and adds it to the scene. No animation is
// scheduled. On error nothing is registered and built meshes are released.
func (f *Factory) CreateNamedLetter(name string, char rune, base Vec3) (*Entity, error) {
	if _, err := f.scene.registry.Lookup(name); err == nil {
		return nil, fmt.Errorf("create %q: %w", name, ErrDuplicateName)
	}

	root := NewGroup(name)
	root.Position = base

	glyph, err := f.buildGlyph(char)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", name, err)
	}
	root.AddChild(glyph)

	branch, err := f.buildBranch()
	if err != nil {
		root.Dispose()
		return nil, fmt.Errorf("create %q: %w", name, err)
	}
	root.AddChild(branch)

	knot, err := f.buildKnot()
	if err != nil {
		root.Dispose()
		return nil, fmt.Errorf("create %q: %w", name, err)
	}
	root.AddChild(knot)

	e := &Entity{
		ID:    uuid.New(),
		Name:  name,
		Char:  unicode.ToUpper(char),
		Home:  base,
		Root:  root,
		scene: f.scene,
	}
	e.tag()
	if err := f.scene.registry.Register(e); err != nil {
		root.Dispose()
		return nil, fmt.Errorf("create %q: %w", name, err)
	}
	f.scene.Add(root)
	logger.Debug("entity created", "entity", name, "id", e.ID,
		"glyph_verts", glyph.Mesh.VertexCount(),
		"branch_verts", branch.Mesh.VertexCount(),
		"knot_verts", knot.Mesh.VertexCount())
	return e, nil
}

// CreatePhrase lays out one entity per non-space character, spacing apart
// along x and centered on origin. Characters that occur more than once are
// named with their occurrence index ("letter-P-0", "letter-P-1").
func (f *Factory) CreatePhrase(phrase string, origin Vec3, spacing float64) ([]*Entity, error) {
	runes := []rune(strings.ToUpper(phrase))
	counts := make(map[rune]int)
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			counts[r]++
		}
	}

	seen := make(map[rune]int)
	width := float64(len(runes)-1) * spacing
	var out []*Entity
	for i, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		idx := -1
		if counts[r] > 1 {
			idx = seen[r]
			seen[r]++
		}
		pos := origin.Add(Vec3{float64(i)*spacing - width/2, 0, 0})
		e, err := f.CreateNamedLetter(LetterName(r, idx), r, pos)
		if errors.Is(err, ErrNoGlyph) {
			logger.Warn("skipping character without glyph", "char", string(r))
			continue
		}
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *Factory) buildGlyph(char rune) (*Node, error) {
	contours, err := f.glyphs.Outline(char)
	if err != nil {
		return nil, err
	}
	m, err := BuildGlyph(contours, f.cfg.Glyph)
	if err != nil {
		return nil, fmt.Errorf("glyph %q: %w", char, err)
	}
	return NewMeshNode("glyph", RoleGlyph, m, MaterialGrass), nil
}

func (f *Factory) buildBranch() (*Node, error) {
	m, err := BuildTube(BranchPath(f.cfg), f.cfg.Branch.Tube, f.cfg.Branch.Displacement, f.noise)
	if err != nil {
		return nil, fmt.Errorf("branch: %w", err)
	}
	return NewMeshNode("branch", RoleBranch, m, MaterialBark), nil
}

func (f *Factory) buildKnot() (*Node, error) {
	m, err := BuildTube(KnotPath(f.cfg.Knot), f.cfg.Knot.Tube, f.cfg.Knot.Displacement, f.noise)
	if err != nil {
		return nil, fmt.Errorf("knot: %w", err)
	}
	n := NewMeshNode("knot", RoleKnot, m, MaterialBark)
	n.Rotation = f.cfg.Knot.Rotation
	n.Position = f.cfg.Knot.Offset
	return n, nil
}

// BranchPath is the vertical branch path in entity space:
// ceiling, ceiling-Drop, ground.
func BranchPath(cfg GeometryConfig) Path {
	x := cfg.Branch.X
	return Path{Points: []Vec3{
		{x, cfg.Ceiling, 0},
		{x, cfg.Ceiling - cfg.Branch.Drop, 0},
		{x, 0, 0},
	}}
}

// KnotPath is a helix of cfg.Points points around the z axis, centered
// on z = CenterZ.
func KnotPath(cfg KnotConfig) Path {
	n := cfg.Points
	if n < 2 {
		n = 2
	}
	pts := make([]Vec3, n)
	for i := range pts {
		t := float64(i) / float64(n-1)
		angle := cfg.Loops * 2 * math.Pi * t
		sin, cos := math.Sincos(angle)
		pts[i] = Vec3{
			cfg.Radius * cos,
			cfg.Radius * sin,
			cfg.CenterZ + (t-0.5)*cfg.Height,
		}
	}
	return Path{Points: pts}
}
