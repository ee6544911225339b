package twig

import (
	"errors"
	"strings"
	"testing"
)

func newTestFactory(t *testing.T) (*Scene, *Factory) {
	t.Helper()
	glyphs, err := DefaultGlyphs(4)
	if err != nil {
		t.Fatalf("DefaultGlyphs: %v", err)
	}
	scene := NewScene()
	return scene, NewFactory(scene, glyphs, NewNoise(1), DefaultConfig().Geometry)
}

func TestLetterName(t *testing.T) {
	tests := []struct {
		char  rune
		index int
		want  string
	}{
		{'A', -1, "letter-A"},
		{'a', -1, "letter-A"},
		{'P', 0, "letter-P-0"},
		{'p', 1, "letter-P-1"},
	}
	for _, tt := range tests {
		if got := LetterName(tt.char, tt.index); got != tt.want {
			t.Errorf("LetterName(%q, %d) = %q, want %q", tt.char, tt.index, got, tt.want)
		}
	}
}

func TestCreateLetter(t *testing.T) {
	scene, f := newTestFactory(t)
	e, err := f.CreateLetter('a', Vec3{2, 0, 0})
	if err != nil {
		t.Fatalf("CreateLetter: %v", err)
	}

	if e.Name != "letter-A" || e.Char != 'A' {
		t.Errorf("Name/Char = %q/%q", e.Name, e.Char)
	}
	if got, _ := scene.Registry().Lookup("letter-A"); got != e {
		t.Error("entity should be registered")
	}
	if e.Root.Parent != scene.Root() {
		t.Error("entity root should be attached to the scene root")
	}
	if e.Root.NumChildren() != 3 {
		t.Fatalf("children = %d, want 3", e.Root.NumChildren())
	}
	if e.Position() != (Vec3{2, 0, 0}) || e.Home != (Vec3{2, 0, 0}) {
		t.Errorf("Position/Home = %v/%v", e.Position(), e.Home)
	}

	if got := e.Branch().Mesh.VertexCount(); got != 61*16 {
		t.Errorf("branch vertices = %d, want %d", got, 61*16)
	}
	if got := e.Knot().Mesh.VertexCount(); got != 801*20 {
		t.Errorf("knot vertices = %d, want %d", got, 801*20)
	}
	if e.Glyph().Material != MaterialGrass || e.Knot().Material != MaterialBark {
		t.Error("unexpected materials")
	}

	knot := e.Knot()
	cfg := DefaultConfig().Geometry.Knot
	if knot.Rotation != cfg.Rotation || knot.Position != cfg.Offset {
		t.Errorf("knot transform = %v/%v, want %v/%v", knot.Rotation, knot.Position, cfg.Rotation, cfg.Offset)
	}

	// The knot is the only child dense enough to match.
	if got := e.Root.FindChild(VertexCountAbove(10000)); got != knot {
		t.Errorf("VertexCountAbove(10000) = %v, want knot", got)
	}
}

func TestCreateLetterDuplicate(t *testing.T) {
	scene, f := newTestFactory(t)
	if _, err := f.CreateLetter('A', Vec3{}); err != nil {
		t.Fatalf("CreateLetter: %v", err)
	}
	_, err := f.CreateLetter('A', Vec3{5, 0, 0})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("err = %v, want ErrDuplicateName", err)
	}
	if scene.Root().NumChildren() != 1 || scene.Registry().Len() != 1 {
		t.Error("duplicate should not be added")
	}
}

func TestCreateLetterNoGlyph(t *testing.T) {
	scene := NewScene()
	f := NewFactory(scene, stubGlyphs{contours: squareWithHole()}, NewNoise(1), DefaultConfig().Geometry)

	if _, err := f.CreateLetter(' ', Vec3{}); !errors.Is(err, ErrNoGlyph) {
		t.Fatalf("err = %v, want ErrNoGlyph", err)
	}
	if scene.Registry().Len() != 0 || scene.Root().NumChildren() != 0 {
		t.Error("failed create should leave the scene untouched")
	}
}

func TestCreatePhrase(t *testing.T) {
	scene, f := newTestFactory(t)
	entities, err := f.CreatePhrase("happy", Vec3{}, 3)
	if err != nil {
		t.Fatalf("CreatePhrase: %v", err)
	}

	want := []string{"letter-H", "letter-A", "letter-P-0", "letter-P-1", "letter-Y"}
	if len(entities) != len(want) {
		t.Fatalf("got %d entities, want %d", len(entities), len(want))
	}
	for i, e := range entities {
		if e.Name != want[i] {
			t.Errorf("entity %d = %q, want %q", i, e.Name, want[i])
		}
		if x := float64(i)*3 - 6; e.Position().X() != x {
			t.Errorf("%s x = %v, want %v", e.Name, e.Position().X(), x)
		}
	}
	if got := strings.Join(scene.Registry().Names(), ","); got != strings.Join(want, ",") {
		t.Errorf("registry = %s", got)
	}
}

func TestCreatePhraseSkipsSpaces(t *testing.T) {
	scene := NewScene()
	f := NewFactory(scene, stubGlyphs{contours: squareWithHole()}, NewNoise(1), DefaultConfig().Geometry)

	entities, err := f.CreatePhrase("HI YA", Vec3{}, 2)
	if err != nil {
		t.Fatalf("CreatePhrase: %v", err)
	}
	if len(entities) != 4 {
		t.Fatalf("got %d entities, want 4", len(entities))
	}
	// Spaces keep their slot in the layout.
	if x := entities[2].Position().X(); x != 2 {
		t.Errorf("letter-Y x = %v, want 2", x)
	}
}

func TestEntityRemoveKnot(t *testing.T) {
	scene, f := newTestFactory(t)
	e, err := f.CreateLetter('A', Vec3{})
	if err != nil {
		t.Fatalf("CreateLetter: %v", err)
	}
	knot := e.Knot()

	if !e.RemoveKnot() {
		t.Fatal("RemoveKnot should report a removal")
	}
	if !knot.IsDisposed() {
		t.Error("knot should be disposed")
	}
	if e.Root.NumChildren() != 2 {
		t.Errorf("children = %d, want 2", e.Root.NumChildren())
	}
	if _, err := scene.Registry().ChildByRole(e, RoleKnot); !errors.Is(err, ErrNotFound) {
		t.Errorf("ChildByRole(knot) err = %v, want ErrNotFound", err)
	}
	if e.RemoveKnot() {
		t.Error("second RemoveKnot should report nothing removed")
	}
}

func TestEntityDestroy(t *testing.T) {
	scene, f := newTestFactory(t)
	e, err := f.CreateLetter('A', Vec3{})
	if err != nil {
		t.Fatalf("CreateLetter: %v", err)
	}
	glyph := e.Glyph()

	e.Destroy()
	if _, err := scene.Registry().Lookup("letter-A"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup err = %v, want ErrNotFound", err)
	}
	if !e.Root.IsDisposed() || !glyph.IsDisposed() {
		t.Error("entity subtree should be disposed")
	}
	if scene.Root().NumChildren() != 0 {
		t.Error("scene root should be empty")
	}

	// The name is free again.
	if _, err := f.CreateLetter('A', Vec3{}); err != nil {
		t.Errorf("re-create after destroy: %v", err)
	}
}

func TestEntityIDTagsNodesAndEvents(t *testing.T) {
	scene, f := newTestFactory(t)
	e, err := f.CreateLetter('A', Vec3{})
	if err != nil {
		t.Fatalf("CreateLetter: %v", err)
	}
	e.Root.Walk(func(n *Node) {
		if n.Entity != e.ID {
			t.Errorf("node %q Entity = %v, want %v", n.Name, n.Entity, e.ID)
		}
	})
	if got, err := scene.Registry().LookupID(e.ID); err != nil || got != e {
		t.Errorf("LookupID = %v, %v", got, err)
	}

	sink := &recordingSink{}
	seq := scene.Sequencer()
	seq.SetEventSink(sink)
	seq.Add(ClipSpec{Target: e.Knot(), Attr: AttrOpacity, Duration: 1})
	seq.Tick(0.1)
	e.RemoveKnot()

	if len(sink.events) != 2 || sink.events[1].Type != ClipAborted {
		t.Fatalf("events = %+v, want started then aborted", sink.events)
	}
	for _, ev := range sink.events {
		if ev.Entity != e.ID {
			t.Errorf("%v event Entity = %v, want %v", ev.Type, ev.Entity, e.ID)
		}
	}
}

func TestKnotPath(t *testing.T) {
	cfg := DefaultConfig().Geometry.Knot
	p := KnotPath(cfg)
	if len(p.Points) != cfg.Points {
		t.Fatalf("points = %d, want %d", len(p.Points), cfg.Points)
	}
	first, last := p.Points[0], p.Points[len(p.Points)-1]
	assertNear(t, "first z", first.Z(), cfg.CenterZ-cfg.Height/2)
	assertNear(t, "last z", last.Z(), cfg.CenterZ+cfg.Height/2)
	for i, pt := range p.Points {
		r := Vec3{pt.X(), pt.Y(), 0}.Len()
		if r < cfg.Radius-epsilon || r > cfg.Radius+epsilon {
			t.Fatalf("point %d radius = %v, want %v", i, r, cfg.Radius)
		}
	}
}

func TestBranchPath(t *testing.T) {
	cfg := DefaultConfig().Geometry
	p := BranchPath(cfg)
	want := []Vec3{{-0.1, 15, 0}, {-0.1, 11, 0}, {-0.1, 0, 0}}
	for i := range want {
		assertVec(t, "point", p.Points[i], want[i])
	}
}
