package twig

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

const frame = 1.0 / 60

func step(s *Scene, frames int) {
	for i := 0; i < frames; i++ {
		s.Update(frame)
	}
}

func newTestChoreographer(t *testing.T, phrase string) (*Scene, *Choreographer, []*Entity) {
	t.Helper()
	scene, f := newTestFactory(t)
	entities, err := f.CreatePhrase(phrase, Vec3{}, 3)
	if err != nil {
		t.Fatalf("CreatePhrase: %v", err)
	}
	c := NewChoreographer(scene, DefaultConfig(), rand.New(rand.NewPCG(1, 2)))
	return scene, c, entities
}

func leafNodes(s *Scene) []*Node {
	var out []*Node
	for _, n := range s.Root().Children() {
		if n.Role == RoleLeaf {
			out = append(out, n)
		}
	}
	return out
}

func TestDropLandsAndBursts(t *testing.T) {
	scene, c, entities := newTestChoreographer(t, "A")
	e := entities[0]

	c.Drop(e)
	if y := e.Position().Y(); y != 15 {
		t.Fatalf("y after Drop = %v, want ceiling 15", y)
	}

	// power2.in at half time covers an eighth of the distance.
	step(scene, 36)
	if y := e.Position().Y(); math.Abs(y-13.125) > 1e-3 {
		t.Errorf("y at 0.6s = %v, want 13.125", y)
	}

	step(scene, 35)
	if c.Leaves().Bursts() != 0 {
		t.Fatal("burst fired before landing")
	}

	step(scene, 1)
	if y := e.Position().Y(); math.Abs(y) > 1e-9 {
		t.Errorf("y after 1.2s = %v, want 0", y)
	}
	if got := c.Leaves().Bursts(); got != 1 {
		t.Errorf("Bursts = %d, want 1", got)
	}
	if got := c.Leaves().Spawned(); got != 30 {
		t.Errorf("Spawned = %d, want 30", got)
	}
	leaves := leafNodes(scene)
	if len(leaves) != 30 {
		t.Fatalf("leaf nodes = %d, want 30", len(leaves))
	}
	for _, l := range leaves {
		if l.Position != (Vec3{}) {
			t.Fatalf("leaf spawned at %v, want landing point", l.Position)
		}
	}

	// Landing never bursts twice.
	step(scene, 120)
	if got := c.Leaves().Bursts(); got != 1 {
		t.Errorf("Bursts after settling = %d, want 1", got)
	}
}

func TestDropStartsWobbleThenSway(t *testing.T) {
	scene, c, entities := newTestChoreographer(t, "A")
	e := entities[0]
	c.Drop(e)
	step(scene, 72)

	var wobbling bool
	for _, clip := range scene.Sequencer().Active() {
		if clip.Spec().Name == "letter-A/wobble" {
			wobbling = true
		}
	}
	if !wobbling {
		t.Fatal("wobble should start on landing")
	}

	// Wobble (2s) settles, then the sway lead-in (0.8s) hands off to the
	// endless sway.
	step(scene, 120+48+2)
	var sway *Clip
	for _, clip := range scene.Sequencer().Active() {
		if clip.Spec().Name == "letter-A/sway" {
			sway = clip
		}
	}
	if sway == nil {
		t.Fatal("sway should be running")
	}
	if sway.Spec().Repeat != RepeatForever || !sway.Spec().Yoyo {
		t.Error("sway should yoyo forever")
	}
	amp := math.Abs(sway.Spec().To.Z())
	if amp < 0.02 || amp > 0.06 {
		t.Errorf("sway amplitude = %v, want within [0.02, 0.06]", amp)
	}

	step(scene, 600)
	if z := math.Abs(e.Root.Rotation.Z()); z > amp+1e-6 {
		t.Errorf("rotation z = %v exceeds amplitude %v", z, amp)
	}
	if x := e.Root.Rotation.X(); math.Abs(x) > 1e-9 {
		t.Errorf("rotation x = %v, want wobble settled at 0", x)
	}
}

func TestUntieRemovesKnot(t *testing.T) {
	scene, c, entities := newTestChoreographer(t, "A")
	e := entities[0]
	knot := e.Knot()
	startY := knot.Position.Y()

	if !c.Untie("letter-A") {
		t.Fatal("Untie should schedule")
	}
	step(scene, 45)
	if knot.Opacity <= 0 || knot.Opacity >= 1 {
		t.Errorf("knot opacity mid-untie = %v", knot.Opacity)
	}
	if knot.Position.Y() <= startY {
		t.Errorf("knot y = %v, want rising above %v", knot.Position.Y(), startY)
	}

	step(scene, 45)
	if !knot.IsDisposed() {
		t.Fatal("knot should be disposed after untie")
	}
	if e.Root.NumChildren() != 2 {
		t.Errorf("children = %d, want 2", e.Root.NumChildren())
	}
	for _, child := range e.Root.Children() {
		if child == knot {
			t.Error("knot still in child list")
		}
	}
	if _, err := scene.Registry().ChildByRole(e, RoleKnot); !errors.Is(err, ErrNotFound) {
		t.Errorf("ChildByRole(knot) err = %v, want ErrNotFound", err)
	}
	if c.Untie("letter-A") {
		t.Error("second Untie should be skipped")
	}
}

func TestUntieMissingSkips(t *testing.T) {
	scene, c, _ := newTestChoreographer(t, "A")
	if c.Untie("letter-Z") {
		t.Error("Untie on a missing entity should report false")
	}

	c.ScheduleUntie([]string{"letter-Z", "letter-A"}, 0.5)
	step(scene, 30+90)
	if e, _ := scene.Registry().Lookup("letter-A"); e.Knot() != nil {
		t.Error("letter-A knot should be untied despite the missing name")
	}
}

func TestUntieTwiceBeforeFinishing(t *testing.T) {
	scene, c, entities := newTestChoreographer(t, "A")
	c.Untie("letter-A")
	step(scene, 10)
	c.Untie("letter-A")
	step(scene, 200)
	if entities[0].Knot() != nil || entities[0].Root.NumChildren() != 2 {
		t.Error("knot should be removed exactly once")
	}
}

func TestRelocate(t *testing.T) {
	scene, c, entities := newTestChoreographer(t, "HA")
	h, a := entities[0], entities[1]

	if n := c.Relocate([]*Entity{h}, "a"); n != 1 {
		t.Fatalf("Relocate = %d, want 1", n)
	}
	step(scene, 121)
	assertVec(t, "H position", h.Position(), a.Position())
	if spin := h.Root.Rotation.Y(); spin < math.Pi-1e-3 || spin > 3*math.Pi+1e-3 {
		t.Errorf("spin = %v, want within [π, 3π]", spin)
	}
}

func TestRelocateNoCandidates(t *testing.T) {
	scene, c, entities := newTestChoreographer(t, "HA")
	if n := c.Relocate(entities[:1], "XYZ"); n != 0 {
		t.Errorf("Relocate = %d, want 0", n)
	}
	if scene.Sequencer().Len() != 0 {
		t.Error("no clips should be scheduled")
	}
}

func TestPlay(t *testing.T) {
	scene, c, entities := newTestChoreographer(t, "HAPPY")
	sink := &recordingSink{}
	scene.Sequencer().SetEventSink(sink)

	homes := make(map[string]Vec3)
	for _, e := range entities {
		homes[e.Name] = e.Home
	}

	c.Play(entities, "YAY")
	step(scene, 660)

	if got := c.Leaves().Bursts(); got != 5 {
		t.Errorf("Bursts = %d, want 5", got)
	}
	if got := c.Leaves().AliveCount(); got != 0 {
		t.Errorf("AliveCount = %d, want 0 once leaves settle", got)
	}
	if len(leafNodes(scene)) != 0 {
		t.Error("leaf nodes should destroy themselves")
	}

	knotsFinished := 0
	for _, ev := range sink.events {
		if ev.Type == ClipFinished && ev.Target != nil && ev.Target.Role == RoleKnot && ev.Attr == AttrPosition {
			knotsFinished++
		}
	}
	if knotsFinished != 5 {
		t.Errorf("knot untie clips finished = %d, want 5", knotsFinished)
	}

	for _, e := range entities {
		if e.Knot() != nil {
			t.Errorf("%s still has a knot", e.Name)
		}
		switch e.Char {
		case 'A', 'Y':
			assertVec(t, e.Name+" stays home", e.Position(), homes[e.Name])
		default:
			pos := e.Position()
			near := func(v Vec3) bool { return pos.Sub(v).Len() < 1e-6 }
			if !near(homes["letter-A"]) && !near(homes["letter-Y"]) {
				t.Errorf("%s at %v, want on letter-A or letter-Y", e.Name, pos)
			}
		}
	}
}
