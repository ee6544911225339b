package view

import (
	"testing"

	"github.com/phanxgames/twig"
)

func newTestRenderer() (*Renderer, *twig.Scene) {
	cam := NewCamera(twig.Vec3{0, 0, 10}, twig.Vec3{})
	r := NewRenderer(cam)
	s := twig.NewScene()
	s.SetRenderer(r)
	s.SetMeshFactory(r)
	return r, s
}

func TestRendererMeshHandles(t *testing.T) {
	r, s := newTestRenderer()
	leaf := twig.NewMeshNode("leaf", twig.RoleLeaf, twig.NewPlane(1, 1), twig.MaterialLeaf)
	s.Add(leaf)

	if r.LiveHandles() != 1 {
		t.Fatalf("LiveHandles = %d, want 1", r.LiveHandles())
	}
	h, ok := leaf.Mesh.Handle.(*meshHandle)
	if !ok {
		t.Fatalf("handle type %T", leaf.Mesh.Handle)
	}
	if h.color != twig.MaterialLeaf.Color {
		t.Errorf("handle color = %v, want %v", h.color, twig.MaterialLeaf.Color)
	}

	s.Destroy(leaf)
	if r.LiveHandles() != 0 {
		t.Errorf("LiveHandles after destroy = %d, want 0", r.LiveHandles())
	}
	if !h.released {
		t.Error("handle should be released")
	}
}

func TestRendererCollectProjectsVisibleMeshes(t *testing.T) {
	r, s := newTestRenderer()
	quad := twig.NewMeshNode("quad", twig.RoleNone, twig.NewPlane(1, 1), twig.MaterialBark)
	s.Add(quad)
	s.Update(0)

	r.collect(s.Root(), 800, 600)
	want := quad.Mesh.TriangleCount()
	if len(r.tris) != want {
		t.Fatalf("collected %d triangles, want %d", len(r.tris), want)
	}
	for i, tri := range r.tris {
		for k := 0; k < 3; k++ {
			if tri.x[k] < 0 || tri.x[k] > 800 || tri.y[k] < 0 || tri.y[k] > 600 {
				t.Errorf("tri %d vertex %d off screen: (%v, %v)", i, k, tri.x[k], tri.y[k])
			}
		}
	}
}

func TestRendererSkipsHiddenAndTransparent(t *testing.T) {
	r, s := newTestRenderer()
	hidden := twig.NewMeshNode("hidden", twig.RoleNone, twig.NewPlane(1, 1), twig.MaterialBark)
	hidden.Visible = false
	faded := twig.NewMeshNode("faded", twig.RoleNone, twig.NewPlane(1, 1), twig.MaterialBark)
	faded.SetOpacity(0)
	s.Add(hidden)
	s.Add(faded)
	s.Update(0)

	r.collect(s.Root(), 800, 600)
	if len(r.tris) != 0 {
		t.Errorf("collected %d triangles, want 0", len(r.tris))
	}
}

func TestRendererSceneNotifications(t *testing.T) {
	r, s := newTestRenderer()
	a := twig.NewGroup("a")
	s.Add(a)
	b := twig.NewGroup("b")
	a.AddChild(b)
	if r.Attached() != 1 {
		t.Errorf("Attached = %d, want 1", r.Attached())
	}
	s.Remove(b)
	if r.Attached() != 1 {
		t.Errorf("removing a nested node changed Attached to %d", r.Attached())
	}
	s.Remove(a)
	if r.Attached() != 0 {
		t.Errorf("Attached = %d, want 0", r.Attached())
	}
}
