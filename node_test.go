package twig

import (
	"strings"
	"testing"
)

// --- Constructors ---

func TestNewGroupDefaults(t *testing.T) {
	n := NewGroup("g")
	if n.Name != "g" || n.Role != RoleNone {
		t.Errorf("Name/Role = %q/%v", n.Name, n.Role)
	}
	if n.Mesh != nil {
		t.Error("group should have no mesh")
	}
	if n.Scale != (Vec3{1, 1, 1}) {
		t.Errorf("Scale = %v, want (1,1,1)", n.Scale)
	}
	if n.Opacity != 1 || !n.Visible {
		t.Errorf("Opacity/Visible = %v/%v, want 1/true", n.Opacity, n.Visible)
	}
	if !n.transformDirty {
		t.Error("new node should start dirty")
	}
}

func TestNewMeshNodeDefaults(t *testing.T) {
	m := NewPlane(1, 1)
	n := NewMeshNode("leaf", RoleLeaf, m, MaterialLeaf)
	if n.Mesh != m || n.Role != RoleLeaf || n.Material != MaterialLeaf {
		t.Errorf("unexpected node %+v", n)
	}
}

func TestUniqueIDs(t *testing.T) {
	seen := make(map[uint32]bool)
	for i := 0; i < 100; i++ {
		n := NewGroup("n")
		if n.ID == 0 || seen[n.ID] {
			t.Fatalf("duplicate or zero ID %d", n.ID)
		}
		seen[n.ID] = true
	}
}

// --- Tree manipulation ---

func TestAddChildBasic(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	parent.AddChild(child)

	if child.Parent != parent {
		t.Error("child.Parent should be parent")
	}
	if parent.NumChildren() != 1 {
		t.Errorf("NumChildren = %d, want 1", parent.NumChildren())
	}
	if parent.ChildAt(0) != child {
		t.Error("ChildAt(0) should be child")
	}
}

func TestAddChildReparent(t *testing.T) {
	p1 := NewGroup("p1")
	p2 := NewGroup("p2")
	child := NewGroup("child")

	p1.AddChild(child)
	p2.AddChild(child)
	if p1.NumChildren() != 0 {
		t.Error("p1 should have 0 children after reparent")
	}
	if p2.NumChildren() != 1 || child.Parent != p2 {
		t.Error("child should belong to p2")
	}
}

func TestAddChildPanics(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	grandchild := NewGroup("grandchild")
	parent.AddChild(child)
	child.AddChild(grandchild)

	tests := []struct {
		name string
		fn   func()
	}{
		{"cycle", func() { grandchild.AddChild(parent) }},
		{"self", func() { parent.AddChild(parent) }},
		{"nil", func() { parent.AddChild(nil) }},
		{"wrong parent", func() { parent.RemoveChild(grandchild) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic, got none")
				}
				if msg, _ := r.(string); !strings.HasPrefix(msg, "twig:") {
					t.Errorf("panic = %v, want twig: prefix", r)
				}
			}()
			tt.fn()
		})
	}
}

func TestRemoveFromParent(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	parent.AddChild(child)

	child.RemoveFromParent()
	if child.Parent != nil || parent.NumChildren() != 0 {
		t.Error("child should be detached")
	}
	child.RemoveFromParent() // no-op
}

func TestRemoveChildKeepsOrder(t *testing.T) {
	parent := NewGroup("parent")
	a, b, c := NewGroup("a"), NewGroup("b"), NewGroup("c")
	parent.AddChild(a)
	parent.AddChild(b)
	parent.AddChild(c)

	parent.RemoveChild(b)
	if parent.NumChildren() != 2 || parent.ChildAt(0) != a || parent.ChildAt(1) != c {
		t.Errorf("children = %v, want [a c]", parent.Children())
	}
}

func TestFindChild(t *testing.T) {
	root := NewGroup("root")
	glyph := NewMeshNode("glyph", RoleGlyph, NewPlane(1, 1), MaterialGrass)
	knot := NewMeshNode("knot", RoleKnot, NewPlane(1, 1), MaterialBark)
	root.AddChild(glyph)
	root.AddChild(knot)

	if got := root.FindChild(HasRole(RoleKnot)); got != knot {
		t.Errorf("FindChild(knot) = %v", got)
	}
	if got := root.FindChild(HasRole(RoleBranch)); got != nil {
		t.Errorf("FindChild(branch) = %v, want nil", got)
	}

	// First match in insertion order.
	if got := root.FindChild(func(n *Node) bool { return n.Mesh != nil }); got != glyph {
		t.Errorf("FindChild(any mesh) = %v, want glyph", got)
	}

	// Only direct children are scanned.
	inner := NewMeshNode("leaf", RoleLeaf, NewPlane(1, 1), MaterialLeaf)
	knot.AddChild(inner)
	if got := root.FindChild(HasRole(RoleLeaf)); got != nil {
		t.Errorf("FindChild(leaf) = %v, want nil", got)
	}
}

func TestWalkDepthFirst(t *testing.T) {
	root := NewGroup("root")
	a, b := NewGroup("a"), NewGroup("b")
	a1 := NewGroup("a1")
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(a1)

	var names []string
	root.Walk(func(n *Node) { names = append(names, n.Name) })
	if got := strings.Join(names, ","); got != "root,a,a1,b" {
		t.Errorf("Walk order = %s, want root,a,a1,b", got)
	}
	if !a1.IsDescendantOf(root) || !root.IsDescendantOf(root) || b.IsDescendantOf(a) {
		t.Error("IsDescendantOf mismatch")
	}
}

// --- Dispose ---

func TestDispose(t *testing.T) {
	root := NewGroup("root")
	parent := NewGroup("parent")
	child := NewMeshNode("child", RoleGlyph, NewPlane(1, 1), MaterialGrass)
	root.AddChild(parent)
	parent.AddChild(child)

	parent.Dispose()

	if !parent.IsDisposed() || !child.IsDisposed() {
		t.Error("subtree should be disposed")
	}
	if parent.ID != 0 || child.ID != 0 {
		t.Error("disposed nodes should have ID = 0")
	}
	if child.Mesh != nil {
		t.Error("child mesh should be released")
	}
	if root.NumChildren() != 0 {
		t.Error("root should have 0 children after dispose")
	}
	parent.Dispose() // idempotent
}

func TestDisposedNodeDebugPanics(t *testing.T) {
	SetDebugMode(true)
	defer SetDebugMode(false)

	n := NewGroup("n")
	n.Dispose()
	defer func() {
		if recover() == nil {
			t.Error("expected panic adding to a disposed node in debug mode")
		}
	}()
	n.AddChild(NewGroup("c"))
}

// --- Dirty propagation ---

func TestDirtyPropagationOnAddChild(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	grandchild := NewGroup("grandchild")
	child.AddChild(grandchild)

	child.transformDirty = false
	grandchild.transformDirty = false

	parent.AddChild(child)

	if !child.transformDirty || !grandchild.transformDirty {
		t.Error("subtree should be dirty after AddChild")
	}
}

func TestDirtyPropagationOnRemoveChild(t *testing.T) {
	parent := NewGroup("parent")
	child := NewGroup("child")
	parent.AddChild(child)

	child.transformDirty = false
	parent.RemoveChild(child)

	if !child.transformDirty {
		t.Error("child should be dirty after RemoveChild")
	}
}
