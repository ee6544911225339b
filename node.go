package twig

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// nodeIDCounter is a plain counter (no atomic — twig is single-threaded).
var nodeIDCounter uint32

func nextNodeID() uint32 {
	nodeIDCounter++
	return nodeIDCounter
}

// Node is the scene graph element. A node optionally owns one Mesh; groups
// (entity roots) own only children.
type Node struct {
	// Identity
	ID   uint32
	Name string
	Role Role
	// Entity is the ID of the letter entity the node belongs to, or
	// uuid.Nil for free nodes such as leaves. It survives disposal so late
	// clip events can still be attributed.
	Entity uuid.UUID

	// Hierarchy
	Parent   *Node
	children []*Node

	// Transform (local)
	Position Vec3
	Rotation Vec3 // Euler angles in radians, applied X then Y then Z
	Scale    Vec3

	// Opacity multiplies into every descendant material.
	Opacity float64
	Visible bool

	// Geometry (nil for groups)
	Mesh     *Mesh
	Material Material

	// Metadata
	UserData any

	// Computed, updated by updateWorldTransform
	worldMatrix    mgl64.Mat4
	worldOpacity   float64
	transformDirty bool

	disposed bool
}

// nodeDefaults sets the common default field values shared by all constructors.
func nodeDefaults(n *Node) {
	n.ID = nextNodeID()
	n.Scale = Vec3{1, 1, 1}
	n.Opacity = 1
	n.Visible = true
	n.worldMatrix = mgl64.Ident4()
	n.worldOpacity = 1
	n.transformDirty = true
}

// NewGroup creates a node with no geometry of its own.
func NewGroup(name string) *Node {
	n := &Node{Name: name}
	nodeDefaults(n)
	return n
}

// NewMeshNode creates a node that renders mesh with the given material.
// The node takes ownership of mesh.
func NewMeshNode(name string, role Role, mesh *Mesh, mat Material) *Node {
	n := &Node{Name: name, Role: role, Mesh: mesh, Material: mat}
	nodeDefaults(n)
	return n
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("twig: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(n, "AddChild (parent)")
		debugCheckDisposed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("twig: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.removeChildByPtr(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// RemoveChild detaches child from this node.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckDisposed(n, "RemoveChild (parent)")
	}
	if child.Parent != n {
		panic("twig: child's parent is not this node")
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// FindChild returns the first direct child for which pred returns true,
// scanning in insertion order, or nil.
func (n *Node) FindChild(pred func(*Node) bool) *Node {
	for _, c := range n.children {
		if pred(c) {
			return c
		}
	}
	return nil
}

// Walk calls fn for n and every descendant, depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// IsDescendantOf reports whether n is ancestor or lies beneath it.
func (n *Node) IsDescendantOf(ancestor *Node) bool {
	return isAncestor(ancestor, n)
}

// --- Transform property setters ---

// SetPosition sets the node's local position and marks it dirty.
func (n *Node) SetPosition(p Vec3) {
	n.Position = p
	n.transformDirty = true
}

// SetRotation sets the node's Euler rotation (radians) and marks it dirty.
func (n *Node) SetRotation(r Vec3) {
	n.Rotation = r
	n.transformDirty = true
}

// SetOpacity sets the node's opacity and marks it dirty.
func (n *Node) SetOpacity(a float64) {
	n.Opacity = a
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// --- Disposal ---

// Dispose removes this node from its parent, marks it as disposed, and
// recursively disposes all descendants and their meshes.
func (n *Node) Dispose() {
	if n.disposed {
		return
	}
	n.RemoveFromParent()
	n.dispose()
}

func (n *Node) dispose() {
	n.disposed = true
	n.ID = 0
	for _, child := range n.children {
		child.Parent = nil
		child.dispose()
	}
	n.children = nil
	n.Parent = nil
	if n.Mesh != nil {
		n.Mesh.Dispose()
		n.Mesh = nil
	}
	n.UserData = nil
}

// IsDisposed returns true if this node has been disposed.
func (n *Node) IsDisposed() bool {
	return n.disposed
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node (or node itself).
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}
