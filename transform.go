package twig

import "github.com/go-gl/mathgl/mgl64"

// computeLocalTransform computes the node's local matrix.
//
// Composition order:
//
//	Scale -> Rotate (X, then Y, then Z intrinsic) -> Translate(Position)
func computeLocalTransform(n *Node) mgl64.Mat4 {
	r := mgl64.AnglesToQuat(n.Rotation[0], n.Rotation[1], n.Rotation[2], mgl64.XYZ).Mat4()
	s := mgl64.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	t := mgl64.Translate3D(n.Position[0], n.Position[1], n.Position[2])
	return t.Mul4(r).Mul4(s)
}

// updateWorldTransform recomputes a node's world matrix and world opacity.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parent mgl64.Mat4, parentOpacity float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldMatrix = parent.Mul4(computeLocalTransform(n))
		n.worldOpacity = parentOpacity * n.Opacity
		n.transformDirty = false
	}
	for _, child := range n.children {
		updateWorldTransform(child, n.worldMatrix, n.worldOpacity, recompute)
	}
}

// UpdateWorld recomputes world transforms for n's subtree as if n were a root.
func (n *Node) UpdateWorld() {
	updateWorldTransform(n, mgl64.Ident4(), 1, true)
}

// WorldMatrix returns the world matrix computed during the last update.
func (n *Node) WorldMatrix() mgl64.Mat4 {
	return n.worldMatrix
}

// WorldOpacity returns the product of opacities from the root to this node.
func (n *Node) WorldOpacity() float64 {
	return n.worldOpacity
}

// LocalToWorld converts a local-space point to world space.
func (n *Node) LocalToWorld(p Vec3) Vec3 {
	return mgl64.TransformCoordinate(p, n.worldMatrix)
}

// WorldPosition returns the node's origin in world space.
func (n *Node) WorldPosition() Vec3 {
	return n.worldMatrix.Col(3).Vec3()
}
