package twig

import "math"

// Mesh holds CPU-side geometry buffers: positions, per-vertex normals, and a
// triangle index list. Meshes are owned by exactly one Node; disposing the
// node disposes the mesh.
type Mesh struct {
	Positions []Vec3
	Normals   []Vec3
	Indices   []uint32

	// Handle is the renderer's resource for this mesh (set by a MeshFactory).
	Handle any

	aabb      AABB
	aabbDirty bool
	displaced bool
	disposed  bool
}

// AABB is an axis-aligned bounding box in the mesh's local space.
type AABB struct {
	Min, Max Vec3
}

// Size returns the extent of the box along each axis.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// NewMesh wraps the given buffers and computes normals from the faces.
func NewMesh(positions []Vec3, indices []uint32) *Mesh {
	m := &Mesh{Positions: positions, Indices: indices, aabbDirty: true}
	m.ComputeNormals()
	return m
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds returns the cached local-space AABB, recomputing it when dirty.
func (m *Mesh) Bounds() AABB {
	if m.aabbDirty {
		m.aabb = computeAABB(m.Positions)
		m.aabbDirty = false
	}
	return m.aabb
}

// InvalidateBounds marks the cached AABB as needing recomputation.
// Call this after modifying Positions.
func (m *Mesh) InvalidateBounds() {
	m.aabbDirty = true
}

// Translate offsets every vertex by d.
func (m *Mesh) Translate(d Vec3) {
	for i := range m.Positions {
		m.Positions[i] = m.Positions[i].Add(d)
	}
	m.aabbDirty = true
}

// ComputeNormals recomputes per-vertex normals as the area-weighted sum of
// adjacent face normals.
func (m *Mesh) ComputeNormals() {
	if cap(m.Normals) < len(m.Positions) {
		m.Normals = make([]Vec3, len(m.Positions))
	}
	m.Normals = m.Normals[:len(m.Positions)]
	for i := range m.Normals {
		m.Normals[i] = Vec3{}
	}
	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		pa, pb, pc := m.Positions[a], m.Positions[b], m.Positions[c]
		// Unnormalized cross product weights by triangle area.
		fn := pb.Sub(pa).Cross(pc.Sub(pa))
		m.Normals[a] = m.Normals[a].Add(fn)
		m.Normals[b] = m.Normals[b].Add(fn)
		m.Normals[c] = m.Normals[c].Add(fn)
	}
	for i, n := range m.Normals {
		if l := n.Len(); l > 1e-12 {
			m.Normals[i] = n.Mul(1 / l)
		}
	}
}

// Dispose releases the mesh buffers. Safe to call more than once.
func (m *Mesh) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.Positions = nil
	m.Normals = nil
	m.Indices = nil
	m.Handle = nil
}

// IsDisposed reports whether Dispose has been called.
func (m *Mesh) IsDisposed() bool {
	return m.disposed
}

// computeAABB scans positions and returns their bounding box.
func computeAABB(pts []Vec3) AABB {
	if len(pts) == 0 {
		return AABB{}
	}
	lo := Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range pts {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return AABB{Min: lo, Max: hi}
}

// NewPlane builds a double-sided w×h quad in the XY plane centered on the
// origin. Used for leaf particles.
func NewPlane(w, h float64) *Mesh {
	hw, hh := w/2, h/2
	pos := []Vec3{
		{-hw, -hh, 0}, {hw, -hh, 0}, {hw, hh, 0}, {-hw, hh, 0},
		{-hw, -hh, 0}, {hw, -hh, 0}, {hw, hh, 0}, {-hw, hh, 0},
	}
	ind := []uint32{
		0, 1, 2, 0, 2, 3, // front
		4, 6, 5, 4, 7, 6, // back
	}
	return NewMesh(pos, ind)
}

// Material is the opaque shading handle passed to the renderer.
type Material struct {
	Name  string
	Color Color
}

// Default materials.
var (
	MaterialBark  = Material{Name: "bark", Color: ColorBark}
	MaterialGrass = Material{Name: "grass", Color: ColorGrass}
	MaterialLeaf  = Material{Name: "leaf", Color: ColorLeaf}
)

// MeshFactory turns CPU geometry into renderer resources. Implementations
// store their handle in Mesh.Handle.
type MeshFactory interface {
	CreateMesh(m *Mesh, mat Material) any
	DisposeMesh(handle any)
}
