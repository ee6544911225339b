package view

import (
	"cmp"
	"image/color"
	"math"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/twig"
)

// maxBatchVertices is the vertex limit of one DrawTriangles call with
// uint16 indices.
const maxBatchVertices = math.MaxUint16 - 2

// meshHandle is the renderer resource created for a twig mesh.
type meshHandle struct {
	color    twig.Color
	released bool
}

// triangle is one projected, shaded face ready for submission.
type triangle struct {
	x, y  [3]float32
	color twig.Color
	depth float64
}

// Renderer draws a twig scene with flat-shaded, depth-sorted triangles. It
// implements twig.Renderer and twig.MeshFactory.
type Renderer struct {
	Camera *Camera
	// Light is the direction light travels, in world space.
	Light twig.Vec3
	// Ambient is the light level of faces pointing away from the light.
	Ambient    float64
	ClearColor twig.Color
	// ScreenshotDir receives PNGs queued with Screenshot.
	ScreenshotDir string
	// Debug logs per-frame stats at debug level.
	Debug bool

	white *ebiten.Image
	tris  []triangle
	verts []ebiten.Vertex
	inds  []uint16

	attached map[*twig.Node]struct{}
	handles  int

	shots []string
	stats FrameStats
}

// NewRenderer creates a renderer viewing through cam.
func NewRenderer(cam *Camera) *Renderer {
	return &Renderer{
		Camera:     cam,
		Light:      twig.Vec3{-10, -20, -10}.Normalize(),
		Ambient:    0.45,
		ClearColor: twig.Color{R: 1, G: 0xE4 / 255.0, B: 0xE1 / 255.0, A: 1},
		attached:   make(map[*twig.Node]struct{}),
	}
}

// AddToScene implements twig.Renderer.
func (r *Renderer) AddToScene(n *twig.Node) {
	r.attached[n] = struct{}{}
	twig.Logger().Debug("renderer add", "node", n.Name, "role", n.Role, "attached", len(r.attached))
}

// RemoveFromScene implements twig.Renderer. Removing a node that was not
// added directly (such as a knot inside an entity) only logs.
func (r *Renderer) RemoveFromScene(n *twig.Node) {
	delete(r.attached, n)
	twig.Logger().Debug("renderer remove", "node", n.Name, "role", n.Role, "attached", len(r.attached))
}

// Attached returns the number of top-level nodes added to the scene.
func (r *Renderer) Attached() int {
	return len(r.attached)
}

// CreateMesh implements twig.MeshFactory.
func (r *Renderer) CreateMesh(_ *twig.Mesh, mat twig.Material) any {
	r.handles++
	return &meshHandle{color: mat.Color}
}

// DisposeMesh implements twig.MeshFactory.
func (r *Renderer) DisposeMesh(handle any) {
	if h, ok := handle.(*meshHandle); ok && !h.released {
		h.released = true
		r.handles--
	}
}

// LiveHandles returns the number of mesh handles not yet disposed.
func (r *Renderer) LiveHandles() int {
	return r.handles
}

// Draw renders the scene root onto screen.
func (r *Renderer) Draw(screen *ebiten.Image, root *twig.Node) {
	if r.white == nil {
		r.white = ebiten.NewImage(1, 1)
		r.white.Fill(toRGBA(twig.ColorWhite))
	}
	screen.Fill(toRGBA(r.ClearColor))

	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	r.stats = FrameStats{}
	t0 := time.Now()
	r.tris = r.tris[:0]
	r.collect(root, w, h)
	t1 := time.Now()

	// Painter's algorithm: farthest first.
	slices.SortFunc(r.tris, func(a, b triangle) int {
		return cmp.Compare(b.depth, a.depth)
	})
	t2 := time.Now()
	r.submit(screen)
	t3 := time.Now()

	r.stats.CollectTime = t1.Sub(t0)
	r.stats.SortTime = t2.Sub(t1)
	r.stats.SubmitTime = t3.Sub(t2)
	r.stats.Triangles = len(r.tris)
	r.logStats()
	r.flushScreenshots(screen)
}

// collect walks the tree and projects every visible, live mesh.
func (r *Renderer) collect(n *twig.Node, w, h int) {
	if !n.Visible || n.IsDisposed() {
		return
	}
	if n.Mesh != nil && !n.Mesh.IsDisposed() {
		if handle, ok := n.Mesh.Handle.(*meshHandle); ok && !handle.released {
			r.project(n, handle.color, w, h)
		}
	}
	for _, c := range n.Children() {
		r.collect(c, w, h)
	}
}

func (r *Renderer) project(n *twig.Node, col twig.Color, w, h int) {
	cam := r.Camera
	view := cam.View()
	proj := cam.Projection(w, h)
	world := n.WorldMatrix()
	alpha := n.WorldOpacity()
	if alpha <= 0 {
		return
	}
	mv := view.Mul4(world)

	m := n.Mesh
	pos := m.Positions
	for i := 0; i+2 < len(m.Indices); i += 3 {
		var (
			t     triangle
			pts   [3]twig.Vec3
			depth float64
			ok    = true
		)
		for k := 0; k < 3; k++ {
			pts[k] = mgl64.TransformCoordinate(pos[m.Indices[i+k]], world)
			vp := mv.Mul4x1(pos[m.Indices[i+k]].Vec4(1))
			d := -vp[2]
			if d < cam.Near {
				ok = false
				break
			}
			c := proj.Mul4x1(vp)
			t.x[k] = float32((c[0]/c[3] + 1) / 2 * float64(w))
			t.y[k] = float32((1 - c[1]/c[3]) / 2 * float64(h))
			depth += d
		}
		if !ok {
			continue
		}

		normal := pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))
		if normal.Len() < 1e-12 {
			continue
		}
		normal = normal.Normalize()
		// Double-sided: face the normal toward the camera.
		if normal.Dot(cam.Eye.Sub(pts[0])) < 0 {
			normal = normal.Mul(-1)
		}
		shade := r.Ambient + (1-r.Ambient)*math.Max(0, normal.Dot(r.Light.Mul(-1)))

		t.depth = depth / 3
		t.color = twig.Color{R: col.R * shade, G: col.G * shade, B: col.B * shade, A: col.A * alpha}
		r.tris = append(r.tris, t)
	}
}

// submit batches triangles into DrawTriangles calls below the uint16 limit.
func (r *Renderer) submit(screen *ebiten.Image) {
	r.verts = r.verts[:0]
	r.inds = r.inds[:0]
	opts := &ebiten.DrawTrianglesOptions{}
	opts.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha

	flush := func() {
		if len(r.inds) == 0 {
			return
		}
		screen.DrawTriangles(r.verts, r.inds, r.white, opts)
		r.stats.DrawCalls++
		r.verts = r.verts[:0]
		r.inds = r.inds[:0]
	}

	for _, t := range r.tris {
		if len(r.verts)+3 > maxBatchVertices {
			flush()
		}
		base := uint16(len(r.verts))
		pr, pg, pb, pa := premultiply(t.color)
		for k := 0; k < 3; k++ {
			r.verts = append(r.verts, ebiten.Vertex{
				DstX: t.x[k], DstY: t.y[k],
				SrcX: 0.5, SrcY: 0.5,
				ColorR: pr, ColorG: pg, ColorB: pb, ColorA: pa,
			})
		}
		r.inds = append(r.inds, base, base+1, base+2)
	}
	flush()
}

// Triangles returns the number of triangles drawn by the last Draw.
func (r *Renderer) Triangles() int {
	return len(r.tris)
}

func premultiply(c twig.Color) (float32, float32, float32, float32) {
	return float32(c.R * c.A), float32(c.G * c.A), float32(c.B * c.A), float32(c.A)
}

// toRGBA converts a straight-alpha Color to premultiplied color.RGBA.
func toRGBA(c twig.Color) color.RGBA {
	return color.RGBA{
		R: uint8(mgl64.Clamp(c.R*c.A, 0, 1) * 255),
		G: uint8(mgl64.Clamp(c.G*c.A, 0, 1) * 255),
		B: uint8(mgl64.Clamp(c.B*c.A, 0, 1) * 255),
		A: uint8(mgl64.Clamp(c.A, 0, 1) * 255),
	}
}
