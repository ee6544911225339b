package twig

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ErrNoGlyph is returned for runes without an outline (e.g. space).
var ErrNoGlyph = errors.New("twig: no glyph outline")

// GlyphSource produces closed outline contours for a rune, in font units
// with Y increasing upward.
type GlyphSource interface {
	Outline(r rune) ([][]Vec2, error)
}

// GlyphConfig sizes and extrudes glyph meshes.
type GlyphConfig struct {
	Height     float64 `toml:"height"`
	Depth      float64 `toml:"depth"`
	CurveSteps int     `toml:"curve_steps"`
}

// FontGlyphs is a GlyphSource backed by a TrueType/OpenType font.
type FontGlyphs struct {
	font  *sfnt.Font
	buf   sfnt.Buffer
	steps int
}

// glyphPPEM is the pixels-per-em the outlines are loaded at. BuildGlyph
// rescales, so only precision matters.
const glyphPPEM = 1024

// NewFontGlyphs parses ttf. curveSteps is the number of line segments each
// quadratic or cubic segment is flattened into (default 8).
func NewFontGlyphs(ttf []byte, curveSteps int) (*FontGlyphs, error) {
	f, err := sfnt.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	if curveSteps <= 0 {
		curveSteps = 8
	}
	return &FontGlyphs{font: f, steps: curveSteps}, nil
}

// DefaultGlyphs returns a GlyphSource using the embedded Go Regular font.
func DefaultGlyphs(curveSteps int) (*FontGlyphs, error) {
	return NewFontGlyphs(goregular.TTF, curveSteps)
}

// Outline loads and flattens the glyph for r.
func (g *FontGlyphs) Outline(r rune) ([][]Vec2, error) {
	idx, err := g.font.GlyphIndex(&g.buf, r)
	if err != nil {
		return nil, fmt.Errorf("glyph %q: %w", r, err)
	}
	if idx == 0 {
		return nil, fmt.Errorf("glyph %q: %w", r, ErrNoGlyph)
	}
	segs, err := g.font.LoadGlyph(&g.buf, idx, fixed.I(glyphPPEM), nil)
	if err != nil {
		return nil, fmt.Errorf("glyph %q: %w", r, err)
	}

	var contours [][]Vec2
	var cur []Vec2
	var last Vec2
	// sfnt reports Y increasing down; flip to Y up.
	pt := func(p fixed.Point26_6) Vec2 {
		return Vec2{X: float64(p.X) / 64, Y: -float64(p.Y) / 64}
	}
	flush := func() {
		if len(cur) > 2 {
			contours = append(contours, dedupeClosing(cur))
		}
		cur = nil
	}
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			flush()
			last = pt(s.Args[0])
			cur = append(cur, last)
		case sfnt.SegmentOpLineTo:
			last = pt(s.Args[0])
			cur = append(cur, last)
		case sfnt.SegmentOpQuadTo:
			c, e := pt(s.Args[0]), pt(s.Args[1])
			for i := 1; i <= g.steps; i++ {
				t := float64(i) / float64(g.steps)
				u := 1 - t
				cur = append(cur, Vec2{
					X: u*u*last.X + 2*u*t*c.X + t*t*e.X,
					Y: u*u*last.Y + 2*u*t*c.Y + t*t*e.Y,
				})
			}
			last = e
		case sfnt.SegmentOpCubeTo:
			c1, c2, e := pt(s.Args[0]), pt(s.Args[1]), pt(s.Args[2])
			for i := 1; i <= g.steps; i++ {
				t := float64(i) / float64(g.steps)
				u := 1 - t
				u2, t2 := u*u, t*t
				cur = append(cur, Vec2{
					X: u2*u*last.X + 3*u2*t*c1.X + 3*u*t2*c2.X + t2*t*e.X,
					Y: u2*u*last.Y + 3*u2*t*c1.Y + 3*u*t2*c2.Y + t2*t*e.Y,
				})
			}
			last = e
		}
	}
	flush()
	if len(contours) == 0 {
		return nil, fmt.Errorf("glyph %q: %w", r, ErrNoGlyph)
	}
	return contours, nil
}

// dedupeClosing drops a trailing point equal to the first one.
func dedupeClosing(c []Vec2) []Vec2 {
	if len(c) > 1 && c[0] == c[len(c)-1] {
		return c[:len(c)-1]
	}
	return c
}

// BuildGlyph extrudes contours into a solid: side walls for every contour and
// ear-clipped caps at z=0 and z=Depth. The outline is scaled to cfg.Height,
// stands on y=0, and is centered on x by half its bounding width.
func BuildGlyph(contours [][]Vec2, cfg GlyphConfig) (*Mesh, error) {
	if len(contours) == 0 {
		return nil, ErrNoGlyph
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range contours {
		for _, p := range c {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	h := maxY - minY
	if h <= 0 {
		return nil, ErrNoGlyph
	}
	s := cfg.Height / h
	halfW := 0.5 * (maxX - minX) * s

	// Normalize into glyph space and orient: outer CCW, holes CW.
	outer, holes := classifyContours(contours, func(p Vec2) Vec2 {
		return Vec2{X: (p.X-minX)*s - halfW, Y: (p.Y - minY) * s}
	})

	var pos []Vec3
	var ind []uint32

	walls := append(append([][]Vec2{}, outer...), holes...)
	for _, c := range walls {
		base := uint32(len(pos))
		k := uint32(len(c))
		for _, p := range c {
			pos = append(pos, Vec3{p.X, p.Y, 0})
		}
		for _, p := range c {
			pos = append(pos, Vec3{p.X, p.Y, cfg.Depth})
		}
		for i := uint32(0); i < k; i++ {
			j := (i + 1) % k
			bi, bj := base+i, base+j
			fi, fj := base+k+i, base+k+j
			ind = append(ind, bi, bj, fi, bj, fj, fi)
		}
	}

	for _, poly := range bridgeHoles(outer, holes) {
		tris := earClip(poly)
		base := uint32(len(pos))
		n := uint32(len(poly))
		for _, p := range poly {
			pos = append(pos, Vec3{p.X, p.Y, cfg.Depth})
		}
		for _, p := range poly {
			pos = append(pos, Vec3{p.X, p.Y, 0})
		}
		for i := 0; i+2 < len(tris); i += 3 {
			a, b, c := uint32(tris[i]), uint32(tris[i+1]), uint32(tris[i+2])
			ind = append(ind, base+a, base+b, base+c)       // front faces +z
			ind = append(ind, base+n+a, base+n+c, base+n+b) // back faces -z
		}
	}

	return NewMesh(pos, ind), nil
}

// signedArea is positive for counter-clockwise contours.
func signedArea(c []Vec2) float64 {
	var a float64
	for i := range c {
		j := (i + 1) % len(c)
		a += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return a / 2
}

// classifyContours maps every point through xf and splits contours into
// outer boundaries and holes by nesting: a contour inside an odd number of
// others is a hole. Outers come back CCW, holes CW, whatever the input
// winding.
func classifyContours(contours [][]Vec2, xf func(Vec2) Vec2) (outer, holes [][]Vec2) {
	mapped := make([][]Vec2, 0, len(contours))
	for _, c := range contours {
		m := make([]Vec2, len(c))
		for k, p := range c {
			m[k] = xf(p)
		}
		if signedArea(m) == 0 {
			continue
		}
		mapped = append(mapped, m)
	}
	for i, c := range mapped {
		depth := 0
		for j, o := range mapped {
			if i != j && pointInPolygon(c[0], o) {
				depth++
			}
		}
		isOuter := depth%2 == 0
		if isOuter != (signedArea(c) > 0) {
			reverse(c)
		}
		if isOuter {
			outer = append(outer, c)
		} else {
			holes = append(holes, c)
		}
	}
	return outer, holes
}

func reverse(c []Vec2) {
	for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
		c[i], c[j] = c[j], c[i]
	}
}

// bridgeHoles merges each hole into the outer contour containing it by a
// zero-width bridge from the hole's rightmost vertex to the nearest outer
// vertex on its right, producing simple polygons for ear clipping.
func bridgeHoles(outer, holes [][]Vec2) [][]Vec2 {
	polys := make([][]Vec2, len(outer))
	for i, o := range outer {
		polys[i] = append([]Vec2(nil), o...)
	}

	sort.Slice(holes, func(i, j int) bool {
		return maxXIndexValue(holes[i]) > maxXIndexValue(holes[j])
	})

	for _, h := range holes {
		// Innermost outer containing the hole.
		owner, ownerArea := -1, math.Inf(1)
		for i, o := range outer {
			if a := signedArea(o); a < ownerArea && pointInPolygon(h[0], o) {
				owner, ownerArea = i, a
			}
		}
		if owner < 0 {
			continue
		}
		poly := polys[owner]
		hi := maxXIndex(h)
		hp := h[hi]

		best, bestD := -1, math.Inf(1)
		for i, p := range poly {
			if p.X < hp.X {
				continue
			}
			d := (p.X-hp.X)*(p.X-hp.X) + (p.Y-hp.Y)*(p.Y-hp.Y)
			if d < bestD {
				best, bestD = i, d
			}
		}
		if best < 0 {
			continue
		}

		merged := make([]Vec2, 0, len(poly)+len(h)+2)
		merged = append(merged, poly[:best+1]...)
		for k := 0; k <= len(h); k++ {
			merged = append(merged, h[(hi+k)%len(h)])
		}
		merged = append(merged, poly[best:]...)
		polys[owner] = merged
	}
	return polys
}

func maxXIndex(c []Vec2) int {
	best := 0
	for i, p := range c {
		if p.X > c[best].X {
			best = i
		}
	}
	return best
}

func maxXIndexValue(c []Vec2) float64 {
	return c[maxXIndex(c)].X
}

func pointInPolygon(p Vec2, poly []Vec2) bool {
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// earClip triangulates a counter-clockwise simple polygon and returns vertex
// index triples. When no ear can be found (degenerate input) the remaining
// vertices are fanned so the loop always terminates.
func earClip(poly []Vec2) []int {
	n := len(poly)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	tris := make([]int, 0, (n-2)*3)

	for len(idx) > 3 {
		found := false
		for i := range idx {
			a := idx[(i+len(idx)-1)%len(idx)]
			b := idx[i]
			c := idx[(i+1)%len(idx)]
			if cross2(poly[a], poly[b], poly[c]) <= 0 {
				continue
			}
			ear := true
			for _, k := range idx {
				if k == a || k == b || k == c {
					continue
				}
				if poly[k] == poly[a] || poly[k] == poly[b] || poly[k] == poly[c] {
					continue
				}
				if pointInTriangle(poly[k], poly[a], poly[b], poly[c]) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			tris = append(tris, a, b, c)
			idx = append(idx[:i], idx[i+1:]...)
			found = true
			break
		}
		if !found {
			for i := 1; i+1 < len(idx); i++ {
				tris = append(tris, idx[0], idx[i], idx[i+1])
			}
			return tris
		}
	}
	return append(tris, idx[0], idx[1], idx[2])
}

func cross2(a, b, c Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func pointInTriangle(p, a, b, c Vec2) bool {
	return cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0
}
