package twig

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrPathTooShort is returned when a path has fewer than two control points.
	ErrPathTooShort = errors.New("twig: path needs at least 2 control points")
	// ErrInvalidSegments is returned when a segment count is below 1.
	ErrInvalidSegments = errors.New("twig: segments must be >= 1")
)

// CurveKind selects the Catmull-Rom parameterization.
type CurveKind uint8

const (
	// CurveCentripetal (alpha 0.5) avoids cusps and self-intersections.
	CurveCentripetal CurveKind = iota
	// CurveUniform (alpha 0) is the classic Catmull-Rom spline.
	CurveUniform
	// CurveChordal (alpha 1) follows chord lengths.
	CurveChordal
)

func (k CurveKind) alpha() float64 {
	switch k {
	case CurveUniform:
		return 0
	case CurveChordal:
		return 1
	default:
		return 0.5
	}
}

// Path is an ordered list of control points defining a smooth curve.
type Path struct {
	Points []Vec3
	Closed bool
	Kind   CurveKind
}

// CurveSample is a point on an evaluated curve.
type CurveSample struct {
	T       float64
	Point   Vec3
	Tangent Vec3 // unit length
}

// Evaluate samples the Catmull-Rom curve through path at segments+1 evenly
// spaced parameter values t = i/segments. For open paths the first and last
// samples are the first and last control points, and control point i lies at
// t = i/(len(Points)-1).
func Evaluate(path Path, segments int) ([]CurveSample, error) {
	if len(path.Points) < 2 {
		return nil, fmt.Errorf("evaluate curve: %w", ErrPathTooShort)
	}
	if segments < 1 {
		return nil, fmt.Errorf("evaluate curve: %w (got %d)", ErrInvalidSegments, segments)
	}
	out := make([]CurveSample, segments+1)
	for i := range out {
		t := float64(i) / float64(segments)
		out[i] = CurveSample{T: t, Point: path.Point(t), Tangent: path.Tangent(t)}
	}
	return out, nil
}

// Point returns the curve position at t in [0, 1].
func (p Path) Point(t float64) Vec3 {
	pts := p.Points
	n := len(pts)
	switch n {
	case 0:
		return Vec3{}
	case 1:
		return pts[0]
	}

	t = clamp01(t)
	var span int
	if p.Closed {
		span = n
	} else {
		span = n - 1
	}
	f := t * float64(span)
	i := int(math.Floor(f))
	w := f - float64(i)
	if i >= span {
		// t == 1 on an open curve lands exactly on the last point.
		if !p.Closed {
			return pts[n-1]
		}
		i, w = span-1, 1
	}

	p0, p1, p2, p3 := p.neighbors(i)
	return catmullRom(p0, p1, p2, p3, w, p.Kind.alpha())
}

// Tangent returns the unit tangent at t, estimated by central differences.
func (p Path) Tangent(t float64) Vec3 {
	const delta = 1e-4
	t1 := t - delta
	t2 := t + delta
	if !p.Closed {
		if t1 < 0 {
			t1 = 0
		}
		if t2 > 1 {
			t2 = 1
		}
	}
	d := p.Point(wrap01(t2, p.Closed)).Sub(p.Point(wrap01(t1, p.Closed)))
	if l := d.Len(); l > 1e-12 {
		return d.Mul(1 / l)
	}
	// Coincident control points: fall back to the chord direction.
	if len(p.Points) >= 2 {
		c := p.Points[len(p.Points)-1].Sub(p.Points[0])
		if l := c.Len(); l > 1e-12 {
			return c.Mul(1 / l)
		}
	}
	return Vec3{0, 1, 0}
}

// neighbors returns the four control points around span i. Open paths
// reflect phantom points past the ends.
func (p Path) neighbors(i int) (p0, p1, p2, p3 Vec3) {
	pts := p.Points
	n := len(pts)
	if p.Closed {
		at := func(k int) Vec3 { return pts[((k%n)+n)%n] }
		return at(i - 1), at(i), at(i + 1), at(i + 2)
	}
	p1 = pts[i]
	p2 = pts[i+1]
	if i > 0 {
		p0 = pts[i-1]
	} else {
		p0 = p1.Mul(2).Sub(p2)
	}
	if i+2 < n {
		p3 = pts[i+2]
	} else {
		p3 = p2.Mul(2).Sub(p1)
	}
	return p0, p1, p2, p3
}

// catmullRom evaluates one span of a non-uniform Catmull-Rom spline between
// p1 and p2 at local parameter w, with knot spacing |pi+1 - pi|^alpha.
func catmullRom(p0, p1, p2, p3 Vec3, w, alpha float64) Vec3 {
	dt0 := math.Pow(p1.Sub(p0).LenSqr(), alpha/2)
	dt1 := math.Pow(p2.Sub(p1).LenSqr(), alpha/2)
	dt2 := math.Pow(p3.Sub(p2).LenSqr(), alpha/2)

	// Safety check for repeated points.
	if dt1 < 1e-4 {
		dt1 = 1
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	var out Vec3
	for k := 0; k < 3; k++ {
		// Tangents at p1 and p2 for the non-uniform parameterization,
		// rescaled to the [0, 1] span.
		t1 := (p1[k]-p0[k])/dt0 - (p2[k]-p0[k])/(dt0+dt1) + (p2[k]-p1[k])/dt1
		t2 := (p2[k]-p1[k])/dt1 - (p3[k]-p1[k])/(dt1+dt2) + (p3[k]-p2[k])/dt2
		t1 *= dt1
		t2 *= dt1
		out[k] = hermite(p1[k], p2[k], t1, t2, w)
	}
	return out
}

// hermite evaluates a cubic with end values x0, x1 and end slopes t0, t1.
func hermite(x0, x1, t0, t1, w float64) float64 {
	c0 := x0
	c1 := t0
	c2 := -3*x0 + 3*x1 - 2*t0 - t1
	c3 := 2*x0 - 2*x1 + t0 + t1
	return ((c3*w+c2)*w+c1)*w + c0
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

func wrap01(t float64, closed bool) float64 {
	if !closed {
		return clamp01(t)
	}
	t = math.Mod(t, 1)
	if t < 0 {
		t++
	}
	return t
}
