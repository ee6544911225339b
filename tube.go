package twig

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrInvalidRadialSegments is returned when a tube has fewer than 3 sides.
	ErrInvalidRadialSegments = errors.New("twig: radial segments must be >= 3")
	// ErrInvalidRadius is returned when a tube radius is not positive.
	ErrInvalidRadius = errors.New("twig: radius must be > 0")
)

// TubeConfig configures BuildTube.
type TubeConfig struct {
	Segments       int     `toml:"segments"`
	Radius         float64 `toml:"radius"`
	RadialSegments int     `toml:"radial_segments"`
	Closed         bool    `toml:"closed"`
}

// frameEpsilon is the cross-product length below which consecutive tangents
// are treated as (anti)parallel and the previous normal is carried over.
const frameEpsilon = 1e-6

// Frame is an orthonormal basis along a curve.
type Frame struct {
	Tangent, Normal, Binormal Vec3
}

// BuildTube sweeps a circle of cfg.Radius along the curve through path and
// applies disp to every vertex. The mesh has (Segments+1)*RadialSegments
// vertices: one ring per curve sample, no duplicated seam column. The caller
// owns the returned mesh.
func BuildTube(path Path, cfg TubeConfig, disp Displacement, n Noise) (*Mesh, error) {
	if cfg.RadialSegments < 3 {
		return nil, fmt.Errorf("build tube: %w (got %d)", ErrInvalidRadialSegments, cfg.RadialSegments)
	}
	if cfg.Radius <= 0 {
		return nil, fmt.Errorf("build tube: %w (got %g)", ErrInvalidRadius, cfg.Radius)
	}
	path.Closed = path.Closed || cfg.Closed
	samples, err := Evaluate(path, cfg.Segments)
	if err != nil {
		return nil, fmt.Errorf("build tube: %w", err)
	}

	frames := ComputeFrames(samples, path.Closed)
	rings := len(samples)
	radial := cfg.RadialSegments

	pos := make([]Vec3, rings*radial)
	for i, s := range samples {
		f := frames[i]
		for j := 0; j < radial; j++ {
			v := float64(j) / float64(radial) * 2 * math.Pi
			sin, cos := math.Sincos(v)
			dir := f.Normal.Mul(cos).Add(f.Binormal.Mul(sin))
			pos[i*radial+j] = s.Point.Add(dir.Mul(cfg.Radius))
		}
	}

	ind := make([]uint32, 0, (rings-1)*radial*6)
	for i := 0; i < rings-1; i++ {
		for j := 0; j < radial; j++ {
			jn := (j + 1) % radial
			a := uint32(i*radial + j)
			b := uint32((i+1)*radial + j)
			c := uint32((i+1)*radial + jn)
			d := uint32(i*radial + jn)
			// Wound so face normals point away from the curve.
			ind = append(ind, a, d, b, d, c, b)
		}
	}

	m := NewMesh(pos, ind)
	if err := disp.Displace(m, n); err != nil {
		return nil, fmt.Errorf("build tube: %w", err)
	}
	return m, nil
}

// ComputeFrames builds parallel-transport frames along samples. The first
// normal is derived from the tangent's smallest component. When consecutive
// tangents are nearly parallel or antiparallel the previous normal is
// carried over, avoiding a twist artifact.
func ComputeFrames(samples []CurveSample, closed bool) []Frame {
	frames := make([]Frame, len(samples))
	if len(samples) == 0 {
		return frames
	}

	t0 := samples[0].Tangent
	frames[0] = Frame{Tangent: t0, Normal: initialNormal(t0)}
	frames[0].Binormal = t0.Cross(frames[0].Normal)

	for i := 1; i < len(samples); i++ {
		prev := frames[i-1]
		t := samples[i].Tangent
		nrm := prev.Normal

		axis := prev.Tangent.Cross(t)
		if axis.Len() > frameEpsilon {
			axis = axis.Normalize()
			theta := math.Acos(mgl64.Clamp(prev.Tangent.Dot(t), -1, 1))
			nrm = mgl64.QuatRotate(theta, axis).Rotate(nrm)
		}

		// Keep the carried normal perpendicular to the new tangent.
		nrm = nrm.Sub(t.Mul(nrm.Dot(t)))
		if nrm.Len() < frameEpsilon {
			nrm = initialNormal(t)
		} else {
			nrm = nrm.Normalize()
		}
		frames[i] = Frame{Tangent: t, Normal: nrm, Binormal: t.Cross(nrm)}
	}

	if closed && len(frames) > 1 {
		// Spread the accumulated twist evenly so the seam lines up.
		last := len(frames) - 1
		theta := math.Acos(mgl64.Clamp(frames[0].Normal.Dot(frames[last].Normal), -1, 1)) / float64(last)
		if frames[0].Tangent.Dot(frames[0].Normal.Cross(frames[last].Normal)) > 0 {
			theta = -theta
		}
		for i := 1; i <= last; i++ {
			f := &frames[i]
			f.Normal = mgl64.QuatRotate(theta*float64(i), f.Tangent).Rotate(f.Normal)
			f.Binormal = f.Tangent.Cross(f.Normal)
		}
	}
	return frames
}

// initialNormal returns a unit vector perpendicular to t, built against the
// world axis along which t has the smallest component.
func initialNormal(t Vec3) Vec3 {
	ax, ay, az := math.Abs(t[0]), math.Abs(t[1]), math.Abs(t[2])
	var ref Vec3
	switch {
	case ax <= ay && ax <= az:
		ref = Vec3{1, 0, 0}
	case ay <= az:
		ref = Vec3{0, 1, 0}
	default:
		ref = Vec3{0, 0, 1}
	}
	v := t.Cross(ref)
	if v.Len() < frameEpsilon {
		return Vec3{1, 0, 0}
	}
	return t.Cross(v.Normalize()).Normalize()
}
