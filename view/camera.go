package view

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/phanxgames/twig"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// moveAnim holds active move-to tweens for the camera eye, one per axis.
type moveAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera is a perspective camera looking from Eye at Target.
type Camera struct {
	Eye    twig.Vec3
	Target twig.Vec3
	Up     twig.Vec3
	// FOV is the vertical field of view in radians.
	FOV       float64
	Near, Far float64

	followTarget *twig.Node
	followOffset twig.Vec3
	followLerp   float64

	move *moveAnim
}

// NewCamera creates a camera at eye looking at target with a 45° field of view.
func NewCamera(eye, target twig.Vec3) *Camera {
	return &Camera{
		Eye:    eye,
		Target: target,
		Up:     twig.Vec3{0, 1, 0},
		FOV:    mgl64.DegToRad(45),
		Near:   0.1,
		Far:    1000,
	}
}

// Follow makes the camera look at a node's world position plus offset.
// A lerp of 1.0 snaps immediately; lower values give smoother following.
func (c *Camera) Follow(node *twig.Node, offset twig.Vec3, lerp float64) {
	c.followTarget = node
	c.followOffset = offset
	c.followLerp = lerp
}

// Unfollow stops tracking the current target node.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// MoveTo animates the eye to eye over duration seconds.
func (c *Camera) MoveTo(eye twig.Vec3, duration float32, easeFn ease.TweenFunc) {
	m := &moveAnim{}
	for k := range m.tweens {
		m.tweens[k] = gween.New(float32(c.Eye[k]), float32(eye[k]), duration, easeFn)
	}
	c.move = m
}

// Moving reports whether a MoveTo animation is in progress.
func (c *Camera) Moving() bool {
	return c.move != nil
}

// Update advances follow and move animations.
func (c *Camera) Update(dt float32) {
	if c.followTarget != nil && !c.followTarget.IsDisposed() {
		want := c.followTarget.WorldPosition().Add(c.followOffset)
		c.Target = c.Target.Add(want.Sub(c.Target).Mul(c.followLerp))
	}

	if c.move != nil {
		for k, tw := range c.move.tweens {
			if c.move.done[k] {
				continue
			}
			val, done := tw.Update(dt)
			c.Eye[k] = float64(val)
			c.move.done[k] = done
		}
		if c.move.done[0] && c.move.done[1] && c.move.done[2] {
			c.move = nil
		}
	}
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye, c.Target, c.Up)
}

// Projection returns the perspective matrix for a viewport of w×h pixels.
func (c *Camera) Projection(w, h int) mgl64.Mat4 {
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	return mgl64.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// WorldToScreen projects p onto a w×h viewport with y pointing down. depth
// is the distance along the view axis; ok is false when p is behind the
// near plane.
func (c *Camera) WorldToScreen(p twig.Vec3, w, h int) (sx, sy, depth float64, ok bool) {
	view := c.View()
	vp := view.Mul4x1(p.Vec4(1))
	depth = -vp[2]
	if depth < c.Near {
		return 0, 0, depth, false
	}
	clip := c.Projection(w, h).Mul4x1(vp)
	if math.Abs(clip[3]) < 1e-12 {
		return 0, 0, depth, false
	}
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	sx = (ndcX + 1) / 2 * float64(w)
	sy = (1 - ndcY) / 2 * float64(h)
	return sx, sy, depth, true
}

// Forward returns the unit view direction.
func (c *Camera) Forward() twig.Vec3 {
	d := c.Target.Sub(c.Eye)
	if d.Len() < 1e-12 {
		return twig.Vec3{0, 0, -1}
	}
	return d.Normalize()
}
