package twig

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// RepeatForever makes a clip cycle until cancelled.
const RepeatForever = -1

// clipEpsilon absorbs float drift from summing per-frame deltas, so a 1.2s
// clip driven by 72 ticks of 1/60s completes on the 72nd tick.
const clipEpsilon = 1e-6

// ClipState is the lifecycle state of a clip.
type ClipState uint8

const (
	ClipPending   ClipState = iota // scheduled, delay not elapsed
	ClipRunning                    // interpolating its first cycle
	ClipRepeating                  // interpolating a later cycle
	ClipCompleted                  // terminal; completion callback fired once
	ClipCancelled                  // terminal; no callback
)

// String returns the state name used in logs.
func (s ClipState) String() string {
	switch s {
	case ClipPending:
		return "pending"
	case ClipRunning:
		return "running"
	case ClipRepeating:
		return "repeating"
	case ClipCompleted:
		return "completed"
	case ClipCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether the state is Completed or Cancelled.
func (s ClipState) Terminal() bool {
	return s == ClipCompleted || s == ClipCancelled
}

// ClipSpec describes a timed transition of one node attribute.
//
// Two clips writing the same attribute of the same node at the same time
// conflict; the one registered last wins each tick.
type ClipSpec struct {
	// Name labels the clip in logs and events.
	Name string

	Target *Node
	Attr   Attr
	// Axes selects the animated components. Zero means all three.
	// AttrOpacity only uses X.
	Axes Axis

	// From is the start value. Nil captures the attribute's current value
	// when the delay elapses.
	From *Vec3
	To   Vec3

	Duration float64 // seconds
	Delay    float64 // seconds
	Ease     ease.TweenFunc

	// Repeat is the number of extra cycles (0 plays once), or RepeatForever.
	Repeat int
	// Yoyo reverses direction on every repeat.
	Yoyo bool

	// OnComplete runs once after the clip reaches ClipCompleted, after every
	// clip has advanced for the tick. It may add clips to seq; those are
	// first advanced on the next tick.
	OnComplete func(seq *Sequencer, c *Clip)
}

// Clip is a scheduled ClipSpec. Create clips with Sequencer.Add.
type Clip struct {
	ID uint64

	spec    ClipSpec
	state   ClipState
	elapsed float64
	cycle   int
	from    Vec3
	to      Vec3
	tweens  [3]*gween.Tween
}

// Spec returns the clip's specification.
func (c *Clip) Spec() ClipSpec {
	return c.spec
}

// State returns the clip's lifecycle state.
func (c *Clip) State() ClipState {
	return c.state
}

// Cycle returns the zero-based index of the cycle being played.
func (c *Clip) Cycle() int {
	return c.cycle
}

// Elapsed returns the time the clip has been scheduled, delay included.
func (c *Clip) Elapsed() float64 {
	return c.elapsed
}

// Target returns the animated node, or nil for timer clips.
func (c *Clip) Target() *Node {
	return c.spec.Target
}

// advance moves the clip's playhead by dt and writes the interpolated value.
// It reports the events that occurred, including how many repeat cycles
// began during dt; the sequencer dispatches them.
func (c *Clip) advance(dt float64) (started bool, repeats int, completed bool) {
	if c.state.Terminal() {
		return
	}
	c.elapsed += dt

	if c.state == ClipPending {
		if c.elapsed+clipEpsilon < c.spec.Delay {
			return
		}
		c.start()
		c.state = ClipRunning
		started = true
	}

	local := c.elapsed - c.spec.Delay
	dur := c.spec.Duration
	if dur <= 0 {
		c.write(c.to)
		c.state = ClipCompleted
		return started, 0, true
	}

	cycle := int(math.Floor((local + clipEpsilon) / dur))
	if c.spec.Repeat != RepeatForever && cycle > c.spec.Repeat {
		repeats = c.spec.Repeat - c.cycle
		c.cycle = c.spec.Repeat
		c.write(c.finalValue())
		c.state = ClipCompleted
		return started, repeats, true
	}

	if cycle > c.cycle {
		repeats = cycle - c.cycle
		c.cycle = cycle
		c.state = ClipRepeating
	}

	t := local - float64(cycle)*dur
	if t < 0 {
		t = 0
	}
	if c.spec.Yoyo && cycle%2 == 1 {
		t = dur - t
	}
	c.sample(t)
	return started, repeats, false
}

// start captures the start value and builds one tween per animated axis.
func (c *Clip) start() {
	if c.spec.Target == nil || c.spec.Attr == AttrNone {
		return
	}
	if c.spec.From != nil {
		c.from = *c.spec.From
	} else {
		c.from = readAttr(c.spec.Target, c.spec.Attr)
	}
	c.to = c.spec.To
	fn := c.spec.Ease
	if fn == nil {
		fn = ease.Linear
	}
	for k := 0; k < 3; k++ {
		if c.axes().Has(k) {
			c.tweens[k] = gween.New(float32(c.from[k]), float32(c.to[k]), float32(c.spec.Duration), fn)
		}
	}
}

// sample writes the value at local time t within a cycle.
func (c *Clip) sample(t float64) {
	if c.spec.Target == nil || c.spec.Attr == AttrNone {
		return
	}
	v := readAttr(c.spec.Target, c.spec.Attr)
	for k, tw := range c.tweens {
		if tw == nil {
			continue
		}
		val, _ := tw.Set(float32(t))
		v[k] = float64(val)
	}
	writeAttr(c.spec.Target, c.spec.Attr, v)
}

// write sets the animated axes to v exactly.
func (c *Clip) write(v Vec3) {
	if c.spec.Target == nil || c.spec.Attr == AttrNone {
		return
	}
	cur := readAttr(c.spec.Target, c.spec.Attr)
	for k := 0; k < 3; k++ {
		if c.axes().Has(k) {
			cur[k] = v[k]
		}
	}
	writeAttr(c.spec.Target, c.spec.Attr, cur)
}

// finalValue is where the last cycle ends: the start value when a yoyo
// clip plays an even number of cycles, the end value otherwise.
func (c *Clip) finalValue() Vec3 {
	if c.spec.Yoyo && (c.spec.Repeat+1)%2 == 0 {
		return c.from
	}
	return c.to
}

func (c *Clip) axes() Axis {
	if c.spec.Attr == AttrOpacity {
		return AxisX
	}
	if c.spec.Axes == 0 {
		return AxisXYZ
	}
	return c.spec.Axes
}

func readAttr(n *Node, a Attr) Vec3 {
	switch a {
	case AttrPosition:
		return n.Position
	case AttrRotation:
		return n.Rotation
	case AttrScale:
		return n.Scale
	case AttrOpacity:
		return Vec3{n.Opacity, 0, 0}
	}
	return Vec3{}
}

func writeAttr(n *Node, a Attr, v Vec3) {
	switch a {
	case AttrPosition:
		n.Position = v
	case AttrRotation:
		n.Rotation = v
	case AttrScale:
		n.Scale = v
	case AttrOpacity:
		n.Opacity = v[0]
	}
	n.MarkDirty()
}
