package twig

import (
	"math/rand/v2"
	"strings"
	"unicode"
)

// Choreographer schedules the canonical letter sequence on a scene's
// sequencer: drop, leaf burst, wobble, sway, untie, and relocate. Stages are
// chained only through clip completion callbacks.
type Choreographer struct {
	scene   *Scene
	cfg     ChoreographyConfig
	ceiling float64
	rng     *rand.Rand
	leaves  *LeafBurst
}

// NewChoreographer creates a choreographer for scene. A nil rng uses the
// package-level source; tests pass a seeded one.
func NewChoreographer(scene *Scene, cfg Config, rng *rand.Rand) *Choreographer {
	return &Choreographer{
		scene:   scene,
		cfg:     cfg.Choreography,
		ceiling: cfg.Geometry.Ceiling,
		rng:     rng,
		leaves:  NewLeafBurst(scene, rng, cfg.Geometry.Leaf, cfg.Choreography.Burst),
	}
}

// Leaves returns the burst spawner used on landing.
func (c *Choreographer) Leaves() *LeafBurst {
	return c.leaves
}

// Drop moves e to the ceiling and animates it down to its home height. On
// landing it emits a leaf burst and starts a wobble, then a sway once the
// wobble settles.
func (c *Choreographer) Drop(e *Entity) *Clip {
	cfg := c.cfg.Drop
	root := e.Root
	root.Position[1] = c.ceiling
	root.MarkDirty()

	return c.scene.Sequencer().Add(ClipSpec{
		Name:     e.Name + "/drop",
		Target:   root,
		Attr:     AttrPosition,
		Axes:     AxisY,
		From:     &Vec3{0, c.ceiling, 0},
		To:       Vec3{0, e.Home.Y(), 0},
		Duration: cfg.Duration,
		Ease:     easeOrLinear(cfg.Ease),
		OnComplete: func(_ *Sequencer, _ *Clip) {
			logger.Debug("landed", "entity", e.Name)
			c.Burst(e.Position())
			c.wobble(e, func(_ *Sequencer, _ *Clip) {
				c.Sway(e)
			})
		},
	})
}

// Burst emits one batch of leaves at the world position at.
func (c *Choreographer) Burst(at Vec3) []*Node {
	return c.leaves.Emit(at)
}

// Wobble tilts e by a random amount on x and z and springs it back to rest.
func (c *Choreographer) Wobble(e *Entity) *Clip {
	return c.wobble(e, nil)
}

func (c *Choreographer) wobble(e *Entity, done func(*Sequencer, *Clip)) *Clip {
	cfg := c.cfg.Wobble
	tilt := Range{Min: -cfg.Tilt, Max: cfg.Tilt}
	return c.scene.Sequencer().Add(ClipSpec{
		Name:       e.Name + "/wobble",
		Target:     e.Root,
		Attr:       AttrRotation,
		Axes:       AxisX | AxisZ,
		From:       &Vec3{tilt.Random(c.rng), 0, tilt.Random(c.rng)},
		To:         Vec3{},
		Duration:   cfg.Clip.Duration,
		Ease:       easeOrLinear(cfg.Clip.Ease),
		OnComplete: done,
	})
}

// Sway rocks e around z forever with a small random amplitude. A half swing
// from the current angle to -amplitude leads into an endless yoyo between
// -amplitude and +amplitude. The returned clip is the lead-in; cancel the
// entity's clips with Sequencer.CancelTarget to stop the sway.
func (c *Choreographer) Sway(e *Entity) *Clip {
	cfg := c.cfg.Sway
	amp := cfg.Amplitude.Random(c.rng)
	fn := easeOrLinear(cfg.Clip.Ease)
	return c.scene.Sequencer().Add(ClipSpec{
		Name:     e.Name + "/sway-in",
		Target:   e.Root,
		Attr:     AttrRotation,
		Axes:     AxisZ,
		To:       Vec3{0, 0, -amp},
		Duration: cfg.Clip.Duration / 2,
		Ease:     fn,
		OnComplete: func(seq *Sequencer, _ *Clip) {
			seq.Add(ClipSpec{
				Name:     e.Name + "/sway",
				Target:   e.Root,
				Attr:     AttrRotation,
				Axes:     AxisZ,
				From:     &Vec3{0, 0, -amp},
				To:       Vec3{0, 0, amp},
				Duration: cfg.Clip.Duration,
				Ease:     fn,
				Repeat:   RepeatForever,
				Yoyo:     true,
			})
		},
	})
}

// ScheduleUntie waits delay seconds, then unties the knot of every named
// entity. Missing entities or knots are skipped.
func (c *Choreographer) ScheduleUntie(names []string, delay float64) *Clip {
	names = append([]string(nil), names...)
	return c.scene.Sequencer().After(delay, "untie", func(*Sequencer) {
		for _, name := range names {
			c.Untie(name)
		}
	})
}

// Untie floats the knot of the named entity upward while fading it out,
// then removes and disposes it. It reports whether an untie was scheduled;
// a missing entity or knot is logged and skipped.
func (c *Choreographer) Untie(name string) bool {
	reg := c.scene.Registry()
	e, err := reg.Lookup(name)
	if err != nil {
		logger.Debug("untie skipped", "entity", name, "err", err)
		return false
	}
	knot, err := reg.ChildByRole(e, RoleKnot)
	if err != nil {
		logger.Debug("untie skipped", "entity", name, "err", err)
		return false
	}

	cfg := c.cfg.Untie
	fn := easeOrLinear(cfg.Clip.Ease)
	seq := c.scene.Sequencer()
	seq.Add(ClipSpec{
		Name:     name + "/untie-fade",
		Target:   knot,
		Attr:     AttrOpacity,
		To:       Vec3{0, 0, 0},
		Duration: cfg.Clip.Duration,
		Ease:     fn,
	})
	seq.Add(ClipSpec{
		Name:     name + "/untie-rise",
		Target:   knot,
		Attr:     AttrPosition,
		Axes:     AxisY,
		To:       Vec3{0, knot.Position.Y() + cfg.Rise, 0},
		Duration: cfg.Clip.Duration,
		Ease:     fn,
		OnComplete: func(_ *Sequencer, _ *Clip) {
			e.RemoveKnot()
		},
	})
	return true
}

// Relocate sends each moved entity to a randomly chosen entity whose
// character appears in targetPhrase, spinning it around y on the way. It
// returns the number of relocations scheduled; with no candidates nothing
// happens.
func (c *Choreographer) Relocate(moved []*Entity, targetPhrase string) int {
	skip := make(map[string]bool, len(moved))
	for _, e := range moved {
		skip[e.Name] = true
	}
	target := strings.ToUpper(targetPhrase)
	candidates := c.scene.Registry().Match(func(e *Entity) bool {
		return !skip[e.Name] && strings.ContainsRune(target, e.Char)
	})
	if len(candidates) == 0 {
		logger.Debug("relocate skipped, no candidates", "target", targetPhrase)
		return 0
	}

	cfg := c.cfg.Relocate
	fn := easeOrLinear(cfg.Clip.Ease)
	seq := c.scene.Sequencer()
	n := 0
	for _, e := range moved {
		if e.Root.IsDisposed() {
			continue
		}
		dest := candidates[c.intN(len(candidates))]
		seq.Add(ClipSpec{
			Name:     e.Name + "/relocate",
			Target:   e.Root,
			Attr:     AttrPosition,
			To:       dest.Position(),
			Duration: cfg.Clip.Duration,
			Ease:     fn,
		})
		seq.Add(ClipSpec{
			Name:     e.Name + "/relocate-spin",
			Target:   e.Root,
			Attr:     AttrRotation,
			Axes:     AxisY,
			To:       Vec3{0, e.Root.Rotation.Y() + cfg.Spin.Random(c.rng), 0},
			Duration: cfg.Clip.Duration,
			Ease:     fn,
		})
		logger.Debug("relocating", "entity", e.Name, "to", dest.Name)
		n++
	}
	return n
}

// Play runs the canonical sequence on entities: every entity drops, bursts,
// wobbles, and sways; after the untie delay every knot is untied; when the
// untie finishes, entities whose character is not in targetPhrase migrate
// onto the ones that are.
func (c *Choreographer) Play(entities []*Entity, targetPhrase string) {
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		c.Drop(e)
		names = append(names, e.Name)
	}

	untie := c.cfg.Untie
	c.ScheduleUntie(names, untie.Delay)

	target := strings.ToUpper(targetPhrase)
	c.scene.Sequencer().After(untie.Delay+untie.Clip.Duration, "relocate", func(*Sequencer) {
		var moved []*Entity
		for _, name := range names {
			e, err := c.scene.Registry().Lookup(name)
			if err != nil {
				continue
			}
			if !strings.ContainsRune(target, unicode.ToUpper(e.Char)) {
				moved = append(moved, e)
			}
		}
		c.Relocate(moved, targetPhrase)
	})
}

func (c *Choreographer) intN(n int) int {
	if c.rng == nil {
		return rand.IntN(n)
	}
	return c.rng.IntN(n)
}
