package twig

import (
	"math"
	"math/rand/v2"
)

// LeafBurst spawns transient leaf particles. Leaves are plain scene nodes
// owned by nobody: each one animates through a launch, a fall, and a twirl,
// then destroys itself when the fall lands.
type LeafBurst struct {
	scene  *Scene
	rng    *rand.Rand
	geom   LeafConfig
	config BurstConfig

	live    []*Node
	spawned int
	bursts  int
}

// NewLeafBurst creates a burst spawner. A nil rng uses the package-level
// source.
func NewLeafBurst(scene *Scene, rng *rand.Rand, geom LeafConfig, cfg BurstConfig) *LeafBurst {
	return &LeafBurst{scene: scene, rng: rng, geom: geom, config: cfg}
}

// Config returns a pointer to the burst config for live tuning. Changes
// apply to the next burst.
func (b *LeafBurst) Config() *BurstConfig {
	return &b.config
}

// AliveCount returns the number of spawned leaves not yet disposed, however
// they were destroyed.
func (b *LeafBurst) AliveCount() int {
	b.prune()
	return len(b.live)
}

func (b *LeafBurst) prune() {
	j := 0
	for _, leaf := range b.live {
		if !leaf.IsDisposed() {
			b.live[j] = leaf
			j++
		}
	}
	clear(b.live[j:])
	b.live = b.live[:j]
}

// Spawned returns the total number of leaves ever spawned.
func (b *LeafBurst) Spawned() int {
	return b.spawned
}

// Bursts returns how many bursts have been emitted.
func (b *LeafBurst) Bursts() int {
	return b.bursts
}

// Emit spawns one batch of Count leaves at the world position at and
// returns them.
func (b *LeafBurst) Emit(at Vec3) []*Node {
	cfg := b.config
	seq := b.scene.Sequencer()
	launchEase := easeOrLinear(cfg.Launch.Ease)
	fallEase := easeOrLinear(cfg.Fall.Ease)
	twirlEase := easeOrLinear(cfg.Twirl.Ease)

	leaves := make([]*Node, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		leaf := NewMeshNode("leaf", RoleLeaf, NewPlane(b.geom.Width, b.geom.Height), MaterialLeaf)
		leaf.Position = at
		b.scene.Add(leaf)

		angle := b.float() * 2 * math.Pi
		speed := cfg.Speed.Random(b.rng)
		sin, cos := math.Sincos(angle)
		to := at.Add(Vec3{cos * speed, cfg.Lift.Random(b.rng), sin * speed})

		twirl := seq.Add(ClipSpec{
			Name:     "leaf-twirl",
			Target:   leaf,
			Attr:     AttrRotation,
			To:       Vec3{cfg.Spin.Random(b.rng), cfg.Spin.Random(b.rng), cfg.Spin.Random(b.rng)},
			Duration: cfg.Twirl.Duration,
			Ease:     twirlEase,
		})

		seq.Add(ClipSpec{
			Name:     "leaf-launch",
			Target:   leaf,
			Attr:     AttrPosition,
			To:       to,
			Duration: cfg.Launch.Duration,
			Ease:     launchEase,
			OnComplete: func(seq *Sequencer, _ *Clip) {
				seq.Add(ClipSpec{
					Name:     "leaf-fall",
					Target:   leaf,
					Attr:     AttrPosition,
					Axes:     AxisY,
					To:       Vec3{0, 0, 0},
					Duration: cfg.Fall.Duration,
					Ease:     fallEase,
					OnComplete: func(seq *Sequencer, _ *Clip) {
						seq.Cancel(twirl)
						b.scene.Destroy(leaf)
					},
				})
			},
		})
		leaves = append(leaves, leaf)
	}

	b.prune()
	b.live = append(b.live, leaves...)
	b.spawned += len(leaves)
	b.bursts++
	logger.Debug("leaf burst", "at", at, "count", len(leaves), "alive", len(b.live))
	return leaves
}

func (b *LeafBurst) float() float64 {
	if b.rng == nil {
		return rand.Float64()
	}
	return b.rng.Float64()
}
