// Package twig generates procedural letter decorations and choreographs
// their animation.
//
// A letter entity is a root group owning three meshes: an extruded glyph,
// a noisy vertical branch, and a helical knot wrapped around the branch.
// Geometry is built on the CPU from Catmull-Rom paths swept into tubes with
// parallel-transport frames and displaced with OpenSimplex noise. Nothing
// in this package talks to a GPU; see twig/view for an [Ebitengine]
// renderer.
//
// # Quick start
//
//	cfg := twig.DefaultConfig()
//	glyphs, _ := twig.DefaultGlyphs(cfg.Geometry.Glyph.CurveSteps)
//	scene := twig.NewScene()
//	f := twig.NewFactory(scene, glyphs, twig.NewNoise(cfg.Seed), cfg.Geometry)
//	letters, _ := f.CreatePhrase("HAPPY", twig.Vec3{}, cfg.Spacing)
//	twig.NewChoreographer(scene, cfg, nil).Play(letters, "YAY")
//
//	for {
//		scene.Update(1.0 / 60)
//	}
//
// # Scene graph
//
// Every element is a [Node]. Nodes form a tree rooted at [Scene.Root] and
// inherit their parent's transform and opacity. Entity children are tagged
// with a [Role] so lookups never depend on mesh size:
//
//	knot, err := scene.Registry().ChildByRole(entity, twig.RoleKnot)
//	if errors.Is(err, twig.ErrNotFound) {
//		// already untied
//	}
//
// # Animation
//
// A [Sequencer] advances [Clip] values once per [Scene.Update]. Clips
// interpolate one node attribute with a [gween] easing, may repeat or yoyo,
// and chain through completion callbacks, which run after every clip has
// advanced for the tick. [Choreographer] builds the canonical sequence on
// top: drop, leaf burst, wobble, sway, untie, and relocate.
//
// Clip lifecycle events can be forwarded to a [Donburi] world through
// twig/ecs.
//
// # Configuration
//
// [DefaultConfig] holds every constant. [LoadConfig] overlays a TOML file
// and [WatchConfig] reloads it on change.
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
package twig
