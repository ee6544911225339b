package twig

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// Config holds every geometry and choreography constant. DefaultConfig
// returns the canonical values; LoadConfig overlays a TOML file on top.
type Config struct {
	Seed         int64              `toml:"seed"`
	Phrase       string             `toml:"phrase"`
	TargetPhrase string             `toml:"target_phrase"`
	Spacing      float64            `toml:"spacing"`
	Geometry     GeometryConfig     `toml:"geometry"`
	Choreography ChoreographyConfig `toml:"choreography"`
}

// GeometryConfig sizes the generated meshes.
type GeometryConfig struct {
	// Ceiling is the height letters drop from and the top of every branch.
	Ceiling float64      `toml:"ceiling"`
	Glyph   GlyphConfig  `toml:"glyph"`
	Branch  BranchConfig `toml:"branch"`
	Knot    KnotConfig   `toml:"knot"`
	Leaf    LeafConfig   `toml:"leaf"`
}

// BranchConfig describes the vertical branch: ceiling -> ceiling-Drop -> ground.
type BranchConfig struct {
	X            float64      `toml:"x"`
	Drop         float64      `toml:"drop"`
	Tube         TubeConfig   `toml:"tube"`
	Displacement Displacement `toml:"displacement"`
}

// KnotConfig describes the helix wrapped around the branch.
type KnotConfig struct {
	Loops        float64      `toml:"loops"`
	Radius       float64      `toml:"radius"`
	Height       float64      `toml:"height"`
	Points       int          `toml:"points"`
	CenterZ      float64      `toml:"center_z"`
	Rotation     Vec3         `toml:"rotation"`
	Offset       Vec3         `toml:"offset"`
	Tube         TubeConfig   `toml:"tube"`
	Displacement Displacement `toml:"displacement"`
}

// LeafConfig sizes burst particles.
type LeafConfig struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// ClipConfig is the timing of one clip.
type ClipConfig struct {
	Duration float64 `toml:"duration"`
	Ease     string  `toml:"ease"`
}

// ChoreographyConfig times the canonical sequence.
type ChoreographyConfig struct {
	Drop     ClipConfig     `toml:"drop"`
	Burst    BurstConfig    `toml:"burst"`
	Wobble   WobbleConfig   `toml:"wobble"`
	Sway     SwayConfig     `toml:"sway"`
	Untie    UntieConfig    `toml:"untie"`
	Relocate RelocateConfig `toml:"relocate"`
}

// BurstConfig controls the leaf burst on landing.
type BurstConfig struct {
	Count  int        `toml:"count"`
	Speed  Range      `toml:"speed"`
	Lift   Range      `toml:"lift"`
	Spin   Range      `toml:"spin"`
	Launch ClipConfig `toml:"launch"`
	Fall   ClipConfig `toml:"fall"`
	Twirl  ClipConfig `toml:"twirl"`
}

// WobbleConfig controls the post-landing tilt.
type WobbleConfig struct {
	Tilt float64    `toml:"tilt"`
	Clip ClipConfig `toml:"clip"`
}

// SwayConfig controls the endless ambient oscillation.
type SwayConfig struct {
	Amplitude Range      `toml:"amplitude"`
	Clip      ClipConfig `toml:"clip"`
}

// UntieConfig controls knot removal.
type UntieConfig struct {
	Delay float64    `toml:"delay"`
	Rise  float64    `toml:"rise"`
	Clip  ClipConfig `toml:"clip"`
}

// RelocateConfig controls letter migration.
type RelocateConfig struct {
	Spin Range      `toml:"spin"`
	Clip ClipConfig `toml:"clip"`
}

// DefaultConfig returns the canonical configuration.
func DefaultConfig() Config {
	return Config{
		Seed:         1,
		Phrase:       "HAPPY",
		TargetPhrase: "YAY",
		Spacing:      3,
		Geometry: GeometryConfig{
			Ceiling: 15,
			Glyph:   GlyphConfig{Height: 3, Depth: 0.5, CurveSteps: 8},
			Branch: BranchConfig{
				X:            -0.1,
				Drop:         4,
				Tube:         TubeConfig{Segments: 60, Radius: 0.12, RadialSegments: 16},
				Displacement: BranchDisplacement,
			},
			Knot: KnotConfig{
				Loops:        3,
				Radius:       0.5,
				Height:       2.5,
				Points:       601,
				CenterZ:      -0.15,
				Rotation:     Vec3{0, 0, 0.5},
				Offset:       Vec3{0.1, 1.5, 0.1},
				Tube:         TubeConfig{Segments: 800, Radius: 0.08, RadialSegments: 20},
				Displacement: KnotDisplacement,
			},
			Leaf: LeafConfig{Width: 0.2, Height: 0.1},
		},
		Choreography: ChoreographyConfig{
			Drop: ClipConfig{Duration: 1.2, Ease: "power2.in"},
			Burst: BurstConfig{
				Count:  30,
				Speed:  Range{Min: 1, Max: 3},
				Lift:   Range{Min: 1, Max: 3},
				Spin:   Range{Min: 0, Max: math.Pi},
				Launch: ClipConfig{Duration: 0.8, Ease: "power3.out"},
				Fall:   ClipConfig{Duration: 1.2, Ease: "bounce.out"},
				Twirl:  ClipConfig{Duration: 2, Ease: "power1.out"},
			},
			Wobble: WobbleConfig{Tilt: 0.2, Clip: ClipConfig{Duration: 2, Ease: "elastic.out"}},
			Sway: SwayConfig{
				Amplitude: Range{Min: 0.02, Max: 0.06},
				Clip:      ClipConfig{Duration: 1.6, Ease: "sine.inOut"},
			},
			Untie: UntieConfig{Delay: 6, Rise: 2, Clip: ClipConfig{Duration: 1.5, Ease: "power2.out"}},
			Relocate: RelocateConfig{
				Spin: Range{Min: math.Pi, Max: 3 * math.Pi},
				Clip: ClipConfig{Duration: 2, Ease: "power2.inOut"},
			},
		},
	}
}

// ParseConfig overlays TOML data onto DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads path and overlays it onto DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}

// Marshal encodes cfg as TOML.
func (c Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// WatchConfig reloads path whenever it is written and passes the result to
// fn. It blocks until ctx is done. fn runs on the watcher goroutine; hand
// the config to the frame loop rather than touching the scene from it.
func WatchConfig(ctx context.Context, path string, fn func(Config, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace files by rename.
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				logger.Debug("config changed", "path", abs, "op", ev.Op.String())
				fn(LoadConfig(abs))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", "err", err)
		}
	}
}
