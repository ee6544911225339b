package twig

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestDefaultConfigRoundTrip(t *testing.T) {
	want := DefaultConfig()
	data, err := want.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, want)
	}
}

func TestParseConfigOverlay(t *testing.T) {
	cfg, err := ParseConfig([]byte(`
phrase = "hi"

[geometry.knot]
loops = 4

[choreography.drop]
duration = 2.5
`))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	def := DefaultConfig()
	if cfg.Phrase != "hi" {
		t.Errorf("Phrase = %q, want hi", cfg.Phrase)
	}
	if cfg.Geometry.Knot.Loops != 4 {
		t.Errorf("Loops = %v, want 4", cfg.Geometry.Knot.Loops)
	}
	if cfg.Choreography.Drop.Duration != 2.5 {
		t.Errorf("Drop.Duration = %v, want 2.5", cfg.Choreography.Drop.Duration)
	}
	// Keys not in the file keep their defaults.
	if cfg.Choreography.Drop.Ease != def.Choreography.Drop.Ease {
		t.Errorf("Drop.Ease = %q, want default %q", cfg.Choreography.Drop.Ease, def.Choreography.Drop.Ease)
	}
	if cfg.Geometry.Knot.Tube != def.Geometry.Knot.Tube {
		t.Errorf("Knot.Tube = %+v, want default", cfg.Geometry.Knot.Tube)
	}
	if cfg.Geometry.Ceiling != 15 {
		t.Errorf("Ceiling = %v, want 15", cfg.Geometry.Ceiling)
	}
}

func TestParseConfigInvalid(t *testing.T) {
	if _, err := ParseConfig([]byte("phrase = [")); err == nil {
		t.Error("expected a parse error")
	}
}

func TestLoadConfigMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Error("missing file should still return defaults")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twig.toml")
	if err := os.WriteFile(path, []byte("seed = 42\n[choreography.burst]\ncount = 12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Seed != 42 || cfg.Choreography.Burst.Count != 12 {
		t.Errorf("Seed/Count = %d/%d, want 42/12", cfg.Seed, cfg.Choreography.Burst.Count)
	}
}

func TestWatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "twig.toml")
	if err := os.WriteFile(path, []byte("seed = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg Config, err error) {
			if err == nil {
				got <- cfg
			}
		})
	}()

	// The watcher may not be registered yet; keep writing until it reports.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case cfg := <-got:
			if cfg.Seed == 7 {
				cancel()
				if err := <-done; err != nil {
					t.Errorf("WatchConfig: %v", err)
				}
				return
			}
		case <-tick.C:
			if err := os.WriteFile(path, []byte("seed = 7\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload within 5s")
		}
	}
}
