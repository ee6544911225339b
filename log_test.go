package twig

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSetLoggerCapturesSkips(t *testing.T) {
	prev := Logger()
	defer SetLogger(prev)

	var buf bytes.Buffer
	SetLogger(log.New(&buf))
	SetDebugMode(true)
	defer SetDebugMode(false)

	scene := NewScene()
	c := NewChoreographer(scene, DefaultConfig(), nil)
	c.Untie("letter-Q")

	out := buf.String()
	if !strings.Contains(out, "untie skipped") || !strings.Contains(out, "letter-Q") {
		t.Errorf("log output = %q, want untie skip entry", out)
	}
}

func TestSetLoggerNil(t *testing.T) {
	prev := Logger()
	SetLogger(nil)
	if Logger() != prev {
		t.Error("SetLogger(nil) should keep the current logger")
	}
}

func TestDebugModeLevel(t *testing.T) {
	SetDebugMode(true)
	if Logger().GetLevel() != log.DebugLevel {
		t.Errorf("level = %v, want debug", Logger().GetLevel())
	}
	SetDebugMode(false)
	if Logger().GetLevel() != log.InfoLevel {
		t.Errorf("level = %v, want info", Logger().GetLevel())
	}
}
