//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Run mg.Namespace

// Runs the letterfall example with the default config.
func (Run) Letterfall() error {
	return goTool("run", "./examples/letterfall")
}

// Runs letterfall against examples/letterfall/letterfall.toml and replays on save.
func (Run) Watch() error {
	mg.Deps(Build.Letterfall)
	return sh.RunV(letterfallBin,
		"-config", "examples/letterfall/letterfall.toml", "-watch", "-debug")
}
