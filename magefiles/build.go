//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Build mg.Namespace

// Compiles every package, the example included.
func (Build) All() error {
	return goTool("build", "./...")
}

// Builds the letterfall example into bin/.
func (Build) Letterfall() error {
	return goTool("build", "-o", letterfallBin, "./examples/letterfall")
}

type Test mg.Namespace

// Runs the unit tests of the core and ecs packages.
func (Test) Unit() error {
	return goTool("test", ".", "./ecs/...")
}

// Runs every test, including the ebiten-backed view package.
func (Test) All() error {
	mg.Deps(Build.All)
	return goTool("test", "-race", "./...")
}

// Runs the mesh, sequencer and scene benchmarks.
func (Test) Bench() error {
	return goTool("test", "-run", "^$", "-bench", ".", "-benchmem", ".")
}

// Removes build output.
func Clean() error {
	return sh.Rm("bin")
}
