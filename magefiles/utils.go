//go:build mage

package main

import (
	"github.com/magefile/mage/sh"
)

const letterfallBin = "bin/letterfall"

// goTool runs the go command with its output streamed to the terminal.
func goTool(args ...string) error {
	return sh.RunV("go", args...)
}
