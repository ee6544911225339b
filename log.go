package twig

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// logger is the package-wide structured logger. Replace it with SetLogger.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "twig",
	Level:           log.InfoLevel,
})

// globalDebug enables disposed-node checks and debug-level logging. twig is
// single-threaded, so a plain bool is enough.
var globalDebug bool

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(l *log.Logger) {
	if l == nil {
		return
	}
	logger = l
	if globalDebug {
		logger.SetLevel(log.DebugLevel)
	}
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return logger
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and
// skipped choreography steps are reported at debug level.
func SetDebugMode(enabled bool) {
	globalDebug = enabled
	if enabled {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. In release mode callers skip this entirely.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("twig debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logger.Warn("tree depth exceeds threshold", "node", n.Name, "depth", depth, "threshold", debugMaxTreeDepth)
	}
}

const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		logger.Warn("child count exceeds threshold", "node", n.Name, "children", len(n.children), "threshold", debugMaxChildCount)
	}
}
