package view

import (
	"time"

	"github.com/phanxgames/twig"
)

// FrameStats holds timing and submission counts for the last Draw.
type FrameStats struct {
	CollectTime time.Duration
	SortTime    time.Duration
	SubmitTime  time.Duration
	Triangles   int
	DrawCalls   int
}

// Total returns the summed frame time.
func (s FrameStats) Total() time.Duration {
	return s.CollectTime + s.SortTime + s.SubmitTime
}

// Stats returns the stats of the last Draw.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// logStats reports the frame at debug level when Debug is set.
func (r *Renderer) logStats() {
	if !r.Debug {
		return
	}
	s := r.stats
	twig.Logger().Debug("frame",
		"collect", s.CollectTime, "sort", s.SortTime, "submit", s.SubmitTime, "total", s.Total(),
		"triangles", s.Triangles, "draw_calls", s.DrawCalls)
}
