package twig

import "github.com/google/uuid"

// ClipEventType identifies a clip lifecycle transition.
type ClipEventType uint8

const (
	ClipStarted  ClipEventType = iota // delay elapsed, interpolation began
	ClipRepeated                      // a new repeat cycle began
	ClipFinished                      // reached ClipCompleted
	ClipAborted                       // cancelled before completion
)

// String returns the event name used in logs.
func (t ClipEventType) String() string {
	switch t {
	case ClipStarted:
		return "started"
	case ClipRepeated:
		return "repeated"
	case ClipFinished:
		return "finished"
	case ClipAborted:
		return "aborted"
	}
	return "unknown"
}

// ClipEvent carries clip lifecycle data to a ClipEventSink.
type ClipEvent struct {
	Type   ClipEventType
	ClipID uint64
	Name   string
	Target *Node
	Attr   Attr
	Cycle  int
	// Entity is the ID of the entity owning Target, uuid.Nil if none.
	Entity uuid.UUID
}

// ClipEventSink is the interface for optional clip event forwarding (see
// the ecs package). Events are emitted synchronously during Tick.
type ClipEventSink interface {
	EmitClipEvent(event ClipEvent)
}

// Sequencer schedules clips and advances them once per Tick. It is driven
// by the frame loop and never blocks; it is not safe for concurrent use.
//
// Clips advance in registration order. Completion callbacks run after every
// clip has advanced for the tick, exactly once per completed clip. Clips
// added during a tick (from callbacks) join the active list but first
// advance on the next tick.
type Sequencer struct {
	clips   []*Clip
	added   []*Clip
	done    []*Clip
	nextID  uint64
	ticking bool
	sink    ClipEventSink
}

// NewSequencer creates an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// SetEventSink sets the optional clip event sink.
func (s *Sequencer) SetEventSink(sink ClipEventSink) {
	s.sink = sink
}

// Add schedules spec and returns its clip.
func (s *Sequencer) Add(spec ClipSpec) *Clip {
	s.nextID++
	c := &Clip{ID: s.nextID, spec: spec}
	if s.ticking {
		s.added = append(s.added, c)
	} else {
		s.clips = append(s.clips, c)
	}
	return c
}

// After schedules fn to run once delay seconds from now. The returned clip
// can be cancelled like any other.
func (s *Sequencer) After(delay float64, name string, fn func(seq *Sequencer)) *Clip {
	return s.Add(ClipSpec{
		Name:  name,
		Attr:  AttrNone,
		Delay: delay,
		OnComplete: func(seq *Sequencer, _ *Clip) {
			fn(seq)
		},
	})
}

// Tick advances every active clip by dt seconds, then fires completion
// callbacks for clips that completed during this tick.
func (s *Sequencer) Tick(dt float64) {
	s.ticking = true

	for _, c := range s.clips {
		if c.state.Terminal() {
			continue
		}
		if t := c.spec.Target; t != nil && t.IsDisposed() {
			if globalDebug {
				logger.Warn("clip target disposed, cancelling", "clip", c.ID, "name", c.spec.Name)
			}
			s.cancel(c)
			continue
		}
		started, repeats, completed := c.advance(dt)
		if started {
			s.emit(ClipStarted, c)
		}
		// One event per cycle crossed, even when a long tick skips several.
		for k := repeats - 1; k >= 0; k-- {
			s.emitCycle(ClipRepeated, c, c.cycle-k)
		}
		if completed {
			s.emit(ClipFinished, c)
			s.done = append(s.done, c)
		}
	}

	for i := 0; i < len(s.done); i++ {
		c := s.done[i]
		if c.spec.OnComplete != nil {
			c.spec.OnComplete(s, c)
		}
		s.done[i] = nil
	}
	s.done = s.done[:0]

	s.compact()
	s.clips = append(s.clips, s.added...)
	clear(s.added)
	s.added = s.added[:0]
	s.ticking = false
}

// Cancel stops c without firing its completion callback. Completed or
// already cancelled clips are left alone.
func (s *Sequencer) Cancel(c *Clip) {
	if c == nil || c.state.Terminal() {
		return
	}
	s.cancel(c)
}

func (s *Sequencer) cancel(c *Clip) {
	c.state = ClipCancelled
	s.emit(ClipAborted, c)
}

// CancelTarget cancels every live clip animating node or one of its
// descendants and returns how many were cancelled. Call it before disposing
// a node that may still be animated.
func (s *Sequencer) CancelTarget(node *Node) int {
	n := 0
	for _, list := range [][]*Clip{s.clips, s.added} {
		for _, c := range list {
			if c.state.Terminal() || c.spec.Target == nil {
				continue
			}
			if c.spec.Target.IsDescendantOf(node) {
				s.cancel(c)
				n++
			}
		}
	}
	return n
}

// CancelAll cancels every live clip.
func (s *Sequencer) CancelAll() {
	for _, list := range [][]*Clip{s.clips, s.added} {
		for _, c := range list {
			if !c.state.Terminal() {
				s.cancel(c)
			}
		}
	}
}

// Active returns the live clips in registration order. The returned slice
// is a copy.
func (s *Sequencer) Active() []*Clip {
	out := make([]*Clip, 0, len(s.clips)+len(s.added))
	for _, list := range [][]*Clip{s.clips, s.added} {
		for _, c := range list {
			if !c.state.Terminal() {
				out = append(out, c)
			}
		}
	}
	return out
}

// Len returns the number of live clips.
func (s *Sequencer) Len() int {
	n := 0
	for _, list := range [][]*Clip{s.clips, s.added} {
		for _, c := range list {
			if !c.state.Terminal() {
				n++
			}
		}
	}
	return n
}

// compact drops terminal clips, preserving order and nil-ing the tail so
// finished clips can be collected.
func (s *Sequencer) compact() {
	j := 0
	for _, c := range s.clips {
		if !c.state.Terminal() {
			s.clips[j] = c
			j++
		}
	}
	clear(s.clips[j:])
	s.clips = s.clips[:j]
}

func (s *Sequencer) emit(t ClipEventType, c *Clip) {
	s.emitCycle(t, c, c.cycle)
}

func (s *Sequencer) emitCycle(t ClipEventType, c *Clip, cycle int) {
	if s.sink == nil {
		return
	}
	var owner uuid.UUID
	if c.spec.Target != nil {
		owner = c.spec.Target.Entity
	}
	s.sink.EmitClipEvent(ClipEvent{
		Type:   t,
		ClipID: c.ID,
		Name:   c.spec.Name,
		Target: c.spec.Target,
		Attr:   c.spec.Attr,
		Cycle:  cycle,
		Entity: owner,
	})
}
