// Package ecs provides ECS adapters for twig.
package ecs

import (
	"github.com/phanxgames/twig"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ClipEventType is the Donburi event type for twig clip lifecycle events.
// Subscribe to this in your ECS systems to react to animation stages.
var ClipEventType = events.NewEventType[twig.ClipEvent]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates a ClipEventSink backed by a Donburi world.
// Clip events are published to ClipEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) twig.ClipEventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitClipEvent(event twig.ClipEvent) {
	ClipEventType.Publish(s.world, event)
}
