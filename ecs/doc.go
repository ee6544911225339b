// Package ecs provides ECS adapters for twig's clip lifecycle events.
//
// The primary adapter is [NewDonburiSink], which forwards sequencer events
// (clip started, repeated, finished, aborted) into a [Donburi] world as typed
// events. Subscribe to [ClipEventType] in your ECS systems to receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	scene.Sequencer().SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
