// Package ecs provides ECS adapters for the canvas touch dispatcher.
//
// The primary adapter is [NewDonburiSink], which bridges canvas touch
// records (down-inside, up-inside, up-outside) into a [Donburi] world as
// typed events. Link a view to an entity by setting its EntityID, then
// subscribe to [TouchEventType] in your ECS systems.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	renderer.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
