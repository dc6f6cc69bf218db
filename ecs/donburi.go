package ecs

import (
	"github.com/phanxgames/canvas"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// TouchEventType is the Donburi event type for canvas touch records.
// Subscribe to it in your ECS systems to receive down/up notifications of
// views linked to an entity.
var TouchEventType = events.NewEventType[canvas.TouchRecord]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Records of
// views with a non-zero EntityID are published to TouchEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) canvas.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitTouch(rec canvas.TouchRecord) {
	if rec.EntityID == 0 {
		return
	}
	TouchEventType.Publish(s.world, rec)
}
