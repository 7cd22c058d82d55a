package system

import (
	"time"

	"github.com/wildgrove/server/internal/core/event"
	"github.com/wildgrove/server/internal/core/system"
)

// DispatchSystem rotates the event bus at tick start and delivers last
// tick's events to subscribers before anything else mutates the world.
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() system.Phase { return system.PhasePreUpdate }

func (s *DispatchSystem) Update(time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
