package system

import "time"

// Phase defines execution ordering within a single tick. The simulation
// contract is: events from the previous tick are delivered first, then
// environmental modifiers adjust stats, then behavior runs, then proximity
// is recomputed from the new positions.
type Phase int

const (
	PhasePreUpdate   Phase = iota // 0: deliver last tick's events
	PhaseEnvironment              // 1: circadian/weather adjustments
	PhasePack                     // 2: pack formation, cohesion, bonuses
	PhaseBehavior                 // 3: AI state machine + movement
	PhaseProximity                // 4: zone classification + opportunities
	PhasePostUpdate               // 5: spawner, telemetry, persistence
	PhaseCleanup                  // 6: retire queued animals
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
