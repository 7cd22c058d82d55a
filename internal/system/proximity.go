package system

import (
	"fmt"
	"time"

	"github.com/wildgrove/server/internal/config"
	"github.com/wildgrove/server/internal/core/event"
	"github.com/wildgrove/server/internal/core/system"
	"github.com/wildgrove/server/internal/world"
)

// ProximitySystem classifies every animal into a concentric zone around
// the player each tick, diffs against the previous zone, and emits
// enter/exit plus debounced stay events. Entering awareness range marks
// the animal discovered and refreshes its player sighting.
type ProximitySystem struct {
	world *world.State
	bus   *event.Bus
	zones config.ZonesConfig
}

func NewProximitySystem(ws *world.State, bus *event.Bus, zones config.ZonesConfig) *ProximitySystem {
	return &ProximitySystem{world: ws, bus: bus, zones: zones}
}

func (s *ProximitySystem) Phase() system.Phase { return system.PhaseProximity }

func (s *ProximitySystem) Update(time.Duration) {
	now := s.world.Now()
	for _, a := range s.world.List() {
		if !a.Active {
			continue
		}
		s.track(a, now)
	}
}

func (s *ProximitySystem) track(a *world.Animal, now time.Duration) {
	dist := s.world.PlayerDistance(a)
	zone := classifyZone(dist, s.zones)
	prev := a.Prox.CurrentZone

	if zone != prev {
		if prev != world.ZoneNone {
			s.record(a, prev, world.ZoneExit, now)
		}
		if zone != world.ZoneNone {
			s.record(a, zone, world.ZoneEnter, now)
			if a.Prox.LastStay == nil {
				a.Prox.LastStay = make(map[world.Zone]time.Duration, 4)
			}
			a.Prox.LastStay[zone] = now
		}
		a.Prox.CurrentZone = zone
	} else if zone != world.ZoneNone {
		if last, ok := a.Prox.LastStay[zone]; ok && now-last >= s.zones.StayDebounce {
			s.record(a, zone, world.ZoneStay, now)
			a.Prox.LastStay[zone] = now
		}
	}

	if dist <= s.zones.Awareness {
		a.Discovered = true
		a.AI.LastPlayerSighting = &world.Sighting{Position: s.world.Player, Time: now}
	}
}

func (s *ProximitySystem) record(a *world.Animal, zone world.Zone, kind world.ZoneEventKind, now time.Duration) {
	a.Prox.RecordEvent(world.ZoneEvent{Zone: zone, Kind: kind, Time: now})
	event.Emit(s.bus, event.Proximity{ID: a.ID, Zone: zone, Kind: kind})
}

func classifyZone(dist float64, z config.ZonesConfig) world.Zone {
	switch {
	case dist <= z.Interaction:
		return world.ZoneInteraction
	case dist <= z.Approach:
		return world.ZoneApproach
	case dist <= z.Awareness:
		return world.ZoneAwareness
	case dist <= z.Detection:
		return world.ZoneDetection
	}
	return world.ZoneNone
}

// Opportunity scores how engageable an animal currently is, for UI hints.
func Opportunity(ws *world.State, a *world.Animal, zones config.ZonesConfig) world.Opportunity {
	dist := ws.PlayerDistance(a)

	if !a.Interactable() {
		return world.Opportunity{
			Type:           world.OpportunityAvoid,
			Confidence:     0.9,
			Recommendation: "keep your distance and let it settle",
			Warning:        fmt.Sprintf("the %s is %s", a.Species, a.AI.CurrentState),
		}
	}

	if dist > zones.Detection {
		return world.Opportunity{
			Type:           world.OpportunityObserve,
			Confidence:     0.2,
			Recommendation: "too far away; move closer quietly",
		}
	}

	willingness := (a.Stats.Trust*0.4 + a.Stats.Curiosity*0.3 +
		a.Stats.Happiness*0.2 + (100-a.Stats.Fear)*0.1) / 100
	switch a.AI.CurrentState {
	case world.StateCurious, world.StateIdle:
		willingness += 0.15
	case world.StateAlert:
		willingness -= 0.2
	}
	if willingness < 0 {
		willingness = 0
	}
	if willingness > 1 {
		willingness = 1
	}

	warning := ""
	if a.Stats.Fear > 60 {
		warning = "it is on edge; sudden moves will spook it"
	}

	zone := classifyZone(dist, zones)
	switch {
	case zone == world.ZoneInteraction && willingness > 0.5:
		return world.Opportunity{
			Type:           world.OpportunityInteract,
			Confidence:     willingness,
			Recommendation: "close enough to interact",
			Warning:        warning,
		}
	case (zone == world.ZoneApproach || zone == world.ZoneAwareness) && willingness > 0.35:
		return world.Opportunity{
			Type:           world.OpportunityApproach,
			Confidence:     willingness,
			Recommendation: "approach slowly",
			Warning:        warning,
		}
	}
	return world.Opportunity{
		Type:           world.OpportunityObserve,
		Confidence:     willingness,
		Recommendation: "watch from here",
		Warning:        warning,
	}
}
