package system

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/core/system"
	"github.com/wildgrove/server/internal/world"
)

// Per-state turn duration windows, sampled on entry.
var stateWindows = [...]struct{ min, max int }{
	world.StateIdle:      {3, 8},
	world.StateWandering: {4, 10},
	world.StateFleeing:   {6, 12},
	world.StateReturning: {10, 20},
	world.StateSleeping:  {8, 20},
	world.StateFeeding:   {4, 8},
	world.StateCurious:   {3, 6},
	world.StateHiding:    {6, 12},
	world.StateAlert:     {2, 5},
}

// Per-state movement speed in world units per moving turn. Zero means the
// state does not move.
var stateSpeeds = [...]float64{
	world.StateIdle:      0,
	world.StateWandering: 0.4,
	world.StateFleeing:   1.2,
	world.StateReturning: 0.6,
	world.StateSleeping:  0,
	world.StateFeeding:   0.5,
	world.StateCurious:   0.3,
	world.StateHiding:    1.0,
	world.StateAlert:     0,
}

const arriveEpsilon = 0.1

// BehaviorSystem drives every animal's state machine: urgent transitions
// each tick, a full re-evaluation when the sampled duration window runs
// out, stride-throttled movement toward the current target, and passive
// stat drift.
type BehaviorSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewBehaviorSystem(ws *world.State, log *zap.Logger) *BehaviorSystem {
	return &BehaviorSystem{world: ws, log: log}
}

func (s *BehaviorSystem) Phase() system.Phase { return system.PhaseBehavior }

func (s *BehaviorSystem) Update(dt time.Duration) {
	for _, a := range s.world.List() {
		if !a.Active {
			continue
		}
		s.tickAnimal(a)
	}
}

func (s *BehaviorSystem) tickAnimal(a *world.Animal) {
	a.AI.TurnCounter++

	if next, urgent := s.urgentState(a); urgent && next != a.AI.CurrentState {
		s.switchState(a, next)
	} else if a.AI.TurnCounter >= a.AI.StateTimer {
		s.switchState(a, s.chooseState(a))
	}

	s.move(a)
	s.drift(a)
	a.LastUpdate = s.world.Now()
}

// urgentState evaluates the always-on transitions, highest priority first.
func (s *BehaviorSystem) urgentState(a *world.Animal) (world.AnimalState, bool) {
	dist := s.world.PlayerDistance(a)
	fleeDist := a.EffectiveFleeDistance()

	fearBar := math.Max(50, 80-a.Stats.Trust*0.5)
	if dist <= fleeDist*0.5 && a.Stats.Fear > fearBar {
		return world.StateFleeing, true
	}

	if a.Behavior.CanAlert && a.AI.CurrentState != world.StateFleeing &&
		dist > fleeDist*0.5 && dist <= fleeDist*1.5 && a.Stats.Fear > 30 {
		return world.StateAlert, true
	}

	if a.Position.Dist(a.AI.HomePosition) > a.Behavior.ReturnDistance {
		return world.StateReturning, true
	}

	return world.StateIdle, false
}

// chooseState runs the scheduled decision ladder once the current state's
// duration window has elapsed.
func (s *BehaviorSystem) chooseState(a *world.Animal) world.AnimalState {
	rng := s.world.Rand
	dist := s.world.PlayerDistance(a)
	fleeDist := a.EffectiveFleeDistance()

	if a.Stats.Energy < 30 {
		if rng.Float64() < 0.7 {
			return world.StateSleeping
		}
		return world.StateIdle
	}
	if a.Stats.Happiness > 80 && rng.Float64() < 0.3 {
		return world.StateFeeding
	}
	if a.Stats.Curiosity > 60 && dist > fleeDist && dist < 8 && rng.Float64() < 0.4 {
		return world.StateCurious
	}
	if rng.Float64() < 0.3+0.5*a.EffectiveActivity() {
		return world.StateWandering
	}
	return world.StateIdle
}

func (s *BehaviorSystem) switchState(a *world.Animal, next world.AnimalState) {
	prev := a.AI.CurrentState
	enterState(s.world, a, next)
	if prev != next && s.log != nil {
		s.log.Debug("state change",
			zap.Uint64("animal", uint64(a.ID)),
			zap.Stringer("species", a.Species),
			zap.Stringer("from", prev),
			zap.Stringer("to", next))
	}
}

// enterState switches an animal into a state: it samples a fresh duration
// window, sets the movement stride, computes the state's target, and
// records flight memories. The environment and pack layers force
// transitions through here as well.
func enterState(ws *world.State, a *world.Animal, next world.AnimalState) {
	rng := ws.Rand
	a.AI.CurrentState = next
	a.AI.TurnCounter = 0
	w := stateWindows[next]
	a.AI.StateTimer = w.min + rng.Intn(w.max-w.min+1)
	a.AI.MoveStride = 1
	a.AI.TargetPosition = nil
	a.AI.PathToTarget = nil
	a.Velocity = world.Vec2{}

	switch next {
	case world.StateWandering, world.StateReturning:
		// Unhurried gaits skip turns.
		a.AI.MoveStride = 2 + rng.Intn(3)
	}

	switch next {
	case world.StateWandering:
		setTarget(a, wanderTarget(ws, a))

	case world.StateFleeing:
		setTarget(a, fleeTarget(ws, a))
		a.AI.LastPlayerSighting = &world.Sighting{Position: ws.Player, Time: ws.Now()}
		a.AI.Memory.RememberDanger(ws.Player)
		a.ModifyFear(5)

	case world.StateHiding:
		if spot, ok := a.AI.Memory.SafeSpots.Nearest(a.Position); ok {
			setTarget(a, spot)
		} else {
			setTarget(a, fleeTarget(ws, a))
		}

	case world.StateFeeding:
		if spot, ok := a.AI.Memory.FoodSpots.Nearest(a.Position); ok {
			setTarget(a, spot)
		} else {
			setTarget(a, wanderTarget(ws, a))
		}

	case world.StateReturning:
		setTarget(a, a.AI.HomePosition)

	case world.StateCurious:
		setTarget(a, curiousTarget(ws, a))
	}
}

func setTarget(a *world.Animal, t world.Vec2) {
	a.AI.TargetPosition = &t
	a.AI.PathToTarget = []world.Vec2{a.Position, t}
}

// wanderTarget picks a random point inside the home wander radius.
func wanderTarget(ws *world.State, a *world.Animal) world.Vec2 {
	angle := ws.Rand.Float64() * 2 * math.Pi
	r := ws.Rand.Float64() * a.Behavior.WanderRadius
	return a.AI.HomePosition.Add(world.Vec2{X: math.Cos(angle) * r, Y: math.Sin(angle) * r})
}

// fleeTarget points directly away from the player. Fear lengthens the run.
// An animal standing exactly on the player bolts along a fixed axis rather
// than dividing by zero.
func fleeTarget(ws *world.State, a *world.Animal) world.Vec2 {
	away := a.Position.Sub(ws.Player).Normalize()
	if away.IsZero() {
		away = world.Vec2{X: 1}
	}
	run := a.Behavior.FleeDistance + a.Stats.Fear/100*3
	return a.Position.Add(away.Scale(run))
}

// curiousTarget edges toward the player but never inside flee range.
func curiousTarget(ws *world.State, a *world.Animal) world.Vec2 {
	dist := ws.PlayerDistance(a)
	fleeDist := a.EffectiveFleeDistance()
	stop := math.Max(fleeDist*1.1, dist*0.5)
	toward := ws.Player.Sub(a.Position).Normalize()
	if toward.IsZero() {
		return a.Position
	}
	return ws.Player.Sub(toward.Scale(stop))
}

// move advances the animal toward its target on stride turns and handles
// arrival: the target clears, the spot is memorized, and the window is
// collapsed so the next tick re-evaluates.
func (s *BehaviorSystem) move(a *world.Animal) {
	target := a.AI.TargetPosition
	if target == nil {
		return
	}
	stride := a.AI.MoveStride
	if stride < 1 {
		stride = 1
	}
	if a.AI.TurnCounter%stride != 0 {
		return
	}

	speed := stateSpeeds[a.AI.CurrentState] * (0.5 + a.EffectiveActivity())
	if speed <= 0 {
		return
	}
	to := target.Sub(a.Position)
	d := to.Len()
	step := math.Min(speed, d)
	dir := to.Normalize()
	a.Velocity = dir.Scale(speed)
	a.Position = a.Position.Add(dir.Scale(step))

	if a.Position.Dist(*target) < arriveEpsilon {
		s.arrive(a, *target)
	}
}

func (s *BehaviorSystem) arrive(a *world.Animal, at world.Vec2) {
	switch a.AI.CurrentState {
	case world.StateFleeing, world.StateHiding, world.StateWandering:
		// The run ended without trouble: this spot reads as safe.
		a.AI.Memory.RememberSafe(at)
	case world.StateFeeding:
		a.AI.Memory.RememberFood(at)
	}
	a.AI.TargetPosition = nil
	a.AI.PathToTarget = nil
	a.Velocity = world.Vec2{}
	// Collapse the window so the next tick picks a fresh state.
	a.AI.StateTimer = a.AI.TurnCounter
}

// drift applies per-tick stat changes tied to the current state.
func (s *BehaviorSystem) drift(a *world.Animal) {
	switch a.AI.CurrentState {
	case world.StateSleeping:
		a.ModifyEnergy(1.2)
	case world.StateFeeding:
		a.ModifyEnergy(0.8)
		a.ModifyHappiness(0.1)
	default:
		a.ModifyEnergy(-0.15 - 0.1*a.EffectiveActivity())
	}

	if a.AI.CurrentState != world.StateFleeing {
		a.ModifyFear(-0.3)
	}
	a.ModifyHappiness(-0.05)

	switch a.AI.CurrentState {
	case world.StateIdle, world.StateCurious:
		a.ModifyTrust(0.05)
	}
}
