package system

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/world"
)

const testTick = 200 * time.Millisecond

func rabbitTemplate() *world.SpeciesTemplate {
	return &world.SpeciesTemplate{
		Species:   world.SpeciesRabbit,
		MaxHealth: 40,
		MaxEnergy: 80,
		Happiness: 60,
		Fear:      45,
		Curiosity: 40,
		Trust:     20,
		Behavior: world.BehaviorProfile{
			FleeDistance:   3,
			ReturnDistance: 18,
			WanderRadius:   6,
			ActivityLevel:  0.7,
			SocialLevel:    0.5,
			CanHide:        true,
		},
		Tameable: true,
	}
}

func deerTemplate() *world.SpeciesTemplate {
	return &world.SpeciesTemplate{
		Species:   world.SpeciesDeer,
		MaxHealth: 90,
		MaxEnergy: 100,
		Happiness: 55,
		Fear:      50,
		Curiosity: 35,
		Trust:     15,
		Behavior: world.BehaviorProfile{
			FleeDistance:   3,
			ReturnDistance: 30,
			WanderRadius:   12,
			ActivityLevel:  0.5,
			SocialLevel:    0.7,
			CanAlert:       true,
		},
		Tameable: true,
	}
}

func newBehaviorWorld(t *testing.T, seed int64) *world.State {
	t.Helper()
	ws := world.NewState(seed, 24*time.Minute)
	ws.RegisterTemplate(rabbitTemplate())
	ws.RegisterTemplate(deerTemplate())
	return ws
}

func spawn(t *testing.T, ws *world.State, sp world.Species, pos world.Vec2) *world.Animal {
	t.Helper()
	a, err := ws.CreateAnimal(sp, pos)
	if err != nil {
		t.Fatalf("CreateAnimal(%v): %v", sp, err)
	}
	return a
}

func TestFleeTriggersAtCloseRange(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{}
	a := spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: 1})
	a.Stats.Fear = 90
	a.Stats.Trust = 10 // fear bar: max(50, 80-5) = 75

	sys := NewBehaviorSystem(ws, zap.NewNop())
	sys.Update(testTick)

	if a.AI.CurrentState != world.StateFleeing {
		t.Fatalf("state = %v, want fleeing", a.AI.CurrentState)
	}
	if a.Stats.Fear != 95 {
		t.Errorf("fear = %v, want 95 (flight spike, no decay while fleeing)", a.Stats.Fear)
	}
	if a.AI.TargetPosition == nil || a.AI.TargetPosition.X <= 1 {
		t.Errorf("flee target = %v, want a point away from the player", a.AI.TargetPosition)
	}
	if len(a.AI.Memory.DangerSpots) != 1 {
		t.Errorf("danger spots = %d, want the player position remembered", len(a.AI.Memory.DangerSpots))
	}
	if a.AI.LastPlayerSighting == nil {
		t.Error("flight should record a player sighting")
	}
	if a.Position.X <= 1 {
		t.Errorf("position = %v, want movement away on the first flight turn", a.Position)
	}
}

func TestNoFleeBelowFearBar(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{}
	a := spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: 1})
	a.Stats.Fear = 40
	a.Stats.Trust = 10
	a.AI.StateTimer = 1000 // keep the scheduled ladder quiet

	sys := NewBehaviorSystem(ws, zap.NewNop())
	sys.Update(testTick)

	if a.AI.CurrentState == world.StateFleeing {
		t.Error("calm animal should not flee")
	}
}

func TestAlertForSentinelSpecies(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{}
	a := spawn(t, ws, world.SpeciesDeer, world.Vec2{X: 3}) // inside (1.5, 4.5]
	a.Stats.Fear = 40
	a.AI.StateTimer = 1000

	sys := NewBehaviorSystem(ws, zap.NewNop())
	sys.Update(testTick)

	if a.AI.CurrentState != world.StateAlert {
		t.Fatalf("state = %v, want alert", a.AI.CurrentState)
	}

	// Rabbits cannot alert; the same setup leaves them be.
	b := spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: 3})
	b.Stats.Fear = 40
	b.AI.StateTimer = 1000
	sys.Update(testTick)
	if b.AI.CurrentState == world.StateAlert {
		t.Error("non-alerting species entered alert")
	}
}

func TestReturningWhenFarFromHome(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{X: 1000}
	a := spawn(t, ws, world.SpeciesRabbit, world.Vec2{})
	a.Position = world.Vec2{X: 30} // beyond ReturnDistance 18

	sys := NewBehaviorSystem(ws, zap.NewNop())
	sys.Update(testTick)

	if a.AI.CurrentState != world.StateReturning {
		t.Fatalf("state = %v, want returning", a.AI.CurrentState)
	}
	if a.AI.TargetPosition == nil || *a.AI.TargetPosition != a.AI.HomePosition {
		t.Fatalf("target = %v, want home", a.AI.TargetPosition)
	}

	before := a.Position.Dist(a.AI.HomePosition)
	for i := 0; i < 20; i++ {
		sys.Update(testTick)
	}
	if after := a.Position.Dist(a.AI.HomePosition); after >= before {
		t.Errorf("distance from home went %v -> %v, want progress toward home", before, after)
	}
}

func TestFleeTargetFromZeroDistance(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{X: 5, Y: 5}
	a := spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: 5, Y: 5})
	a.Stats.Fear = 50

	got := fleeTarget(ws, a)
	want := world.Vec2{X: 5 + 3 + 0.5*3, Y: 5} // flee distance plus fear bonus, along the fallback axis
	if got != want {
		t.Errorf("fleeTarget = %v, want %v", got, want)
	}
}

func TestCuriousTargetStopsOutsideFleeRange(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{}
	a := spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: 7})

	got := curiousTarget(ws, a)
	if d := got.Dist(ws.Player); d < a.Behavior.FleeDistance*1.1-1e-9 {
		t.Errorf("curious target %v is %v from the player, inside the flee buffer", got, d)
	}
}

func TestSleepingRecoversEnergy(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{X: 1000}
	a := spawn(t, ws, world.SpeciesRabbit, world.Vec2{})
	a.AI.CurrentState = world.StateSleeping
	a.AI.StateTimer = 1000
	a.Stats.Energy = 20
	a.Stats.Fear = 30

	sys := NewBehaviorSystem(ws, zap.NewNop())
	sys.Update(testTick)

	if math.Abs(a.Stats.Energy-21.2) > 1e-9 {
		t.Errorf("energy = %v, want 21.2", a.Stats.Energy)
	}
	if math.Abs(a.Stats.Fear-29.7) > 1e-9 {
		t.Errorf("fear = %v, want passive decay to 29.7", a.Stats.Fear)
	}
}

func TestChooseStateExhaustedAnimal(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{X: 1000}
	a := spawn(t, ws, world.SpeciesRabbit, world.Vec2{})
	a.Stats.Energy = 10

	sys := NewBehaviorSystem(ws, zap.NewNop())
	for i := 0; i < 50; i++ {
		got := sys.chooseState(a)
		if got != world.StateSleeping && got != world.StateIdle {
			t.Fatalf("exhausted animal chose %v, want sleeping or idle", got)
		}
	}
}

func TestArrivalMemorizesAndCollapsesWindow(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{X: 1000}
	a := spawn(t, ws, world.SpeciesRabbit, world.Vec2{})
	a.AI.CurrentState = world.StateWandering
	a.AI.StateTimer = 1000
	a.AI.MoveStride = 1
	target := world.Vec2{X: 0.5}
	a.AI.TargetPosition = &target

	sys := NewBehaviorSystem(ws, zap.NewNop())
	sys.Update(testTick) // one step covers 0.5 units at wandering speed

	if a.AI.TargetPosition != nil {
		t.Fatalf("target should clear on arrival, got %v", a.AI.TargetPosition)
	}
	if len(a.AI.Memory.SafeSpots) != 1 {
		t.Errorf("safe spots = %d, want arrival memorized", len(a.AI.Memory.SafeSpots))
	}
	if a.AI.StateTimer != a.AI.TurnCounter {
		t.Errorf("window not collapsed: timer=%d counter=%d", a.AI.StateTimer, a.AI.TurnCounter)
	}
}
