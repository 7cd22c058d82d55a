package handler

import (
	"math"
	"testing"
	"time"

	"github.com/wildgrove/server/internal/config"
	"github.com/wildgrove/server/internal/core/event"
	"github.com/wildgrove/server/internal/world"
)

func rabbitTemplate() *world.SpeciesTemplate {
	return &world.SpeciesTemplate{
		Species:   world.SpeciesRabbit,
		MaxHealth: 40,
		MaxEnergy: 100,
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

func newDeps(t *testing.T, seed int64) *Deps {
	t.Helper()
	ws := world.NewState(seed, 24*time.Minute)
	ws.RegisterTemplate(rabbitTemplate())
	return &Deps{
		World: ws,
		Bus:   event.NewBus(),
		Cfg:   config.Defaults(),
	}
}

func spawnRabbit(t *testing.T, deps *Deps, pos world.Vec2) *world.Animal {
	t.Helper()
	a, err := deps.World.CreateAnimal(world.SpeciesRabbit, pos)
	if err != nil {
		t.Fatalf("CreateAnimal: %v", err)
	}
	return a
}

func TestRejectUnknownAnimal(t *testing.T) {
	deps := newDeps(t, 1)
	res := HandleInteraction(deps, world.AnimalID(12345), world.InteractObserve)
	if res.Outcome != OutcomeRejected || res.Reason != "no such animal" {
		t.Errorf("result = %+v, want rejection for unknown id", res)
	}
}

func TestRejectSleepingCitesState(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{X: 1})
	a.AI.CurrentState = world.StateSleeping
	before := a.Stats

	res := HandleInteraction(deps, a.ID, world.InteractFeed)
	if res.Outcome != OutcomeRejected {
		t.Fatalf("outcome = %v, want rejected", res.Outcome)
	}
	if res.Reason != "the rabbit is sleeping" {
		t.Errorf("reason = %q", res.Reason)
	}
	if res.Probability != 0 {
		t.Errorf("probability = %v, want 0 for a rejection", res.Probability)
	}
	if a.Stats != before {
		t.Error("rejection must not touch stats")
	}
	if a.OnCooldown(world.InteractFeed, deps.World.Now()+time.Millisecond) {
		t.Error("rejection must not arm a cooldown")
	}
	if len(a.History) != 0 {
		t.Error("rejection must not enter the attempt history")
	}
}

func TestRejectTooFar(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{X: 100})
	res := HandleInteraction(deps, a.ID, world.InteractObserve)
	if res.Outcome != OutcomeRejected || res.Reason != "too far away" {
		t.Errorf("result = %+v, want distance rejection", res)
	}
}

func TestRejectCooldown(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{X: 1})
	a.ArmCooldown(world.InteractObserve, deps.World.Now(), time.Minute)

	res := HandleInteraction(deps, a.ID, world.InteractObserve)
	if res.Outcome != OutcomeRejected || res.Reason != "too soon to try again" {
		t.Errorf("result = %+v, want cooldown rejection", res)
	}
}

func TestRejectGatedBeforeUnlock(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{X: 1})
	a.Stats.Trust = 60
	a.Stats.Fear = 10

	res := HandleInteraction(deps, a.ID, world.InteractPet)
	if res.Outcome != OutcomeRejected || res.Reason != "pet is not available yet" {
		t.Errorf("result = %+v, want gating rejection", res)
	}

	a.Unlock(world.InteractPet)
	res = HandleInteraction(deps, a.ID, world.InteractPet)
	if res.Outcome == OutcomeRejected {
		t.Errorf("unlocked pet still rejected: %+v", res)
	}
}

func TestRejectFeedWhenFull(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{X: 1})
	a.Stats.Energy = 90

	res := HandleInteraction(deps, a.ID, world.InteractFeed)
	if res.Outcome != OutcomeRejected || res.Reason != "not hungry" {
		t.Errorf("result = %+v, want satiation rejection", res)
	}
}

func TestObserveSuccessAtPointBlank(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{})
	deps.World.Player = a.Position
	a.Stats.Trust = 100
	a.Stats.Fear = 0
	a.Stats.Happiness = 100

	res := HandleInteraction(deps, a.ID, world.InteractObserve)
	if res.Outcome != OutcomeSucceeded {
		t.Fatalf("outcome = %v (p=%v), want success at the probability ceiling", res.Outcome, res.Probability)
	}
	if math.Abs(res.Probability-0.95) > 1e-9 {
		t.Errorf("probability = %v, want clamped to 0.95", res.Probability)
	}
	if a.InteractionCount != 1 {
		t.Errorf("interaction count = %d, want 1", a.InteractionCount)
	}
	if len(a.History) != 1 || !a.History[0].Success {
		t.Errorf("history = %+v, want one success", a.History)
	}
	if !a.OnCooldown(world.InteractObserve, deps.World.Now()+time.Second) {
		t.Error("success should arm the cooldown")
	}
	if res.Reaction == "" {
		t.Error("success should carry a reaction line")
	}
}

func TestFailureSpooksAnimal(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{X: 3}) // touch range limit
	deps.World.Player = world.Vec2{}
	a.AI.CurrentState = world.StateAlert
	a.Stats.Trust = 0
	a.Stats.Fear = 80
	a.Stats.Happiness = 50

	res := HandleInteraction(deps, a.ID, world.InteractTouch)
	if res.Outcome != OutcomeFailed {
		t.Fatalf("outcome = %v (p=%v), want failure against long odds", res.Outcome, res.Probability)
	}
	if a.Stats.Fear != 84 {
		t.Errorf("fear = %v, want +4 on a failed touch", a.Stats.Fear)
	}
	if a.Stats.Happiness != 48 {
		t.Errorf("happiness = %v, want -2", a.Stats.Happiness)
	}
	if !a.OnCooldown(world.InteractTouch, deps.World.Now()+time.Second) {
		t.Error("failure should arm the cooldown too")
	}
	if res.Reaction == "" {
		t.Error("failure should carry a reaction line")
	}
}

func TestSuccessChanceClamps(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{})
	spec := interactionTable[world.InteractObserve]

	a.Stats.Trust = 100
	a.Stats.Fear = 0
	a.Stats.Happiness = 100
	a.AI.CurrentState = world.StateCurious
	if p := successChance(a, spec, 0); p != 0.95 {
		t.Errorf("ceiling = %v, want 0.95", p)
	}

	a.Stats.Trust = 0
	a.Stats.Fear = 100
	a.Stats.Happiness = 0
	a.AI.CurrentState = world.StateAlert
	if p := successChance(a, spec, spec.MaxDistance); p < 0.05 {
		t.Errorf("floor breached: %v", p)
	}
	spec = interactionTable[world.InteractPlay]
	if p := successChance(a, spec, spec.MaxDistance); p != 0.05 {
		t.Errorf("floor = %v, want 0.05", p)
	}
}

func TestRapportBonus(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{})
	spec := interactionTable[world.InteractPlay]

	base := successChance(a, spec, 0)
	for i := 0; i < 5; i++ {
		a.RecordInteraction(world.InteractionRecord{Type: world.InteractPlay, Success: true})
	}
	boosted := successChance(a, spec, 0)
	if math.Abs((boosted-base)-0.12) > 1e-9 {
		t.Errorf("rapport bonus = %v, want the 0.12 cap", boosted-base)
	}
}

func TestUnlockChain(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{})

	a.Stats.Trust = 40
	got := checkUnlocks(a, world.InteractTouch)
	if len(got) != 1 || got[0] != world.InteractPet {
		t.Fatalf("touch unlocks = %v, want [pet]", got)
	}
	if got = checkUnlocks(a, world.InteractTouch); len(got) != 0 {
		t.Errorf("repeat unlocks = %v, want none", got)
	}

	a.Stats.Trust = 60
	got = checkUnlocks(a, world.InteractPet)
	if len(got) != 1 || got[0] != world.InteractPlay {
		t.Fatalf("pet unlocks = %v, want [play]", got)
	}
}

func TestTaming(t *testing.T) {
	deps := newDeps(t, 1)
	a := spawnRabbit(t, deps, world.Vec2{})
	a.Stats.Trust = 95
	a.InteractionCount = 9

	if checkTaming(deps, a) {
		t.Fatal("taming should wait for enough interactions")
	}
	a.InteractionCount = 10
	if !checkTaming(deps, a) {
		t.Fatal("taming bar crossed, want tamed")
	}
	if !a.Tamed {
		t.Error("tamed flag not set")
	}
	if checkTaming(deps, a) {
		t.Error("taming should fire once")
	}
}

func TestTamingRequiresTameableSpecies(t *testing.T) {
	deps := newDeps(t, 1)
	tmpl := rabbitTemplate()
	tmpl.Tameable = false
	deps.World.RegisterTemplate(tmpl)

	a := spawnRabbit(t, deps, world.Vec2{})
	a.Stats.Trust = 100
	a.InteractionCount = 50
	if checkTaming(deps, a) {
		t.Error("untameable species must not tame")
	}
}
