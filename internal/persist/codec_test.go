package persist

import (
	"reflect"
	"testing"
	"time"

	"github.com/wildgrove/server/internal/world"
)

func newCodecWorld(t *testing.T) *world.State {
	t.Helper()
	ws := world.NewState(11, 24*time.Minute)
	ws.RegisterTemplate(&world.SpeciesTemplate{
		Species:   world.SpeciesFox,
		MaxHealth: 60,
		MaxEnergy: 90,
		Happiness: 50,
		Fear:      35,
		Curiosity: 70,
		Trust:     10,
		Behavior: world.BehaviorProfile{
			FleeDistance:   4,
			ReturnDistance: 25,
			WanderRadius:   10,
			ActivityLevel:  0.8,
			SocialLevel:    0.2,
			CanHide:        true,
		},
		Tameable: true,
	})
	return ws
}

func TestAnimalRoundTrip(t *testing.T) {
	ws := newCodecWorld(t)
	a, err := ws.CreateAnimal(world.SpeciesFox, world.Vec2{X: 3, Y: -2})
	if err != nil {
		t.Fatal(err)
	}
	a.AI.CurrentState = world.StateFleeing
	a.AI.StateTimer = 9
	a.AI.TurnCounter = 4
	a.Stats.Fear = 77.5
	a.InteractionCount = 3
	a.Discovered = true
	a.AI.Memory.RememberDanger(world.Vec2{X: 1})
	a.AI.Memory.RememberSafe(world.Vec2{X: -8, Y: 8})
	a.ArmCooldown(world.InteractFeed, 10*time.Second, 20*time.Second)
	a.Unlock(world.InteractPet)
	a.RecordInteraction(world.InteractionRecord{Type: world.InteractTouch, Success: true, Time: 5 * time.Second})

	raw, err := EncodeAnimal(a)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeAnimal(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got.ID != a.ID || got.Species != a.Species {
		t.Errorf("identity changed: %v/%v -> %v/%v", a.ID, a.Species, got.ID, got.Species)
	}
	if got.Position != a.Position {
		t.Errorf("position = %v, want %v", got.Position, a.Position)
	}
	if got.Stats != a.Stats {
		t.Errorf("stats = %+v, want %+v", got.Stats, a.Stats)
	}
	if got.AI.CurrentState != world.StateFleeing || got.AI.StateTimer != 9 || got.AI.TurnCounter != 4 {
		t.Errorf("ai runtime = %+v", got.AI)
	}
	if !reflect.DeepEqual(got.AI.Memory, a.AI.Memory) {
		t.Errorf("memory = %+v, want %+v", got.AI.Memory, a.AI.Memory)
	}
	if !got.OnCooldown(world.InteractFeed, 15*time.Second) {
		t.Error("cooldowns lost in round trip")
	}
	if !got.IsUnlocked(world.InteractPet) {
		t.Error("unlocks lost in round trip")
	}
	if len(got.History) != 1 || got.History[0].Type != world.InteractTouch {
		t.Errorf("history = %+v", got.History)
	}
	if got.InteractionCount != 3 || !got.Discovered {
		t.Errorf("progress fields lost: count=%d discovered=%v", got.InteractionCount, got.Discovered)
	}

	// Derived scratch resets to neutral on load.
	if got.AI.ActivityScale != 1 || got.AI.FleeScale != 1 {
		t.Errorf("scales = %v/%v, want 1/1", got.AI.ActivityScale, got.AI.FleeScale)
	}
	if !got.Active {
		t.Error("decoded animal should be active")
	}
}

func TestDecodeAnimalRejectsGarbage(t *testing.T) {
	if _, err := DecodeAnimal([]byte("{not json")); err == nil {
		t.Error("garbage input should fail to decode")
	}
}
