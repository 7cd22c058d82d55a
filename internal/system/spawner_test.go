package system

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/config"
	"github.com/wildgrove/server/internal/core/event"
	"github.com/wildgrove/server/internal/data"
	"github.com/wildgrove/server/internal/world"
)

const testRulesYAML = `rules:
  - species: rabbit
    biomes: [meadow]
    min_distance: 5.0
    max_distance: 100.0
    probability: 1.0
    max_per_map: 2
    group:
      size: 2
      radius: 2.0
`

func loadTestRules(t *testing.T) *data.SpawnRuleTable {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(testRulesYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	rules, err := data.LoadSpawnRules(path)
	if err != nil {
		t.Fatalf("load rules: %v", err)
	}
	return rules
}

func testSpawnerCfg() config.SpawnerConfig {
	return config.SpawnerConfig{
		MaxTotalAnimals: 50,
		GlobalSpawnRate: 1,
		DespawnDistance: 100,
		DespawnTime:     time.Minute,
		SpawnInterval:   time.Second,
		CleanupInterval: time.Second,
		MinPlayerGap:    3,
	}
}

func testPoint() *world.SpawnPoint {
	return &world.SpawnPoint{
		Name:       "glade",
		Position:   world.Vec2{X: 30},
		Radius:     5,
		Biome:      world.BiomeMeadow,
		Species:    []world.Species{world.SpeciesRabbit},
		MaxAnimals: 5,
		Active:     true,
	}
}

func newSpawner(t *testing.T, ws *world.State, cfg config.SpawnerConfig, p *world.SpawnPoint) (*SpawnerSystem, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	sys := NewSpawnerSystem(ws, bus, cfg, []*world.SpawnPoint{p}, loadTestRules(t), zap.NewNop())
	return sys, bus
}

func collectAttempts(bus *event.Bus) *[]event.SpawnAttempt {
	var got []event.SpawnAttempt
	event.Subscribe(bus, func(ev event.SpawnAttempt) { got = append(got, ev) })
	return &got
}

func drain(bus *event.Bus) {
	bus.SwapBuffers()
	bus.DispatchAll()
}

func TestGateReasons(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{}
	p := testPoint()

	t.Run("global capacity", func(t *testing.T) {
		cfg := testSpawnerCfg()
		cfg.MaxTotalAnimals = 0
		sys, _ := newSpawner(t, ws, cfg, p)
		if got := sys.gate(p, world.SpeciesRabbit); got != "global capacity" {
			t.Errorf("gate = %q", got)
		}
	})

	t.Run("point capacity", func(t *testing.T) {
		pt := testPoint()
		pt.MaxAnimals = 0
		sys, _ := newSpawner(t, ws, testSpawnerCfg(), pt)
		if got := sys.gate(pt, world.SpeciesRabbit); got != "point capacity" {
			t.Errorf("gate = %q", got)
		}
	})

	t.Run("no spawn rule", func(t *testing.T) {
		sys, _ := newSpawner(t, ws, testSpawnerCfg(), p)
		if got := sys.gate(p, world.SpeciesDeer); got != "no spawn rule" {
			t.Errorf("gate = %q", got)
		}
	})

	t.Run("wrong biome", func(t *testing.T) {
		pt := testPoint()
		pt.Biome = world.BiomeMountain
		sys, _ := newSpawner(t, ws, testSpawnerCfg(), pt)
		if got := sys.gate(pt, world.SpeciesRabbit); got != "wrong biome" {
			t.Errorf("gate = %q", got)
		}
	})

	t.Run("player too close", func(t *testing.T) {
		ws.Player = world.Vec2{X: 28} // 2 from the point, rule wants 5
		defer func() { ws.Player = world.Vec2{} }()
		sys, _ := newSpawner(t, ws, testSpawnerCfg(), p)
		if got := sys.gate(p, world.SpeciesRabbit); got != "player too close" {
			t.Errorf("gate = %q", got)
		}
	})

	t.Run("player too far", func(t *testing.T) {
		ws.Player = world.Vec2{X: -200}
		defer func() { ws.Player = world.Vec2{} }()
		sys, _ := newSpawner(t, ws, testSpawnerCfg(), p)
		if got := sys.gate(p, world.SpeciesRabbit); got != "player too far" {
			t.Errorf("gate = %q", got)
		}
	})

	t.Run("probability roll", func(t *testing.T) {
		cfg := testSpawnerCfg()
		cfg.GlobalSpawnRate = 0
		sys, _ := newSpawner(t, ws, cfg, p)
		if got := sys.gate(p, world.SpeciesRabbit); got != "probability roll" {
			t.Errorf("gate = %q", got)
		}
	})

	t.Run("pass", func(t *testing.T) {
		sys, _ := newSpawner(t, ws, testSpawnerCfg(), p)
		if got := sys.gate(p, world.SpeciesRabbit); got != "" {
			t.Errorf("gate = %q, want open", got)
		}
	})
}

func TestSpeciesCapacityGate(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{}
	p := testPoint()
	sys, _ := newSpawner(t, ws, testSpawnerCfg(), p)

	// Fill the per-map cap away from the point so its local cap stays clear.
	spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: -50})
	spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: -55})
	if got := sys.gate(p, world.SpeciesRabbit); got != "species capacity" {
		t.Errorf("gate = %q", got)
	}
}

func TestTrySpawnReportsSuccess(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{}
	p := testPoint()
	sys, bus := newSpawner(t, ws, testSpawnerCfg(), p)
	got := collectAttempts(bus)

	if !sys.trySpawn(p, world.SpeciesRabbit) {
		t.Fatal("open gate spawn failed")
	}
	if ws.Count() < 1 {
		t.Fatal("no animal created")
	}
	drain(bus)
	if len(*got) == 0 || !(*got)[0].Success {
		t.Fatalf("attempts = %+v, want a success report first", *got)
	}
	ws.All(func(a *world.Animal) {
		if a.Position.Dist(p.Position) > p.Radius+2.1 {
			t.Errorf("animal at %v outside point radius (plus group offset)", a.Position)
		}
	})
}

func TestForceSpawn(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	p := testPoint()

	cfg := testSpawnerCfg()
	cfg.MaxTotalAnimals = 0
	sys, bus := newSpawner(t, ws, cfg, p)
	got := collectAttempts(bus)
	if a := sys.ForceSpawn(world.SpeciesRabbit, world.Vec2{X: 1}); a != nil {
		t.Fatal("forced spawn at capacity should be a no-op")
	}
	drain(bus)
	if len(*got) != 1 || (*got)[0].Success || (*got)[0].Reason != "global capacity" {
		t.Fatalf("attempts = %+v, want a reported capacity no-op", *got)
	}

	sys2, bus2 := newSpawner(t, ws, testSpawnerCfg(), p)
	got2 := collectAttempts(bus2)
	a := sys2.ForceSpawn(world.SpeciesRabbit, world.Vec2{X: 1})
	if a == nil {
		t.Fatal("forced spawn below capacity should place the animal")
	}
	if a.Position != (world.Vec2{X: 1}) {
		t.Errorf("position = %v, want the forced position exactly", a.Position)
	}
	drain(bus2)
	if len(*got2) != 1 || !(*got2)[0].Success {
		t.Fatalf("attempts = %+v, want one success", *got2)
	}
}

func TestCleanupRetiresStaleAndStrayed(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{}
	sys, bus := newSpawner(t, ws, testSpawnerCfg(), testPoint())

	stale := spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: 1})
	strayed := spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: 200})
	tamed := spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: 2})
	tamed.Tamed = true

	var despawns []event.AnimalDespawned
	event.Subscribe(bus, func(ev event.AnimalDespawned) { despawns = append(despawns, ev) })

	ws.Advance(2 * time.Minute) // past DespawnTime for everything untouched
	sys.cleanup()
	ws.FlushRemovals()

	if ws.Get(stale.ID) != nil {
		t.Error("stale animal survived cleanup")
	}
	if ws.Get(strayed.ID) != nil {
		t.Error("strayed animal survived cleanup")
	}
	if ws.Get(tamed.ID) == nil {
		t.Error("tamed animal must never despawn")
	}

	drain(bus)
	reasons := map[string]int{}
	for _, ev := range despawns {
		reasons[ev.Reason]++
	}
	if reasons["stale"] != 1 || reasons["too far from player"] != 1 {
		t.Errorf("despawn reasons = %v, want one stale and one too-far", reasons)
	}
}

func TestFreshInteractionKeepsAnimalAlive(t *testing.T) {
	ws := newBehaviorWorld(t, 1)
	ws.Player = world.Vec2{}
	sys, _ := newSpawner(t, ws, testSpawnerCfg(), testPoint())

	a := spawn(t, ws, world.SpeciesRabbit, world.Vec2{X: 1})
	ws.Advance(2 * time.Minute)
	a.LastInteraction = ws.Now() // just engaged

	sys.cleanup()
	ws.FlushRemovals()
	if ws.Get(a.ID) == nil {
		t.Error("recently engaged animal should not go stale")
	}
}
