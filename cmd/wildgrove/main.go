package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wildgrove/server/internal/config"
	"github.com/wildgrove/server/internal/core/event"
	coresys "github.com/wildgrove/server/internal/core/system"
	"github.com/wildgrove/server/internal/data"
	"github.com/wildgrove/server/internal/handler"
	"github.com/wildgrove/server/internal/persist"
	"github.com/wildgrove/server/internal/scripting"
	"github.com/wildgrove/server/internal/system"
	"github.com/wildgrove/server/internal/telemetry"
	"github.com/wildgrove/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/wildgrove.toml"
	if p := os.Getenv("WILDGROVE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	seed := cfg.Sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Info("wildgrove starting",
		zap.Int64("seed", seed),
		zap.Duration("tick_rate", cfg.Sim.TickRate))

	// 3. Optional persistence
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var snapshots *persist.SnapshotRepo
	if cfg.Database.DSN != "" {
		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		snapshots = persist.NewSnapshotRepo(db)
		log.Info("persistence enabled")
	}

	// 4. Build world state
	ws := world.NewState(seed, cfg.Sim.DayLength)
	if season, err := world.ParseSeason(cfg.Sim.Season); err == nil {
		ws.Season = season
	}
	ws.Biome = world.Biome(cfg.Sim.Biome)

	// 5. Load data tables
	speciesTable, err := data.LoadSpeciesTable("data/yaml/species_list.yaml")
	if err != nil {
		return fmt.Errorf("load species table: %w", err)
	}
	speciesTable.RegisterAll(ws)
	log.Info("species templates loaded", zap.Int("count", speciesTable.Count()))

	spawnPoints, err := data.LoadSpawnPoints("data/yaml/spawn_points.yaml")
	if err != nil {
		return fmt.Errorf("load spawn points: %w", err)
	}
	log.Info("spawn points loaded", zap.Int("count", len(spawnPoints)))

	spawnRules, err := data.LoadSpawnRules("data/yaml/spawn_rules.yaml")
	if err != nil {
		return fmt.Errorf("load spawn rules: %w", err)
	}
	log.Info("spawn rules loaded", zap.Int("count", spawnRules.Count()))

	circadianTable, err := data.LoadCircadianTable("data/yaml/circadian_list.yaml")
	if err != nil {
		return fmt.Errorf("load circadian table: %w", err)
	}
	weatherTable, err := data.LoadWeatherTable("data/yaml/weather_list.yaml")
	if err != nil {
		return fmt.Errorf("load weather table: %w", err)
	}
	log.Info("environment tables loaded",
		zap.Int("circadian", circadianTable.Count()),
		zap.Int("weather", weatherTable.Count()))

	// 6. Lua scripting
	luaEngine, err := scripting.NewEngine("scripts", log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer luaEngine.Close()

	// 7. Restore the latest save, if any
	if snapshots != nil {
		saved, err := snapshots.LoadLatest(ctx)
		if err != nil {
			return fmt.Errorf("load snapshot: %w", err)
		}
		restored := 0
		for _, a := range saved {
			na, err := ws.CreateAnimal(a.Species, a.Position)
			if err != nil {
				log.Warn("skip saved animal", zap.Error(err))
				continue
			}
			id := na.ID
			*na = *a
			na.ID = id
			restored++
		}
		if restored > 0 {
			log.Info("world restored from snapshot", zap.Int("animals", restored))
		}
	}

	// 8. Event bus and systems
	bus := event.NewBus()
	deps := &handler.Deps{
		World:   ws,
		Bus:     bus,
		Scripts: luaEngine,
		Cfg:     cfg,
		Log:     log,
	}

	event.Subscribe(bus, func(ev event.AnimalTamed) {
		log.Info("tamed", zap.Uint64("animal", uint64(ev.ID)), zap.Stringer("species", ev.Species))
	})
	event.Subscribe(bus, func(ev event.AnimalReaction) {
		log.Debug("reaction", zap.Stringer("species", ev.Species), zap.String("line", ev.Reaction))
	})

	var out *telemetry.OutputManager
	if cfg.Telemetry.Dir != "" {
		out, err = telemetry.NewOutputManager(cfg.Telemetry.Dir)
		if err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
		defer out.Close()
	}

	spawner := system.NewSpawnerSystem(ws, bus, cfg.Spawner, spawnPoints, spawnRules, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewDispatchSystem(bus))
	runner.Register(system.NewEnvironmentSystem(ws, circadianTable, weatherTable, cfg.Environment, log))
	runner.Register(system.NewPackSystem(ws, log))
	runner.Register(system.NewBehaviorSystem(ws, log))
	runner.Register(system.NewProximitySystem(ws, bus, cfg.Zones))
	runner.Register(spawner)
	if out != nil {
		runner.Register(system.NewTelemetrySystem(ws, out, cfg.Telemetry.Interval, log))
	}
	runner.Register(system.NewCleanupSystem(ws, log))

	// 9. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	log.Info("game loop running",
		zap.Stringer("season", ws.Season),
		zap.String("biome", string(ws.Biome)))

	var sinceSave time.Duration
	for {
		select {
		case <-ticker.C:
			ws.Advance(cfg.Sim.TickRate)
			movePlayer(ws, cfg.Sim.TickRate)
			runner.Tick(cfg.Sim.TickRate)
			demoInteract(deps)

			if snapshots != nil {
				sinceSave += cfg.Sim.TickRate
				if sinceSave >= cfg.Database.SaveInterval {
					sinceSave = 0
					saveWorld(snapshots, ws, log)
				}
			}

		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			if snapshots != nil {
				saveWorld(snapshots, ws, log)
			}
			log.Info("stopped")
			return nil
		}
	}
}

// movePlayer drives the demo observer on a slow random walk so the
// proximity and spawner layers have something to react to. Embedding
// applications set ws.Player themselves instead.
func movePlayer(ws *world.State, dt time.Duration) {
	angle := ws.Rand.Float64() * 2 * math.Pi
	step := 0.8 * dt.Seconds()
	ws.Player = ws.Player.Add(world.Vec2{X: math.Cos(angle) * step, Y: math.Sin(angle) * step})
}

// demoInteract occasionally has the demo observer engage the nearest
// animal, picking a verb that fits the scored opportunity.
func demoInteract(deps *handler.Deps) {
	ws := deps.World
	if ws.Rand.Float64() > 0.05 {
		return
	}

	var nearest *world.Animal
	best := math.MaxFloat64
	ws.All(func(a *world.Animal) {
		if d := ws.PlayerDistance(a); d < best {
			best, nearest = d, a
		}
	})
	if nearest == nil || best > deps.Cfg.Zones.Detection {
		return
	}

	opp := system.Opportunity(ws, nearest, deps.Cfg.Zones)
	var t world.InteractionType
	switch opp.Type {
	case world.OpportunityInteract:
		choices := []world.InteractionType{world.InteractTouch, world.InteractFeed, world.InteractTalk}
		if nearest.IsUnlocked(world.InteractPet) {
			choices = append(choices, world.InteractPet)
		}
		if nearest.IsUnlocked(world.InteractPlay) {
			choices = append(choices, world.InteractPlay)
		}
		t = choices[ws.Rand.Intn(len(choices))]
	case world.OpportunityApproach:
		t = world.InteractApproach
	case world.OpportunityObserve:
		t = world.InteractObserve
	default:
		return
	}
	handler.HandleInteraction(deps, nearest.ID, t)
}

func saveWorld(repo *persist.SnapshotRepo, ws *world.State, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := repo.Save(ctx, ws); err != nil {
		log.Error("autosave failed", zap.Error(err))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
