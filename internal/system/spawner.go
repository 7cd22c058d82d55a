package system

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/config"
	"github.com/wildgrove/server/internal/core/event"
	"github.com/wildgrove/server/internal/core/system"
	"github.com/wildgrove/server/internal/data"
	"github.com/wildgrove/server/internal/world"
)

const spawnPlacementTries = 8

// SpawnerSystem manages the animal population: a cleanup pass retires
// inactive, strayed, and stale animals, and a spawn pass works through the
// spawn points against per-species rules and capacity caps. Every spawn
// decision, including the no-ops, is reported as a SpawnAttempt event.
type SpawnerSystem struct {
	world  *world.State
	bus    *event.Bus
	cfg    config.SpawnerConfig
	points []*world.SpawnPoint
	rules  *data.SpawnRuleTable
	log    *zap.Logger

	sinceSpawn   time.Duration
	sinceCleanup time.Duration
}

func NewSpawnerSystem(ws *world.State, bus *event.Bus, cfg config.SpawnerConfig, points []*world.SpawnPoint, rules *data.SpawnRuleTable, log *zap.Logger) *SpawnerSystem {
	return &SpawnerSystem{
		world:  ws,
		bus:    bus,
		cfg:    cfg,
		points: points,
		rules:  rules,
		log:    log,
	}
}

func (s *SpawnerSystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *SpawnerSystem) Update(dt time.Duration) {
	s.sinceCleanup += dt
	if s.sinceCleanup >= s.cfg.CleanupInterval {
		s.sinceCleanup = 0
		s.cleanup()
	}

	s.sinceSpawn += dt
	if s.sinceSpawn >= s.cfg.SpawnInterval {
		s.sinceSpawn = 0
		s.spawnPass()
	}
}

// cleanup queues animals for retirement: already-inactive ones, ones far
// beyond the despawn distance, and ones untouched for the despawn window.
func (s *SpawnerSystem) cleanup() {
	now := s.world.Now()
	for _, a := range s.world.List() {
		reason := ""
		switch {
		case !a.Active:
			reason = "inactive"
		case a.Tamed:
			// Tamed animals never age out or stray out.
			continue
		case s.world.PlayerDistance(a) > s.cfg.DespawnDistance:
			reason = "too far from player"
		case now-s.lastTouched(a) > s.cfg.DespawnTime:
			reason = "stale"
		default:
			continue
		}
		s.world.MarkForRemoval(a.ID)
		event.Emit(s.bus, event.AnimalDespawned{ID: a.ID, Species: a.Species, Reason: reason})
		if s.log != nil {
			s.log.Debug("despawn",
				zap.Uint64("animal", uint64(a.ID)),
				zap.Stringer("species", a.Species),
				zap.String("reason", reason))
		}
	}
}

// lastTouched is the later of spawn time and last interaction: engaging
// with an animal keeps it around.
func (s *SpawnerSystem) lastTouched(a *world.Animal) time.Duration {
	if a.LastInteraction > a.SpawnTime {
		return a.LastInteraction
	}
	return a.SpawnTime
}

func (s *SpawnerSystem) spawnPass() {
	now := s.world.Now()
	for _, p := range s.points {
		if !p.Active {
			continue
		}
		if p.SpawnCooldown > 0 && p.LastSpawn > 0 && now-p.LastSpawn < p.SpawnCooldown {
			continue
		}
		for _, sp := range p.Species {
			if s.trySpawn(p, sp) {
				p.LastSpawn = now
				break
			}
		}
	}
}

// trySpawn runs the full gate chain for one species at one point. Every
// outcome emits a SpawnAttempt.
func (s *SpawnerSystem) trySpawn(p *world.SpawnPoint, sp world.Species) bool {
	if reason := s.gate(p, sp); reason != "" {
		event.Emit(s.bus, event.SpawnAttempt{Point: p.Name, Species: sp, Success: false, Reason: reason})
		return false
	}

	pos, ok := s.pickPosition(p)
	if !ok {
		event.Emit(s.bus, event.SpawnAttempt{Point: p.Name, Species: sp, Success: false, Reason: "no clear position"})
		return false
	}

	a, err := s.world.CreateAnimal(sp, pos)
	if err != nil {
		event.Emit(s.bus, event.SpawnAttempt{Point: p.Name, Species: sp, Success: false, Reason: err.Error()})
		if s.log != nil {
			s.log.Warn("spawn failed", zap.Stringer("species", sp), zap.Error(err))
		}
		return false
	}
	event.Emit(s.bus, event.SpawnAttempt{Point: p.Name, Species: sp, Success: true})
	s.announce(a, false)

	if rule := s.rules.Get(sp); rule != nil && rule.Group != nil {
		s.spawnGroup(p, rule, pos)
	}
	return true
}

// gate returns the failure reason, or empty when the spawn may proceed.
func (s *SpawnerSystem) gate(p *world.SpawnPoint, sp world.Species) string {
	if s.world.Count() >= s.cfg.MaxTotalAnimals {
		return "global capacity"
	}
	if s.world.CountWithin(p.Position, p.Radius) >= p.MaxAnimals {
		return "point capacity"
	}

	rule := s.rules.Get(sp)
	if rule == nil {
		return "no spawn rule"
	}
	if rule.MaxPerMap > 0 && s.world.SpeciesCount(sp) >= rule.MaxPerMap {
		return "species capacity"
	}
	if !rule.AllowsBiome(p.Biome) {
		return "wrong biome"
	}
	if !rule.AllowsTime(s.world.TimeOfDay()) {
		return "wrong time of day"
	}
	if !rule.AllowsSeason(s.world.Season) {
		return "wrong season"
	}
	if !rule.AllowsWeather(s.world.Weather) {
		return "wrong weather"
	}

	pd := p.Position.Dist(s.world.Player)
	if pd < rule.MinDistance {
		return "player too close"
	}
	if rule.MaxDistance > 0 && pd > rule.MaxDistance {
		return "player too far"
	}

	if s.world.Rand.Float64() >= rule.Probability*s.cfg.GlobalSpawnRate {
		return "probability roll"
	}
	return ""
}

// pickPosition samples positions inside the point radius, rejecting ones
// on top of the player.
func (s *SpawnerSystem) pickPosition(p *world.SpawnPoint) (world.Vec2, bool) {
	rng := s.world.Rand
	for i := 0; i < spawnPlacementTries; i++ {
		angle := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * p.Radius
		pos := p.Position.Add(world.Vec2{X: math.Cos(angle) * r, Y: math.Sin(angle) * r})
		if pos.Dist(s.world.Player) >= s.cfg.MinPlayerGap {
			return pos, true
		}
	}
	return world.Vec2{}, false
}

// spawnGroup places extra members around a just-spawned leader. Group
// members still respect the global and species caps.
func (s *SpawnerSystem) spawnGroup(p *world.SpawnPoint, rule *world.SpawnRule, center world.Vec2) {
	rng := s.world.Rand
	extra := rng.Intn(rule.Group.Size)
	for i := 0; i < extra; i++ {
		if s.world.Count() >= s.cfg.MaxTotalAnimals {
			return
		}
		if rule.MaxPerMap > 0 && s.world.SpeciesCount(rule.Species) >= rule.MaxPerMap {
			return
		}
		angle := rng.Float64() * 2 * math.Pi
		r := rng.Float64() * rule.Group.Radius
		pos := center.Add(world.Vec2{X: math.Cos(angle) * r, Y: math.Sin(angle) * r})
		if pos.Dist(s.world.Player) < s.cfg.MinPlayerGap {
			continue
		}
		a, err := s.world.CreateAnimal(rule.Species, pos)
		if err != nil {
			return
		}
		event.Emit(s.bus, event.SpawnAttempt{Point: p.Name, Species: rule.Species, Success: true})
		s.announce(a, false)
	}
}

// ForceSpawn places an animal unconditionally at pos, bypassing every gate
// except the global cap. At capacity it is a reported no-op returning nil.
func (s *SpawnerSystem) ForceSpawn(sp world.Species, pos world.Vec2) *world.Animal {
	if s.world.Count() >= s.cfg.MaxTotalAnimals {
		event.Emit(s.bus, event.SpawnAttempt{Point: "forced", Species: sp, Success: false, Reason: "global capacity"})
		return nil
	}
	a, err := s.world.CreateAnimal(sp, pos)
	if err != nil {
		event.Emit(s.bus, event.SpawnAttempt{Point: "forced", Species: sp, Success: false, Reason: err.Error()})
		if s.log != nil {
			s.log.Warn("forced spawn failed", zap.Stringer("species", sp), zap.Error(err))
		}
		return nil
	}
	event.Emit(s.bus, event.SpawnAttempt{Point: "forced", Species: sp, Success: true})
	s.announce(a, true)
	return a
}

func (s *SpawnerSystem) announce(a *world.Animal, forced bool) {
	event.Emit(s.bus, event.AnimalSpawned{
		ID:       a.ID,
		Species:  a.Species,
		Position: a.Position,
		Forced:   forced,
		Rare:     a.Variant != nil,
	})
	if s.log != nil {
		s.log.Debug("spawn",
			zap.Uint64("animal", uint64(a.ID)),
			zap.Stringer("species", a.Species),
			zap.Bool("rare", a.Variant != nil),
			zap.Bool("forced", forced))
	}
}
