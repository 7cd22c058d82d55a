package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/core/system"
	"github.com/wildgrove/server/internal/world"
)

// PackSystem maintains the pack registry: it forms packs from same-species
// neighbors, pulls straying members back toward the centroid, and applies
// the pack-type stat bonuses every tick.
type PackSystem struct {
	world *world.State
	log   *zap.Logger
}

func NewPackSystem(ws *world.State, log *zap.Logger) *PackSystem {
	return &PackSystem{world: ws, log: log}
}

func (s *PackSystem) Phase() system.Phase { return system.PhasePack }

func (s *PackSystem) Update(time.Duration) {
	s.world.RefreshPacks()

	for _, a := range s.world.List() {
		if !a.Active {
			continue
		}
		tmpl := s.world.Template(a.Species)
		if tmpl == nil || tmpl.Pack == nil {
			continue
		}
		p := s.world.PackOf(a.ID)
		if p == nil {
			s.tryFormOrJoin(a, tmpl.Pack)
			continue
		}
		s.cohere(a, p)
		applyPackBonus(a, p.Type)
	}
}

// tryFormOrJoin first looks for an existing pack with room nearby, then
// attempts to found a new one with unaffiliated neighbors.
func (s *PackSystem) tryFormOrJoin(a *world.Animal, cfg *world.PackConfig) {
	rng := s.world.Rand
	social := a.Behavior.SocialLevel

	var joinable *world.PackData
	s.world.AllPacks(func(p *world.PackData) {
		if joinable != nil || p.Species != a.Species || p.Size() >= p.MaxSize {
			return
		}
		if a.Position.WithinRadius(p.Center, cfg.FormRadius) {
			joinable = p
		}
	})
	if joinable != nil {
		if rng.Float64() < social*0.5 && s.world.JoinPack(joinable, a.ID) {
			if s.log != nil {
				s.log.Debug("joined pack",
					zap.Uint64("animal", uint64(a.ID)),
					zap.Int32("pack", int32(joinable.ID)),
					zap.Int("size", joinable.Size()))
			}
		}
		return
	}

	var loners []world.AnimalID
	for _, n := range s.world.NearbyAnimals(a.Position, cfg.FormRadius, a.ID) {
		if n.Species != a.Species || !n.Active {
			continue
		}
		if s.world.PackOf(n.ID) != nil {
			continue
		}
		loners = append(loners, n.ID)
	}
	if len(loners) < 2 {
		return
	}
	if rng.Float64() >= cfg.FormChance*social {
		return
	}

	members := append([]world.AnimalID{a.ID}, loners...)
	if len(members) > cfg.MaxSize {
		members = members[:cfg.MaxSize]
	}
	if p := s.world.CreatePack(a.Species, cfg.Type, *cfg, members); p != nil && s.log != nil {
		s.log.Info("pack formed",
			zap.Stringer("species", a.Species),
			zap.Stringer("type", cfg.Type),
			zap.Int32("pack", int32(p.ID)),
			zap.Int("size", p.Size()))
	}
}

// cohere pulls a member that drifted outside the pack radius back toward
// the centroid, without interrupting urgent states. A member already
// wandering is only retargeted; re-entering the state every tick would
// reset its turn counter and it would never reach a moving stride turn.
func (s *PackSystem) cohere(a *world.Animal, p *world.PackData) {
	if a.Position.WithinRadius(p.Center, p.Radius) {
		return
	}
	switch a.AI.CurrentState {
	case world.StateIdle:
		enterState(s.world, a, world.StateWandering)
		setTarget(a, p.Center)
	case world.StateWandering:
		setTarget(a, p.Center)
	}
}

func applyPackBonus(a *world.Animal, t world.PackType) {
	switch t {
	case world.PackHunting:
		a.AI.ActivityScale *= 1.2
		a.ModifyFear(-0.1)
	case world.PackProtection:
		// Safety in numbers: the flee trigger tightens.
		a.AI.FleeScale *= 0.8
	case world.PackFamily:
		a.ModifyHappiness(0.05)
		a.ModifyTrust(0.02)
	case world.PackSocial:
		a.ModifyHappiness(0.05)
	}
}
