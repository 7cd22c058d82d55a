package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/core/system"
	"github.com/wildgrove/server/internal/telemetry"
	"github.com/wildgrove/server/internal/world"
)

// TelemetrySystem samples population-level aggregates to CSV on a fixed
// interval.
type TelemetrySystem struct {
	world    *world.State
	out      *telemetry.OutputManager
	interval time.Duration
	log      *zap.Logger

	since time.Duration
}

func NewTelemetrySystem(ws *world.State, out *telemetry.OutputManager, interval time.Duration, log *zap.Logger) *TelemetrySystem {
	return &TelemetrySystem{world: ws, out: out, interval: interval, log: log}
}

func (s *TelemetrySystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *TelemetrySystem) Update(dt time.Duration) {
	s.since += dt
	if s.since < s.interval {
		return
	}
	s.since = 0

	row := s.sample()
	if err := s.out.WriteRow(row); err != nil && s.log != nil {
		s.log.Warn("telemetry write failed", zap.Error(err))
	}
}

func (s *TelemetrySystem) sample() telemetry.PopulationRow {
	row := telemetry.PopulationRow{
		Tick:       s.world.Tick(),
		SimSeconds: s.world.Now().Seconds(),
		Hour:       s.world.Hour(),
		Weather:    s.world.Weather.String(),
		Packs:      s.world.PackCount(),
	}

	var trust, fear float64
	s.world.All(func(a *world.Animal) {
		row.Population++
		if a.Tamed {
			row.Tamed++
		}
		if a.Variant != nil {
			row.Rare++
		}
		switch a.AI.CurrentState {
		case world.StateIdle:
			row.Idle++
		case world.StateWandering:
			row.Wandering++
		case world.StateFleeing:
			row.Fleeing++
		case world.StateSleeping:
			row.Sleeping++
		default:
			row.Other++
		}
		trust += a.Stats.Trust
		fear += a.Stats.Fear
	})
	if row.Population > 0 {
		row.MeanTrust = trust / float64(row.Population)
		row.MeanFear = fear / float64(row.Population)
	}
	return row
}
