package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/config"
	"github.com/wildgrove/server/internal/core/system"
	"github.com/wildgrove/server/internal/data"
	"github.com/wildgrove/server/internal/world"
)

// EnvironmentSystem resets the per-tick modifier scratch and layers the
// circadian and weather effects onto every animal. It also owns the
// weather itself, rolling a seeded season-weighted transition on a fixed
// cadence.
type EnvironmentSystem struct {
	world     *world.State
	circadian *data.CircadianTable
	weather   *data.WeatherTable
	cfg       config.EnvConfig
	log       *zap.Logger

	sinceWeather time.Duration
}

func NewEnvironmentSystem(ws *world.State, circadian *data.CircadianTable, weather *data.WeatherTable, cfg config.EnvConfig, log *zap.Logger) *EnvironmentSystem {
	return &EnvironmentSystem{
		world:     ws,
		circadian: circadian,
		weather:   weather,
		cfg:       cfg,
		log:       log,
	}
}

func (s *EnvironmentSystem) Phase() system.Phase { return system.PhaseEnvironment }

func (s *EnvironmentSystem) Update(dt time.Duration) {
	s.sinceWeather += dt
	if s.sinceWeather >= s.cfg.WeatherInterval {
		s.sinceWeather = 0
		s.rollWeather()
	}

	hour := s.world.Hour()
	tod := s.world.TimeOfDay()
	for _, a := range s.world.List() {
		if !a.Active {
			continue
		}
		a.AI.ActivityScale = 1
		a.AI.FleeScale = 1
		s.applyCircadian(a, hour, tod)
		s.applyWeather(a)
	}
}

func (s *EnvironmentSystem) applyCircadian(a *world.Animal, hour int, tod world.TimeOfDay) {
	p := s.circadian.Get(a.Species)
	if p == nil {
		return
	}
	a.AI.ActivityScale *= p.Multiplier(tod)

	rng := s.world.Rand
	switch a.AI.CurrentState {
	case world.StateIdle:
		if p.SleepHours[hour] && rng.Float64() < 0.15 {
			enterState(s.world, a, world.StateSleeping)
		}
	case world.StateSleeping:
		if p.ActiveHours[hour] && rng.Float64() < 0.25 {
			enterState(s.world, a, world.StateIdle)
		}
	}

	if p.PeakHours[hour] {
		a.ModifyCuriosity(0.2)
		a.ModifyFear(-0.2)
	}
}

func (s *EnvironmentSystem) applyWeather(a *world.Animal) {
	resp := s.weather.Get(a.Species, s.world.Weather)
	a.AI.ActivityScale *= resp.Multiplier

	rng := s.world.Rand
	shelter := resp.Shelter
	if shelter == data.ShelterHide && !a.Behavior.CanHide {
		shelter = data.ShelterSeek
	}
	switch shelter {
	case data.ShelterSeek:
		switch a.AI.CurrentState {
		case world.StateFleeing, world.StateReturning, world.StateHiding, world.StateSleeping:
		default:
			if rng.Float64() < 0.3 {
				enterState(s.world, a, world.StateReturning)
				a.ModifyFear(1)
			}
		}
	case data.ShelterHide:
		if a.AI.CurrentState != world.StateHiding && a.AI.CurrentState != world.StateFleeing {
			enterState(s.world, a, world.StateHiding)
			a.ModifyFear(2)
		}
	case data.ShelterMigrate:
		switch a.AI.CurrentState {
		case world.StateIdle, world.StateWandering:
			if rng.Float64() < 0.2 {
				enterState(s.world, a, world.StateWandering)
				out := a.Position.Sub(a.AI.HomePosition).Normalize()
				if out.IsZero() {
					out = world.Vec2{X: 1}
				}
				setTarget(a, a.AI.HomePosition.Add(out.Scale(a.Behavior.WanderRadius*1.5)))
			}
		}
	}

	if resp.Tolerance < 0.5 {
		a.ModifyHappiness(-0.1)
		a.ModifyEnergy(-0.1)
	}
}

// Season-weighted transition weights per current weather. Zero-weight rows
// fall back to clear.
func (s *EnvironmentSystem) transitionWeights(from world.Weather) map[world.Weather]float64 {
	w := map[world.Weather]float64{}
	switch from {
	case world.WeatherClear:
		w[world.WeatherClear] = 6
		w[world.WeatherCloudy] = 3
		w[world.WeatherFog] = 1
	case world.WeatherCloudy:
		w[world.WeatherClear] = 3
		w[world.WeatherCloudy] = 4
		w[world.WeatherRain] = 2
		w[world.WeatherFog] = 1
	case world.WeatherRain:
		w[world.WeatherCloudy] = 3
		w[world.WeatherRain] = 4
		w[world.WeatherStorm] = 2
	case world.WeatherStorm:
		w[world.WeatherRain] = 4
		w[world.WeatherStorm] = 2
		w[world.WeatherCloudy] = 2
	case world.WeatherSnow:
		w[world.WeatherSnow] = 4
		w[world.WeatherCloudy] = 3
		w[world.WeatherClear] = 2
	case world.WeatherFog:
		w[world.WeatherFog] = 2
		w[world.WeatherClear] = 3
		w[world.WeatherCloudy] = 3
	}

	switch s.world.Season {
	case world.SeasonWinter:
		// Rain freezes over; snow becomes the wet condition.
		w[world.WeatherSnow] += w[world.WeatherRain]
		w[world.WeatherRain] = 0
		w[world.WeatherStorm] = 0
	case world.SeasonSummer:
		w[world.WeatherStorm] *= 1.5
		w[world.WeatherSnow] = 0
	default:
		w[world.WeatherSnow] = 0
	}
	return w
}

func (s *EnvironmentSystem) rollWeather() {
	weights := s.transitionWeights(s.world.Weather)
	total := 0.0
	for _, v := range weights {
		total += v
	}
	if total <= 0 {
		s.world.Weather = world.WeatherClear
		return
	}

	roll := s.world.Rand.Float64() * total
	next := world.WeatherClear
	for _, cand := range world.AllWeathers() {
		v := weights[cand]
		if v <= 0 {
			continue
		}
		if roll < v {
			next = cand
			break
		}
		roll -= v
	}

	if next != s.world.Weather {
		if s.log != nil {
			s.log.Info("weather change",
				zap.Stringer("from", s.world.Weather),
				zap.Stringer("to", next),
				zap.Stringer("season", s.world.Season))
		}
		s.world.Weather = next
	}
}
