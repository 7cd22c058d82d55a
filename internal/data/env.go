package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wildgrove/server/internal/world"
)

// CircadianProfile drives a species' daily rhythm.
type CircadianProfile struct {
	ActiveHours [24]bool
	SleepHours  [24]bool
	PeakHours   [24]bool
	// Multipliers scale activity per daypart; missing dayparts default to 1.
	Multipliers map[world.TimeOfDay]float64
}

// Multiplier returns the activity multiplier for a daypart.
func (p *CircadianProfile) Multiplier(t world.TimeOfDay) float64 {
	if m, ok := p.Multipliers[t]; ok {
		return m
	}
	return 1
}

type circadianEntry struct {
	Species     string             `yaml:"species"`
	ActiveHours []int              `yaml:"active_hours"`
	SleepHours  []int              `yaml:"sleep_hours"`
	PeakHours   []int              `yaml:"peak_hours"`
	Multipliers map[string]float64 `yaml:"multipliers"`
}

type circadianFile struct {
	Circadian []circadianEntry `yaml:"circadian"`
}

// CircadianTable holds per-species circadian profiles.
type CircadianTable struct {
	profiles map[world.Species]*CircadianProfile
}

// LoadCircadianTable loads circadian profiles from a YAML file.
func LoadCircadianTable(path string) (*CircadianTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read circadian_list: %w", err)
	}
	var f circadianFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse circadian_list: %w", err)
	}

	t := &CircadianTable{profiles: make(map[world.Species]*CircadianProfile, len(f.Circadian))}
	for i := range f.Circadian {
		e := &f.Circadian[i]
		sp, err := world.ParseSpecies(e.Species)
		if err != nil {
			return nil, fmt.Errorf("circadian_list entry %d: %w", i, err)
		}
		p := &CircadianProfile{Multipliers: make(map[world.TimeOfDay]float64, 4)}
		if err := setHours(&p.ActiveHours, e.ActiveHours); err != nil {
			return nil, fmt.Errorf("circadian_list %s active_hours: %w", e.Species, err)
		}
		if err := setHours(&p.SleepHours, e.SleepHours); err != nil {
			return nil, fmt.Errorf("circadian_list %s sleep_hours: %w", e.Species, err)
		}
		if err := setHours(&p.PeakHours, e.PeakHours); err != nil {
			return nil, fmt.Errorf("circadian_list %s peak_hours: %w", e.Species, err)
		}
		for name, mult := range e.Multipliers {
			tod, err := world.ParseTimeOfDay(name)
			if err != nil {
				return nil, fmt.Errorf("circadian_list %s multipliers: %w", e.Species, err)
			}
			p.Multipliers[tod] = mult
		}
		t.profiles[sp] = p
	}
	return t, nil
}

func setHours(dst *[24]bool, hours []int) error {
	for _, h := range hours {
		if h < 0 || h > 23 {
			return fmt.Errorf("hour %d out of range", h)
		}
		dst[h] = true
	}
	return nil
}

// Get returns the circadian profile for a species, or nil.
func (t *CircadianTable) Get(sp world.Species) *CircadianProfile {
	return t.profiles[sp]
}

// Count returns the number of loaded profiles.
func (t *CircadianTable) Count() int {
	return len(t.profiles)
}

// Shelter is how a species reacts to weather it dislikes.
type Shelter int

const (
	ShelterNormal Shelter = iota
	ShelterSeek
	ShelterHide
	ShelterMigrate
)

func (s Shelter) String() string {
	switch s {
	case ShelterSeek:
		return "seek_shelter"
	case ShelterHide:
		return "hide"
	case ShelterMigrate:
		return "migrate"
	}
	return "normal"
}

func parseShelter(name string) (Shelter, error) {
	switch name {
	case "normal", "":
		return ShelterNormal, nil
	case "seek_shelter":
		return ShelterSeek, nil
	case "hide":
		return ShelterHide, nil
	case "migrate":
		return ShelterMigrate, nil
	}
	return 0, fmt.Errorf("unknown shelter behavior %q", name)
}

// WeatherResponse is one species' reaction to one weather condition.
type WeatherResponse struct {
	Multiplier float64 // activity scale
	Shelter    Shelter
	Tolerance  float64 // [0,1]; low tolerance slowly drains happiness/energy
}

type weatherResponseEntry struct {
	Multiplier float64 `yaml:"multiplier"`
	Shelter    string  `yaml:"shelter"`
	Tolerance  float64 `yaml:"tolerance"`
}

type weatherEntry struct {
	Species   string                          `yaml:"species"`
	Responses map[string]weatherResponseEntry `yaml:"responses"`
}

type weatherFile struct {
	Weather []weatherEntry `yaml:"weather"`
}

// WeatherTable holds per-species weather responses.
type WeatherTable struct {
	responses map[world.Species]map[world.Weather]WeatherResponse
}

// LoadWeatherTable loads weather response tables from a YAML file.
func LoadWeatherTable(path string) (*WeatherTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weather_list: %w", err)
	}
	var f weatherFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse weather_list: %w", err)
	}

	t := &WeatherTable{responses: make(map[world.Species]map[world.Weather]WeatherResponse, len(f.Weather))}
	for i := range f.Weather {
		e := &f.Weather[i]
		sp, err := world.ParseSpecies(e.Species)
		if err != nil {
			return nil, fmt.Errorf("weather_list entry %d: %w", i, err)
		}
		m := make(map[world.Weather]WeatherResponse, len(e.Responses))
		for name, re := range e.Responses {
			w, err := world.ParseWeather(name)
			if err != nil {
				return nil, fmt.Errorf("weather_list %s: %w", e.Species, err)
			}
			shelter, err := parseShelter(re.Shelter)
			if err != nil {
				return nil, fmt.Errorf("weather_list %s/%s: %w", e.Species, name, err)
			}
			m[w] = WeatherResponse{Multiplier: re.Multiplier, Shelter: shelter, Tolerance: re.Tolerance}
		}
		t.responses[sp] = m
	}
	return t, nil
}

// Get returns the response of a species to a weather condition. Species or
// conditions without an entry behave normally.
func (t *WeatherTable) Get(sp world.Species, w world.Weather) WeatherResponse {
	if m, ok := t.responses[sp]; ok {
		if r, ok := m[w]; ok {
			return r
		}
	}
	return WeatherResponse{Multiplier: 1, Shelter: ShelterNormal, Tolerance: 1}
}

// Count returns the number of species with weather responses.
func (t *WeatherTable) Count() int {
	return len(t.responses)
}
