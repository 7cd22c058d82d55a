package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wildgrove/server/internal/world"
)

// speciesEntry is the YAML shape of one species template.
type speciesEntry struct {
	Name       string  `yaml:"name"`
	MaxHealth  float64 `yaml:"max_health"`
	MaxEnergy  float64 `yaml:"max_energy"`
	Happiness  float64 `yaml:"happiness"`
	Fear       float64 `yaml:"fear"`
	Curiosity  float64 `yaml:"curiosity"`
	Trust      float64 `yaml:"trust"`
	Tameable   bool    `yaml:"tameable"`
	RareChance float64 `yaml:"rare_chance"`

	Behavior struct {
		FleeDistance   float64 `yaml:"flee_distance"`
		ReturnDistance float64 `yaml:"return_distance"`
		WanderRadius   float64 `yaml:"wander_radius"`
		RestDuration   int     `yaml:"rest_duration"`
		ActivityLevel  float64 `yaml:"activity_level"`
		SocialLevel    float64 `yaml:"social_level"`
		PreferredTime  string  `yaml:"preferred_time"`
		CanAlert       bool    `yaml:"can_alert"`
		CanHide        bool    `yaml:"can_hide"`
	} `yaml:"behavior"`

	Pack *struct {
		MaxSize    int     `yaml:"max_size"`
		Radius     float64 `yaml:"radius"`
		FormRadius float64 `yaml:"form_radius"`
		FormChance float64 `yaml:"form_chance"`
		Type       string  `yaml:"type"`
	} `yaml:"pack,omitempty"`
}

type speciesListFile struct {
	Species []speciesEntry `yaml:"species"`
}

// SpeciesTable holds all species templates indexed by species.
type SpeciesTable struct {
	templates map[world.Species]*world.SpeciesTemplate
}

// LoadSpeciesTable loads species templates from a YAML file and validates
// every entry into a fully explicit template.
func LoadSpeciesTable(path string) (*SpeciesTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read species_list: %w", err)
	}
	var f speciesListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse species_list: %w", err)
	}

	t := &SpeciesTable{templates: make(map[world.Species]*world.SpeciesTemplate, len(f.Species))}
	for i := range f.Species {
		tmpl, err := buildTemplate(&f.Species[i])
		if err != nil {
			return nil, fmt.Errorf("species_list entry %d (%s): %w", i, f.Species[i].Name, err)
		}
		t.templates[tmpl.Species] = tmpl
	}
	return t, nil
}

func buildTemplate(e *speciesEntry) (*world.SpeciesTemplate, error) {
	sp, err := world.ParseSpecies(e.Name)
	if err != nil {
		return nil, err
	}
	if e.MaxHealth <= 0 || e.MaxEnergy <= 0 {
		return nil, fmt.Errorf("max_health and max_energy must be positive")
	}
	pref, err := world.ParseTimeOfDay(e.Behavior.PreferredTime)
	if err != nil {
		return nil, err
	}
	if e.Behavior.ActivityLevel < 0 || e.Behavior.ActivityLevel > 1 {
		return nil, fmt.Errorf("activity_level %v out of [0,1]", e.Behavior.ActivityLevel)
	}
	if e.Behavior.SocialLevel < 0 || e.Behavior.SocialLevel > 1 {
		return nil, fmt.Errorf("social_level %v out of [0,1]", e.Behavior.SocialLevel)
	}
	for _, seed := range []struct {
		name  string
		value float64
	}{
		{"happiness", e.Happiness},
		{"fear", e.Fear},
		{"curiosity", e.Curiosity},
		{"trust", e.Trust},
	} {
		if seed.value < 0 || seed.value > 100 {
			return nil, fmt.Errorf("%s %v out of [0,100]", seed.name, seed.value)
		}
	}

	tmpl := &world.SpeciesTemplate{
		Species:   sp,
		MaxHealth: e.MaxHealth,
		MaxEnergy: e.MaxEnergy,
		Happiness: e.Happiness,
		Fear:      e.Fear,
		Curiosity: e.Curiosity,
		Trust:     e.Trust,
		Behavior: world.BehaviorProfile{
			FleeDistance:   e.Behavior.FleeDistance,
			ReturnDistance: e.Behavior.ReturnDistance,
			WanderRadius:   e.Behavior.WanderRadius,
			RestDuration:   e.Behavior.RestDuration,
			ActivityLevel:  e.Behavior.ActivityLevel,
			SocialLevel:    e.Behavior.SocialLevel,
			PreferredTime:  pref,
			CanAlert:       e.Behavior.CanAlert,
			CanHide:        e.Behavior.CanHide,
		},
		Tameable:   e.Tameable,
		RareChance: e.RareChance,
	}

	if e.Pack != nil {
		ptype, err := parsePackType(e.Pack.Type)
		if err != nil {
			return nil, err
		}
		if e.Pack.MaxSize < 2 {
			return nil, fmt.Errorf("pack max_size must be at least 2")
		}
		tmpl.Pack = &world.PackConfig{
			MaxSize:    e.Pack.MaxSize,
			Radius:     e.Pack.Radius,
			FormRadius: e.Pack.FormRadius,
			FormChance: e.Pack.FormChance,
			Type:       ptype,
		}
	}
	return tmpl, nil
}

func parsePackType(name string) (world.PackType, error) {
	switch name {
	case "family":
		return world.PackFamily, nil
	case "hunting":
		return world.PackHunting, nil
	case "protection":
		return world.PackProtection, nil
	case "social":
		return world.PackSocial, nil
	}
	return 0, fmt.Errorf("unknown pack type %q", name)
}

// Get returns a species template, or nil if not loaded.
func (t *SpeciesTable) Get(sp world.Species) *world.SpeciesTemplate {
	return t.templates[sp]
}

// Count returns the number of loaded templates.
func (t *SpeciesTable) Count() int {
	return len(t.templates)
}

// RegisterAll installs every loaded template into the world state.
func (t *SpeciesTable) RegisterAll(ws *world.State) {
	for _, tmpl := range t.templates {
		ws.RegisterTemplate(tmpl)
	}
}
