package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wildgrove/server/internal/world"
)

type spawnPointEntry struct {
	Name            string   `yaml:"name"`
	X               float64  `yaml:"x"`
	Y               float64  `yaml:"y"`
	Radius          float64  `yaml:"radius"`
	Biome           string   `yaml:"biome"`
	Species         []string `yaml:"species"`
	MaxAnimals      int      `yaml:"max_animals"`
	SpawnCooldownSec int     `yaml:"spawn_cooldown_sec"`
	Inactive        bool     `yaml:"inactive,omitempty"`
}

type spawnPointsFile struct {
	Points []spawnPointEntry `yaml:"points"`
}

// LoadSpawnPoints loads spawn points from a YAML file.
func LoadSpawnPoints(path string) ([]*world.SpawnPoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_points: %w", err)
	}
	var f spawnPointsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_points: %w", err)
	}

	out := make([]*world.SpawnPoint, 0, len(f.Points))
	for i := range f.Points {
		e := &f.Points[i]
		species := make([]world.Species, 0, len(e.Species))
		for _, name := range e.Species {
			sp, err := world.ParseSpecies(name)
			if err != nil {
				return nil, fmt.Errorf("spawn point %q: %w", e.Name, err)
			}
			species = append(species, sp)
		}
		out = append(out, &world.SpawnPoint{
			Name:          e.Name,
			Position:      world.Vec2{X: e.X, Y: e.Y},
			Radius:        e.Radius,
			Biome:         world.Biome(e.Biome),
			Species:       species,
			MaxAnimals:    e.MaxAnimals,
			SpawnCooldown: time.Duration(e.SpawnCooldownSec) * time.Second,
			Active:        !e.Inactive,
		})
	}
	return out, nil
}

type spawnRuleEntry struct {
	Species     string   `yaml:"species"`
	Biomes      []string `yaml:"biomes,omitempty"`
	Times       []string `yaml:"times,omitempty"`
	Seasons     []string `yaml:"seasons,omitempty"`
	Weathers    []string `yaml:"weathers,omitempty"`
	MinDistance float64  `yaml:"min_distance"`
	MaxDistance float64  `yaml:"max_distance"`
	Probability float64  `yaml:"probability"`
	MaxPerMap   int      `yaml:"max_per_map"`

	Group *struct {
		Size   int     `yaml:"size"`
		Radius float64 `yaml:"radius"`
	} `yaml:"group,omitempty"`
}

type spawnRulesFile struct {
	Rules []spawnRuleEntry `yaml:"rules"`
}

// SpawnRuleTable holds per-species spawn rules.
type SpawnRuleTable struct {
	rules map[world.Species]*world.SpawnRule
}

// LoadSpawnRules loads and validates per-species spawn rules.
func LoadSpawnRules(path string) (*SpawnRuleTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn_rules: %w", err)
	}
	var f spawnRulesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_rules: %w", err)
	}

	t := &SpawnRuleTable{rules: make(map[world.Species]*world.SpawnRule, len(f.Rules))}
	for i := range f.Rules {
		rule, err := buildRule(&f.Rules[i])
		if err != nil {
			return nil, fmt.Errorf("spawn_rules entry %d (%s): %w", i, f.Rules[i].Species, err)
		}
		t.rules[rule.Species] = rule
	}
	return t, nil
}

func buildRule(e *spawnRuleEntry) (*world.SpawnRule, error) {
	sp, err := world.ParseSpecies(e.Species)
	if err != nil {
		return nil, err
	}
	if e.Probability < 0 || e.Probability > 1 {
		return nil, fmt.Errorf("probability %v out of [0,1]", e.Probability)
	}
	if e.MaxDistance > 0 && e.MinDistance > e.MaxDistance {
		return nil, fmt.Errorf("min_distance %v exceeds max_distance %v", e.MinDistance, e.MaxDistance)
	}

	rule := &world.SpawnRule{
		Species:     sp,
		MinDistance: e.MinDistance,
		MaxDistance: e.MaxDistance,
		Probability: e.Probability,
		MaxPerMap:   e.MaxPerMap,
	}
	for _, b := range e.Biomes {
		rule.Biomes = append(rule.Biomes, world.Biome(b))
	}
	for _, name := range e.Times {
		tod, err := world.ParseTimeOfDay(name)
		if err != nil {
			return nil, err
		}
		rule.Times = append(rule.Times, tod)
	}
	for _, name := range e.Seasons {
		season, err := world.ParseSeason(name)
		if err != nil {
			return nil, err
		}
		rule.Seasons = append(rule.Seasons, season)
	}
	for _, name := range e.Weathers {
		w, err := world.ParseWeather(name)
		if err != nil {
			return nil, err
		}
		rule.Weathers = append(rule.Weathers, w)
	}
	if e.Group != nil {
		if e.Group.Size < 1 {
			return nil, fmt.Errorf("group size must be at least 1")
		}
		rule.Group = &world.GroupSpawn{Size: e.Group.Size, Radius: e.Group.Radius}
	}
	return rule, nil
}

// Get returns the rule for a species, or nil if none was configured.
func (t *SpawnRuleTable) Get(sp world.Species) *world.SpawnRule {
	return t.rules[sp]
}

// Count returns the number of loaded rules.
func (t *SpawnRuleTable) Count() int {
	return len(t.rules)
}
