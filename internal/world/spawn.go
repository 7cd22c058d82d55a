package world

import "time"

// SpawnPoint is a fixed site animals can appear around.
type SpawnPoint struct {
	Name          string
	Position      Vec2
	Radius        float64
	Biome         Biome
	Species       []Species // preferred species, tried in order
	MaxAnimals    int       // local cap: live animals within Radius
	SpawnCooldown time.Duration
	LastSpawn     time.Duration // sim clock of last successful spawn
	Active        bool
}

// GroupSpawn configures social-group spawning for a species rule.
type GroupSpawn struct {
	Size   int     // maximum extra members per group
	Radius float64 // offset radius around the primary spawn
}

// SpawnRule gates spawning for one species. Empty gate slices mean "any".
type SpawnRule struct {
	Species     Species
	Biomes      []Biome
	Times       []TimeOfDay
	Seasons     []Season
	Weathers    []Weather
	MinDistance float64 // from player
	MaxDistance float64
	Probability float64
	MaxPerMap   int
	Group       *GroupSpawn
}

// AllowsBiome reports whether the rule whitelists the biome.
func (r *SpawnRule) AllowsBiome(b Biome) bool {
	if len(r.Biomes) == 0 {
		return true
	}
	for _, x := range r.Biomes {
		if x == b {
			return true
		}
	}
	return false
}

// AllowsTime reports whether the daypart gate passes.
func (r *SpawnRule) AllowsTime(t TimeOfDay) bool {
	if len(r.Times) == 0 {
		return true
	}
	for _, x := range r.Times {
		if x == t {
			return true
		}
	}
	return false
}

// AllowsSeason reports whether the season gate passes.
func (r *SpawnRule) AllowsSeason(s Season) bool {
	if len(r.Seasons) == 0 {
		return true
	}
	for _, x := range r.Seasons {
		if x == s {
			return true
		}
	}
	return false
}

// AllowsWeather reports whether the weather gate passes.
func (r *SpawnRule) AllowsWeather(w Weather) bool {
	if len(r.Weathers) == 0 {
		return true
	}
	for _, x := range r.Weathers {
		if x == w {
			return true
		}
	}
	return false
}
