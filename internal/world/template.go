package world

// PackType classifies what a pack is for; bonuses differ per type.
type PackType int

const (
	PackFamily PackType = iota
	PackHunting
	PackProtection
	PackSocial

	packTypeCount
)

var packTypeNames = [packTypeCount]string{"family", "hunting", "protection", "social"}

func (t PackType) String() string {
	if t < 0 || t >= packTypeCount {
		return "pack(?)"
	}
	return packTypeNames[t]
}

// PackConfig enables pack behavior for a species. Nil on the template means
// the species is solitary.
type PackConfig struct {
	MaxSize    int      // hard member cap
	Radius     float64  // cohesion radius around the centroid
	FormRadius float64  // neighbor scan radius for formation
	FormChance float64  // per-tick base formation probability
	Type       PackType
}

// SpeciesTemplate is the fixed default profile copied when spawning an
// animal. Every field is explicit; missing YAML values surface as zeroes at
// load validation, not as nil-map surprises at runtime.
type SpeciesTemplate struct {
	Species   Species
	MaxHealth float64
	MaxEnergy float64
	Happiness float64
	Fear      float64
	Curiosity float64
	Trust     float64

	Behavior BehaviorProfile

	Pack *PackConfig // nil = solitary

	Tameable   bool
	RareChance float64 // probability of rolling a rare variant at spawn
}
