package world

import "fmt"

// Species is the closed set of simulated animal kinds. Templates must be
// registered for every species before animals of it can be created.
type Species int

const (
	SpeciesRabbit Species = iota
	SpeciesDeer
	SpeciesFox
	SpeciesSquirrel
	SpeciesSongbird
	SpeciesWolf

	speciesCount // sentinel, keep last
)

var speciesNames = [speciesCount]string{
	SpeciesRabbit:   "rabbit",
	SpeciesDeer:     "deer",
	SpeciesFox:      "fox",
	SpeciesSquirrel: "squirrel",
	SpeciesSongbird: "songbird",
	SpeciesWolf:     "wolf",
}

func (s Species) String() string {
	if s < 0 || s >= speciesCount {
		return fmt.Sprintf("species(%d)", int(s))
	}
	return speciesNames[s]
}

func (s Species) Valid() bool { return s >= 0 && s < speciesCount }

// ParseSpecies maps a YAML/config name onto the enum.
func ParseSpecies(name string) (Species, error) {
	for i, n := range speciesNames {
		if n == name {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("unknown species %q", name)
}

// AllSpecies returns every valid species value, in enum order.
func AllSpecies() []Species {
	out := make([]Species, speciesCount)
	for i := range out {
		out[i] = Species(i)
	}
	return out
}

// UnknownSpeciesError is returned when an animal is created for a species
// with no registered template. Creation fails fast; it never defaults.
type UnknownSpeciesError struct {
	Species Species
}

func (e UnknownSpeciesError) Error() string {
	return fmt.Sprintf("no template registered for species %s", e.Species)
}

// RareKind tags the rare-variant metadata carried by a few spawns.
type RareKind int

const (
	RareAlbino RareKind = iota
	RareMelanistic
	RareGiant
)

func (k RareKind) String() string {
	switch k {
	case RareAlbino:
		return "albino"
	case RareMelanistic:
		return "melanistic"
	case RareGiant:
		return "giant"
	}
	return fmt.Sprintf("rare(%d)", int(k))
}

// RareVariant is optional per-animal variant metadata. A nil pointer means
// a common animal; consumers switch exhaustively on Kind.
type RareVariant struct {
	Kind RareKind `json:"kind"`
}
