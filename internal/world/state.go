package world

import (
	"math/rand"
	"time"
)

// State is the explicit world context passed into every system call. It
// owns the sim clock, the active animal collection, the species template
// registry, the pack registry, and the rng. Accessed only from the game
// loop goroutine, so no locks.
type State struct {
	// Rand drives every probabilistic decision in the engine. Seeded from
	// config so full runs are reproducible.
	Rand *rand.Rand

	clock     time.Duration
	tick      uint64
	dayLength time.Duration
	timeOfDay TimeOfDay

	// Read-only world context, written by the embedding application (or the
	// environment system, for weather) before each tick.
	Player  Vec2
	Biome   Biome
	Weather Weather
	Season  Season

	templates map[Species]*SpeciesTemplate

	pool          *idPool
	animals       map[AnimalID]*Animal
	order         []AnimalID
	speciesCounts map[Species]int

	packs        map[PackID]*PackData
	packByAnimal map[AnimalID]PackID
	nextPackID   PackID

	removeQueue []AnimalID
}

// NewState builds an empty world. dayLength is the sim duration of one
// 24-hour cycle.
func NewState(seed int64, dayLength time.Duration) *State {
	if dayLength <= 0 {
		dayLength = 24 * time.Minute
	}
	return &State{
		Rand:          rand.New(rand.NewSource(seed)),
		dayLength:     dayLength,
		timeOfDay:     TimeOfDayForHour(0),
		Biome:         BiomeMeadow,
		Season:        SeasonSpring,
		templates:     make(map[Species]*SpeciesTemplate, 8),
		pool:          newIDPool(),
		animals:       make(map[AnimalID]*Animal, 64),
		speciesCounts: make(map[Species]int, 8),
		packs:         make(map[PackID]*PackData, 8),
		packByAnimal:  make(map[AnimalID]PackID, 32),
	}
}

// Advance moves the sim clock forward one tick.
func (s *State) Advance(dt time.Duration) {
	s.clock += dt
	s.tick++
	s.timeOfDay = TimeOfDayForHour(s.Hour())
}

// Now returns the sim clock.
func (s *State) Now() time.Duration { return s.clock }

// Tick returns the tick counter.
func (s *State) Tick() uint64 { return s.tick }

// Hour returns the sim hour of day, 0-23.
func (s *State) Hour() int {
	frac := s.clock % s.dayLength
	return int(frac * 24 / s.dayLength)
}

// TimeOfDay returns the daypart derived from the sim clock.
func (s *State) TimeOfDay() TimeOfDay { return s.timeOfDay }

// RegisterTemplate installs or replaces the template for a species.
func (s *State) RegisterTemplate(t *SpeciesTemplate) {
	s.templates[t.Species] = t
}

// Template returns the registered template for a species, or nil.
func (s *State) Template(sp Species) *SpeciesTemplate {
	return s.templates[sp]
}

// CreateAnimal builds a fully initialized animal from the registered
// template at pos, which becomes its immutable home position. It fails
// with UnknownSpeciesError for an unregistered species.
func (s *State) CreateAnimal(sp Species, pos Vec2) (*Animal, error) {
	tmpl, ok := s.templates[sp]
	if !ok {
		return nil, UnknownSpeciesError{Species: sp}
	}

	a := &Animal{
		ID:       s.pool.Create(),
		Species:  sp,
		Position: pos,
		Stats: Stats{
			Health:    tmpl.MaxHealth,
			MaxHealth: tmpl.MaxHealth,
			Energy:    tmpl.MaxEnergy,
			MaxEnergy: tmpl.MaxEnergy,
			// Seeds clamp so a template registered outside the loader cannot
			// birth an animal with out-of-range stats.
			Happiness: clampStat(tmpl.Happiness),
			Fear:      clampStat(tmpl.Fear),
			Curiosity: clampStat(tmpl.Curiosity),
			Trust:     clampStat(tmpl.Trust),
		},
		Behavior: tmpl.Behavior,
		AI: AIRuntime{
			CurrentState:  StateIdle,
			HomePosition:  pos,
			ActivityScale: 1,
			FleeScale:     1,
		},
		Active:     true,
		SpawnTime:  s.clock,
		LastUpdate: s.clock,
	}

	if tmpl.RareChance > 0 && s.Rand.Float64() < tmpl.RareChance {
		kind := RareKind(s.Rand.Intn(3))
		a.Variant = &RareVariant{Kind: kind}
		switch kind {
		case RareAlbino:
			// Conspicuous coat: warier than the common form.
			a.ModifyFear(10)
		case RareMelanistic:
			a.ModifyFear(-5)
			a.ModifyCuriosity(5)
		case RareGiant:
			a.Stats.MaxHealth *= 1.25
			a.Stats.Health = a.Stats.MaxHealth
			a.Stats.MaxEnergy *= 1.15
			a.Stats.Energy = a.Stats.MaxEnergy
		}
	}

	s.animals[a.ID] = a
	s.order = append(s.order, a.ID)
	s.speciesCounts[sp]++
	return a, nil
}

// Get returns a live animal by id, or nil for stale/unknown ids.
func (s *State) Get(id AnimalID) *Animal {
	if !s.pool.Alive(id) {
		return nil
	}
	return s.animals[id]
}

// All iterates live animals in spawn order.
func (s *State) All(fn func(*Animal)) {
	for _, id := range s.order {
		if a, ok := s.animals[id]; ok {
			fn(a)
		}
	}
}

// List returns the live animals in spawn order. The slice is fresh; the
// pointers alias live entities.
func (s *State) List() []*Animal {
	out := make([]*Animal, 0, len(s.order))
	for _, id := range s.order {
		if a, ok := s.animals[id]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Count returns the number of live animals.
func (s *State) Count() int { return len(s.animals) }

// SpeciesCount returns the number of live animals of one species.
func (s *State) SpeciesCount(sp Species) int { return s.speciesCounts[sp] }

// CountWithin returns the number of live animals within r units of pos.
func (s *State) CountWithin(pos Vec2, r float64) int {
	n := 0
	for _, a := range s.animals {
		if a.Position.WithinRadius(pos, r) {
			n++
		}
	}
	return n
}

// NearbyAnimals returns live animals within r units of pos, excluding the
// given id (pass zero to exclude nothing).
func (s *State) NearbyAnimals(pos Vec2, r float64, exclude AnimalID) []*Animal {
	var out []*Animal
	for _, id := range s.order {
		if id == exclude {
			continue
		}
		a, ok := s.animals[id]
		if !ok {
			continue
		}
		if a.Position.WithinRadius(pos, r) {
			out = append(out, a)
		}
	}
	return out
}

// RemoveAnimal retires an animal immediately: it leaves its pack, its id is
// invalidated, and the per-species count drops. Returns the removed animal.
func (s *State) RemoveAnimal(id AnimalID) *Animal {
	a, ok := s.animals[id]
	if !ok {
		return nil
	}
	s.LeavePack(id)
	delete(s.animals, id)
	s.speciesCounts[a.Species]--
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.pool.Destroy(id)
	a.Active = false
	return a
}

// MarkForRemoval queues an animal for end-of-tick retirement.
func (s *State) MarkForRemoval(id AnimalID) {
	s.removeQueue = append(s.removeQueue, id)
}

// FlushRemovals retires all queued animals. Called by the cleanup system at
// the end of each tick.
func (s *State) FlushRemovals() int {
	n := 0
	for _, id := range s.removeQueue {
		if s.RemoveAnimal(id) != nil {
			n++
		}
	}
	s.removeQueue = s.removeQueue[:0]
	return n
}

// PlayerDistance returns the distance from the animal to the player.
func (s *State) PlayerDistance(a *Animal) float64 {
	return a.Position.Dist(s.Player)
}
