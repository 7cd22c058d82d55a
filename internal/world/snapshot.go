package world

// AnimalSnapshot is the immutable per-animal view handed to consumers
// (rendering, audio, progression). It is a value copy; holding one never
// aliases live simulation state.
type AnimalSnapshot struct {
	ID       AnimalID
	Species  Species
	Position Vec2
	State    AnimalState
	Stats    Stats
	Tamed    bool
	Rare     bool
}

// SnapshotOf copies the consumer-visible fields of one animal.
func SnapshotOf(a *Animal) AnimalSnapshot {
	return AnimalSnapshot{
		ID:       a.ID,
		Species:  a.Species,
		Position: a.Position,
		State:    a.AI.CurrentState,
		Stats:    a.Stats,
		Tamed:    a.Tamed,
		Rare:     a.Variant != nil,
	}
}

// Snapshot returns value copies of every live animal, in spawn order.
func (s *State) Snapshot() []AnimalSnapshot {
	out := make([]AnimalSnapshot, 0, len(s.order))
	s.All(func(a *Animal) {
		out = append(out, SnapshotOf(a))
	})
	return out
}

// OpportunityType is the recommended engagement class for one animal.
type OpportunityType int

const (
	OpportunityObserve OpportunityType = iota
	OpportunityApproach
	OpportunityInteract
	OpportunityAvoid
)

func (t OpportunityType) String() string {
	switch t {
	case OpportunityObserve:
		return "observe"
	case OpportunityApproach:
		return "approach"
	case OpportunityInteract:
		return "interact"
	}
	return "avoid"
}

// Opportunity scores how approachable an animal currently is.
type Opportunity struct {
	Type           OpportunityType
	Confidence     float64 // [0,1]
	Recommendation string
	Warning        string // empty when nothing to warn about
}
