package world

import (
	"fmt"
	"time"
)

// AnimalState is the behavior state machine's current node.
type AnimalState int

const (
	StateIdle AnimalState = iota
	StateWandering
	StateFleeing
	StateReturning
	StateSleeping
	StateFeeding
	StateCurious
	StateHiding
	StateAlert

	animalStateCount
)

var animalStateNames = [animalStateCount]string{
	"idle", "wandering", "fleeing", "returning", "sleeping",
	"feeding", "curious", "hiding", "alert",
}

func (s AnimalState) String() string {
	if s < 0 || s >= animalStateCount {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return animalStateNames[s]
}

// InteractionType enumerates the player-initiated engagement verbs. One
// enum, one resolver table; dispatch never switches on strings.
type InteractionType int

const (
	InteractObserve InteractionType = iota
	InteractApproach
	InteractTouch // generic "interact" in UI terms
	InteractFeed
	InteractPet
	InteractPlay
	InteractTalk

	interactionTypeCount
)

var interactionTypeNames = [interactionTypeCount]string{
	"observe", "approach", "interact", "feed", "pet", "play", "talk",
}

func (t InteractionType) String() string {
	if t < 0 || t >= interactionTypeCount {
		return fmt.Sprintf("interaction(%d)", int(t))
	}
	return interactionTypeNames[t]
}

func (t InteractionType) Valid() bool { return t >= 0 && t < interactionTypeCount }

// AllInteractionTypes returns every interaction verb in enum order.
func AllInteractionTypes() []InteractionType {
	out := make([]InteractionType, interactionTypeCount)
	for i := range out {
		out[i] = InteractionType(i)
	}
	return out
}

// Zone is a concentric distance band around the player.
type Zone int

const (
	ZoneNone Zone = iota // outside detection range
	ZoneDetection
	ZoneAwareness
	ZoneApproach
	ZoneInteraction
)

func (z Zone) String() string {
	switch z {
	case ZoneDetection:
		return "detection"
	case ZoneAwareness:
		return "awareness"
	case ZoneApproach:
		return "approach"
	case ZoneInteraction:
		return "interaction"
	}
	return "none"
}

// Stats are the bounded emotional and physical attributes. All writes go
// through the Modify* mutators, which clamp and never fail.
type Stats struct {
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"max_health"`
	Energy    float64 `json:"energy"`
	MaxEnergy float64 `json:"max_energy"`
	Happiness float64 `json:"happiness"`
	Fear      float64 `json:"fear"`
	Curiosity float64 `json:"curiosity"`
	Trust     float64 `json:"trust"`
}

// BehaviorProfile is species-level configuration, copied from the template
// at creation and immutable afterwards.
type BehaviorProfile struct {
	FleeDistance   float64   `json:"flee_distance"`
	ReturnDistance float64   `json:"return_distance"`
	WanderRadius   float64   `json:"wander_radius"`
	RestDuration   int       `json:"rest_duration"` // turns
	ActivityLevel  float64   `json:"activity_level"` // [0,1]
	SocialLevel    float64   `json:"social_level"`   // [0,1]
	PreferredTime  TimeOfDay `json:"preferred_time"`
	CanAlert       bool      `json:"can_alert"`
	CanHide        bool      `json:"can_hide"`
}

// memoryCap bounds each remembered-spot list; oldest entries evict first.
const memoryCap = 10

// memoryDedupeDist treats spots closer than this as the same place.
const memoryDedupeDist = 1.0

// SpotList is a bounded, proximity-deduplicated list of remembered places.
type SpotList []Vec2

// Remember inserts p unless an existing spot is within ~1 unit. When full,
// the oldest entry is evicted. Insertion is idempotent under the dedup rule.
func (l SpotList) Remember(p Vec2) SpotList {
	for _, s := range l {
		if s.WithinRadius(p, memoryDedupeDist) {
			return l
		}
	}
	if len(l) >= memoryCap {
		copy(l, l[1:])
		l = l[:memoryCap-1]
	}
	return append(l, p)
}

// Nearest returns the remembered spot closest to from.
func (l SpotList) Nearest(from Vec2) (Vec2, bool) {
	if len(l) == 0 {
		return Vec2{}, false
	}
	best := l[0]
	bestDist := from.Dist(best)
	for _, s := range l[1:] {
		if d := from.Dist(s); d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, true
}

// Memory is an animal's bounded spatial memory.
type Memory struct {
	SafeSpots   SpotList `json:"safe_spots"`
	DangerSpots SpotList `json:"danger_spots"`
	FoodSpots   SpotList `json:"food_spots"`
}

func (m *Memory) RememberSafe(p Vec2)   { m.SafeSpots = m.SafeSpots.Remember(p) }
func (m *Memory) RememberDanger(p Vec2) { m.DangerSpots = m.DangerSpots.Remember(p) }
func (m *Memory) RememberFood(p Vec2)   { m.FoodSpots = m.FoodSpots.Remember(p) }

// Sighting records where and when the animal last noticed the player.
type Sighting struct {
	Position Vec2          `json:"position"`
	Time     time.Duration `json:"time"` // sim clock
}

// AIRuntime is the mutable per-animal AI state.
type AIRuntime struct {
	CurrentState AnimalState `json:"current_state"`
	// StateTimer is the turn bound sampled on state entry; once TurnCounter
	// reaches it the state is re-evaluated.
	StateTimer  int `json:"state_timer"`
	TurnCounter int `json:"turn_counter"`
	// MoveStride throttles movement: the animal moves only on turns where
	// TurnCounter is a multiple of it. Urgent states use stride 1.
	MoveStride int `json:"move_stride"`

	TargetPosition *Vec2  `json:"target_position,omitempty"`
	PathToTarget   []Vec2 `json:"path_to_target,omitempty"`
	HomePosition   Vec2   `json:"home_position"` // set at spawn, immutable

	Memory             Memory    `json:"memory"`
	LastPlayerSighting *Sighting `json:"last_player_sighting,omitempty"`

	// Per-tick modifier scratch, rewritten by the environment/pack layer
	// before each behavior pass. Not serialized: it is derived state.
	ActivityScale float64 `json:"-"`
	FleeScale     float64 `json:"-"`
}

// interactionHistoryCap bounds the per-animal attempt log.
const interactionHistoryCap = 20

// InteractionRecord is one resolver attempt, success or failure.
type InteractionRecord struct {
	Type    InteractionType `json:"type"`
	Success bool            `json:"success"`
	Time    time.Duration   `json:"time"` // sim clock
}

// zoneEventCap bounds the per-animal proximity event history.
const zoneEventCap = 20

// ZoneEventKind distinguishes proximity transitions.
type ZoneEventKind int

const (
	ZoneEnter ZoneEventKind = iota
	ZoneExit
	ZoneStay
)

func (k ZoneEventKind) String() string {
	switch k {
	case ZoneEnter:
		return "enter"
	case ZoneExit:
		return "exit"
	}
	return "stay"
}

// ZoneEvent is a recorded proximity transition for one animal.
type ZoneEvent struct {
	Zone Zone          `json:"zone"`
	Kind ZoneEventKind `json:"kind"`
	Time time.Duration `json:"time"`
}

// ProximityState tracks zone membership between ticks.
type ProximityState struct {
	CurrentZone Zone                   `json:"current_zone"`
	Events      []ZoneEvent            `json:"events,omitempty"`
	LastStay    map[Zone]time.Duration `json:"last_stay,omitempty"`
}

// RecordEvent appends to the bounded event history.
func (p *ProximityState) RecordEvent(ev ZoneEvent) {
	if len(p.Events) >= zoneEventCap {
		copy(p.Events, p.Events[1:])
		p.Events = p.Events[:zoneEventCap-1]
	}
	p.Events = append(p.Events, ev)
}

// Animal is one simulated entity. Accessed only from the game loop
// goroutine, so no locks.
type Animal struct {
	ID      AnimalID
	Species Species
	Variant *RareVariant // nil for common animals

	Position Vec2
	Velocity Vec2

	Stats    Stats
	Behavior BehaviorProfile
	AI       AIRuntime

	Active     bool
	Tamed      bool
	SpawnTime  time.Duration // sim clock
	LastUpdate time.Duration

	Discovered       bool
	InteractionCount int
	LastInteraction  time.Duration

	// Resolver bookkeeping.
	History   []InteractionRecord
	Cooldowns map[InteractionType]time.Duration // sim time when ready again
	Unlocked  map[InteractionType]bool

	Prox ProximityState
}

func clampStat(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ModifyHealth applies a signed delta, saturating at [0, MaxHealth].
func (a *Animal) ModifyHealth(delta float64) {
	a.Stats.Health += delta
	if a.Stats.Health < 0 {
		a.Stats.Health = 0
	}
	if a.Stats.Health > a.Stats.MaxHealth {
		a.Stats.Health = a.Stats.MaxHealth
	}
}

// ModifyEnergy applies a signed delta, saturating at [0, MaxEnergy].
func (a *Animal) ModifyEnergy(delta float64) {
	a.Stats.Energy += delta
	if a.Stats.Energy < 0 {
		a.Stats.Energy = 0
	}
	if a.Stats.Energy > a.Stats.MaxEnergy {
		a.Stats.Energy = a.Stats.MaxEnergy
	}
}

func (a *Animal) ModifyHappiness(delta float64) { a.Stats.Happiness = clampStat(a.Stats.Happiness + delta) }
func (a *Animal) ModifyFear(delta float64)      { a.Stats.Fear = clampStat(a.Stats.Fear + delta) }
func (a *Animal) ModifyCuriosity(delta float64) { a.Stats.Curiosity = clampStat(a.Stats.Curiosity + delta) }
func (a *Animal) ModifyTrust(delta float64)     { a.Stats.Trust = clampStat(a.Stats.Trust + delta) }

// DistanceTo returns the distance from the animal to p.
func (a *Animal) DistanceTo(p Vec2) float64 {
	return a.Position.Dist(p)
}

// IsWithinRadius reports whether p is within r units of the animal.
func (a *Animal) IsWithinRadius(p Vec2, r float64) bool {
	return a.Position.WithinRadius(p, r)
}

// EffectiveActivity is the circadian/pack-scaled activity level in [0,1].
func (a *Animal) EffectiveActivity() float64 {
	scale := a.AI.ActivityScale
	if scale <= 0 {
		scale = 1
	}
	v := a.Behavior.ActivityLevel * scale
	if v > 1 {
		v = 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

// EffectiveFleeDistance is the pack-scaled flee trigger distance.
func (a *Animal) EffectiveFleeDistance() float64 {
	scale := a.AI.FleeScale
	if scale <= 0 {
		scale = 1
	}
	return a.Behavior.FleeDistance * scale
}

// Interactable reports whether the resolver may engage the animal at all.
// Fleeing, hiding, and sleeping animals, and panicked ones, refuse.
func (a *Animal) Interactable() bool {
	switch a.AI.CurrentState {
	case StateFleeing, StateHiding, StateSleeping:
		return false
	}
	return a.Stats.Fear <= 80
}

// RecordInteraction appends to the bounded attempt history.
func (a *Animal) RecordInteraction(rec InteractionRecord) {
	if len(a.History) >= interactionHistoryCap {
		copy(a.History, a.History[1:])
		a.History = a.History[:interactionHistoryCap-1]
	}
	a.History = append(a.History, rec)
}

// RecentSuccesses counts successful attempts among the last n records.
func (a *Animal) RecentSuccesses(n int) int {
	start := len(a.History) - n
	if start < 0 {
		start = 0
	}
	count := 0
	for _, rec := range a.History[start:] {
		if rec.Success {
			count++
		}
	}
	return count
}

// OnCooldown reports whether the interaction type is still gated at now.
func (a *Animal) OnCooldown(t InteractionType, now time.Duration) bool {
	ready, ok := a.Cooldowns[t]
	return ok && now < ready
}

// ArmCooldown gates the interaction type until now+d.
func (a *Animal) ArmCooldown(t InteractionType, now, d time.Duration) {
	if a.Cooldowns == nil {
		a.Cooldowns = make(map[InteractionType]time.Duration, 4)
	}
	a.Cooldowns[t] = now + d
}

// IsUnlocked reports whether a gated interaction has been earned.
func (a *Animal) IsUnlocked(t InteractionType) bool {
	return a.Unlocked[t]
}

// Unlock marks a gated interaction as available. Returns false when it was
// already unlocked.
func (a *Animal) Unlock(t InteractionType) bool {
	if a.Unlocked == nil {
		a.Unlocked = make(map[InteractionType]bool, 2)
	}
	if a.Unlocked[t] {
		return false
	}
	a.Unlocked[t] = true
	return true
}
