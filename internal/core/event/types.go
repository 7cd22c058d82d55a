package event

import (
	"github.com/wildgrove/server/internal/world"
)

// Discrete events exposed to external consumers (UI, audio, progression).
// All carry value copies only.

// AnimalSpawned fires when the spawner registers a new animal.
type AnimalSpawned struct {
	ID       world.AnimalID
	Species  world.Species
	Position world.Vec2
	Forced   bool // true for ForceSpawn
	Rare     bool
}

// AnimalDespawned fires when an animal is retired from the active set.
type AnimalDespawned struct {
	ID      world.AnimalID
	Species world.Species
	Reason  string
}

// SpawnAttempt reports every spawner decision, including capacity no-ops.
type SpawnAttempt struct {
	Point   string
	Species world.Species
	Success bool
	Reason  string // empty on success
}

// Proximity fires on zone enter/exit and debounced stay.
type Proximity struct {
	ID   world.AnimalID
	Zone world.Zone
	Kind world.ZoneEventKind
}

// InteractionAttempted fires for every resolver call that passed validation
// and reached the probability roll. Rejections emit only InteractionFailed.
type InteractionAttempted struct {
	ID   world.AnimalID
	Type world.InteractionType
}

// InteractionSucceeded fires after success effects were applied.
type InteractionSucceeded struct {
	ID          world.AnimalID
	Type        world.InteractionType
	Probability float64
	Unlocked    []world.InteractionType
}

// InteractionFailed fires for rolls that failed and for rejections.
type InteractionFailed struct {
	ID          world.AnimalID
	Type        world.InteractionType
	Reason      string
	Probability float64 // 0 for rejections that never rolled
}

// AnimalReaction is the flavor reaction produced for an interaction
// outcome (scripted, with a built-in fallback).
type AnimalReaction struct {
	ID       world.AnimalID
	Species  world.Species
	Reaction string
}

// AnimalTamed fires once per animal when its bond crosses the taming bar.
type AnimalTamed struct {
	ID      world.AnimalID
	Species world.Species
}
