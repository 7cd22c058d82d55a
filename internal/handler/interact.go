package handler

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wildgrove/server/internal/core/event"
	"github.com/wildgrove/server/internal/scripting"
	"github.com/wildgrove/server/internal/world"
)

// Outcome classifies a resolver result.
type Outcome int

const (
	// OutcomeRejected means validation failed and no roll happened.
	OutcomeRejected Outcome = iota
	OutcomeFailed
	OutcomeSucceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	}
	return "rejected"
}

// Result is what the caller gets back from an interaction attempt.
type Result struct {
	Outcome     Outcome
	Reason      string  // rejection or failure reason
	Probability float64 // the rolled success chance; 0 for rejections
	Reaction    string  // flavor line, empty for rejections
	Unlocked    []world.InteractionType
	Tamed       bool // true when this attempt crossed the taming bar
}

// interactionSpec is one row of the resolver table.
type interactionSpec struct {
	MaxDistance float64
	Cooldown    time.Duration
	Base        float64
	Gated       bool // must be unlocked first
	Validate    func(a *world.Animal) string
	Apply       func(a *world.Animal)
}

var interactionTable = map[world.InteractionType]interactionSpec{
	world.InteractObserve: {
		MaxDistance: 10,
		Cooldown:    2 * time.Second,
		Base:        0.9,
		Apply: func(a *world.Animal) {
			a.ModifyCuriosity(2)
			a.ModifyTrust(0.5)
		},
	},
	world.InteractApproach: {
		MaxDistance: 6,
		Cooldown:    5 * time.Second,
		Base:        0.7,
		Apply: func(a *world.Animal) {
			a.ModifyTrust(1)
			a.ModifyFear(-2)
		},
	},
	world.InteractTouch: {
		MaxDistance: 3,
		Cooldown:    8 * time.Second,
		Base:        0.6,
		Apply: func(a *world.Animal) {
			a.ModifyTrust(2)
			a.ModifyHappiness(2)
			a.ModifyFear(-1)
		},
	},
	world.InteractFeed: {
		MaxDistance: 2.5,
		Cooldown:    20 * time.Second,
		Base:        0.75,
		Validate: func(a *world.Animal) string {
			if a.Stats.Energy > 80 {
				return "not hungry"
			}
			return ""
		},
		Apply: func(a *world.Animal) {
			a.ModifyEnergy(25)
			a.ModifyHappiness(5)
			a.ModifyTrust(3)
		},
	},
	world.InteractPet: {
		MaxDistance: 1.5,
		Cooldown:    10 * time.Second,
		Base:        0.5,
		Gated:       true,
		Validate: func(a *world.Animal) string {
			if a.Stats.Trust < 30 {
				return "does not trust you enough"
			}
			if a.Stats.Fear > 60 {
				return "too frightened to be touched"
			}
			return ""
		},
		Apply: func(a *world.Animal) {
			a.ModifyHappiness(4)
			a.ModifyTrust(2.5)
			a.ModifyFear(-3)
		},
	},
	world.InteractPlay: {
		MaxDistance: 2,
		Cooldown:    15 * time.Second,
		Base:        0.45,
		Gated:       true,
		Validate: func(a *world.Animal) string {
			if a.Stats.Energy < 40 {
				return "too tired to play"
			}
			if a.Stats.Trust < 50 {
				return "does not trust you enough"
			}
			return ""
		},
		Apply: func(a *world.Animal) {
			a.ModifyHappiness(6)
			a.ModifyEnergy(-15)
			a.ModifyTrust(2)
		},
	},
	world.InteractTalk: {
		MaxDistance: 4,
		Cooldown:    4 * time.Second,
		Base:        0.8,
		Apply: func(a *world.Animal) {
			a.ModifyTrust(1)
			a.ModifyCuriosity(1)
			a.ModifyHappiness(1)
		},
	},
}

// Taming thresholds.
const (
	tameTrustBar        = 90
	tameMinInteractions = 10
)

// HandleInteraction resolves one player attempt against one animal:
// validation in fixed order, a probability roll, then effects, unlock and
// taming checks, and events.
func HandleInteraction(deps *Deps, id world.AnimalID, t world.InteractionType) Result {
	a := deps.World.Get(id)
	if a == nil || !a.Active {
		return reject(deps, id, t, "no such animal")
	}
	spec, ok := interactionTable[t]
	if !ok {
		return reject(deps, id, t, fmt.Sprintf("unknown interaction %q", t))
	}

	if !a.Interactable() {
		switch a.AI.CurrentState {
		case world.StateFleeing, world.StateHiding, world.StateSleeping:
			return reject(deps, id, t, fmt.Sprintf("the %s is %s", a.Species, a.AI.CurrentState))
		}
		return reject(deps, id, t, fmt.Sprintf("the %s is too frightened", a.Species))
	}

	dist := deps.World.PlayerDistance(a)
	if dist > spec.MaxDistance {
		return reject(deps, id, t, "too far away")
	}

	now := deps.World.Now()
	if a.OnCooldown(t, now) {
		return reject(deps, id, t, "too soon to try again")
	}

	if spec.Gated && !a.IsUnlocked(t) {
		return reject(deps, id, t, fmt.Sprintf("%s is not available yet", t))
	}

	if spec.Validate != nil {
		if reason := spec.Validate(a); reason != "" {
			return reject(deps, id, t, reason)
		}
	}

	event.Emit(deps.Bus, event.InteractionAttempted{ID: id, Type: t})

	prob := successChance(a, spec, dist)
	success := deps.World.Rand.Float64() < prob

	cooldown := spec.Cooldown
	if scale := deps.Cfg.Interaction.CooldownScale; scale > 0 {
		cooldown = time.Duration(float64(cooldown) * scale)
	}
	a.ArmCooldown(t, now, cooldown)
	a.RecordInteraction(world.InteractionRecord{Type: t, Success: success, Time: now})
	a.LastInteraction = now

	res := Result{Probability: prob}
	if !success {
		if t == world.InteractObserve {
			a.ModifyFear(1)
		} else {
			a.ModifyFear(4)
		}
		a.ModifyHappiness(-2)
		res.Outcome = OutcomeFailed
		res.Reason = "it did not go well"
		event.Emit(deps.Bus, event.InteractionFailed{ID: id, Type: t, Reason: res.Reason, Probability: prob})
	} else {
		spec.Apply(a)
		a.InteractionCount++
		res.Outcome = OutcomeSucceeded
		res.Unlocked = checkUnlocks(a, t)
		res.Tamed = checkTaming(deps, a)
		event.Emit(deps.Bus, event.InteractionSucceeded{ID: id, Type: t, Probability: prob, Unlocked: res.Unlocked})
	}

	res.Reaction = reaction(deps, a, t, success)
	event.Emit(deps.Bus, event.AnimalReaction{ID: id, Species: a.Species, Reaction: res.Reaction})

	if deps.Log != nil {
		deps.Log.Debug("interaction",
			zap.Uint64("animal", uint64(id)),
			zap.Stringer("type", t),
			zap.Stringer("outcome", res.Outcome),
			zap.Float64("probability", prob))
	}
	return res
}

func reject(deps *Deps, id world.AnimalID, t world.InteractionType, reason string) Result {
	event.Emit(deps.Bus, event.InteractionFailed{ID: id, Type: t, Reason: reason})
	return Result{Outcome: OutcomeRejected, Reason: reason}
}

// successChance blends the base rate with the animal's disposition, how
// optimal the range is, its current state, and recent rapport.
func successChance(a *world.Animal, spec interactionSpec, dist float64) float64 {
	p := spec.Base +
		a.Stats.Trust/100*0.3 -
		a.Stats.Fear/100*0.4 +
		a.Stats.Happiness/100*0.2

	// Attempts at the edge of range are harder than point blank.
	p *= 1 - 0.25*(dist/spec.MaxDistance)

	switch a.AI.CurrentState {
	case world.StateCurious:
		p += 0.15
	case world.StateIdle:
		p += 0.05
	case world.StateFeeding:
		p -= 0.1
	case world.StateAlert:
		p -= 0.1
	}

	bonus := 0.03 * float64(a.RecentSuccesses(5))
	if bonus > 0.12 {
		bonus = 0.12
	}
	p += bonus

	if p < 0.05 {
		p = 0.05
	}
	if p > 0.95 {
		p = 0.95
	}
	return p
}

// checkUnlocks grants progression verbs earned by this success.
func checkUnlocks(a *world.Animal, t world.InteractionType) []world.InteractionType {
	var unlocked []world.InteractionType
	if t == world.InteractTouch && a.Stats.Trust >= 30 {
		if a.Unlock(world.InteractPet) {
			unlocked = append(unlocked, world.InteractPet)
		}
	}
	if t == world.InteractPet && a.Stats.Trust >= 50 {
		if a.Unlock(world.InteractPlay) {
			unlocked = append(unlocked, world.InteractPlay)
		}
	}
	return unlocked
}

// checkTaming flips the taming flag once trust and rapport are high enough.
func checkTaming(deps *Deps, a *world.Animal) bool {
	if a.Tamed {
		return false
	}
	tmpl := deps.World.Template(a.Species)
	if tmpl == nil || !tmpl.Tameable {
		return false
	}
	if a.Stats.Trust < tameTrustBar || a.InteractionCount < tameMinInteractions {
		return false
	}
	a.Tamed = true
	event.Emit(deps.Bus, event.AnimalTamed{ID: a.ID, Species: a.Species})
	if deps.Log != nil {
		deps.Log.Info("animal tamed",
			zap.Uint64("animal", uint64(a.ID)),
			zap.Stringer("species", a.Species))
	}
	return true
}

func reaction(deps *Deps, a *world.Animal, t world.InteractionType, success bool) string {
	return deps.Scripts.AnimalReaction(scripting.ReactionContext{
		Species:     a.Species.String(),
		State:       a.AI.CurrentState.String(),
		Interaction: t.String(),
		Success:     success,
		Trust:       a.Stats.Trust,
		Fear:        a.Stats.Fear,
		Happiness:   a.Stats.Happiness,
		Tamed:       a.Tamed,
		Rare:        a.Variant != nil,
	})
}
