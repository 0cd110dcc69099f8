// Package scene runs a three-participant encounter: initiative order, the
// NEAR/FAR position model, the per-turn eligibility gate and the dispatch
// to each seat's decision maker.
package scene

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Position is an actor's distance from the fight.
type Position int

const (
	Near Position = iota
	Far
)

// String returns "NEAR" or "FAR".
func (p Position) String() string {
	if p == Far {
		return "FAR"
	}
	return "NEAR"
}

// Status mirrors the entity flags; it is resynced after every turn.
type Status int

const (
	StatusGood Status = iota
	StatusUnconscious
	StatusDead
)

// String returns "GOOD", "UNCONSCIOUS" or "DEAD".
func (s Status) String() string {
	switch s {
	case StatusUnconscious:
		return "UNCONSCIOUS"
	case StatusDead:
		return "DEAD"
	default:
		return "GOOD"
	}
}

// Actor wraps one arena entity with encounter-only state.
type Actor struct {
	// ID is the entity's arena ID.
	ID          int
	Kind        combat.Kind
	Initiative  int
	Position    Position
	Status      Status
	DamageDealt int
	// Downed is set once the actor has spent a turn unconscious or been seen unconscious.
	Downed bool
	// Killed is set once the actor has been seen dead.
	Killed bool

	strategy Strategy
	dex      int
	tiebreak int
}

// initiativeBefore orders actors by initiative, then raw dexterity, then the
// coin flip drawn at construction. All comparisons are descending.
func initiativeBefore(a, b *Actor) bool {
	if a.Initiative != b.Initiative {
		return a.Initiative > b.Initiative
	}
	if a.dex != b.dex {
		return a.dex > b.dex
	}
	return a.tiebreak > b.tiebreak
}
