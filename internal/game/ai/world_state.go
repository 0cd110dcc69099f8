// Package ai holds the decision makers for the autonomous participants: the
// opponent's targeting heuristic and the ally's fuzzy-logic strategy.
package ai

import (
	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// CombatantState captures a participant's combat-relevant state at decision time.
type CombatantState struct {
	ID    int
	Name  string
	Kind  combat.Kind
	HP    int
	MaxHP int
	Dead  bool
}

// Bloodied reports whether the combatant is above 0 HP but at or below half its maximum.
//
// Postcondition: Returns 0 < HP <= MaxHP/2.
func (c CombatantState) Bloodied() bool {
	return c.HP > 0 && c.HP <= c.MaxHP/2
}

// WorldState is the snapshot an opponent decides from.
//
// Invariant: Targets holds only living combatants other than Self.
type WorldState struct {
	Self    CombatantState
	Targets []CombatantState
	// LastStruckBy is the ID of the last combatant to hit Self, or combat.NoOne.
	LastStruckBy int
}

// Has reports whether id is among the targets.
func (ws WorldState) Has(id int) bool {
	for _, t := range ws.Targets {
		if t.ID == id {
			return true
		}
	}
	return false
}

// BuildWorldState snapshots self and the candidate targets from arena. Dead
// candidates are dropped.
//
// Precondition: arena must not be nil; all IDs must be registered.
// Postcondition: ws.Self.ID == self; ws.Targets preserves the order of targets.
func BuildWorldState(arena *combat.Arena, self int, targets []int) WorldState {
	ws := WorldState{
		Self:         snapshot(arena.Entity(self)),
		LastStruckBy: arena.LastStruckBy(self),
	}
	for _, id := range targets {
		if id == self {
			continue
		}
		s := snapshot(arena.Entity(id))
		if s.Dead {
			continue
		}
		ws.Targets = append(ws.Targets, s)
	}
	return ws
}

func snapshot(e *combat.Entity) CombatantState {
	return CombatantState{
		ID:    e.ID,
		Name:  e.String(),
		Kind:  e.Kind,
		HP:    e.CurrentHP,
		MaxHP: e.MaxHP,
		Dead:  e.Dead,
	}
}
