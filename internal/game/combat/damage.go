package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

var deathSave = rollStraight

// TakeDamage applies amount to the entity with the given ID.
//
// Transitions, first match wins:
//   - CurrentHP-amount <= -MaxHP: dead at 0 HP.
//   - already at 0 HP: one death-save failure, even for 0 damage; stable is lost.
//   - amount >= CurrentHP: 0 HP and unconscious, or dead under PolicySlain.
//   - otherwise CurrentHP is reduced by amount.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= CurrentHP <= MaxHP.
func (a *Arena) TakeDamage(id, amount int) {
	a.mustHave(id)
	if amount < 0 {
		panic(fmt.Sprintf("combat: TakeDamage precondition violated: negative amount %d", amount))
	}
	e := a.entities[id]
	if e.Dead {
		return
	}

	switch {
	case e.CurrentHP-amount <= -e.MaxHP:
		e.CurrentHP = 0
		a.kill(e)
		a.emit(Event{Kind: EventMassiveDeath, Actor: id, Target: NoOne, Amount: amount,
			Narrative: fmt.Sprintf("A massive strike has taken %s's life.", e)})
	case e.CurrentHP <= 0:
		e.Failures++
		e.Stable = false
		a.emit(Event{Kind: EventStruckWhileDown, Actor: id, Target: NoOne, Amount: amount,
			Narrative: fmt.Sprintf("%s is struck while down (%d failed saves).", e, e.Failures)})
		a.resolveDeathSaves(e)
	case amount >= e.CurrentHP:
		e.CurrentHP = 0
		if e.Policy == PolicySlain {
			a.kill(e)
			a.emit(Event{Kind: EventSlain, Actor: id, Target: NoOne, Amount: amount,
				Narrative: fmt.Sprintf("%s has been slain!", e)})
			return
		}
		e.Unconscious = true
		e.Stable = false
		a.emit(Event{Kind: EventUnconscious, Actor: id, Target: NoOne, Amount: amount,
			Narrative: fmt.Sprintf("With a thump, %s falls to the ground, unconscious.", e)})
	default:
		e.CurrentHP -= amount
	}
}

// DeathSaveRoll rolls one death save for the entity with the given ID.
// Only unconscious entities that are not yet stable roll.
//
// A 1 sets failures to 3, a 20 revives at 1 HP with the counters reset, below
// 10 adds a failure and anything else adds a success.
//
// Postcondition: Returns the face rolled, or 0 when no roll was made.
func (a *Arena) DeathSaveRoll(id int) int {
	a.mustHave(id)
	e := a.entities[id]
	if !e.Unconscious || e.Stable || e.Dead {
		return 0
	}

	face := a.roller.MustRoll(deathSave, dice.ModeNormal).Total()
	ev := Event{Actor: id, Target: NoOne, Roll: face}
	switch {
	case face == 1:
		e.Failures = 3
		ev.Kind = EventDeathSaveCriticalFailure
		ev.Narrative = fmt.Sprintf("%s's death save is a natural 1.", e)
	case face == 20:
		e.Failures, e.Successes = 0, 0
		e.Unconscious = false
		e.CurrentHP = 1
		ev.Kind = EventRevived
		ev.Narrative = fmt.Sprintf("With a gasp, %s rises to fight again!", e)
	case face < 10:
		e.Failures++
		ev.Kind = EventDeathSaveFailure
		ev.Narrative = fmt.Sprintf("%s fails a death save (%d), %d failures.", e, face, e.Failures)
	default:
		e.Successes++
		ev.Kind = EventDeathSaveSuccess
		ev.Narrative = fmt.Sprintf("%s succeeds on a death save (%d), %d successes.", e, face, e.Successes)
	}
	a.emit(ev)

	if e.CurrentHP < 1 {
		a.resolveDeathSaves(e)
	}
	return face
}

func (a *Arena) resolveDeathSaves(e *Entity) {
	switch {
	case e.Failures > 2:
		a.kill(e)
		a.emit(Event{Kind: EventDied, Actor: e.ID, Target: NoOne,
			Narrative: fmt.Sprintf("Alas, %s has died in battle.", e)})
	case e.Successes > 2:
		e.Unconscious = true
		e.Stable = true
		e.Failures, e.Successes = 0, 0
		a.emit(Event{Kind: EventStabilized, Actor: e.ID, Target: NoOne,
			Narrative: fmt.Sprintf("%s is unconscious but stable.", e)})
	}
}

func (a *Arena) kill(e *Entity) {
	e.Dead = true
	e.Unconscious = false
	e.Stable = false
}
