package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

var (
	rollStraight     = dice.MustParse("1d20")
	rollAdvantage    = dice.MustParse("2d20kh1")
	rollDisadvantage = dice.MustParse("2d20kl1")
)

// Strike is one to-hit/damage pair inside an attack.
type Strike struct {
	Multiattack bool
	// Expression is the attack roll as rolled, e.g. "2d20kh1+5".
	Expression string
	Natural    int
	Total      int
	Hit        bool
	Critical   bool
	Damage     int
}

// AttackResult holds the outcome of one attack action.
type AttackResult struct {
	AttackerID int
	TargetID   int
	Strikes    []Strike
	// Damage is the full damage applied to the target.
	Damage int
	// DamageDealt is min(Damage, target HP before the attack), used for scorekeeping.
	DamageDealt int
}

// attackRoll picks the d20 pool from the attacker's offense slot and the
// target's defense slot.
func attackRoll(offense, defense Advantage) dice.Expression {
	switch {
	case offense == Advantaged && defense != Advantaged,
		offense != Disadvantaged && defense == Disadvantaged:
		return rollAdvantage
	case defense == Advantaged:
		return rollDisadvantage
	default:
		return rollStraight
	}
}

// Attack resolves attacker's attack against target.
//
// Both the attacker's offense slot and the target's defense slot are consumed
// as soon as the roll is chosen. A natural 20 hits regardless of AC and rolls
// damage in critical mode. An attacker with a multiattack strikes once more,
// unadvantaged, when the target was not already dead.
//
// Precondition: attacker and target are distinct registered IDs.
// Postcondition: target has taken Damage via TakeDamage; DamageDealt <= target's pre-attack HP.
func (a *Arena) Attack(attacker, target int) AttackResult {
	a.mustHave(attacker)
	a.mustHave(target)
	if attacker == target {
		panic(fmt.Sprintf("combat: Attack precondition violated: entity %d attacking itself", attacker))
	}
	att := a.entities[attacker]
	tgt := a.entities[target]

	roll := attackRoll(att.Offense, tgt.Defense).WithModifier(att.ToHit)
	att.Offense = AdvantageNone
	tgt.Defense = AdvantageNone

	res := AttackResult{AttackerID: attacker, TargetID: target}
	primary := a.strike(att, tgt, roll, att.Damage, false)
	res.Strikes = append(res.Strikes, primary)
	res.Damage = primary.Damage

	if att.Multiattack != nil && !tgt.Dead {
		extra := a.strike(att, tgt, rollStraight.WithModifier(att.ToHit), *att.Multiattack, true)
		res.Strikes = append(res.Strikes, extra)
		res.Damage += extra.Damage
	}

	res.DamageDealt = min(res.Damage, tgt.CurrentHP)
	a.TakeDamage(target, res.Damage)
	return res
}

func (a *Arena) strike(att, tgt *Entity, roll, damage dice.Expression, multi bool) Strike {
	r := a.roller.MustRoll(roll, dice.ModeNormal)
	s := Strike{
		Multiattack: multi,
		Expression:  roll.Raw,
		Natural:     r.Natural(),
		Total:       r.Total(),
	}

	mode := dice.ModeNormal
	switch {
	case s.Natural == 20:
		s.Hit, s.Critical = true, true
		mode = dice.ModeCritical
	case s.Total >= tgt.AC:
		s.Hit = true
	}

	if s.Hit {
		s.Damage = max(0, a.roller.MustRoll(damage, mode).Total())
		a.links[tgt.ID].lastStruckBy = att.ID
	}
	a.emit(strikeEvent(att, tgt, s))
	return s
}

func strikeEvent(att, tgt *Entity, s Strike) Event {
	ev := Event{Actor: att.ID, Target: tgt.ID, Roll: s.Total, Amount: s.Damage}
	switch {
	case s.Multiattack && s.Critical:
		ev.Kind = EventMultiCritical
		ev.Narrative = fmt.Sprintf("%s's multiattack critically hits %s for %d damage!", att, tgt, s.Damage)
	case s.Multiattack && s.Hit:
		ev.Kind = EventMultiHit
		ev.Narrative = fmt.Sprintf("%s's multiattack strikes %s for %d damage.", att, tgt, s.Damage)
	case s.Multiattack:
		ev.Kind = EventMultiMiss
		ev.Narrative = fmt.Sprintf("%s's multiattack misses (%d).", att, s.Total)
	case s.Critical:
		ev.Kind = EventCritical
		ev.Narrative = fmt.Sprintf("A critical hit! %s takes %d damage from %s's attack.", tgt, s.Damage, att)
	case s.Hit:
		ev.Kind = EventHit
		ev.Narrative = fmt.Sprintf("%s takes %d damage from %s's attack (%d).", tgt, s.Damage, att, s.Total)
	default:
		ev.Kind = EventMiss
		ev.Narrative = fmt.Sprintf("%s's attack misses %s (%d vs AC %d).", att, tgt, s.Total, tgt.AC)
	}
	return ev
}
