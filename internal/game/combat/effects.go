package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// GetAdvantage writes kind into the matching slot of the entity with the
// given ID. The other slot is untouched.
func (a *Arena) GetAdvantage(id int, kind AdvantageKind) {
	a.mustHave(id)
	e := a.entities[id]
	switch kind {
	case OffenseAdvantage:
		e.Offense = Advantaged
	case OffenseDisadvantage:
		e.Offense = Disadvantaged
	case DefenseAdvantage:
		e.Defense = Advantaged
	case DefenseDisadvantage:
		e.Defense = Disadvantaged
	default:
		panic(fmt.Sprintf("combat: GetAdvantage precondition violated: unknown kind %d", kind))
	}
}

// Harry disrupts target's attacks: target gains offense disadvantage and the
// harrying pair source -> target is recorded.
//
// Precondition: source and target are distinct registered IDs.
// Postcondition: Harrying(source) == target && HarriedBy(target) == source.
func (a *Arena) Harry(source, target int) {
	a.mustPair("Harry", source, target)
	a.GetAdvantage(target, OffenseDisadvantage)
	a.unlinkHarry(source, target)
	a.links[source].harrying = target
	a.links[target].harriedBy = source
	a.emit(Event{Kind: EventHarry, Actor: source, Target: target,
		Narrative: fmt.Sprintf("%s harries %s, throwing off their attacks.", a.entities[source], a.entities[target])})
}

// Hinder opens target's guard: target gains defense disadvantage and the
// hindering pair source -> target is recorded.
//
// Precondition: source and target are distinct registered IDs.
// Postcondition: Hindering(source) == target && HinderedBy(target) == source.
func (a *Arena) Hinder(source, target int) {
	a.mustPair("Hinder", source, target)
	a.GetAdvantage(target, DefenseDisadvantage)
	a.unlinkHinder(source, target)
	a.links[source].hindering = target
	a.links[target].hinderedBy = source
	a.emit(Event{Kind: EventHinder, Actor: source, Target: target,
		Narrative: fmt.Sprintf("%s hinders %s, leaving them open to attack.", a.entities[source], a.entities[target])})
}

// Dodge grants the entity defense advantage until its next turn.
func (a *Arena) Dodge(id int) {
	a.GetAdvantage(id, DefenseAdvantage)
	a.emit(Event{Kind: EventDodge, Actor: id, Target: NoOne,
		Narrative: fmt.Sprintf("%s takes evasive action, becoming more difficult to hit.", a.entities[id])})
}

// TurnStart expires effects that last until the entity's own next turn. A
// harry whose target still points back at this entity ends, clearing the
// target's offense slot, and the entity's defense slot is cleared.
func (a *Arena) TurnStart(id int) {
	a.mustHave(id)
	if h := a.links[id].harrying; h != NoOne && a.links[h].harriedBy == id {
		a.entities[h].Offense = AdvantageNone
		a.links[id].harrying = NoOne
		a.links[h].harriedBy = NoOne
	}
	a.entities[id].Defense = AdvantageNone
}

// RollInitiative returns d20 + DEX modifier for the entity.
func (a *Arena) RollInitiative(id int) int {
	a.mustHave(id)
	e := a.entities[id]
	return a.roller.MustRoll(rollStraight.WithModifier(e.Abilities.DexMod()), dice.ModeNormal).Total()
}

// unlinkHarry drops any harry pair that source or target already belongs to
// so both directions stay consistent after the new pair is written.
func (a *Arena) unlinkHarry(source, target int) {
	if old := a.links[source].harrying; old != NoOne && a.links[old].harriedBy == source {
		a.links[old].harriedBy = NoOne
	}
	if old := a.links[target].harriedBy; old != NoOne && a.links[old].harrying == target {
		a.links[old].harrying = NoOne
	}
}

func (a *Arena) unlinkHinder(source, target int) {
	if old := a.links[source].hindering; old != NoOne && a.links[old].hinderedBy == source {
		a.links[old].hinderedBy = NoOne
	}
	if old := a.links[target].hinderedBy; old != NoOne && a.links[old].hindering == target {
		a.links[old].hindering = NoOne
	}
}

func (a *Arena) mustPair(op string, source, target int) {
	a.mustHave(source)
	a.mustHave(target)
	if source == target {
		panic(fmt.Sprintf("combat: %s precondition violated: entity %d targeting itself", op, source))
	}
}
