package catalog

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// BuildPlayer creates a level-2 player entity from the class.
//
// To-hit is the proficiency bonus plus the better of the STR and DEX
// modifiers, which also becomes the damage modifier. Max HP is the hit die
// plus the CON modifier, plus a second level worth max(0, CON + 1d<hit die>r1).
//
// Precondition: c must have passed Validate; roller must be non-nil.
// Postcondition: Returns an entity at full HP with PolicyDying.
func (c *Class) BuildPlayer(roller *dice.Roller) *combat.Entity {
	best := max(c.Abilities.StrMod(), c.Abilities.DexMod())
	con := c.Abilities.ConMod()

	levelUp := dice.MustParse(fmt.Sprintf("1d%dr1", c.HitDie))
	hp := c.HitDie + con + max(0, con+roller.MustRoll(levelUp, dice.ModeNormal).Total())
	hp = max(1, hp)

	e := &combat.Entity{
		Name:      c.Name,
		Kind:      combat.KindPlayer,
		Abilities: c.Abilities,
		MaxHP:     hp,
		CurrentHP: hp,
		AC:        c.AC,
		ToHit:     combat.ProficiencyBonus + best,
		Damage:    dice.Pool(1, c.DamageDie, best),
		Policy:    combat.PolicyDying,
		HitDie:    c.HitDie,
	}
	if c.multiattack != nil {
		m := *c.multiattack
		e.Multiattack = &m
	}
	return e
}

// Build creates an entity for the monster in the given seat. Opponents die
// at 0 HP; allies fall unconscious and make death saves like the player.
//
// Precondition: m must have passed Validate; kind is KindAlly or KindOpponent.
// Postcondition: Returns an entity at full HP.
func (m *Monster) Build(kind combat.Kind) *combat.Entity {
	if kind == combat.KindPlayer {
		panic("catalog: Monster.Build precondition violated: monsters cannot take the player seat")
	}
	policy := combat.PolicyDying
	if kind == combat.KindOpponent {
		policy = combat.PolicySlain
	}
	e := &combat.Entity{
		Name:      m.Name,
		Kind:      kind,
		Abilities: m.Abilities,
		MaxHP:     m.HP,
		CurrentHP: m.HP,
		AC:        m.AC,
		ToHit:     m.ToHit,
		Damage:    m.damage,
		Policy:    policy,
		Tier:      m.Tier,
	}
	if m.multiattack != nil {
		ma := *m.multiattack
		e.Multiattack = &ma
	}
	return e
}
