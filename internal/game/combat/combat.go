// Package combat implements the combat entity state machine for skirmish:
// attack resolution with advantage, damage and incapacitation, death saves,
// and the harry/hinder relations between participants.
package combat

import (
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// ProficiencyBonus is fixed for every entity; all participants are level 2.
const ProficiencyBonus = 2

// NoOne is the relation value meaning "no counterpart".
const NoOne = -1

// Kind distinguishes the three participant roles.
type Kind int

const (
	KindPlayer Kind = iota
	KindAlly
	KindOpponent
)

// String returns the role name.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindAlly:
		return "ally"
	case KindOpponent:
		return "opponent"
	default:
		return "unknown"
	}
}

func (k Kind) tag() string {
	switch k {
	case KindPlayer:
		return "(PC)"
	case KindAlly:
		return "(SK)"
	case KindOpponent:
		return "(M)"
	default:
		return ""
	}
}

// AbilityMod computes the standard ability modifier using floor division: floor((score - 10) / 2).
// Postcondition: Returns floor((score - 10) / 2).
func AbilityMod(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// Abilities is the six-score ability profile.
type Abilities struct {
	Str int `yaml:"str"`
	Dex int `yaml:"dex"`
	Con int `yaml:"con"`
	Int int `yaml:"int"`
	Wis int `yaml:"wis"`
	Cha int `yaml:"cha"`
}

// StrMod returns the strength modifier.
func (a Abilities) StrMod() int { return AbilityMod(a.Str) }

// DexMod returns the dexterity modifier.
func (a Abilities) DexMod() int { return AbilityMod(a.Dex) }

// ConMod returns the constitution modifier.
func (a Abilities) ConMod() int { return AbilityMod(a.Con) }

// Advantage is the content of one advantage slot.
type Advantage int

const (
	AdvantageNone Advantage = iota
	Advantaged
	Disadvantaged
)

// String returns "none", "advantage" or "disadvantage".
func (a Advantage) String() string {
	switch a {
	case Advantaged:
		return "advantage"
	case Disadvantaged:
		return "disadvantage"
	default:
		return "none"
	}
}

// AdvantageKind names which slot GetAdvantage writes and with what.
type AdvantageKind int

const (
	OffenseAdvantage AdvantageKind = iota
	OffenseDisadvantage
	DefenseAdvantage
	DefenseDisadvantage
)

// DamagePolicy selects how an entity responds to damage that reaches zero HP.
type DamagePolicy int

const (
	// PolicyDying drops the entity unconscious at 0 HP; it then makes death saves.
	PolicyDying DamagePolicy = iota
	// PolicySlain kills the entity outright at 0 HP.
	PolicySlain
)

// Entity is one participant's mutable combat record.
//
// Invariant: 0 <= CurrentHP <= MaxHP.
// Invariant: Dead implies !Unconscious && !Stable; Stable implies Unconscious.
type Entity struct {
	// ID is the entity's index in its Arena, assigned by Arena.Add.
	ID        int
	Name      string
	Kind      Kind
	Abilities Abilities
	MaxHP     int
	CurrentHP int
	AC        int
	ToHit     int
	// Damage is the primary damage pool, modifier included.
	Damage dice.Expression
	// Multiattack is the optional extra strike's damage pool.
	Multiattack *dice.Expression
	Policy      DamagePolicy
	// HitDie is the class hit die for players, 0 otherwise.
	HitDie int
	// Tier is the difficulty tier for catalog monsters, empty otherwise.
	Tier string

	Failures    int
	Successes   int
	Unconscious bool
	Stable      bool
	Dead        bool

	Offense Advantage
	Defense Advantage
}

var titler = cases.Title(language.English)

// String returns the role-tagged display name, e.g. "(M)Giant Rat".
func (e *Entity) String() string {
	return e.Kind.tag() + titler.String(e.Name)
}

// StateLine renders the one-line status shown between turns.
func (e *Entity) StateLine() string {
	return fmt.Sprintf("%-20s <HP:%d/%d | AC: %d | to hit: %d | dmg: %s>",
		e.String(), e.CurrentHP, e.MaxHP, e.AC, e.ToHit, e.Damage.Raw)
}

// Bloodied reports whether the entity is above 0 HP but at or below half its maximum.
//
// Postcondition: Returns 0 < CurrentHP <= MaxHP/2.
func (e *Entity) Bloodied() bool {
	return e.CurrentHP > 0 && e.CurrentHP <= e.MaxHP/2
}

func (e *Entity) validate() error {
	if e.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if e.MaxHP < 1 {
		return fmt.Errorf("%s: max HP must be >= 1, got %d", e.Name, e.MaxHP)
	}
	if e.CurrentHP < 0 || e.CurrentHP > e.MaxHP {
		return fmt.Errorf("%s: current HP %d outside [0, %d]", e.Name, e.CurrentHP, e.MaxHP)
	}
	if e.Damage.Count < 1 || e.Damage.Sides < 2 {
		return fmt.Errorf("%s: damage pool %q is not rollable", e.Name, e.Damage.Raw)
	}
	if e.Multiattack != nil && (e.Multiattack.Count < 1 || e.Multiattack.Sides < 2) {
		return fmt.Errorf("%s: multiattack pool %q is not rollable", e.Name, e.Multiattack.Raw)
	}
	return nil
}
