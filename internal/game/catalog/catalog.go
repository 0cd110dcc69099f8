// Package catalog provides the class and monster stat blocks participants
// are built from.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// ErrNotFound is returned, wrapped, for every lookup miss.
var ErrNotFound = errors.New("not found in catalog")

// Class is a player class stat block. HP is derived from HitDie when the
// player is built.
type Class struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Abilities   combat.Abilities `yaml:"abilities"`
	HitDie      int              `yaml:"hit_die"`
	AC          int              `yaml:"ac"`
	DamageDie   int              `yaml:"damage_die"`
	Multiattack string           `yaml:"multiattack"`

	multiattack *dice.Expression
}

// Validate checks the class invariants and parses its multiattack pool.
//
// Precondition: c must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, HitDie >= 2,
// AC >= 1, DamageDie >= 2 and Multiattack is empty or a valid dice expression.
func (c *Class) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("class: id must not be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("class %q: name must not be empty", c.ID)
	}
	if c.HitDie < 2 {
		return fmt.Errorf("class %q: hit_die must be >= 2", c.ID)
	}
	if c.AC < 1 {
		return fmt.Errorf("class %q: ac must be >= 1", c.ID)
	}
	if c.DamageDie < 2 {
		return fmt.Errorf("class %q: damage_die must be >= 2", c.ID)
	}
	if c.Multiattack != "" {
		e, err := dice.Parse(c.Multiattack)
		if err != nil {
			return fmt.Errorf("class %q: multiattack: %w", c.ID, err)
		}
		c.multiattack = &e
	}
	return nil
}

// Monster is a fixed stat block grouped under a difficulty tier. Monsters
// fill both the ally and the opponent seat.
type Monster struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Abilities   combat.Abilities `yaml:"abilities"`
	HP          int              `yaml:"hp"`
	AC          int              `yaml:"ac"`
	ToHit       int              `yaml:"to_hit"`
	Damage      string           `yaml:"damage"`
	Multiattack string           `yaml:"multiattack"`

	// Tier is set from the file the monster was loaded from.
	Tier string `yaml:"-"`

	damage      dice.Expression
	multiattack *dice.Expression
}

// Validate checks the monster invariants and parses its dice pools.
//
// Precondition: m must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, HP >= 1, AC >= 1,
// Damage is a valid dice expression and Multiattack is empty or valid.
func (m *Monster) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("monster: id must not be empty")
	}
	if m.Name == "" {
		return fmt.Errorf("monster %q: name must not be empty", m.ID)
	}
	if m.HP < 1 {
		return fmt.Errorf("monster %q: hp must be >= 1", m.ID)
	}
	if m.AC < 1 {
		return fmt.Errorf("monster %q: ac must be >= 1", m.ID)
	}
	d, err := dice.Parse(m.Damage)
	if err != nil {
		return fmt.Errorf("monster %q: damage: %w", m.ID, err)
	}
	m.damage = d
	if m.Multiattack != "" {
		e, err := dice.Parse(m.Multiattack)
		if err != nil {
			return fmt.Errorf("monster %q: multiattack: %w", m.ID, err)
		}
		m.multiattack = &e
	}
	return nil
}

// NormalizeID maps user input such as "Giant Rat" to the catalog ID "giant_rat".
func NormalizeID(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}
