// Package dice evaluates dice-pool expressions for the skirmish combat engine.
//
// All randomness in an encounter flows through a single Source so that a
// fixed seed reproduces every roll.
package dice

import "fmt"

// Mode selects how an expression's dice pool is evaluated.
type Mode int

const (
	// ModeNormal rolls the expression as written.
	ModeNormal Mode = iota
	// ModeCritical doubles the number of dice rolled. The flat modifier and
	// any keep count are unchanged.
	ModeCritical
)

// String returns "normal" or "critical".
func (m Mode) String() string {
	if m == ModeCritical {
		return "critical"
	}
	return "normal"
}

// RollResult holds the full audit trail for a single dice roll evaluation.
//
// Postcondition: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string // original expression string, e.g. "2d6+3"
	Mode       Mode   // evaluation mode
	Dice       []int  // kept die results before modifier
	Modifier   int    // flat modifier (may be negative)
}

// Total returns the sum of all kept die results plus the modifier.
//
// Postcondition: return value == sum(r.Dice) + r.Modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// Natural returns the first kept die face, or 0 when no dice were kept.
// For "1d20", "2d20kh1" and "2d20kl1" this is the face that decides a
// natural 20.
func (r RollResult) Natural() int {
	if len(r.Dice) == 0 {
		return 0
	}
	return r.Dice[0]
}

// String returns a human-readable audit string in the format:
//
//	"2d6+3 → [4 5] +3 = 12"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	diceStr := fmt.Sprintf("%v", r.Dice)
	modStr := fmt.Sprintf("%+d", r.Modifier)
	return fmt.Sprintf("%s → %s %s = %d", r.Expression, diceStr, modStr, r.Total())
}

// Source is the randomness provider for dice rolls.
//
// An encounter owns exactly one Source; implementations need not be safe
// for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
