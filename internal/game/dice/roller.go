package dice

import (
	"fmt"
	"sort"
)

// Roll evaluates an Expression using the given Source and returns a RollResult.
//
// In ModeCritical the die count is doubled before rolling; the keep count and
// the modifier are not. A die showing 1 is rerolled exactly once when
// expr.RerollOnes is set, and the second face stands.
//
// Precondition: expr must come from Parse or Pool (Count >= 1, Sides >= 2); src must be non-nil.
// Postcondition: len(result.Dice) == count when no keep is set, or the keep count otherwise.
//
//	result.Total() == sum(result.Dice) + result.Modifier.
func Roll(expr Expression, src Source, mode Mode) (RollResult, error) {
	if expr.Count < 1 || expr.Sides < 2 {
		return RollResult{}, fmt.Errorf("dice: cannot roll %q: count=%d sides=%d", expr.Raw, expr.Count, expr.Sides)
	}

	count := expr.Count
	if mode == ModeCritical {
		count *= 2
	}

	rolled := make([]int, count)
	for i := range rolled {
		face := src.Intn(expr.Sides) + 1
		if expr.RerollOnes && face == 1 {
			face = src.Intn(expr.Sides) + 1
		}
		rolled[i] = face
	}

	kept := rolled
	switch {
	case expr.KeepHighest > 0:
		sorted := make([]int, len(rolled))
		copy(sorted, rolled)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		kept = sorted[:expr.KeepHighest]
	case expr.KeepLowest > 0:
		sorted := make([]int, len(rolled))
		copy(sorted, rolled)
		sort.Ints(sorted)
		kept = sorted[:expr.KeepLowest]
	}

	return RollResult{
		Expression: expr.Raw,
		Mode:       mode,
		Dice:       kept,
		Modifier:   expr.Modifier,
	}, nil
}

// RollExpr parses expr and rolls it using src in a single call.
//
// Precondition: expr must be a valid dice expression string; src must be non-nil.
// Postcondition: Returns a RollResult or a parse/roll error.
func RollExpr(expr string, src Source, mode Mode) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src, mode)
}

// MustParse parses expr and panics on error. Useful for package-level constants.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
