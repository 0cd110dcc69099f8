package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Expression represents a parsed dice expression ready to be rolled.
// Precondition: Count >= 1, Sides >= 2 after successful Parse.
type Expression struct {
	Raw         string // original input string
	Count       int    // number of dice
	Sides       int    // faces per die
	Modifier    int    // flat modifier (may be negative)
	RerollOnes  bool   // reroll any die showing 1, exactly once (e.g. 1d8r1)
	KeepHighest int    // if > 0, keep only the N highest dice (e.g. 2d20kh1)
	KeepLowest  int    // if > 0, keep only the N lowest dice (e.g. 2d20kl1)
}

// Parse parses a dice expression string into an Expression.
// Supported forms: "d20", "2d6", "2d6+3", "4d8-2", "1d8r1", "2d20kh1", "2d20kl1+4".
// Suffix order is fixed: reroll, then keep, then modifier.
//
// Precondition: expr must be a non-empty string.
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	if expr == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}

	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))

	dIdx := strings.Index(s, "d")
	if dIdx < 0 {
		return Expression{}, fmt.Errorf("dice: missing 'd' in expression %q", raw)
	}

	// Parse count (the part before 'd'); defaults to 1 when omitted.
	count := 1
	if countStr := s[:dIdx]; countStr != "" {
		var err error
		count, err = strconv.Atoi(countStr)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: %w", raw, err)
		}
		if count <= 0 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", raw)
		}
	}

	rest := s[dIdx+1:]
	sidesStr, rest := leadingDigits(rest)
	sides, err := strconv.Atoi(sidesStr)
	if err != nil {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: %w", raw, err)
	}
	if sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", raw)
	}

	e := Expression{Raw: raw, Count: count, Sides: sides}

	if strings.HasPrefix(rest, "r") {
		var n string
		n, rest = leadingDigits(rest[1:])
		if n != "1" {
			return Expression{}, fmt.Errorf("dice: only r1 rerolls are supported in %q", raw)
		}
		e.RerollOnes = true
	}

	if strings.HasPrefix(rest, "kh") || strings.HasPrefix(rest, "kl") {
		highest := rest[1] == 'h'
		var n string
		n, rest = leadingDigits(rest[2:])
		k, err := strconv.Atoi(n)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid keep value in %q: %w", raw, err)
		}
		if k <= 0 || k >= count {
			return Expression{}, fmt.Errorf("dice: keep value %d must be > 0 and < count %d in %q", k, count, raw)
		}
		if highest {
			e.KeepHighest = k
		} else {
			e.KeepLowest = k
		}
	}

	if rest != "" {
		if rest[0] != '+' && rest[0] != '-' {
			return Expression{}, fmt.Errorf("dice: unexpected %q in %q", rest, raw)
		}
		e.Modifier, err = strconv.Atoi(rest)
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", raw, err)
		}
	}

	return e, nil
}

// leadingDigits splits s into its leading run of ASCII digits and the remainder.
func leadingDigits(s string) (string, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i], s[i:]
}

// Pool builds an Expression directly from its parts without a round trip
// through Parse. Raw is rendered in canonical form.
//
// Precondition: count >= 1; sides >= 2.
func Pool(count, sides, modifier int) Expression {
	if count < 1 || sides < 2 {
		panic(fmt.Sprintf("dice: Pool precondition violated: count=%d sides=%d", count, sides))
	}
	raw := fmt.Sprintf("%dd%d", count, sides)
	if modifier != 0 {
		raw += fmt.Sprintf("%+d", modifier)
	}
	return Expression{Raw: raw, Count: count, Sides: sides, Modifier: modifier}
}

// WithModifier returns a copy of e with its flat modifier replaced.
func (e Expression) WithModifier(modifier int) Expression {
	e.Modifier = modifier
	base := e.Raw
	if i := strings.IndexAny(base[1:], "+-"); i >= 0 {
		base = base[:i+1]
	}
	if modifier != 0 {
		base += fmt.Sprintf("%+d", modifier)
	}
	e.Raw = base
	return e
}
