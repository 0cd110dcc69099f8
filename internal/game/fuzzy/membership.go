// Package fuzzy implements the membership functions, norm pairs and rule base
// the ally uses to turn battlefield signals into a behaviour.
package fuzzy

import "fmt"

// Trapezoid is a piecewise-linear membership function with corners A ≤ B ≤ C ≤ D.
// A triangle is the special case B == C.
type Trapezoid struct {
	A, B, C, D float64
}

// Triangle returns the trapezoid with a single peak at b.
//
// Precondition: a <= b <= c.
func Triangle(a, b, c float64) Trapezoid {
	return Trap(a, b, b, c)
}

// Trap returns the trapezoid (a, b, c, d).
//
// Precondition: a <= b <= c <= d.
func Trap(a, b, c, d float64) Trapezoid {
	if a > b || b > c || c > d {
		panic(fmt.Sprintf("fuzzy: Trap precondition violated: corners (%g, %g, %g, %g) are not ordered", a, b, c, d))
	}
	return Trapezoid{A: a, B: b, C: c, D: d}
}

// Degree returns the membership of v in [0, 1].
//
// Zero-width ramps are steps: when C == D the value D itself is still on the
// plateau, and when A == B the value A is already on it.
//
// Postcondition: 0 <= result <= 1.
func (t Trapezoid) Degree(v float64) float64 {
	switch {
	case v > t.D:
		return 0
	case v == t.D && t.C == t.D:
		return 1
	case v > t.C:
		return (t.D - v) / (t.D - t.C)
	case v >= t.B:
		return 1
	case v > t.A:
		return (v - t.A) / (t.B - t.A)
	default:
		return 0
	}
}

// Set is the low/medium/high partition of one signal.
type Set struct {
	Low    Trapezoid
	Medium Trapezoid
	High   Trapezoid
}

// Degrees holds one signal's membership in each category.
type Degrees struct {
	Low    float64
	Medium float64
	High   float64
}

// Fuzzify evaluates v against every category of s.
func (s Set) Fuzzify(v float64) Degrees {
	return Degrees{
		Low:    s.Low.Degree(v),
		Medium: s.Medium.Degree(v),
		High:   s.High.Degree(v),
	}
}
