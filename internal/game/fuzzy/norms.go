package fuzzy

import (
	"fmt"
	"math"
	"strings"
)

// Norms pairs a t-norm (fuzzy AND) with its dual s-norm (fuzzy OR).
type Norms struct {
	Name string
	T    func(x, y float64) float64
	S    func(x, y float64) float64
}

// Lukasiewicz is the bounded pair: AND(x,y)=max(0,x+y−1), OR(x,y)=min(1,x+y).
// It is the default.
var Lukasiewicz = Norms{
	Name: "lukasiewicz",
	T:    func(x, y float64) float64 { return math.Max(0, x+y-1) },
	S:    func(x, y float64) float64 { return math.Min(1, x+y) },
}

// Goguen is the product / probabilistic-sum pair.
var Goguen = Norms{
	Name: "goguen",
	T:    func(x, y float64) float64 { return x * y },
	S:    func(x, y float64) float64 { return x + y - x*y },
}

// Godel is the min/max pair.
var Godel = Norms{
	Name: "godel",
	T:    math.Min,
	S:    math.Max,
}

// Drastic is the drastic product / drastic sum pair.
var Drastic = Norms{
	Name: "drastic",
	T: func(x, y float64) float64 {
		switch {
		case x == 1:
			return y
		case y == 1:
			return x
		default:
			return 0
		}
	},
	S: func(x, y float64) float64 {
		switch {
		case x == 0:
			return y
		case y == 0:
			return x
		default:
			return 1
		}
	},
}

// AllNorms lists every supported pair.
func AllNorms() []Norms {
	return []Norms{Lukasiewicz, Goguen, Godel, Drastic}
}

// NormsByName returns the pair registered under name (case-insensitive).
// An empty name selects Lukasiewicz.
//
// Postcondition: Returns an error naming the valid choices when name is unknown.
func NormsByName(name string) (Norms, error) {
	if name == "" {
		return Lukasiewicz, nil
	}
	var names []string
	for _, n := range AllNorms() {
		if strings.EqualFold(n.Name, name) {
			return n, nil
		}
		names = append(names, n.Name)
	}
	return Norms{}, fmt.Errorf("fuzzy: unknown norm pair %q, must be one of [%s]", name, strings.Join(names, ", "))
}
