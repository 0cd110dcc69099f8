package fuzzy

import (
	"fmt"
	"sort"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Action is the ally behaviour a rule recommends.
//
// The declaration order is also the tie-break priority: when two rules fire
// with equal strength the earlier action wins.
type Action int

const (
	Aggressive Action = iota
	Supportive
	Defensive
	SelfPreserve
	actionCount
)

// String returns the upper-case action name used in narration.
func (a Action) String() string {
	switch a {
	case Aggressive:
		return "AGGRESSIVE"
	case Supportive:
		return "SUPPORTIVE"
	case Defensive:
		return "DEFENSIVE"
	case SelfPreserve:
		return "SELF_PRESERVE"
	default:
		return "UNKNOWN"
	}
}

// Actions lists every action in tie-break priority order.
func Actions() []Action {
	return []Action{Aggressive, Supportive, Defensive, SelfPreserve}
}

// Strengths is the firing strength of every rule, indexed by Action.
type Strengths [actionCount]float64

// Frame is one observation of the battlefield, rebuilt each time the ally acts.
type Frame struct {
	PlayerHP    float64
	AllyHP      float64
	DamageDealt float64
}

// RuleEnv is the evaluation environment of a rule program. Rules read the
// fuzzified signals and combine them with And, Or and Not; And and Or are
// bound to the engine's norm pair.
type RuleEnv struct {
	Player Degrees
	Ally   Degrees
	Damage Degrees

	norms Norms
}

// And is the active t-norm.
func (e RuleEnv) And(x, y float64) float64 { return e.norms.T(x, y) }

// Or is the active s-norm.
func (e RuleEnv) Or(x, y float64) float64 { return e.norms.S(x, y) }

// Not is the standard complement 1-x.
func (e RuleEnv) Not(x float64) float64 { return 1 - x }

// Rule binds an action to the expr source of its strength formula.
type Rule struct {
	Action  Action
	Source  string
	program *vm.Program
}

// DefaultRules returns the rule base:
//
//	AGGRESSIVE    (damage not high AND ally not low) OR (player low AND ally low)
//	SUPPORTIVE    player not low AND damage not low
//	DEFENSIVE     player low AND (ally not low OR damage not low)
//	SELF_PRESERVE player not low AND ally low
func DefaultRules() []Rule {
	return []Rule{
		{Action: Aggressive, Source: `Or(And(Not(Damage.High), Not(Ally.Low)), And(Player.Low, Ally.Low))`},
		{Action: Supportive, Source: `And(Not(Player.Low), Not(Damage.Low))`},
		{Action: Defensive, Source: `And(Player.Low, Or(Not(Ally.Low), Not(Damage.Low)))`},
		{Action: SelfPreserve, Source: `And(Not(Player.Low), Ally.Low)`},
	}
}

// Decision is the engine's output for one frame.
type Decision struct {
	Action    Action
	Strengths Strengths
	Player    Degrees
	Ally      Degrees
	Damage    Degrees
}

// Engine fuzzifies frames, fires the rule base and defuzzifies by
// winner-take-all. An Engine holds no per-call state; Decide is a pure
// function of its arguments.
type Engine struct {
	norms  Norms
	tables Tables
	rules  []Rule
}

// NewEngine compiles the default rule base against norms and tables.
//
// Precondition: norms.T and norms.S must be non-nil; every map in tables must
// hold its unknown entry.
// Postcondition: Returns a ready Engine or a compile error.
func NewEngine(norms Norms, tables Tables) (*Engine, error) {
	return NewEngineWithRules(norms, tables, DefaultRules())
}

// NewEngineWithRules compiles rules in place of the default rule base. Every
// action must have exactly one rule.
func NewEngineWithRules(norms Norms, tables Tables, rules []Rule) (*Engine, error) {
	if norms.T == nil || norms.S == nil {
		panic("fuzzy: NewEngine precondition violated: norm pair must define T and S")
	}
	if _, ok := tables.PlayerHealth[UnknownHitDie]; !ok {
		return nil, fmt.Errorf("fuzzy: player health table has no unknown entry")
	}
	if _, ok := tables.AllyHealth[UnknownTier]; !ok {
		return nil, fmt.Errorf("fuzzy: ally health table has no unknown entry")
	}
	if _, ok := tables.DamageDealt[UnknownTier]; !ok {
		return nil, fmt.Errorf("fuzzy: damage dealt table has no unknown entry")
	}

	compiled, err := compileRules(rules)
	if err != nil {
		return nil, err
	}
	return &Engine{norms: norms, tables: tables, rules: compiled}, nil
}

func compileRules(rules []Rule) ([]Rule, error) {
	out := make([]Rule, len(rules))
	seen := make(map[Action]bool, len(rules))
	for i, r := range rules {
		if r.Action < 0 || r.Action >= actionCount {
			return nil, fmt.Errorf("fuzzy: rule %d has invalid action %d", i, r.Action)
		}
		if seen[r.Action] {
			return nil, fmt.Errorf("fuzzy: duplicate rule for %s", r.Action)
		}
		seen[r.Action] = true
		prog, err := expr.Compile(r.Source, expr.Env(RuleEnv{}), expr.AsFloat64())
		if err != nil {
			return nil, fmt.Errorf("fuzzy: compile rule %s: %w", r.Action, err)
		}
		r.program = prog
		out[i] = r
	}
	if len(seen) != int(actionCount) {
		return nil, fmt.Errorf("fuzzy: rule base covers %d of %d actions", len(seen), actionCount)
	}
	// Evaluation order is the tie-break order.
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out, nil
}

// Norms returns the engine's norm pair.
func (e *Engine) Norms() Norms { return e.norms }

// Fuzzify evaluates each signal of f against the tables k selects.
func (e *Engine) Fuzzify(f Frame, k Knowledge) (player, ally, damage Degrees) {
	player = e.tables.player(k.PlayerHitDie).Fuzzify(f.PlayerHP)
	ally = e.tables.ally(k.EnemyTier).Fuzzify(f.AllyHP)
	damage = e.tables.damage(k.EnemyTier).Fuzzify(f.DamageDealt)
	return player, ally, damage
}

// Decide picks the ally's action for f under knowledge k.
//
// Postcondition: Decision.Action is the action with the strictly highest
// strength; ties go to the earliest action in Actions() order.
func (e *Engine) Decide(f Frame, k Knowledge) (Decision, error) {
	player, ally, damage := e.Fuzzify(f, k)
	env := RuleEnv{Player: player, Ally: ally, Damage: damage, norms: e.norms}

	d := Decision{Player: player, Ally: ally, Damage: damage}
	best := -1.0
	for _, r := range e.rules {
		out, err := vm.Run(r.program, env)
		if err != nil {
			return Decision{}, fmt.Errorf("fuzzy: evaluating rule %s: %w", r.Action, err)
		}
		strength, ok := out.(float64)
		if !ok {
			return Decision{}, fmt.Errorf("fuzzy: rule %s returned %T, want float64", r.Action, out)
		}
		d.Strengths[r.Action] = strength
		if strength > best {
			best = strength
			d.Action = r.Action
		}
	}
	return d, nil
}
