package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// Action is a primitive a decision maker can ask the scheduler to perform.
type Action int

const (
	ActionWait Action = iota
	ActionAttack
	ActionHarry
	ActionHinder
	ActionDodge
)

// String returns the command token for the action.
func (a Action) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionHarry:
		return "harry"
	case ActionHinder:
		return "hinder"
	case ActionDodge:
		return "dodge"
	default:
		return "wait"
	}
}

// PlannedAction is one decision: an action and, for attack/harry/hinder, its target.
type PlannedAction struct {
	Action Action
	Target int // combat.NoOne for dodge and wait
}

// DodgeChance is the opponent's per-turn dodge probability, in percent.
const DodgeChance = 10

// Opponent picks the opponent's action: an occasional dodge, otherwise an
// attack on the most attractive target.
type Opponent struct {
	src    dice.Source
	logger *zap.Logger
}

// NewOpponent creates an Opponent drawing its random choices from src.
//
// Precondition: src and logger must be non-nil.
func NewOpponent(src dice.Source, logger *zap.Logger) *Opponent {
	if src == nil || logger == nil {
		panic("ai.NewOpponent: src and logger must not be nil")
	}
	return &Opponent{src: src, logger: logger}
}

// Plan chooses the opponent's action for ws.
//
// With DodgeChance percent the opponent dodges. Otherwise a single target is
// attacked; among several, the only bloodied one is preferred, then the last
// combatant to strike the opponent, then a uniform random pick. No targets
// yields ActionWait.
//
// Postcondition: Target is one of ws.Targets iff Action == ActionAttack.
func (o *Opponent) Plan(ws WorldState) PlannedAction {
	if o.src.Intn(100) < DodgeChance {
		o.logger.Debug("opponent dodges", zap.Int("self", ws.Self.ID))
		return PlannedAction{Action: ActionDodge, Target: combat.NoOne}
	}

	switch len(ws.Targets) {
	case 0:
		return PlannedAction{Action: ActionWait, Target: combat.NoOne}
	case 1:
		return PlannedAction{Action: ActionAttack, Target: ws.Targets[0].ID}
	}

	target, reason := o.pick(ws)
	o.logger.Debug("opponent picks target",
		zap.Int("self", ws.Self.ID),
		zap.Int("target", target),
		zap.String("reason", reason),
	)
	return PlannedAction{Action: ActionAttack, Target: target}
}

func (o *Opponent) pick(ws WorldState) (int, string) {
	bloodied := combat.NoOne
	count := 0
	for _, t := range ws.Targets {
		if t.Bloodied() {
			bloodied = t.ID
			count++
		}
	}
	if count == 1 {
		return bloodied, "bloodied"
	}
	if ws.LastStruckBy != combat.NoOne && ws.Has(ws.LastStruckBy) {
		return ws.LastStruckBy, "last_struck_by"
	}
	return ws.Targets[o.src.Intn(len(ws.Targets))].ID, "random"
}
