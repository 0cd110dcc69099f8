package ai

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/fuzzy"
)

// ActionFor maps an inference result onto the primitive the ally performs.
//
// Postcondition: AGGRESSIVE → attack, SUPPORTIVE → harry, DEFENSIVE → hinder,
// SELF_PRESERVE → dodge.
func ActionFor(a fuzzy.Action) Action {
	switch a {
	case fuzzy.Aggressive:
		return ActionAttack
	case fuzzy.Supportive:
		return ActionHarry
	case fuzzy.Defensive:
		return ActionHinder
	case fuzzy.SelfPreserve:
		return ActionDodge
	default:
		panic(fmt.Sprintf("ai.ActionFor: unknown fuzzy action %d", a))
	}
}

// Ally decides the ally's action with the inference engine. The knowledge
// tiers are fixed when the Ally is created.
type Ally struct {
	engine    *fuzzy.Engine
	knowledge fuzzy.Knowledge
	logger    *zap.Logger
}

// NewAlly creates an Ally reasoning with engine under knowledge.
//
// Precondition: engine and logger must be non-nil.
func NewAlly(engine *fuzzy.Engine, knowledge fuzzy.Knowledge, logger *zap.Logger) *Ally {
	if engine == nil || logger == nil {
		panic("ai.NewAlly: engine and logger must not be nil")
	}
	return &Ally{engine: engine, knowledge: knowledge, logger: logger}
}

// Plan evaluates frame and returns the mapped action against opponent
// together with the full decision for diagnostics.
//
// Postcondition: Target == opponent for attack/harry/hinder; combat.NoOne for dodge.
func (a *Ally) Plan(frame fuzzy.Frame, opponent int) (PlannedAction, fuzzy.Decision, error) {
	d, err := a.engine.Decide(frame, a.knowledge)
	if err != nil {
		return PlannedAction{}, fuzzy.Decision{}, fmt.Errorf("ally decision: %w", err)
	}
	a.logger.Debug("ally decision",
		zap.Stringer("action", d.Action),
		zap.Float64("player_hp", frame.PlayerHP),
		zap.Float64("ally_hp", frame.AllyHP),
		zap.Float64("damage_dealt", frame.DamageDealt),
		zap.Float64s("strengths", d.Strengths[:]),
	)

	act := ActionFor(d.Action)
	target := opponent
	if act == ActionDodge {
		target = combat.NoOne
	}
	return PlannedAction{Action: act, Target: target}, d, nil
}
