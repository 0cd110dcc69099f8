package scene

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/fuzzy"
)

// Strategy selects and performs an actor's action on its turn. It is only
// invoked for actors whose status is GOOD.
type Strategy interface {
	Act(ctx context.Context, s *Scene, self *Actor) error
}

// Commander supplies the player's command token for a turn. Implementations
// own any blocking wait for input and must honor ctx.
//
// Postcondition: The returned handler satisfies command.IsActionHandler, or
// the error is non-nil (command.ErrExit to stop).
type Commander interface {
	NextCommand(ctx context.Context, v View) (string, error)
}

// Human asks a Commander for a token and performs it against the opponent.
type Human struct {
	commander Commander
}

// NewHuman wraps c as the player's strategy.
//
// Precondition: c must be non-nil.
func NewHuman(c Commander) *Human {
	if c == nil {
		panic("scene: NewHuman precondition violated: commander must be non-nil")
	}
	return &Human{commander: c}
}

// Act narrates who is nearby, reads one command and performs it.
func (h *Human) Act(ctx context.Context, s *Scene, self *Actor) error {
	s.narrate(nearbyLine(s.Nearby(self)))

	handler, err := h.commander.NextCommand(ctx, s.View(self))
	if err != nil {
		return err
	}
	target := s.opponent.ID
	switch handler {
	case command.HandlerAttack:
		s.perform(self, ai.PlannedAction{Action: ai.ActionAttack, Target: target})
	case command.HandlerHarry:
		s.perform(self, ai.PlannedAction{Action: ai.ActionHarry, Target: target})
	case command.HandlerHinder:
		s.perform(self, ai.PlannedAction{Action: ai.ActionHinder, Target: target})
	case command.HandlerDodge:
		s.perform(self, ai.PlannedAction{Action: ai.ActionDodge, Target: combat.NoOne})
	case command.HandlerWait:
		s.perform(self, ai.PlannedAction{Action: ai.ActionWait, Target: combat.NoOne})
	case command.HandlerDisengage:
		s.disengage(self)
	default:
		return fmt.Errorf("%q is not a turn action: %w", handler, command.ErrUnknown)
	}
	return nil
}

func nearbyLine(names []string) string {
	switch len(names) {
	case 0:
		return "No one is nearby, though the sounds of battle are close."
	case 1:
		return fmt.Sprintf("%s stands nearby, ready to fight.", names[0])
	default:
		return fmt.Sprintf("You are engaged in combat with %s.", strings.Join(names, " and "))
	}
}

// Companion drives the ally seat through the inference engine.
type Companion struct {
	ally *ai.Ally
}

// NewCompanion wraps a as the ally's strategy.
//
// Precondition: a must be non-nil.
func NewCompanion(a *ai.Ally) *Companion {
	if a == nil {
		panic("scene: NewCompanion precondition violated: ally must be non-nil")
	}
	return &Companion{ally: a}
}

// Act builds the frame from current HP and the damage dealt by the player
// and the ally, decides, and performs the mapped action on the opponent.
func (c *Companion) Act(_ context.Context, s *Scene, self *Actor) error {
	frame := fuzzy.Frame{
		PlayerHP:    float64(s.Entity(s.player).CurrentHP),
		AllyHP:      float64(s.Entity(self).CurrentHP),
		DamageDealt: float64(s.player.DamageDealt + self.DamageDealt),
	}
	plan, d, err := c.ally.Plan(frame, s.opponent.ID)
	if err != nil {
		return err
	}
	if s.verbose {
		s.narrate(fmt.Sprintf("%s considers their action carefully.", s.name(self)))
		for _, act := range fuzzy.Actions() {
			s.narrate(fmt.Sprintf("  %-13s %.3f", act, d.Strengths[act]))
		}
		s.logger.Info("ally strengths",
			zap.String("actor", s.name(self)),
			zap.Stringer("choice", d.Action),
			zap.Float64s("strengths", d.Strengths[:]),
		)
	}
	s.perform(self, plan)
	return nil
}

// Monster drives the opponent seat with the targeting heuristic.
type Monster struct {
	opponent *ai.Opponent
}

// NewMonster wraps o as the opponent's strategy.
//
// Precondition: o must be non-nil.
func NewMonster(o *ai.Opponent) *Monster {
	if o == nil {
		panic("scene: NewMonster precondition violated: opponent must be non-nil")
	}
	return &Monster{opponent: o}
}

// Act plans against the current targets. With nobody in reach the monster
// engages first, which may pull everyone NEAR, and plans again.
func (m *Monster) Act(_ context.Context, s *Scene, self *Actor) error {
	targets := s.Targets(self)
	if len(targets) == 0 {
		s.engage(self)
		targets = s.Targets(self)
	}
	ids := make([]int, len(targets))
	for i, t := range targets {
		ids[i] = t.ID
	}
	plan := m.opponent.Plan(ai.BuildWorldState(s.arena, self.ID, ids))
	if plan.Action == ai.ActionWait {
		s.narrate(fmt.Sprintf("%s prowls, finding no one within reach.", s.name(self)))
		return nil
	}
	s.perform(self, plan)
	return nil
}
