package scene

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// ErrNoCommander is returned when the player seat has no command source.
var ErrNoCommander = errors.New("scene: no commander for the player seat")

// DefaultMaxTurns bounds an encounter that can no longer end on its own, such
// as a stable player left FAR after the ally has fallen.
const DefaultMaxTurns = 600

// tiebreakRange is the span of the per-actor initiative coin flip key.
const tiebreakRange = 1 << 20

// Narrator receives one line of narration per resolved event.
type Narrator interface {
	Narrate(line string)
}

// NarratorFunc adapts a function to Narrator.
type NarratorFunc func(line string)

// Narrate calls f(line).
func (f NarratorFunc) Narrate(line string) { f(line) }

// TurnHook runs after every completed turn. A non-nil error stops the encounter.
type TurnHook func(ctx context.Context, s *Scene) error

// Participant seats one entity with its decision maker.
type Participant struct {
	Entity   *combat.Entity
	Strategy Strategy
}

// Option configures a Scene.
type Option func(*Scene)

// WithNarrator sends narration to n.
func WithNarrator(n Narrator) Option { return func(s *Scene) { s.narrator = n } }

// WithTurnHook registers a hook run after every turn.
func WithTurnHook(h TurnHook) Option { return func(s *Scene) { s.hook = h } }

// WithMaxTurns caps the number of turns; n <= 0 removes the cap.
func WithMaxTurns(n int) Option { return func(s *Scene) { s.maxTurns = n } }

// WithVerbose enables the ally's diagnostic narration.
func WithVerbose(v bool) Option { return func(s *Scene) { s.verbose = v } }

// WithID overrides the generated encounter ID.
func WithID(id uuid.UUID) Option { return func(s *Scene) { s.id = id } }

// Scene is one encounter between a player, an ally and an opponent.
// It is driven from a single goroutine.
type Scene struct {
	id       uuid.UUID
	arena    *combat.Arena
	roller   *dice.Roller
	logger   *zap.Logger
	narrator Narrator
	hook     TurnHook
	maxTurns int
	verbose  bool

	// order is the fixed initiative order.
	order    []*Actor
	player   *Actor
	ally     *Actor
	opponent *Actor

	cursor    int
	turns     int
	stalemate bool
}

// New seats the three participants, rolls initiative and fixes the turn order.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns ErrNoCommander when the player has no strategy, or an
// error when an entity is invalid or sits in the wrong seat.
func New(roller *dice.Roller, logger *zap.Logger, player, ally, opponent Participant, opts ...Option) (*Scene, error) {
	if roller == nil || logger == nil {
		panic("scene: New precondition violated: roller and logger must be non-nil")
	}
	if player.Strategy == nil {
		return nil, ErrNoCommander
	}

	s := &Scene{
		id:       uuid.New(),
		narrator: NarratorFunc(func(string) {}),
		maxTurns: DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.roller = roller.With(encounterField(s.id))
	s.logger = logger.With(encounterField(s.id))
	s.arena = combat.NewArena(s.roller, s.onEvent)

	seats := []struct {
		p    Participant
		kind combat.Kind
		slot **Actor
	}{
		{player, combat.KindPlayer, &s.player},
		{ally, combat.KindAlly, &s.ally},
		{opponent, combat.KindOpponent, &s.opponent},
	}
	for _, seat := range seats {
		if seat.p.Entity == nil {
			return nil, fmt.Errorf("scene: %s seat is empty", seat.kind)
		}
		if seat.p.Entity.Kind != seat.kind {
			return nil, fmt.Errorf("scene: %s seated as %s", seat.p.Entity.Kind, seat.kind)
		}
		if seat.p.Strategy == nil {
			return nil, fmt.Errorf("scene: %s seat has no strategy", seat.kind)
		}
		id, err := s.arena.Add(seat.p.Entity)
		if err != nil {
			return nil, fmt.Errorf("scene: seating %s: %w", seat.kind, err)
		}
		a := &Actor{
			ID:       id,
			Kind:     seat.kind,
			Position: Near,
			strategy: seat.p.Strategy,
			dex:      seat.p.Entity.Abilities.Dex,
		}
		*seat.slot = a
		s.order = append(s.order, a)
	}

	for _, a := range s.order {
		a.Initiative = s.arena.RollInitiative(a.ID)
		a.tiebreak = s.roller.Intn(tiebreakRange)
	}
	slices.SortStableFunc(s.order, func(a, b *Actor) int {
		switch {
		case initiativeBefore(a, b):
			return -1
		case initiativeBefore(b, a):
			return 1
		default:
			return 0
		}
	})
	s.resync()

	s.logger.Info("encounter created",
		zap.String("player", s.name(s.player)),
		zap.String("ally", s.name(s.ally)),
		zap.String("opponent", s.name(s.opponent)),
		zap.Ints("initiative", s.initiatives()),
	)
	return s, nil
}

func encounterField(id uuid.UUID) zap.Field {
	return zap.String("encounter_id", id.String())
}

// ID returns the encounter's identifier.
func (s *Scene) ID() uuid.UUID { return s.id }

// Arena exposes the entity state machine for rendering and tests.
func (s *Scene) Arena() *combat.Arena { return s.arena }

// Order returns the actors in initiative order.
func (s *Scene) Order() []*Actor { return slices.Clone(s.order) }

// Player returns the player's actor.
func (s *Scene) Player() *Actor { return s.player }

// Ally returns the ally's actor.
func (s *Scene) Ally() *Actor { return s.ally }

// Opponent returns the opponent's actor.
func (s *Scene) Opponent() *Actor { return s.opponent }

// Turns returns the number of completed turns.
func (s *Scene) Turns() int { return s.turns }

// Over reports whether the player or the opponent is dead, or the turn cap was hit.
func (s *Scene) Over() bool {
	return s.player.Status == StatusDead || s.opponent.Status == StatusDead || s.stalemate
}

// Run steps the encounter until it is over.
//
// Postcondition: Returns the final Result. A non-nil error is a context
// cancellation or an error from a decision maker or the turn hook, such as
// command.ErrExit; the Result then reflects the state reached so far.
func (s *Scene) Run(ctx context.Context) (Result, error) {
	for !s.Over() {
		if err := ctx.Err(); err != nil {
			return s.Result(), err
		}
		if s.maxTurns > 0 && s.turns >= s.maxTurns {
			s.stalemate = true
			s.logger.Warn("turn limit reached", zap.Int("turns", s.turns))
			s.narrate("The combatants circle each other warily, and the fight peters out.")
			break
		}
		if err := s.Step(ctx); err != nil {
			return s.Result(), err
		}
	}
	res := s.Result()
	s.logger.Info("encounter finished",
		zap.Stringer("outcome", res.Outcome),
		zap.Int("turns", res.Turns),
	)
	return res, nil
}

// Step plays the next actor's turn: turn start, the eligibility gate, the
// action, then the status resync.
//
// Precondition: Over() is false.
func (s *Scene) Step(ctx context.Context) error {
	if s.Over() {
		panic("scene: Step precondition violated: encounter is over")
	}
	a := s.order[s.cursor]
	s.arena.TurnStart(a.ID)

	switch a.Status {
	case StatusGood:
		if err := a.strategy.Act(ctx, s, a); err != nil {
			return fmt.Errorf("%s turn: %w", s.name(a), err)
		}
	case StatusUnconscious:
		a.Downed = true
		s.narrate(fmt.Sprintf("%s lies unconscious on the ground, fighting for their life.", s.name(a)))
		s.arena.DeathSaveRoll(a.ID)
	case StatusDead:
		a.Killed = true
		s.narrate(fmt.Sprintf("%s's corpse is motionless.", s.name(a)))
	}

	s.resync()
	s.turns++
	s.cursor = (s.cursor + 1) % len(s.order)

	if s.hook != nil {
		if err := s.hook(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// Targets returns the actors a can act against: every other living actor
// that is NEAR, and only while a itself is NEAR.
func (s *Scene) Targets(a *Actor) []*Actor {
	if a.Position != Near {
		return nil
	}
	var out []*Actor
	for _, o := range s.order {
		if o == a || o.Status == StatusDead || o.Position != Near {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Nearby returns the display names of a's current targets.
func (s *Scene) Nearby(a *Actor) []string {
	targets := s.Targets(a)
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = s.name(t)
	}
	return names
}

// Entity returns the entity behind a.
func (s *Scene) Entity(a *Actor) *combat.Entity { return s.arena.Entity(a.ID) }

// StateLines renders one state line per actor in initiative order.
func (s *Scene) StateLines() []string {
	lines := make([]string, len(s.order))
	for i, a := range s.order {
		lines[i] = s.Entity(a).StateLine()
	}
	return lines
}

// engage moves a NEAR. When every other actor was FAR, all of them close in.
func (s *Scene) engage(a *Actor) {
	if a.Position == Far {
		a.Position = Near
		s.narrate(fmt.Sprintf("%s closes the distance.", s.name(a)))
	}
	for _, o := range s.order {
		if o != a && o.Position != Far {
			return
		}
	}
	gathered := false
	for _, o := range s.order {
		if o.Position == Far {
			o.Position = Near
			gathered = true
		}
	}
	if gathered {
		s.narrate("Everyone is drawn back into the melee.")
		s.logger.Debug("gang up", zap.String("actor", s.name(a)))
	}
}

// disengage moves a FAR.
func (s *Scene) disengage(a *Actor) {
	a.Position = Far
	s.narrate(fmt.Sprintf("%s disengages, falling back out of reach.", s.name(a)))
}

// perform executes a planned primitive for a.
func (s *Scene) perform(a *Actor, plan ai.PlannedAction) {
	s.logger.Debug("action",
		zap.String("actor", s.name(a)),
		zap.Stringer("action", plan.Action),
		zap.Int("target", plan.Target),
	)
	switch plan.Action {
	case ai.ActionAttack:
		s.engage(a)
		res := s.arena.Attack(a.ID, plan.Target)
		a.DamageDealt += res.DamageDealt
	case ai.ActionHarry:
		s.engage(a)
		s.arena.Harry(a.ID, plan.Target)
	case ai.ActionHinder:
		s.engage(a)
		s.arena.Hinder(a.ID, plan.Target)
	case ai.ActionDodge:
		s.arena.Dodge(a.ID)
	case ai.ActionWait:
		s.narrate(fmt.Sprintf("%s patiently bides their time.", s.name(a)))
	default:
		panic(fmt.Sprintf("scene: perform precondition violated: unknown action %d", plan.Action))
	}
}

// resync copies every entity's flags into its actor's status.
func (s *Scene) resync() {
	for _, a := range s.order {
		e := s.Entity(a)
		switch {
		case e.Dead:
			a.Status = StatusDead
			a.Killed = true
		case e.Unconscious:
			a.Status = StatusUnconscious
			a.Downed = true
		default:
			a.Status = StatusGood
		}
	}
}

func (s *Scene) onEvent(ev combat.Event) {
	fields := []zap.Field{
		zap.Stringer("event", ev.Kind),
		zap.String("actor", s.arena.Entity(ev.Actor).String()),
		zap.Int("roll", ev.Roll),
		zap.Int("amount", ev.Amount),
	}
	if ev.Target != combat.NoOne {
		fields = append(fields, zap.String("target", s.arena.Entity(ev.Target).String()))
	}
	s.logger.Debug("combat event", fields...)
	if ev.Narrative != "" {
		s.narrate(ev.Narrative)
	}
}

func (s *Scene) narrate(line string) { s.narrator.Narrate(line) }

func (s *Scene) name(a *Actor) string { return s.arena.Entity(a.ID).String() }

func (s *Scene) initiatives() []int {
	out := make([]int, len(s.order))
	for i, a := range s.order {
		out[i] = a.Initiative
	}
	return out
}
