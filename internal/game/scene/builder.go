package scene

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/catalog"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/fuzzy"
)

// Setup selects the participants and the ally's reasoning. Empty selectors
// are drawn at random; a monster type takes precedence over its tier.
type Setup struct {
	PlayerClass  string
	AllyType     string
	AllyTier     string
	OpponentType string
	OpponentTier string
	Knowledge    fuzzy.KnowledgeLevel
	// Norms defaults to Łukasiewicz when zero.
	Norms fuzzy.Norms
}

// Build draws the participants from cat and seats them. Random picks and HP
// rolls happen in seat order (player, ally, opponent) before initiative, so a
// seeded roller reproduces the whole encounter. Every record logged for the
// encounter, including those of the ally and the opponent, carries its ID.
//
// Precondition: cat, roller and logger must be non-nil.
// Postcondition: Returns ErrNoCommander when commander is nil, or a wrapped
// catalog.ErrNotFound when a selector names nothing.
func Build(cat *catalog.Catalog, roller *dice.Roller, logger *zap.Logger, setup Setup, commander Commander, opts ...Option) (*Scene, error) {
	if cat == nil || roller == nil || logger == nil {
		panic("scene: Build precondition violated: catalog, roller and logger must be non-nil")
	}
	if commander == nil {
		return nil, ErrNoCommander
	}

	id := encounterID(opts)
	log := logger.With(encounterField(id))
	rolls := roller.With(encounterField(id))

	class, err := pickClass(cat, rolls, setup.PlayerClass)
	if err != nil {
		return nil, fmt.Errorf("player: %w", err)
	}
	player := class.BuildPlayer(rolls)

	allyStats, err := pickMonster(cat, rolls, setup.AllyType, setup.AllyTier)
	if err != nil {
		return nil, fmt.Errorf("ally: %w", err)
	}
	oppStats, err := pickMonster(cat, rolls, setup.OpponentType, setup.OpponentTier)
	if err != nil {
		return nil, fmt.Errorf("opponent: %w", err)
	}

	norms := setup.Norms
	if norms.T == nil || norms.S == nil {
		norms = fuzzy.Lukasiewicz
	}
	engine, err := fuzzy.NewEngine(norms, fuzzy.DefaultTables())
	if err != nil {
		return nil, fmt.Errorf("inference engine: %w", err)
	}
	knowledge := setup.Knowledge.Resolve(class.HitDie, oppStats.Tier)
	log.Debug("ally knowledge",
		zap.Stringer("level", setup.Knowledge),
		zap.Int("player_hit_die", knowledge.PlayerHitDie),
		zap.String("enemy_tier", knowledge.EnemyTier),
		zap.String("norms", norms.Name),
	)

	return New(roller, logger,
		Participant{Entity: player, Strategy: NewHuman(commander)},
		Participant{Entity: allyStats.Build(combat.KindAlly), Strategy: NewCompanion(ai.NewAlly(engine, knowledge, log))},
		Participant{Entity: oppStats.Build(combat.KindOpponent), Strategy: NewMonster(ai.NewOpponent(rolls, log))},
		append(slices.Clip(opts), WithID(id))...,
	)
}

// encounterID returns the ID set by a WithID option, or a fresh one.
func encounterID(opts []Option) uuid.UUID {
	var s Scene
	for _, opt := range opts {
		opt(&s)
	}
	if s.id == uuid.Nil {
		return uuid.New()
	}
	return s.id
}

func pickClass(cat *catalog.Catalog, src dice.Source, id string) (*catalog.Class, error) {
	if id != "" {
		return cat.Class(id)
	}
	return cat.RandomClass(src), nil
}

func pickMonster(cat *catalog.Catalog, src dice.Source, id, tier string) (*catalog.Monster, error) {
	if id != "" {
		return cat.Monster(id)
	}
	return cat.RandomMonster(src, tier)
}
