// Package main runs one skirmish encounter in the terminal: a player, a
// fuzzy-logic ally and a monster fight until the player or the monster dies.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/frontend/console"
	"github.com/cory-johannsen/skirmish/internal/game/catalog"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/fuzzy"
	"github.com/cory-johannsen/skirmish/internal/game/scene"
	"github.com/cory-johannsen/skirmish/internal/observability"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	playerClass := flag.String("p", "", "player class")
	allyType := flag.String("s", "", "sidekick monster type")
	allyTier := flag.String("S", "", "sidekick difficulty tier, e.g. 1/4")
	oppType := flag.String("m", "", "opponent monster type")
	oppTier := flag.String("M", "", "opponent difficulty tier, e.g. 1/2")
	knowledge := flag.String("k", "", "sidekick knowledge: low, player_only, enemy_only, high (or 0-3)")
	seed := flag.Uint64("seed", 0, "random seed; 0 draws a fresh one")
	verbose := flag.Bool("v", false, "show the sidekick's reasoning")
	script := flag.String("script", "", "Lua autopilot script for the player seat")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	// Flags override file and environment values only when given.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Encounter.PlayerClass = *playerClass
		case "s":
			cfg.Encounter.AllyType = *allyType
		case "S":
			cfg.Encounter.AllyTier = *allyTier
		case "m":
			cfg.Encounter.OpponentType = *oppType
		case "M":
			cfg.Encounter.OpponentTier = *oppTier
		case "k":
			cfg.Encounter.Knowledge = *knowledge
		case "seed":
			cfg.Encounter.Seed = *seed
		case "v":
			cfg.Encounter.Verbose = *verbose
		case "script":
			cfg.Autopilot.Script = *script
		}
	})

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("skirmish failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	start := time.Now()

	seed := cfg.Encounter.Seed
	if seed == 0 {
		seed = dice.NewSeed()
	}
	id := uuid.New()
	encLogger := logger.With(zap.String("encounter_id", id.String()))
	encLogger.Info("encounter seed", zap.Uint64("seed", seed))
	roller := dice.NewLoggedRoller(dice.NewSeededSource(seed), logger)

	cat, err := loadCatalog(cfg.Content)
	if err != nil {
		return err
	}

	term := console.New(os.Stdin, os.Stdout, command.DefaultRegistry(),
		console.WithColor(cfg.Encounter.Color),
		console.WithPause(cfg.Encounter.Pause),
		console.WithLogger(encLogger),
	)
	defer term.Close()

	var commander scene.Commander = term
	if cfg.Autopilot.Script != "" {
		ap, err := scripting.LoadFile(cfg.Autopilot.Script, cfg.Autopilot.InstructionLimit,
			roller.With(zap.String("encounter_id", id.String())), encLogger)
		if err != nil {
			return fmt.Errorf("loading autopilot: %w", err)
		}
		defer ap.Close()
		commander = ap
	}

	level, err := knowledgeLevel(ctx, cfg, term, encLogger)
	if err != nil {
		return exitOK(err)
	}
	norms, err := fuzzy.NormsByName(cfg.Encounter.Norms)
	if err != nil {
		return err
	}

	s, err := scene.Build(cat, roller, logger, scene.Setup{
		PlayerClass:  cfg.Encounter.PlayerClass,
		AllyType:     cfg.Encounter.AllyType,
		AllyTier:     cfg.Encounter.AllyTier,
		OpponentType: cfg.Encounter.OpponentType,
		OpponentTier: cfg.Encounter.OpponentTier,
		Knowledge:    level,
		Norms:        norms,
	}, commander,
		scene.WithNarrator(term),
		scene.WithTurnHook(term.TurnHook),
		scene.WithMaxTurns(cfg.Encounter.MaxTurns),
		scene.WithVerbose(cfg.Encounter.Verbose),
		scene.WithID(id),
	)
	if err != nil {
		return fmt.Errorf("building encounter: %w", err)
	}
	if cfg.Encounter.Seed == 0 {
		term.Narrate(fmt.Sprintf("(replay this encounter with -seed %d)", seed))
	}

	if err := term.Intro(ctx, s); err != nil {
		return exitOK(err)
	}
	res, err := s.Run(ctx)
	term.Summary(res)
	encLogger.Info("skirmish complete",
		zap.Stringer("outcome", res.Outcome),
		zap.Int("turns", res.Turns),
		zap.Duration("elapsed", time.Since(start)),
	)
	return exitOK(err)
}

func loadCatalog(cfg config.ContentConfig) (*catalog.Catalog, error) {
	if cfg.Dir == "" {
		cat, err := catalog.Default()
		if err != nil {
			return nil, fmt.Errorf("loading embedded catalog: %w", err)
		}
		return cat, nil
	}
	cat, err := catalog.LoadDir(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("loading catalog from %q: %w", cfg.Dir, err)
	}
	return cat, nil
}

// knowledgeLevel resolves encounter.knowledge, asking at the console when it
// is unset and a human is playing.
func knowledgeLevel(ctx context.Context, cfg config.Config, term *console.Console, logger *zap.Logger) (fuzzy.KnowledgeLevel, error) {
	if cfg.Encounter.Knowledge == "" && cfg.Autopilot.Script == "" {
		return term.AskKnowledge(ctx)
	}
	level, ok := cfg.Encounter.KnowledgeLevel()
	if !ok && cfg.Encounter.Knowledge != "" {
		logger.Warn("unrecognized knowledge level, using low", zap.String("knowledge", cfg.Encounter.Knowledge))
	}
	return level, nil
}

// exitOK treats a requested exit or an interrupt as a clean stop.
func exitOK(err error) error {
	if errors.Is(err, command.ErrExit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
