package scene

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/ai"
	"github.com/cory-johannsen/skirmish/internal/game/catalog"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/command"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/fuzzy"
)

// scripted serves vals in order (reduced mod n), then defers to a seeded source.
type scripted struct {
	vals     []int
	i        int
	fallback dice.Source
}

func (s *scripted) Intn(n int) int {
	if s.i < len(s.vals) {
		v := s.vals[s.i] % n
		s.i++
		return v
	}
	return s.fallback.Intn(n)
}

func roller(t *testing.T, vals ...int) *dice.Roller {
	return dice.NewLoggedRoller(&scripted{vals: vals, fallback: dice.NewSeededSource(7)}, zaptest.NewLogger(t))
}

// tokens replays commands, then exits.
type tokens struct {
	queue []string
	views []View
}

func (c *tokens) NextCommand(_ context.Context, v View) (string, error) {
	c.views = append(c.views, v)
	if len(c.queue) == 0 {
		return "", command.ErrExit
	}
	tok := c.queue[0]
	c.queue = c.queue[1:]
	return tok, nil
}

// always returns the same command forever.
type always string

func (a always) NextCommand(context.Context, View) (string, error) { return string(a), nil }

// idle records that it was asked to act and does nothing.
type idle struct{ calls int }

func (i *idle) Act(context.Context, *Scene, *Actor) error {
	i.calls++
	return nil
}

func entity(name string, kind combat.Kind, dex int) *combat.Entity {
	return &combat.Entity{
		Name:      name,
		Kind:      kind,
		Abilities: combat.Abilities{Str: 10, Dex: dex, Con: 10, Int: 10, Wis: 10, Cha: 10},
		MaxHP:     12,
		CurrentHP: 12,
		AC:        12,
		ToHit:     3,
		Damage:    dice.Pool(1, 6, 1),
		Policy:    combat.PolicyDying,
	}
}

type lines []string

func (l *lines) Narrate(line string) { *l = append(*l, line) }

// newScene seats idle strategies; initiative faces 15, 10 and 5 put the
// player first, then the ally, then the opponent.
func newScene(t *testing.T, opts ...Option) (*Scene, []*idle) {
	t.Helper()
	return newSceneRolling(t, nil, opts...)
}

// newSceneRolling is newScene with extra scripted values after initiative.
func newSceneRolling(t *testing.T, extra []int, opts ...Option) (*Scene, []*idle) {
	t.Helper()
	strategies := []*idle{{}, {}, {}}
	opp := entity("wolf", combat.KindOpponent, 10)
	opp.Policy = combat.PolicySlain
	s, err := New(roller(t, append([]int{14, 0, 9, 0, 4, 0}, extra...)...), zaptest.NewLogger(t),
		Participant{Entity: entity("fighter", combat.KindPlayer, 10), Strategy: strategies[0]},
		Participant{Entity: entity("badger", combat.KindAlly, 10), Strategy: strategies[1]},
		Participant{Entity: opp, Strategy: strategies[2]},
		opts...,
	)
	require.NoError(t, err)
	return s, strategies
}

func TestNew_SortsByInitiativeDescending(t *testing.T) {
	s, err := New(roller(t, 9, 0, 14, 0, 4, 0), zaptest.NewLogger(t),
		Participant{Entity: entity("fighter", combat.KindPlayer, 14), Strategy: &idle{}},
		Participant{Entity: entity("badger", combat.KindAlly, 12), Strategy: &idle{}},
		Participant{Entity: entity("wolf", combat.KindOpponent, 10), Strategy: &idle{}},
	)
	require.NoError(t, err)

	order := s.Order()
	require.Len(t, order, 3)
	assert.Equal(t, []combat.Kind{combat.KindAlly, combat.KindPlayer, combat.KindOpponent},
		[]combat.Kind{order[0].Kind, order[1].Kind, order[2].Kind})
	assert.Equal(t, []int{16, 12, 5}, []int{order[0].Initiative, order[1].Initiative, order[2].Initiative})
}

func TestNew_DexterityBreaksInitiativeTies(t *testing.T) {
	// fighter 10+2 and badger 11+1 both total 12; the fighter's 14 DEX wins.
	s, err := New(roller(t, 9, 0, 10, 5, 4, 0), zaptest.NewLogger(t),
		Participant{Entity: entity("fighter", combat.KindPlayer, 14), Strategy: &idle{}},
		Participant{Entity: entity("badger", combat.KindAlly, 12), Strategy: &idle{}},
		Participant{Entity: entity("wolf", combat.KindOpponent, 10), Strategy: &idle{}},
	)
	require.NoError(t, err)
	order := s.Order()
	assert.Equal(t, combat.KindPlayer, order[0].Kind)
	assert.Equal(t, combat.KindAlly, order[1].Kind)
}

func TestNew_CoinFlipBreaksFullTies(t *testing.T) {
	for _, tc := range []struct {
		name      string
		playerKey int
		allyKey   int
		wantFirst combat.Kind
	}{
		{"ally wins flip", 1, 2, combat.KindAlly},
		{"player wins flip", 2, 1, combat.KindPlayer},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := New(roller(t, 9, tc.playerKey, 9, tc.allyKey, 0, 0), zaptest.NewLogger(t),
				Participant{Entity: entity("fighter", combat.KindPlayer, 12), Strategy: &idle{}},
				Participant{Entity: entity("badger", combat.KindAlly, 12), Strategy: &idle{}},
				Participant{Entity: entity("wolf", combat.KindOpponent, 10), Strategy: &idle{}},
			)
			require.NoError(t, err)
			assert.Equal(t, tc.wantFirst, s.Order()[0].Kind)
		})
	}
}

func TestNew_RequiresCommanderAndSeats(t *testing.T) {
	_, err := New(roller(t), zaptest.NewLogger(t),
		Participant{Entity: entity("fighter", combat.KindPlayer, 10)},
		Participant{Entity: entity("badger", combat.KindAlly, 10), Strategy: &idle{}},
		Participant{Entity: entity("wolf", combat.KindOpponent, 10), Strategy: &idle{}},
	)
	assert.ErrorIs(t, err, ErrNoCommander)

	_, err = New(roller(t), zaptest.NewLogger(t),
		Participant{Entity: entity("fighter", combat.KindPlayer, 10), Strategy: &idle{}},
		Participant{Entity: entity("wolf", combat.KindOpponent, 10), Strategy: &idle{}},
		Participant{Entity: entity("badger", combat.KindAlly, 10), Strategy: &idle{}},
	)
	assert.Error(t, err)

	bad := entity("ghost", combat.KindAlly, 10)
	bad.MaxHP = 0
	_, err = New(roller(t), zaptest.NewLogger(t),
		Participant{Entity: entity("fighter", combat.KindPlayer, 10), Strategy: &idle{}},
		Participant{Entity: bad, Strategy: &idle{}},
		Participant{Entity: entity("wolf", combat.KindOpponent, 10), Strategy: &idle{}},
	)
	assert.Error(t, err)
}

func TestTargets_OnlyNearLivingOthers(t *testing.T) {
	s, _ := newScene(t)
	assert.Len(t, s.Targets(s.Player()), 2)

	s.Ally().Position = Far
	targets := s.Targets(s.Player())
	require.Len(t, targets, 1)
	assert.Same(t, s.Opponent(), targets[0])

	s.Player().Position = Far
	assert.Empty(t, s.Targets(s.Player()))

	s.Player().Position = Near
	s.Ally().Position = Near
	s.Entity(s.Ally()).Dead = true
	s.resync()
	assert.Equal(t, []string{"(M)Wolf"}, s.Nearby(s.Player()))
}

func TestEngage_GangUpPullsEveryoneNear(t *testing.T) {
	s, _ := newScene(t)
	s.Player().Position = Far
	s.Ally().Position = Far

	s.engage(s.Opponent())
	for _, a := range s.Order() {
		assert.Equal(t, Near, a.Position, s.name(a))
	}
}

func TestEngage_NoGangUpWhileSomeoneIsNear(t *testing.T) {
	s, _ := newScene(t)
	s.Player().Position = Far
	s.Ally().Position = Far

	s.engage(s.Ally())
	assert.Equal(t, Near, s.Ally().Position)
	assert.Equal(t, Far, s.Player().Position)
}

func TestStep_GoodActorActs(t *testing.T) {
	s, strategies := newScene(t)
	require.NoError(t, s.Step(context.Background()))
	assert.Equal(t, 1, strategies[0].calls)
	assert.Equal(t, 1, s.Turns())
}

func TestStep_UnconsciousActorOnlyRollsDeathSave(t *testing.T) {
	var narration lines
	// death save face 5
	s, strategies := newSceneRolling(t, []int{4}, WithNarrator(&narration))
	e := s.Entity(s.Player())
	e.CurrentHP, e.Unconscious = 0, true
	s.resync()

	require.NoError(t, s.Step(context.Background()))
	assert.Zero(t, strategies[0].calls)
	assert.True(t, s.Player().Downed)
	assert.Equal(t, 1, e.Failures)
	assert.Equal(t, StatusUnconscious, s.Player().Status)
	require.Len(t, narration, 2)
	assert.Contains(t, narration[0], "lies unconscious")
	assert.Contains(t, narration[1], "fails a death save (5)")
}

func TestStep_DeadActorIsSkipped(t *testing.T) {
	s, strategies := newScene(t)
	s.Entity(s.Ally()).Dead = true
	s.resync()

	ctx := context.Background()
	require.NoError(t, s.Step(ctx))
	require.NoError(t, s.Step(ctx))
	assert.Zero(t, strategies[1].calls)
	assert.True(t, s.Ally().Killed)
	assert.False(t, s.Over(), "ally death does not end the encounter")
}

func TestStep_PanicsWhenOver(t *testing.T) {
	s, _ := newScene(t)
	s.Entity(s.Opponent()).Dead = true
	s.resync()
	assert.Panics(t, func() { _ = s.Step(context.Background()) })
}

func TestResync_TracksEntityFlags(t *testing.T) {
	s, _ := newScene(t)
	e := s.Entity(s.Ally())
	e.Unconscious = true
	s.resync()
	assert.Equal(t, StatusUnconscious, s.Ally().Status)

	e.Unconscious, e.Dead = false, true
	s.resync()
	assert.Equal(t, StatusDead, s.Ally().Status)
	assert.True(t, s.Ally().Downed)
	assert.True(t, s.Ally().Killed)
}

func TestRun_StalemateAtTurnLimit(t *testing.T) {
	s, strategies := newScene(t, WithMaxTurns(9))
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeStalemate, res.Outcome)
	assert.Equal(t, 9, res.Turns)
	for _, st := range strategies {
		assert.Equal(t, 3, st.calls)
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	s, _ := newScene(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeUnfinished, res.Outcome)
}

func TestRun_TurnHookErrorStops(t *testing.T) {
	stop := errors.New("stop")
	s, _ := newScene(t, WithTurnHook(func(context.Context, *Scene) error { return stop }))
	_, err := s.Run(context.Background())
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, s.Turns())
}

func TestHuman_CommandsReachTheArena(t *testing.T) {
	var narration lines
	cmds := &tokens{queue: []string{command.HandlerDisengage, command.HandlerDodge}}
	opp := entity("wolf", combat.KindOpponent, 10)
	opp.Policy = combat.PolicySlain
	s, err := New(roller(t, 14, 0, 9, 0, 4, 0), zaptest.NewLogger(t),
		Participant{Entity: entity("fighter", combat.KindPlayer, 10), Strategy: NewHuman(cmds)},
		Participant{Entity: entity("badger", combat.KindAlly, 10), Strategy: &idle{}},
		Participant{Entity: opp, Strategy: &idle{}},
		WithNarrator(&narration),
	)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Step(ctx))
	assert.Equal(t, Far, s.Player().Position)
	assert.Contains(t, narration, "You are engaged in combat with (SK)Badger and (M)Wolf.")

	require.NoError(t, s.Step(ctx))
	require.NoError(t, s.Step(ctx))
	require.NoError(t, s.Step(ctx))
	assert.Equal(t, combat.Advantaged, s.Entity(s.Player()).Defense)
	assert.Contains(t, narration, "No one is nearby, though the sounds of battle are close.")

	require.Len(t, cmds.views, 2)
	assert.Equal(t, "FAR", cmds.views[1].Self.Position)
	assert.Empty(t, cmds.views[1].Nearby)

	s.cursor = 0
	err = s.Step(ctx)
	assert.ErrorIs(t, err, command.ErrExit)
}

func TestHuman_AttackEngagesAndCountsDamage(t *testing.T) {
	opp := entity("wolf", combat.KindOpponent, 10)
	opp.Policy = combat.PolicySlain
	opp.AC = 1
	// initiative 15/10/5, then a natural 20 and critical damage faces 6 and 6.
	s, err := New(roller(t, 14, 0, 9, 0, 4, 0, 19, 5, 5), zaptest.NewLogger(t),
		Participant{Entity: entity("fighter", combat.KindPlayer, 10), Strategy: NewHuman(always(command.HandlerAttack))},
		Participant{Entity: entity("badger", combat.KindAlly, 10), Strategy: &idle{}},
		Participant{Entity: opp, Strategy: &idle{}},
	)
	require.NoError(t, err)
	s.Player().Position = Far

	require.NoError(t, s.Step(context.Background()))
	assert.Equal(t, Near, s.Player().Position)
	assert.Equal(t, 12, s.Player().DamageDealt, "capped at the wolf's remaining HP")
	assert.True(t, s.Over())

	res := s.Result()
	assert.Equal(t, OutcomeVictory, res.Outcome)
	for _, sum := range res.Summaries {
		if sum.Kind == combat.KindOpponent {
			assert.Equal(t, StatusDead, sum.Status)
			assert.True(t, sum.Killed)
		}
	}
}

func TestHuman_RejectsNonActionToken(t *testing.T) {
	s, err := New(roller(t, 14, 0, 9, 0, 4, 0), zaptest.NewLogger(t),
		Participant{Entity: entity("fighter", combat.KindPlayer, 10), Strategy: NewHuman(always(command.HandlerHelp))},
		Participant{Entity: entity("badger", combat.KindAlly, 10), Strategy: &idle{}},
		Participant{Entity: entity("wolf", combat.KindOpponent, 10), Strategy: &idle{}},
	)
	require.NoError(t, err)
	assert.ErrorIs(t, s.Step(context.Background()), command.ErrUnknown)
}

func TestMonster_EngagesWhenAloneAndAttacks(t *testing.T) {
	s, _ := newScene(t)
	s.Player().Position = Far
	s.Ally().Position = Far

	// no dodge (50), random target index 0, attack face 1 misses.
	m := NewMonster(ai.NewOpponent(&scripted{vals: []int{50, 0}, fallback: dice.NewSeededSource(1)}, zaptest.NewLogger(t)))
	require.NoError(t, m.Act(context.Background(), s, s.Opponent()))
	for _, a := range s.Order() {
		assert.Equal(t, Near, a.Position)
	}
}

func TestMonster_WaitsWithNoTargets(t *testing.T) {
	var narration lines
	s, _ := newScene(t, WithNarrator(&narration))
	s.Entity(s.Player()).Dead = true
	s.Entity(s.Ally()).Dead = true
	s.resync()

	m := NewMonster(ai.NewOpponent(&scripted{vals: []int{50}, fallback: dice.NewSeededSource(1)}, zaptest.NewLogger(t)))
	require.NoError(t, m.Act(context.Background(), s, s.Opponent()))
	assert.Contains(t, narration, "(M)Wolf prowls, finding no one within reach.")
}

func TestCompanion_VerboseNarratesStrengths(t *testing.T) {
	var narration lines
	core, logs := observer.New(zap.InfoLevel)
	s, _ := newScene(t, WithNarrator(&narration), WithVerbose(true))
	s.logger = zap.New(core)

	engine, err := fuzzy.NewEngine(fuzzy.Lukasiewicz, fuzzy.DefaultTables())
	require.NoError(t, err)
	c := NewCompanion(ai.NewAlly(engine, fuzzy.Knowledge{}, zaptest.NewLogger(t)))
	s.Entity(s.Ally()).CurrentHP = 2

	require.NoError(t, c.Act(context.Background(), s, s.Ally()))
	assert.Contains(t, narration, "(SK)Badger considers their action carefully.")
	assert.Equal(t, combat.Advantaged, s.Entity(s.Ally()).Defense, "low ally HP self-preserves")
	assert.Equal(t, 1, logs.FilterMessage("ally strengths").Len())
}

func TestBuild_SelectsByTypeAndRequiresCommander(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	r := dice.NewLoggedRoller(dice.NewSeededSource(3), zaptest.NewLogger(t))

	_, err = Build(cat, r, zaptest.NewLogger(t), Setup{}, nil)
	assert.ErrorIs(t, err, ErrNoCommander)

	_, err = Build(cat, r, zaptest.NewLogger(t), Setup{OpponentType: "tarrasque"}, always(command.HandlerWait))
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	s, err := Build(cat, r, zaptest.NewLogger(t), Setup{
		PlayerClass:  "fighter",
		AllyType:     "black bear",
		OpponentType: "giant rat",
		OpponentTier: "1/2",
	}, always(command.HandlerWait))
	require.NoError(t, err)
	assert.Equal(t, "(PC)Fighter", s.Entity(s.Player()).String())
	assert.Equal(t, "(SK)Black Bear", s.Entity(s.Ally()).String())
	assert.Equal(t, "(M)Giant Rat", s.Entity(s.Opponent()).String())
	assert.Equal(t, combat.PolicySlain, s.Entity(s.Opponent()).Policy)
}

func TestBuild_SameSeedSameEncounter(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)

	play := func(seed uint64) (Result, lines) {
		var narration lines
		r := dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
		s, err := Build(cat, r, zap.NewNop(), Setup{Knowledge: fuzzy.KnowledgeHigh}, always(command.HandlerAttack), WithNarrator(&narration))
		require.NoError(t, err)
		res, err := s.Run(context.Background())
		require.NoError(t, err)
		return res, narration
	}

	res1, n1 := play(99)
	res2, n2 := play(99)
	assert.Equal(t, res1.Summaries, res2.Summaries)
	assert.Equal(t, res1.Turns, res2.Turns)
	assert.Equal(t, res1.Outcome, res2.Outcome)
	assert.Equal(t, n1, n2)
}

func TestBuild_EveryRecordCarriesEncounterID(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	id := uuid.MustParse("6f1c2f3e-8d5a-4b7e-9a10-2b3c4d5e6f70")

	r := dice.NewLoggedRoller(dice.NewSeededSource(17), logger)
	s, err := Build(cat, r, logger, Setup{Knowledge: fuzzy.KnowledgeHigh}, always(command.HandlerAttack),
		WithID(id), WithVerbose(true))
	require.NoError(t, err)
	assert.Equal(t, id, s.ID())

	res, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id.String(), res.EncounterID)

	entries := logs.All()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.Equal(t, id.String(), e.ContextMap()["encounter_id"], "record %q", e.Message)
	}
	for _, msg := range []string{"dice roll", "ally knowledge", "encounter created", "encounter finished"} {
		assert.NotZero(t, logs.FilterMessage(msg).Len(), msg)
	}
}

func TestBuild_GeneratesEncounterIDWithoutOption(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	r := dice.NewLoggedRoller(dice.NewSeededSource(5), logger)
	s, err := Build(cat, r, logger, Setup{}, always(command.HandlerWait))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.ID())
	for _, e := range logs.All() {
		assert.Equal(t, s.ID().String(), e.ContextMap()["encounter_id"], "record %q", e.Message)
	}
}

func TestProperty_EncounterInvariants(t *testing.T) {
	cat, err := catalog.Default()
	require.NoError(t, err)
	actions := []string{
		command.HandlerAttack, command.HandlerDisengage, command.HandlerDodge,
		command.HandlerHarry, command.HandlerHinder, command.HandlerWait,
	}

	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		level := fuzzy.KnowledgeLevel(rapid.IntRange(0, 3).Draw(rt, "knowledge"))
		picks := rapid.SliceOfN(rapid.SampledFrom(actions), 1, 8).Draw(rt, "commands")

		r := dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
		s, err := Build(cat, r, zap.NewNop(), Setup{Knowledge: level}, &cycle{picks: picks}, WithMaxTurns(300))
		if err != nil {
			rt.Fatalf("build: %v", err)
		}
		checkInvariants(rt, s)
		s.hook = func(context.Context, *Scene) error {
			checkInvariants(rt, s)
			return nil
		}

		res, err := s.Run(context.Background())
		if err != nil {
			rt.Fatalf("run: %v", err)
		}
		if res.Outcome == OutcomeUnfinished {
			rt.Fatalf("encounter ended without an outcome")
		}
		if res.Outcome == OutcomeVictory && s.Opponent().Status != StatusDead {
			rt.Fatalf("victory with a living opponent")
		}
	})
}

// cycle repeats picks forever.
type cycle struct {
	picks []string
	i     int
}

func (c *cycle) NextCommand(context.Context, View) (string, error) {
	tok := c.picks[c.i%len(c.picks)]
	c.i++
	return tok, nil
}

func checkInvariants(rt *rapid.T, s *Scene) {
	for _, a := range s.Order() {
		e := s.Entity(a)
		if e.CurrentHP < 0 || e.CurrentHP > e.MaxHP {
			rt.Fatalf("%s HP %d outside [0, %d]", e, e.CurrentHP, e.MaxHP)
		}
		if e.Dead && (e.Unconscious || e.Stable) {
			rt.Fatalf("%s dead but unconscious=%v stable=%v", e, e.Unconscious, e.Stable)
		}
		if e.Stable && !e.Unconscious {
			rt.Fatalf("%s stable but conscious", e)
		}
		if a.Kind == combat.KindOpponent && e.Unconscious {
			rt.Fatalf("opponent fell unconscious")
		}
	}
}
