package dice_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// seqSource returns the queued values in order and then repeats the last one.
// Values are raw Intn results, so a die face f is queued as f-1.
type seqSource struct {
	vals []int
	i    int
}

func (s *seqSource) Intn(n int) int {
	v := s.vals[len(s.vals)-1]
	if s.i < len(s.vals) {
		v = s.vals[s.i]
		s.i++
	}
	if v >= n {
		return n - 1
	}
	return v
}

func faces(fs ...int) *seqSource {
	vals := make([]int, len(fs))
	for i, f := range fs {
		vals[i] = f - 1
	}
	return &seqSource{vals: vals}
}

// TestRollResult_Total verifies the postcondition: Total() == sum(Dice) + Modifier.
func TestRollResult_Total(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, 12, r.Total(), "Total() must equal sum(Dice)+Modifier")
}

// TestRollResult_String verifies the audit string contains expression, dice, and total.
func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{
		Expression: "2d6+3",
		Dice:       []int{4, 5},
		Modifier:   3,
	}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	r := dice.RollResult{Dice: []int{4}, Modifier: 0}
	assert.Panics(t, func() { _ = r.String() })
}

func TestRollResult_Total_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dice_ := rapid.SliceOf(rapid.IntRange(1, 20)).Draw(rt, "dice")
		modifier := rapid.IntRange(-100, 100).Draw(rt, "modifier")

		r := dice.RollResult{Expression: "Nd6+M", Dice: dice_, Modifier: modifier}

		expected := modifier
		for _, d := range dice_ {
			expected += d
		}
		assert.Equal(rt, expected, r.Total())
		assert.Contains(rt, r.String(), fmt.Sprintf("= %d", expected))
	})
}

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want dice.Expression
	}{
		{"d20", dice.Expression{Raw: "d20", Count: 1, Sides: 20}},
		{"2d6", dice.Expression{Raw: "2d6", Count: 2, Sides: 6}},
		{"2d6+3", dice.Expression{Raw: "2d6+3", Count: 2, Sides: 6, Modifier: 3}},
		{"4d8-2", dice.Expression{Raw: "4d8-2", Count: 4, Sides: 8, Modifier: -2}},
		{"1d8r1", dice.Expression{Raw: "1d8r1", Count: 1, Sides: 8, RerollOnes: true}},
		{"2d20kh1", dice.Expression{Raw: "2d20kh1", Count: 2, Sides: 20, KeepHighest: 1}},
		{"2d20kl1+4", dice.Expression{Raw: "2d20kl1+4", Count: 2, Sides: 20, KeepLowest: 1, Modifier: 4}},
		{"1D12R1-1", dice.Expression{Raw: "1D12R1-1", Count: 1, Sides: 12, RerollOnes: true, Modifier: -1}},
	}
	for _, tc := range tests {
		got, err := dice.Parse(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "20", "0d6", "2d1", "2dx", "1d20kh1", "2d20kh2", "1d6r2", "2d6*3", "2d6+"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, "expected %q to be rejected", in)
	}
}

func TestPool_Raw(t *testing.T) {
	assert.Equal(t, "2d4", dice.Pool(2, 4, 0).Raw)
	assert.Equal(t, "1d8+3", dice.Pool(1, 8, 3).Raw)
	assert.Equal(t, "1d6-1", dice.Pool(1, 6, -1).Raw)
	assert.Panics(t, func() { dice.Pool(0, 6, 0) })
}

func TestExpression_WithModifier(t *testing.T) {
	e := dice.MustParse("2d20kh1").WithModifier(5)
	assert.Equal(t, "2d20kh1+5", e.Raw)
	assert.Equal(t, 5, e.Modifier)

	e = dice.MustParse("1d20+2").WithModifier(-1)
	assert.Equal(t, "1d20-1", e.Raw)
	assert.Equal(t, 1, e.Count)
}

func TestRoll_KeepHighestAndLowest(t *testing.T) {
	hi, err := dice.Roll(dice.MustParse("2d20kh1"), faces(7, 15), dice.ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, []int{15}, hi.Dice)

	lo, err := dice.Roll(dice.MustParse("2d20kl1+2"), faces(7, 15), dice.ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, lo.Dice)
	assert.Equal(t, 9, lo.Total())
}

func TestRoll_CriticalDoublesDiceNotModifier(t *testing.T) {
	r, err := dice.Roll(dice.MustParse("2d6+3"), faces(1, 2, 3, 4), dice.ModeCritical)
	require.NoError(t, err)
	assert.Len(t, r.Dice, 4)
	assert.Equal(t, 3, r.Modifier)
	assert.Equal(t, 13, r.Total())
	assert.Equal(t, dice.ModeCritical, r.Mode)
}

func TestRoll_RerollOnesExactlyOnce(t *testing.T) {
	r, err := dice.Roll(dice.MustParse("1d8r1"), faces(1, 1), dice.ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, r.Dice, "the reroll stands even when it is another 1")

	r, err = dice.Roll(dice.MustParse("1d8r1"), faces(1, 6), dice.ModeNormal)
	require.NoError(t, err)
	assert.Equal(t, []int{6}, r.Dice)
}

func TestRoll_ZeroExpressionErrors(t *testing.T) {
	_, err := dice.Roll(dice.Expression{}, faces(1), dice.ModeNormal)
	assert.Error(t, err)
}

func TestRoll_Property_FacesInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 6).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		seed := rapid.Uint64().Draw(rt, "seed")
		mode := dice.Mode(rapid.IntRange(0, 1).Draw(rt, "mode"))

		r, err := dice.Roll(dice.Pool(count, sides, 0), dice.NewSeededSource(seed), mode)
		require.NoError(rt, err)
		want := count
		if mode == dice.ModeCritical {
			want *= 2
		}
		assert.Len(rt, r.Dice, want)
		for _, d := range r.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
	})
}

func TestSeededSource_Reproducible(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Uint64().Draw(rt, "seed")
		a, b := dice.NewSeededSource(seed), dice.NewSeededSource(seed)
		for i := 0; i < 50; i++ {
			assert.Equal(rt, a.Intn(20), b.Intn(20))
		}
	})
}

func TestSeededSource_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewSeededSource(1).Intn(0) })
}

func TestRoller_LogsEachRoll(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewLoggedRoller(faces(4, 5), zap.New(core))

	res, err := r.RollExpr("2d6+3")
	require.NoError(t, err)
	assert.Equal(t, 12, res.Total())

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "2d6+3", fields["expression"])
	assert.Equal(t, int64(12), fields["total"])
	assert.True(t, strings.Contains(fmt.Sprint(fields["mode"]), "normal"))
}

func TestRoller_WithScopesLogsAndSharesSource(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewLoggedRoller(faces(4, 5), zap.New(core))
	scoped := r.With(zap.String("encounter_id", "e-1"))

	res, err := scoped.RollExpr("1d6")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total())
	res, err = r.RollExpr("1d6")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total(), "scoped roller must draw from the shared source")

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "e-1", entries[0].ContextMap()["encounter_id"])
	assert.NotContains(t, entries[1].ContextMap(), "encounter_id")
}

func TestRoller_MustRollPanicsOnInvalidExpression(t *testing.T) {
	r := dice.NewLoggedRoller(faces(1), zap.NewNop())
	assert.Panics(t, func() { r.MustRoll(dice.Expression{Raw: "bad"}, dice.ModeNormal) })
}
