// SPDX-License-Identifier: MIT
package dicemice

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/fisherprime/dicemice/dice"
	"gitlab.com/fisherprime/dicemice/types"
)

// draws is a dice.Source replaying fixed rolls, a roll of v is drawn as v-1.
type draws struct {
	rolls []int64
	index int
}

func (d *draws) Int63n(n int64) int64 {
	value := (d.rolls[d.index%len(d.rolls)] - 1) % n
	d.index++

	return value
}

func newTestEvaluator(logger logrus.FieldLogger, rolls ...int64) (ev *evaluator) {
	if len(rolls) < 1 {
		rolls = []int64{1}
	}

	return &evaluator{
		logger: logger,
		roller: dice.NewRoller(&draws{rolls: rolls}),
		rolled: make(map[int]Numeric),
		faults: &types.SafeCounter{},
	}
}

func TestEvaluator_Run_Plaintext(t *testing.T) {
	tests := []string{
		"Hello world",
		"d0",
		"Tries a trivial D0 roll",
		"mixes textandrollsd8d",
		"0d0",
		"stand-alone dash",
		"ctrl+alt-delete",
		"d4then anotherd20 roll",
		"version 12 of 40",
		"well... (sure) [maybe]",
		"",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			logger, _ := test.NewNullLogger()

			got, err := newTestEvaluator(logger, 3).run(context.Background(), text)
			require.NoError(t, err)

			if text == "d4then anotherd20 roll" {
				assert.Equal(t, "3then anotherd20 roll", got)
				return
			}
			assert.Equal(t, text, got)
		})
	}
}

func TestEvaluator_Run_Arithmetic(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"1+1", "1+1 = 2"},
		{"\t2+8", "\t2+8 = 10"},
		{"98 +42+ 38", "98 +42+ 38 = 178"},
		{"1-1", "1-1 = 0"},
		{"4 -9", "4 -9 = -5"},
		{" 18- 3", " 18- 3 = 15"},
		{"4+8-3", "4+8-3 = 9"},
		{"4-8+3", "4-8+3 = -1"},
		{"2+3*4", "2+3*4 = 14"},
		{"(2+3)*4", "(2+3)*4 = 20"},
		{"[2+3] * {4}", "[2+3] * {4} = 20"},
		{"7/2", "7/2 = 3.5"},
		{"1/3", "1/3 = 0.33"},
		{"8.4", "8.4 = 8.4"},
		{"-3", "-3 = -3"},
		{"--3", "--3 = 3"},
		{"costs 3+4 coins", "costs 3+4 = 7 coins"},
		{"4/0", "4/~~0~~ = [DIVISION BY ZERO]"},
		{"1+4/(2-2)", "1+4/~~(2-2)~~ = [DIVISION BY ZERO]"},
		{"(1+2", "(1+2 = 3"},
		{"1+2+", "1+2 = 3+"},
		{"1+2)", "1+2 = 3)"},
		{"then 4 + and", "then 4 + and"},
		{"9007199254740993+0", "9007199254740993+0 = 9007199254740993"},
		{"99999999999999999999*3", "99999999999999999999*3 = 299999999999999999997"},
		{"-(2-2)", "-(2-2) = 0"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			logger, _ := test.NewNullLogger()

			got, err := newTestEvaluator(logger).run(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_Run_Dice(t *testing.T) {
	tests := []struct {
		text  string
		rolls []int64
		want  string
	}{
		{"d20", []int64{14}, "14"},
		{"attack d20+3", []int64{14}, "attack 14+3 = 17"},
		{"2d20", []int64{5, 17}, "[5, 17] = 22"},
		{"2d20kh1", []int64{5, 17}, "[5, 17] = 17"},
		{"4d6kl3", []int64{6, 1, 3, 2}, "[6, 1, 3, 2] = 6"},
		{"4d6dl1", []int64{6, 1, 3, 2}, "[6, 1, 3, 2] = 11"},
		{"d20adv", []int64{4, 12}, "[4, 12] = 12"},
		{"d20dis", []int64{4, 12}, "[4, 12] = 4"},
		{"attacks for 0d20 then 1d8 damage.", []int64{5}, "attacks for [] then 5 damage."},
		{"2-3d8", []int64{1, 2, 3}, "2-[1, 2, 3] = -4"},
		{"-2d8.", []int64{3, 5}, "-[3, 5] = -8."},
		{"(d6+1)*2", []int64{4}, "(4+1)*2 = 10"},
		{"d6/0", []int64{4}, "4/~~0~~ = [DIVISION BY ZERO]"},
		{"(d6+2 d6", []int64{4, 6}, "(4+2 = 6 6"},
		{"d8 then d8", []int64{2, 7}, "2 then 7"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			logger, _ := test.NewNullLogger()

			got, err := newTestEvaluator(logger, tt.rolls...).run(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluator_Run_SyntaxFault(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"1+*2", SyntaxMarker},
		{"hit 1+*2 twice", "hit " + SyntaxMarker + " twice"},
		{"(1+2*)", SyntaxMarker},
		{"(*2)", SyntaxMarker},
		{"(2(3))", SyntaxMarker},
		{"(4 *) then 2+2", SyntaxMarker + " then 2+2 = 4"},
		{"2 (*3)", "2 " + SyntaxMarker},
		{"1+1 [*3] ", "1+1 = 2 " + SyntaxMarker + " "},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			ev := newTestEvaluator(logger)

			got, err := ev.run(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			assert.Equal(t, 1, ev.faults.Value())
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

			var syntaxErr *SyntaxError
			err, _ = hook.LastEntry().Data[logrus.ErrorKey].(error)
			assert.True(t, errors.As(err, &syntaxErr))
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestEvaluator_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, _ := test.NewNullLogger()

	_, err := newTestEvaluator(logger).run(ctx, "2d6 + 4")
	assert.ErrorIs(t, err, context.Canceled)
}
