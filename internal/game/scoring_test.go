package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func code(t *testing.T, s string) Code {
	t.Helper()
	c, err := ParseGuess(s)
	require.NoError(t, err)
	return c
}

func TestEvaluate_Cases(t *testing.T) {
	cases := []struct {
		name          string
		secret, guess string
		bulls, cows   int
	}{
		{name: "identity", secret: "1234", guess: "1234", bulls: 4},
		{name: "repeated guess digit counted once", secret: "1234", guess: "1111", bulls: 1},
		{name: "all misplaced", secret: "5678", guess: "8765", cows: 4},
		{name: "mixed", secret: "0123", guess: "3109", bulls: 1, cows: 2},
		{name: "nothing", secret: "0123", guess: "4567"},
		{name: "repeated misplaced digit", secret: "1234", guess: "2222", bulls: 1},
		{name: "repeat one cow", secret: "1234", guess: "5511", cows: 1},
		{name: "three bulls", secret: "9876", guess: "9870", bulls: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(code(t, tc.guess), code(t, tc.secret))
			require.NoError(t, err)
			assert.Equal(t, Result{Bulls: tc.bulls, Cows: tc.cows}, got)
		})
	}
}

func TestEvaluate_BoundsForAllGuesses(t *testing.T) {
	secrets := []Code{{0, 1, 2, 3}, {9, 8, 7, 6}, {5, 0, 9, 2}}

	for _, secret := range secrets {
		for n := 0; n < 10000; n++ {
			g := Code{uint8(n / 1000), uint8(n / 100 % 10), uint8(n / 10 % 10), uint8(n % 10)}
			r, err := Evaluate(g, secret)
			require.NoError(t, err)
			if r.Bulls < 0 || r.Cows < 0 || r.Bulls+r.Cows > CodeLen {
				t.Fatalf("secret=%s guess=%s => %+v out of bounds", secret, g, r)
			}
			if r.Won() != (g == secret) {
				t.Fatalf("secret=%s guess=%s won=%v", secret, g, r.Won())
			}
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	secret, guess := Code{0, 1, 2, 3}, Code{3, 1, 0, 9}

	first, err := Evaluate(guess, secret)
	require.NoError(t, err)
	second, err := Evaluate(guess, secret)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, Code{0, 1, 2, 3}, secret)
	assert.Equal(t, Code{3, 1, 0, 9}, guess)
}

func TestEvaluate_OutOfRangeDigit(t *testing.T) {
	_, err := Evaluate(Code{1, 2, 3, 10}, Code{1, 2, 3, 4})
	require.ErrorIs(t, err, ErrMalformedGuess)

	_, err = Evaluate(Code{1, 2, 3, 4}, Code{12, 2, 3, 4})
	require.ErrorIs(t, err, ErrMalformedGuess)
}

func TestResultText(t *testing.T) {
	assert.Equal(t, "Bulls: 1, Cows: 2", Result{Bulls: 1, Cows: 2}.String())
	assert.Equal(t, MsgPlayerWins, Outcome{Bulls: 4, Won: true}.Text())
	assert.Equal(t, "Bulls: 0, Cows: 4", Outcome{Cows: 4}.Text())
	assert.Equal(t, "Time: 7 seconds", ElapsedText(7))
}
