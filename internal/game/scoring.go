package game

import "fmt"

const (
	MsgInvalidInput = "Invalid input. Enter 4 digits."
	MsgPlayerWins   = "Player wins!"
	MsgGameOver     = "Game Over!"
)

type Result struct {
	Bulls int `json:"bulls"`
	Cows  int `json:"cows"`
}

func (r Result) Won() bool { return r.Bulls == CodeLen }

func (r Result) String() string {
	return fmt.Sprintf("Bulls: %d, Cows: %d", r.Bulls, r.Cows)
}

// Evaluate scores guess against secret. Each secret digit matches at most
// once, either as a bull or as a cow, so repeated guess digits are not
// over-counted.
func Evaluate(guess, secret Code) (Result, error) {
	if !guess.valid() || !secret.valid() {
		return Result{}, ErrMalformedGuess
	}

	var (
		res   Result
		usedG [CodeLen]bool
		usedS [CodeLen]bool
	)

	for i := 0; i < CodeLen; i++ {
		if guess[i] == secret[i] {
			res.Bulls++
			usedG[i] = true
			usedS[i] = true
		}
	}

	for i := 0; i < CodeLen; i++ {
		if usedG[i] {
			continue
		}
		for j := 0; j < CodeLen; j++ {
			if !usedS[j] && guess[i] == secret[j] {
				res.Cows++
				usedS[j] = true
				break
			}
		}
	}

	return res, nil
}

// ElapsedText renders the session clock.
func ElapsedText(sec int) string {
	return fmt.Sprintf("Time: %d seconds", sec)
}
