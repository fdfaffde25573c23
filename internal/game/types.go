package game

import "encoding/json"

// Envelope WS envelope: {"type":"...","payload":{...}}
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

const (
	TypeState          = "state"
	TypeGuessResult    = "guess_result"
	TypeGameWon        = "game_won"
	TypeTick           = "tick"
	TypeError          = "error"
	TypeSessionExpired = "session_expired"
	TypeSubmitGuess    = "submit_guess"
)

// incoming
type SubmitGuessPayload struct {
	Guess string `json:"guess"`
}

// outgoing
type Attempt struct {
	N     int    `json:"n"`
	Guess string `json:"guess"`
	Bulls int    `json:"bulls"`
	Cows  int    `json:"cows"`
}

type Outcome struct {
	Attempt int    `json:"attempt"`
	Guess   string `json:"guess"`
	Bulls   int    `json:"bulls"`
	Cows    int    `json:"cows"`
	Won     bool   `json:"won"`
	Message string `json:"message"`
}

// Text is what the player sees for this guess.
func (o Outcome) Text() string {
	if o.Won {
		return MsgPlayerWins
	}
	return Result{Bulls: o.Bulls, Cows: o.Cows}.String()
}

type TickPayload struct {
	Elapsed int    `json:"elapsed"`
	Text    string `json:"text"`
}

type GameWonPayload struct {
	Attempts int    `json:"attempts"`
	Elapsed  int    `json:"elapsed"`
	Secret   string `json:"secret"`
}

type SessionState struct {
	SessionID string    `json:"sessionId"`
	Won       bool      `json:"won"`
	Elapsed   int       `json:"elapsed"`
	Attempts  int       `json:"attempts"`
	History   []Attempt `json:"history"`
	Secret    string    `json:"secret,omitempty"` // only after the win
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func newEnvelope(typ string, v any) Envelope {
	return Envelope{Type: typ, Payload: mustJSON(v)}
}
