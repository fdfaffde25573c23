package game

import (
	"sync"
	"time"
)

// Session is one single-player game: a fixed secret, the won flag and the
// cosmetic clock. The won flag is set once, on the first 4-bull guess.
type Session struct {
	id string
	mu sync.Mutex

	secret  Code
	won     bool
	elapsed int

	attempts int
	history  []Attempt

	startedAt  time.Time
	lastActive time.Time
	watchers   int // open connections; a watched session is never idle
}

func NewSession(id string, secret Code, now time.Time) *Session {
	return &Session{
		id:         id,
		secret:     secret,
		startedAt:  now,
		lastActive: now,
	}
}

func (s *Session) ID() string { return s.id }

// Submit parses and scores one player input. Malformed input and input after
// the win leave the session untouched.
func (s *Session) Submit(input string) (Outcome, error) {
	guess, err := ParseGuess(input)
	if err != nil {
		return Outcome{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.won {
		return Outcome{}, ErrGameOver
	}

	res, err := Evaluate(guess, s.secret)
	if err != nil {
		return Outcome{}, err
	}

	s.attempts++
	s.history = append(s.history, Attempt{
		N:     s.attempts,
		Guess: guess.String(),
		Bulls: res.Bulls,
		Cows:  res.Cows,
	})
	if res.Won() {
		s.won = true
	}

	out := Outcome{
		Attempt: s.attempts,
		Guess:   guess.String(),
		Bulls:   res.Bulls,
		Cows:    res.Cows,
		Won:     res.Won(),
	}
	out.Message = out.Text()
	return out, nil
}

// Tick advances the clock by one second unless the game is already won.
func (s *Session) Tick() (elapsed int, ticked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.won {
		return s.elapsed, false
	}
	s.elapsed++
	return s.elapsed, true
}

func (s *Session) Won() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.won
}

func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() SessionState {
	st := SessionState{
		SessionID: s.id,
		Won:       s.won,
		Elapsed:   s.elapsed,
		Attempts:  s.attempts,
		History:   append([]Attempt{}, s.history...),
	}
	if s.won {
		st.Secret = s.secret.String()
	}
	return st
}

// expired reports whether nobody watches the session and nothing touched it
// for longer than ttl.
func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watchers == 0 && now.Sub(s.lastActive) > ttl
}

func (s *Session) watch(now time.Time) {
	s.mu.Lock()
	s.watchers++
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) unwatch(now time.Time) {
	s.mu.Lock()
	if s.watchers > 0 {
		s.watchers--
	}
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}
