package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	SessionTTL    time.Duration // idle sessions older than this are dropped; 0 => keep forever
	MaxRejections int           // consecutive duplicate draws tolerated by the generator
	Seed          uint64        // 0 => random
}

// SessionService owns live sessions:
// - secret generation (one shared RNG)
// - in-memory storage
// - publishing events to the bus
// - the one-second clock
type SessionService struct {
	cfg   Config
	store SessionStore
	bus   Bus
	log   *slog.Logger

	rngMu sync.Mutex
	rng   Rand

	now func() time.Time
}

func NewSessionService(cfg Config, store SessionStore, bus Bus, log *slog.Logger) *SessionService {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxRejections <= 0 {
		cfg.MaxRejections = DefaultMaxRejections
	}
	return &SessionService{
		cfg:   cfg,
		store: store,
		bus:   bus,
		log:   log,
		rng:   NewRand(cfg.Seed),
		now:   time.Now,
	}
}

func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	s.rngMu.Lock()
	secret, err := GenerateSecret(s.rng, s.cfg.MaxRejections)
	s.rngMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	id := uuid.NewString()
	sess := NewSession(id, secret, s.now())
	s.store.Create(id, sess)

	s.log.InfoContext(ctx, "session created", "session", id)
	return sess, nil
}

func (s *SessionService) Get(id string) (*Session, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(s.now())
	return sess, nil
}

// Submit scores input for the session and publishes the result.
func (s *SessionService) Submit(ctx context.Context, id, input string) (Outcome, error) {
	sess, err := s.Get(id)
	if err != nil {
		return Outcome{}, err
	}

	out, err := sess.Submit(input)
	if err != nil {
		return Outcome{}, err
	}

	s.publish(ctx, id, newEnvelope(TypeGuessResult, out))

	if out.Won {
		st := sess.State()
		s.log.InfoContext(ctx, "session won", "session", id, "attempts", st.Attempts, "elapsed", st.Elapsed)
		s.publish(ctx, id, newEnvelope(TypeGameWon, GameWonPayload{
			Attempts: st.Attempts,
			Elapsed:  st.Elapsed,
			Secret:   st.Secret,
		}))
	}
	return out, nil
}

// Watch keeps sess alive until release is called (one open connection).
// release is safe to call more than once.
func (s *SessionService) Watch(sess *Session) (release func()) {
	sess.watch(s.now())

	var once sync.Once
	return func() {
		once.Do(func() { sess.unwatch(s.now()) })
	}
}

// Touch records client activity on the session.
func (s *SessionService) Touch(sess *Session) {
	sess.touch(s.now())
}

func (s *SessionService) Subscribe(ctx context.Context, id string) (<-chan Envelope, func(), error) {
	return s.bus.Subscribe(ctx, id)
}

// RunClock ticks every live session once per interval until ctx is done.
func (s *SessionService) RunClock(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			s.tickAll(ctx)
		}
	}
}

func (s *SessionService) tickAll(ctx context.Context) {
	now := s.now()
	for _, sess := range s.store.All() {
		if s.cfg.SessionTTL > 0 && sess.expired(now, s.cfg.SessionTTL) {
			s.store.Delete(sess.ID())
			s.log.InfoContext(ctx, "session expired", "session", sess.ID())
			// watchers on other instances drop their connection on this
			s.publish(ctx, sess.ID(), newEnvelope(TypeSessionExpired, ErrorPayload{
				Code:    "not_found",
				Message: "session expired",
			}))
			continue
		}

		elapsed, ok := sess.Tick()
		if !ok {
			continue
		}
		s.publish(ctx, sess.ID(), newEnvelope(TypeTick, TickPayload{
			Elapsed: elapsed,
			Text:    ElapsedText(elapsed),
		}))
	}
}

func (s *SessionService) publish(ctx context.Context, id string, env Envelope) {
	if err := s.bus.Publish(ctx, id, env); err != nil {
		s.log.WarnContext(ctx, "publish failed", "session", id, "type", env.Type, "err", err)
	}
}
