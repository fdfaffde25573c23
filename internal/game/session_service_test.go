package game

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T, cfg Config) (*SessionService, *MemoryBus) {
	t.Helper()
	bus := NewMemoryBus()
	return NewSessionService(cfg, NewInMemorySessionStore(), bus, discardLogger()), bus
}

func recvEnvelope(t *testing.T, ch <-chan Envelope) Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(time.Second):
		t.Fatalf("no envelope received")
		return Envelope{}
	}
}

func TestSessionService_CreateAndSubmit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Config{Seed: 1})

	sess, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID())
	require.True(t, sess.secret.distinct())

	got, err := svc.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)

	events, cancel, err := svc.Subscribe(ctx, sess.ID())
	require.NoError(t, err)
	defer cancel()

	out, err := svc.Submit(ctx, sess.ID(), sess.secret.String())
	require.NoError(t, err)
	assert.True(t, out.Won)

	env := recvEnvelope(t, events)
	require.Equal(t, TypeGuessResult, env.Type)
	var res Outcome
	require.NoError(t, json.Unmarshal(env.Payload, &res))
	assert.Equal(t, out, res)

	env = recvEnvelope(t, events)
	require.Equal(t, TypeGameWon, env.Type)
	var won GameWonPayload
	require.NoError(t, json.Unmarshal(env.Payload, &won))
	assert.Equal(t, 1, won.Attempts)
	assert.Equal(t, sess.secret.String(), won.Secret)
}

func TestSessionService_Errors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, Config{})

	_, err := svc.Get("nope")
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Submit(ctx, "nope", "1234")
	require.ErrorIs(t, err, ErrSessionNotFound)

	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	events, cancel, err := svc.Subscribe(ctx, sess.ID())
	require.NoError(t, err)
	defer cancel()

	_, err = svc.Submit(ctx, sess.ID(), "12a4")
	require.ErrorIs(t, err, ErrMalformedGuess)

	select {
	case env := <-events:
		t.Fatalf("unexpected event for malformed guess: %s", env.Type)
	default:
	}
}

func TestSessionService_CreateFailsOnBrokenRand(t *testing.T) {
	svc, _ := newTestService(t, Config{MaxRejections: 10})
	svc.rng = &seqRand{vals: []int{3}}

	_, err := svc.Create(context.Background())
	require.ErrorIs(t, err, ErrRandomSourceExhausted)
	assert.Empty(t, svc.store.All())
}

func TestSessionService_TickAndExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _ := newTestService(t, Config{SessionTTL: time.Minute})
	svc.now = func() time.Time { return now }

	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	events, cancel, err := svc.Subscribe(ctx, sess.ID())
	require.NoError(t, err)
	defer cancel()

	svc.tickAll(ctx)
	env := recvEnvelope(t, events)
	require.Equal(t, TypeTick, env.Type)
	var tick TickPayload
	require.NoError(t, json.Unmarshal(env.Payload, &tick))
	assert.Equal(t, TickPayload{Elapsed: 1, Text: "Time: 1 seconds"}, tick)

	now = now.Add(2 * time.Minute)
	svc.tickAll(ctx)

	env = recvEnvelope(t, events)
	require.Equal(t, TypeSessionExpired, env.Type)
	var e ErrorPayload
	require.NoError(t, json.Unmarshal(env.Payload, &e))
	assert.Equal(t, "not_found", e.Code)

	_, err = svc.Get(sess.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_WatchedSessionIsNotEvicted(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, _ := newTestService(t, Config{SessionTTL: time.Minute})
	svc.now = func() time.Time { return now }

	sess, err := svc.Create(ctx)
	require.NoError(t, err)

	release := svc.Watch(sess)

	now = now.Add(10 * time.Minute)
	svc.tickAll(ctx)
	_, err = svc.Get(sess.ID())
	require.NoError(t, err, "watched session evicted")

	release()
	release()

	// release counts as activity; the ttl runs from there
	now = now.Add(30 * time.Second)
	svc.tickAll(ctx)
	_, err = svc.Get(sess.ID())
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	svc.tickAll(ctx)
	_, err = svc.Get(sess.ID())
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionService_RunClockStopsOnCancel(t *testing.T) {
	svc, _ := newTestService(t, Config{})
	sess, err := svc.Create(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.RunClock(ctx, 5*time.Millisecond) }()

	require.Eventually(t, func() bool { return sess.State().Elapsed >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunClock did not return")
	}
}
