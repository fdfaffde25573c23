package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"example.com/bulls-cows/internal/auth"
	"example.com/bulls-cows/internal/config"
	"example.com/bulls-cows/internal/game"
	"example.com/bulls-cows/internal/httpapi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	rdb      *redis.Client // nil => in-process bus
	sessions *game.SessionService

	srv *http.Server
}

type Options struct {
	Static http.Handler // optional; if nil, no frontend is served
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, opts Options) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	// --- Event bus ---
	var (
		bus game.Bus
		rdb *redis.Client
	)
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr: cfg.Redis.Addr,
			DB:   cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping (%s db=%d): %w", cfg.Redis.Addr, cfg.Redis.DB, err)
		}
		bus = game.NewRedisBus(rdb)
		log.Info("event bus: redis", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	} else {
		bus = game.NewMemoryBus()
		log.Info("event bus: in-memory")
	}

	// --- Auth (session tokens) ---
	authSvc := auth.NewService([]byte(cfg.Auth.Secret))

	// --- Game ---
	sessions := game.NewSessionService(game.Config{
		SessionTTL:    cfg.Game.SessionTTL,
		MaxRejections: cfg.Game.MaxRejections,
		Seed:          cfg.Game.Seed,
	}, game.NewInMemorySessionStore(), bus, log.With("component", "sessions"))
	gameSrv := game.NewServer(sessions, log.With("component", "ws"))

	sessionH := &httpapi.SessionHandler{
		Sessions: sessions,
		Tokens:   authSvc,
		TokenTTL: cfg.Auth.TokenTTL,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpapi.RequestLogger(log.With("component", "http")))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	sessionAuth := httpapi.SessionAuth(authSvc)
	sessionH.RegisterRoutes(r, sessionAuth)
	gameSrv.RegisterRoutes(r, sessionAuth)

	if opts.Static != nil {
		r.Handle("/*", opts.Static)
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	return &App{cfg: cfg, log: log, rdb: rdb, sessions: sessions, srv: srv}, nil
}

// Handler exposes the router (tests).
func (a *App) Handler() http.Handler { return a.srv.Handler }

func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	a.log.Info("http server starting", "addr", a.cfg.HTTP.Addr)

	g.Go(func() error {
		err := a.srv.ListenAndServe()
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		return a.sessions.RunClock(gctx, a.cfg.Game.ClockInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()
		a.log.Info("http server shutting down")
		_ = a.srv.Shutdown(shutdownCtx)
		return nil
	})

	err := g.Wait()
	_ = a.Close(context.Background())
	return err
}

func (a *App) Close(ctx context.Context) error {
	// best-effort
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	return nil
}
