package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"example.com/bulls-cows/internal/console"
	"example.com/bulls-cows/internal/game"
	"github.com/google/uuid"
)

func main() {
	seed := flag.Uint64("seed", 0, "secret seed (0 = random)")
	tick := flag.Duration("tick", time.Second, "clock interval (0 disables)")
	debug := flag.Bool("debug", false, "debug logging to stderr")
	flag.Parse()

	lvl := slog.LevelWarn
	if *debug {
		lvl = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	secret, err := game.GenerateSecret(game.NewRand(*seed), game.DefaultMaxRejections)
	if err != nil {
		log.Error("generate secret", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	r := &console.Runner{
		In:           os.Stdin,
		Out:          os.Stdout,
		Session:      game.NewSession(uuid.NewString(), secret, time.Now()),
		Log:          log,
		TickInterval: *tick,
	}
	if err := r.Run(ctx); err != nil {
		log.Error("console", "err", err)
		os.Exit(1)
	}
}
