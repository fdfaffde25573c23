// Package console plays a session in a terminal: one guess per line.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"example.com/bulls-cows/internal/game"
)

const (
	intro   = "Guess the 4-digit code (all digits different). Type \"quit\" to leave."
	prompt  = "> "
	quitCmd = "quit"
)

type Runner struct {
	In      io.Reader
	Out     io.Writer
	Session *game.Session
	Log     *slog.Logger

	// TickInterval drives the session clock; 0 disables it.
	TickInterval time.Duration
}

// Run reads guesses until quit, EOF or ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	log := r.Log
	if log == nil {
		log = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if r.TickInterval > 0 {
		go r.clock(ctx)
	}

	fmt.Fprintln(r.Out, intro)
	fmt.Fprint(r.Out, prompt)

	lines, errc := scanLines(ctx, r.In)
	for {
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return <-errc
			}
			line = strings.TrimSpace(l)
		}

		if strings.EqualFold(line, quitCmd) {
			return nil
		}

		out, err := r.Session.Submit(line)
		switch {
		case errors.Is(err, game.ErrMalformedGuess):
			fmt.Fprintln(r.Out, game.MsgInvalidInput)
		case errors.Is(err, game.ErrGameOver):
			fmt.Fprintln(r.Out, game.MsgGameOver)
		case err != nil:
			return fmt.Errorf("submit guess: %w", err)
		default:
			fmt.Fprintln(r.Out, out.Text())
			if out.Won {
				st := r.Session.State()
				fmt.Fprintln(r.Out, game.ElapsedText(st.Elapsed))
				log.Debug("game won", "session", st.SessionID, "attempts", st.Attempts, "elapsed", st.Elapsed)
			}
		}
		fmt.Fprint(r.Out, prompt)
	}
}

// scanLines feeds lines from in until EOF or ctx is done. A read blocked in
// in outlives ctx; the goroutine exits on the next line or EOF.
func scanLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- sc.Err()
	}()
	return lines, errc
}

func (r *Runner) clock(ctx context.Context) {
	t := time.NewTicker(r.TickInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, ticked := r.Session.Tick(); !ticked {
				return
			}
		}
	}
}
