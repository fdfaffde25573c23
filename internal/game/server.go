package game

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Server struct {
	sessions *SessionService
	log      *slog.Logger
}

func NewServer(sessions *SessionService, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		sessions: sessions,
		log:      log,
	}
}

// RegisterRoutes mounts the WebSocket endpoint. mw is applied to it only
// (session token check).
func (s *Server) RegisterRoutes(r chi.Router, mw ...func(http.Handler) http.Handler) {
	r.With(mw...).Get("/ws/{id}", s.handleWS)
}

// ErrorCode maps a session error to the code and message shown to the player.
func ErrorCode(err error) (code, message string) {
	switch {
	case errors.Is(err, ErrMalformedGuess):
		return "bad_input", MsgInvalidInput
	case errors.Is(err, ErrGameOver):
		return "game_over", MsgGameOver
	case errors.Is(err, ErrSessionNotFound):
		return "not_found", "session not found"
	default:
		return "internal", "internal error"
	}
}
