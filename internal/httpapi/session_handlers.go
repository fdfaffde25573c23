package httpapi

import (
	"errors"
	"net/http"
	"time"

	"example.com/bulls-cows/internal/game"
	"github.com/go-chi/chi/v5"
)

type TokenSigner interface {
	Sign(sessionID string, ttl time.Duration) (string, error)
}

type SessionHandler struct {
	Sessions *game.SessionService
	Tokens   TokenSigner
	TokenTTL time.Duration
}

type CreateSessionResponse struct {
	SessionID string            `json:"sessionId"`
	Token     string            `json:"token"`
	State     game.SessionState `json:"state"`
}

type GuessRequest struct {
	Guess string `json:"guess"`
}

// RegisterRoutes mounts the session API; auth guards everything except creation.
func (h *SessionHandler) RegisterRoutes(r chi.Router, auth func(http.Handler) http.Handler) {
	r.Post("/api/sessions", h.Create)
	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Get("/api/sessions/{id}", h.Get)
		r.Post("/api/sessions/{id}/guesses", h.Guess)
	})
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Create(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to create session")
		return
	}

	token, err := h.Tokens.Sign(sess.ID(), h.TokenTTL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: sess.ID(),
		Token:     token,
		State:     sess.State(),
	})
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Sessions.Get(sessionID(r))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (h *SessionHandler) Guess(w http.ResponseWriter, r *http.Request) {
	var req GuessRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid json")
		return
	}

	out, err := h.Sessions.Submit(r.Context(), sessionID(r), req.Guess)
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// sessionID prefers the session the token was issued for; SessionAuth has
// already rejected a mismatching {id}.
func sessionID(r *http.Request) string {
	if id, ok := SessionIDFromContext(r.Context()); ok {
		return id
	}
	return chi.URLParam(r, "id")
}

func writeSessionError(w http.ResponseWriter, err error) {
	code, msg := game.ErrorCode(err)
	switch {
	case errors.Is(err, game.ErrMalformedGuess):
		writeError(w, http.StatusUnprocessableEntity, code, msg)
	case errors.Is(err, game.ErrGameOver):
		writeError(w, http.StatusConflict, code, msg)
	case errors.Is(err, game.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, code, msg)
	default:
		writeError(w, http.StatusInternalServerError, code, msg)
	}
}
