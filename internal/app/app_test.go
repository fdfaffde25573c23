package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"example.com/bulls-cows/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InMemoryRoutes(t *testing.T) {
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	cfg.Redis.Addr = ""

	static := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("page"))
	})

	a, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{Static: static})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	cases := []struct {
		method, path string
		wantCode     int
		wantBody     string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, "ok"},
		{http.MethodGet, "/", http.StatusOK, "page"},
		{http.MethodPost, "/api/sessions", http.StatusCreated, ""},
		{http.MethodGet, "/api/sessions/x", http.StatusUnauthorized, ""},
		{http.MethodGet, "/ws/x", http.StatusUnauthorized, ""},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantBody != "" {
				assert.Equal(t, tc.wantBody, rec.Body.String())
			}
		})
	}
}

func TestNew_RedisUnreachable(t *testing.T) {
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err = New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{})
	require.Error(t, err)
}
