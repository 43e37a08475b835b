package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/studyhub/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:              "test",
		AllowedOrigins:      []string{"http://localhost:3000"},
		IdentityJWTSecret:   "secret",
		ViewDedupeWindow:    time.Hour,
		AnonCommentCooldown: 30 * time.Second,
	}

	return NewServer(Deps{Config: cfg, DB: db, Log: zap.NewNop()})
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK},
		{"wrong method", http.MethodDelete, "/healthz", http.StatusMethodNotAllowed},
		{"me needs auth", http.MethodGet, "/api/me", http.StatusUnauthorized},
		{"admin needs auth", http.MethodGet, "/api/admin/users", http.StatusUnauthorized},
		{"rooms need auth", http.MethodGet, "/api/study-rooms/invitations", http.StatusUnauthorized},
		{"upload needs auth", http.MethodPost, "/api/upload", http.StatusUnauthorized},
		{"search without engine", http.MethodGet, "/api/search?q=graphs", http.StatusServiceUnavailable},
		{"search without query", http.MethodGet, "/api/search", http.StatusBadRequest},
		{"bad resource id", http.MethodGet, "/api/resources/not-a-uuid", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestOriginAllowed(t *testing.T) {
	allow := originAllowed([]string{"https://studyhub.dev"})

	assert.True(t, allow(""))
	assert.True(t, allow("https://studyhub.dev"))
	assert.False(t, allow("https://evil.example"))

	assert.True(t, originAllowed([]string{"*"})("https://anything.example"))
}
