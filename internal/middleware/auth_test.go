package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"anoa.com/studyhub/internal/entity"
	userDto "anoa.com/studyhub/internal/modules/user/dto"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

type stubProvisioner struct {
	users map[string]*entity.User
	calls int
}

func (s *stubProvisioner) EnsureUserExists(ctx context.Context, identity userDto.Identity) (*entity.User, error) {
	s.calls++
	if u, ok := s.users[identity.ExternalID]; ok {
		return u, nil
	}
	u := &entity.User{ID: uuid.New(), ExternalID: identity.ExternalID, Role: entity.RoleUser}
	s.users[identity.ExternalID] = u
	return u, nil
}

func signToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()
	claims := IdentityClaims{
		Email: "dev@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newRouter(m *AuthMiddleware) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))

	whoami := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(response.ContextUserID),
			"role":    c.GetString(response.ContextUserRole),
		})
	}

	r.GET("/private", m.RequireAuth(), whoami)
	r.GET("/public", m.OptionalAuth(), whoami)
	r.GET("/admin", m.RequireAuth(), m.RequireAdmin(), whoami)
	return r
}

func do(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	prov := &stubProvisioner{users: map[string]*entity.User{}}
	r := newRouter(NewAuthMiddleware(prov, testSecret, ""))

	w := do(r, "/private", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/private", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/private", signToken(t, "user_1", -time.Minute))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/private", signToken(t, "user_1", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), prov.users["user_1"].ID.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequireAuthRejectsOtherSecret(t *testing.T) {
	prov := &stubProvisioner{users: map[string]*entity.User{}}
	r := newRouter(NewAuthMiddleware(prov, "another-secret", ""))

	w := do(r, "/private", signToken(t, "user_1", time.Hour))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, prov.calls)
}

func TestOptionalAuth(t *testing.T) {
	prov := &stubProvisioner{users: map[string]*entity.User{}}
	r := newRouter(NewAuthMiddleware(prov, testSecret, ""))

	w := do(r, "/public", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	w = do(r, "/public", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, "/public", signToken(t, "user_2", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), prov.users["user_2"].ID.String())
}

func TestRequireAdmin(t *testing.T) {
	prov := &stubProvisioner{users: map[string]*entity.User{
		"boss": {ID: uuid.New(), ExternalID: "boss", Role: entity.RoleAdmin},
	}}
	r := newRouter(NewAuthMiddleware(prov, testSecret, ""))

	w := do(r, "/admin", signToken(t, "pleb", time.Hour))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, "/admin", signToken(t, "boss", time.Hour))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"ADMIN"`)
}

func TestTokenFromQuery(t *testing.T) {
	prov := &stubProvisioner{users: map[string]*entity.User{}}
	r := newRouter(NewAuthMiddleware(prov, testSecret, ""))

	req := httptest.NewRequest(http.MethodGet, "/private?token="+signToken(t, "ws_user", time.Hour), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
