package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/studyhub/internal/entity"
	userDto "anoa.com/studyhub/internal/modules/user/dto"
	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// UserProvisioner resolves an identity-provider subject to a local user.
type UserProvisioner interface {
	EnsureUserExists(ctx context.Context, identity userDto.Identity) (*entity.User, error)
}

// IdentityClaims is the session token issued by the identity provider.
type IdentityClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type AuthMiddleware struct {
	users  UserProvisioner
	secret []byte
	issuer string
}

func NewAuthMiddleware(users UserProvisioner, secret, issuer string) *AuthMiddleware {
	return &AuthMiddleware{
		users:  users,
		secret: []byte(secret),
		issuer: issuer,
	}
}

// RequireAuth rejects requests without a valid identity.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		if !m.authenticate(c, tokenString) {
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the caller when a token is present and lets anonymous
// requests through. A token that is present but invalid is still rejected.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		if !m.authenticate(c, tokenString) {
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(response.ContextUserID); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}

		if !response.IsAdmin(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}

		c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *gin.Context, tokenString string) bool {
	claims, err := m.parse(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return false
	}

	user, err := m.users.EnsureUserExists(c.Request.Context(), userDto.Identity{
		ExternalID: claims.Subject,
		Email:      claims.Email,
		Name:       claims.Name,
	})
	if err != nil {
		response.ResponseError(c, err)
		c.Abort()
		return false
	}

	c.Set(response.ContextUserID, user.ID.String())
	c.Set(response.ContextUserRole, string(user.Role))
	return true
}

func (m *AuthMiddleware) parse(tokenString string) (*IdentityClaims, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, apperror.ErrUnauthorized
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || claims.Subject == "" {
		return nil, apperror.ErrUnauthorized
	}
	return claims, nil
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	// Fallback to query parameter "token" (useful for WebSockets)
	return c.Query("token")
}
