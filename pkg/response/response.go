package response

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"anoa.com/studyhub/pkg/apperror"
	"anoa.com/studyhub/pkg/dto"
	"anoa.com/studyhub/pkg/ratelimiter"
	"anoa.com/studyhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// OptionalUserID returns the caller's id on routes where authentication is optional.
func OptionalUserID(c *gin.Context) *uuid.UUID {
	userID, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &userID
}

// IsAdmin reports whether the authenticated caller carries the ADMIN role.
func IsAdmin(c *gin.Context) bool {
	return c.GetString(ContextUserRole) == "ADMIN"
}

// GetViewer returns the caller as a dto.Viewer, or nil when anonymous.
func GetViewer(c *gin.Context) *dto.Viewer {
	userID := OptionalUserID(c)
	if userID == nil {
		return nil
	}
	return &dto.Viewer{ID: *userID, IsAdmin: IsAdmin(c)}
}

// ParseUUIDParam reads a path parameter as uuid.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid " + name)
	}
	return id, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	var rateErr *ratelimiter.RateLimitError
	if errors.As(err, &rateErr) && rateErr.RetryAfter > 0 {
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(rateErr.RetryAfter.Seconds()))))
	}

	if code == http.StatusInternalServerError {
		zap.L().Error("internal error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(code, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// BindError reports a request binding failure as 400.
func BindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
}
