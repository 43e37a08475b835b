package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"anoa.com/studyhub/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

// RateLimitError carries how long the caller has to wait.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

func key(subject, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", subject, action)
}

// CheckAndSetRateLimit takes the cooldown slot for subject/action. It reports
// false when the slot is already held. A nil client never limits.
func CheckAndSetRateLimit(ctx context.Context, rdb *redis.Client, subject, action string, limit time.Duration) (bool, error) {
	if rdb == nil {
		return true, nil
	}

	wasSet, err := rdb.SetNX(ctx, key(subject, action), "locked", limit).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}

	return wasSet, nil
}

func GetRateLimitTTL(ctx context.Context, rdb *redis.Client, subject, action string) (time.Duration, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.TTL(ctx, key(subject, action)).Result()
}

func ClearRateLimit(ctx context.Context, rdb *redis.Client, subject, action string) error {
	if rdb == nil {
		return nil
	}
	_, err := rdb.Del(ctx, key(subject, action)).Result()
	return err
}
