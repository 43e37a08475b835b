package view

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	KindBlog     = "blog"
	KindResource = "resource"
	KindDownload = "download"
)

// ViewService decides whether a read counts towards a view counter. The
// counter itself is incremented by the owning repository.
type ViewService interface {
	// Register reports true when viewer has not been counted for kind/id
	// within the dedupe window.
	Register(ctx context.Context, kind string, id uuid.UUID, viewer string) bool
}

type viewService struct {
	redisClient *redis.Client
	window      time.Duration
	log         *zap.Logger
}

func NewViewService(redisClient *redis.Client, window time.Duration, log *zap.Logger) ViewService {
	if window <= 0 {
		window = time.Hour
	}
	return &viewService{
		redisClient: redisClient,
		window:      window,
		log:         log,
	}
}

func viewKey(kind string, id uuid.UUID, viewer string) string {
	return fmt.Sprintf("%s:viewed:%s:%s", kind, id, viewer)
}

func (s *viewService) Register(ctx context.Context, kind string, id uuid.UUID, viewer string) bool {
	if s.redisClient == nil || viewer == "" {
		return true
	}

	first, err := s.redisClient.SetNX(ctx, viewKey(kind, id, viewer), "viewed", s.window).Result()
	if err != nil {
		s.log.Warn("view dedupe unavailable, counting view",
			zap.String("kind", kind),
			zap.String("id", id.String()),
			zap.Error(err))
		return true
	}
	return first
}
