package service

import (
	"context"
	"fmt"

	"anoa.com/studyhub/internal/modules/stat/dto"
)

// CountFunc is any counter exposed by a content service.
type CountFunc func(ctx context.Context) (int64, error)

// Sources names the counter behind every figure. Blogs counts published
// posts only.
type Sources struct {
	Users     CountFunc
	Blogs     CountFunc
	Notes     CountFunc
	Problems  CountFunc
	Resources CountFunc
}

type StatService interface {
	GetStats(ctx context.Context) (*dto.StatsResponse, error)
}

type statService struct {
	sources Sources
}

func NewStatService(sources Sources) StatService {
	return &statService{sources: sources}
}

func (s *statService) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	var stats dto.StatsResponse

	counters := []struct {
		name  string
		count CountFunc
		into  *int64
	}{
		{"users", s.sources.Users, &stats.Users},
		{"blogs", s.sources.Blogs, &stats.Blogs},
		{"notes", s.sources.Notes, &stats.Notes},
		{"problems", s.sources.Problems, &stats.Problems},
		{"resources", s.sources.Resources, &stats.Resources},
	}

	for _, c := range counters {
		if c.count == nil {
			continue
		}
		n, err := c.count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.name, err)
		}
		*c.into = n
	}

	return &stats, nil
}
