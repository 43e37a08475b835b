package view

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRegisterWithoutRedisAlwaysCounts(t *testing.T) {
	svc := NewViewService(nil, 0, zap.NewNop())
	id := uuid.New()

	assert.True(t, svc.Register(context.Background(), KindBlog, id, "10.0.0.1"))
	assert.True(t, svc.Register(context.Background(), KindBlog, id, "10.0.0.1"))
}

func TestViewKey(t *testing.T) {
	id := uuid.MustParse("6f1f5c7e-1d2b-4a7e-9c1a-2b3c4d5e6f70")
	assert.Equal(t, "resource:viewed:6f1f5c7e-1d2b-4a7e-9c1a-2b3c4d5e6f70:user-1", viewKey(KindResource, id, "user-1"))
}
