package repository

import (
	"context"
	"testing"

	"anoa.com/studyhub/internal/entity"
	"anoa.com/studyhub/pkg/database/dbtest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateLeavesCounters(t *testing.T) {
	db, rec := dbtest.New(t)

	resource := &entity.InterviewResource{
		ID:        uuid.New(),
		Title:     "System design primer",
		Type:      entity.ResourceTypeLink,
		Views:     10,
		Downloads: 4,
		Rating:    4.5,
	}
	require.NoError(t, NewResourceRepository(db).Update(context.Background(), resource))

	stmts := rec.Statements()
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], `"title"='System design primer'`)
	for _, column := range []string{`"views"=`, `"downloads"=`, `"rating"=`} {
		assert.NotContains(t, stmts[0], column)
	}
}
