package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type article struct {
	ID    uuid.UUID
	Title string
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestScopes(t *testing.T) {
	db := dryRun(t)
	topicID := uuid.New()

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []article
		return tx.Model(&article{}).
			Scopes(
				Search("graph", "title", "content"),
				HasTag("bfs"),
				Equal("category", "algorithms"),
				Equal("difficulty", ""),
				Placement(topicID.String(), "not-a-uuid"),
				Paginate(3, 10),
			).
			Find(&rows)
	})

	assert.Contains(t, sql, `(title ILIKE '%graph%' ESCAPE '\' OR content ILIKE '%graph%' ESCAPE '\')`)
	assert.Contains(t, sql, "'bfs' = ANY(tags)")
	assert.Contains(t, sql, "category = 'algorithms'")
	assert.NotContains(t, sql, "difficulty")
	assert.Contains(t, sql, "topic_id = '"+topicID.String()+"'")
	assert.NotContains(t, sql, "sub_topic_id")
	assert.Contains(t, sql, "LIMIT 10 OFFSET 20")
}

func TestSearchBlankIsNoop(t *testing.T) {
	db := dryRun(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []article
		return tx.Model(&article{}).Scopes(Search("   ", "title")).Find(&rows)
	})
	assert.NotContains(t, sql, "ILIKE")
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	db := dryRun(t)

	sql := db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []article
		return tx.Model(&article{}).Scopes(Search(`50%_off\`, "title")).Find(&rows)
	})
	assert.Contains(t, sql, `title ILIKE '%50\%\_off\\%' ESCAPE '\'`)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%graph%", ContainsPattern("graph"))
	assert.Equal(t, `%a\_b\%c%`, ContainsPattern("a_b%c"))
	assert.Equal(t, `%c:\\tmp%`, ContainsPattern(`c:\tmp`))
}
