package database

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Paginate applies limit/offset for a one-based page.
func Paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 {
			page = 1
		}
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// ContainsPattern turns term into an ILIKE pattern matching it literally
// anywhere in the value. Use it with ILIKE ? ESCAPE '\'.
func ContainsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// Search matches term case-insensitively against any of columns. Wildcards
// in term match themselves.
func Search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := ContainsPattern(term)
		conds := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			conds[i] = col + ` ILIKE ? ESCAPE '\'`
			args[i] = pattern
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// HasTag matches rows whose text[] tags column contains tag.
func HasTag(tag string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if tag == "" {
			return db
		}
		return db.Where("? = ANY(tags)", tag)
	}
}

// Equal filters column = value when value is non-empty.
func Equal(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if value == "" {
			return db
		}
		return db.Where(column+" = ?", value)
	}
}

// Placement filters by topic and subtopic ids given as strings.
func Placement(topicID, subTopicID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id, err := uuid.Parse(topicID); err == nil {
			db = db.Where("topic_id = ?", id)
		}
		if id, err := uuid.Parse(subTopicID); err == nil {
			db = db.Where("sub_topic_id = ?", id)
		}
		return db
	}
}
