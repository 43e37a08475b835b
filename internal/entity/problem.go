package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

type ProblemExample struct {
	Input       string `json:"input"`
	Output      string `json:"output"`
	Explanation string `json:"explanation,omitempty"`
}

type LeetcodeProblem struct {
	ID            uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string                              `gorm:"size:255;not null" json:"title"`
	Description   string                              `gorm:"type:text" json:"description"`
	Difficulty    string                              `gorm:"size:10;not null;index" json:"difficulty"`
	Category      string                              `gorm:"size:100;index" json:"category"`
	Tags          pq.StringArray                      `gorm:"type:text[]" json:"tags"`
	Companies     pq.StringArray                      `gorm:"type:text[]" json:"companies"`
	Hints         pq.StringArray                      `gorm:"type:text[]" json:"hints"`
	Examples      datatypes.JSONSlice[ProblemExample] `json:"examples"`
	FollowUp      string                              `gorm:"type:text" json:"follow_up"`
	LeetcodeURL   string                              `gorm:"type:text" json:"leetcode_url"`
	ProblemNumber *int                                `gorm:"uniqueIndex" json:"problem_number"`
	IsPremium     bool                                `gorm:"not null;default:false" json:"is_premium"`
	Acceptance    float64                             `gorm:"not null;default:0" json:"acceptance"`
	TopicID       *uuid.UUID                          `gorm:"type:uuid;index" json:"topic_id"`
	SubTopicID    *uuid.UUID                          `gorm:"type:uuid;index" json:"sub_topic_id"`
	Solutions     []Solution                          `gorm:"foreignKey:ProblemID;constraint:OnDelete:CASCADE" json:"solutions"`
	Resources     []ProblemResource                   `gorm:"foreignKey:ProblemID;constraint:OnDelete:CASCADE" json:"resources"`
	CreatedAt     time.Time                           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time                           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt                      `gorm:"index" json:"-"`
}

func (p *LeetcodeProblem) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}

// Solution rows keep their submitted order in Position.
type Solution struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProblemID       uuid.UUID `gorm:"type:uuid;not null;index" json:"problem_id"`
	Position        int       `gorm:"not null;default:0" json:"position"`
	Language        string    `gorm:"size:50;not null" json:"language"`
	Code            string    `gorm:"type:text;not null" json:"code"`
	Approach        string    `gorm:"type:text" json:"approach"`
	TimeComplexity  string    `gorm:"size:100" json:"time_complexity"`
	SpaceComplexity string    `gorm:"size:100" json:"space_complexity"`
	Explanation     string    `gorm:"type:text" json:"explanation"`
	Notes           string    `gorm:"type:text" json:"notes"`
	IsOptimal       bool      `gorm:"not null;default:false" json:"is_optimal"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (s *Solution) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}

const (
	ProblemResourceArticle       = "article"
	ProblemResourceVideo         = "video"
	ProblemResourceDocumentation = "documentation"
	ProblemResourceDiscussion    = "discussion"
	ProblemResourceOther         = "other"
)

type ProblemResource struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProblemID   uuid.UUID `gorm:"type:uuid;not null;index" json:"problem_id"`
	Position    int       `gorm:"not null;default:0" json:"position"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Type        string    `gorm:"size:20;not null" json:"type"`
	URL         string    `gorm:"type:text;not null" json:"url"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *ProblemResource) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}
