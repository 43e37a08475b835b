package dto

import (
	"anoa.com/studyhub/internal/entity"
	"github.com/google/uuid"
)

type SolutionInput struct {
	Language        string `json:"language" binding:"required,max=50"`
	Code            string `json:"code" binding:"required"`
	Approach        string `json:"approach"`
	TimeComplexity  string `json:"time_complexity" binding:"max=100"`
	SpaceComplexity string `json:"space_complexity" binding:"max=100"`
	Explanation     string `json:"explanation"`
	Notes           string `json:"notes"`
	IsOptimal       bool   `json:"is_optimal"`
}

type ResourceInput struct {
	Title       string `json:"title" binding:"required,max=255"`
	Type        string `json:"type" binding:"required,oneof=article video documentation discussion other"`
	URL         string `json:"url" binding:"required,url"`
	Description string `json:"description"`
}

type CreateProblemRequest struct {
	Title         string                  `json:"title" binding:"required,max=255"`
	Description   string                  `json:"description"`
	Difficulty    string                  `json:"difficulty" binding:"required"`
	Category      string                  `json:"category" binding:"max=100"`
	Tags          []string                `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Companies     []string                `json:"companies" binding:"omitempty,max=50,dive,max=100"`
	Hints         []string                `json:"hints"`
	Examples      []entity.ProblemExample `json:"examples"`
	FollowUp      string                  `json:"follow_up"`
	LeetcodeURL   string                  `json:"leetcode_url" binding:"omitempty,url"`
	ProblemNumber *int                    `json:"problem_number" binding:"omitempty,min=1"`
	IsPremium     bool                    `json:"is_premium"`
	Acceptance    float64                 `json:"acceptance" binding:"min=0,max=100"`
	TopicID       *uuid.UUID              `json:"topic_id"`
	SubTopicID    *uuid.UUID              `json:"sub_topic_id"`
	Solutions     []SolutionInput         `json:"solutions" binding:"omitempty,dive"`
	Resources     []ResourceInput         `json:"resources" binding:"omitempty,dive"`
}

// UpdateProblemRequest changes present fields only. A present Solutions or
// Resources list replaces the stored set entirely.
type UpdateProblemRequest struct {
	Title         *string                  `json:"title" binding:"omitempty,min=1,max=255"`
	Description   *string                  `json:"description"`
	Difficulty    *string                  `json:"difficulty"`
	Category      *string                  `json:"category" binding:"omitempty,max=100"`
	Tags          *[]string                `json:"tags" binding:"omitempty,max=20,dive,max=50"`
	Companies     *[]string                `json:"companies"`
	Hints         *[]string                `json:"hints"`
	Examples      *[]entity.ProblemExample `json:"examples"`
	FollowUp      *string                  `json:"follow_up"`
	LeetcodeURL   *string                  `json:"leetcode_url" binding:"omitempty,url"`
	ProblemNumber *int                     `json:"problem_number" binding:"omitempty,min=1"`
	IsPremium     *bool                    `json:"is_premium"`
	Acceptance    *float64                 `json:"acceptance" binding:"omitempty,min=0,max=100"`
	TopicID       *uuid.UUID               `json:"topic_id"`
	SubTopicID    *uuid.UUID               `json:"sub_topic_id"`
	Solutions     *[]SolutionInput         `json:"solutions" binding:"omitempty,dive"`
	Resources     *[]ResourceInput         `json:"resources" binding:"omitempty,dive"`

	// ClearPlacement detaches the problem from its topic and subtopic.
	ClearPlacement bool `json:"clear_placement"`
}

// BulkImportRequest items are validated one by one so a bad item is reported
// instead of rejecting the batch.
type BulkImportRequest struct {
	Problems []CreateProblemRequest `json:"problems" binding:"required,min=1,max=500"`
}

type BulkImportItem struct {
	Index         int        `json:"index"`
	Title         string     `json:"title"`
	ProblemNumber *int       `json:"problem_number,omitempty"`
	ID            *uuid.UUID `json:"id,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

type BulkImportResult struct {
	Created []BulkImportItem `json:"created"`
	Skipped []BulkImportItem `json:"skipped"`
	Failed  []BulkImportItem `json:"failed"`
}

type SolutionResponse struct {
	ID              uuid.UUID `json:"id"`
	Language        string    `json:"language"`
	Code            string    `json:"code"`
	Approach        string    `json:"approach"`
	TimeComplexity  string    `json:"time_complexity"`
	SpaceComplexity string    `json:"space_complexity"`
	Explanation     string    `json:"explanation"`
	Notes           string    `json:"notes"`
	IsOptimal       bool      `json:"is_optimal"`
}

type ResourceResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
}

type ProblemResponse struct {
	ID            uuid.UUID               `json:"id"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description"`
	Difficulty    string                  `json:"difficulty"`
	Category      string                  `json:"category"`
	Tags          []string                `json:"tags"`
	Companies     []string                `json:"companies"`
	Hints         []string                `json:"hints"`
	Examples      []entity.ProblemExample `json:"examples"`
	FollowUp      string                  `json:"follow_up"`
	LeetcodeURL   string                  `json:"leetcode_url"`
	ProblemNumber *int                    `json:"problem_number"`
	IsPremium     bool                    `json:"is_premium"`
	Acceptance    float64                 `json:"acceptance"`
	TopicID       *uuid.UUID              `json:"topic_id"`
	SubTopicID    *uuid.UUID              `json:"sub_topic_id"`
	Solutions     []SolutionResponse      `json:"solutions"`
	Resources     []ResourceResponse      `json:"resources"`
	CreatedAt     string                  `json:"created_at"`
	UpdatedAt     string                  `json:"updated_at"`
}
