package dto

const (
	IndexBlogs     = "blogs"
	IndexNotes     = "notes"
	IndexProblems  = "problems"
	IndexResources = "resources"
)

// Indexes lists every index the platform writes to, in search order.
var Indexes = []string{IndexBlogs, IndexNotes, IndexProblems, IndexResources}

// Document is the flattened, plain-text shape pushed to the search engine.
type Document struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Public    bool     `json:"public"`
	CreatedAt int64    `json:"created_at"`
}

type SearchQuery struct {
	Q     string `form:"q" binding:"required,max=200"`
	Index string `form:"index" binding:"omitempty,oneof=blogs notes problems resources"`
	Limit int    `form:"limit" binding:"omitempty,min=1,max=50"`
}

type SearchHit struct {
	Index    string   `json:"index"`
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Excerpt  string   `json:"excerpt"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

type SearchResponse struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}
