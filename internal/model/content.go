package model

type ContentType string

const (
	ContentVideo       ContentType = "video"
	ContentArticle     ContentType = "article"
	ContentWorksheet   ContentType = "worksheet"
	ContentInteractive ContentType = "interactive"
	ContentQuiz        ContentType = "quiz"
	ContentLesson      ContentType = "lesson"
)

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// ContentItem is an indexed educational resource. It is created by an
// external ingestion process and read-only to this service.
//
// DurationMinutes is nil when the source gave no duration; the absence must
// propagate through plan generation rather than being replaced by a guess.
// swagger:model ContentItem
type ContentItem struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Subject         string          `json:"subject"`
	Topics          []string        `json:"topics,omitempty"`
	ContentType     ContentType     `json:"content_type"`
	Difficulty      DifficultyLevel `json:"difficulty_level"`
	GradeLevels     []int           `json:"grade_levels,omitempty"`
	DurationMinutes *int            `json:"duration_minutes,omitempty"`
	URL             string          `json:"url"`
	Keywords        []string        `json:"keywords,omitempty"`
}
