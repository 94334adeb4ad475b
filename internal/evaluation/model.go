package evaluation

import "time"

// Score bounds, inclusive.
const (
	MinScore = 0
	MaxScore = 100
)

// Evaluation represents a row in the evaluations table.
type Evaluation struct {
	ID          int64
	ProjectID   int64
	TeamID      int64
	EvaluatorID *int64
	Score       int
	Feedback    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated on reads.
	TeamName      string
	EvaluatorName *string
}
