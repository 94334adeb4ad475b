package validation

import (
	"fmt"

	"github.com/workflows-scrum/workflows/internal/evaluation"
)

// EvaluationRequest mirrors the fields of a create evaluation request.
type EvaluationRequest struct {
	TeamID   int64
	Score    *int
	Feedback *string
}

// ValidateEvaluationRequest validates a create evaluation request.
func ValidateEvaluationRequest(req EvaluationRequest) []FieldError {
	var errs []FieldError

	if req.TeamID <= 0 {
		errs = append(errs, FieldError{Field: "teamId", Message: "teamId is required"})
	}
	switch {
	case req.Score == nil:
		errs = append(errs, FieldError{Field: "score", Message: "score is required"})
	case *req.Score < evaluation.MinScore || *req.Score > evaluation.MaxScore:
		errs = append(errs, FieldError{Field: "score", Message: fmt.Sprintf("score must be between %d and %d", evaluation.MinScore, evaluation.MaxScore)})
	}
	errs = optionalText(errs, "feedback", req.Feedback, maxDescriptionLen)

	return errs
}
