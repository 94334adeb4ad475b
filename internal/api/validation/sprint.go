package validation

import (
	"time"

	"github.com/workflows-scrum/workflows/internal/sprint"
)

// SprintRequest mirrors the fields of a sprint create or update request.
type SprintRequest struct {
	Name      *string
	Goal      *string
	StartDate *string
	EndDate   *string
	Status    *string
}

// SprintDates holds the parsed dates of a valid SprintRequest.
type SprintDates struct {
	Start *time.Time
	End   *time.Time
}

// ValidateSprintRequest validates a sprint request. On create the name is
// required; on update only the given fields are checked.
func ValidateSprintRequest(req SprintRequest, create bool) ([]FieldError, SprintDates) {
	var errs []FieldError
	var dates SprintDates

	switch {
	case req.Name != nil:
		errs = requiredText(errs, "name", *req.Name, maxNameLen)
	case create:
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	errs = optionalText(errs, "goal", req.Goal, maxDescriptionLen)
	errs, dates.Start = date(errs, "startDate", req.StartDate)
	errs, dates.End = date(errs, "endDate", req.EndDate)
	if dates.Start != nil && dates.End != nil && dates.End.Before(*dates.Start) {
		errs = append(errs, FieldError{Field: "endDate", Message: "endDate must not be before startDate"})
	}
	if req.Status != nil {
		errs = oneOf(errs, "status", *req.Status, sprint.Statuses)
	}

	return errs, dates
}
