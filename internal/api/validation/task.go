package validation

import (
	"time"

	"github.com/workflows-scrum/workflows/internal/task"
)

// TaskRequest mirrors the fields of a task create or update request.
type TaskRequest struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	StoryPoints *int
	AssigneeID  *int64
	SprintID    *int64
	DueDate     *string
}

// ValidateTaskRequest validates a task request. On create the title is
// required; on update only the given fields are checked. The parsed due date
// is returned when present and valid.
func ValidateTaskRequest(req TaskRequest, create bool) ([]FieldError, *time.Time) {
	var errs []FieldError

	switch {
	case req.Title != nil:
		errs = requiredText(errs, "title", *req.Title, maxNameLen)
	case create:
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	errs = optionalText(errs, "description", req.Description, maxDescriptionLen)
	if req.Status != nil {
		errs = oneOf(errs, "status", *req.Status, task.Statuses)
	}
	if req.Priority != nil {
		errs = oneOf(errs, "priority", *req.Priority, task.Priorities)
	}
	if req.StoryPoints != nil && (*req.StoryPoints < 0 || *req.StoryPoints > 100) {
		errs = append(errs, FieldError{Field: "storyPoints", Message: "storyPoints must be between 0 and 100"})
	}
	if req.AssigneeID != nil && *req.AssigneeID < 0 {
		errs = append(errs, FieldError{Field: "assigneeId", Message: "assigneeId must be a user id, or 0 to unassign"})
	}
	if req.SprintID != nil && *req.SprintID < 0 {
		errs = append(errs, FieldError{Field: "sprintId", Message: "sprintId must be a sprint id, or 0 for the backlog"})
	}

	var due *time.Time
	errs, due = date(errs, "dueDate", req.DueDate)

	return errs, due
}
