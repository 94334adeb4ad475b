package validation

import "github.com/workflows-scrum/workflows/internal/project"

// ProjectRequest mirrors the fields of a project create or update request.
type ProjectRequest struct {
	Name        string
	Description *string
	Status      *string
}

// ValidateProjectRequest validates a project create or update request. The
// name is required in both cases.
func ValidateProjectRequest(req ProjectRequest) []FieldError {
	var errs []FieldError

	errs = requiredText(errs, "name", req.Name, maxNameLen)
	errs = optionalText(errs, "description", req.Description, maxDescriptionLen)
	if req.Status != nil {
		errs = oneOf(errs, "status", *req.Status, project.Statuses)
	}

	return errs
}
