package validation

import "github.com/workflows-scrum/workflows/internal/team"

// AssignMemberRequest mirrors the fields of an assign member request.
type AssignMemberRequest struct {
	UserID int64
	Role   string
}

// ValidateAssignMemberRequest validates an assign member request.
func ValidateAssignMemberRequest(req AssignMemberRequest) []FieldError {
	var errs []FieldError

	if req.UserID <= 0 {
		errs = append(errs, FieldError{Field: "userId", Message: "userId is required"})
	}
	errs = ValidateMemberRole(errs, req.Role)

	return errs
}

// ValidateMemberRole appends an error to errs when role is missing or unknown.
func ValidateMemberRole(errs []FieldError, role string) []FieldError {
	if role == "" {
		return append(errs, FieldError{Field: "role", Message: "role is required"})
	}
	return oneOf(errs, "role", role, team.MemberRoles)
}
