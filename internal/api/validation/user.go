package validation

import "github.com/workflows-scrum/workflows/internal/user"

// CreateUserRequest mirrors the fields of a create user request.
type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// ValidateCreateUserRequest validates a create user request.
func ValidateCreateUserRequest(req CreateUserRequest) []FieldError {
	var errs []FieldError

	errs = requiredText(errs, "name", req.Name, maxNameLen)
	errs = email(errs, "email", req.Email)
	errs = password(errs, "password", req.Password)
	if req.Role == "" {
		errs = append(errs, FieldError{Field: "role", Message: "role is required"})
	} else {
		errs = oneOf(errs, "role", req.Role, user.Roles)
	}

	return errs
}

// UpdateUserRequest mirrors the fields of an update user request. Nil fields
// are left unchanged; an empty password keeps the current one.
type UpdateUserRequest struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// ValidateUpdateUserRequest validates an update user request.
func ValidateUpdateUserRequest(req UpdateUserRequest) []FieldError {
	var errs []FieldError

	if req.Name != nil {
		errs = requiredText(errs, "name", *req.Name, maxNameLen)
	}
	if req.Email != nil {
		errs = email(errs, "email", *req.Email)
	}
	if req.Password != nil && *req.Password != "" {
		errs = password(errs, "password", *req.Password)
	}
	if req.Role != nil {
		errs = oneOf(errs, "role", *req.Role, user.Roles)
	}

	return errs
}
