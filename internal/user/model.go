package user

import "time"

// Roles a user account can hold.
const (
	RoleAdmin         = "admin"
	RoleScrumMaster   = "scrum_master"
	RoleProductOwner  = "product_owner"
	RoleTeamDeveloper = "team_developer"
)

// Roles lists the valid user roles in display order.
var Roles = []string{RoleAdmin, RoleScrumMaster, RoleProductOwner, RoleTeamDeveloper}

var roleNames = map[string]string{
	RoleAdmin:         "Administrador",
	RoleScrumMaster:   "Scrum Master",
	RoleProductOwner:  "Product Owner",
	RoleTeamDeveloper: "Team Developer",
}

// ValidRole reports whether role is a known user role.
func ValidRole(role string) bool {
	_, ok := roleNames[role]
	return ok
}

// FormatRole returns the display name for role. Unknown roles are returned as-is.
func FormatRole(role string) string {
	if name, ok := roleNames[role]; ok {
		return name
	}
	return role
}

// User represents a row in the users table.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ListFilter holds optional filters and pagination for listing users.
type ListFilter struct {
	Search string // partial match on name or email (ILIKE)
	Role   string
	Page   int // default 1
	Limit  int // default 20
}

// ListResult holds the result of a paginated list query.
type ListResult struct {
	Users []User
	Total int
	Page  int
	Limit int
}

// UpdateFields holds updatable fields on a user. Nil fields are not updated.
type UpdateFields struct {
	Name         *string
	Email        *string
	Role         *string
	PasswordHash *string
}
