package sprint

import "time"

// Sprint statuses.
const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// Statuses lists the valid sprint statuses.
var Statuses = []string{StatusPlanned, StatusActive, StatusCompleted}

// ValidStatus reports whether s is a known sprint status.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Sprint represents a row in the sprints table.
type Sprint struct {
	ID        int64
	ProjectID int64
	Name      string
	Goal      *string
	StartDate *time.Time
	EndDate   *time.Time
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpdateFields holds updatable fields on a sprint. Nil fields are not updated.
type UpdateFields struct {
	Name      *string
	Goal      *string
	StartDate *time.Time
	EndDate   *time.Time
	Status    *string
}
