package project

import "time"

// Project statuses.
const (
	StatusActive     = "active"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Statuses lists the valid project statuses.
var Statuses = []string{StatusActive, StatusInProgress, StatusCompleted}

// ValidStatus reports whether s is a known project status.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Project represents a row in the projects table.
type Project struct {
	ID          int64
	Name        string
	Description *string
	OwnerID     int64
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListFilter narrows a project listing. Zero values mean no filter.
type ListFilter struct {
	OwnerID int64
}

// UpdateFields holds updatable fields on a project. Nil fields are not updated.
type UpdateFields struct {
	Name        *string
	Description *string
	Status      *string
}
