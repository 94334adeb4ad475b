package task

import "time"

// Task statuses.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Statuses lists the valid task statuses.
var Statuses = []string{StatusTodo, StatusInProgress, StatusDone}

// Priorities lists the valid task priorities.
var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool { return contains(Statuses, s) }

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool { return contains(Priorities, p) }

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Task represents a row in the tasks table.
type Task struct {
	ID          int64
	ProjectID   int64
	SprintID    *int64
	Title       string
	Description *string
	Status      string
	Priority    string
	StoryPoints *int
	AssigneeID  *int64
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Populated on reads.
	ProjectName  string
	AssigneeName *string
}

// UpdateFields holds updatable fields on a task. Nil fields are not updated.
// A zero SprintID or AssigneeID clears the reference.
type UpdateFields struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	StoryPoints *int
	SprintID    *int64
	AssigneeID  *int64
	DueDate     *time.Time
}
