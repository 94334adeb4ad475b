package task

import (
	"context"
	"errors"
)

// ErrTaskNotFound is returned when a task record is not found.
var ErrTaskNotFound = errors.New("task not found")

// ErrSprintOutsideProject is returned when a task is moved into a sprint of
// another project.
var ErrSprintOutsideProject = errors.New("sprint belongs to another project")

// Repository provides CRUD operations on the tasks table.
type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id int64) (*Task, error)
	ListBySprint(ctx context.Context, sprintID int64) ([]Task, error)
	ListByProject(ctx context.Context, projectID int64) ([]Task, error)
	ListByAssignee(ctx context.Context, userID int64) ([]Task, error)
	Update(ctx context.Context, id int64, fields UpdateFields) (*Task, error)
	Delete(ctx context.Context, id int64) error
}
