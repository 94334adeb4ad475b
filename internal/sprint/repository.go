package sprint

import (
	"context"
	"errors"
)

// ErrSprintNotFound is returned when a sprint record is not found.
var ErrSprintNotFound = errors.New("sprint not found")

// Repository provides CRUD operations on the sprints table.
type Repository interface {
	Create(ctx context.Context, sprint *Sprint) error
	GetByID(ctx context.Context, id int64) (*Sprint, error)
	ListByProject(ctx context.Context, projectID int64) ([]Sprint, error)
	Update(ctx context.Context, id int64, fields UpdateFields) (*Sprint, error)
	Delete(ctx context.Context, id int64) error
}
