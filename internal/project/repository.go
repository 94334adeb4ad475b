package project

import (
	"context"
	"errors"
)

// ErrProjectNotFound is returned when a project record is not found.
var ErrProjectNotFound = errors.New("project not found")

// ErrOwnerNotFound is returned when the owner referenced by a project does not exist.
var ErrOwnerNotFound = errors.New("project owner not found")

// Repository provides CRUD operations on the projects table.
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	List(ctx context.Context, filter ListFilter) ([]Project, error)
	ListForMember(ctx context.Context, userID int64) ([]Project, error)
	Update(ctx context.Context, id int64, fields UpdateFields) (*Project, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}
