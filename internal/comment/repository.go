package comment

import (
	"context"
	"errors"
)

// ErrCommentNotFound is returned when a comment record is not found.
var ErrCommentNotFound = errors.New("comment not found")

// Repository provides operations on the comments table.
type Repository interface {
	Create(ctx context.Context, comment *Comment) error
	GetByID(ctx context.Context, id int64) (*Comment, error)
	ListByTask(ctx context.Context, taskID int64) ([]Comment, error)
	Delete(ctx context.Context, id int64) error
}
