package user

import (
	"context"
	"errors"
)

// ErrUserNotFound is returned when a user record is not found.
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when another user already has the email.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrUserOwnsProjects is returned when deleting a user that still owns projects.
var ErrUserOwnsProjects = errors.New("user owns projects")

// Repository provides CRUD operations on the users table.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, id int64, fields UpdateFields) (*User, error)
	Delete(ctx context.Context, id int64) error
	CountAll(ctx context.Context) (int, error)
}
