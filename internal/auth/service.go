package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/workflows-scrum/workflows/internal/user"
)

// ErrInvalidCredentials is returned when the email is unknown or the password
// does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// UserStore is the subset of user.Repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// Service provides password and account operations.
type Service struct {
	users        UserStore
	bcryptCost   int
	registerRole string
}

// NewService creates a new auth Service. registerRole is the role given to
// self-registered accounts.
func NewService(users UserStore, bcryptCost int, registerRole string) *Service {
	return &Service{
		users:        users,
		bcryptCost:   bcryptCost,
		registerRole: registerRole,
	}
}

// HashPassword returns the bcrypt hash of password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Login verifies the credentials and returns the matching user.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// Register creates a self-service account. The stored name is the first and
// last name joined by a space.
func (s *Service) Register(ctx context.Context, name, lastName, email, password string) (*user.User, error) {
	fullName := strings.TrimSpace(strings.TrimSpace(name) + " " + strings.TrimSpace(lastName))
	return s.CreateUser(ctx, fullName, email, password, s.registerRole)
}

// CreateUser hashes password and stores a new user. Returns
// user.ErrDuplicateEmail when the email is taken.
func (s *Service) CreateUser(ctx context.Context, name, email, password, role string) (*user.User, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &user.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	slog.Info("user created", "userId", u.ID, "role", u.Role)
	return u, nil
}

// BootstrapAdmin creates the default administrator unless a user with the
// given email already exists. Reports whether a user was created.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return false, fmt.Errorf("looking up admin: %w", err)
	}

	u, err := s.CreateUser(ctx, "Administrador", email, password, user.RoleAdmin)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("creating admin: %w", err)
	}

	slog.Info("default admin created", "userId", u.ID, "email", u.Email)
	return true, nil
}

// SessionFor builds the session payload for u.
func SessionFor(u *user.User) Session {
	return Session{UserID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
