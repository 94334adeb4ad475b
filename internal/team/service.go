package team

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/user"
)

// UserLookup resolves users by id.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// ProjectLookup resolves projects by id.
type ProjectLookup interface {
	GetByID(ctx context.Context, id int64) (*project.Project, error)
}

// Service manages project membership. Members are always assigned to the
// project's main team.
type Service struct {
	repo     Repository
	users    UserLookup
	projects ProjectLookup
}

// NewService creates a new membership Service.
func NewService(repo Repository, users UserLookup, projects ProjectLookup) *Service {
	return &Service{repo: repo, users: users, projects: projects}
}

// ListProjectMembers returns the members of a project. Returns
// project.ErrProjectNotFound when the project does not exist.
func (s *Service) ListProjectMembers(ctx context.Context, projectID int64) ([]MemberDetail, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListProjectMembers(ctx, projectID)
}

// AssignMember adds a user to the project's main team with the given role,
// creating the team when the project has none yet.
func (s *Service) AssignMember(ctx context.Context, projectID, userID int64, role string) (*MemberDetail, error) {
	if !ValidMemberRole(role) {
		return nil, ErrInvalidRole
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	mainTeam, err := s.repo.GetOrCreateMainTeam(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("resolving main team: %w", err)
	}

	m := &Member{TeamID: mainTeam.ID, UserID: userID, Role: role}
	if err := s.repo.AddMember(ctx, m); err != nil {
		return nil, err
	}

	slog.Info("member assigned",
		"projectId", projectID, "teamId", mainTeam.ID, "userId", userID, "memberId", m.ID, "role", role)

	return s.repo.GetMember(ctx, m.ID)
}

// UpdateMemberRole changes the role of an existing member.
func (s *Service) UpdateMemberRole(ctx context.Context, memberID int64, role string) (*MemberDetail, error) {
	if !ValidMemberRole(role) {
		return nil, ErrInvalidRole
	}
	return s.repo.UpdateMemberRole(ctx, memberID, role)
}

// RemoveMember deletes exactly one member.
func (s *Service) RemoveMember(ctx context.Context, memberID int64) error {
	if err := s.repo.DeleteMember(ctx, memberID); err != nil {
		return err
	}
	slog.Info("member removed", "memberId", memberID)
	return nil
}
