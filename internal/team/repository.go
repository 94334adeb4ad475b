package team

import (
	"context"
	"errors"
)

// ErrTeamNotFound is returned when a team record is not found.
var ErrTeamNotFound = errors.New("team not found")

// ErrMemberNotFound is returned when a team member record is not found.
var ErrMemberNotFound = errors.New("team member not found")

// ErrAlreadyMember is returned when the user already belongs to the team.
var ErrAlreadyMember = errors.New("user is already a member of the team")

// ErrInvalidRole is returned for a member role outside MemberRoles.
var ErrInvalidRole = errors.New("invalid member role")

// Repository provides operations on the teams and team_members tables.
type Repository interface {
	CreateTeam(ctx context.Context, team *Team) error
	GetTeam(ctx context.Context, id int64) (*Team, error)
	ListByProject(ctx context.Context, projectID int64) ([]Team, error)
	GetOrCreateMainTeam(ctx context.Context, projectID int64) (*Team, error)

	AddMember(ctx context.Context, member *Member) error
	GetMember(ctx context.Context, id int64) (*MemberDetail, error)
	ListMembersByTeam(ctx context.Context, teamID int64) ([]MemberDetail, error)
	ListProjectMembers(ctx context.Context, projectID int64) ([]MemberDetail, error)
	ListMembersForUser(ctx context.Context, userID int64) ([]MemberDetail, error)
	UpdateMemberRole(ctx context.Context, id int64, role string) (*MemberDetail, error)
	DeleteMember(ctx context.Context, id int64) error
}
