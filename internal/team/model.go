package team

import "time"

// MainTeamName is the name given to a project's automatically created team.
const MainTeamName = "Equipo Principal"

// Roles a user can hold within a project team.
const (
	RoleProductOwner = "product_owner"
	RoleScrumMaster  = "scrum_master"
	RoleTeamMember   = "team_member"
)

// MemberRoles lists the valid member roles.
var MemberRoles = []string{RoleProductOwner, RoleScrumMaster, RoleTeamMember}

// ValidMemberRole reports whether role is a known member role.
func ValidMemberRole(role string) bool {
	for _, r := range MemberRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Team represents a row in the teams table.
type Team struct {
	ID        int64
	Name      string
	ProjectID int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member represents a row in the team_members table.
type Member struct {
	ID        int64
	TeamID    int64
	UserID    int64
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberDetail is a member joined with its team's project and the member's user.
type MemberDetail struct {
	Member
	ProjectID   int64
	ProjectName string
	UserName    string
	UserEmail   string
}
