package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/user"
)

const teamColumns = `id, name, project_id, created_at, updated_at`

const memberDetailSelect = `
	SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.created_at, tm.updated_at,
	       t.project_id, p.name, u.name, u.email
	FROM team_members tm
	JOIN teams t ON t.id = tm.team_id
	JOIN projects p ON p.id = t.project_id
	JOIN users u ON u.id = tm.user_id`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// CreateTeam inserts a new team record.
func (r *PostgresRepository) CreateTeam(ctx context.Context, t *Team) error {
	query := `
		INSERT INTO teams (name, project_id)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, t.Name, t.ProjectID).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return project.ErrProjectNotFound
		}
		return fmt.Errorf("inserting team: %w", err)
	}

	return nil
}

// GetTeam retrieves a single team by id.
func (r *PostgresRepository) GetTeam(ctx context.Context, id int64) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`

	var t Team
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return &t, nil
}

// ListByProject retrieves the teams of a project, oldest first.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID int64) ([]Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE project_id = $1 ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	teams := []Team{}
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team rows: %w", err)
	}

	return teams, nil
}

// GetOrCreateMainTeam returns the project's first team, creating it when the
// project has none. The project row is locked so concurrent callers agree on
// a single main team.
func (r *PostgresRepository) GetOrCreateMainTeam(ctx context.Context, projectID int64) (*Team, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked int64
	err = tx.QueryRow(ctx, `SELECT id FROM projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound
		}
		return nil, fmt.Errorf("locking project: %w", err)
	}

	var t Team
	err = tx.QueryRow(ctx,
		`SELECT `+teamColumns+` FROM teams WHERE project_id = $1 ORDER BY id ASC LIMIT 1`, projectID,
	).Scan(&t.ID, &t.Name, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt)
	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx, `
			INSERT INTO teams (name, project_id)
			VALUES ($1, $2)
			RETURNING `+teamColumns, MainTeamName, projectID,
		).Scan(&t.ID, &t.Name, &t.ProjectID, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("creating main team: %w", err)
		}
	default:
		return nil, fmt.Errorf("querying main team: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing main team: %w", err)
	}

	return &t, nil
}

// AddMember inserts a team member. Returns ErrAlreadyMember when the user is
// already on the team.
func (r *PostgresRepository) AddMember(ctx context.Context, m *Member) error {
	if m.Role == "" {
		m.Role = RoleTeamMember
	}

	query := `
		INSERT INTO team_members (team_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, m.TeamID, m.UserID, m.Role).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == "23505":
				return ErrAlreadyMember
			case pgErr.Code == "23503" && pgErr.ConstraintName == "team_members_user_id_fkey":
				return user.ErrUserNotFound
			case pgErr.Code == "23503":
				return ErrTeamNotFound
			}
		}
		return fmt.Errorf("inserting team member: %w", err)
	}

	return nil
}

// GetMember retrieves a single member with project and user details.
func (r *PostgresRepository) GetMember(ctx context.Context, id int64) (*MemberDetail, error) {
	var md MemberDetail
	err := scanMemberDetail(r.pool.QueryRow(ctx, memberDetailSelect+` WHERE tm.id = $1`, id), &md)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("querying team member: %w", err)
	}
	return &md, nil
}

// ListMembersByTeam retrieves the members of one team in insertion order.
func (r *PostgresRepository) ListMembersByTeam(ctx context.Context, teamID int64) ([]MemberDetail, error) {
	return r.listMembers(ctx, memberDetailSelect+` WHERE tm.team_id = $1 ORDER BY tm.id ASC`, teamID)
}

// ListProjectMembers retrieves the members of every team of a project.
func (r *PostgresRepository) ListProjectMembers(ctx context.Context, projectID int64) ([]MemberDetail, error) {
	return r.listMembers(ctx, memberDetailSelect+` WHERE t.project_id = $1 ORDER BY tm.id ASC`, projectID)
}

// ListMembersForUser retrieves the members of every project the user owns or
// belongs to, the user included.
func (r *PostgresRepository) ListMembersForUser(ctx context.Context, userID int64) ([]MemberDetail, error) {
	query := memberDetailSelect + `
		WHERE p.owner_id = $1
		   OR t.project_id IN (
		       SELECT t2.project_id
		       FROM team_members tm2
		       JOIN teams t2 ON t2.id = tm2.team_id
		       WHERE tm2.user_id = $1
		   )
		ORDER BY p.name ASC, tm.id ASC`
	return r.listMembers(ctx, query, userID)
}

// UpdateMemberRole sets the role of a member and returns the updated member.
func (r *PostgresRepository) UpdateMemberRole(ctx context.Context, id int64, role string) (*MemberDetail, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE team_members SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
	if err != nil {
		return nil, fmt.Errorf("updating team member: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrMemberNotFound
	}

	return r.GetMember(ctx, id)
}

// DeleteMember removes exactly one member by id.
func (r *PostgresRepository) DeleteMember(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM team_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting team member: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	return nil
}

func (r *PostgresRepository) listMembers(ctx context.Context, query string, args ...any) ([]MemberDetail, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing team members: %w", err)
	}
	defer rows.Close()

	members := []MemberDetail{}
	for rows.Next() {
		var md MemberDetail
		if err := scanMemberDetail(rows, &md); err != nil {
			return nil, fmt.Errorf("scanning team member row: %w", err)
		}
		members = append(members, md)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating team member rows: %w", err)
	}

	return members, nil
}

func scanMemberDetail(row pgx.Row, md *MemberDetail) error {
	return row.Scan(
		&md.ID, &md.TeamID, &md.UserID, &md.Role, &md.CreatedAt, &md.UpdatedAt,
		&md.ProjectID, &md.ProjectName, &md.UserName, &md.UserEmail,
	)
}
