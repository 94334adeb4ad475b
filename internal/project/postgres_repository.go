package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const projectColumns = `p.id, p.name, p.description, p.owner_id, p.status, p.created_at, p.updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new project record, defaulting its status to active.
func (r *PostgresRepository) Create(ctx context.Context, p *Project) error {
	if p.Status == "" {
		p.Status = StatusActive
	}

	query := `
		INSERT INTO projects (name, description, owner_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, p.Name, p.Description, p.OwnerID, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("inserting project: %w", err)
	}

	return nil
}

// GetByID retrieves a single project by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p WHERE p.id = $1`
	return r.scanOne(ctx, query, id)
}

// List retrieves projects, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects p`
	var args []any
	if filter.OwnerID != 0 {
		query += ` WHERE p.owner_id = $1`
		args = append(args, filter.OwnerID)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`

	return r.scanMany(ctx, query, args...)
}

// ListForMember retrieves the projects a user owns or belongs to through a team.
func (r *PostgresRepository) ListForMember(ctx context.Context, userID int64) ([]Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		WHERE p.owner_id = $1
		   OR EXISTS (
		       SELECT 1
		       FROM teams t
		       JOIN team_members tm ON tm.team_id = t.id
		       WHERE t.project_id = p.id AND tm.user_id = $1
		   )
		ORDER BY p.created_at DESC, p.id DESC`

	return r.scanMany(ctx, query, userID)
}

// Update modifies the given fields on a project and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id int64, fields UpdateFields) (*Project, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	if fields.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *fields.Name)
		argIdx++
	}
	if fields.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *fields.Description)
		argIdx++
	}
	if fields.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *fields.Status)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE projects p
		SET %s
		WHERE p.id = $%d
		RETURNING %s`, strings.Join(setClauses, ", "), argIdx, projectColumns)

	return r.scanOne(ctx, query, args...)
}

// Delete removes exactly one project by id. Teams, members, sprints, tasks and
// evaluations of the project are removed by cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

// Count returns the total number of projects.
func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting projects: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Project, error) {
	var p Project
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("scanning project row: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) scanMany(ctx context.Context, query string, args ...any) ([]Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project rows: %w", err)
	}

	return projects, nil
}
