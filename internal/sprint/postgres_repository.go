package sprint

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workflows-scrum/workflows/internal/project"
)

const sprintColumns = `id, project_id, name, goal, start_date, end_date, status, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new sprint, defaulting its status to planned.
func (r *PostgresRepository) Create(ctx context.Context, s *Sprint) error {
	if s.Status == "" {
		s.Status = StatusPlanned
	}

	query := `
		INSERT INTO sprints (project_id, name, goal, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, s.ProjectID, s.Name, s.Goal, s.StartDate, s.EndDate, s.Status).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return project.ErrProjectNotFound
		}
		return fmt.Errorf("inserting sprint: %w", err)
	}

	return nil
}

// GetByID retrieves a single sprint by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Sprint, error) {
	return r.scanOne(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = $1`, id)
}

// ListByProject retrieves the sprints of a project ordered by start date, then id.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID int64) ([]Sprint, error) {
	query := `
		SELECT ` + sprintColumns + `
		FROM sprints
		WHERE project_id = $1
		ORDER BY start_date ASC NULLS LAST, id ASC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing sprints: %w", err)
	}
	defer rows.Close()

	sprints := []Sprint{}
	for rows.Next() {
		var s Sprint
		if err := scanSprint(rows, &s); err != nil {
			return nil, fmt.Errorf("scanning sprint row: %w", err)
		}
		sprints = append(sprints, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sprint rows: %w", err)
	}

	return sprints, nil
}

// Update modifies the given fields on a sprint and returns the updated row.
func (r *PostgresRepository) Update(ctx context.Context, id int64, fields UpdateFields) (*Sprint, error) {
	var setClauses []string
	var args []any
	argIdx := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if fields.Name != nil {
		set("name", *fields.Name)
	}
	if fields.Goal != nil {
		set("goal", *fields.Goal)
	}
	if fields.StartDate != nil {
		set("start_date", *fields.StartDate)
	}
	if fields.EndDate != nil {
		set("end_date", *fields.EndDate)
	}
	if fields.Status != nil {
		set("status", *fields.Status)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE sprints
		SET %s
		WHERE id = $%d
		RETURNING %s`, strings.Join(setClauses, ", "), argIdx, sprintColumns)

	return r.scanOne(ctx, query, args...)
}

// Delete removes exactly one sprint by id. Its tasks are removed by cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM sprints WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting sprint: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrSprintNotFound
	}

	return nil
}

func (r *PostgresRepository) scanOne(ctx context.Context, query string, args ...any) (*Sprint, error) {
	var s Sprint
	if err := scanSprint(r.pool.QueryRow(ctx, query, args...), &s); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSprintNotFound
		}
		return nil, fmt.Errorf("scanning sprint row: %w", err)
	}
	return &s, nil
}

func scanSprint(row pgx.Row, s *Sprint) error {
	return row.Scan(
		&s.ID, &s.ProjectID, &s.Name, &s.Goal, &s.StartDate, &s.EndDate,
		&s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
}
