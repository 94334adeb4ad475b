package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const evaluationSelect = `
	SELECT e.id, e.project_id, e.team_id, e.evaluator_id, e.score, e.feedback,
	       e.created_at, e.updated_at, t.name, u.name
	FROM evaluations e
	JOIN teams t ON t.id = e.team_id
	LEFT JOIN users u ON u.id = e.evaluator_id`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts an evaluation of a team within its project. Returns
// ErrTeamNotInProject when the team is missing or belongs to another project.
func (r *PostgresRepository) Create(ctx context.Context, e *Evaluation) error {
	if e.Score < MinScore || e.Score > MaxScore {
		return ErrScoreOutOfRange
	}

	query := `
		INSERT INTO evaluations (project_id, team_id, evaluator_id, score, feedback)
		SELECT t.project_id, t.id, $3::bigint, $4::integer, $5::text
		FROM teams t
		WHERE t.id = $2 AND t.project_id = $1
		RETURNING id, created_at, updated_at, (SELECT name FROM teams WHERE id = $2)`

	err := r.pool.QueryRow(ctx, query, e.ProjectID, e.TeamID, e.EvaluatorID, e.Score, e.Feedback).
		Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt, &e.TeamName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTeamNotInProject
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23514" {
			return ErrScoreOutOfRange
		}
		return fmt.Errorf("inserting evaluation: %w", err)
	}

	return nil
}

// ListByTeam retrieves the evaluations of a team, newest first.
func (r *PostgresRepository) ListByTeam(ctx context.Context, teamID int64) ([]Evaluation, error) {
	return r.list(ctx, evaluationSelect+` WHERE e.team_id = $1 ORDER BY e.created_at DESC, e.id DESC`, teamID)
}

// ListByProject retrieves the evaluations of every team of a project, newest first.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID int64) ([]Evaluation, error) {
	return r.list(ctx, evaluationSelect+` WHERE e.project_id = $1 ORDER BY e.created_at DESC, e.id DESC`, projectID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Evaluation, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing evaluations: %w", err)
	}
	defer rows.Close()

	evaluations := []Evaluation{}
	for rows.Next() {
		var e Evaluation
		err := rows.Scan(
			&e.ID, &e.ProjectID, &e.TeamID, &e.EvaluatorID, &e.Score, &e.Feedback,
			&e.CreatedAt, &e.UpdatedAt, &e.TeamName, &e.EvaluatorName,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning evaluation row: %w", err)
		}
		evaluations = append(evaluations, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating evaluation rows: %w", err)
	}

	return evaluations, nil
}
