package comment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workflows-scrum/workflows/internal/task"
	"github.com/workflows-scrum/workflows/internal/user"
)

const commentSelect = `
	SELECT c.id, c.task_id, c.user_id, c.content, c.created_at, c.updated_at, u.name
	FROM comments c
	JOIN users u ON u.id = c.user_id`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new comment and fills in its author name.
func (r *PostgresRepository) Create(ctx context.Context, c *Comment) error {
	query := `
		WITH inserted AS (
			INSERT INTO comments (task_id, user_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, created_at, updated_at
		)
		SELECT i.id, i.created_at, i.updated_at, u.name
		FROM inserted i
		JOIN users u ON u.id = i.user_id`

	err := r.pool.QueryRow(ctx, query, c.TaskID, c.UserID, c.Content).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.AuthorName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			if pgErr.ConstraintName == "comments_user_id_fkey" {
				return user.ErrUserNotFound
			}
			return task.ErrTaskNotFound
		}
		return fmt.Errorf("inserting comment: %w", err)
	}

	return nil
}

// GetByID retrieves a single comment by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Comment, error) {
	var c Comment
	err := r.pool.QueryRow(ctx, commentSelect+` WHERE c.id = $1`, id).Scan(
		&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt, &c.AuthorName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("querying comment: %w", err)
	}
	return &c, nil
}

// ListByTask retrieves the comments of a task, oldest first.
func (r *PostgresRepository) ListByTask(ctx context.Context, taskID int64) ([]Comment, error) {
	rows, err := r.pool.Query(ctx, commentSelect+` WHERE c.task_id = $1 ORDER BY c.created_at ASC, c.id ASC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt, &c.AuthorName); err != nil {
			return nil, fmt.Errorf("scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating comment rows: %w", err)
	}

	return comments, nil
}

// Delete removes exactly one comment by id.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrCommentNotFound
	}

	return nil
}
