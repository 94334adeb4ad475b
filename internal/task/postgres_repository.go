package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/sprint"
	"github.com/workflows-scrum/workflows/internal/user"
)

const taskSelect = `
	SELECT t.id, t.project_id, t.sprint_id, t.title, t.description, t.status, t.priority,
	       t.story_points, t.assignee_id, t.due_date, t.created_at, t.updated_at,
	       p.name, u.name
	FROM tasks t
	JOIN projects p ON p.id = t.project_id
	LEFT JOIN users u ON u.id = t.assignee_id`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new task, defaulting status to todo and priority to medium.
func (r *PostgresRepository) Create(ctx context.Context, t *Task) error {
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}

	query := `
		INSERT INTO tasks (project_id, sprint_id, title, description, status, priority,
		                   story_points, assignee_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		t.ProjectID, t.SprintID, t.Title, t.Description, t.Status, t.Priority,
		t.StoryPoints, t.AssigneeID, t.DueDate,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if ferr := foreignKeyError(err); ferr != nil {
			return ferr
		}
		return fmt.Errorf("inserting task: %w", err)
	}

	return nil
}

// GetByID retrieves a single task by id.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Task, error) {
	var t Task
	if err := scanTask(r.pool.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return &t, nil
}

// ListBySprint retrieves the tasks of a sprint.
func (r *PostgresRepository) ListBySprint(ctx context.Context, sprintID int64) ([]Task, error) {
	return r.list(ctx, taskSelect+` WHERE t.sprint_id = $1 ORDER BY t.id ASC`, sprintID)
}

// ListByProject retrieves every task of a project, backlog included.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID int64) ([]Task, error) {
	return r.list(ctx, taskSelect+` WHERE t.project_id = $1 ORDER BY t.id ASC`, projectID)
}

// ListByAssignee retrieves the tasks assigned to a user, soonest due first.
func (r *PostgresRepository) ListByAssignee(ctx context.Context, userID int64) ([]Task, error) {
	return r.list(ctx, taskSelect+` WHERE t.assignee_id = $1 ORDER BY t.due_date ASC NULLS LAST, t.id ASC`, userID)
}

// Update modifies the given fields on a task and returns the updated task.
func (r *PostgresRepository) Update(ctx context.Context, id int64, fields UpdateFields) (*Task, error) {
	var setClauses []string
	var args []any
	argIdx := 1
	sprintArg := 0

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if fields.Title != nil {
		set("title", *fields.Title)
	}
	if fields.Description != nil {
		set("description", *fields.Description)
	}
	if fields.Status != nil {
		set("status", *fields.Status)
	}
	if fields.Priority != nil {
		set("priority", *fields.Priority)
	}
	if fields.StoryPoints != nil {
		set("story_points", *fields.StoryPoints)
	}
	if fields.SprintID != nil {
		if *fields.SprintID > 0 {
			sprintArg = argIdx
		}
		set("sprint_id", nullableID(*fields.SprintID))
	}
	if fields.AssigneeID != nil {
		set("assignee_id", nullableID(*fields.AssigneeID))
	}
	if fields.DueDate != nil {
		set("due_date", *fields.DueDate)
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), argIdx)
	if sprintArg > 0 {
		// The sprint must belong to the task's own project.
		query += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM sprints s WHERE s.id = $%d AND s.project_id = tasks.project_id)`, sprintArg)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if ferr := foreignKeyError(err); ferr != nil {
			return nil, ferr
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}
	if result.RowsAffected() == 0 {
		if sprintArg > 0 {
			return nil, r.sprintMismatch(ctx, id, *fields.SprintID)
		}
		return nil, ErrTaskNotFound
	}

	return r.GetByID(ctx, id)
}

// sprintMismatch explains why an update guarded by a sprint touched no row.
func (r *PostgresRepository) sprintMismatch(ctx context.Context, id, sprintID int64) error {
	var taskExists, sprintExists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1), EXISTS (SELECT 1 FROM sprints WHERE id = $2)`,
		id, sprintID,
	).Scan(&taskExists, &sprintExists)
	if err != nil {
		return fmt.Errorf("checking task sprint: %w", err)
	}

	switch {
	case !taskExists:
		return ErrTaskNotFound
	case !sprintExists:
		return sprint.ErrSprintNotFound
	default:
		return ErrSprintOutsideProject
	}
}

// Delete removes exactly one task by id. Its comments are removed by cascade.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}

	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := scanTask(rows, &t); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}

	return tasks, nil
}

func scanTask(row pgx.Row, t *Task) error {
	return row.Scan(
		&t.ID, &t.ProjectID, &t.SprintID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.StoryPoints, &t.AssigneeID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		&t.ProjectName, &t.AssigneeName,
	)
}

// foreignKeyError maps a foreign key violation to the sentinel of the missing row.
func foreignKeyError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23503" {
		return nil
	}
	switch pgErr.ConstraintName {
	case "tasks_sprint_id_fkey":
		return sprint.ErrSprintNotFound
	case "tasks_assignee_id_fkey":
		return user.ErrUserNotFound
	default:
		return project.ErrProjectNotFound
	}
}

func nullableID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}
