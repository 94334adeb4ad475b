package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflows-scrum/workflows/internal/api/handler"
	"github.com/workflows-scrum/workflows/internal/sprint"
	"github.com/workflows-scrum/workflows/internal/task"
	"github.com/workflows-scrum/workflows/internal/user"
)

// --- Mock Task Repository ---

type mockTaskRepo struct {
	createFn         func(ctx context.Context, t *task.Task) error
	getByIDFn        func(ctx context.Context, id int64) (*task.Task, error)
	listBySprintFn   func(ctx context.Context, sprintID int64) ([]task.Task, error)
	listByProjectFn  func(ctx context.Context, projectID int64) ([]task.Task, error)
	listByAssigneeFn func(ctx context.Context, userID int64) ([]task.Task, error)
	updateFn         func(ctx context.Context, id int64, fields task.UpdateFields) (*task.Task, error)
	deleteFn         func(ctx context.Context, id int64) error
}

func (m *mockTaskRepo) Create(ctx context.Context, t *task.Task) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	t.ID = 1
	return nil
}

func (m *mockTaskRepo) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, task.ErrTaskNotFound
}

func (m *mockTaskRepo) ListBySprint(ctx context.Context, sprintID int64) ([]task.Task, error) {
	if m.listBySprintFn != nil {
		return m.listBySprintFn(ctx, sprintID)
	}
	return []task.Task{}, nil
}

func (m *mockTaskRepo) ListByProject(ctx context.Context, projectID int64) ([]task.Task, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, projectID)
	}
	return []task.Task{}, nil
}

func (m *mockTaskRepo) ListByAssignee(ctx context.Context, userID int64) ([]task.Task, error) {
	if m.listByAssigneeFn != nil {
		return m.listByAssigneeFn(ctx, userID)
	}
	return []task.Task{}, nil
}

func (m *mockTaskRepo) Update(ctx context.Context, id int64, fields task.UpdateFields) (*task.Task, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, fields)
	}
	return nil, task.ErrTaskNotFound
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func sampleTask(id int64) *task.Task {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	sprintID := int64(1)
	return &task.Task{
		ID:          id,
		ProjectID:   2,
		ProjectName: "Alpha",
		SprintID:    &sprintID,
		Title:       "Login form",
		Status:      task.StatusTodo,
		Priority:    task.PriorityMedium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// existingTask returns a task repo whose GetByID finds only id.
func existingTask(id int64) *mockTaskRepo {
	return &mockTaskRepo{getByIDFn: func(_ context.Context, got int64) (*task.Task, error) {
		if got == id {
			return sampleTask(id), nil
		}
		return nil, task.ErrTaskNotFound
	}}
}

func TestTaskCreate_UsesSprintProject(t *testing.T) {
	t.Parallel()

	var created *task.Task
	repo := &mockTaskRepo{
		createFn: func(_ context.Context, tk *task.Task) error {
			created = tk
			tk.ID = 12
			return nil
		},
		getByIDFn: func(_ context.Context, id int64) (*task.Task, error) {
			tk := sampleTask(id)
			tk.Priority = task.PriorityHigh
			return tk, nil
		},
	}
	h := handler.NewTaskHandler(repo, existingSprint(1), existingProject(2))

	body := mustJSON(t, map[string]interface{}{"title": "Login form", "priority": "high", "dueDate": "2024-03-10", "storyPoints": 5})
	req, w := makeChiRequest(http.MethodPost, "/api/sprints/1/tasks", body, "/api/sprints/{id}/tasks", map[string]string{"id": "1"})
	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, created)
	assert.Equal(t, int64(2), created.ProjectID)
	require.NotNil(t, created.SprintID)
	assert.Equal(t, int64(1), *created.SprintID)
	assert.Equal(t, "high", created.Priority)
	require.NotNil(t, created.DueDate)
	assert.Equal(t, 10, created.DueDate.Day())

	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(12), data["id"])
	assert.Equal(t, "Alpha", data["projectName"])
}

func TestTaskCreate_SprintNotFound(t *testing.T) {
	t.Parallel()

	h := handler.NewTaskHandler(&mockTaskRepo{}, existingSprint(1), existingProject(2))

	body := mustJSON(t, map[string]interface{}{"title": "Login form"})
	req, w := makeChiRequest(http.MethodPost, "/api/sprints/5/tasks", body, "/api/sprints/{id}/tasks", map[string]string{"id": "5"})
	h.Create(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskCreate_UnknownAssignee(t *testing.T) {
	t.Parallel()

	repo := &mockTaskRepo{
		createFn: func(_ context.Context, _ *task.Task) error { return user.ErrUserNotFound },
	}
	h := handler.NewTaskHandler(repo, existingSprint(1), existingProject(2))

	body := mustJSON(t, map[string]interface{}{"title": "Login form", "assigneeId": 99})
	req, w := makeChiRequest(http.MethodPost, "/api/sprints/1/tasks", body, "/api/sprints/{id}/tasks", map[string]string{"id": "1"})
	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestTaskCreate_MissingTitle(t *testing.T) {
	t.Parallel()

	h := handler.NewTaskHandler(&mockTaskRepo{}, existingSprint(1), existingProject(2))

	req, w := makeChiRequest(http.MethodPost, "/api/sprints/1/tasks", []byte(`{"priority":"urgent"}`), "/api/sprints/{id}/tasks", map[string]string{"id": "1"})
	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	details := parseEnvelope(t, w)["error"].(map[string]interface{})["details"].([]interface{})
	assert.Len(t, details, 2)
}

func TestTaskListBySprintAndProject(t *testing.T) {
	t.Parallel()

	repo := &mockTaskRepo{
		listBySprintFn: func(_ context.Context, _ int64) ([]task.Task, error) {
			return []task.Task{*sampleTask(1), *sampleTask(2)}, nil
		},
		listByProjectFn: func(_ context.Context, _ int64) ([]task.Task, error) {
			return []task.Task{*sampleTask(1)}, nil
		},
	}
	h := handler.NewTaskHandler(repo, existingSprint(1), existingProject(2))

	req, w := makeChiRequest(http.MethodGet, "/api/sprints/1/tasks", nil, "/api/sprints/{id}/tasks", map[string]string{"id": "1"})
	h.ListBySprint(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, parseEnvelope(t, w)["data"], 2)

	req, w = makeChiRequest(http.MethodGet, "/api/projects/2/tasks", nil, "/api/projects/{id}/tasks", map[string]string{"id": "2"})
	h.ListByProject(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, parseEnvelope(t, w)["data"], 1)

	req, w = makeChiRequest(http.MethodGet, "/api/projects/3/tasks", nil, "/api/projects/{id}/tasks", map[string]string{"id": "3"})
	h.ListByProject(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskListByAssignee(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		query  string
		wantID int64
	}{
		{"default is me", "", testSession.UserID},
		{"me", "?assignee=me", testSession.UserID},
		{"explicit id", "?assignee=3", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got int64
			repo := &mockTaskRepo{
				listByAssigneeFn: func(_ context.Context, userID int64) ([]task.Task, error) {
					got = userID
					return []task.Task{}, nil
				},
			}
			h := handler.NewTaskHandler(repo, &mockSprintRepo{}, &mockProjectRepo{})

			req, w := makeChiRequest(http.MethodGet, "/api/tasks"+tt.query, nil, "/api/tasks", nil)
			h.ListByAssignee(w, authed(req))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantID, got)
		})
	}
}

func TestTaskListByAssignee_InvalidID(t *testing.T) {
	t.Parallel()

	h := handler.NewTaskHandler(&mockTaskRepo{}, &mockSprintRepo{}, &mockProjectRepo{})

	req, w := makeChiRequest(http.MethodGet, "/api/tasks?assignee=bob", nil, "/api/tasks", nil)
	h.ListByAssignee(w, authed(req))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", errorCode(t, w))
}

func TestTaskUpdate_ClearsAssignee(t *testing.T) {
	t.Parallel()

	var got task.UpdateFields
	repo := &mockTaskRepo{
		updateFn: func(_ context.Context, id int64, fields task.UpdateFields) (*task.Task, error) {
			got = fields
			return sampleTask(id), nil
		},
	}
	h := handler.NewTaskHandler(repo, &mockSprintRepo{}, &mockProjectRepo{})

	body := mustJSON(t, map[string]interface{}{"assigneeId": 0, "status": "in_progress"})
	req, w := makeChiRequest(http.MethodPut, "/api/tasks/4", body, "/api/tasks/{id}", map[string]string{"id": "4"})
	h.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, int64(0), *got.AssigneeID)
	assert.Equal(t, "in_progress", *got.Status)
	assert.Nil(t, got.Title)
}

func TestTaskUpdate_UnknownSprint(t *testing.T) {
	t.Parallel()

	repo := &mockTaskRepo{
		updateFn: func(_ context.Context, _ int64, _ task.UpdateFields) (*task.Task, error) {
			return nil, sprint.ErrSprintNotFound
		},
	}
	h := handler.NewTaskHandler(repo, &mockSprintRepo{}, &mockProjectRepo{})

	body := mustJSON(t, map[string]interface{}{"sprintId": 77})
	req, w := makeChiRequest(http.MethodPut, "/api/tasks/4", body, "/api/tasks/{id}", map[string]string{"id": "4"})
	h.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskUpdate_SprintOfAnotherProject(t *testing.T) {
	t.Parallel()

	updateCalled := false
	repo := existingTask(5)
	repo.updateFn = func(_ context.Context, id int64, _ task.UpdateFields) (*task.Task, error) {
		updateCalled = true
		return sampleTask(id), nil
	}
	sprints := &mockSprintRepo{getByIDFn: func(_ context.Context, id int64) (*sprint.Sprint, error) {
		return sampleSprint(id, 3), nil
	}}
	h := handler.NewTaskHandler(repo, sprints, &mockProjectRepo{})

	body := mustJSON(t, map[string]interface{}{"sprintId": 9})
	req, w := makeChiRequest(http.MethodPut, "/api/tasks/5", body, "/api/tasks/{id}", map[string]string{"id": "5"})
	h.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
	assert.False(t, updateCalled)
	assert.Contains(t, w.Body.String(), "sprintId")
}

func TestTaskUpdate_SprintOfSameProject(t *testing.T) {
	t.Parallel()

	var got task.UpdateFields
	repo := existingTask(5)
	repo.updateFn = func(_ context.Context, id int64, fields task.UpdateFields) (*task.Task, error) {
		got = fields
		return sampleTask(id), nil
	}
	h := handler.NewTaskHandler(repo, existingSprint(9), &mockProjectRepo{})

	body := mustJSON(t, map[string]interface{}{"sprintId": 9})
	req, w := makeChiRequest(http.MethodPut, "/api/tasks/5", body, "/api/tasks/{id}", map[string]string{"id": "5"})
	h.Update(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.SprintID)
	assert.Equal(t, int64(9), *got.SprintID)
}

func TestTaskUpdate_SprintOutsideProjectFromRepository(t *testing.T) {
	t.Parallel()

	repo := existingTask(5)
	repo.updateFn = func(_ context.Context, _ int64, _ task.UpdateFields) (*task.Task, error) {
		return nil, task.ErrSprintOutsideProject
	}
	h := handler.NewTaskHandler(repo, existingSprint(9), &mockProjectRepo{})

	body := mustJSON(t, map[string]interface{}{"sprintId": 9})
	req, w := makeChiRequest(http.MethodPut, "/api/tasks/5", body, "/api/tasks/{id}", map[string]string{"id": "5"})
	h.Update(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTaskGetAndDelete(t *testing.T) {
	t.Parallel()

	repo := existingTask(4)
	repo.deleteFn = func(_ context.Context, id int64) error {
		if id != 4 {
			return task.ErrTaskNotFound
		}
		return nil
	}
	h := handler.NewTaskHandler(repo, &mockSprintRepo{}, &mockProjectRepo{})

	req, w := makeChiRequest(http.MethodGet, "/api/tasks/4", nil, "/api/tasks/{id}", map[string]string{"id": "4"})
	h.Get(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, w = makeChiRequest(http.MethodDelete, "/api/tasks/4", nil, "/api/tasks/{id}", map[string]string{"id": "4"})
	h.Delete(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, w = makeChiRequest(http.MethodDelete, "/api/tasks/5", nil, "/api/tasks/{id}", map[string]string{"id": "5"})
	h.Delete(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
