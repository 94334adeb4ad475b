package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/sprint"
	"github.com/workflows-scrum/workflows/internal/task"
	"github.com/workflows-scrum/workflows/internal/user"
)

// SprintLookup resolves sprints by id.
type SprintLookup interface {
	GetByID(ctx context.Context, id int64) (*sprint.Sprint, error)
}

// TaskHandler handles task endpoints.
type TaskHandler struct {
	tasks    task.Repository
	sprints  SprintLookup
	projects ProjectLookup
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks task.Repository, sprints SprintLookup, projects ProjectLookup) *TaskHandler {
	return &TaskHandler{tasks: tasks, sprints: sprints, projects: projects}
}

type taskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	StoryPoints *int    `json:"storyPoints"`
	AssigneeID  *int64  `json:"assigneeId"`
	SprintID    *int64  `json:"sprintId"`
	DueDate     *string `json:"dueDate"`
}

type taskResponse struct {
	ID           int64   `json:"id"`
	ProjectID    int64   `json:"projectId"`
	ProjectName  string  `json:"projectName"`
	SprintID     *int64  `json:"sprintId"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	StoryPoints  *int    `json:"storyPoints"`
	AssigneeID   *int64  `json:"assigneeId"`
	AssigneeName *string `json:"assigneeName"`
	DueDate      *string `json:"dueDate"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

func toTaskResponse(t *task.Task) taskResponse {
	return taskResponse{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		ProjectName:  t.ProjectName,
		SprintID:     t.SprintID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		Priority:     t.Priority,
		StoryPoints:  t.StoryPoints,
		AssigneeID:   t.AssigneeID,
		AssigneeName: t.AssigneeName,
		DueDate:      formatDate(t.DueDate),
		CreatedAt:    formatTime(t.CreatedAt),
		UpdatedAt:    formatTime(t.UpdatedAt),
	}
}

func writeTasks(w http.ResponseWriter, tasks []task.Task, requestID string) {
	items := make([]taskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, toTaskResponse(&tasks[i]))
	}
	response.Success(w, http.StatusOK, items, requestID)
}

// ListBySprint handles GET /api/sprints/{id}/tasks.
func (h *TaskHandler) ListBySprint(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	sprintID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if _, err := h.sprints.GetByID(r.Context(), sprintID); err != nil {
		writeSprintError(w, err, "get sprint", requestID)
		return
	}

	tasks, err := h.tasks.ListBySprint(r.Context(), sprintID)
	if err != nil {
		internalError(w, "list tasks", requestID, err, "sprintId", sprintID)
		return
	}

	writeTasks(w, tasks, requestID)
}

// ListByProject handles GET /api/projects/{id}/tasks.
func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	projectID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		writeProjectLookupError(w, err, requestID)
		return
	}

	tasks, err := h.tasks.ListByProject(r.Context(), projectID)
	if err != nil {
		internalError(w, "list tasks", requestID, err, "projectId", projectID)
		return
	}

	writeTasks(w, tasks, requestID)
}

// ListByAssignee handles GET /api/tasks?assignee=me|<id>. A missing
// assignee means the session user.
func (h *TaskHandler) ListByAssignee(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	assigneeID := sessionUser(r)
	if v := r.URL.Query().Get("assignee"); v != "" && v != "me" {
		id, ok := parseID(w, v, "assignee", requestID)
		if !ok {
			return
		}
		assigneeID = id
	}

	tasks, err := h.tasks.ListByAssignee(r.Context(), assigneeID)
	if err != nil {
		internalError(w, "list tasks", requestID, err, "assigneeId", assigneeID)
		return
	}

	writeTasks(w, tasks, requestID)
}

// Create handles POST /api/sprints/{id}/tasks. The task belongs to the
// sprint's project.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	sprintID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	var req taskRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors, due := req.validate(true)
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	s, err := h.sprints.GetByID(r.Context(), sprintID)
	if err != nil {
		writeSprintError(w, err, "get sprint", requestID)
		return
	}

	t := &task.Task{
		ProjectID:   s.ProjectID,
		SprintID:    &s.ID,
		Title:       *req.Title,
		Description: req.Description,
		StoryPoints: req.StoryPoints,
		DueDate:     due,
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.AssigneeID != nil && *req.AssigneeID > 0 {
		t.AssigneeID = req.AssigneeID
	}

	if err := h.tasks.Create(r.Context(), t); err != nil {
		writeTaskError(w, err, "create task", requestID)
		return
	}

	created, err := h.tasks.GetByID(r.Context(), t.ID)
	if err != nil {
		writeTaskError(w, err, "create task", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toTaskResponse(created), requestID)
}

// Get handles GET /api/tasks/{id}.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	t, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeTaskError(w, err, "get task", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTaskResponse(t), requestID)
}

// Update handles PUT /api/tasks/{id}. Only the given fields change; a
// sprintId or assigneeId of 0 clears the reference.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	var req taskRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors, due := req.validate(false)
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	if req.SprintID != nil && *req.SprintID > 0 {
		if !h.checkSprintProject(w, r, id, *req.SprintID, requestID) {
			return
		}
	}

	t, err := h.tasks.Update(r.Context(), id, task.UpdateFields{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StoryPoints: req.StoryPoints,
		SprintID:    req.SprintID,
		AssigneeID:  req.AssigneeID,
		DueDate:     due,
	})
	if err != nil {
		writeTaskError(w, err, "update task", requestID)
		return
	}

	response.Success(w, http.StatusOK, toTaskResponse(t), requestID)
}

// checkSprintProject rejects moving task id into a sprint of another project.
func (h *TaskHandler) checkSprintProject(w http.ResponseWriter, r *http.Request, id, sprintID int64, requestID string) bool {
	s, err := h.sprints.GetByID(r.Context(), sprintID)
	if err != nil {
		writeTaskError(w, err, "update task", requestID)
		return false
	}

	current, err := h.tasks.GetByID(r.Context(), id)
	if err != nil {
		writeTaskError(w, err, "update task", requestID)
		return false
	}

	if s.ProjectID != current.ProjectID {
		writeTaskError(w, task.ErrSprintOutsideProject, "update task", requestID)
		return false
	}
	return true
}

// Delete handles DELETE /api/tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		writeTaskError(w, err, "delete task", requestID)
		return
	}

	response.SuccessDeleted(w, id, requestID)
}

func (req taskRequest) validate(create bool) ([]validation.FieldError, *time.Time) {
	return validation.ValidateTaskRequest(validation.TaskRequest{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StoryPoints: req.StoryPoints,
		AssigneeID:  req.AssigneeID,
		SprintID:    req.SprintID,
		DueDate:     req.DueDate,
	}, create)
}

func writeTaskError(w http.ResponseWriter, err error, action, requestID string) {
	switch {
	case errors.Is(err, task.ErrTaskNotFound):
		notFound(w, "Task not found", requestID)
	case errors.Is(err, project.ErrProjectNotFound):
		notFound(w, "Project not found", requestID)
	case errors.Is(err, sprint.ErrSprintNotFound):
		validationFailed(w, []validation.FieldError{{Field: "sprintId", Message: "sprint does not exist"}}, requestID)
	case errors.Is(err, task.ErrSprintOutsideProject):
		validationFailed(w, []validation.FieldError{{Field: "sprintId", Message: "sprint belongs to another project"}}, requestID)
	case errors.Is(err, user.ErrUserNotFound):
		validationFailed(w, []validation.FieldError{{Field: "assigneeId", Message: "assignee does not exist"}}, requestID)
	default:
		internalError(w, action, requestID, err)
	}
}
