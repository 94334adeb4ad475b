package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/sprint"
)

// ProjectLookup resolves projects by id.
type ProjectLookup interface {
	GetByID(ctx context.Context, id int64) (*project.Project, error)
}

// SprintHandler handles sprint endpoints.
type SprintHandler struct {
	sprints  sprint.Repository
	projects ProjectLookup
}

// NewSprintHandler creates a new SprintHandler.
func NewSprintHandler(sprints sprint.Repository, projects ProjectLookup) *SprintHandler {
	return &SprintHandler{sprints: sprints, projects: projects}
}

type sprintRequest struct {
	Name      *string `json:"name"`
	Goal      *string `json:"goal"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Status    *string `json:"status"`
}

func (req sprintRequest) validate(create bool) ([]validation.FieldError, validation.SprintDates) {
	return validation.ValidateSprintRequest(validation.SprintRequest{
		Name:      req.Name,
		Goal:      req.Goal,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
	}, create)
}

type sprintResponse struct {
	ID        int64   `json:"id"`
	ProjectID int64   `json:"projectId"`
	Name      string  `json:"name"`
	Goal      *string `json:"goal"`
	StartDate *string `json:"startDate"`
	EndDate   *string `json:"endDate"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

func toSprintResponse(s *sprint.Sprint) sprintResponse {
	return sprintResponse{
		ID:        s.ID,
		ProjectID: s.ProjectID,
		Name:      s.Name,
		Goal:      s.Goal,
		StartDate: formatDate(s.StartDate),
		EndDate:   formatDate(s.EndDate),
		Status:    s.Status,
		CreatedAt: formatTime(s.CreatedAt),
		UpdatedAt: formatTime(s.UpdatedAt),
	}
}

// ListByProject handles GET /api/projects/{id}/sprints.
func (h *SprintHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	projectID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		writeProjectLookupError(w, err, requestID)
		return
	}

	sprints, err := h.sprints.ListByProject(r.Context(), projectID)
	if err != nil {
		internalError(w, "list sprints", requestID, err, "projectId", projectID)
		return
	}

	items := make([]sprintResponse, 0, len(sprints))
	for i := range sprints {
		items = append(items, toSprintResponse(&sprints[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /api/projects/{id}/sprints.
func (h *SprintHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	projectID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	var req sprintRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors, dates := req.validate(true)
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	s := &sprint.Sprint{
		ProjectID: projectID,
		Name:      *req.Name,
		Goal:      req.Goal,
		StartDate: dates.Start,
		EndDate:   dates.End,
	}
	if req.Status != nil {
		s.Status = *req.Status
	}

	if err := h.sprints.Create(r.Context(), s); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			notFound(w, "Project not found", requestID)
			return
		}
		internalError(w, "create sprint", requestID, err, "projectId", projectID)
		return
	}

	response.Success(w, http.StatusCreated, toSprintResponse(s), requestID)
}

// Get handles GET /api/sprints/{id}.
func (h *SprintHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	s, err := h.sprints.GetByID(r.Context(), id)
	if err != nil {
		writeSprintError(w, err, "get sprint", requestID)
		return
	}

	response.Success(w, http.StatusOK, toSprintResponse(s), requestID)
}

// Update handles PUT /api/sprints/{id}. Only the given fields change.
func (h *SprintHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	var req sprintRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors, dates := req.validate(false)
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	// A single date is checked against the stored other end.
	if (dates.Start == nil) != (dates.End == nil) {
		current, err := h.sprints.GetByID(r.Context(), id)
		if err != nil {
			writeSprintError(w, err, "update sprint", requestID)
			return
		}
		start, end := current.StartDate, current.EndDate
		if dates.Start != nil {
			start = dates.Start
		} else {
			end = dates.End
		}
		if start != nil && end != nil && end.Before(*start) {
			validationFailed(w, []validation.FieldError{{Field: "endDate", Message: "endDate must not be before startDate"}}, requestID)
			return
		}
	}

	s, err := h.sprints.Update(r.Context(), id, sprint.UpdateFields{
		Name:      req.Name,
		Goal:      req.Goal,
		StartDate: dates.Start,
		EndDate:   dates.End,
		Status:    req.Status,
	})
	if err != nil {
		writeSprintError(w, err, "update sprint", requestID)
		return
	}

	response.Success(w, http.StatusOK, toSprintResponse(s), requestID)
}

// Delete handles DELETE /api/sprints/{id}.
func (h *SprintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if err := h.sprints.Delete(r.Context(), id); err != nil {
		writeSprintError(w, err, "delete sprint", requestID)
		return
	}

	response.SuccessDeleted(w, id, requestID)
}

func writeSprintError(w http.ResponseWriter, err error, action, requestID string) {
	if errors.Is(err, sprint.ErrSprintNotFound) {
		notFound(w, "Sprint not found", requestID)
		return
	}
	internalError(w, action, requestID, err)
}

func writeProjectLookupError(w http.ResponseWriter, err error, requestID string) {
	if errors.Is(err, project.ErrProjectNotFound) {
		notFound(w, "Project not found", requestID)
		return
	}
	internalError(w, "get project", requestID, err)
}
