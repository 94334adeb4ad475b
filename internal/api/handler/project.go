package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/project"
)

// ProjectStore is the subset of project.Repository used by ProjectHandler.
type ProjectStore interface {
	Create(ctx context.Context, p *project.Project) error
	GetByID(ctx context.Context, id int64) (*project.Project, error)
	List(ctx context.Context, filter project.ListFilter) ([]project.Project, error)
	ListForMember(ctx context.Context, userID int64) ([]project.Project, error)
	Update(ctx context.Context, id int64, fields project.UpdateFields) (*project.Project, error)
	Delete(ctx context.Context, id int64) error
}

// ProjectHandler handles project CRUD endpoints.
type ProjectHandler struct {
	projects ProjectStore
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects ProjectStore) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

type projectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	OwnerID     *int64  `json:"ownerId"`
}

type projectResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	OwnerID     int64   `json:"ownerId"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toProjectResponse(p *project.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		Status:      p.Status,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
}

func toProjectResponses(projects []project.Project) []projectResponse {
	out := make([]projectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i]))
	}
	return out
}

// List handles GET /api/projects. With ?mine=true only the projects the
// session user owns or belongs to are returned.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var (
		projects []project.Project
		err      error
	)
	if r.URL.Query().Get("mine") == "true" {
		projects, err = h.projects.ListForMember(r.Context(), sessionUser(r))
	} else {
		projects, err = h.projects.List(r.Context(), project.ListFilter{})
	}
	if err != nil {
		internalError(w, "list projects", requestID, err)
		return
	}

	response.Success(w, http.StatusOK, toProjectResponses(projects), requestID)
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req projectRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	fieldErrors := validation.ValidateProjectRequest(validation.ProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	ownerID := sessionUser(r)
	if req.OwnerID != nil {
		if *req.OwnerID <= 0 {
			fieldErrors = append(fieldErrors, validation.FieldError{Field: "ownerId", Message: "ownerId must be a user id"})
		}
		ownerID = *req.OwnerID
	}
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	p := &project.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     ownerID,
	}
	if req.Status != nil {
		p.Status = *req.Status
	}

	if err := h.projects.Create(r.Context(), p); err != nil {
		if errors.Is(err, project.ErrOwnerNotFound) {
			validationFailed(w, []validation.FieldError{{Field: "ownerId", Message: "owner does not exist"}}, requestID)
			return
		}
		internalError(w, "create project", requestID, err)
		return
	}

	response.Success(w, http.StatusCreated, toProjectResponse(p), requestID)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	p, err := h.projects.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			notFound(w, "Project not found", requestID)
			return
		}
		internalError(w, "get project", requestID, err, "projectId", id)
		return
	}

	response.Success(w, http.StatusOK, toProjectResponse(p), requestID)
}

// Update handles PUT /api/projects/{id}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	var req projectRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateProjectRequest(validation.ProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	}); len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	p, err := h.projects.Update(r.Context(), id, project.UpdateFields{
		Name:        &req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			notFound(w, "Project not found", requestID)
			return
		}
		internalError(w, "update project", requestID, err, "projectId", id)
		return
	}

	response.Success(w, http.StatusOK, toProjectResponse(p), requestID)
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if err := h.projects.Delete(r.Context(), id); err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			notFound(w, "Project not found", requestID)
			return
		}
		internalError(w, "delete project", requestID, err, "projectId", id)
		return
	}

	response.SuccessDeleted(w, id, requestID)
}
