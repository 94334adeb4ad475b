package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/evaluation"
	"github.com/workflows-scrum/workflows/internal/team"
)

// TeamLookup resolves teams by id.
type TeamLookup interface {
	GetTeam(ctx context.Context, id int64) (*team.Team, error)
}

// EvaluationHandler handles team evaluation endpoints.
type EvaluationHandler struct {
	evaluations evaluation.Repository
	projects    ProjectLookup
	teams       TeamLookup
}

// NewEvaluationHandler creates a new EvaluationHandler.
func NewEvaluationHandler(evaluations evaluation.Repository, projects ProjectLookup, teams TeamLookup) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations, projects: projects, teams: teams}
}

type evaluationRequest struct {
	TeamID   int64   `json:"teamId"`
	Score    *int    `json:"score"`
	Feedback *string `json:"feedback"`
}

type evaluationResponse struct {
	ID            int64   `json:"id"`
	ProjectID     int64   `json:"projectId"`
	TeamID        int64   `json:"teamId"`
	TeamName      string  `json:"teamName"`
	EvaluatorID   *int64  `json:"evaluatorId"`
	EvaluatorName *string `json:"evaluatorName"`
	Score         int     `json:"score"`
	Feedback      *string `json:"feedback"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

func toEvaluationResponse(e *evaluation.Evaluation) evaluationResponse {
	return evaluationResponse{
		ID:            e.ID,
		ProjectID:     e.ProjectID,
		TeamID:        e.TeamID,
		TeamName:      e.TeamName,
		EvaluatorID:   e.EvaluatorID,
		EvaluatorName: e.EvaluatorName,
		Score:         e.Score,
		Feedback:      e.Feedback,
		CreatedAt:     formatTime(e.CreatedAt),
		UpdatedAt:     formatTime(e.UpdatedAt),
	}
}

func writeEvaluations(w http.ResponseWriter, evaluations []evaluation.Evaluation, requestID string) {
	items := make([]evaluationResponse, 0, len(evaluations))
	for i := range evaluations {
		items = append(items, toEvaluationResponse(&evaluations[i]))
	}
	response.Success(w, http.StatusOK, items, requestID)
}

// ListByProject handles GET /api/projects/{id}/evaluations, newest first.
func (h *EvaluationHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	projectID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		writeProjectLookupError(w, err, requestID)
		return
	}

	evaluations, err := h.evaluations.ListByProject(r.Context(), projectID)
	if err != nil {
		internalError(w, "list evaluations", requestID, err, "projectId", projectID)
		return
	}

	writeEvaluations(w, evaluations, requestID)
}

// ListByTeam handles GET /api/teams/{id}/evaluations, newest first.
func (h *EvaluationHandler) ListByTeam(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	teamID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if _, err := h.teams.GetTeam(r.Context(), teamID); err != nil {
		if errors.Is(err, team.ErrTeamNotFound) {
			notFound(w, "Team not found", requestID)
			return
		}
		internalError(w, "get team", requestID, err, "teamId", teamID)
		return
	}

	evaluations, err := h.evaluations.ListByTeam(r.Context(), teamID)
	if err != nil {
		internalError(w, "list evaluations", requestID, err, "teamId", teamID)
		return
	}

	writeEvaluations(w, evaluations, requestID)
}

// Create handles POST /api/projects/{id}/evaluations. The evaluator is the
// session user.
func (h *EvaluationHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	projectID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	var req evaluationRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateEvaluationRequest(validation.EvaluationRequest{
		TeamID:   req.TeamID,
		Score:    req.Score,
		Feedback: req.Feedback,
	}); len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	if _, err := h.projects.GetByID(r.Context(), projectID); err != nil {
		writeProjectLookupError(w, err, requestID)
		return
	}

	e := &evaluation.Evaluation{
		ProjectID: projectID,
		TeamID:    req.TeamID,
		Score:     *req.Score,
		Feedback:  req.Feedback,
	}
	if evaluator := sessionUser(r); evaluator != 0 {
		e.EvaluatorID = &evaluator
	}
	if s := currentSession(r); s != nil {
		e.EvaluatorName = &s.Name
	}

	if err := h.evaluations.Create(r.Context(), e); err != nil {
		switch {
		case errors.Is(err, evaluation.ErrTeamNotInProject):
			validationFailed(w, []validation.FieldError{{Field: "teamId", Message: "team does not belong to this project"}}, requestID)
		case errors.Is(err, evaluation.ErrScoreOutOfRange):
			validationFailed(w, []validation.FieldError{{Field: "score", Message: "score must be between 0 and 100"}}, requestID)
		default:
			internalError(w, "create evaluation", requestID, err, "projectId", projectID)
		}
		return
	}

	response.Success(w, http.StatusCreated, toEvaluationResponse(e), requestID)
}
