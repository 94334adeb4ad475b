package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/team"
	"github.com/workflows-scrum/workflows/internal/user"
)

// MembershipService is the subset of team.Service used by MemberHandler.
type MembershipService interface {
	ListProjectMembers(ctx context.Context, projectID int64) ([]team.MemberDetail, error)
	AssignMember(ctx context.Context, projectID, userID int64, role string) (*team.MemberDetail, error)
	UpdateMemberRole(ctx context.Context, memberID int64, role string) (*team.MemberDetail, error)
	RemoveMember(ctx context.Context, memberID int64) error
}

// MemberHandler handles project membership endpoints.
type MemberHandler struct {
	members MembershipService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(members MembershipService) *MemberHandler {
	return &MemberHandler{members: members}
}

type assignMemberRequest struct {
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

type updateMemberRequest struct {
	Role string `json:"role"`
}

type memberResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	ProjectID int64  `json:"projectId"`
	TeamID    int64  `json:"teamId"`
	Role      string `json:"role"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toMemberResponse(m *team.MemberDetail) memberResponse {
	return memberResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		ProjectID: m.ProjectID,
		TeamID:    m.TeamID,
		Role:      m.Role,
		Username:  m.UserName,
		Email:     m.UserEmail,
		CreatedAt: formatTime(m.CreatedAt),
		UpdatedAt: formatTime(m.UpdatedAt),
	}
}

// List handles GET /api/projects/{id}/members.
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	projectID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	members, err := h.members.ListProjectMembers(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			notFound(w, "Project not found", requestID)
			return
		}
		internalError(w, "list members", requestID, err, "projectId", projectID)
		return
	}

	items := make([]memberResponse, 0, len(members))
	for i := range members {
		items = append(items, toMemberResponse(&members[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Assign handles POST /api/projects/{id}/members.
func (h *MemberHandler) Assign(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	projectID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	var req assignMemberRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateAssignMemberRequest(validation.AssignMemberRequest{
		UserID: req.UserID,
		Role:   req.Role,
	}); len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	m, err := h.members.AssignMember(r.Context(), projectID, req.UserID, req.Role)
	if err != nil {
		h.writeMemberError(w, err, "assign member", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toMemberResponse(m), requestID)
}

// UpdateRole handles PATCH /api/projects/members/{memberId}.
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	memberID, ok := urlID(w, r, "memberId", requestID)
	if !ok {
		return
	}

	var req updateMemberRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateMemberRole(nil, req.Role); len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	m, err := h.members.UpdateMemberRole(r.Context(), memberID, req.Role)
	if err != nil {
		h.writeMemberError(w, err, "update member", requestID)
		return
	}

	response.Success(w, http.StatusOK, toMemberResponse(m), requestID)
}

// Remove handles DELETE /api/projects/members/{memberId}.
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	memberID, ok := urlID(w, r, "memberId", requestID)
	if !ok {
		return
	}

	if err := h.members.RemoveMember(r.Context(), memberID); err != nil {
		h.writeMemberError(w, err, "remove member", requestID)
		return
	}

	response.SuccessDeleted(w, memberID, requestID)
}

func (h *MemberHandler) writeMemberError(w http.ResponseWriter, err error, action, requestID string) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		notFound(w, "User not found", requestID)
	case errors.Is(err, project.ErrProjectNotFound):
		notFound(w, "Project not found", requestID)
	case errors.Is(err, team.ErrMemberNotFound):
		notFound(w, "Member not found", requestID)
	case errors.Is(err, team.ErrAlreadyMember):
		response.Err(w, http.StatusConflict, "ALREADY_MEMBER", "User is already a member of this project", requestID)
	case errors.Is(err, team.ErrInvalidRole):
		validationFailed(w, []validation.FieldError{{Field: "role", Message: "role is invalid"}}, requestID)
	default:
		internalError(w, action, requestID, err)
	}
}
