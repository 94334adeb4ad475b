package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflows-scrum/workflows/internal/api/handler"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/team"
	"github.com/workflows-scrum/workflows/internal/user"
)

// --- Mock Membership Service ---

type mockMembership struct {
	listFn   func(ctx context.Context, projectID int64) ([]team.MemberDetail, error)
	assignFn func(ctx context.Context, projectID, userID int64, role string) (*team.MemberDetail, error)
	updateFn func(ctx context.Context, memberID int64, role string) (*team.MemberDetail, error)
	removeFn func(ctx context.Context, memberID int64) error
}

func (m *mockMembership) ListProjectMembers(ctx context.Context, projectID int64) ([]team.MemberDetail, error) {
	if m.listFn != nil {
		return m.listFn(ctx, projectID)
	}
	return []team.MemberDetail{}, nil
}

func (m *mockMembership) AssignMember(ctx context.Context, projectID, userID int64, role string) (*team.MemberDetail, error) {
	if m.assignFn != nil {
		return m.assignFn(ctx, projectID, userID, role)
	}
	return sampleMember(1, projectID, userID, role), nil
}

func (m *mockMembership) UpdateMemberRole(ctx context.Context, memberID int64, role string) (*team.MemberDetail, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, memberID, role)
	}
	return nil, team.ErrMemberNotFound
}

func (m *mockMembership) RemoveMember(ctx context.Context, memberID int64) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, memberID)
	}
	return nil
}

func sampleMember(id, projectID, userID int64, role string) *team.MemberDetail {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return &team.MemberDetail{
		Member: team.Member{
			ID:        id,
			TeamID:    4,
			UserID:    userID,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		},
		ProjectID:   projectID,
		ProjectName: "Alpha",
		UserName:    "Luis",
		UserEmail:   "luis@example.com",
	}
}

// ===== GET /api/projects/{id}/members =====

func TestMemberList_Success(t *testing.T) {
	t.Parallel()

	svc := &mockMembership{
		listFn: func(_ context.Context, projectID int64) ([]team.MemberDetail, error) {
			return []team.MemberDetail{*sampleMember(1, projectID, 3, team.RoleScrumMaster)}, nil
		},
	}
	h := handler.NewMemberHandler(svc)

	req, w := makeChiRequest(http.MethodGet, "/api/projects/2/members", nil, "/api/projects/{id}/members", map[string]string{"id": "2"})
	h.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	m := data[0].(map[string]interface{})
	assert.Equal(t, float64(1), m["id"])
	assert.Equal(t, float64(3), m["userId"])
	assert.Equal(t, float64(2), m["projectId"])
	assert.Equal(t, float64(4), m["teamId"])
	assert.Equal(t, "scrum_master", m["role"])
	assert.Equal(t, "Luis", m["username"])
	assert.Equal(t, "luis@example.com", m["email"])
	assert.Equal(t, "2024-03-01T10:00:00Z", m["createdAt"])
}

func TestMemberList_ProjectNotFound(t *testing.T) {
	t.Parallel()

	svc := &mockMembership{
		listFn: func(_ context.Context, _ int64) ([]team.MemberDetail, error) {
			return nil, project.ErrProjectNotFound
		},
	}
	h := handler.NewMemberHandler(svc)

	req, w := makeChiRequest(http.MethodGet, "/api/projects/2/members", nil, "/api/projects/{id}/members", map[string]string{"id": "2"})
	h.List(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===== POST /api/projects/{id}/members =====

func TestMemberAssign_Success(t *testing.T) {
	t.Parallel()

	var gotProject, gotUser int64
	var gotRole string
	svc := &mockMembership{
		assignFn: func(_ context.Context, projectID, userID int64, role string) (*team.MemberDetail, error) {
			gotProject, gotUser, gotRole = projectID, userID, role
			return sampleMember(8, projectID, userID, role), nil
		},
	}
	h := handler.NewMemberHandler(svc)

	body := mustJSON(t, map[string]interface{}{"userId": 3, "role": "product_owner"})
	req, w := makeChiRequest(http.MethodPost, "/api/projects/2/members", body, "/api/projects/{id}/members", map[string]string{"id": "2"})
	h.Assign(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(2), gotProject)
	assert.Equal(t, int64(3), gotUser)
	assert.Equal(t, "product_owner", gotRole)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(8), data["id"])
	assert.Equal(t, "Luis", data["username"])
}

func TestMemberAssign_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     map[string]interface{}
		err      error
		wantCode int
		wantErr  string
	}{
		{"missing fields", map[string]interface{}{}, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid role", map[string]interface{}{"userId": 3, "role": "admin"}, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown user", map[string]interface{}{"userId": 3, "role": "team_member"}, user.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unknown project", map[string]interface{}{"userId": 3, "role": "team_member"}, project.ErrProjectNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"already member", map[string]interface{}{"userId": 3, "role": "team_member"}, team.ErrAlreadyMember, http.StatusConflict, "ALREADY_MEMBER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockMembership{
				assignFn: func(_ context.Context, _, _ int64, _ string) (*team.MemberDetail, error) {
					return nil, tt.err
				},
			}
			h := handler.NewMemberHandler(svc)

			req, w := makeChiRequest(http.MethodPost, "/api/projects/2/members", mustJSON(t, tt.body), "/api/projects/{id}/members", map[string]string{"id": "2"})
			h.Assign(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantErr, errorCode(t, w))
		})
	}
}

// ===== PATCH /api/projects/members/{memberId} =====

func TestMemberUpdateRole_Success(t *testing.T) {
	t.Parallel()

	svc := &mockMembership{
		updateFn: func(_ context.Context, memberID int64, role string) (*team.MemberDetail, error) {
			return sampleMember(memberID, 2, 3, role), nil
		},
	}
	h := handler.NewMemberHandler(svc)

	body := mustJSON(t, map[string]interface{}{"role": "scrum_master"})
	req, w := makeChiRequest(http.MethodPatch, "/api/projects/members/8", body, "/api/projects/members/{memberId}", map[string]string{"memberId": "8"})
	h.UpdateRole(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := parseEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(8), data["id"])
	assert.Equal(t, "scrum_master", data["role"])
}

func TestMemberUpdateRole_NotFound(t *testing.T) {
	t.Parallel()

	h := handler.NewMemberHandler(&mockMembership{})

	body := mustJSON(t, map[string]interface{}{"role": "scrum_master"})
	req, w := makeChiRequest(http.MethodPatch, "/api/projects/members/8", body, "/api/projects/members/{memberId}", map[string]string{"memberId": "8"})
	h.UpdateRole(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMemberUpdateRole_MissingRole(t *testing.T) {
	t.Parallel()

	h := handler.NewMemberHandler(&mockMembership{})

	req, w := makeChiRequest(http.MethodPatch, "/api/projects/members/8", []byte(`{}`), "/api/projects/members/{memberId}", map[string]string{"memberId": "8"})
	h.UpdateRole(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

// ===== DELETE /api/projects/members/{memberId} =====

func TestMemberRemove(t *testing.T) {
	t.Parallel()

	var removed int64
	svc := &mockMembership{
		removeFn: func(_ context.Context, memberID int64) error {
			if removed != 0 {
				return team.ErrMemberNotFound
			}
			removed = memberID
			return nil
		},
	}
	h := handler.NewMemberHandler(svc)

	req, w := makeChiRequest(http.MethodDelete, "/api/projects/members/8", nil, "/api/projects/members/{memberId}", map[string]string{"memberId": "8"})
	h.Remove(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(8), removed)

	req, w = makeChiRequest(http.MethodDelete, "/api/projects/members/8", nil, "/api/projects/members/{memberId}", map[string]string{"memberId": "8"})
	h.Remove(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
