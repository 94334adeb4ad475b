package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/user"
)

// UserStore is the subset of user.Repository used by UserHandler.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
	List(ctx context.Context, filter user.ListFilter) (*user.ListResult, error)
	Update(ctx context.Context, id int64, fields user.UpdateFields) (*user.User, error)
	Delete(ctx context.Context, id int64) error
}

// AccountService creates accounts and hashes passwords.
type AccountService interface {
	CreateUser(ctx context.Context, name, email, password, role string) (*user.User, error)
	HashPassword(password string) (string, error)
}

// UserHandler handles user administration endpoints.
type UserHandler struct {
	users    UserStore
	accounts AccountService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserStore, accounts AccountService) *UserHandler {
	return &UserHandler{users: users, accounts: accounts}
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	ID       int64   `json:"id"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type userResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	RoleName  string `json:"roleName"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		RoleName:  user.FormatRole(u.Role),
		CreatedAt: formatTime(u.CreatedAt),
		UpdatedAt: formatTime(u.UpdatedAt),
	}
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	q := r.URL.Query()
	filter := user.ListFilter{
		Search: q.Get("q"),
		Role:   q.Get("role"),
	}

	if filter.Role != "" && !user.ValidRole(filter.Role) {
		validationFailed(w, []validation.FieldError{{Field: "role", Message: "role is invalid"}}, requestID)
		return
	}

	var fieldErrors []validation.FieldError
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fieldErrors = append(fieldErrors, validation.FieldError{Field: "page", Message: "page must be a positive integer"})
		}
		filter.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			fieldErrors = append(fieldErrors, validation.FieldError{Field: "limit", Message: "limit must be a positive integer"})
		}
		filter.Limit = n
	}
	if len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	result, err := h.users.List(r.Context(), filter)
	if err != nil {
		internalError(w, "list users", requestID, err)
		return
	}

	items := make([]userResponse, 0, len(result.Users))
	for i := range result.Users {
		items = append(items, toUserResponse(&result.Users[i]))
	}

	response.SuccessPage(w, items, response.Page{Total: result.Total, Page: result.Page, Limit: result.Limit}, requestID)
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createUserRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateCreateUserRequest(validation.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}); len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	u, err := h.accounts.CreateUser(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		h.writeUserError(w, err, "create user", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toUserResponse(u), requestID)
}

// Get handles GET /api/users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		h.writeUserError(w, err, "get user", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// Update handles PUT /api/users/{id}.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	var req updateUserRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	h.update(w, r, id, req, requestID)
}

// UpdateFromBody handles PUT /api/users, where the user id is part of the body.
func (h *UserHandler) UpdateFromBody(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req updateUserRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if req.ID <= 0 {
		validationFailed(w, []validation.FieldError{{Field: "id", Message: "id is required"}}, requestID)
		return
	}

	h.update(w, r, req.ID, req, requestID)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request, id int64, req updateUserRequest, requestID string) {
	if fieldErrors := validation.ValidateUpdateUserRequest(validation.UpdateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}); len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	fields := user.UpdateFields{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := h.accounts.HashPassword(*req.Password)
		if err != nil {
			internalError(w, "update user", requestID, err, "userId", id)
			return
		}
		fields.PasswordHash = &hash
	}

	u, err := h.users.Update(r.Context(), id, fields)
	if err != nil {
		h.writeUserError(w, err, "update user", requestID)
		return
	}

	response.Success(w, http.StatusOK, toUserResponse(u), requestID)
}

// Delete handles DELETE /api/users/{id}.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	h.delete(w, r, id, requestID)
}

// DeleteFromQuery handles DELETE /api/users?id=.
func (h *UserHandler) DeleteFromQuery(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := parseID(w, r.URL.Query().Get("id"), "id", requestID)
	if !ok {
		return
	}

	h.delete(w, r, id, requestID)
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request, id int64, requestID string) {
	if id == sessionUser(r) {
		response.Err(w, http.StatusConflict, "CANNOT_DELETE_SELF", "You cannot delete your own account", requestID)
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		h.writeUserError(w, err, "delete user", requestID)
		return
	}

	response.SuccessDeleted(w, id, requestID)
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, err error, action, requestID string) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		notFound(w, "User not found", requestID)
	case errors.Is(err, user.ErrDuplicateEmail):
		response.Err(w, http.StatusConflict, "DUPLICATE_EMAIL", "Email is already registered", requestID)
	case errors.Is(err, user.ErrUserOwnsProjects):
		response.Err(w, http.StatusConflict, "USER_OWNS_PROJECTS", "User still owns projects", requestID)
	default:
		internalError(w, action, requestID, err)
	}
}
