package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/comment"
	"github.com/workflows-scrum/workflows/internal/task"
	"github.com/workflows-scrum/workflows/internal/user"
)

// TaskLookup resolves tasks by id.
type TaskLookup interface {
	GetByID(ctx context.Context, id int64) (*task.Task, error)
}

// CommentHandler handles task comment endpoints.
type CommentHandler struct {
	comments comment.Repository
	tasks    TaskLookup
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(comments comment.Repository, tasks TaskLookup) *CommentHandler {
	return &CommentHandler{comments: comments, tasks: tasks}
}

type commentRequest struct {
	Content string `json:"content"`
}

type commentResponse struct {
	ID         int64  `json:"id"`
	TaskID     int64  `json:"taskId"`
	UserID     int64  `json:"userId"`
	AuthorName string `json:"authorName"`
	Content    string `json:"content"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

func toCommentResponse(c *comment.Comment) commentResponse {
	return commentResponse{
		ID:         c.ID,
		TaskID:     c.TaskID,
		UserID:     c.UserID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  formatTime(c.CreatedAt),
		UpdatedAt:  formatTime(c.UpdatedAt),
	}
}

// List handles GET /api/tasks/{id}/comments, oldest first.
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	taskID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if _, err := h.tasks.GetByID(r.Context(), taskID); err != nil {
		writeTaskError(w, err, "get task", requestID)
		return
	}

	comments, err := h.comments.ListByTask(r.Context(), taskID)
	if err != nil {
		internalError(w, "list comments", requestID, err, "taskId", taskID)
		return
	}

	items := make([]commentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, toCommentResponse(&comments[i]))
	}

	response.Success(w, http.StatusOK, items, requestID)
}

// Create handles POST /api/tasks/{id}/comments. The author is the session user.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	taskID, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req, requestID) {
		return
	}

	if fieldErrors := validation.ValidateCommentContent(req.Content); len(fieldErrors) > 0 {
		validationFailed(w, fieldErrors, requestID)
		return
	}

	c := &comment.Comment{
		TaskID:  taskID,
		UserID:  sessionUser(r),
		Content: strings.TrimSpace(req.Content),
	}
	if err := h.comments.Create(r.Context(), c); err != nil {
		switch {
		case errors.Is(err, task.ErrTaskNotFound):
			notFound(w, "Task not found", requestID)
		case errors.Is(err, user.ErrUserNotFound):
			response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required", requestID)
		default:
			internalError(w, "create comment", requestID, err, "taskId", taskID)
		}
		return
	}

	response.Success(w, http.StatusCreated, toCommentResponse(c), requestID)
}

// Delete handles DELETE /api/comments/{id}.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	id, ok := urlID(w, r, "id", requestID)
	if !ok {
		return
	}

	if err := h.comments.Delete(r.Context(), id); err != nil {
		if errors.Is(err, comment.ErrCommentNotFound) {
			notFound(w, "Comment not found", requestID)
			return
		}
		internalError(w, "delete comment", requestID, err, "commentId", id)
		return
	}

	response.SuccessDeleted(w, id, requestID)
}
