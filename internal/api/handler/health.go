package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TableLister lists the tables of the public schema.
type TableLister interface {
	ListTables(ctx context.Context) ([]string, error)
}

const pingTimeout = 2 * time.Second

// HealthHandler handles the GET /health endpoint.
type HealthHandler struct {
	db      Pinger
	version string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		db:      db,
		version: version,
	}
}

type databaseStatus struct {
	Connected bool `json:"connected"`
}

type healthData struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Database databaseStatus `json:"database"`
}

// ServeHTTP handles the health check request. An unreachable database
// reports "degraded" with a 200 status.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	data := healthData{
		Status:   "healthy",
		Version:  h.version,
		Database: databaseStatus{Connected: true},
	}
	if err := h.db.Ping(ctx); err != nil {
		slog.Warn("health check: database unreachable", "error", err)
		data.Status = "degraded"
		data.Database.Connected = false
	}

	response.Success(w, http.StatusOK, data, requestID)
}

// DBTestHandler handles GET /api/db-test.
type DBTestHandler struct {
	db TableLister
}

// NewDBTestHandler creates a new DBTestHandler.
func NewDBTestHandler(db TableLister) *DBTestHandler {
	return &DBTestHandler{db: db}
}

type dbTestData struct {
	Connected bool     `json:"connected"`
	Tables    []string `json:"tables"`
}

// ServeHTTP lists the tables of the public schema.
func (h *DBTestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	tables, err := h.db.ListTables(r.Context())
	if err != nil {
		slog.Error("database connection test failed", "error", err)
		response.Err(w, http.StatusInternalServerError, "DATABASE_ERROR", "Database connection failed: "+err.Error(), requestID)
		return
	}
	if tables == nil {
		tables = []string{}
	}

	response.Success(w, http.StatusOK, dbTestData{Connected: true, Tables: tables}, requestID)
}
