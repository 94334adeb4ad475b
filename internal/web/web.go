// Package web serves the server-rendered pages of the dashboard.
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/auth"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/task"
	"github.com/workflows-scrum/workflows/internal/team"
	"github.com/workflows-scrum/workflows/internal/user"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Accounts authenticates and registers users.
type Accounts interface {
	Login(ctx context.Context, email, password string) (*user.User, error)
	Register(ctx context.Context, name, lastName, email, password string) (*user.User, error)
}

// Users lists and counts user accounts.
type Users interface {
	List(ctx context.Context, filter user.ListFilter) (*user.ListResult, error)
	CountAll(ctx context.Context) (int, error)
}

// Projects reads and creates projects.
type Projects interface {
	Create(ctx context.Context, p *project.Project) error
	GetByID(ctx context.Context, id int64) (*project.Project, error)
	List(ctx context.Context, filter project.ListFilter) ([]project.Project, error)
	ListForMember(ctx context.Context, userID int64) ([]project.Project, error)
	Count(ctx context.Context) (int, error)
}

// Members lists the members of a project.
type Members interface {
	ListProjectMembers(ctx context.Context, projectID int64) ([]team.MemberDetail, error)
}

// Teams lists the memberships across the projects a user belongs to.
type Teams interface {
	ListMembersForUser(ctx context.Context, userID int64) ([]team.MemberDetail, error)
}

// Tasks lists the tasks assigned to a user.
type Tasks interface {
	ListByAssignee(ctx context.Context, userID int64) ([]task.Task, error)
}

// Deps holds the dependencies of the pages.
type Deps struct {
	Sessions *auth.SessionManager
	Accounts Accounts
	Users    Users
	Projects Projects
	Members  Members
	Teams    Teams
	Tasks    Tasks
}

// Handler renders the pages.
type Handler struct {
	Deps
	pages  map[string]*template.Template
	static http.Handler
}

var pageFiles = []string{
	"landing.html",
	"about.html",
	"login.html",
	"register.html",
	"dashboard.html",
	"projects.html",
	"project.html",
	"users.html",
	"team.html",
	"tasks.html",
	"404.html",
}

// New parses the embedded templates.
func New(deps Deps) (*Handler, error) {
	funcs := template.FuncMap{
		"roleName":      user.FormatRole,
		"memberRole":    memberRoleName,
		"projectStatus": projectStatusName,
		"taskStatus":    taskStatusName,
		"priority":      priorityName,
		"date":          formatDate,
		"initials":      initials,
		"add":           func(a, b int) int { return a + b },
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = t
	}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("opening static assets: %w", err)
	}

	return &Handler{
		Deps:   deps,
		pages:  pages,
		static: http.StripPrefix("/static/", http.FileServer(http.FS(static))),
	}, nil
}

// Routes registers the pages on r.
func (h *Handler) Routes(r chi.Router) {
	r.Handle("/static/*", h.static)

	r.Get("/", h.landing)
	r.Get("/about", h.about)

	r.Get("/auth/login", h.loginForm)
	r.Post("/auth/login", h.login)
	r.Get("/auth/register", h.registerForm)
	r.Post("/auth/register", h.register)
	r.Get("/auth/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequirePageAuth)
		r.Get("/dashboard", h.dashboard)
		r.Get("/dashboard/projects", h.projects)
		r.Post("/dashboard/projects", h.createProject)
		r.Get("/dashboard/projects/{id}", h.projectDetail)
		r.Get("/dashboard/users", h.users)
		r.Get("/dashboard/team", h.team)
		r.Get("/dashboard/tasks", h.tasks)
	})
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "404.html", page{Title: "Página no encontrada"})
}

// page is the data every template receives.
type page struct {
	Title   string
	Session *auth.Session
	Active  string
	Data    any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	t, ok := h.pages[name]
	if !ok {
		slog.Error("unknown template", "template", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if p.Session == nil {
		p.Session = middleware.GetSession(r.Context())
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", p); err != nil {
		slog.Error("failed to render page", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, action string, err error) {
	slog.Error("failed to "+action, "error", err, "requestId", middleware.GetRequestID(r.Context()))
	http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
}

func memberRoleName(role string) string {
	switch role {
	case team.RoleProductOwner:
		return "Product Owner"
	case team.RoleScrumMaster:
		return "Scrum Master"
	case team.RoleTeamMember:
		return "Team Member"
	default:
		return role
	}
}

func projectStatusName(status string) string {
	switch status {
	case project.StatusActive:
		return "Activo"
	case project.StatusInProgress:
		return "En progreso"
	case project.StatusCompleted:
		return "Completado"
	default:
		return status
	}
}

func taskStatusName(status string) string {
	switch status {
	case task.StatusTodo:
		return "Pendiente"
	case task.StatusInProgress:
		return "En progreso"
	case task.StatusDone:
		return "Completada"
	default:
		return status
	}
}

func priorityName(p string) string {
	switch p {
	case task.PriorityLow:
		return "Baja"
	case task.PriorityMedium:
		return "Media"
	case task.PriorityHigh:
		return "Alta"
	default:
		return p
	}
}

// formatDate accepts a time.Time or *time.Time and renders dd/mm/yyyy.
func formatDate(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.Format("02/01/2006")
	case *time.Time:
		if t == nil {
			return ""
		}
		return t.Format("02/01/2006")
	default:
		return ""
	}
}

// initials returns up to two upper-case initials of name.
func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
