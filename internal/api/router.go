package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/workflows-scrum/workflows/internal/api/handler"
	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/response"
	"github.com/workflows-scrum/workflows/internal/auth"
	"github.com/workflows-scrum/workflows/internal/comment"
	"github.com/workflows-scrum/workflows/internal/evaluation"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/sprint"
	"github.com/workflows-scrum/workflows/internal/task"
	"github.com/workflows-scrum/workflows/internal/team"
	"github.com/workflows-scrum/workflows/internal/user"
)

// Database is the part of the database handle the operational routes use.
type Database interface {
	handler.Pinger
	handler.TableLister
}

// Pages registers the server-rendered pages.
type Pages interface {
	Routes(r chi.Router)
	NotFound(w http.ResponseWriter, r *http.Request)
}

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Version     string
	DB          Database
	Sessions    *auth.SessionManager
	OpenAPISpec []byte

	Users       user.Repository
	Accounts    handler.AccountService
	Projects    project.Repository
	Teams       team.Repository
	Members     handler.MembershipService
	Sprints     sprint.Repository
	Tasks       task.Repository
	Comments    comment.Repository
	Evaluations evaluation.Repository

	Pages Pages // optional
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(middleware.Session(deps.Sessions))

	healthHandler := handler.NewHealthHandler(deps.DB, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if len(deps.OpenAPISpec) > 0 {
		openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
		r.Get("/openapi.json", openapiHandler.ServeHTTP)
	}

	r.Route("/api", func(r chi.Router) {
		r.NotFound(apiNotFound)
		r.MethodNotAllowed(apiMethodNotAllowed)

		r.Get("/db-test", handler.NewDBTestHandler(deps.DB).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAPIAuth)
			apiRoutes(r, deps)
		})
	})

	if deps.Pages != nil {
		deps.Pages.Routes(r)
		r.NotFound(deps.Pages.NotFound)
	}

	return r
}

func apiRoutes(r chi.Router, deps RouterDeps) {
	projects := handler.NewProjectHandler(deps.Projects)
	members := handler.NewMemberHandler(deps.Members)
	users := handler.NewUserHandler(deps.Users, deps.Accounts)
	sprints := handler.NewSprintHandler(deps.Sprints, deps.Projects)
	tasks := handler.NewTaskHandler(deps.Tasks, deps.Sprints, deps.Projects)
	comments := handler.NewCommentHandler(deps.Comments, deps.Tasks)
	evaluations := handler.NewEvaluationHandler(deps.Evaluations, deps.Projects, deps.Teams)

	r.Get("/projects", projects.List)
	r.Post("/projects", projects.Create)
	r.Get("/projects/{id}", projects.Get)
	r.Put("/projects/{id}", projects.Update)
	r.Delete("/projects/{id}", projects.Delete)

	r.Get("/projects/{id}/members", members.List)
	r.Post("/projects/{id}/members", members.Assign)
	r.Patch("/projects/members/{memberId}", members.UpdateRole)
	r.Delete("/projects/members/{memberId}", members.Remove)

	r.Get("/projects/{id}/sprints", sprints.ListByProject)
	r.Post("/projects/{id}/sprints", sprints.Create)
	r.Get("/projects/{id}/tasks", tasks.ListByProject)
	r.Get("/projects/{id}/evaluations", evaluations.ListByProject)
	r.Post("/projects/{id}/evaluations", evaluations.Create)

	r.Get("/users", users.List)
	r.Post("/users", users.Create)
	r.Put("/users", users.UpdateFromBody)
	r.Delete("/users", users.DeleteFromQuery)
	r.Get("/users/{id}", users.Get)
	r.Put("/users/{id}", users.Update)
	r.Delete("/users/{id}", users.Delete)

	r.Get("/sprints/{id}", sprints.Get)
	r.Put("/sprints/{id}", sprints.Update)
	r.Delete("/sprints/{id}", sprints.Delete)
	r.Get("/sprints/{id}/tasks", tasks.ListBySprint)
	r.Post("/sprints/{id}/tasks", tasks.Create)

	r.Get("/tasks", tasks.ListByAssignee)
	r.Get("/tasks/{id}", tasks.Get)
	r.Put("/tasks/{id}", tasks.Update)
	r.Delete("/tasks/{id}", tasks.Delete)
	r.Get("/tasks/{id}/comments", comments.List)
	r.Post("/tasks/{id}/comments", comments.Create)

	r.Delete("/comments/{id}", comments.Delete)

	r.Get("/teams/{id}/evaluations", evaluations.ListByTeam)
}

func apiNotFound(w http.ResponseWriter, r *http.Request) {
	response.Err(w, http.StatusNotFound, "NOT_FOUND", "Route not found", middleware.GetRequestID(r.Context()))
}

func apiMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.Err(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", middleware.GetRequestID(r.Context()))
}
