package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/workflows-scrum/workflows/internal/api/middleware"
	"github.com/workflows-scrum/workflows/internal/api/validation"
	"github.com/workflows-scrum/workflows/internal/auth"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/task"
	"github.com/workflows-scrum/workflows/internal/team"
	"github.com/workflows-scrum/workflows/internal/user"
)

const (
	usersPerPage    = 10
	assignableUsers = 100
	projectsTitle   = "Proyectos"
)

type dashboardData struct {
	Projects     int
	Tasks        int
	PendingTasks int
	TeamMembers  int
	// Users is only filled in for administrators.
	Users int
}

type projectsData struct {
	Projects    []project.Project
	Name        string
	Description string
	Errors      map[string]string
}

type projectData struct {
	Project   *project.Project
	Members   []team.MemberDetail
	Users     []user.User
	Roles     []string
	Statuses  []string
	CanManage bool
}

type usersData struct {
	Users      []user.User
	Query      string
	Total      int
	Page       int
	TotalPages int
	// Roles is only filled in for administrators, who may create accounts.
	Roles []string
}

// canManageMembers reports whether the viewer may change project membership.
func canManageMembers(s *auth.Session) bool {
	return s != nil && (s.Role == user.RoleAdmin || s.Role == user.RoleScrumMaster)
}

func (h *Handler) visibleProjects(r *http.Request, s *auth.Session) ([]project.Project, error) {
	if s.Role == user.RoleAdmin {
		return h.Projects.List(r.Context(), project.ListFilter{})
	}
	return h.Projects.ListForMember(r.Context(), s.UserID)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	var projects []project.Project
	var err error
	if s.Role != user.RoleAdmin {
		projects, err = h.Projects.ListForMember(r.Context(), s.UserID)
		if err != nil {
			h.serverError(w, r, "list projects", err)
			return
		}
	}
	tasks, err := h.Tasks.ListByAssignee(r.Context(), s.UserID)
	if err != nil {
		h.serverError(w, r, "list tasks", err)
		return
	}
	members, err := h.Teams.ListMembersForUser(r.Context(), s.UserID)
	if err != nil {
		h.serverError(w, r, "list team members", err)
		return
	}

	data := dashboardData{Projects: len(projects), Tasks: len(tasks)}
	for _, t := range tasks {
		if t.Status != task.StatusDone {
			data.PendingTasks++
		}
	}
	seen := make(map[int64]struct{}, len(members))
	for _, m := range members {
		seen[m.UserID] = struct{}{}
	}
	data.TeamMembers = len(seen)

	if s.Role == user.RoleAdmin {
		if data.Projects, err = h.Projects.Count(r.Context()); err != nil {
			h.serverError(w, r, "count projects", err)
			return
		}
		if data.Users, err = h.Users.CountAll(r.Context()); err != nil {
			h.serverError(w, r, "count users", err)
			return
		}
	}

	h.render(w, r, http.StatusOK, "dashboard.html", page{Title: "Dashboard", Active: "dashboard", Data: data})
}

func (h *Handler) projects(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	projects, err := h.visibleProjects(r, s)
	if err != nil {
		h.serverError(w, r, "list projects", err)
		return
	}

	h.render(w, r, http.StatusOK, "projects.html", page{
		Title:  projectsTitle,
		Active: "projects",
		Data:   projectsData{Projects: projects},
	})
}

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Solicitud inválida", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.PostFormValue("name"))
	descriptionText := strings.TrimSpace(r.PostFormValue("description"))
	var description *string
	if descriptionText != "" {
		description = &descriptionText
	}

	if errs := validation.ValidateProjectRequest(validation.ProjectRequest{Name: name, Description: description}); len(errs) > 0 {
		formErrors := make(map[string]string, len(errs))
		for _, fe := range errs {
			if fe.Field == "name" && name == "" {
				formErrors[fe.Field] = "El nombre del proyecto es requerido"
				continue
			}
			formErrors[fe.Field] = fe.Message
		}
		projects, err := h.visibleProjects(r, s)
		if err != nil {
			h.serverError(w, r, "list projects", err)
			return
		}
		h.render(w, r, http.StatusBadRequest, "projects.html", page{
			Title:  projectsTitle,
			Active: "projects",
			Data:   projectsData{Projects: projects, Name: name, Description: descriptionText, Errors: formErrors},
		})
		return
	}

	p := &project.Project{
		Name:        name,
		Description: description,
		OwnerID:     s.UserID,
		Status:      project.StatusActive,
	}
	if err := h.Projects.Create(r.Context(), p); err != nil {
		h.serverError(w, r, "create project", err)
		return
	}

	http.Redirect(w, r, "/dashboard/projects/"+strconv.FormatInt(p.ID, 10), http.StatusSeeOther)
}

func (h *Handler) projectDetail(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.NotFound(w, r)
		return
	}

	p, err := h.Projects.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, project.ErrProjectNotFound) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, "get project", err)
		return
	}

	members, err := h.Members.ListProjectMembers(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "list project members", err)
		return
	}

	data := projectData{
		Project:   p,
		Members:   members,
		Roles:     team.MemberRoles,
		Statuses:  project.Statuses,
		CanManage: canManageMembers(s),
	}
	if data.CanManage {
		result, err := h.Users.List(r.Context(), user.ListFilter{Page: 1, Limit: assignableUsers})
		if err != nil {
			h.serverError(w, r, "list users", err)
			return
		}
		data.Users = result.Users
	}

	h.render(w, r, http.StatusOK, "project.html", page{Title: p.Name, Active: "projects", Data: data})
}

func (h *Handler) users(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	pageNum, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || pageNum < 1 {
		pageNum = 1
	}

	result, err := h.Users.List(r.Context(), user.ListFilter{Search: q, Page: pageNum, Limit: usersPerPage})
	if err != nil {
		h.serverError(w, r, "list users", err)
		return
	}

	totalPages := (result.Total + usersPerPage - 1) / usersPerPage
	if totalPages == 0 {
		totalPages = 1
	}

	data := usersData{
		Users:      result.Users,
		Query:      q,
		Total:      result.Total,
		Page:       pageNum,
		TotalPages: totalPages,
	}
	if s.Role == user.RoleAdmin {
		data.Roles = user.Roles
	}

	h.render(w, r, http.StatusOK, "users.html", page{Title: "Usuarios", Active: "users", Data: data})
}

func (h *Handler) team(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	members, err := h.Teams.ListMembersForUser(r.Context(), s.UserID)
	if err != nil {
		h.serverError(w, r, "list team members", err)
		return
	}

	h.render(w, r, http.StatusOK, "team.html", page{Title: "Equipo", Active: "team", Data: members})
}

func (h *Handler) tasks(w http.ResponseWriter, r *http.Request) {
	s := middleware.GetSession(r.Context())

	tasks, err := h.Tasks.ListByAssignee(r.Context(), s.UserID)
	if err != nil {
		h.serverError(w, r, "list tasks", err)
		return
	}

	status := r.URL.Query().Get("status")
	if task.ValidStatus(status) {
		filtered := make([]task.Task, 0, len(tasks))
		for _, t := range tasks {
			if t.Status == status {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}

	h.render(w, r, http.StatusOK, "tasks.html", page{Title: "Mis tareas", Active: "tasks", Data: tasks})
}
