// Command seed loads sample users and projects into the database.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/workflows-scrum/workflows/internal/auth"
	"github.com/workflows-scrum/workflows/internal/config"
	"github.com/workflows-scrum/workflows/internal/database"
	"github.com/workflows-scrum/workflows/internal/logging"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/team"
	"github.com/workflows-scrum/workflows/internal/user"
)

const samplePassword = "password123"

type sampleUser struct {
	name  string
	email string
	role  string
}

var sampleUsers = []sampleUser{
	{"María García", "maria.garcia@workflow.com", user.RoleScrumMaster},
	{"Carlos López", "carlos.lopez@workflow.com", user.RoleProductOwner},
	{"Ana Rodríguez", "ana.rodriguez@workflow.com", user.RoleTeamDeveloper},
	{"Luis Martínez", "luis.martinez@workflow.com", user.RoleTeamDeveloper},
	{"Sofia Hernández", "sofia.hernandez@workflow.com", user.RoleTeamDeveloper},
}

type sampleProject struct {
	name        string
	description string
}

var sampleProjects = []sampleProject{
	{"Proyecto Scrum Académico", "Implementación de metodología Scrum para gestión de proyectos académicos en la Universidad La Salle."},
	{"Sistema de Evaluación", "Desarrollo de un sistema de evaluación automatizada para proyectos de estudiantes."},
	{"Portal Educativo", "Creación de un portal educativo interactivo para mejorar la experiencia de aprendizaje."},
	{"App Móvil Universitaria", "Desarrollo de una aplicación móvil para estudiantes con funcionalidades de campus virtual."},
}

// memberRoleFor maps an account role onto the role it takes in the first sample project.
var memberRoleFor = map[string]string{
	user.RoleScrumMaster:   team.RoleScrumMaster,
	user.RoleProductOwner:  team.RoleProductOwner,
	user.RoleTeamDeveloper: team.RoleTeamMember,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logCloser := logging.Setup(os.Stdout, logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = logCloser.Close() }()

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("seed failed", "error", err)
		_ = logCloser.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	users := user.NewRepository(db.Pool())
	projects := project.NewRepository(db.Pool())
	members := team.NewService(team.NewRepository(db.Pool()), users, projects)
	accounts := auth.NewService(users, cfg.BcryptCost, cfg.RegisterRole)

	if _, err := accounts.BootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}

	seeded, err := seedUsers(ctx, users, accounts)
	if err != nil {
		return err
	}

	admins, err := users.List(ctx, user.ListFilter{Role: user.RoleAdmin, Page: 1, Limit: 1})
	if err != nil {
		return fmt.Errorf("finding admin: %w", err)
	}
	if len(admins.Users) == 0 {
		return errors.New("no admin user to own the sample projects")
	}
	owner := admins.Users[0]

	first, err := seedProjects(ctx, projects, owner.ID)
	if err != nil {
		return err
	}
	if first == nil {
		return nil
	}

	for _, u := range seeded {
		role := memberRoleFor[u.Role]
		_, err := members.AssignMember(ctx, first.ID, u.ID, role)
		switch {
		case errors.Is(err, team.ErrAlreadyMember):
			slog.Info("member already assigned", "projectId", first.ID, "userId", u.ID)
		case err != nil:
			return fmt.Errorf("assigning %s to %q: %w", u.Email, first.Name, err)
		default:
			slog.Info("member assigned", "projectId", first.ID, "userId", u.ID, "role", role)
		}
	}

	slog.Info("seed complete", "users", len(seeded), "owner", owner.Email)
	return nil
}

// seedUsers creates the sample accounts, skipping emails that already exist.
// It returns every sample user, new or existing.
func seedUsers(ctx context.Context, users user.Repository, accounts *auth.Service) ([]*user.User, error) {
	out := make([]*user.User, 0, len(sampleUsers))
	for _, su := range sampleUsers {
		existing, err := users.GetByEmail(ctx, su.email)
		if err == nil {
			slog.Info("user already exists", "email", su.email)
			out = append(out, existing)
			continue
		}
		if !errors.Is(err, user.ErrUserNotFound) {
			return nil, fmt.Errorf("looking up %s: %w", su.email, err)
		}

		u, err := accounts.CreateUser(ctx, su.name, su.email, samplePassword, su.role)
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", su.email, err)
		}
		out = append(out, u)
	}
	return out, nil
}

// seedProjects creates the sample projects owned by ownerID, skipping names the
// owner already has. It returns the first sample project.
func seedProjects(ctx context.Context, projects project.Repository, ownerID int64) (*project.Project, error) {
	owned, err := projects.List(ctx, project.ListFilter{OwnerID: ownerID})
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	byName := make(map[string]*project.Project, len(owned))
	for i := range owned {
		byName[owned[i].Name] = &owned[i]
	}

	var first *project.Project
	for i, sp := range sampleProjects {
		p, ok := byName[sp.name]
		if ok {
			slog.Info("project already exists", "projectId", p.ID, "name", p.Name)
		} else {
			description := sp.description
			p = &project.Project{
				Name:        sp.name,
				Description: &description,
				OwnerID:     ownerID,
				Status:      project.StatusActive,
			}
			if err := projects.Create(ctx, p); err != nil {
				return nil, fmt.Errorf("creating project %q: %w", sp.name, err)
			}
			slog.Info("project created", "projectId", p.ID, "name", p.Name)
		}
		if i == 0 {
			first = p
		}
	}
	return first, nil
}
