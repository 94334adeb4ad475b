package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/workflows-scrum/workflows/api"
	"github.com/workflows-scrum/workflows/internal/api"
	"github.com/workflows-scrum/workflows/internal/auth"
	"github.com/workflows-scrum/workflows/internal/comment"
	"github.com/workflows-scrum/workflows/internal/config"
	"github.com/workflows-scrum/workflows/internal/database"
	"github.com/workflows-scrum/workflows/internal/evaluation"
	"github.com/workflows-scrum/workflows/internal/logging"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/sprint"
	"github.com/workflows-scrum/workflows/internal/task"
	"github.com/workflows-scrum/workflows/internal/team"
	"github.com/workflows-scrum/workflows/internal/user"
	"github.com/workflows-scrum/workflows/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logCloser := logging.Setup(os.Stdout, logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer func() { _ = logCloser.Close() }()

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		_ = logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	pool := db.Pool()
	userRepo := user.NewRepository(pool)
	projectRepo := project.NewRepository(pool)
	teamRepo := team.NewRepository(pool)
	sprintRepo := sprint.NewRepository(pool)
	taskRepo := task.NewRepository(pool)
	commentRepo := comment.NewRepository(pool)
	evaluationRepo := evaluation.NewRepository(pool)

	accounts := auth.NewService(userRepo, cfg.BcryptCost, cfg.RegisterRole)
	if _, err := accounts.BootstrapAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("bootstrapping admin: %w", err)
	}

	sessions := auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL, cfg.SessionSecure)
	members := team.NewService(teamRepo, userRepo, projectRepo)

	pages, err := web.New(web.Deps{
		Sessions: sessions,
		Accounts: accounts,
		Users:    userRepo,
		Projects: projectRepo,
		Members:  members,
		Teams:    teamRepo,
		Tasks:    taskRepo,
	})
	if err != nil {
		return fmt.Errorf("loading pages: %w", err)
	}

	router := api.NewRouter(api.RouterDeps{
		Version:     cfg.Version,
		DB:          db,
		Sessions:    sessions,
		OpenAPISpec: specpkg.OpenAPISpec,
		Users:       userRepo,
		Accounts:    accounts,
		Projects:    projectRepo,
		Teams:       teamRepo,
		Members:     members,
		Sprints:     sprintRepo,
		Tasks:       taskRepo,
		Comments:    commentRepo,
		Evaluations: evaluationRepo,
		Pages:       pages,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting WorkflowS server", "port", cfg.Port, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
