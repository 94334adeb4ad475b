package task_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflows-scrum/workflows/internal/database/databasetest"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/sprint"
	"github.com/workflows-scrum/workflows/internal/task"
	"github.com/workflows-scrum/workflows/internal/user"
)

type fixture struct {
	tasks    task.Repository
	projects project.Repository
	sprints  sprint.Repository
	owner    *user.User
	dev      *user.User
	project  *project.Project
	sprint   *sprint.Sprint
}

func setupTaskRepo(t *testing.T) *fixture {
	t.Helper()
	pool := databasetest.Open(t)
	ctx := context.Background()
	users := user.NewRepository(pool)

	owner := &user.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "hash", Role: user.RoleAdmin}
	require.NoError(t, users.Create(ctx, owner))
	dev := &user.User{Name: "Dev", Email: "dev@example.com", PasswordHash: "hash", Role: user.RoleTeamDeveloper}
	require.NoError(t, users.Create(ctx, dev))

	projects := project.NewRepository(pool)
	sprints := sprint.NewRepository(pool)

	p := &project.Project{Name: "Alpha", OwnerID: owner.ID}
	require.NoError(t, projects.Create(ctx, p))
	s := &sprint.Sprint{ProjectID: p.ID, Name: "Sprint 1"}
	require.NoError(t, sprints.Create(ctx, s))

	return &fixture{
		tasks:    task.NewRepository(pool),
		projects: projects,
		sprints:  sprints,
		owner:    owner,
		dev:      dev,
		project:  p,
		sprint:   s,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestCreate_DefaultsAndJoins(t *testing.T) {
	f := setupTaskRepo(t)
	ctx := context.Background()

	tk := &task.Task{ProjectID: f.project.ID, SprintID: &f.sprint.ID, Title: "Login form", AssigneeID: &f.dev.ID}
	require.NoError(t, f.tasks.Create(ctx, tk))
	assert.Equal(t, task.StatusTodo, tk.Status)
	assert.Equal(t, task.PriorityMedium, tk.Priority)

	found, err := f.tasks.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", found.ProjectName)
	require.NotNil(t, found.AssigneeName)
	assert.Equal(t, "Dev", *found.AssigneeName)
	require.NotNil(t, found.SprintID)
	assert.Equal(t, f.sprint.ID, *found.SprintID)
}

func TestCreate_UnknownReferences(t *testing.T) {
	f := setupTaskRepo(t)
	ctx := context.Background()

	err := f.tasks.Create(ctx, &task.Task{ProjectID: 999, Title: "x"})
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	err = f.tasks.Create(ctx, &task.Task{ProjectID: f.project.ID, SprintID: int64Ptr(999), Title: "x"})
	assert.ErrorIs(t, err, sprint.ErrSprintNotFound)

	err = f.tasks.Create(ctx, &task.Task{ProjectID: f.project.ID, AssigneeID: int64Ptr(999), Title: "x"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestListings(t *testing.T) {
	f := setupTaskRepo(t)
	ctx := context.Background()

	due1, _ := time.Parse("2006-01-02", "2024-06-01")
	due2, _ := time.Parse("2006-01-02", "2024-05-01")

	require.NoError(t, f.tasks.Create(ctx, &task.Task{ProjectID: f.project.ID, Title: "Backlog item"}))
	require.NoError(t, f.tasks.Create(ctx, &task.Task{ProjectID: f.project.ID, SprintID: &f.sprint.ID, Title: "Later", AssigneeID: &f.dev.ID, DueDate: &due1}))
	require.NoError(t, f.tasks.Create(ctx, &task.Task{ProjectID: f.project.ID, SprintID: &f.sprint.ID, Title: "Sooner", AssigneeID: &f.dev.ID, DueDate: &due2}))

	bySprint, err := f.tasks.ListBySprint(ctx, f.sprint.ID)
	require.NoError(t, err)
	assert.Len(t, bySprint, 2)

	byProject, err := f.tasks.ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Len(t, byProject, 3)

	mine, err := f.tasks.ListByAssignee(ctx, f.dev.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Sooner", mine[0].Title)
	assert.Equal(t, "Alpha", mine[0].ProjectName)

	none, err := f.tasks.ListByAssignee(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdate_StatusAndUnassign(t *testing.T) {
	f := setupTaskRepo(t)
	ctx := context.Background()
	tk := &task.Task{ProjectID: f.project.ID, SprintID: &f.sprint.ID, Title: "Login", AssigneeID: &f.dev.ID}
	require.NoError(t, f.tasks.Create(ctx, tk))

	status := task.StatusDone
	points := 5
	updated, err := f.tasks.Update(ctx, tk.ID, task.UpdateFields{
		Status:      &status,
		StoryPoints: &points,
		AssigneeID:  int64Ptr(0),
		SprintID:    int64Ptr(0),
	})
	require.NoError(t, err)

	assert.Equal(t, task.StatusDone, updated.Status)
	require.NotNil(t, updated.StoryPoints)
	assert.Equal(t, 5, *updated.StoryPoints)
	assert.Nil(t, updated.AssigneeID)
	assert.Nil(t, updated.AssigneeName)
	assert.Nil(t, updated.SprintID)
}

func TestUpdate_Errors(t *testing.T) {
	f := setupTaskRepo(t)
	ctx := context.Background()
	tk := &task.Task{ProjectID: f.project.ID, Title: "Login"}
	require.NoError(t, f.tasks.Create(ctx, tk))

	title := "x"
	_, err := f.tasks.Update(ctx, 999, task.UpdateFields{Title: &title})
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	_, err = f.tasks.Update(ctx, tk.ID, task.UpdateFields{AssigneeID: int64Ptr(999)})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUpdate_SprintMustShareProject(t *testing.T) {
	f := setupTaskRepo(t)
	ctx := context.Background()
	tk := &task.Task{ProjectID: f.project.ID, Title: "Login"}
	require.NoError(t, f.tasks.Create(ctx, tk))

	other := &project.Project{Name: "Beta", OwnerID: f.owner.ID}
	require.NoError(t, f.projects.Create(ctx, other))
	foreign := &sprint.Sprint{ProjectID: other.ID, Name: "Beta 1"}
	require.NoError(t, f.sprints.Create(ctx, foreign))

	_, err := f.tasks.Update(ctx, tk.ID, task.UpdateFields{SprintID: &foreign.ID})
	assert.ErrorIs(t, err, task.ErrSprintOutsideProject)

	_, err = f.tasks.Update(ctx, tk.ID, task.UpdateFields{SprintID: int64Ptr(999)})
	assert.ErrorIs(t, err, sprint.ErrSprintNotFound)

	_, err = f.tasks.Update(ctx, 999, task.UpdateFields{SprintID: &f.sprint.ID})
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	found, err := f.tasks.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Nil(t, found.SprintID)

	moved, err := f.tasks.Update(ctx, tk.ID, task.UpdateFields{SprintID: &f.sprint.ID})
	require.NoError(t, err)
	require.NotNil(t, moved.SprintID)
	assert.Equal(t, f.sprint.ID, *moved.SprintID)

	// Removing the other project leaves this task in place.
	require.NoError(t, f.projects.Delete(ctx, other.ID))
	_, err = f.tasks.GetByID(ctx, tk.ID)
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	f := setupTaskRepo(t)
	ctx := context.Background()
	keep := &task.Task{ProjectID: f.project.ID, Title: "Keep"}
	drop := &task.Task{ProjectID: f.project.ID, Title: "Drop"}
	require.NoError(t, f.tasks.Create(ctx, keep))
	require.NoError(t, f.tasks.Create(ctx, drop))

	require.NoError(t, f.tasks.Delete(ctx, drop.ID))

	remaining, err := f.tasks.ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)

	assert.ErrorIs(t, f.tasks.Delete(ctx, drop.ID), task.ErrTaskNotFound)
}
