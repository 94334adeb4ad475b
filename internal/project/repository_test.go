package project_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflows-scrum/workflows/internal/database/databasetest"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/team"
	"github.com/workflows-scrum/workflows/internal/user"
)

func setupProjectRepo(t *testing.T) (project.Repository, user.Repository, team.Repository) {
	t.Helper()
	pool := databasetest.Open(t)
	return project.NewRepository(pool), user.NewRepository(pool), team.NewRepository(pool)
}

func createOwner(t *testing.T, users user.Repository, name string) *user.User {
	t.Helper()
	u := &user.User{Name: name, Email: name + "@example.com", PasswordHash: "hash", Role: user.RoleAdmin}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }

// --- Create Tests ---

func TestCreate_Success(t *testing.T) {
	repo, users, _ := setupProjectRepo(t)
	owner := createOwner(t, users, "owner")

	p := &project.Project{Name: "Alpha", Description: strPtr("First project"), OwnerID: owner.ID}
	require.NoError(t, repo.Create(context.Background(), p))

	assert.NotZero(t, p.ID)
	assert.Equal(t, project.StatusActive, p.Status)
	assert.False(t, p.CreatedAt.IsZero())

	found, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", found.Name)
	require.NotNil(t, found.Description)
	assert.Equal(t, "First project", *found.Description)
	assert.Equal(t, owner.ID, found.OwnerID)
}

func TestCreate_NilDescription(t *testing.T) {
	repo, users, _ := setupProjectRepo(t)
	owner := createOwner(t, users, "owner")

	p := &project.Project{Name: "Bare", OwnerID: owner.ID, Status: project.StatusInProgress}
	require.NoError(t, repo.Create(context.Background(), p))

	found, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, found.Description)
	assert.Equal(t, project.StatusInProgress, found.Status)
}

func TestCreate_UnknownOwner(t *testing.T) {
	repo, _, _ := setupProjectRepo(t)

	err := repo.Create(context.Background(), &project.Project{Name: "Orphan", OwnerID: 999})
	assert.ErrorIs(t, err, project.ErrOwnerNotFound)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _, _ := setupProjectRepo(t)

	_, err := repo.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

// --- List Tests ---

func TestList_NewestFirstAndOwnerFilter(t *testing.T) {
	repo, users, _ := setupProjectRepo(t)
	ctx := context.Background()
	a := createOwner(t, users, "a")
	b := createOwner(t, users, "b")

	for _, p := range []*project.Project{
		{Name: "One", OwnerID: a.ID},
		{Name: "Two", OwnerID: b.ID},
		{Name: "Three", OwnerID: a.ID},
	} {
		require.NoError(t, repo.Create(ctx, p))
	}

	all, err := repo.List(ctx, project.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Three", all[0].Name)
	assert.Equal(t, "One", all[2].Name)

	mine, err := repo.List(ctx, project.ListFilter{OwnerID: a.ID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, p := range mine {
		assert.Equal(t, a.ID, p.OwnerID)
	}
}

func TestList_Empty(t *testing.T) {
	repo, _, _ := setupProjectRepo(t)

	projects, err := repo.List(context.Background(), project.ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestListForMember(t *testing.T) {
	repo, users, teams := setupProjectRepo(t)
	ctx := context.Background()
	owner := createOwner(t, users, "owner")
	dev := createOwner(t, users, "dev")

	owned := &project.Project{Name: "Owned", OwnerID: owner.ID}
	joined := &project.Project{Name: "Joined", OwnerID: owner.ID}
	other := &project.Project{Name: "Other", OwnerID: owner.ID}
	for _, p := range []*project.Project{owned, joined, other} {
		require.NoError(t, repo.Create(ctx, p))
	}

	tm, err := teams.GetOrCreateMainTeam(ctx, joined.ID)
	require.NoError(t, err)
	require.NoError(t, teams.AddMember(ctx, &team.Member{TeamID: tm.ID, UserID: dev.ID}))

	devProjects, err := repo.ListForMember(ctx, dev.ID)
	require.NoError(t, err)
	require.Len(t, devProjects, 1)
	assert.Equal(t, joined.ID, devProjects[0].ID)

	ownerProjects, err := repo.ListForMember(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, ownerProjects, 3)
}

// --- Update Tests ---

func TestUpdate_Fields(t *testing.T) {
	repo, users, _ := setupProjectRepo(t)
	ctx := context.Background()
	owner := createOwner(t, users, "owner")
	p := &project.Project{Name: "Old", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, p))

	updated, err := repo.Update(ctx, p.ID, project.UpdateFields{
		Name:        strPtr("New"),
		Description: strPtr("Described"),
		Status:      strPtr(project.StatusCompleted),
	})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "Described", *updated.Description)
	assert.Equal(t, project.StatusCompleted, updated.Status)
	assert.Equal(t, p.ID, updated.ID)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, _, _ := setupProjectRepo(t)

	_, err := repo.Update(context.Background(), 999, project.UpdateFields{Name: strPtr("x")})
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

// --- Delete Tests ---

func TestDelete_RemovesExactlyOne(t *testing.T) {
	repo, users, teams := setupProjectRepo(t)
	ctx := context.Background()
	owner := createOwner(t, users, "owner")
	keep := &project.Project{Name: "Keep", OwnerID: owner.ID}
	drop := &project.Project{Name: "Drop", OwnerID: owner.ID}
	require.NoError(t, repo.Create(ctx, keep))
	require.NoError(t, repo.Create(ctx, drop))
	_, err := teams.GetOrCreateMainTeam(ctx, drop.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, drop.ID))

	_, err = repo.GetByID(ctx, drop.ID)
	assert.ErrorIs(t, err, project.ErrProjectNotFound)

	remaining, err := repo.List(ctx, project.ListFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, keep.ID, remaining[0].ID)

	dropTeams, err := teams.ListByProject(ctx, drop.ID)
	require.NoError(t, err)
	assert.Empty(t, dropTeams)

	assert.ErrorIs(t, repo.Delete(ctx, drop.ID), project.ErrProjectNotFound)
}

func TestDeleteOwner_Restricted(t *testing.T) {
	repo, users, _ := setupProjectRepo(t)
	ctx := context.Background()
	owner := createOwner(t, users, "owner")
	require.NoError(t, repo.Create(ctx, &project.Project{Name: "Held", OwnerID: owner.ID}))

	assert.ErrorIs(t, users.Delete(ctx, owner.ID), user.ErrUserOwnsProjects)
}

func TestCount(t *testing.T) {
	repo, users, _ := setupProjectRepo(t)
	ctx := context.Background()
	owner := createOwner(t, users, "owner")
	require.NoError(t, repo.Create(ctx, &project.Project{Name: "A", OwnerID: owner.ID}))
	require.NoError(t, repo.Create(ctx, &project.Project{Name: "B", OwnerID: owner.ID}))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
