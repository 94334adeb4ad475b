package evaluation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflows-scrum/workflows/internal/database/databasetest"
	"github.com/workflows-scrum/workflows/internal/evaluation"
	"github.com/workflows-scrum/workflows/internal/project"
	"github.com/workflows-scrum/workflows/internal/team"
	"github.com/workflows-scrum/workflows/internal/user"
)

type fixture struct {
	evaluations evaluation.Repository
	evaluator   *user.User
	project     *project.Project
	team        *team.Team
	otherTeam   *team.Team
}

func setupEvaluationRepo(t *testing.T) *fixture {
	t.Helper()
	pool := databasetest.Open(t)
	ctx := context.Background()

	evaluator := &user.User{Name: "Prof", Email: "prof@example.com", PasswordHash: "hash", Role: user.RoleAdmin}
	require.NoError(t, user.NewRepository(pool).Create(ctx, evaluator))

	projects := project.NewRepository(pool)
	p := &project.Project{Name: "Alpha", OwnerID: evaluator.ID}
	require.NoError(t, projects.Create(ctx, p))
	other := &project.Project{Name: "Beta", OwnerID: evaluator.ID}
	require.NoError(t, projects.Create(ctx, other))

	teams := team.NewRepository(pool)
	tm, err := teams.GetOrCreateMainTeam(ctx, p.ID)
	require.NoError(t, err)
	otherTeam, err := teams.GetOrCreateMainTeam(ctx, other.ID)
	require.NoError(t, err)

	return &fixture{
		evaluations: evaluation.NewRepository(pool),
		evaluator:   evaluator,
		project:     p,
		team:        tm,
		otherTeam:   otherTeam,
	}
}

func TestCreate_Success(t *testing.T) {
	f := setupEvaluationRepo(t)
	feedback := "Good velocity"

	e := &evaluation.Evaluation{ProjectID: f.project.ID, TeamID: f.team.ID, EvaluatorID: &f.evaluator.ID, Score: 85, Feedback: &feedback}
	require.NoError(t, f.evaluations.Create(context.Background(), e))

	assert.NotZero(t, e.ID)
	assert.Equal(t, team.MainTeamName, e.TeamName)
}

func TestCreate_TeamFromOtherProject(t *testing.T) {
	f := setupEvaluationRepo(t)

	e := &evaluation.Evaluation{ProjectID: f.project.ID, TeamID: f.otherTeam.ID, Score: 50}
	assert.ErrorIs(t, f.evaluations.Create(context.Background(), e), evaluation.ErrTeamNotInProject)
}

func TestCreate_ScoreBounds(t *testing.T) {
	f := setupEvaluationRepo(t)
	ctx := context.Background()

	for _, score := range []int{-1, 101} {
		e := &evaluation.Evaluation{ProjectID: f.project.ID, TeamID: f.team.ID, Score: score}
		assert.ErrorIs(t, f.evaluations.Create(ctx, e), evaluation.ErrScoreOutOfRange)
	}
	for _, score := range []int{0, 100} {
		e := &evaluation.Evaluation{ProjectID: f.project.ID, TeamID: f.team.ID, Score: score}
		assert.NoError(t, f.evaluations.Create(ctx, e))
	}
}

func TestListings(t *testing.T) {
	f := setupEvaluationRepo(t)
	ctx := context.Background()

	require.NoError(t, f.evaluations.Create(ctx, &evaluation.Evaluation{ProjectID: f.project.ID, TeamID: f.team.ID, EvaluatorID: &f.evaluator.ID, Score: 70}))
	require.NoError(t, f.evaluations.Create(ctx, &evaluation.Evaluation{ProjectID: f.project.ID, TeamID: f.team.ID, Score: 90}))
	require.NoError(t, f.evaluations.Create(ctx, &evaluation.Evaluation{ProjectID: f.otherTeam.ProjectID, TeamID: f.otherTeam.ID, Score: 10}))

	byTeam, err := f.evaluations.ListByTeam(ctx, f.team.ID)
	require.NoError(t, err)
	require.Len(t, byTeam, 2)
	assert.Equal(t, 90, byTeam[0].Score)
	assert.Nil(t, byTeam[0].EvaluatorName)
	require.NotNil(t, byTeam[1].EvaluatorName)
	assert.Equal(t, "Prof", *byTeam[1].EvaluatorName)

	byProject, err := f.evaluations.ListByProject(ctx, f.project.ID)
	require.NoError(t, err)
	assert.Len(t, byProject, 2)

	none, err := f.evaluations.ListByTeam(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, none)
}
