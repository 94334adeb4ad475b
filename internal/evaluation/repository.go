package evaluation

import (
	"context"
	"errors"
)

// ErrTeamNotInProject is returned when the evaluated team does not belong to the project.
var ErrTeamNotInProject = errors.New("team does not belong to project")

// ErrScoreOutOfRange is returned when a score is outside MinScore..MaxScore.
var ErrScoreOutOfRange = errors.New("score out of range")

// Repository provides operations on the evaluations table.
type Repository interface {
	Create(ctx context.Context, evaluation *Evaluation) error
	ListByTeam(ctx context.Context, teamID int64) ([]Evaluation, error)
	ListByProject(ctx context.Context, projectID int64) ([]Evaluation, error)
}
