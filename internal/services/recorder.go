package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type evaluationIDKey struct{}

// WithEvaluationID attaches the persisted evaluation record id to ctx so the
// recorder knows which row to update.
func WithEvaluationID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, evaluationIDKey{}, id)
}

// EvaluationIDFrom returns the evaluation id stored by WithEvaluationID.
func EvaluationIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(evaluationIDKey{}).(uuid.UUID)
	return id, ok
}

type evaluationRecorder struct {
	repo repositories.EvaluationRepository
}

// NewEvaluationRecorder writes outcomes to the evaluations table. Calls
// without an evaluation id in the context are ignored.
func NewEvaluationRecorder(repo repositories.EvaluationRepository) OutcomeRecorder {
	return &evaluationRecorder{repo: repo}
}

// RecordOutcome implements OutcomeRecorder.
func (r *evaluationRecorder) RecordOutcome(ctx context.Context, roleID string, outcome *models.ScoringOutcome, failure error) error {
	id, ok := EvaluationIDFrom(ctx)
	if !ok {
		return nil
	}

	if failure != nil || outcome == nil {
		if failure == nil {
			failure = errors.New("evaluation produced no outcome")
		}
		return r.repo.UpdateError(id, KindCode(failure), failure.Error())
	}

	return r.repo.UpdateResult(id, outcome)
}
