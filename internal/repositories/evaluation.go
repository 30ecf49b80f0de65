package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/resume-screener/internal/models"
)

type EvaluationRepository interface {
	Create(eval *models.Evaluation) error
	FindByID(id uuid.UUID) (*models.Evaluation, error)
	Claim(id uuid.UUID) (bool, error)
	UpdateResult(id uuid.UUID, outcome *models.ScoringOutcome) error
	UpdateError(id uuid.UUID, kind, errorMsg string) error
	FindPendingJobs(limit int) ([]models.Evaluation, error)
}

type evaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) EvaluationRepository {
	return &evaluationRepository{db: db}
}

func (r *evaluationRepository) Create(eval *models.Evaluation) error {
	if err := r.db.Create(eval).Error; err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	return nil
}

func (r *evaluationRepository) FindByID(id uuid.UUID) (*models.Evaluation, error) {
	var eval models.Evaluation
	if err := r.db.Where("id = ?", id).First(&eval).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &eval, nil
}

// Claim moves a queued evaluation to processing. It reports false when the
// record is missing or another worker already took it.
func (r *evaluationRepository) Claim(id uuid.UUID) (bool, error) {
	result := r.db.Model(&models.Evaluation{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to claim evaluation: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *evaluationRepository) UpdateResult(id uuid.UUID, outcome *models.ScoringOutcome) error {
	if outcome == nil {
		return fmt.Errorf("nil outcome for evaluation %s", id)
	}

	withoutAI := outcome.ScoreWithoutChatGPT
	withAI := outcome.ScoreWithChatGPT
	summary := outcome.Summary

	// Struct updates go through the json serializer for the skill lists.
	result := r.db.Model(&models.Evaluation{}).
		Where("id = ?", id).
		Select("status", "score_without_chatgpt", "score_with_chatgpt", "summary",
			"matched_skills", "missing_skills", "degraded", "error_kind", "error_message", "updated_at").
		Updates(&models.Evaluation{
			Status:              models.StatusCompleted,
			ScoreWithoutChatGPT: &withoutAI,
			ScoreWithChatGPT:    &withAI,
			Summary:             &summary,
			MatchedSkills:       nonNil(outcome.MatchedSkills),
			MissingSkills:       nonNil(outcome.MissingSkills),
			Degraded:            outcome.Degraded,
			UpdatedAt:           time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
	}

	return nil
}

func (r *evaluationRepository) UpdateError(id uuid.UUID, kind, errorMsg string) error {
	return r.update(id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_kind":    kind,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *evaluationRepository) FindPendingJobs(limit int) ([]models.Evaluation, error) {
	var evals []models.Evaluation
	err := r.db.
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&evals).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return evals, nil
}

func (r *evaluationRepository) update(id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.Model(&models.Evaluation{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update evaluation: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("evaluation %s: %w", id, ErrNotFound)
	}

	return nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
