package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/craftfolio/craftfolio-api/internal/models"
)

// ScoringRepository defines data operations for project scoring results.
type ScoringRepository interface {
	Create(ctx context.Context, result *models.ProjectScoringResult) error
	GetByID(ctx context.Context, id string) (models.ProjectScoringResult, error)
	ListScoredByUser(ctx context.Context, userID string) ([]models.ProjectScoringResult, error)
	ApplyRevision(ctx context.Context, id string, score int, feedback string) error
}

type scoringRepository struct {
	db *gorm.DB
}

// NewScoringRepository instantiates the repository.
func NewScoringRepository(db *gorm.DB) ScoringRepository {
	return &scoringRepository{db: db}
}

func (r *scoringRepository) Create(ctx context.Context, result *models.ProjectScoringResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *scoringRepository) GetByID(ctx context.Context, id string) (models.ProjectScoringResult, error) {
	var result models.ProjectScoringResult
	if err := r.db.WithContext(ctx).First(&result, "id = ?", id).Error; err != nil {
		return models.ProjectScoringResult{}, err
	}
	return result, nil
}

// ListScoredByUser returns the user's scored results, most recent first.
// Results that never received a positive score are excluded from history.
func (r *scoringRepository) ListScoredByUser(ctx context.Context, userID string) ([]models.ProjectScoringResult, error) {
	var results []models.ProjectScoringResult
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("individual_skill_score > 0").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ApplyRevision overwrites the score surfaced to the user after a completed
// human review.
func (r *scoringRepository) ApplyRevision(ctx context.Context, id string, score int, feedback string) error {
	updates := map[string]interface{}{
		"individual_skill_score": score,
		"overall_feedback":       feedback,
	}
	result := r.db.WithContext(ctx).Model(&models.ProjectScoringResult{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
