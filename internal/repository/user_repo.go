package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/craftfolio/craftfolio-api/internal/models"
)

// UserRepository defines data operations for users and their skill ledger.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateScoring(ctx context.Context, user *models.User, entry *models.SkillProgressionEntry) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository instantiates the repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Preload("SkillProgression", func(db *gorm.DB) *gorm.DB {
			return db.Order("achieved_at ASC")
		}).
		First(&user, "id = ?", id).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

// UpdateScoring persists the recomputed scoring state and, when a level
// change occurred, appends the ledger entry in the same transaction.
func (r *userRepository) UpdateScoring(ctx context.Context, user *models.User, entry *models.SkillProgressionEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"average_project_score":  user.AverageProjectScore,
			"calculated_skill_level": user.CalculatedSkillLevel,
			"project_count":          user.ProjectCount,
			"last_score_update":      user.LastScoreUpdate,
		}
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
			return err
		}
		if entry != nil {
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
