package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/craftfolio/craftfolio-api/internal/models"
)

// ReviewRepository defines data operations for the manual review queue.
type ReviewRepository interface {
	Create(ctx context.Context, request *models.ReviewRequest) error
	GetByID(ctx context.Context, id string) (models.ReviewRequest, error)
	Update(ctx context.Context, request *models.ReviewRequest) error
	ListOpen(ctx context.Context, reviewerID *string) ([]models.ReviewRequest, error)
	ListByStatus(ctx context.Context, status string) ([]models.ReviewRequest, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository instantiates the repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, request *models.ReviewRequest) error {
	return wrapPermissionError(r.db.WithContext(ctx).Create(request).Error)
}

func (r *reviewRepository) GetByID(ctx context.Context, id string) (models.ReviewRequest, error) {
	var request models.ReviewRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return models.ReviewRequest{}, err
	}
	return request, nil
}

func (r *reviewRepository) Update(ctx context.Context, request *models.ReviewRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// ListOpen returns pending and in-review requests, highest priority first and
// oldest first within a priority. An optional reviewer id narrows the result
// to that reviewer's assignments plus the unassigned pool.
func (r *reviewRepository) ListOpen(ctx context.Context, reviewerID *string) ([]models.ReviewRequest, error) {
	query := r.db.WithContext(ctx).
		Where("status IN ?", []string{models.ReviewStatusPending, models.ReviewStatusInReview})

	if reviewerID != nil {
		query = query.Where("assigned_reviewer_id = ? OR assigned_reviewer_id IS NULL", *reviewerID)
	}

	var requests []models.ReviewRequest
	if err := query.
		Order("CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END").
		Order("requested_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *reviewRepository) ListByStatus(ctx context.Context, status string) ([]models.ReviewRequest, error) {
	var requests []models.ReviewRequest
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("requested_at ASC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *reviewRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type row struct {
		Status string
		Total  int64
	}

	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.ReviewRequest{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, item := range rows {
		counts[item.Status] = item.Total
	}
	return counts, nil
}
