package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/craftfolio/craftfolio-api/internal/dto"
	"github.com/craftfolio/craftfolio-api/internal/models"
	"github.com/craftfolio/craftfolio-api/internal/observability"
	"github.com/craftfolio/craftfolio-api/internal/repository"
	"github.com/craftfolio/craftfolio-api/internal/scoring"
)

// ReviewPermissionDenied is the sentinel id returned when the review store
// rejected the write for lack of privileges. Review submission is
// best-effort: the scoring flow must complete regardless, so the failure is
// signalled instead of raised.
const ReviewPermissionDenied = "review-permission-denied"

// ErrReviewNotFound indicates the review request cannot be located.
var ErrReviewNotFound = errors.New("review request not found")

// ErrInvalidTransition indicates a review state change outside the permitted
// lifecycle. This is a contract violation by the caller.
var ErrInvalidTransition = errors.New("invalid review status transition")

// Priority and flagging thresholds for escalated submissions.
const (
	highPriorityConfidence   = 50
	mediumPriorityConfidence = 70
	highPriorityScoreFloor   = 30
	highPriorityScoreCeiling = 95
	flaggedCriterionCeiling  = 60
)

// ManualReviewService manages the queue of submissions escalated to humans.
type ManualReviewService interface {
	SubmitForReview(ctx context.Context, result scoring.Result, userRequested bool, notes string) (string, error)
	RequestUserReview(ctx context.Context, payload dto.RequestReviewRequest) (string, error)
	AssignReview(ctx context.Context, id, reviewerID string) (dto.ReviewResponse, error)
	CompleteReview(ctx context.Context, id string, payload dto.CompleteReviewRequest) (dto.ReviewResponse, error)
	RejectReview(ctx context.Context, id string, notes string) (dto.ReviewResponse, error)
	PendingReviews(ctx context.Context, reviewerID *string) ([]dto.ReviewResponse, error)
	Stats(ctx context.Context) (dto.ReviewStatsResponse, error)
}

type manualReviewService struct {
	reviews   repository.ReviewRepository
	scorings  repository.ScoringRepository
	cache     *redis.Client
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewManualReviewService constructs the review queue service. The redis
// client is optional; when present, applying a score revision drops the
// cached copy of the scoring result so reads see the revised score.
func NewManualReviewService(reviews repository.ReviewRepository, scorings repository.ScoringRepository, cache *redis.Client, validate *validator.Validate, logger zerolog.Logger) ManualReviewService {
	return &manualReviewService{
		reviews:   reviews,
		scorings:  scorings,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "manual_review_service").Logger(),
		tracer:    otel.Tracer("github.com/craftfolio/craftfolio-api/internal/service/manual_review"),
		now:       time.Now,
	}
}

func (s *manualReviewService) SubmitForReview(ctx context.Context, result scoring.Result, userRequested bool, notes string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "review.submit", trace.WithAttributes(
		attribute.String("review.scoring_id", result.ScoringID),
		attribute.Bool("review.user_requested", userRequested),
	))
	defer span.End()

	priority := reviewPriority(result, userRequested)
	reason := result.ReviewReason
	if reason == "" && userRequested {
		reason = "User requested review"
	}

	metadata := datatypes.JSONMap{
		"original_score":     result.Score,
		"overall_confidence": result.Confidence,
		"flagged_criteria":   flaggedCriteria(result.Criteria),
	}
	if notes != "" {
		metadata["request_notes"] = notes
	}

	request := models.ReviewRequest{
		ID:            uuid.NewString(),
		ProjectID:     result.ProjectID,
		UserID:        result.UserID,
		ScoringID:     result.ScoringID,
		ReviewReason:  reason,
		Status:        models.ReviewStatusPending,
		Priority:      priority,
		RequestedAt:   s.now().UTC(),
		UserRequested: userRequested,
		Metadata:      metadata,
	}

	if err := s.reviews.Create(ctx, &request); err != nil {
		if errors.Is(err, repository.ErrPermissionDenied) {
			s.logger.Warn().Err(err).Str("scoring_id", result.ScoringID).Msg("review store rejected write, continuing without review")
			return ReviewPermissionDenied, nil
		}
		span.RecordError(err)
		return "", err
	}

	observability.ReviewSubmissions().WithLabelValues(priority).Inc()
	return request.ID, nil
}

func (s *manualReviewService) RequestUserReview(ctx context.Context, payload dto.RequestReviewRequest) (string, error) {
	if err := s.validator.Struct(payload); err != nil {
		return "", err
	}

	model, err := s.scorings.GetByID(ctx, payload.ScoringID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrScoringResultNotFound
		}
		return "", err
	}

	var criteria []scoring.CriterionScore
	if err := json.Unmarshal(model.Criteria, &criteria); err != nil {
		return "", fmt.Errorf("decode stored criteria: %w", err)
	}

	result := scoring.Result{
		ScoringID:  model.ID,
		ProjectID:  model.ProjectID,
		UserID:     model.UserID,
		CraftType:  scoring.CraftType(model.CraftType),
		Score:      model.IndividualSkillScore,
		Criteria:   criteria,
		Confidence: model.Confidence,
	}
	if model.ReviewReason != nil {
		result.ReviewReason = *model.ReviewReason
	}

	return s.SubmitForReview(ctx, result, true, payload.Notes)
}

func (s *manualReviewService) AssignReview(ctx context.Context, id, reviewerID string) (dto.ReviewResponse, error) {
	request, err := s.getRequest(ctx, id)
	if err != nil {
		return dto.ReviewResponse{}, err
	}

	if request.Status != models.ReviewStatusPending {
		return dto.ReviewResponse{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, request.Status, models.ReviewStatusInReview)
	}

	assignedAt := s.now().UTC()
	request.Status = models.ReviewStatusInReview
	request.AssignedReviewerID = &reviewerID
	request.AssignedAt = &assignedAt

	if err := s.reviews.Update(ctx, &request); err != nil {
		return dto.ReviewResponse{}, err
	}
	return dto.NewReviewResponse(request), nil
}

func (s *manualReviewService) CompleteReview(ctx context.Context, id string, payload dto.CompleteReviewRequest) (dto.ReviewResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReviewResponse{}, err
	}

	request, err := s.getRequest(ctx, id)
	if err != nil {
		return dto.ReviewResponse{}, err
	}

	if request.Status != models.ReviewStatusInReview {
		return dto.ReviewResponse{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, request.Status, models.ReviewStatusCompleted)
	}

	completedAt := s.now().UTC()
	request.Status = models.ReviewStatusCompleted
	request.CompletedAt = &completedAt
	request.ReviewerNotes = &payload.Notes
	request.RevisedScore = payload.RevisedScore
	request.RevisedFeedback = payload.RevisedFeedback

	if err := s.reviews.Update(ctx, &request); err != nil {
		return dto.ReviewResponse{}, err
	}

	// A revision overwrites the score surfaced to the user on the original
	// scoring result.
	if payload.RevisedScore != nil {
		feedback := ""
		if payload.RevisedFeedback != nil {
			feedback = *payload.RevisedFeedback
		}
		if err := s.scorings.ApplyRevision(ctx, request.ScoringID, *payload.RevisedScore, feedback); err != nil {
			return dto.ReviewResponse{}, fmt.Errorf("apply score revision: %w", err)
		}
		s.invalidateCachedResult(ctx, request.ScoringID)
	}

	return dto.NewReviewResponse(request), nil
}

func (s *manualReviewService) RejectReview(ctx context.Context, id string, notes string) (dto.ReviewResponse, error) {
	request, err := s.getRequest(ctx, id)
	if err != nil {
		return dto.ReviewResponse{}, err
	}

	if request.Status != models.ReviewStatusPending {
		return dto.ReviewResponse{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, request.Status, models.ReviewStatusRejected)
	}

	request.Status = models.ReviewStatusRejected
	if notes != "" {
		request.ReviewerNotes = &notes
	}

	if err := s.reviews.Update(ctx, &request); err != nil {
		return dto.ReviewResponse{}, err
	}
	return dto.NewReviewResponse(request), nil
}

func (s *manualReviewService) PendingReviews(ctx context.Context, reviewerID *string) ([]dto.ReviewResponse, error) {
	requests, err := s.reviews.ListOpen(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	return dto.NewReviewResponseSlice(requests), nil
}

func (s *manualReviewService) Stats(ctx context.Context) (dto.ReviewStatsResponse, error) {
	counts, err := s.reviews.CountByStatus(ctx)
	if err != nil {
		return dto.ReviewStatsResponse{}, err
	}

	completed, err := s.reviews.ListByStatus(ctx, models.ReviewStatusCompleted)
	if err != nil {
		return dto.ReviewStatsResponse{}, err
	}

	totalMinutes := 0.0
	measured := 0
	for _, request := range completed {
		if request.CompletedAt == nil {
			continue
		}
		totalMinutes += request.CompletedAt.Sub(request.RequestedAt).Minutes()
		measured++
	}
	avgMinutes := 0.0
	if measured > 0 {
		avgMinutes = totalMinutes / float64(measured)
	}

	open, err := s.reviews.ListOpen(ctx, nil)
	if err != nil {
		return dto.ReviewStatsResponse{}, err
	}
	highPriority := int64(0)
	for _, request := range open {
		if request.Priority == models.ReviewPriorityHigh {
			highPriority++
		}
	}

	return dto.ReviewStatsResponse{
		StatusCounts:         counts,
		AvgCompletionMinutes: avgMinutes,
		HighPriorityOpen:     highPriority,
	}, nil
}

// invalidateCachedResult drops the cached scoring result after a revision.
// The store already holds the revised score, so a failed delete only means a
// stale read until the TTL expires.
func (s *manualReviewService) invalidateCachedResult(ctx context.Context, scoringID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, scoringCacheKey(scoringID)).Err(); err != nil {
		s.logger.Warn().Err(err).Str("scoring_id", scoringID).Msg("failed to drop cached scoring result after revision")
	}
}

func (s *manualReviewService) getRequest(ctx context.Context, id string) (models.ReviewRequest, error) {
	request, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ReviewRequest{}, ErrReviewNotFound
		}
		return models.ReviewRequest{}, err
	}
	return request, nil
}

// reviewPriority applies the queue priority rules. A user-requested review
// is always high priority.
func reviewPriority(result scoring.Result, userRequested bool) string {
	switch {
	case userRequested:
		return models.ReviewPriorityHigh
	case result.Confidence < highPriorityConfidence,
		result.Score < highPriorityScoreFloor,
		result.Score > highPriorityScoreCeiling:
		return models.ReviewPriorityHigh
	case result.Confidence < mediumPriorityConfidence:
		return models.ReviewPriorityMedium
	default:
		return models.ReviewPriorityLow
	}
}

func flaggedCriteria(criteria []scoring.CriterionScore) []string {
	flagged := []string{}
	for _, criterion := range criteria {
		if criterion.Confidence < flaggedCriterionCeiling {
			flagged = append(flagged, string(criterion.Criterion))
		}
	}
	return flagged
}
