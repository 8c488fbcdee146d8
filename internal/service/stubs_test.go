package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/craftfolio/craftfolio-api/internal/dto"
	"github.com/craftfolio/craftfolio-api/internal/models"
	"github.com/craftfolio/craftfolio-api/internal/scoring"
	"github.com/craftfolio/craftfolio-api/pkg/ai"
)

// stubOracle routes every generation call through a test-provided function.
type stubOracle struct {
	generate func(req ai.GenerationRequest) (ai.GenerationResult, error)
}

func (o *stubOracle) Generate(_ context.Context, req ai.GenerationRequest) (ai.GenerationResult, error) {
	return o.generate(req)
}

func taggedReply(score, confidence int, feedback string) string {
	return fmt.Sprintf("SCORE: %d\nFEEDBACK: %s\nCONFIDENCE: %d", score, feedback, confidence)
}

type stubScoringRepo struct {
	items     map[string]models.ProjectScoringResult
	history   []models.ProjectScoringResult
	createErr error
}

func newStubScoringRepo() *stubScoringRepo {
	return &stubScoringRepo{items: map[string]models.ProjectScoringResult{}}
}

func (r *stubScoringRepo) Create(_ context.Context, result *models.ProjectScoringResult) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.items[result.ID] = *result
	return nil
}

func (r *stubScoringRepo) GetByID(_ context.Context, id string) (models.ProjectScoringResult, error) {
	result, ok := r.items[id]
	if !ok {
		return models.ProjectScoringResult{}, gorm.ErrRecordNotFound
	}
	return result, nil
}

func (r *stubScoringRepo) ListScoredByUser(_ context.Context, userID string) ([]models.ProjectScoringResult, error) {
	matched := []models.ProjectScoringResult{}
	for _, result := range r.history {
		if result.UserID == userID && result.IndividualSkillScore > 0 {
			matched = append(matched, result)
		}
	}
	return matched, nil
}

func (r *stubScoringRepo) ApplyRevision(_ context.Context, id string, score int, feedback string) error {
	result, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	result.IndividualSkillScore = score
	result.OverallFeedback = feedback
	r.items[id] = result
	return nil
}

type stubReviewRepo struct {
	items     map[string]models.ReviewRequest
	createErr error
	updateErr error
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{items: map[string]models.ReviewRequest{}}
}

func (r *stubReviewRepo) Create(_ context.Context, request *models.ReviewRequest) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.items[request.ID] = *request
	return nil
}

func (r *stubReviewRepo) GetByID(_ context.Context, id string) (models.ReviewRequest, error) {
	request, ok := r.items[id]
	if !ok {
		return models.ReviewRequest{}, gorm.ErrRecordNotFound
	}
	return request, nil
}

func (r *stubReviewRepo) Update(_ context.Context, request *models.ReviewRequest) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.items[request.ID] = *request
	return nil
}

func (r *stubReviewRepo) ListOpen(_ context.Context, reviewerID *string) ([]models.ReviewRequest, error) {
	rank := map[string]int{
		models.ReviewPriorityHigh:   0,
		models.ReviewPriorityMedium: 1,
		models.ReviewPriorityLow:    2,
	}
	open := []models.ReviewRequest{}
	for _, request := range r.items {
		if request.Status != models.ReviewStatusPending && request.Status != models.ReviewStatusInReview {
			continue
		}
		if reviewerID != nil && request.AssignedReviewerID != nil && *request.AssignedReviewerID != *reviewerID {
			continue
		}
		open = append(open, request)
	}
	sort.Slice(open, func(i, j int) bool {
		if rank[open[i].Priority] != rank[open[j].Priority] {
			return rank[open[i].Priority] < rank[open[j].Priority]
		}
		return open[i].RequestedAt.Before(open[j].RequestedAt)
	})
	return open, nil
}

func (r *stubReviewRepo) ListByStatus(_ context.Context, status string) ([]models.ReviewRequest, error) {
	matched := []models.ReviewRequest{}
	for _, request := range r.items {
		if request.Status == status {
			matched = append(matched, request)
		}
	}
	return matched, nil
}

func (r *stubReviewRepo) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, request := range r.items {
		counts[request.Status]++
	}
	return counts, nil
}

type stubUserRepo struct {
	users   map[string]models.User
	entries []models.SkillProgressionEntry
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: map[string]models.User{}}
}

func (r *stubUserRepo) Create(_ context.Context, user *models.User) error {
	r.users[user.ID] = *user
	return nil
}

func (r *stubUserRepo) GetByID(_ context.Context, id string) (models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	progression := []models.SkillProgressionEntry{}
	for _, entry := range r.entries {
		if entry.UserID == id {
			progression = append(progression, entry)
		}
	}
	user.SkillProgression = progression
	return user, nil
}

func (r *stubUserRepo) UpdateScoring(_ context.Context, user *models.User, entry *models.SkillProgressionEntry) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.AverageProjectScore = user.AverageProjectScore
	stored.CalculatedSkillLevel = user.CalculatedSkillLevel
	stored.ProjectCount = user.ProjectCount
	stored.LastScoreUpdate = user.LastScoreUpdate
	r.users[user.ID] = stored
	if entry != nil {
		r.entries = append(r.entries, *entry)
	}
	return nil
}

// stubReviewService records escalations routed through ProcessSubmission.
type stubReviewService struct {
	submitted []scoring.Result
	submitErr error
}

func (s *stubReviewService) SubmitForReview(_ context.Context, result scoring.Result, _ bool, _ string) (string, error) {
	if s.submitErr != nil {
		return "", s.submitErr
	}
	s.submitted = append(s.submitted, result)
	return "review-" + result.ScoringID, nil
}

func (s *stubReviewService) RequestUserReview(context.Context, dto.RequestReviewRequest) (string, error) {
	return "", nil
}

func (s *stubReviewService) AssignReview(context.Context, string, string) (dto.ReviewResponse, error) {
	return dto.ReviewResponse{}, nil
}

func (s *stubReviewService) CompleteReview(context.Context, string, dto.CompleteReviewRequest) (dto.ReviewResponse, error) {
	return dto.ReviewResponse{}, nil
}

func (s *stubReviewService) RejectReview(context.Context, string, string) (dto.ReviewResponse, error) {
	return dto.ReviewResponse{}, nil
}

func (s *stubReviewService) PendingReviews(context.Context, *string) ([]dto.ReviewResponse, error) {
	return nil, nil
}

func (s *stubReviewService) Stats(context.Context) (dto.ReviewStatsResponse, error) {
	return dto.ReviewStatsResponse{}, nil
}

// stubSkillService records skill recalculations routed through ProcessSubmission.
type stubSkillService struct {
	updates [][2]string
}

func (s *stubSkillService) CalculateUserSkillLevel(context.Context, string) (SkillSnapshot, error) {
	return SkillSnapshot{}, nil
}

func (s *stubSkillService) UpdateUserSkillLevel(_ context.Context, userID, triggerProjectID string) (SkillUpdate, error) {
	s.updates = append(s.updates, [2]string{userID, triggerProjectID})
	return SkillUpdate{}, nil
}

func (s *stubSkillService) SkillProfile(context.Context, string) (dto.SkillLevelResponse, error) {
	return dto.SkillLevelResponse{}, nil
}

func fixedTime() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}
