package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/craftfolio/craftfolio-api/internal/dto"
	"github.com/craftfolio/craftfolio-api/internal/models"
	"github.com/craftfolio/craftfolio-api/internal/observability"
	"github.com/craftfolio/craftfolio-api/internal/repository"
	"github.com/craftfolio/craftfolio-api/internal/scoring"
	"github.com/craftfolio/craftfolio-api/pkg/ai"
)

// Escalation reasons, recorded verbatim on the scoring result. Evaluated in
// precedence order; the first match wins.
const (
	ReasonLowOverallConfidence   = "Low overall confidence in AI assessment"
	ReasonLowCriterionConfidence = "Low confidence in specific criteria evaluation"
	ReasonInconsistentScoring    = "Inconsistent scoring across criteria"
)

const (
	escalationConfidenceFloor = 70
	criterionConfidenceFloor  = 50
	scoreVarianceCeiling      = 800.0
)

// ErrInvalidSubmission indicates the submission cannot be scored at all.
var ErrInvalidSubmission = errors.New("invalid scoring submission")

// ErrScoringResultNotFound indicates the scoring result cannot be located.
var ErrScoringResultNotFound = errors.New("scoring result not found")

// ProjectScoringService orchestrates the scoring of project submissions.
type ProjectScoringService interface {
	// ScoreProject runs one scoring pass. Beyond the oracle calls and a
	// best-effort cache write it has no side effects; persistence and
	// escalation are ProcessSubmission's concern.
	ScoreProject(ctx context.Context, req scoring.Request) (scoring.Result, error)
	ProcessSubmission(ctx context.Context, payload dto.ScoreProjectRequest) (dto.ScoringResultResponse, error)
	GetResult(ctx context.Context, scoringID string) (dto.ScoringResultResponse, error)
}

type projectScoringService struct {
	evaluator *scoring.CriterionEvaluator
	oracle    ai.Oracle
	results   repository.ScoringRepository
	reviews   ManualReviewService
	skills    UserSkillLevelService
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewProjectScoringService constructs the scoring orchestrator.
func NewProjectScoringService(
	evaluator *scoring.CriterionEvaluator,
	oracle ai.Oracle,
	results repository.ScoringRepository,
	reviews ManualReviewService,
	skills UserSkillLevelService,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) ProjectScoringService {
	return &projectScoringService{
		evaluator: evaluator,
		oracle:    oracle,
		results:   results,
		reviews:   reviews,
		skills:    skills,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "project_scoring_service").Logger(),
		tracer:    otel.Tracer("github.com/craftfolio/craftfolio-api/internal/service/project_scoring"),
		now:       time.Now,
	}
}

func (s *projectScoringService) ScoreProject(parent context.Context, req scoring.Request) (scoring.Result, error) {
	if _, err := scoring.ParseCraftType(string(req.CraftType)); err != nil {
		return scoring.Result{}, fmt.Errorf("%w: %s", ErrInvalidSubmission, err)
	}
	if strings.TrimSpace(req.Description) == "" {
		return scoring.Result{}, fmt.Errorf("%w: description is empty", ErrInvalidSubmission)
	}

	ctx, span := s.tracer.Start(parent, "scoring.score_project", trace.WithAttributes(
		attribute.String("scoring.craft_type", string(req.CraftType)),
		attribute.String("scoring.project_id", req.ProjectID),
	))
	defer span.End()

	start := s.now()
	evalContext := buildEvaluationContext(req)

	// Fan out the five criterion evaluations. Each one resolves to its
	// fallback on failure, so the group never returns an error and a slow
	// criterion cannot cancel its siblings.
	criteria := make([]scoring.CriterionScore, len(scoring.Criteria))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, criterion := range scoring.Criteria {
		group.Go(func() error {
			criteria[i] = s.evaluator.Evaluate(groupCtx, req, evalContext, criterion)
			return nil
		})
	}
	_ = group.Wait()

	score := scoring.Aggregate(criteria, req.CraftType)
	level := scoring.LevelForScore(score)
	confidence := meanConfidence(criteria)

	needsReview, reason := escalationDecision(confidence, criteria)
	narrative := s.generateNarrative(ctx, req.CraftType, criteria, score)

	result := scoring.Result{
		ScoringID:             uuid.NewString(),
		ProjectID:             req.ProjectID,
		UserID:                req.UserID,
		CraftType:             req.CraftType,
		Score:                 score,
		Level:                 level,
		Criteria:              criteria,
		OverallFeedback:       narrative.Overall,
		Strengths:             narrative.Strengths,
		ImprovementAreas:      narrative.Improvements,
		NextSteps:             narrative.NextSteps,
		Confidence:            confidence,
		ProcessingTimeMs:      time.Since(start).Milliseconds(),
		ScoredAt:              start.UTC(),
		NeedsHumanReview:      needsReview,
		ReviewReason:          reason,
		CraftTypeSpecific:     scoring.HasCraftOverride(req.CraftType),
		DocumentationAnalysis: scoring.DocumentationHeuristic(req),
	}

	observability.ScoringRequests().WithLabelValues(string(req.CraftType)).Inc()
	if needsReview {
		observability.ScoringEscalations().WithLabelValues(reason).Inc()
	}

	s.cacheResult(ctx, dto.NewScoringResultResponse(result))

	span.SetAttributes(
		attribute.Int("scoring.score", score),
		attribute.Int("scoring.confidence", confidence),
		attribute.Bool("scoring.needs_review", needsReview),
	)

	return result, nil
}

func (s *projectScoringService) ProcessSubmission(ctx context.Context, payload dto.ScoreProjectRequest) (dto.ScoringResultResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ScoringResultResponse{}, err
	}

	craft, err := scoring.ParseCraftType(payload.CraftType)
	if err != nil {
		return dto.ScoringResultResponse{}, fmt.Errorf("%w: %s", ErrInvalidSubmission, err)
	}

	req := scoring.Request{
		ProjectID:        payload.ProjectID,
		UserID:           payload.UserID,
		CraftType:        craft,
		Description:      payload.Description,
		Materials:        payload.Materials,
		Tools:            payload.Tools,
		TimeSpentMinutes: payload.TimeSpentMinutes,
		ImageURLs:        payload.ImageURLs,
		UserSkillLevel:   scoring.SkillLevel(strings.ToLower(payload.UserSkillLevel)),
		UserProfile:      payload.UserProfile,
	}

	result, err := s.ScoreProject(ctx, req)
	if err != nil {
		return dto.ScoringResultResponse{}, err
	}

	if err := s.results.Create(ctx, resultToModel(result)); err != nil {
		return dto.ScoringResultResponse{}, fmt.Errorf("persist scoring result: %w", err)
	}

	// Escalation submission and skill updates are deliberately best-effort:
	// the maker's scoring result must survive either failing.
	if result.NeedsHumanReview && s.reviews != nil {
		if _, err := s.reviews.SubmitForReview(ctx, result, false, ""); err != nil {
			s.logger.Error().Err(err).Str("scoring_id", result.ScoringID).Msg("failed to submit scoring result for review")
		}
	}

	if s.skills != nil {
		if _, err := s.skills.UpdateUserSkillLevel(ctx, result.UserID, result.ProjectID); err != nil {
			s.logger.Error().Err(err).Str("user_id", result.UserID).Msg("failed to update user skill level")
		}
	}

	return dto.NewScoringResultResponse(result), nil
}

func (s *projectScoringService) GetResult(ctx context.Context, scoringID string) (dto.ScoringResultResponse, error) {
	if cached, ok := s.cachedResult(ctx, scoringID); ok {
		return cached, nil
	}

	model, err := s.results.GetByID(ctx, scoringID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ScoringResultResponse{}, ErrScoringResultNotFound
		}
		return dto.ScoringResultResponse{}, err
	}

	response := dto.NewScoringResultResponseFromModel(model)
	s.cacheResult(ctx, response)
	return response, nil
}

func (s *projectScoringService) generateNarrative(ctx context.Context, craft scoring.CraftType, criteria []scoring.CriterionScore, score int) scoring.Narrative {
	if s.oracle != nil {
		result, err := s.oracle.Generate(ctx, ai.GenerationRequest{
			System: scoring.NarrativeSystemPrompt,
			Prompt: scoring.BuildNarrativePrompt(craft, criteria, score),
		})
		if err == nil {
			narrative := scoring.ParseNarrativeReply(result.Text)
			if narrative.Overall != "" {
				return narrative
			}
		} else {
			s.logger.Warn().Err(err).Msg("narrative feedback generation failed, using fallback")
		}
	}

	return fallbackNarrative(criteria)
}

// fallbackNarrative builds deterministic feedback from the strongest
// criterion when the oracle cannot produce a summary.
func fallbackNarrative(criteria []scoring.CriterionScore) scoring.Narrative {
	best := criteria[0]
	for _, criterion := range criteria[1:] {
		if criterion.Score > best.Score {
			best = criterion
		}
	}

	name := strings.ToLower(best.Criterion.DisplayName())
	return scoring.Narrative{
		Overall:      fmt.Sprintf("Your %s stood out as the strongest part of this project.", name),
		Strengths:    []string{fmt.Sprintf("Strong %s", name)},
		Improvements: []string{"Detailed feedback is temporarily unavailable"},
		NextSteps:    []string{"Keep documenting your projects to track your progress"},
	}
}

func buildEvaluationContext(req scoring.Request) string {
	parts := []string{}
	if req.UserProfile != "" {
		parts = append(parts, "Maker profile: "+req.UserProfile)
	}
	if req.UserSkillLevel != "" {
		parts = append(parts, "Current skill level: "+string(req.UserSkillLevel))
	}
	if req.TimeSpentMinutes > 0 {
		parts = append(parts, fmt.Sprintf("Time spent: %d minutes", req.TimeSpentMinutes))
	}
	return strings.Join(parts, "\n")
}

func meanConfidence(criteria []scoring.CriterionScore) int {
	total := 0
	for _, criterion := range criteria {
		total += criterion.Confidence
	}
	return int(math.Round(float64(total) / float64(len(criteria))))
}

// escalationDecision applies the review triggers in precedence order.
func escalationDecision(overallConfidence int, criteria []scoring.CriterionScore) (bool, string) {
	if overallConfidence < escalationConfidenceFloor {
		return true, ReasonLowOverallConfidence
	}
	for _, criterion := range criteria {
		if criterion.Confidence < criterionConfidenceFloor {
			return true, ReasonLowCriterionConfidence
		}
	}
	if scoreVariance(criteria) > scoreVarianceCeiling {
		return true, ReasonInconsistentScoring
	}
	return false, ""
}

// scoreVariance is the population variance of the criterion scores.
func scoreVariance(criteria []scoring.CriterionScore) float64 {
	mean := 0.0
	for _, criterion := range criteria {
		mean += float64(criterion.Score)
	}
	mean /= float64(len(criteria))

	variance := 0.0
	for _, criterion := range criteria {
		delta := float64(criterion.Score) - mean
		variance += delta * delta
	}
	return variance / float64(len(criteria))
}

func resultToModel(result scoring.Result) *models.ProjectScoringResult {
	criteria, _ := json.Marshal(result.Criteria)
	strengths, _ := json.Marshal(result.Strengths)
	improvements, _ := json.Marshal(result.ImprovementAreas)
	nextSteps, _ := json.Marshal(result.NextSteps)

	var reason *string
	if result.ReviewReason != "" {
		value := result.ReviewReason
		reason = &value
	}

	return &models.ProjectScoringResult{
		ID:                   result.ScoringID,
		ProjectID:            result.ProjectID,
		UserID:               result.UserID,
		CraftType:            string(result.CraftType),
		IndividualSkillScore: result.Score,
		SkillLevelCategory:   string(result.Level),
		Criteria:             criteria,
		OverallFeedback:      result.OverallFeedback,
		Strengths:            strengths,
		ImprovementAreas:     improvements,
		NextStepSuggestions:  nextSteps,
		Confidence:           result.Confidence,
		ProcessingTimeMs:     result.ProcessingTimeMs,
		NeedsHumanReview:     result.NeedsHumanReview,
		ReviewReason:         reason,
		Metadata: datatypes.JSONMap{
			"craft_type_specific":    result.CraftTypeSpecific,
			"documentation_analysis": result.DocumentationAnalysis,
		},
		CreatedAt: result.ScoredAt,
	}
}

func (s *projectScoringService) cacheResult(ctx context.Context, response dto.ScoringResultResponse) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, scoringCacheKey(response.ScoringID), payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Str("scoring_id", response.ScoringID).Msg("failed to cache scoring result")
	}
}

func (s *projectScoringService) cachedResult(ctx context.Context, scoringID string) (dto.ScoringResultResponse, bool) {
	if s.cache == nil {
		return dto.ScoringResultResponse{}, false
	}
	payload, err := s.cache.Get(ctx, scoringCacheKey(scoringID)).Bytes()
	if err != nil {
		return dto.ScoringResultResponse{}, false
	}
	var response dto.ScoringResultResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return dto.ScoringResultResponse{}, false
	}
	return response, true
}

func scoringCacheKey(scoringID string) string {
	return "scoring:result:" + scoringID
}
