package dto

import (
	"encoding/json"
	"time"

	"github.com/craftfolio/craftfolio-api/internal/models"
	"github.com/craftfolio/craftfolio-api/internal/scoring"
)

// ScoreProjectRequest is the submission payload handed over by the
// post-creation flow once a project post exists.
type ScoreProjectRequest struct {
	ProjectID        string   `json:"project_id" validate:"required"`
	UserID           string   `json:"user_id" validate:"required"`
	CraftType        string   `json:"craft_type" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	Materials        []string `json:"materials"`
	Tools            []string `json:"tools"`
	TimeSpentMinutes int      `json:"time_spent_minutes" validate:"min=0"`
	ImageURLs        []string `json:"image_urls" validate:"dive,url"`
	UserSkillLevel   string   `json:"user_skill_level"`
	UserProfile      string   `json:"user_profile"`
}

// CriterionScoreResponse is one criterion's contribution in API form.
type CriterionScoreResponse struct {
	Criterion  string  `json:"criterion"`
	Name       string  `json:"name"`
	Score      int     `json:"score"`
	Weight     float64 `json:"weight"`
	Feedback   string  `json:"feedback"`
	Confidence int     `json:"confidence"`
}

// ScoringMetadataResponse mirrors the assessment metadata block.
type ScoringMetadataResponse struct {
	Confidence            int       `json:"confidence"`
	ProcessingTimeMs      int64     `json:"processing_time_ms"`
	Timestamp             time.Time `json:"timestamp"`
	NeedsHumanReview      bool      `json:"needs_human_review"`
	ReviewReason          *string   `json:"review_reason,omitempty"`
	CraftTypeSpecific     bool      `json:"craft_type_specific"`
	DocumentationAnalysis int       `json:"documentation_analysis"`
}

// ScoringResultResponse is the full scoring outcome returned to clients.
type ScoringResultResponse struct {
	ScoringID            string                   `json:"scoring_id"`
	ProjectID            string                   `json:"project_id"`
	UserID               string                   `json:"user_id"`
	CraftType            string                   `json:"craft_type"`
	IndividualSkillScore int                      `json:"individual_skill_score"`
	SkillLevelCategory   string                   `json:"skill_level_category"`
	Criteria             []CriterionScoreResponse `json:"criteria"`
	OverallFeedback      string                   `json:"overall_feedback"`
	Strengths            []string                 `json:"strengths"`
	ImprovementAreas     []string                 `json:"improvement_areas"`
	NextStepSuggestions  []string                 `json:"next_step_suggestions"`
	Metadata             ScoringMetadataResponse  `json:"ai_scoring_metadata"`
}

// NewScoringResultResponse converts an engine result into its API form.
func NewScoringResultResponse(result scoring.Result) ScoringResultResponse {
	criteria := make([]CriterionScoreResponse, 0, len(result.Criteria))
	for _, criterion := range result.Criteria {
		criteria = append(criteria, CriterionScoreResponse{
			Criterion:  string(criterion.Criterion),
			Name:       criterion.Criterion.DisplayName(),
			Score:      criterion.Score,
			Weight:     criterion.Weight,
			Feedback:   criterion.Feedback,
			Confidence: criterion.Confidence,
		})
	}

	var reason *string
	if result.ReviewReason != "" {
		value := result.ReviewReason
		reason = &value
	}

	return ScoringResultResponse{
		ScoringID:            result.ScoringID,
		ProjectID:            result.ProjectID,
		UserID:               result.UserID,
		CraftType:            string(result.CraftType),
		IndividualSkillScore: result.Score,
		SkillLevelCategory:   string(result.Level),
		Criteria:             criteria,
		OverallFeedback:      result.OverallFeedback,
		Strengths:            result.Strengths,
		ImprovementAreas:     result.ImprovementAreas,
		NextStepSuggestions:  result.NextSteps,
		Metadata: ScoringMetadataResponse{
			Confidence:            result.Confidence,
			ProcessingTimeMs:      result.ProcessingTimeMs,
			Timestamp:             result.ScoredAt,
			NeedsHumanReview:      result.NeedsHumanReview,
			ReviewReason:          reason,
			CraftTypeSpecific:     result.CraftTypeSpecific,
			DocumentationAnalysis: result.DocumentationAnalysis,
		},
	}
}

// NewScoringResultResponseFromModel rebuilds the API form from a persisted
// scoring row, decoding the JSON columns.
func NewScoringResultResponseFromModel(model models.ProjectScoringResult) ScoringResultResponse {
	var criteria []scoring.CriterionScore
	_ = json.Unmarshal(model.Criteria, &criteria)

	var strengths, improvements, nextSteps []string
	_ = json.Unmarshal(model.Strengths, &strengths)
	_ = json.Unmarshal(model.ImprovementAreas, &improvements)
	_ = json.Unmarshal(model.NextStepSuggestions, &nextSteps)

	result := scoring.Result{
		ScoringID:        model.ID,
		ProjectID:        model.ProjectID,
		UserID:           model.UserID,
		CraftType:        scoring.CraftType(model.CraftType),
		Score:            model.IndividualSkillScore,
		Level:            scoring.SkillLevel(model.SkillLevelCategory),
		Criteria:         criteria,
		OverallFeedback:  model.OverallFeedback,
		Strengths:        strengths,
		ImprovementAreas: improvements,
		NextSteps:        nextSteps,
		Confidence:       model.Confidence,
		ProcessingTimeMs: model.ProcessingTimeMs,
		ScoredAt:         model.CreatedAt,
		NeedsHumanReview: model.NeedsHumanReview,
	}
	if model.ReviewReason != nil {
		result.ReviewReason = *model.ReviewReason
	}
	if flag, ok := model.Metadata["craft_type_specific"].(bool); ok {
		result.CraftTypeSpecific = flag
	}
	if analysis, ok := model.Metadata["documentation_analysis"].(float64); ok {
		result.DocumentationAnalysis = int(analysis)
	}

	return NewScoringResultResponse(result)
}
