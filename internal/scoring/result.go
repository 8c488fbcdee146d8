package scoring

import "time"

// Result is the structured outcome of one scoring pass. It is immutable once
// produced; later corrections happen through a linked review request.
type Result struct {
	ScoringID             string           `json:"scoring_id"`
	ProjectID             string           `json:"project_id"`
	UserID                string           `json:"user_id"`
	CraftType             CraftType        `json:"craft_type"`
	Score                 int              `json:"score"`
	Level                 SkillLevel       `json:"level"`
	Criteria              []CriterionScore `json:"criteria"`
	OverallFeedback       string           `json:"overall_feedback"`
	Strengths             []string         `json:"strengths"`
	ImprovementAreas      []string         `json:"improvement_areas"`
	NextSteps             []string         `json:"next_steps"`
	Confidence            int              `json:"confidence"`
	ProcessingTimeMs      int64            `json:"processing_time_ms"`
	ScoredAt              time.Time        `json:"scored_at"`
	NeedsHumanReview      bool             `json:"needs_human_review"`
	ReviewReason          string           `json:"review_reason,omitempty"`
	CraftTypeSpecific     bool             `json:"craft_type_specific"`
	DocumentationAnalysis int              `json:"documentation_analysis"`
}
