package models

import (
	"time"

	"gorm.io/datatypes"
)

// ProjectScoringResult persists one scoring pass over a project submission.
// The per-criterion breakdown and narrative lists are stored as JSON columns.
type ProjectScoringResult struct {
	ID                   string            `gorm:"primaryKey;size:64" json:"id"`
	ProjectID            string            `gorm:"size:64;index;not null" json:"project_id"`
	UserID               string            `gorm:"size:64;index;not null" json:"user_id"`
	CraftType            string            `gorm:"size:32;not null" json:"craft_type"`
	IndividualSkillScore int               `gorm:"not null" json:"individual_skill_score"`
	SkillLevelCategory   string            `gorm:"size:32;not null" json:"skill_level_category"`
	Criteria             datatypes.JSON    `json:"criteria"`
	OverallFeedback      string            `gorm:"type:text" json:"overall_feedback"`
	Strengths            datatypes.JSON    `json:"strengths"`
	ImprovementAreas     datatypes.JSON    `json:"improvement_areas"`
	NextStepSuggestions  datatypes.JSON    `json:"next_step_suggestions"`
	Confidence           int               `gorm:"not null" json:"confidence"`
	ProcessingTimeMs     int64             `json:"processing_time_ms"`
	NeedsHumanReview     bool              `json:"needs_human_review"`
	ReviewReason         *string           `gorm:"size:255" json:"review_reason,omitempty"`
	Metadata             datatypes.JSONMap `json:"metadata"`
	CreatedAt            time.Time         `json:"created_at"`
}
