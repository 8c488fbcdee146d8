package dto

import (
	"time"

	"github.com/craftfolio/craftfolio-api/internal/models"
	"github.com/craftfolio/craftfolio-api/internal/scoring"
)

// SkillProgressionEntryResponse is one ledger row in API form.
type SkillProgressionEntryResponse struct {
	SkillLevel       string    `json:"skill_level"`
	AverageScore     float64   `json:"average_score"`
	ProjectCount     int       `json:"project_count"`
	TriggerProjectID string    `json:"trigger_project_id"`
	AchievedAt       time.Time `json:"achieved_at"`
}

// SkillLevelResponse describes a user's current skill standing.
type SkillLevelResponse struct {
	UserID       string                          `json:"user_id"`
	SkillLevel   string                          `json:"skill_level"`
	AverageScore float64                         `json:"average_score"`
	Confidence   float64                         `json:"confidence"`
	ProjectCount int                             `json:"project_count"`
	Progress     scoring.LevelProgress           `json:"progress"`
	Progression  []SkillProgressionEntryResponse `json:"progression"`
}

// NewSkillProgressionEntryResponses converts ledger rows into API form.
func NewSkillProgressionEntryResponses(entries []models.SkillProgressionEntry) []SkillProgressionEntryResponse {
	responses := make([]SkillProgressionEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, SkillProgressionEntryResponse{
			SkillLevel:       entry.SkillLevel,
			AverageScore:     entry.AverageScore,
			ProjectCount:     entry.ProjectCount,
			TriggerProjectID: entry.TriggerProjectID,
			AchievedAt:       entry.AchievedAt,
		})
	}
	return responses
}

// SkillLevelChangedEvent is published when a user's calculated level moves.
type SkillLevelChangedEvent struct {
	UserID       string  `json:"user_id"`
	OldLevel     string  `json:"old_level"`
	NewLevel     string  `json:"new_level"`
	AverageScore float64 `json:"average_score"`
}
