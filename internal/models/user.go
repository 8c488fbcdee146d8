package models

import "time"

// User represents a maker whose projects are scored. The scoring fields are
// owned exclusively by the skill level service and only change through
// UpdateUserSkillLevel.
type User struct {
	ID                   string                  `gorm:"primaryKey;size:64" json:"id"`
	Name                 string                  `gorm:"size:255;not null" json:"name"`
	Email                string                  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Bio                  string                  `gorm:"type:text" json:"bio"`
	AverageProjectScore  float64                 `json:"average_project_score"`
	CalculatedSkillLevel string                  `gorm:"size:32" json:"calculated_skill_level"`
	ProjectCount         int                     `json:"project_count"`
	LastScoreUpdate      *time.Time              `json:"last_score_update"`
	SkillProgression     []SkillProgressionEntry `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"skill_progression"`
	CreatedAt            time.Time               `json:"created_at"`
	UpdatedAt            time.Time               `json:"updated_at"`
}

// SkillProgressionEntry is an append-only ledger row recording a skill level
// change. Entries are strictly ordered by AchievedAt per user.
type SkillProgressionEntry struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	UserID           string    `gorm:"size:64;index;not null" json:"user_id"`
	SkillLevel       string    `gorm:"size:32;not null" json:"skill_level"`
	AverageScore     float64   `gorm:"not null" json:"average_score"`
	ProjectCount     int       `gorm:"not null" json:"project_count"`
	TriggerProjectID string    `gorm:"size:64" json:"trigger_project_id"`
	AchievedAt       time.Time `gorm:"not null" json:"achieved_at"`
}
