package models

import (
	"time"

	"gorm.io/datatypes"
)

// Review request lifecycle states. pending -> in_review -> completed, with
// pending -> rejected also permitted; terminal states are final.
const (
	ReviewStatusPending   = "pending"
	ReviewStatusInReview  = "in_review"
	ReviewStatusCompleted = "completed"
	ReviewStatusRejected  = "rejected"
)

// Review queue priorities.
const (
	ReviewPriorityLow    = "low"
	ReviewPriorityMedium = "medium"
	ReviewPriorityHigh   = "high"
)

// ReviewRequest is an escalated scoring result awaiting human review. The
// ScoringID always references an existing ProjectScoringResult; the review
// service verifies this before creating a request.
type ReviewRequest struct {
	ID                 string            `gorm:"primaryKey;size:64" json:"id"`
	ProjectID          string            `gorm:"size:64;index;not null" json:"project_id"`
	UserID             string            `gorm:"size:64;index;not null" json:"user_id"`
	ScoringID          string            `gorm:"size:64;index;not null" json:"scoring_id"`
	ReviewReason       string            `gorm:"size:255" json:"review_reason"`
	Status             string            `gorm:"size:32;index;not null" json:"status"`
	Priority           string            `gorm:"size:16;not null" json:"priority"`
	RequestedAt        time.Time         `gorm:"not null" json:"requested_at"`
	AssignedReviewerID *string           `gorm:"size:64" json:"assigned_reviewer_id,omitempty"`
	AssignedAt         *time.Time        `json:"assigned_at,omitempty"`
	CompletedAt        *time.Time        `json:"completed_at,omitempty"`
	ReviewerNotes      *string           `gorm:"type:text" json:"reviewer_notes,omitempty"`
	RevisedScore       *int              `json:"revised_score,omitempty"`
	RevisedFeedback    *string           `gorm:"type:text" json:"revised_feedback,omitempty"`
	UserRequested      bool              `json:"user_requested"`
	Metadata           datatypes.JSONMap `json:"metadata"`
}
