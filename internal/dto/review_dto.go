package dto

import (
	"time"

	"github.com/craftfolio/craftfolio-api/internal/models"
)

// RequestReviewRequest is an explicit user-initiated review of a scoring result.
type RequestReviewRequest struct {
	ScoringID string `json:"scoring_id" validate:"required"`
	Notes     string `json:"notes"`
}

// AssignReviewRequest assigns a pending review to a reviewer.
type AssignReviewRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required"`
}

// CompleteReviewRequest finishes an in-review request, optionally revising
// the surfaced score and feedback.
type CompleteReviewRequest struct {
	Notes           string  `json:"notes" validate:"required"`
	RevisedScore    *int    `json:"revised_score" validate:"omitempty,min=0,max=100"`
	RevisedFeedback *string `json:"revised_feedback"`
}

// RejectReviewRequest rejects a pending request.
type RejectReviewRequest struct {
	Notes string `json:"notes"`
}

// ReviewResponse is a review queue entry in API form.
type ReviewResponse struct {
	ID                 string                 `json:"id"`
	ProjectID          string                 `json:"project_id"`
	UserID             string                 `json:"user_id"`
	ScoringID          string                 `json:"scoring_id"`
	ReviewReason       string                 `json:"review_reason"`
	Status             string                 `json:"status"`
	Priority           string                 `json:"priority"`
	RequestedAt        time.Time              `json:"requested_at"`
	AssignedReviewerID *string                `json:"assigned_reviewer_id,omitempty"`
	AssignedAt         *time.Time             `json:"assigned_at,omitempty"`
	CompletedAt        *time.Time             `json:"completed_at,omitempty"`
	ReviewerNotes      *string                `json:"reviewer_notes,omitempty"`
	RevisedScore       *int                   `json:"revised_score,omitempty"`
	RevisedFeedback    *string                `json:"revised_feedback,omitempty"`
	UserRequested      bool                   `json:"user_requested"`
	Metadata           map[string]interface{} `json:"metadata,omitempty"`
}

// NewReviewResponse converts a review model into its API form.
func NewReviewResponse(model models.ReviewRequest) ReviewResponse {
	return ReviewResponse{
		ID:                 model.ID,
		ProjectID:          model.ProjectID,
		UserID:             model.UserID,
		ScoringID:          model.ScoringID,
		ReviewReason:       model.ReviewReason,
		Status:             model.Status,
		Priority:           model.Priority,
		RequestedAt:        model.RequestedAt,
		AssignedReviewerID: model.AssignedReviewerID,
		AssignedAt:         model.AssignedAt,
		CompletedAt:        model.CompletedAt,
		ReviewerNotes:      model.ReviewerNotes,
		RevisedScore:       model.RevisedScore,
		RevisedFeedback:    model.RevisedFeedback,
		UserRequested:      model.UserRequested,
		Metadata:           model.Metadata,
	}
}

// NewReviewResponseSlice converts a list of review models.
func NewReviewResponseSlice(items []models.ReviewRequest) []ReviewResponse {
	responses := make([]ReviewResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, NewReviewResponse(item))
	}
	return responses
}

// ReviewStatsResponse aggregates queue health numbers for reviewers.
type ReviewStatsResponse struct {
	StatusCounts         map[string]int64 `json:"status_counts"`
	AvgCompletionMinutes float64          `json:"avg_completion_minutes"`
	HighPriorityOpen     int64            `json:"high_priority_open"`
}
