package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/craftfolio/craftfolio-api/internal/dto"
	"github.com/craftfolio/craftfolio-api/internal/service"
	"github.com/craftfolio/craftfolio-api/internal/utils"
)

// ReviewHandler handles manual review queue endpoints.
type ReviewHandler struct {
	service service.ManualReviewService
	logger  zerolog.Logger
}

// NewReviewHandler constructs the handler.
func NewReviewHandler(service service.ManualReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("component", "review_handler").Logger(),
	}
}

// Register wires routes for the review queue. The reviewer guard is applied
// by the router; user-initiated requests only need authentication.
func (h *ReviewHandler) Register(public fiber.Router, reviewer fiber.Router) {
	public.Post("", h.requestReview)

	reviewer.Get("/pending", h.pending)
	reviewer.Get("/stats", h.stats)
	reviewer.Post("/:id/assign", h.assign)
	reviewer.Post("/:id/complete", h.complete)
	reviewer.Post("/:id/reject", h.reject)
}

func (h *ReviewHandler) requestReview(c *fiber.Ctx) error {
	var payload dto.RequestReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	id, err := h.service.RequestUserReview(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err, "failed to request review")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "review requested", fiber.Map{"review_id": id})
}

func (h *ReviewHandler) pending(c *fiber.Ctx) error {
	var reviewerID *string
	if value := strings.TrimSpace(c.Query("reviewer_id")); value != "" {
		reviewerID = &value
	}

	reviews, err := h.service.PendingReviews(c.UserContext(), reviewerID)
	if err != nil {
		return h.handleError(c, err, "failed to list pending reviews")
	}

	return utils.SendSuccess(c, "pending reviews retrieved", reviews)
}

func (h *ReviewHandler) stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext())
	if err != nil {
		return h.handleError(c, err, "failed to load review stats")
	}

	return utils.SendSuccess(c, "review stats retrieved", stats)
}

func (h *ReviewHandler) assign(c *fiber.Ctx) error {
	var payload dto.AssignReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.ReviewerID == "" {
		payload.ReviewerID = userIDFromContext(c)
	}
	if payload.ReviewerID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "reviewer id is required")
	}

	review, err := h.service.AssignReview(c.UserContext(), c.Params("id"), payload.ReviewerID)
	if err != nil {
		return h.handleError(c, err, "failed to assign review")
	}

	return utils.SendSuccess(c, "review assigned", review)
}

func (h *ReviewHandler) complete(c *fiber.Ctx) error {
	var payload dto.CompleteReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.service.CompleteReview(c.UserContext(), c.Params("id"), payload)
	if err != nil {
		return h.handleError(c, err, "failed to complete review")
	}

	return utils.SendSuccess(c, "review completed", review)
}

func (h *ReviewHandler) reject(c *fiber.Ctx) error {
	var payload dto.RejectReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	review, err := h.service.RejectReview(c.UserContext(), c.Params("id"), payload.Notes)
	if err != nil {
		return h.handleError(c, err, "failed to reject review")
	}

	return utils.SendSuccess(c, "review rejected", review)
}

func (h *ReviewHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrReviewNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "review request not found")
	case errors.Is(err, service.ErrScoringResultNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "scoring result not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
