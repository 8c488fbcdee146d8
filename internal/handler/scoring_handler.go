package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/craftfolio/craftfolio-api/internal/dto"
	"github.com/craftfolio/craftfolio-api/internal/service"
	"github.com/craftfolio/craftfolio-api/internal/utils"
)

// ScoringHandler handles project scoring endpoints.
type ScoringHandler struct {
	service service.ProjectScoringService
	logger  zerolog.Logger
}

// NewScoringHandler constructs the handler.
func NewScoringHandler(service service.ProjectScoringService, logger zerolog.Logger) *ScoringHandler {
	return &ScoringHandler{
		service: service,
		logger:  logger.With().Str("component", "scoring_handler").Logger(),
	}
}

// Register wires routes for project scoring.
func (h *ScoringHandler) Register(router fiber.Router) {
	router.Post("/projects", h.scoreProject)
	router.Get("/projects/:id", h.getResult)
}

func (h *ScoringHandler) scoreProject(c *fiber.Ctx) error {
	var payload dto.ScoreProjectRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if payload.UserID == "" {
		payload.UserID = userIDFromContext(c)
	}

	response, err := h.service.ProcessSubmission(c.UserContext(), payload)
	if err != nil {
		return h.handleError(c, err, "failed to score project")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "project scored", response)
}

func (h *ScoringHandler) getResult(c *fiber.Ctx) error {
	scoringID := c.Params("id")
	if scoringID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "scoring id is required")
	}

	response, err := h.service.GetResult(c.UserContext(), scoringID)
	if err != nil {
		return h.handleError(c, err, "failed to load scoring result")
	}

	return utils.SendSuccess(c, "scoring result retrieved", response)
}

func (h *ScoringHandler) handleError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidSubmission):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrScoringResultNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "scoring result not found")
	default:
		requestLogger(h.logger, c).Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
