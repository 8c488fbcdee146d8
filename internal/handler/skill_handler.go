package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/craftfolio/craftfolio-api/internal/service"
	"github.com/craftfolio/craftfolio-api/internal/utils"
)

// SkillHandler handles user skill progression endpoints.
type SkillHandler struct {
	service service.UserSkillLevelService
	logger  zerolog.Logger
}

// NewSkillHandler constructs the handler.
func NewSkillHandler(service service.UserSkillLevelService, logger zerolog.Logger) *SkillHandler {
	return &SkillHandler{
		service: service,
		logger:  logger.With().Str("component", "skill_handler").Logger(),
	}
}

// Register wires routes for skill progression.
func (h *SkillHandler) Register(router fiber.Router) {
	router.Get("/:id/skill", h.profile)
}

func (h *SkillHandler) profile(c *fiber.Ctx) error {
	userID := c.Params("id")
	if userID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "user id is required")
	}

	profile, err := h.service.SkillProfile(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "user not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load skill profile")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load skill profile")
	}

	return utils.SendSuccess(c, "skill profile retrieved", profile)
}
