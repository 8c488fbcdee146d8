package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/craftfolio/craftfolio-api/internal/config"
	"github.com/craftfolio/craftfolio-api/internal/utils"
)

// HealthResponse is the liveness payload for the scoring API.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthCheck reports that the scoring API is up, along with which
// deployment answered.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
		}

		return utils.SendSuccess(c, "scoring api healthy", payload)
	}
}
