package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/craftfolio/craftfolio-api/internal/config"
	"github.com/craftfolio/craftfolio-api/internal/handler"
	"github.com/craftfolio/craftfolio-api/internal/middleware"
	"github.com/craftfolio/craftfolio-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ScoringHandler *handler.ScoringHandler
	ReviewHandler  *handler.ReviewHandler
	SkillHandler   *handler.SkillHandler
	JWTMiddleware  fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.ScoringHandler != nil {
		scoring := api.Group("/scoring", jwtMiddleware)
		deps.ScoringHandler.Register(scoring)
	}

	if deps.ReviewHandler != nil {
		reviews := api.Group("/reviews", jwtMiddleware)
		reviewerOnly := reviews.Group("", middleware.RequireRole("reviewer", "admin"))
		deps.ReviewHandler.Register(reviews, reviewerOnly)
	}

	if deps.SkillHandler != nil {
		users := api.Group("/users", jwtMiddleware)
		deps.SkillHandler.Register(users)
	}
}
