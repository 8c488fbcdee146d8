package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/craftfolio/craftfolio-api/internal/config"
	"github.com/craftfolio/craftfolio-api/internal/database"
	"github.com/craftfolio/craftfolio-api/internal/handler"
	"github.com/craftfolio/craftfolio-api/internal/middleware"
	"github.com/craftfolio/craftfolio-api/internal/models"
	"github.com/craftfolio/craftfolio-api/internal/repository"
	"github.com/craftfolio/craftfolio-api/internal/router"
	"github.com/craftfolio/craftfolio-api/internal/scoring"
	"github.com/craftfolio/craftfolio-api/internal/service"
	"github.com/craftfolio/craftfolio-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.SkillProgressionEntry{},
		&models.ProjectScoringResult{},
		&models.ReviewRequest{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, skill level events disabled")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	oracle, err := buildOracle(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create ai oracle: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	scoringRepo := repository.NewScoringRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	userRepo := repository.NewUserRepository(db)

	skillService := service.NewUserSkillLevelService(userRepo, scoringRepo, redisClient, natsConn, logger)
	reviewService := service.NewManualReviewService(reviewRepo, scoringRepo, redisClient, validate, logger)
	scoringService := service.NewProjectScoringService(
		scoring.NewCriterionEvaluator(oracle, logger),
		oracle,
		scoringRepo,
		reviewService,
		skillService,
		redisClient,
		cfg.ScoringCacheTTL,
		validate,
		logger,
	)

	scoringHandler := handler.NewScoringHandler(scoringService, logger)
	reviewHandler := handler.NewReviewHandler(reviewService, logger)
	skillHandler := handler.NewSkillHandler(skillService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ScoringHandler: scoringHandler,
		ReviewHandler:  reviewHandler,
		SkillHandler:   skillHandler,
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func buildOracle(cfg config.Config, logger zerolog.Logger) (ai.Oracle, error) {
	switch cfg.AIProvider {
	case "anthropic":
		return ai.NewAnthropicOracle(ai.AnthropicConfig{
			APIKey: cfg.AnthropicAPIKey,
			Model:  cfg.AIModel,
		})
	default:
		return ai.NewOpenAIOracle(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
	}
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
