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

	"github.com/noah-isme/eval-lab-api/internal/config"
	"github.com/noah-isme/eval-lab-api/internal/handler"
	"github.com/noah-isme/eval-lab-api/internal/judge"
	"github.com/noah-isme/eval-lab-api/internal/middleware"
	"github.com/noah-isme/eval-lab-api/internal/repository"
	"github.com/noah-isme/eval-lab-api/internal/router"
	"github.com/noah-isme/eval-lab-api/internal/service"
	"github.com/noah-isme/eval-lab-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	generator, err := newGenerator(cfg, logger)
	if err != nil {
		log.Fatalf("failed to create generator: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	evaluationLog := repository.NewCSVEvaluationLog(cfg.EvaluationLogPath)
	judger := judge.New(generator, logger)

	evaluationService := service.NewEvaluationService(generator, judger, evaluationLog, validate, logger, service.EvaluationConfig{
		GeneratorModel:       cfg.GeneratorModel,
		GeneratorTemperature: cfg.GeneratorTemperature,
		JudgeModel:           cfg.JudgeModel,
		JudgeTemperature:     cfg.JudgeTemperature,
		BatchItemDelay:       cfg.BatchItemDelay,
	})

	evaluationHandler := handler.NewEvaluationHandler(evaluationService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EvaluationHandler: evaluationHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func newGenerator(cfg config.Config, logger zerolog.Logger) (ai.Generator, error) {
	switch cfg.AIProvider {
	case "openai":
		return ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			MaxTokens: cfg.MaxTokens,
			Logger:    logger,
		})
	default:
		return ai.NewGeminiGenerator(context.Background(), ai.GeminiConfig{
			APIKey: cfg.GoogleAPIKey,
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
