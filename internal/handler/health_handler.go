package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/eval-lab-api/internal/config"
	"github.com/noah-isme/eval-lab-api/internal/utils"
)

// HealthResponse is the payload of the health endpoint. Provider names the
// configured generation backend so operators can confirm which model family
// serves evaluations without reading the environment.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
	Provider    string    `json:"provider"`
}

// HealthCheck returns a handler reporting service liveness and the active
// provider.
func HealthCheck(cfg config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Provider:    cfg.AIProvider,
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}
