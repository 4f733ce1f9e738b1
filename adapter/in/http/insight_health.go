package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// HealthHandler serves the root banner and liveness probe.
type HealthHandler struct {
	redis *redis.Client
}

func NewHealthHandler(redis *redis.Client) *HealthHandler {
	return &HealthHandler{redis: redis}
}

func (h *HealthHandler) Register(app *fiber.App) {
	app.Get("/", h.Root)
	app.Get("/healthz", h.Healthz)
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "insight_server",
		"status":  "ok",
		"endpoints": []string{
			"GET /healthz",
			"GET /mail/urgent",
			"POST /summarize",
			"GET /cache/stats",
			"POST /cache/clear",
		},
	})
}

func (h *HealthHandler) Healthz(c *fiber.Ctx) error {
	checks := make(map[string]string)

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "healthy"
		}
	} else {
		checks["redis"] = "not configured"
	}

	return c.JSON(fiber.Map{
		"status":    "ok",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
