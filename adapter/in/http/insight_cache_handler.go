package http

import (
	"github.com/gofiber/fiber/v2"

	"insight_server/core/cache"
)

// CacheHandler exposes counters and a manual reset for the two
// completion caches.
type CacheHandler struct {
	summary *cache.Store
	tone    *cache.Store
}

func NewCacheHandler(summary, tone *cache.Store) *CacheHandler {
	return &CacheHandler{summary: summary, tone: tone}
}

func (h *CacheHandler) Register(app *fiber.App) {
	app.Get("/cache/stats", h.Stats)
	app.Post("/cache/clear", h.Clear)
}

func (h *CacheHandler) Stats(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"summary": h.summary.Stats(),
		"tone":    h.tone.Stats(),
	})
}

func (h *CacheHandler) Clear(c *fiber.Ctx) error {
	h.summary.Clear()
	h.tone.Clear()
	return c.JSON(fiber.Map{
		"status": "cleared",
	})
}
