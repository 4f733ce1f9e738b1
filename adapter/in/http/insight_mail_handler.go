// Package http exposes the insight pipeline over Fiber.
package http

import (
	"sort"

	"github.com/gofiber/fiber/v2"

	"insight_server/core/port/out"
	"insight_server/core/service"
	"insight_server/pkg/apperr"
)

// MailHandler serves the mailbox scan endpoint.
type MailHandler struct {
	source       out.MailboxSource
	orchestrator *service.Orchestrator
	query        out.ListQuery
}

// NewMailHandler creates a mail handler. source may be nil when no
// mailbox credentials are configured; the endpoint then reports a
// configuration error instead of failing at startup.
func NewMailHandler(source out.MailboxSource, orchestrator *service.Orchestrator, query out.ListQuery) *MailHandler {
	return &MailHandler{
		source:       source,
		orchestrator: orchestrator,
		query:        query,
	}
}

func (h *MailHandler) Register(app *fiber.App) {
	app.Get("/mail/urgent", h.Urgent)
}

// Urgent lists recent inbox messages, runs the full pipeline over each
// and returns the records sorted most-urgent first. Individual message
// failures degrade to placeholder records and never fail the request.
func (h *MailHandler) Urgent(c *fiber.Ctx) error {
	if h.source == nil {
		return apperr.NotConfigured("mailbox")
	}

	query := h.query
	if n := c.QueryInt("max_results", 0); n > 0 {
		query.MaxResults = n
	}
	if v := c.Query("include_updates"); v != "" {
		query.IncludeUpdates = c.QueryBool("include_updates")
	}
	if v := c.Query("include_promotions"); v != "" {
		query.IncludePromotions = c.QueryBool("include_promotions")
	}

	envelopes, err := h.source.List(c.Context(), query)
	if err != nil {
		return apperr.Upstream("mailbox", err)
	}

	results := h.orchestrator.ProcessList(c.Context(), envelopes)

	// Most urgent first, earliest deadline breaking ties.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Urgency != results[j].Urgency {
			return results[i].Urgency > results[j].Urgency
		}
		return results[i].DaysLeft < results[j].DaysLeft
	})

	return c.JSON(fiber.Map{"items": results})
}
