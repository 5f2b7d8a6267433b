package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const defaultAnalyticsRange = 30 * 24 * time.Hour

// AnalyticsSummary defaults to the last 30 days.
func (handler *Handler) AnalyticsSummary(c *fiber.Ctx) error {
	to := time.Now().UTC()
	if raw := c.Query("to"); raw != "" {
		parsed, ok := parseTimeParam(raw)
		if !ok {
			return respondError(c, invalidParameter("to"))
		}
		to = parsed
	}
	from := to.Add(-defaultAnalyticsRange)
	if raw := c.Query("from"); raw != "" {
		parsed, ok := parseTimeParam(raw)
		if !ok {
			return respondError(c, invalidParameter("from"))
		}
		from = parsed
	}

	summary, err := handler.analytics.Summary(currentIdentity(c), from, to)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
