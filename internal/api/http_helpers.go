package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/tempo/internal/services"
)

const dateLayout = "2006-01-02"

func sessionMeta(c *fiber.Ctx) services.SessionMeta {
	return services.SessionMeta{
		IPAddress: c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

func parseBody(c *fiber.Ctx, target any) error {
	if err := c.BodyParser(target); err != nil {
		return errInvalidBody
	}
	return nil
}

func invalidParameter(name string) error {
	return &services.Error{Kind: services.ErrValidation, Message: "invalid " + name}
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Params(name)), 10, 64)
	if err != nil || value == 0 {
		return 0, invalidParameter(name)
	}
	return uint(value), nil
}

// queryID returns nil when the parameter is absent.
func queryID(c *fiber.Ctx, name string) (*uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		return nil, invalidParameter(name)
	}
	id := uint(value)
	return &id, nil
}

func queryBool(c *fiber.Ctx, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.Query(name))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func queryInt(c *fiber.Ctx, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, invalidParameter(name)
	}
	return &value, nil
}

// parseTimeParam accepts RFC 3339 timestamps and plain dates, which are
// read as UTC midnight.
func parseTimeParam(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.UTC(), true
	}
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return parsed.UTC(), true
	}
	return time.Time{}, false
}
