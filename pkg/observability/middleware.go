package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// MetricsMiddleware records request count and duration for every route.
// Websocket upgrades are counted once, when the connection closes.
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := "unmatched"
		if r := c.Route(); r != nil && r.Path != "" {
			route = r.Path
		}

		RequestsTotal.WithLabelValues(c.Method(), strconv.Itoa(status/100)+"xx", route).Inc()
		RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())

		return err
	}
}
