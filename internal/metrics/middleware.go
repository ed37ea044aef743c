package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const slowRequestThreshold = time.Second

// HTTPMetricsMiddleware records every request against its route pattern. Handler errors are
// rendered through the app's error handler first so the recorded status is the one the client sees.
func HTTPMetricsMiddleware(metrics *Metrics, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		started := time.Now()
		if err := c.Next(); err != nil {
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		elapsed := time.Since(started)

		route := c.Route().Path
		if route == "" || route == "/" {
			route = c.Path()
		}
		status := c.Response().StatusCode()

		metrics.RecordHTTPRequest(c.Method(), route, strconv.Itoa(status), elapsed, len(c.Response().Body()))

		if elapsed > slowRequestThreshold {
			logger.Warn("Slow HTTP request",
				zap.String("method", c.Method()),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("elapsed", elapsed),
			)
		}

		return nil
	}
}
