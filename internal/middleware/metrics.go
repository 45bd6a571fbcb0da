package middleware

import (
	"strconv"
	"time"

	"go-commerce-ledger/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics tracks HTTP request counts and latencies.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		method := c.Method()
		path := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())

		if metrics.HTTPRequestsTotal != nil {
			metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		}

		return err
	}
}
