package middleware

import (
	"log"
	"strconv"
	"time"

	"neetprep/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// RequestObserver receives the method, status and latency of every request.
type RequestObserver func(method, status string, seconds float64)

func LoggingMiddleware(logger *log.Logger, observers ...RequestObserver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		method := c.Method()
		latency := time.Since(start)

		var statusColor, methodColor, resetColor string
		if logger.Flags()&log.Lmsgprefix == 0 {
			statusColor, methodColor, resetColor = utils.StatusColor(status), utils.MethodColor(method), "\033[0m"
		}

		logger.Printf("%s %s%s%s %s %s%d%s %v",
			c.IP(),
			methodColor, method, resetColor,
			c.Path(),
			statusColor, status, resetColor,
			latency,
		)

		for _, observe := range observers {
			observe(method, strconv.Itoa(status), latency.Seconds())
		}
		return err
	}
}
