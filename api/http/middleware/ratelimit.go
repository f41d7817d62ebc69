package middleware

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/productivity/api/http/presenter"
	"github.com/artem13815/productivity/pkg/metrics"
)

// Allower is satisfied by *ratelimit.Limiter.
type Allower interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// RateLimit rejects clients that exhausted their bucket with 429 and a
// Retry-After header. Backend failures let the request through.
func RateLimit(l Allower, log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ok, wait, err := l.Allow(c.UserContext(), c.IP())
		if err != nil {
			metrics.RateLimitErrorsTotal.Inc()
			log.WarnContext(c.UserContext(), "rate limiter unavailable", slog.Any("error", err))
			return c.Next()
		}
		if !ok {
			metrics.RateLimitRejectedTotal.Inc()
			secs := int(math.Ceil(wait.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return presenter.Error(c, fiber.StatusTooManyRequests, "Too many requests")
		}
		return c.Next()
	}
}
