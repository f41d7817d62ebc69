package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/productivity/api/http/presenter"
	"github.com/artem13815/productivity/pkg/apperr"
	"github.com/artem13815/productivity/pkg/logging"
	"github.com/artem13815/productivity/pkg/metrics"
)

type fakeLimiter struct {
	allow bool
	wait  time.Duration
	err   error
}

func (f fakeLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return f.allow, f.wait, f.err
}

func newApp(h ...fiber.Handler) *fiber.App {
	app := fiber.New()
	for _, m := range h {
		app.Use(m)
	}
	app.Get("/tasks/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	return app
}

func TestRateLimit_Rejects(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitRejectedTotal)
	app := newApp(RateLimit(fakeLimiter{wait: 1500 * time.Millisecond}, logging.Discard()))

	resp, err := app.Test(httptest.NewRequest("GET", "/tasks/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RateLimitRejectedTotal))
}

func TestRateLimit_FailsOpen(t *testing.T) {
	app := newApp(RateLimit(fakeLimiter{err: errors.New("redis down")}, logging.Discard()))

	resp, err := app.Test(httptest.NewRequest("GET", "/tasks/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestMetrics_UsesRoutePattern(t *testing.T) {
	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/tasks/:id", "204")
	before := testutil.ToFloat64(counter)
	app := newApp(RequestLogger(logging.Discard()), Metrics())

	resp, err := app.Test(httptest.NewRequest("GET", "/tasks/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRequestLogger_LogsRenderedStatus(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, "info", "json")
	app := fiber.New(fiber.Config{ErrorHandler: presenter.ErrorHandler(log)})
	app.Use(RequestLogger(log))
	app.Get("/goals/:id", func(c *fiber.Ctx) error { return apperr.NotFound("Goal not found") })

	resp, err := app.Test(httptest.NewRequest("GET", "/goals/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Contains(t, buf.String(), `"status":404`)
	assert.Contains(t, buf.String(), `"path":"/goals/x"`)
}
