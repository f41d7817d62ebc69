package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/productivity/api/http/presenter"
	"github.com/artem13815/productivity/pkg/health"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	svc health.ReadinessUseCase
	log *slog.Logger
}

func NewHealthHandler(svc health.ReadinessUseCase, log *slog.Logger) *HealthHandler {
	return &HealthHandler{svc: svc, log: log}
}

// Health: basic liveness check.
// @Summary Liveness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Router  /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return presenter.JSON(c, http.StatusOK, fiber.Map{"status": "ok"})
}

// Ready: readiness check over Postgres and, when configured, Redis.
// @Summary Readiness probe
// @Tags    health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router  /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.svc.Ready(ctx); err != nil {
		h.log.WarnContext(ctx, "readiness check failed", slog.Any("error", err))
		return presenter.JSON(c, http.StatusServiceUnavailable, fiber.Map{
			"status":  "not_ready",
			"details": err.Error(),
		})
	}
	return presenter.JSON(c, http.StatusOK, fiber.Map{"status": "ready"})
}
