package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/productivity/api/http/presenter"
	"github.com/artem13815/productivity/pkg/stats"
)

type StatsHandler struct {
	useCase stats.UseCase
	log     *slog.Logger
}

func NewStatsHandler(useCase stats.UseCase, log *slog.Logger) *StatsHandler {
	return &StatsHandler{useCase: useCase, log: log}
}

// Summary returns the dashboard counters.
// @Summary Dashboard stats
// @Tags    stats
// @Produce json
// @Param   email query string false "owner email"
// @Success 200 {object} stats.Summary
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /stats [get]
func (h *StatsHandler) Summary(c *fiber.Ctx) error {
	email, err := ownerEmail(c, c.Query("email"))
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	s, err := h.useCase.Summary(c.UserContext(), email)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, s)
}
