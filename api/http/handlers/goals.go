package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/productivity/api/http/presenter"
	"github.com/artem13815/productivity/pkg/goal"
)

type GoalHandler struct {
	useCase goal.UseCase
	log     *slog.Logger
}

func NewGoalHandler(useCase goal.UseCase, log *slog.Logger) *GoalHandler {
	return &GoalHandler{useCase: useCase, log: log}
}

type goalResponse struct {
	LegacyID  string    `json:"_id"`
	ID        string    `json:"id"`
	Goal      string    `json:"goal"`
	Type      goal.Type `json:"type"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newGoalResponse(g goal.Goal) goalResponse {
	id := g.ID.String()
	return goalResponse{LegacyID: id, ID: id, Goal: g.Goal, Type: g.Type, Email: g.Email, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

type goalListResponse struct {
	Goals []goalResponse `json:"goals"`
}

// @Summary List goals
// @Tags    goals
// @Produce json
// @Param   email query string false "owner email"
// @Success 200 {object} goalListResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /goals [get]
func (h *GoalHandler) List(c *fiber.Ctx) error {
	email, err := ownerEmail(c, c.Query("email"))
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	goals, err := h.useCase.List(c.UserContext(), email)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	out := goalListResponse{Goals: make([]goalResponse, 0, len(goals))}
	for _, g := range goals {
		out.Goals = append(out.Goals, newGoalResponse(g))
	}
	return presenter.JSON(c, http.StatusOK, out)
}

type createGoalRequest struct {
	Email string    `json:"email"`
	Goal  string    `json:"goal"`
	Type  goal.Type `json:"type"`
}

// @Summary Create goal
// @Tags    goals
// @Accept  json
// @Produce json
// @Param   input body createGoalRequest true "goal payload"
// @Success 201 {object} goalResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /goals [post]
func (h *GoalHandler) Create(c *fiber.Ctx) error {
	var req createGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Fail(c, h.log, errInvalidJSON)
	}
	email, err := ownerEmail(c, req.Email)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	g, err := h.useCase.Create(c.UserContext(), email, req.Goal, req.Type)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusCreated, newGoalResponse(g))
}

type updateGoalRequest struct {
	Email string     `json:"email"`
	Goal  *string    `json:"goal"`
	Type  *goal.Type `json:"type"`
}

// @Summary Update goal
// @Tags    goals
// @Accept  json
// @Produce json
// @Param   id    path string            true "goal id"
// @Param   input body updateGoalRequest true "fields to change"
// @Success 200 {object} goalResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /goals/{id} [patch]
func (h *GoalHandler) Update(c *fiber.Ctx) error {
	var req updateGoalRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Fail(c, h.log, errInvalidJSON)
	}
	if req.Email == "" {
		req.Email = c.Query("email")
	}
	email, err := ownerEmail(c, req.Email)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	g, err := h.useCase.Update(c.UserContext(), c.Params("id"), email, goal.Patch{Goal: req.Goal, Type: req.Type})
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, newGoalResponse(g))
}

// @Summary Delete goal
// @Tags    goals
// @Param   id    path  string true  "goal id"
// @Param   email query string false "owner email"
// @Success 204
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /goals/{id} [delete]
func (h *GoalHandler) Delete(c *fiber.Ctx) error {
	email, err := ownerEmail(c, queryOrBodyEmail(c))
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	if err := h.useCase.Delete(c.UserContext(), c.Params("id"), email); err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return c.SendStatus(http.StatusNoContent)
}
