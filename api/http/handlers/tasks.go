package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/artem13815/productivity/api/http/presenter"
	"github.com/artem13815/productivity/pkg/apperr"
	"github.com/artem13815/productivity/pkg/task"
)

type TaskHandler struct {
	useCase task.UseCase
	log     *slog.Logger
}

func NewTaskHandler(useCase task.UseCase, log *slog.Logger) *TaskHandler {
	return &TaskHandler{useCase: useCase, log: log}
}

// taskResponse mirrors id into "_id", which the web client keys list items by.
type taskResponse struct {
	LegacyID  string    `json:"_id"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Email     string    `json:"email"`
	Position  *int      `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newTaskResponse(t task.Task) taskResponse {
	id := t.ID.String()
	return taskResponse{
		LegacyID:  id,
		ID:        id,
		Title:     t.Title,
		Completed: t.Completed,
		Email:     t.Email,
		Position:  t.Position,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type taskListResponse struct {
	Tasks []taskResponse `json:"tasks"`
}

func newTaskListResponse(tasks []task.Task) taskListResponse {
	out := taskListResponse{Tasks: make([]taskResponse, 0, len(tasks))}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, newTaskResponse(t))
	}
	return out
}

// List returns the owner's tasks in display order.
// @Summary List tasks
// @Tags    tasks
// @Produce json
// @Param   email query string false "owner email (defaults to the token owner)"
// @Success 200 {object} taskListResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 401 {object} presenter.ErrorResponse
// @Router  /tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	email, err := ownerEmail(c, c.Query("email"))
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	tasks, err := h.useCase.List(c.UserContext(), email)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, newTaskListResponse(tasks))
}

type createTaskRequest struct {
	Email string `json:"email"`
	Title string `json:"title"`
}

// Create adds a task.
// @Summary Create task
// @Tags    tasks
// @Accept  json
// @Produce json
// @Param   input body createTaskRequest true "task payload"
// @Success 201 {object} taskResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Router  /tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Fail(c, h.log, errInvalidJSON)
	}
	email, err := ownerEmail(c, req.Email)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	t, err := h.useCase.Create(c.UserContext(), email, req.Title)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusCreated, newTaskResponse(t))
}

type updateTaskRequest struct {
	Email     string  `json:"email"`
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// Update applies a partial change.
// @Summary Update task
// @Tags    tasks
// @Accept  json
// @Produce json
// @Param   id    path string            true "task id"
// @Param   input body updateTaskRequest true "fields to change"
// @Success 200 {object} taskResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id} [patch]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	var req updateTaskRequest
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
	t, err := h.useCase.Update(c.UserContext(), c.Params("id"), email, task.Patch{Title: req.Title, Completed: req.Completed})
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, newTaskResponse(t))
}

// Delete removes a task.
// @Summary Delete task
// @Tags    tasks
// @Param   id    path  string true  "task id"
// @Param   email query string false "owner email"
// @Success 204
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	email, err := ownerEmail(c, queryOrBodyEmail(c))
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	if err := h.useCase.Delete(c.UserContext(), c.Params("id"), email); err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

type reorderRequest struct {
	Email string `json:"email"`
	Index *int   `json:"index"`
}

// Reorder moves a task to a new index and returns the renumbered list.
// @Summary Move task
// @Tags    tasks
// @Accept  json
// @Produce json
// @Param   id    path string         true "task id"
// @Param   input body reorderRequest true "target index"
// @Success 200 {object} taskListResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /tasks/{id}/position [put]
func (h *TaskHandler) Reorder(c *fiber.Ctx) error {
	var req reorderRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Fail(c, h.log, errInvalidJSON)
	}
	if req.Index == nil {
		return presenter.Fail(c, h.log, apperr.ValidationFields("Index is required", map[string]string{"index": "must be provided"}))
	}
	email, err := ownerEmail(c, req.Email)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	tasks, err := h.useCase.Reorder(c.UserContext(), c.Params("id"), *req.Index, email)
	if err != nil {
		return presenter.Fail(c, h.log, err)
	}
	return presenter.JSON(c, http.StatusOK, newTaskListResponse(tasks))
}
