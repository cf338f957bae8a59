package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/meetbridge/meetbridge/internal/domain"
	"github.com/meetbridge/meetbridge/internal/middleware"
	"github.com/meetbridge/meetbridge/internal/service"
)

// TaskHandler handles task endpoints against the default task list.
type TaskHandler struct {
	tasks *service.TaskService
}

// NewTaskHandler creates a new task handler.
func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Register sets up task routes.
func (h *TaskHandler) Register(api fiber.Router, requireTokens fiber.Handler) {
	tasks := api.Group("/tasks")
	tasks.Post("/", h.Create, requireTokens)
	tasks.Put("/:taskId", h.Update, requireTokens)
	tasks.Delete("/:taskId", h.Delete, requireTokens)
}

// Create creates a task on the default list.
func (h *TaskHandler) Create(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	var in domain.TaskInput
	if err := c.Bind().JSON(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	task, err := h.tasks.CreateTask(c.Context(), tokens, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(task)
}

// Update replaces a task by id.
func (h *TaskHandler) Update(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	var in domain.TaskInput
	if err := c.Bind().JSON(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	task, err := h.tasks.UpdateTask(c.Context(), tokens, c.Params("taskId"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(task)
}

// Delete deletes a task by id.
func (h *TaskHandler) Delete(c fiber.Ctx) error {
	tokens := middleware.TokensFromContext(c)

	if err := h.tasks.DeleteTask(c.Context(), tokens, c.Params("taskId")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully."})
}
