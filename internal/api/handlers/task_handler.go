package handlers

import (
	"errors"
	"time"

	"Food-Rescue-Ledger/domain"
	"Food-Rescue-Ledger/internal/api/presenters"
	"Food-Rescue-Ledger/internal/middleware"
	"Food-Rescue-Ledger/pkg/task"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type (
	TaskHandler interface {
		GetAvailableTasks(c *fiber.Ctx) error
		AcceptTask(c *fiber.Ctx) error
		CompleteTask(c *fiber.Ctx) error
		GetMyProfile(c *fiber.Ctx) error
		RegisterVolunteer(c *fiber.Ctx) error
	}

	taskHandler struct {
		taskService task.TaskService
		validator   *validator.Validate
	}
)

func NewTaskHandler(taskService task.TaskService, validator *validator.Validate) TaskHandler {
	return &taskHandler{
		taskService: taskService,
		validator:   validator,
	}
}

func (h *taskHandler) GetAvailableTasks(c *fiber.Ctx) error {
	filter := domain.TaskFilter{Type: domain.TaskType(c.Query("type"))}
	if filter.Type != "" && !filter.Type.Valid() {
		return presenters.Fail(c, domain.MessageFailedGetTasks, domain.NewValidationError("type", "must be pickup or delivery"))
	}

	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return presenters.Fail(c, domain.MessageInvalidTaskDateQuery, domain.NewValidationError("date", "expected YYYY-MM-DD"))
		}
		filter.Date = &day
	}

	tasks, err := h.taskService.ListAvailableTasks(c.Context(), filter)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetTasks, err)
	}

	return presenters.SuccessResponse(c, fiber.Map{
		"tasks": tasks,
		"total": len(tasks),
	}, fiber.StatusOK, domain.MessageSuccessGetTasks)
}

func (h *taskHandler) AcceptTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	accepted, err := h.taskService.AcceptTask(c.Context(), c.Params("id"), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyAssigned):
			return presenters.Fail(c, domain.MessageTaskJustTaken, err)
		case errors.Is(err, domain.ErrVolunteerNotRegistered):
			return presenters.Fail(c, domain.MessageRegisterFirst, err)
		}
		return presenters.Fail(c, domain.MessageFailedAcceptTask, err)
	}

	return presenters.SuccessResponse(c, accepted, fiber.StatusOK, domain.MessageSuccessAcceptTask)
}

func (h *taskHandler) CompleteTask(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	completed, err := h.taskService.CompleteTask(c.Context(), c.Params("id"), user.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedCompleteTask, err)
	}

	return presenters.SuccessResponse(c, completed, fiber.StatusOK, domain.MessageSuccessCompleteTask)
}

func (h *taskHandler) GetMyProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	profile, err := h.taskService.GetVolunteerProfile(c.Context(), user.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedGetVolunteer, err)
	}

	return presenters.SuccessResponse(c, profile, fiber.StatusOK, domain.MessageSuccessGetVolunteer)
}

func (h *taskHandler) RegisterVolunteer(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	req := new(domain.RegisterVolunteerRequest)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}

	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedRegisterVolunteer, err)
	}

	profile, err := h.taskService.RegisterVolunteer(c.Context(), *req, user.ID)
	if err != nil {
		return presenters.Fail(c, domain.MessageFailedRegisterVolunteer, err)
	}

	return presenters.SuccessResponse(c, profile, fiber.StatusOK, domain.MessageSuccessRegisterVolunteer)
}
