package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"scanplant/internal/domain"
	"scanplant/internal/middleware"
	"scanplant/internal/service/reminder"
)

type ReminderHandler struct {
	reminderService reminder.Service
}

func NewReminderHandler(reminderService reminder.Service) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

type reminderLister func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error)

// list adapts a caller-scoped listing to a handler.
func (h *ReminderHandler) list(fn reminderLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := middleware.GetCaller(c)
		if err != nil {
			return err
		}

		reminders, err := fn(c, caller)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusOK).JSON(reminders)
	}
}

func (h *ReminderHandler) List() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		return h.reminderService.ListByOwner(c.Context(), caller)
	})
}

func (h *ReminderHandler) Pending() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		return h.reminderService.ListPending(c.Context(), caller)
	})
}

func (h *ReminderHandler) Completed() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		return h.reminderService.ListCompleted(c.Context(), caller)
	})
}

func (h *ReminderHandler) Overdue() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		return h.reminderService.ListOverdue(c.Context(), caller)
	})
}

func (h *ReminderHandler) Today() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		return h.reminderService.ListToday(c.Context(), caller)
	})
}

func (h *ReminderHandler) Next7Days() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		return h.reminderService.ListNext7Days(c.Context(), caller)
	})
}

func (h *ReminderHandler) ByCategory() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		return h.reminderService.ListByCategory(c.Context(), caller, c.Params("category"))
	})
}

func (h *ReminderHandler) ByPriority() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		priority, err := strconv.Atoi(c.Params("priority"))
		if err != nil {
			return nil, middleware.BadRequest("Invalid priority")
		}
		return h.reminderService.ListByPriority(c.Context(), caller, domain.Priority(priority))
	})
}

func (h *ReminderHandler) ByPlant() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		plantID, err := parseIDParam(c, "plantId", "plant")
		if err != nil {
			return nil, err
		}
		return h.reminderService.ListByPlant(c.Context(), caller, plantID)
	})
}

func (h *ReminderHandler) Search() fiber.Handler {
	return h.list(func(c *fiber.Ctx, caller domain.Caller) ([]domain.Reminder, error) {
		return h.reminderService.Search(c.Context(), caller, c.Query("q"))
	})
}

func (h *ReminderHandler) Get(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	reminderID, err := parseIDParam(c, "reminderId", "reminder")
	if err != nil {
		return err
	}

	r, err := h.reminderService.GetByID(c.Context(), caller, reminderID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *ReminderHandler) Statistics(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}

	stats, err := h.reminderService.Statistics(c.Context(), caller)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(stats)
}

func (h *ReminderHandler) Create(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}

	var input domain.CreateReminderInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	r, err := h.reminderService.Create(c.Context(), caller, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(r)
}

func (h *ReminderHandler) Update(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	reminderID, err := parseIDParam(c, "reminderId", "reminder")
	if err != nil {
		return err
	}

	var input domain.UpdateReminderInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	r, err := h.reminderService.Update(c.Context(), caller, reminderID, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *ReminderHandler) SetCompleted(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	reminderID, err := parseIDParam(c, "reminderId", "reminder")
	if err != nil {
		return err
	}

	input := domain.CompleteReminderInput{Completed: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return middleware.BadRequest("Invalid request body")
		}
	}

	r, err := h.reminderService.SetCompleted(c.Context(), caller, reminderID, input.Completed)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(r)
}

func (h *ReminderHandler) Delete(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	reminderID, err := parseIDParam(c, "reminderId", "reminder")
	if err != nil {
		return err
	}

	if err := h.reminderService.Delete(c.Context(), caller, reminderID); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}
