package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"scanplant/internal/domain"
	"scanplant/internal/middleware"
	"scanplant/internal/service/notification"
)

const dateLayout = "2006-01-02"

type NotificationHandler struct {
	notifService notification.Service
}

func NewNotificationHandler(notifService notification.Service) *NotificationHandler {
	return &NotificationHandler{notifService: notifService}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}

	filter, err := parseNotificationFilter(c)
	if err != nil {
		return err
	}

	notifications, err := h.notifService.List(c.Context(), caller, filter)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notifications)
}

func (h *NotificationHandler) Get(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	notif, err := h.notifService.GetByID(c.Context(), caller, notifID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notif)
}

func (h *NotificationHandler) Create(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}

	var input domain.CreateNotificationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	notif, err := h.notifService.Create(c.Context(), caller, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(notif)
}

func (h *NotificationHandler) Update(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	var input domain.UpdateNotificationInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	notif, err := h.notifService.Update(c.Context(), caller, notifID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notif)
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notifService.Delete(c.Context(), caller, notifID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}

	count, err := h.notifService.GetUnreadCount(c.Context(), caller)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

// MarkAsRead accepts an optional {"read": false} body to mark a notification
// unread again.
func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	notifID, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	read := true
	if len(c.Body()) > 0 {
		var input domain.MarkReadInput
		if err := c.BodyParser(&input); err != nil {
			return middleware.BadRequest("Invalid request body")
		}
		if input.Read != nil {
			read = *input.Read
		}
	}

	notif, err := h.notifService.MarkAsRead(c.Context(), caller, notifID, read)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notif)
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}

	count, err := h.notifService.MarkAllAsRead(c.Context(), caller)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"updated": count,
	})
}

func parseNotificationFilter(c *fiber.Ctx) (domain.NotificationFilter, error) {
	var filter domain.NotificationFilter

	if raw := c.Query("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, middleware.BadRequest("Invalid unread flag")
		}
		filter.Unread = &unread
	}

	if t := c.Query("type"); t != "" {
		filter.Type = &t
	}

	if raw := c.Query("startDate"); raw != "" {
		from, err := parseFilterTime(raw, false)
		if err != nil {
			return filter, middleware.BadRequest("Invalid startDate")
		}
		filter.CreatedFrom = &from
	}

	if raw := c.Query("endDate"); raw != "" {
		to, err := parseFilterTime(raw, true)
		if err != nil {
			return filter, middleware.BadRequest("Invalid endDate")
		}
		filter.CreatedTo = &to
	}

	return filter, nil
}

// parseFilterTime accepts RFC 3339 or a bare date. A bare end date covers the
// whole day.
func parseFilterTime(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
