package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"scanplant/internal/domain"
	"scanplant/internal/middleware"
	"scanplant/internal/service"
)

type Handlers struct {
	Plant        *PlantHandler
	Comment      *CommentHandler
	Reminder     *ReminderHandler
	Notification *NotificationHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Plant:        NewPlantHandler(services.Plant),
		Comment:      NewCommentHandler(services.Comment),
		Reminder:     NewReminderHandler(services.Reminder),
		Notification: NewNotificationHandler(services.Notification),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

func parseIDParam(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + label + " ID")
	}
	return id, nil
}
