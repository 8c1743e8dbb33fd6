package handler

import (
	"github.com/gofiber/fiber/v2"

	"scanplant/internal/domain"
	"scanplant/internal/middleware"
	"scanplant/internal/service/comment"
)

type CommentHandler struct {
	commentService comment.Service
}

func NewCommentHandler(commentService comment.Service) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	plantID, err := parseIDParam(c, "plantId", "plant")
	if err != nil {
		return err
	}

	var input domain.CreateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	comment, err := h.commentService.Create(c.Context(), caller, plantID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	plantID, err := parseIDParam(c, "plantId", "plant")
	if err != nil {
		return err
	}

	result, err := h.commentService.ListByPlant(c.Context(), plantID, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *CommentHandler) ListMine(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}

	comments, err := h.commentService.ListByAuthor(c.Context(), caller)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(comments)
}

func (h *CommentHandler) Get(c *fiber.Ctx) error {
	commentID, err := parseIDParam(c, "commentId", "comment")
	if err != nil {
		return err
	}

	comment, err := h.commentService.GetByID(c.Context(), commentID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(comment)
}

func (h *CommentHandler) Update(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	commentID, err := parseIDParam(c, "commentId", "comment")
	if err != nil {
		return err
	}

	var input domain.UpdateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	comment, err := h.commentService.Update(c.Context(), caller, commentID, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(comment)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	commentID, err := parseIDParam(c, "commentId", "comment")
	if err != nil {
		return err
	}

	if err := h.commentService.Delete(c.Context(), caller, commentID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
