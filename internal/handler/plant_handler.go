package handler

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"scanplant/internal/domain"
	"scanplant/internal/middleware"
	"scanplant/internal/service/plant"
)

const maxImageSize = 10 * 1024 * 1024

type PlantHandler struct {
	plantService plant.Service
}

func NewPlantHandler(plantService plant.Service) *PlantHandler {
	return &PlantHandler{plantService: plantService}
}

func (h *PlantHandler) List(c *fiber.Ctx) error {
	plants, err := h.plantService.List(c.Context())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(plants)
}

func (h *PlantHandler) ListMine(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}

	plants, err := h.plantService.ListByOwner(c.Context(), caller.UserID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(plants)
}

func (h *PlantHandler) Nearby(c *fiber.Ctx) error {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return middleware.BadRequest("Invalid or missing lat")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return middleware.BadRequest("Invalid or missing lon")
	}

	query := domain.NearbyQuery{Latitude: lat, Longitude: lon}
	if radius := c.Query("radius"); radius != "" {
		query.RadiusKm, err = strconv.ParseFloat(radius, 64)
		if err != nil {
			return middleware.BadRequest("Invalid radius")
		}
	}

	plants, err := h.plantService.ListNear(c.Context(), query)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(plants)
}

func (h *PlantHandler) Search(c *fiber.Ctx) error {
	plants, err := h.plantService.Search(c.Context(), c.Query("q"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(plants)
}

func (h *PlantHandler) Get(c *fiber.Ctx) error {
	plantID, err := parseIDParam(c, "plantId", "plant")
	if err != nil {
		return err
	}

	p, err := h.plantService.GetByID(c.Context(), plantID)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *PlantHandler) Create(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}

	var input domain.PlantInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	image, err := imageFromForm(c)
	if err != nil {
		return err
	}

	p, err := h.plantService.Create(c.Context(), caller, input, image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *PlantHandler) Update(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	plantID, err := parseIDParam(c, "plantId", "plant")
	if err != nil {
		return err
	}

	var input domain.PlantInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	image, err := imageFromForm(c)
	if err != nil {
		return err
	}

	p, err := h.plantService.Update(c.Context(), caller, plantID, input, image)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *PlantHandler) Delete(c *fiber.Ctx) error {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		return err
	}
	plantID, err := parseIDParam(c, "plantId", "plant")
	if err != nil {
		return err
	}

	if err := h.plantService.Delete(c.Context(), caller, plantID); err != nil {
		return err
	}
	return c.Status(fiber.StatusNoContent).SendString("")
}

// imageFromForm returns the optional "image" part of a multipart body. A
// missing part yields nil; the service decides whether that is allowed.
func imageFromForm(c *fiber.Ctx) (*domain.ImageUpload, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, nil
	}

	if file.Size > maxImageSize {
		return nil, middleware.BadRequest("Image size must be less than 10MB")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &domain.ImageUpload{
		FileName:    file.Filename,
		ContentType: contentType,
		Size:        file.Size,
		Open: func() (io.ReadCloser, error) {
			return file.Open()
		},
	}, nil
}
