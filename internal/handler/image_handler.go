package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// ImageHandler proxies image generation to the configured inference endpoint.
// Its wire format is {prompt} -> {imageUrl} | {error}.
type ImageHandler struct {
	images domain.ImageGenerator
}

// NewImageHandler creates a new image handler
func NewImageHandler(images domain.ImageGenerator) *ImageHandler {
	return &ImageHandler{images: images}
}

type generateImageRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateImage handles POST /api/generate-image
func (h *ImageHandler) GenerateImage(c *fiber.Ctx) error {
	var req generateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "prompt is required"})
	}

	imageURL, err := h.images.Generate(c.UserContext(), req.Prompt)
	if err != nil {
		status := fiber.StatusInternalServerError
		var imgErr *domain.ImageGenerationError
		if errors.As(err, &imgErr) && imgErr.StatusCode >= 400 {
			status = imgErr.StatusCode
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"imageUrl": imageURL})
}
