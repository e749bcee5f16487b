package server

import (
	"errors"

	"agora/internal/contentstore"
	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/fiber/v2"
)

const maxContentBytes = 5 << 20 // 5 MiB per blob

// UploadContent handles POST /api/content. The raw request body is the blob;
// the response carries the content reference to use in profiles, posts and
// proposals. Uploading the same bytes twice returns the same reference.
func (s *Server) UploadContent(c *fiber.Ctx) error {
	body := c.Body()
	if len(body) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Request body must not be empty"))
	}
	if len(body) > maxContentBytes {
		return models.RespondWithError(c, fiber.StatusRequestEntityTooLarge,
			models.NewValidationError("Content exceeds the maximum blob size"))
	}

	ref, err := s.content.Store(c.UserContext(), body)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	observability.ContentStoreBytesTotal.Add(float64(len(body)))

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"content_ref": ref,
		"size":        len(body),
	})
}

// GetContent handles GET /api/content/:ref and streams the blob back.
func (s *Server) GetContent(c *fiber.Ctx) error {
	data, err := s.content.Retrieve(c.UserContext(), c.Params("ref"))
	if err != nil {
		if errors.Is(err, contentstore.ErrNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("content", c.Params("ref")))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(data)
}
