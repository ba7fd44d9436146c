package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateUserTag handles POST /api/usertag. Tags cannot be listed, updated or
// removed through the API; they disappear with the tagged user or the post.
func (s *Server) CreateUserTag(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		UserID uint `json:"user_id"`
		PostID uint `json:"post_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	tag, err := s.tagService.CreateTag(ctx, service.CreateTagInput{
		UserID: req.UserID,
		PostID: req.PostID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(tag)
}
