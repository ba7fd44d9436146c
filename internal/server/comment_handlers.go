package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/comment
func (s *Server) GetComments(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)

	comments, err := s.commentService.ListComments(ctx, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(comments)
}

// GetComment handles GET /api/comment/:id
func (s *Server) GetComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(comment)
}

// CreateComment handles POST /api/comment
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		PostID uint   `json:"post_id"`
		Body   string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.PostID == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("post_id is required"))
	}

	comment, err := s.commentService.CreateComment(ctx, service.CreateCommentInput{
		UserID: currentUserID(c),
		PostID: req.PostID,
		Body:   req.Body,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

// UpdateComment handles PATCH/PUT /api/comment/:id
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.UpdateComment(ctx, service.UpdateCommentInput{
		UserID:    currentUserID(c),
		CommentID: id,
		Body:      req.Body,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(comment)
}

// DeleteComment handles DELETE /api/comment/:id
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(ctx, service.DeleteCommentInput{
		UserID:    currentUserID(c),
		CommentID: id,
	}); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleCommentLike handles POST /api/comment/:id/like
func (s *Server) ToggleCommentLike(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	status, err := s.commentService.ToggleLike(ctx, currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"status": status})
}
