package server

import (
	"io"
	"mime/multipart"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/post
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 20)

	filter, err := parsePostFilter(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	posts, err := s.postService.ListPosts(ctx, filter, page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/post/:id. A successful read counts as a visit;
// the counter is bumped only after the response is known to be a 200.
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	if err := c.JSON(post); err != nil {
		return err
	}
	if c.Response().StatusCode() == fiber.StatusOK {
		s.postService.RecordVisit(c.UserContext(), id)
	}
	return nil
}

// readImageUpload extracts the optional "image" part of a multipart form.
func (s *Server) readImageUpload(c *fiber.Ctx) (*service.ImageUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		// No file part is fine; the field is optional.
		return nil, nil
	}
	content, err := readMultipartFile(fileHeader)
	if err != nil {
		return nil, models.NewValidationError("Could not read uploaded image")
	}
	return &service.ImageUpload{Filename: fileHeader.Filename, Content: content}, nil
}

func readMultipartFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// parseSafeField reads an optional bool field from a form value.
func parseSafeField(raw string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		v := true
		return &v, nil
	case "false", "0", "no":
		v := false
		return &v, nil
	}
	return nil, models.NewValidationError("safe must be true or false")
}

// CreatePost handles POST /api/post. The body is either JSON (no image) or
// a multipart form with an optional "image" file.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)

	in := service.CreatePostInput{AuthorID: userID}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		in.Title = c.FormValue("title")
		in.Body = c.FormValue("body")
		safe, err := parseSafeField(c.FormValue("safe"))
		if err != nil {
			return respondServiceError(c, err)
		}
		in.Safe = safe

		image, err := s.readImageUpload(c)
		if err != nil {
			return respondServiceError(c, err)
		}
		in.Image = image
	} else {
		var req struct {
			Title string `json:"title"`
			Body  string `json:"body"`
			Safe  *bool  `json:"safe"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Body = req.Body
		in.Safe = req.Safe
	}

	post, err := s.postService.CreatePost(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PATCH/PUT /api/post/:id
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	in := service.UpdatePostInput{UserID: currentUserID(c), PostID: id}

	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		if values, ok := form.Value["title"]; ok && len(values) > 0 {
			in.Title = &values[0]
		}
		if values, ok := form.Value["body"]; ok && len(values) > 0 {
			in.Body = &values[0]
		}
		if values, ok := form.Value["safe"]; ok && len(values) > 0 {
			safe, err := parseSafeField(values[0])
			if err != nil {
				return respondServiceError(c, err)
			}
			in.Safe = safe
		}
		image, err := s.readImageUpload(c)
		if err != nil {
			return respondServiceError(c, err)
		}
		in.Image = image
		// An empty "image" text field (no file part) clears the stored image.
		if image == nil {
			if values, ok := form.Value["image"]; ok && len(values) > 0 {
				if values[0] != "" {
					return respondServiceError(c, models.NewValidationError(
						"image accepts a file upload, or an empty value to clear it"))
				}
				in.RemoveImage = true
			}
		}
	} else {
		var req struct {
			Title *string `json:"title"`
			Body  *string `json:"body"`
			Safe  *bool   `json:"safe"`
			Image *string `json:"image"`
		}
		if err := c.BodyParser(&req); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid request body"))
		}
		in.Title = req.Title
		in.Body = req.Body
		in.Safe = req.Safe
		// Uploads go through multipart; JSON can only clear the image.
		if req.Image != nil {
			if *req.Image != "" {
				return respondServiceError(c, models.NewValidationError(
					"image accepts only an empty value here; upload files via multipart"))
			}
			in.RemoveImage = true
		}
	}

	post, err := s.postService.UpdatePost(ctx, in)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// DeletePost handles DELETE /api/post/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(ctx, service.DeletePostInput{
		UserID: currentUserID(c),
		PostID: id,
	}); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// TogglePostLike handles POST /api/post/:id/like
func (s *Server) TogglePostLike(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	status, err := s.postService.ToggleLike(ctx, currentUserID(c), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"status": status})
}

// GetTaggedUsers handles GET /api/post/tagged-users/:id, listing the users
// tagged on the post.
func (s *Server) GetTaggedUsers(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.postService.TaggedUsers(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(users)
}

// GetTaggedPosts handles GET /api/post/tagged-posts/:id, listing the posts
// the user is tagged on.
func (s *Server) GetTaggedPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	posts, err := s.postService.TaggedPosts(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetPostComments handles GET /api/post/:id/comments
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	ctx := c.Context()
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListByPost(ctx, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(comments)
}
