package server

import (
	"errors"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type pageData struct {
	Username     string
	Posts        []*models.Post
	Error        string
	FormUsername string
	FormEmail    string
}

// pageUsername resolves the display name for the session user, if any.
func (s *Server) pageUsername(c *fiber.Ctx) string {
	userID, ok := s.sessionUserID(c)
	if !ok {
		return ""
	}
	user, err := s.userService.GetUserByID(c.Context(), userID)
	if err != nil {
		return ""
	}
	return user.Username
}

// IndexPage handles GET /, the public feed of recent posts.
func (s *Server) IndexPage(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.Context(), repository.PostFilter{Ordering: "-id"}, 20, 0)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "failed to load index feed", "error", err)
		posts = nil
	}

	return renderPage(c, pageTemplates.Index, fiber.StatusOK, pageData{
		Username: s.pageUsername(c),
		Posts:    posts,
	})
}

// SignupPage handles GET /signup.
func (s *Server) SignupPage(c *fiber.Ctx) error {
	return renderPage(c, pageTemplates.Signup, fiber.StatusOK, pageData{})
}

// SignupSubmit handles POST /signup. A successful registration sends the new
// user to the login page rather than logging them in.
func (s *Server) SignupSubmit(c *fiber.Ctx) error {
	username := c.FormValue("username")
	email := c.FormValue("email")
	password := c.FormValue("password")

	_, err := s.userService.Register(c.Context(), service.RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		msg := "Could not create the account"
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			msg = appErr.Message
			for _, fieldMsg := range appErr.Fields {
				msg = fieldMsg
				break
			}
		}
		return renderPage(c, pageTemplates.Signup, fiber.StatusBadRequest, pageData{
			Error:        msg,
			FormUsername: username,
			FormEmail:    email,
		})
	}

	return c.Redirect("/login", fiber.StatusSeeOther)
}

// LoginPage handles GET /login.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return renderPage(c, pageTemplates.Login, fiber.StatusOK, pageData{})
}

// LoginSubmit handles POST /login. Success sets the browser session and
// redirects home.
func (s *Server) LoginSubmit(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	user, err := s.userService.Authenticate(c.Context(), username, password)
	if err != nil {
		return renderPage(c, pageTemplates.Login, fiber.StatusUnauthorized, pageData{
			Error:        "Invalid username or password",
			FormUsername: username,
		})
	}

	sess, err := s.sessions.Get(c)
	if err != nil {
		return renderPage(c, pageTemplates.Login, fiber.StatusInternalServerError, pageData{
			Error:        "Could not establish a session",
			FormUsername: username,
		})
	}
	sess.Set("userID", user.ID)
	if err := sess.Save(); err != nil {
		return renderPage(c, pageTemplates.Login, fiber.StatusInternalServerError, pageData{
			Error:        "Could not establish a session",
			FormUsername: username,
		})
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

// LogoutPage handles GET /logout: the session is destroyed and the browser
// is sent to the login page.
func (s *Server) LogoutPage(c *fiber.Ctx) error {
	if sess, err := s.sessions.Get(c); err == nil {
		_ = sess.Destroy()
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}
