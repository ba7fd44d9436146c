package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

type testServer struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

// setupTestServer wires a full server against in-memory SQLite and miniredis.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := &config.Config{
		Port:                 "0",
		Env:                  "test",
		JWTSecret:            "test-secret-key-for-handler-tests!!",
		ImageUploadDir:       t.TempDir(),
		ImageMaxUploadSizeMB: 10,
	}

	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupRoutes(app)

	return &testServer{server: s, app: app, db: db, redis: mr}
}

func registerInput(username string) service.RegisterInput {
	return service.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "SecurePass12!",
	}
}

// registerUser creates a user directly and returns it with a valid token.
func (ts *testServer) registerUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	user, err := ts.server.userService.Register(t.Context(), registerInput(username))
	require.NoError(t, err)
	token, err := ts.server.generateToken(user.ID, user.Username)
	require.NoError(t, err)
	return user, token
}

func (ts *testServer) createPost(t *testing.T, author *models.User, title string) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Body: "body of " + title, AuthorID: author.ID, Safe: true}
	require.NoError(t, ts.db.Create(post).Error)
	return post
}

// doJSON performs a JSON request against the test app.
func (ts *testServer) doJSON(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func mustTime(t *testing.T, date string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	return parsed
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
