package server

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "commentId" -> "comment ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}

// respondServiceError maps service-layer errors to HTTP responses.
func respondServiceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Resource", c.Params("id")))
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case "VALIDATION_ERROR":
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case "UNAUTHORIZED":
			return models.RespondWithError(c, fiber.StatusForbidden, appErr)
		case "CONFLICT":
			return models.RespondWithError(c, fiber.StatusConflict, appErr)
		case "NOT_FOUND":
			return models.RespondWithError(c, fiber.StatusNotFound, appErr)
		}
	}

	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

// currentUserID reads the authenticated user set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	userID, _ := c.Locals("userID").(uint)
	return userID
}

// parsePostFilter translates listing query parameters into a PostFilter.
// Date bounds accept RFC 3339 timestamps or bare dates.
func parsePostFilter(c *fiber.Ctx) (repository.PostFilter, error) {
	filter := repository.PostFilter{
		User:     c.Query("user"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}

	if raw := c.Query("safe"); raw != "" {
		switch strings.ToLower(raw) {
		case "true", "1", "yes":
			v := true
			filter.Safe = &v
		case "false", "0", "no":
			v := false
			filter.Safe = &v
		default:
			return filter, models.NewValidationError("safe must be true or false")
		}
	}

	if raw := c.Query("created_at_after"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			return filter, models.NewValidationError("created_at_after must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		filter.CreatedAfter = &t
	}
	if raw := c.Query("created_at_before"); raw != "" {
		t, err := parseDateParam(raw)
		if err != nil {
			return filter, models.NewValidationError("created_at_before must be an RFC 3339 timestamp or YYYY-MM-DD date")
		}
		filter.CreatedBefore = &t
	}

	return filter, nil
}

func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
