package server

import (
	"errors"
	"log/slog"
	"strings"
	"unicode"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/pagination"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const defaultPageSize = 5

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
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
// Examples: "id" -> "ID", "postId" -> "post ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		words := splitCamel(param[:len(param)-2])
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	return append(words, s[start:])
}

// parsePagination reads page and results_per_page. Values below 1 fall back
// to the first page and the configured default size.
func (s *Server) parsePagination(c *fiber.Ctx) (page, size int) {
	def := s.config.DefaultPageSize
	if def <= 0 {
		def = defaultPageSize
	}
	return pagination.Normalize(
		c.QueryInt("page", 1),
		c.QueryInt("results_per_page", def),
		def,
		s.config.MaxPageSize,
	)
}

// currentUserID returns the caller set by AuthRequired.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := middleware.UserID(c)
	return id
}

// respondError maps err to its HTTP status and writes the error body.
// Internal failure details are hidden in production.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	status := models.StatusForCode(models.ErrorCode(err))
	if status == fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		var appErr *models.AppError
		switch {
		case s.config.IsProduction():
			err = models.NewInternalError(errors.New("an unexpected error occurred"))
		case !errors.As(err, &appErr):
			err = models.NewInternalError(err)
		}
	}
	return models.RespondWithError(c, status, err)
}
