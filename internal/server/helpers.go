package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"

	"blogapi/internal/featureflags"
	"blogapi/internal/middleware"
	"blogapi/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter as a positive uint. On failure it writes
// a 400 and returns errResponseWritten; callers should `return nil`.
func parseID(c *fiber.Ctx, param, resource string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, "",
			models.NewValidationError("Invalid "+resource+" ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseBody decodes a JSON object into dst. A missing, empty or non-object
// body gets "No data provided"; a field of the wrong JSON type gets a
// field-keyed validation error.
func parseBody(c *fiber.Ctx, dst any) error {
	raw := bytes.TrimSpace(c.Body())

	var fields map[string]json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &fields) != nil || len(fields) == 0 {
		_ = c.Status(fiber.StatusBadRequest).JSON(models.Response{
			Message: "No data provided",
			Errors:  map[string]string{"request": "JSON data required"},
		})
		return errResponseWritten
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		field := "request"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field = typeErr.Field
		}
		_ = models.RespondWithError(c, fiber.StatusBadRequest, "",
			models.NewFieldValidationError(map[string]string{field: "Not a valid " + jsonKind(typeErr) + "."}))
		return errResponseWritten
	}
	return nil
}

func jsonKind(err *json.UnmarshalTypeError) string {
	if err == nil || err.Type == nil {
		return "value"
	}
	switch err.Type.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int64, reflect.Uint, reflect.Uint64:
		return "integer"
	default:
		return "value"
	}
}

// respondError writes err with the status matching its code. message
// overrides the envelope message for non-internal errors.
func respondError(c *fiber.Ctx, message string, err error) error {
	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		if !errors.As(err, new(*models.AppError)) {
			middleware.Logger.ErrorContext(c.UserContext(), "request failed",
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
		}
		message = ""
	}
	return models.RespondWithError(c, appErr.Status(), message, appErr)
}

// respondPage writes a list envelope with pagination metadata. Nil slices
// render as [].
func respondPage[T any](c *fiber.Ctx, message string, items []T, page, perPage int, total int64) error {
	if items == nil {
		items = []T{}
	}
	return models.RespondPage(c, message, items, models.NewPagination(page, perPage, total))
}

// requestUserID returns the authenticated user's ID, or 0 for anonymous
// requests.
func requestUserID(c *fiber.Ctx) uint {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.ID
	}
	return 0
}

// writeGuard rejects mutating requests with 503 while read-only mode is on.
func (s *Server) writeGuard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if s.featureFlags.Enabled(featureflags.ReadOnly, requestUserID(c)) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.Response{
				Message: "Service is in read-only mode",
				Errors:  map[string]string{"service": "Write operations are temporarily disabled"},
			})
		}
		return c.Next()
	}
}

// featureGate returns 503 when the named flag is off for the caller.
func (s *Server) featureGate(flag string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.featureFlags.Enabled(flag, requestUserID(c)) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.Response{
				Message: "Feature unavailable",
				Errors:  map[string]string{flag: "This feature is currently disabled"},
			})
		}
		return c.Next()
	}
}
