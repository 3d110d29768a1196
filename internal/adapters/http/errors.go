package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/vertexgen/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int            `json:"status"`
	Code      string         `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string         `json:"message"` // Human-readable message
	RequestID string         `json:"request_id,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	return writeError(c, APIError{Status: status, Code: code, Message: message})
}

func writeError(c *fiber.Ctx, e APIError) error {
	e.RequestID, _ = c.Locals("requestid").(string)
	return c.Status(e.Status).JSON(e)
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "unavailable", msg)
}

// errPipeline maps service errors to responses. Errors caused by the input
// are 422 with the error kind as code; everything else is a server fault.
func errPipeline(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrRunNotFound):
		return errNotFound(c, "run not found")
	case errors.Is(err, domain.ErrHistoryDisabled):
		return errUnavailable(c, err.Error())
	}

	kind, ok := domain.KindOf(err)
	if !ok || !domain.IsCallerError(err) {
		LoggerFromCtx(c.UserContext()).Error("pipeline failed", "error", err)
		return errInternal(c, err.Error())
	}

	e := APIError{Status: 422, Code: string(kind), Message: err.Error()}
	var geomErr *domain.UnsupportedGeometryError
	if errors.As(err, &geomErr) {
		e.Details = map[string]any{"offending": geomErr.Offending}
	}
	var trErr *domain.TransformError
	if errors.As(err, &trErr) && trErr.Index >= 0 {
		e.Details = map[string]any{"index": trErr.Index, "x": trErr.X, "y": trErr.Y, "crs": trErr.CRS}
	}
	var optErr *domain.OptionsError
	if errors.As(err, &optErr) {
		e.Status = 400
		e.Details = map[string]any{"problems": optErr.Problems}
	}
	return writeError(c, e)
}
