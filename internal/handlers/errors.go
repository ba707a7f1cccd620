package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/interview-prep/internal/models"
	"alfredoptarigan/interview-prep/internal/services"
)

// StatusFor maps an error to the HTTP status the caller sees. Only
// extraction and input errors keep their own status; everything else is 500.
func StatusFor(err error) int {
	switch services.KindOf(err) {
	case services.KindEmptyInput:
		return fiber.StatusBadRequest
	case services.KindPayloadTooLarge:
		return fiber.StatusRequestEntityTooLarge
	case services.KindUnsupportedFileType:
		return fiber.StatusUnsupportedMediaType
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes the JSON error body. prefix is prepended to the detail
// of 500 responses so the caller can tell which operation failed.
func respondError(c *fiber.Ctx, prefix string, err error) error {
	status := StatusFor(err)
	detail := err.Error()
	if status == fiber.StatusInternalServerError && prefix != "" {
		detail = prefix + ": " + detail
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Detail: detail,
		Error:  string(services.KindOf(err)),
	})
}

// ErrorHandler renders errors that escape a handler, including fiber's own
// (body limit, unknown route, recovered panics).
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := string(services.KindInternal)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		kind = fiberErrorKind(code)
	}

	return c.Status(code).JSON(models.ErrorResponse{
		Detail: err.Error(),
		Error:  kind,
	})
}

func fiberErrorKind(code int) string {
	switch code {
	case fiber.StatusRequestEntityTooLarge:
		return string(services.KindPayloadTooLarge)
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusBadRequest:
		return "bad_request"
	default:
		return string(services.KindInternal)
	}
}
