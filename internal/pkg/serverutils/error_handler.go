package serverutils

import (
	"errors"

	"assembly-rag-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
)

// StatusForKind maps a classified error kind to its HTTP status.
func StatusForKind(kind string) int {
	switch kind {
	case rag.KindInvalidQuery:
		return fiber.StatusBadRequest
	case rag.KindStoreUnavailable, rag.KindModelUnavailable, rag.KindMalformedResponse:
		return fiber.StatusServiceUnavailable
	case rag.KindNoContext:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandlerMiddleware turns errors bubbling out of handlers into the
// uniform error envelope. Handler-level fiber errors keep their status when
// the error carries no domain classification.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		kind := rag.Kind(err)
		status := StatusForKind(kind)

		var fiberErr *fiber.Error
		if kind == rag.KindInternal && errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}

		return c.Status(status).JSON(ErrorResponse(kind, err.Error()))
	}
}
