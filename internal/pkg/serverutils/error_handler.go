package serverutils

import (
	"errors"

	"cortex-ai-be/internal/pkg/logger"
	"cortex-ai-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

var kindStatus = map[apperror.Kind]int{
	apperror.KindUnauthenticated:    fiber.StatusUnauthorized,
	apperror.KindNotFound:           fiber.StatusNotFound,
	apperror.KindValidation:         fiber.StatusBadRequest,
	apperror.KindUpstreamGeneration: fiber.StatusBadGateway,
	apperror.KindRateLimited:        fiber.StatusTooManyRequests,
	apperror.KindDuplicateReference: fiber.StatusConflict,
}

// StatusOf maps an error returned by a handler to its HTTP status.
func StatusOf(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	if status, ok := kindStatus[apperror.KindOf(err)]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

// ErrorHandlerMiddleware renders errors returned further down the chain as the
// standard response envelope. Internal errors are logged and their text hidden.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := StatusOf(err)

		var appErr *apperror.Error
		switch {
		case errors.As(err, &appErr):
			if status >= fiber.StatusInternalServerError {
				log.Error("HTTP", appErr.Message, map[string]interface{}{
					"path":   ctx.Path(),
					"method": ctx.Method(),
					"kind":   appErr.Kind,
					"error":  err.Error(),
				})
			}
			if len(appErr.Details) > 0 {
				return ctx.Status(status).JSON(ErrorResponseWithDetails(status, appErr.Message, appErr.Details))
			}
			return ctx.Status(status).JSON(ErrorResponse(status, appErr.Message))
		case status != fiber.StatusInternalServerError:
			return ctx.Status(status).JSON(ErrorResponse(status, err.Error()))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":   ctx.Path(),
			"method": ctx.Method(),
			"error":  err.Error(),
		})
		return ctx.Status(status).JSON(ErrorResponse(status, "internal server error"))
	}
}
