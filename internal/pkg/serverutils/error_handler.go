package serverutils

import (
	"encoding/json"
	"errors"

	"marketing-assistant-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware renders errors returned by handlers as BaseResponse JSON.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		code := StatusCode(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

// StatusCode maps an error to its HTTP status.
func StatusCode(err error) int {
	var (
		validationErr *ValidationError
		fiberErr      *fiber.Error
		syntaxErr     *json.SyntaxError
		typeErr       *json.UnmarshalTypeError
	)

	switch {
	case errors.As(err, &validationErr), apperror.IsInputError(err):
		return fiber.StatusBadRequest
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return fiber.StatusBadRequest
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	default:
		return fiber.StatusInternalServerError
	}
}
