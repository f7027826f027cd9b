package serverutils

import (
	"errors"

	"ai-writepad-be/pkg/provider"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts errors bubbling out of controllers into the
// uniform {success:false, error} envelope, preserving provider error
// semantics in the status code.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		return ctx.Status(statusFor(err)).JSON(Fail(err.Error()))
	}
}

func statusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}

	var (
		cfgErr  *provider.ConfigError
		authErr *provider.AuthError
		upErr   *provider.UpstreamHTTPError
		connErr *provider.ConnectionError
		toErr   *provider.TimeoutError
	)
	switch {
	case errors.As(err, &cfgErr):
		return fiber.StatusBadRequest
	case errors.As(err, &authErr):
		return fiber.StatusUnauthorized
	case errors.As(err, &upErr):
		return fiber.StatusBadGateway
	case errors.As(err, &connErr), errors.As(err, &toErr):
		return fiber.StatusBadGateway
	case errors.Is(err, provider.ErrAllProvidersFailed):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}
