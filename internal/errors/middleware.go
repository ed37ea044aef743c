package errors

import (
	"errors"

	"github.com/Behyna/subscription-engine/internal/api/contract"
	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, logger, serviceErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(contract.Response{
				Code:    constants.ErrCodeInternalError,
				Message: fiberErr.Message,
				TrackID: contract.TrackID(c),
			})
		}

		logger.Error("Unhandled request error",
			zap.String("path", c.Path()),
			zap.String("track_id", contract.TrackID(c)),
			zap.Error(err),
		)

		return c.Status(fiber.StatusInternalServerError).JSON(contract.Response{
			Code:    constants.ErrCodeInternalError,
			Message: constants.GetErrorMessage(constants.ErrCodeInternalError),
			TrackID: contract.TrackID(c),
		})
	}
}

func handleServiceError(c *fiber.Ctx, logger *zap.Logger, err service.Error) error {
	code := err.Code
	if !constants.IsKnownCode(code) {
		code = constants.ErrCodeInternalError
	}

	status := constants.GetHTTPStatus(code)
	if status >= fiber.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("code", err.Code),
			zap.String("path", c.Path()),
			zap.String("track_id", contract.TrackID(c)),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(contract.Response{
		Code:    code,
		Message: constants.GetErrorMessage(code),
		TrackID: contract.TrackID(c),
	})
}
