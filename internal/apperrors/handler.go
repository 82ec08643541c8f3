package apperrors

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ErrorHandler returns the central Fiber error handler. Every handler forwards
// failures here instead of shaping responses locally; unrecognized errors
// degrade to a generic 500 without leaking internals.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *AppError
		if errors.As(err, &appErr) {
			logger.WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"status": appErr.StatusCode,
			}).Warn(appErr.Message)

			body := fiber.Map{
				"status":  "error",
				"message": appErr.Message,
			}
			if appErr.Details != nil {
				body["details"] = appErr.Details
			}
			return c.Status(appErr.StatusCode).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"status":  "error",
				"message": fiberErr.Message,
			})
		}

		logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Method(),
			"path":   c.Path(),
		}).Error("Unhandled error")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong please try again",
		})
	}
}
