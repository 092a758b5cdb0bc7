// error_utils.go
package utils

import (
	"errors"
	"log/slog"

	"Backend-GACP-Survey/src/models"

	"github.com/gofiber/fiber/v2"
)

func HandleError(c *fiber.Ctx, status int, message string, details ...string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Status:  status,
		Message: message,
		Details: details,
	})
}

// HandleServiceError แปลง error จาก service เป็น HTTP status ที่เหมาะสม
func HandleServiceError(c *fiber.Ctx, err error) error {
	var ve *models.ValidationError
	var se *models.StateTransitionError
	switch {
	case errors.As(err, &ve):
		return HandleError(c, fiber.StatusBadRequest, "ข้อมูลไม่ถูกต้อง", ve.Messages...)
	case errors.As(err, &se):
		return HandleError(c, fiber.StatusConflict, se.Message, "action="+se.Action, "status="+se.Current)
	case errors.Is(err, models.ErrNotFound):
		return HandleError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrRevisionConflict):
		return HandleError(c, fiber.StatusConflict, err.Error())
	}
	slog.Error("unhandled service error", "path", c.Path(), "error", err)
	return HandleError(c, fiber.StatusInternalServerError, "เกิดข้อผิดพลาดภายในระบบ")
}
