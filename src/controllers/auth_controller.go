package controllers

import (
	"log/slog"
	"time"

	"Backend-GACP-Survey/src/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	blacklist *utils.TokenBlacklist
	log       *slog.Logger
}

func NewAuthController(blacklist *utils.TokenBlacklist, logger *slog.Logger) *AuthController {
	return &AuthController{blacklist: blacklist, log: logger}
}

// LogoutUser godoc
// @Summary      Revoke the current token
// @Description  token ที่ logout แล้วจะใช้ไม่ได้จนกว่าจะหมดอายุ (ต้องเปิดใช้ Redis)
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200
// @Failure      503  {object}  models.ErrorResponse
// @Router       /auth/logout [post]
func (h *AuthController) LogoutUser(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	claims, _ := c.Locals("claims").(*utils.JWTClaims)
	if token == "" || claims == nil {
		return utils.HandleError(c, fiber.StatusUnauthorized, "User not authenticated")
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.blacklist.Add(ctx, token, claims.RemainingTTL()); err != nil {
		h.log.Error("❌ Failed to revoke token", "userId", claims.UserID, "error", err)
		return utils.HandleError(c, fiber.StatusServiceUnavailable, "ไม่สามารถออกจากระบบได้ในขณะนี้")
	}

	h.log.Info("user logged out", "userId", claims.UserID, "ip", c.IP())
	return c.JSON(fiber.Map{
		"message":   "Logout successful",
		"success":   true,
		"timestamp": time.Now(),
	})
}
