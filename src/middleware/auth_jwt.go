package middleware

import (
	"strings"

	"Backend-GACP-Survey/src/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthJWT ตรวจ Bearer token แล้วเก็บข้อมูลผู้ใช้ไว้ใน c.Locals
// blacklist เป็น nil ได้ (ไม่ตรวจ token ที่ logout แล้ว)
func AuthJWT(secret string, blacklist *utils.TokenBlacklist) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing or invalid Authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseJWT(secret, tokenStr)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token", "detail": err.Error()})
		}

		revoked, err := blacklist.Contains(c.UserContext(), tokenStr)
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Unable to verify token"})
		}
		if revoked {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token has been revoked"})
		}

		c.Locals("userId", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)
		c.Locals("claims", claims)
		c.Locals("token", tokenStr)

		return c.Next()
	}
}

// RequireRole อนุญาตเฉพาะผู้ใช้ที่มี role ตามที่กำหนด (ใช้หลัง AuthJWT)
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if strings.EqualFold(r, role) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions"})
	}
}

// UserID อ่านรหัสผู้ใช้ที่ AuthJWT เก็บไว้
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals("userId").(string)
	return id
}
