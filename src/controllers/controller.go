package controllers

import (
	"context"
	"strings"
	"time"

	"Backend-GACP-Survey/src/models"
	"Backend-GACP-Survey/src/utils"

	"github.com/gofiber/fiber/v2"
)

const requestTimeout = 5 * time.Second

func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), requestTimeout)
}

// parseBody คืน false เมื่อ body ไม่ถูกต้อง (ตอบ 400 ไปแล้ว)
func parseBody(c *fiber.Ctx, out interface{}) bool {
	if err := c.BodyParser(out); err != nil {
		_ = utils.HandleError(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}

func parsePagination(c *fiber.Ctx) (models.PaginationParams, bool) {
	params := models.DefaultPagination()
	if err := c.QueryParser(&params); err != nil {
		_ = utils.HandleError(c, fiber.StatusBadRequest, "Invalid query parameters: "+err.Error())
		return params, false
	}
	params.Status = strings.ToUpper(strings.TrimSpace(params.Status))
	return params, true
}

func isAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals("role").(string)
	return strings.EqualFold(role, "admin")
}
