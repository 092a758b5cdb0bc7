package routes

import (
	"github.com/gofiber/fiber/v2"
)

func authRoutes(app *fiber.App, ct Container, auth fiber.Handler) {
	authGroup := app.Group("/auth")
	authGroup.Post("/logout", auth, ct.Auth.LogoutUser)
}
