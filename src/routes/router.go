package routes

import (
	"Backend-GACP-Survey/src/controllers"
	"Backend-GACP-Survey/src/metrics"
	"Backend-GACP-Survey/src/middleware"
	"Backend-GACP-Survey/src/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// Container รวม controller และ dependency ที่ route ต้องใช้
type Container struct {
	JWTSecret string
	Blacklist *utils.TokenBlacklist
	Metrics   *metrics.Metrics
	Surveys   *controllers.SurveyController
	Responses *controllers.ResponseController
	Auth      *controllers.AuthController
}

func InitRoutes(app *fiber.App, ct Container) {
	auth := middleware.AuthJWT(ct.JWTSecret, ct.Blacklist)

	authRoutes(app, ct, auth)
	surveyRoutes(app, ct, auth)
	responseRoutes(app, ct, auth)

	app.Get("/metrics", ct.Metrics.Handler())
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Route เช็คว่า API ทำงานอยู่
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("✅ API is running...")
	})
}
