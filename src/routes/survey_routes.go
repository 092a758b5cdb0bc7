package routes

import (
	"Backend-GACP-Survey/src/middleware"

	"github.com/gofiber/fiber/v2"
)

// surveyRoutes แก้ไขและคิดคะแนนได้เฉพาะ admin ผู้ตอบอ่านได้แต่ไม่เห็นเฉลย
func surveyRoutes(app *fiber.App, ct Container, auth fiber.Handler) {
	h := ct.Surveys
	admin := middleware.RequireRole("admin")

	surveys := app.Group("/surveys", auth)
	surveys.Get("/", h.ListSurveys)
	surveys.Post("/", admin, h.CreateSurvey)
	surveys.Get("/:id", h.GetSurvey)
	surveys.Post("/:id/sections", admin, h.AddSection)
	surveys.Post("/:id/sections/:sectionId/questions", admin, h.AddQuestion)
	surveys.Post("/:id/activate", admin, h.ActivateSurvey)
	surveys.Post("/:id/deactivate", admin, h.DeactivateSurvey)
	surveys.Post("/:id/archive", admin, h.ArchiveSurvey)
	surveys.Get("/:id/validation", h.ValidateSurvey)
	surveys.Post("/:id/score", admin, h.ScoreSurvey)
	surveys.Post("/:id/report", admin, h.ReportSurvey)
	surveys.Get("/:id/summary", admin, h.GetSurveySummary)
	surveys.Get("/:id/responses", admin, h.ListSurveyResponses)
}
