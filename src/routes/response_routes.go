package routes

import (
	"Backend-GACP-Survey/src/middleware"

	"github.com/gofiber/fiber/v2"
)

func responseRoutes(app *fiber.App, ct Container, auth fiber.Handler) {
	h := ct.Responses

	responses := app.Group("/responses", auth)
	responses.Post("/", h.StartResponse)
	responses.Get("/:id", h.GetResponse)
	responses.Put("/:id/answers/:questionId", h.RecordAnswer)
	responses.Post("/:id/complete", h.CompleteResponse)
	responses.Post("/:id/submit", h.SubmitResponse)
	responses.Post("/:id/review", middleware.RequireRole("admin"), h.ReviewResponse)
	responses.Post("/:id/pause", h.PauseResponse)
	responses.Post("/:id/resume", h.ResumeResponse)
	responses.Get("/:id/progress", h.GetProgress)
	responses.Get("/:id/metrics", h.GetMetrics)

	app.Get("/respondents/:respondentId/responses", auth, h.ListRespondentResponses)
}
