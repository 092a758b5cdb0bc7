package controllers

import (
	"context"

	"Backend-GACP-Survey/src/middleware"
	"Backend-GACP-Survey/src/models"
	"Backend-GACP-Survey/src/services/responses"
	"Backend-GACP-Survey/src/utils"

	"github.com/gofiber/fiber/v2"
)

type ResponseController struct {
	responses *responses.Service
}

func NewResponseController(r *responses.Service) *ResponseController {
	return &ResponseController{responses: r}
}

// authorize ผู้ตอบเข้าถึงได้เฉพาะคำตอบของตัวเอง ผู้ดูแลเข้าถึงได้ทั้งหมด
// คืน false เมื่อตอบ error กลับไปแล้ว
func (h *ResponseController) authorize(ctx context.Context, c *fiber.Ctx) (*models.SurveyResponse, bool) {
	response, err := h.responses.Get(ctx, c.Params("id"))
	if err != nil {
		_ = utils.HandleServiceError(c, err)
		return nil, false
	}
	if !isAdmin(c) && response.RespondentID != middleware.UserID(c) {
		_ = utils.HandleError(c, fiber.StatusForbidden, "ไม่มีสิทธิ์เข้าถึงคำตอบนี้")
		return nil, false
	}
	return response, true
}

// StartResponse godoc
// @Summary      Start answering a survey
// @Tags         responses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body models.StartResponseRequest true "Survey to answer"
// @Success      201  {object}  models.SurveyResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /responses [post]
func (h *ResponseController) StartResponse(c *fiber.Ctx) error {
	var req models.StartResponseRequest
	if !parseBody(c, &req) {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	response, err := h.responses.Start(ctx, req, middleware.UserID(c))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(response)
}

// GetResponse godoc
// @Summary      Get a survey response
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Response ID"
// @Success      200  {object}  models.SurveyResponse
// @Failure      403  {object}  models.ErrorResponse
// @Failure      404  {object}  models.ErrorResponse
// @Router       /responses/{id} [get]
func (h *ResponseController) GetResponse(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	response, ok := h.authorize(ctx, c)
	if !ok {
		return nil
	}
	return c.JSON(response)
}

// RecordAnswer godoc
// @Summary      Record (or replace) the answer to one question
// @Tags         responses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id         path string             true "Response ID"
// @Param        questionId path string             true "Question ID"
// @Param        body       body models.AnswerInput true "Answer"
// @Success      200  {object}  models.SurveyResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /responses/{id}/answers/{questionId} [put]
func (h *ResponseController) RecordAnswer(c *fiber.Ctx) error {
	var input models.AnswerInput
	if !parseBody(c, &input) {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if _, ok := h.authorize(ctx, c); !ok {
		return nil
	}

	response, warnings, err := h.responses.RecordAnswer(ctx, c.Params("id"), c.Params("questionId"), input)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"data":     response,
		"warnings": warnings,
	})
}

// CompleteResponse godoc
// @Summary      Complete and score a response
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Response ID"
// @Success      200  {object}  models.SurveyResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /responses/{id}/complete [post]
func (h *ResponseController) CompleteResponse(c *fiber.Ctx) error {
	return h.transition(c, h.responses.Complete)
}

// SubmitResponse godoc
// @Summary      Submit a completed response
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Response ID"
// @Success      200  {object}  models.SurveyResponse
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /responses/{id}/submit [post]
func (h *ResponseController) SubmitResponse(c *fiber.Ctx) error {
	return h.transition(c, h.responses.Submit)
}

// PauseResponse godoc
// @Summary      Close the current answering session
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Response ID"
// @Success      200  {object}  models.SurveyResponse
// @Router       /responses/{id}/pause [post]
func (h *ResponseController) PauseResponse(c *fiber.Ctx) error {
	return h.transition(c, h.responses.Pause)
}

// ResumeResponse godoc
// @Summary      Open a new answering session
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Response ID"
// @Success      200  {object}  models.SurveyResponse
// @Router       /responses/{id}/resume [post]
func (h *ResponseController) ResumeResponse(c *fiber.Ctx) error {
	return h.transition(c, h.responses.Resume)
}

func (h *ResponseController) transition(c *fiber.Ctx, fn func(ctx context.Context, responseID string) (*models.SurveyResponse, error)) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if _, ok := h.authorize(ctx, c); !ok {
		return nil
	}

	response, err := fn(ctx, c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(response)
}

// ReviewResponse godoc
// @Summary      Mark a submitted response as reviewed
// @Tags         responses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string              true "Response ID"
// @Param        body body models.ReviewRequest true "Review notes"
// @Success      200  {object}  models.SurveyResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /responses/{id}/review [post]
func (h *ResponseController) ReviewResponse(c *fiber.Ctx) error {
	var req models.ReviewRequest
	if !parseBody(c, &req) {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	response, err := h.responses.Review(ctx, c.Params("id"), middleware.UserID(c), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(response)
}

// GetProgress godoc
// @Summary      Progress report of a response
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Response ID"
// @Success      200  {object}  models.ProgressReport
// @Router       /responses/{id}/progress [get]
func (h *ResponseController) GetProgress(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if _, ok := h.authorize(ctx, c); !ok {
		return nil
	}

	report, err := h.responses.Progress(ctx, c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(report)
}

// GetMetrics godoc
// @Summary      Answering statistics of a response
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Response ID"
// @Success      200  {object}  models.ResponseMetrics
// @Router       /responses/{id}/metrics [get]
func (h *ResponseController) GetMetrics(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	if _, ok := h.authorize(ctx, c); !ok {
		return nil
	}

	m, err := h.responses.Metrics(ctx, c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(m)
}

// ListRespondentResponses godoc
// @Summary      List responses of a respondent
// @Tags         responses
// @Produce      json
// @Security     BearerAuth
// @Param        respondentId path  string true  "Respondent ID"
// @Param        page         query int    false "Page"
// @Param        limit        query int    false "Limit"
// @Param        status       query string false "Response status"
// @Success      200  {object}  models.PaginatedResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /respondents/{respondentId}/responses [get]
func (h *ResponseController) ListRespondentResponses(c *fiber.Ctx) error {
	respondentID := c.Params("respondentId")
	if !isAdmin(c) && respondentID != middleware.UserID(c) {
		return utils.HandleError(c, fiber.StatusForbidden, "ไม่มีสิทธิ์เข้าถึงคำตอบของผู้ใช้นี้")
	}
	params, ok := parsePagination(c)
	if !ok {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.responses.ListByRespondent(ctx, respondentID, params)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(page)
}
