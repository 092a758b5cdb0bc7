package controllers

import (
	"context"

	"Backend-GACP-Survey/src/middleware"
	"Backend-GACP-Survey/src/models"
	"Backend-GACP-Survey/src/services/responses"
	"Backend-GACP-Survey/src/services/summary"
	"Backend-GACP-Survey/src/services/surveys"
	"Backend-GACP-Survey/src/utils"

	"github.com/gofiber/fiber/v2"
)

type SurveyController struct {
	surveys   *surveys.Service
	responses *responses.Service
	summary   *summary.Service
}

func NewSurveyController(s *surveys.Service, r *responses.Service, sum *summary.Service) *SurveyController {
	return &SurveyController{surveys: s, responses: r, summary: sum}
}

// CreateSurvey godoc
// @Summary      Create a new survey
// @Description  สร้างแบบประเมินสถานะร่าง พร้อมหมวดและคำถามเริ่มต้น (ถ้ามี)
// @Tags         surveys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body models.CreateSurveyRequest true "Survey"
// @Success      201  {object}  models.Survey
// @Failure      400  {object}  models.ErrorResponse
// @Router       /surveys [post]
func (h *SurveyController) CreateSurvey(c *fiber.Ctx) error {
	var req models.CreateSurveyRequest
	if !parseBody(c, &req) {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	survey, err := h.surveys.Create(ctx, req, middleware.UserID(c))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Survey created successfully",
		"data":    survey,
	})
}

// ListSurveys godoc
// @Summary      List surveys
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        page   query int    false "Page"
// @Param        limit  query int    false "Limit"
// @Param        status query string false "DRAFT, ACTIVE, INACTIVE, ARCHIVED"
// @Param        sortBy query string false "createdAt, lastModified, title, status"
// @Param        order  query string false "asc, desc"
// @Success      200  {object}  models.PaginatedResponse
// @Router       /surveys [get]
func (h *SurveyController) ListSurveys(c *fiber.Ctx) error {
	params, ok := parsePagination(c)
	if !ok {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.surveys.List(ctx, params)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	if items, ok := page.Data.([]models.Survey); ok && !isAdmin(c) {
		views := make([]*models.Survey, len(items))
		for i := range items {
			views[i] = items[i].RespondentView()
		}
		page.Data = views
	}
	return c.JSON(page)
}

// GetSurvey godoc
// @Summary      Get a survey by ID
// @Description  ผู้ที่ไม่ใช่ admin จะไม่เห็นเฉลยและค่าเป้าหมายของคำถาม
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Survey ID"
// @Success      200  {object}  models.Survey
// @Failure      404  {object}  models.ErrorResponse
// @Router       /surveys/{id} [get]
func (h *SurveyController) GetSurvey(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	survey, err := h.surveys.Get(ctx, c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	if !isAdmin(c) {
		survey = survey.RespondentView()
	}
	return c.JSON(survey)
}

// AddSection godoc
// @Summary      Add a section to a draft survey
// @Tags         surveys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string         true "Survey ID"
// @Param        body body models.Section true "Section"
// @Success      201  {object}  models.Section
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /surveys/{id}/sections [post]
func (h *SurveyController) AddSection(c *fiber.Ctx) error {
	var section models.Section
	if !parseBody(c, &section) {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	added, err := h.surveys.AddSection(ctx, c.Params("id"), section)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(added)
}

// AddQuestion godoc
// @Summary      Add a question to a section
// @Tags         surveys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path string          true "Survey ID"
// @Param        sectionId path string          true "Section ID"
// @Param        body      body models.Question true "Question"
// @Success      201  {object}  models.Question
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /surveys/{id}/sections/{sectionId}/questions [post]
func (h *SurveyController) AddQuestion(c *fiber.Ctx) error {
	var question models.Question
	if !parseBody(c, &question) {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	added, err := h.surveys.AddQuestion(ctx, c.Params("id"), c.Params("sectionId"), question)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(added)
}

// ActivateSurvey godoc
// @Summary      Activate a survey
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Survey ID"
// @Success      200  {object}  models.Survey
// @Failure      400  {object}  models.ErrorResponse
// @Failure      409  {object}  models.ErrorResponse
// @Router       /surveys/{id}/activate [post]
func (h *SurveyController) ActivateSurvey(c *fiber.Ctx) error {
	return h.transition(c, h.surveys.Activate)
}

// DeactivateSurvey godoc
// @Summary      Deactivate a survey
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Survey ID"
// @Success      200  {object}  models.Survey
// @Failure      409  {object}  models.ErrorResponse
// @Router       /surveys/{id}/deactivate [post]
func (h *SurveyController) DeactivateSurvey(c *fiber.Ctx) error {
	return h.transition(c, h.surveys.Deactivate)
}

// ArchiveSurvey godoc
// @Summary      Archive a survey
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Survey ID"
// @Success      200  {object}  models.Survey
// @Failure      409  {object}  models.ErrorResponse
// @Router       /surveys/{id}/archive [post]
func (h *SurveyController) ArchiveSurvey(c *fiber.Ctx) error {
	return h.transition(c, h.surveys.Archive)
}

func (h *SurveyController) transition(c *fiber.Ctx, fn func(ctx context.Context, surveyID string) (*models.Survey, error)) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	survey, err := fn(ctx, c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(survey)
}

// ValidateSurvey godoc
// @Summary      Validate survey structure
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Survey ID"
// @Success      200  {object}  models.SurveyValidationResult
// @Router       /surveys/{id}/validation [get]
func (h *SurveyController) ValidateSurvey(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.surveys.Validate(ctx, c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(result)
}

// ScoreSurvey godoc
// @Summary      Score a set of answers without saving
// @Tags         surveys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string             true "Survey ID"
// @Param        body body models.ScoreRequest true "Answers"
// @Success      200  {object}  models.ScoringResult
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /surveys/{id}/score [post]
func (h *SurveyController) ScoreSurvey(c *fiber.Ctx) error {
	var req models.ScoreRequest
	if !parseBody(c, &req) {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.surveys.Score(ctx, c.Params("id"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(result)
}

// ReportSurvey godoc
// @Summary      Build a compliance report for a set of answers
// @Tags         surveys
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string             true "Survey ID"
// @Param        body body models.ScoreRequest true "Answers"
// @Success      200  {object}  models.SurveyReport
// @Failure      400  {object}  models.ErrorResponse
// @Failure      403  {object}  models.ErrorResponse
// @Router       /surveys/{id}/report [post]
func (h *SurveyController) ReportSurvey(c *fiber.Ctx) error {
	var req models.ScoreRequest
	if !parseBody(c, &req) {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	report, err := h.surveys.Report(ctx, c.Params("id"), req)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(report)
}

// GetSurveySummary godoc
// @Summary      Response statistics of a survey
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Survey ID"
// @Success      200  {object}  models.SurveySummary
// @Failure      404  {object}  models.ErrorResponse
// @Router       /surveys/{id}/summary [get]
func (h *SurveyController) GetSurveySummary(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.summary.SurveySummary(ctx, c.Params("id"))
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(result)
}

// ListSurveyResponses godoc
// @Summary      List responses of a survey
// @Tags         surveys
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  string true  "Survey ID"
// @Param        page   query int    false "Page"
// @Param        limit  query int    false "Limit"
// @Param        status query string false "Response status"
// @Success      200  {object}  models.PaginatedResponse
// @Router       /surveys/{id}/responses [get]
func (h *SurveyController) ListSurveyResponses(c *fiber.Ctx) error {
	params, ok := parsePagination(c)
	if !ok {
		return nil
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.responses.ListBySurvey(ctx, c.Params("id"), params)
	if err != nil {
		return utils.HandleServiceError(c, err)
	}
	return c.JSON(page)
}
