package surveys

import (
	"context"
	"errors"
	"log/slog"

	"Backend-GACP-Survey/src/metrics"
	"Backend-GACP-Survey/src/models"
)

// maxUpdateAttempts จำนวนครั้งที่ลองใหม่เมื่อ revision ชนกัน
const maxUpdateAttempts = 3

type Service struct {
	repo    Repository
	cache   Cache
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewService(repo Repository, cache Cache, m *metrics.Metrics, logger *slog.Logger) *Service {
	if cache == nil {
		cache = NewRedisCache(nil, 0, logger)
	}
	return &Service{repo: repo, cache: cache, metrics: m, log: logger}
}

// Create สร้างแบบประเมินสถานะร่าง พร้อมหมวดเริ่มต้น (ถ้ามี)
func (s *Service) Create(ctx context.Context, req models.CreateSurveyRequest, createdBy string) (*models.Survey, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	survey, err := models.NewSurvey(req.Title, req.Description, req.Version, req.GACPStandard, req.PassingScore, createdBy)
	if err != nil {
		return nil, err
	}
	for _, sec := range req.Sections {
		if _, err := survey.AddSection(sec); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, survey); err != nil {
		return nil, err
	}
	s.metrics.SurveyMutation("create")
	s.log.Info("survey created", "surveyId", survey.SurveyID, "sections", len(survey.Sections), "createdBy", createdBy)
	return survey, nil
}

// Get อ่านจาก cache ก่อน ถ้าไม่มีจึงอ่านจากฐานข้อมูลแล้วเก็บลง cache
func (s *Service) Get(ctx context.Context, surveyID string) (*models.Survey, error) {
	if survey, ok := s.cache.Get(ctx, surveyID); ok {
		s.metrics.CacheLookup(true)
		return survey, nil
	}
	s.metrics.CacheLookup(false)

	survey, err := s.repo.FindByID(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, survey)
	return survey, nil
}

func (s *Service) List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse, error) {
	params.Normalize(sortableFields...)
	surveys, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return models.NewPaginatedResponse(surveys, total, params), nil
}

func (s *Service) AddSection(ctx context.Context, surveyID string, section models.Section) (*models.Section, error) {
	var added models.Section
	_, err := s.mutate(ctx, surveyID, "add_section", func(survey *models.Survey) error {
		sec, err := survey.AddSection(section)
		if err != nil {
			return err
		}
		added = *sec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func (s *Service) AddQuestion(ctx context.Context, surveyID, sectionID string, question models.Question) (*models.Question, error) {
	var added models.Question
	_, err := s.mutate(ctx, surveyID, "add_question", func(survey *models.Survey) error {
		q, err := survey.AddQuestion(sectionID, question)
		if err != nil {
			return err
		}
		added = *q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

func (s *Service) Activate(ctx context.Context, surveyID string) (*models.Survey, error) {
	return s.mutate(ctx, surveyID, "activate", (*models.Survey).Activate)
}

func (s *Service) Deactivate(ctx context.Context, surveyID string) (*models.Survey, error) {
	return s.mutate(ctx, surveyID, "deactivate", (*models.Survey).Deactivate)
}

func (s *Service) Archive(ctx context.Context, surveyID string) (*models.Survey, error) {
	return s.mutate(ctx, surveyID, "archive", (*models.Survey).Archive)
}

func (s *Service) Validate(ctx context.Context, surveyID string) (*models.SurveyValidationResult, error) {
	survey, err := s.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	result := survey.ValidateSurveyCompletion()
	return &result, nil
}

// Score คิดคะแนนชุดคำตอบโดยไม่บันทึก
func (s *Service) Score(ctx context.Context, surveyID string, req models.ScoreRequest) (*models.ScoringResult, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	survey, err := s.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return survey.CalculateResponseScore(req.Responses)
}

func (s *Service) Report(ctx context.Context, surveyID string, req models.ScoreRequest) (*models.SurveyReport, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	survey, err := s.Get(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	return survey.GenerateSurveyReport(req.Responses)
}

// mutate อ่านฉบับล่าสุดจากฐานข้อมูล แก้ไข แล้วบันทึกแบบ compare-and-swap
func (s *Service) mutate(ctx context.Context, surveyID, action string, fn func(*models.Survey) error) (*models.Survey, error) {
	var lastErr error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		survey, err := s.repo.FindByID(ctx, surveyID)
		if err != nil {
			return nil, err
		}
		if err := fn(survey); err != nil {
			return nil, err
		}
		err = s.repo.Update(ctx, survey)
		if err == nil {
			s.cache.Invalidate(ctx, surveyID, survey.Revision)
			s.metrics.SurveyMutation(action)
			s.log.Info("survey updated", "surveyId", surveyID, "action", action, "revision", survey.Revision)
			return survey, nil
		}
		if !errors.Is(err, models.ErrRevisionConflict) {
			return nil, err
		}
		lastErr = err
		s.log.Warn("survey revision conflict, retrying", "surveyId", surveyID, "action", action, "attempt", attempt+1)
	}
	return nil, lastErr
}
