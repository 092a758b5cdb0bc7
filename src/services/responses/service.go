package responses

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"Backend-GACP-Survey/src/jobs"
	"Backend-GACP-Survey/src/metrics"
	"Backend-GACP-Survey/src/models"
)

const maxUpdateAttempts = 3

// SurveyReader อ่านนิยามแบบประเมิน (surveys.Service ใช้ได้)
type SurveyReader interface {
	Get(ctx context.Context, surveyID string) (*models.Survey, error)
}

// EventPublisher ส่งงานเบื้องหลังหลังจากส่งคำตอบแล้ว
type EventPublisher interface {
	PublishResponseSubmitted(ctx context.Context, payload jobs.ResponseSubmittedPayload) error
}

type Service struct {
	repo    Repository
	surveys SurveyReader
	events  EventPublisher
	cfg     models.ResponseConfig
	check   models.QualityCheck
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewService(repo Repository, surveys SurveyReader, events EventPublisher, cfg models.ResponseConfig, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		surveys: surveys,
		events:  events,
		cfg:     cfg,
		check:   models.DefaultQualityCheck,
		metrics: m,
		log:     logger,
	}
}

// WithQualityCheck เปลี่ยนเงื่อนไขตรวจคุณภาพก่อนส่งคำตอบ
func (s *Service) WithQualityCheck(check models.QualityCheck) *Service {
	s.check = check
	return s
}

// Start สร้างคำตอบใหม่และเริ่มทำทันที แบบประเมินต้องเปิดใช้งานอยู่
func (s *Service) Start(ctx context.Context, req models.StartResponseRequest, respondentID string) (*models.SurveyResponse, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	if respondentID == "" {
		return nil, models.NewValidationError("กรุณาระบุผู้ตอบแบบประเมิน")
	}
	survey, err := s.surveys.Get(ctx, req.SurveyID)
	if err != nil {
		return nil, err
	}
	if survey.Status != models.SurveyActive {
		return nil, models.NewStateTransitionError("startResponse", string(survey.Status), "แบบประเมินยังไม่เปิดใช้งาน")
	}

	response := models.NewSurveyResponse(survey.SurveyID, respondentID)
	if err := response.StartResponse(survey); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, response); err != nil {
		return nil, err
	}
	s.metrics.ResponseEvent("started")
	s.log.Info("response started", "responseId", response.ResponseID, "surveyId", survey.SurveyID, "respondentId", respondentID)
	return response, nil
}

func (s *Service) Get(ctx context.Context, responseID string) (*models.SurveyResponse, error) {
	return s.repo.FindByID(ctx, responseID)
}

// RecordAnswer บันทึกคำตอบหนึ่งข้อ คืนคำตอบฉบับล่าสุดพร้อมคำเตือน
func (s *Service) RecordAnswer(ctx context.Context, responseID, questionID string, input models.AnswerInput) (*models.SurveyResponse, []string, error) {
	if err := models.ValidateStruct(input); err != nil {
		return nil, nil, err
	}
	current, err := s.repo.FindByID(ctx, responseID)
	if err != nil {
		return nil, nil, err
	}
	survey, err := s.surveys.Get(ctx, current.SurveyID)
	if err != nil {
		return nil, nil, err
	}
	info, _, ok := survey.FindQuestion(questionID)
	if !ok {
		return nil, nil, models.NewValidationError("ไม่พบคำถาม: " + questionID)
	}

	var warnings []string
	response, err := s.mutate(ctx, responseID, "answer_recorded", func(r *models.SurveyResponse) error {
		w, err := r.RecordAnswer(questionID, input, info)
		warnings = w
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return response, warnings, nil
}

// Complete ตรวจความครบถ้วนแล้วคิดคะแนน
func (s *Service) Complete(ctx context.Context, responseID string) (*models.SurveyResponse, error) {
	current, err := s.repo.FindByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	survey, err := s.surveys.Get(ctx, current.SurveyID)
	if err != nil {
		return nil, err
	}

	response, err := s.mutate(ctx, responseID, "completed", func(r *models.SurveyResponse) error {
		_, err := r.CompleteResponse(survey, s.cfg)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveScore(response.Scoring.Percentage)
	return response, nil
}

// Submit ส่งคำตอบขั้นสุดท้าย แล้วแจ้งงานเบื้องหลัง
// ถ้าส่งงานไม่สำเร็จจะบันทึก log เท่านั้น คำตอบยังถือว่าส่งแล้ว
func (s *Service) Submit(ctx context.Context, responseID string) (*models.SurveyResponse, error) {
	response, err := s.mutate(ctx, responseID, "submitted", func(r *models.SurveyResponse) error {
		return r.SubmitResponse(s.check)
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishResponseSubmitted(ctx, s.submittedPayload(ctx, response)); err != nil {
			s.log.Error("❌ Failed to enqueue response:submitted", "responseId", responseID, "error", err)
		}
	}
	return response, nil
}

func (s *Service) Review(ctx context.Context, responseID, reviewerID string, req models.ReviewRequest) (*models.SurveyResponse, error) {
	if err := models.ValidateStruct(req); err != nil {
		return nil, err
	}
	return s.mutate(ctx, responseID, "reviewed", func(r *models.SurveyResponse) error {
		return r.MarkReviewed(reviewerID, req.Notes)
	})
}

func (s *Service) Pause(ctx context.Context, responseID string) (*models.SurveyResponse, error) {
	return s.mutate(ctx, responseID, "paused", (*models.SurveyResponse).PauseSession)
}

func (s *Service) Resume(ctx context.Context, responseID string) (*models.SurveyResponse, error) {
	return s.mutate(ctx, responseID, "resumed", (*models.SurveyResponse).ResumeSession)
}

func (s *Service) Progress(ctx context.Context, responseID string) (*models.ProgressReport, error) {
	response, err := s.repo.FindByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	report := response.GenerateProgressReport()
	return &report, nil
}

func (s *Service) Metrics(ctx context.Context, responseID string) (*models.ResponseMetrics, error) {
	response, err := s.repo.FindByID(ctx, responseID)
	if err != nil {
		return nil, err
	}
	m := response.CalculateResponseMetrics()
	return &m, nil
}

func (s *Service) ListBySurvey(ctx context.Context, surveyID string, params models.PaginationParams) (*models.PaginatedResponse, error) {
	params.Normalize(sortableFields...)
	items, total, err := s.repo.ListBySurvey(ctx, surveyID, params)
	if err != nil {
		return nil, err
	}
	return models.NewPaginatedResponse(items, total, params), nil
}

func (s *Service) ListByRespondent(ctx context.Context, respondentID string, params models.PaginationParams) (*models.PaginatedResponse, error) {
	params.Normalize(sortableFields...)
	items, total, err := s.repo.ListByRespondent(ctx, respondentID, params)
	if err != nil {
		return nil, err
	}
	return models.NewPaginatedResponse(items, total, params), nil
}

func (s *Service) submittedPayload(ctx context.Context, r *models.SurveyResponse) jobs.ResponseSubmittedPayload {
	p := jobs.ResponseSubmittedPayload{
		ResponseID:          r.ResponseID,
		SurveyID:            r.SurveyID,
		RespondentID:        r.RespondentID,
		Passed:              r.Passed,
		Grade:               r.Grade,
		CertificateEligible: r.CertificateEligible,
		Warnings:            r.Warnings,
	}
	if r.Scoring != nil {
		p.Percentage = r.Scoring.Percentage
		p.ComplianceLevel = string(r.Scoring.ComplianceLevel)
	}
	if r.SubmittedAt != nil {
		p.SubmittedAt = *r.SubmittedAt
	}
	if survey, err := s.surveys.Get(ctx, r.SurveyID); err == nil {
		p.SurveyTitle = survey.Title
	} else {
		s.log.Warn("survey title unavailable for notification", "surveyId", r.SurveyID, "error", err)
	}
	return p
}

// mutate อ่านคำตอบฉบับล่าสุด แก้ไข แล้วบันทึกแบบ compare-and-swap
func (s *Service) mutate(ctx context.Context, responseID, event string, fn func(*models.SurveyResponse) error) (*models.SurveyResponse, error) {
	var lastErr error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		response, err := s.repo.FindByID(ctx, responseID)
		if err != nil {
			return nil, err
		}
		if err := fn(response); err != nil {
			return nil, err
		}
		err = s.repo.Update(ctx, response)
		if err == nil {
			s.metrics.ResponseEvent(event)
			s.log.Info("response updated", "responseId", responseID, "event", event, "status", response.Status, "revision", response.Revision)
			return response, nil
		}
		if !errors.Is(err, models.ErrRevisionConflict) {
			return nil, err
		}
		lastErr = err
		s.log.Warn("response revision conflict, retrying", "responseId", responseID, "event", event, "attempt", attempt+1)
	}
	return nil, fmt.Errorf("response %s: %w", responseID, lastErr)
}
