package summary

import (
	"context"
	"log/slog"
	"math"

	"Backend-GACP-Survey/src/models"

	"golang.org/x/sync/errgroup"
)

type SurveyReader interface {
	Get(ctx context.Context, surveyID string) (*models.Survey, error)
}

// StatsReader สถิติคำตอบ (responses.Repository ใช้ได้)
type StatsReader interface {
	CountByStatus(ctx context.Context, surveyID string) (map[models.ResponseStatus]int64, error)
	ScoreStats(ctx context.Context, surveyID string) (*models.ScoreStats, error)
}

type Service struct {
	surveys SurveyReader
	stats   StatsReader
	log     *slog.Logger
}

func NewService(surveys SurveyReader, stats StatsReader, logger *slog.Logger) *Service {
	return &Service{surveys: surveys, stats: stats, log: logger}
}

// SurveySummary ดึงนิยามแบบประเมินและสถิติคำตอบพร้อมกัน แล้วรวมเป็นภาพรวม
func (s *Service) SurveySummary(ctx context.Context, surveyID string) (*models.SurveySummary, error) {
	var (
		survey *models.Survey
		counts map[models.ResponseStatus]int64
		scores *models.ScoreStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		survey, err = s.surveys.Get(gctx, surveyID)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.stats.CountByStatus(gctx, surveyID)
		return err
	})
	g.Go(func() error {
		var err error
		scores, err = s.stats.ScoreStats(gctx, surveyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &models.SurveySummary{
		SurveyID:          survey.SurveyID,
		Title:             survey.Title,
		Status:            survey.Status,
		TotalQuestions:    survey.TotalQuestions,
		StatusCounts:      counts,
		ScoredResponses:   scores.Scored,
		AveragePercentage: round2(scores.AveragePercentage),
		PassedResponses:   scores.Passed,
		ComplianceCounts:  scores.ComplianceCounts,
	}
	for _, n := range counts {
		out.TotalResponses += n
	}
	finished := counts[models.ResponseCompleted] + counts[models.ResponseSubmitted] + counts[models.ResponseReviewed]
	out.CompletionRate = rate(finished, out.TotalResponses)
	out.PassRate = rate(scores.Passed, scores.Scored)

	s.log.Debug("survey summary built", "surveyId", surveyID, "responses", out.TotalResponses)
	return out, nil
}

func rate(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
