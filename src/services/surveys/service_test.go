package surveys

import (
	"context"
	"testing"
	"time"

	"Backend-GACP-Survey/src/logging"
	"Backend-GACP-Survey/src/metrics"
	"Backend-GACP-Survey/src/models"
	"Backend-GACP-Survey/src/testutil/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *fakeRepo, Cache) {
	t.Helper()
	repo := newFakeRepo()
	_, cache := newMiniredisCache(t, time.Minute)
	return NewService(repo, cache, metrics.New(), logging.Discard()), repo, cache
}

func TestCreateSurvey(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	survey, err := svc.Create(ctx, fixtures.SurveyRequest(), "admin-01")
	require.NoError(t, err)
	assert.Equal(t, models.SurveyDraft, survey.Status)
	assert.Equal(t, 4, survey.TotalQuestions)
	assert.Equal(t, 40.0, survey.TotalPossibleScore)
	assert.Equal(t, "admin-01", survey.CreatedBy)
	assert.Len(t, repo.items, 1)

	_, err = svc.Create(ctx, models.CreateSurveyRequest{PassingScore: 150}, "admin-01")
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Messages, 2)

	bad := fixtures.SurveyRequest()
	bad.Sections[0].Questions[1].Type = "SLIDER"
	_, err = svc.Create(ctx, bad, "admin-01")
	assert.True(t, models.IsValidationError(err))
	assert.Len(t, repo.items, 1)
}

func TestGetUsesCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	created, err := svc.Create(ctx, fixtures.SurveyRequest(), "admin-01")
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.SurveyID)
	require.NoError(t, err)
	findsAfterFirst := repo.finds

	got, err := svc.Get(ctx, created.SurveyID)
	require.NoError(t, err)
	assert.Equal(t, findsAfterFirst, repo.finds)
	assert.Equal(t, created.Title, got.Title)
	assert.Len(t, got.Sections, 2)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMutationsInvalidateCache(t *testing.T) {
	ctx := context.Background()
	svc, _, cache := newTestService(t)
	created, err := svc.Create(ctx, fixtures.SurveyRequest(), "admin-01")
	require.NoError(t, err)

	_, err = svc.Get(ctx, created.SurveyID)
	require.NoError(t, err)
	_, cached := cache.Get(ctx, created.SurveyID)
	require.True(t, cached)

	q, err := svc.AddQuestion(ctx, created.SurveyID, "s-doc", models.Question{Text: "มีแผนควบคุมคุณภาพ", Type: models.YesNo, Points: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, q.QuestionID)
	_, cached = cache.Get(ctx, created.SurveyID)
	assert.False(t, cached)

	got, err := svc.Get(ctx, created.SurveyID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.TotalQuestions)
	assert.Equal(t, 50.0, got.TotalPossibleScore)
	assert.Equal(t, int64(1), got.Revision)
}

func TestLifecycleThroughService(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	created, err := svc.Create(ctx, fixtures.SurveyRequest(), "admin-01")
	require.NoError(t, err)

	sec, err := svc.AddSection(ctx, created.SurveyID, models.Section{
		Title: "การจัดเก็บ", Category: models.CategoryStorage,
		Questions: []models.Question{{Text: "ป้องกันความชื้น", Type: models.YesNo, Points: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, sec.Order)

	active, err := svc.Activate(ctx, created.SurveyID)
	require.NoError(t, err)
	assert.Equal(t, models.SurveyActive, active.Status)

	_, err = svc.AddSection(ctx, created.SurveyID, models.Section{Title: "หลังเผยแพร่", Category: models.CategoryHarvesting})
	assert.True(t, models.IsStateTransitionError(err))

	inactive, err := svc.Deactivate(ctx, created.SurveyID)
	require.NoError(t, err)
	assert.Equal(t, models.SurveyInactive, inactive.Status)

	archived, err := svc.Archive(ctx, created.SurveyID)
	require.NoError(t, err)
	assert.Equal(t, models.SurveyArchived, archived.Status)

	_, err = svc.Activate(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMutateRetriesRevisionConflicts(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	created, err := svc.Create(ctx, fixtures.SurveyRequest(), "admin-01")
	require.NoError(t, err)

	repo.conflicts = 2
	_, err = svc.Activate(ctx, created.SurveyID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.updates)

	repo.conflicts = maxUpdateAttempts
	_, err = svc.Deactivate(ctx, created.SurveyID)
	assert.ErrorIs(t, err, models.ErrRevisionConflict)
	got, err := svc.Get(ctx, created.SurveyID)
	require.NoError(t, err)
	assert.Equal(t, models.SurveyActive, got.Status)
}

func TestScoreReportAndValidate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	created, err := svc.Create(ctx, fixtures.SurveyRequest(), "admin-01")
	require.NoError(t, err)

	req := models.ScoreRequest{Responses: []models.QuestionResponse{
		{QuestionID: "q-soil", Answer: "YES"},
		{QuestionID: "q-water", Answer: 4},
		{QuestionID: "q-record", Answer: "บันทึกทุกวัน"},
		{QuestionID: "q-moisture", Answer: 9},
	}}
	score, err := svc.Score(ctx, created.SurveyID, req)
	require.NoError(t, err)
	assert.Equal(t, 28.0, score.TotalScore)
	assert.Equal(t, 70.0, score.Percentage)
	assert.True(t, score.Passed)

	report, err := svc.Report(ctx, created.SurveyID, req)
	require.NoError(t, err)
	assert.Equal(t, created.SurveyID, report.SurveyID)
	require.NotEmpty(t, report.Recommendations)
	assert.Equal(t, models.CategoryDocumentation, report.Recommendations[0].Category)

	_, err = svc.Score(ctx, created.SurveyID, models.ScoreRequest{Responses: []models.QuestionResponse{{Answer: "YES"}}})
	assert.True(t, models.IsValidationError(err))

	result, err := svc.Validate(ctx, created.SurveyID)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.NotEmpty(t, result.Warnings)
}

func TestList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, fixtures.SurveyRequest(), "admin-01")
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, models.PaginationParams{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 100, page.Limit)
	assert.Equal(t, 1, page.Page)
	assert.False(t, page.HasNext)
}
