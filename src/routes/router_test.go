package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"Backend-GACP-Survey/src/controllers"
	"Backend-GACP-Survey/src/jobs"
	"Backend-GACP-Survey/src/logging"
	"Backend-GACP-Survey/src/metrics"
	"Backend-GACP-Survey/src/models"
	"Backend-GACP-Survey/src/services/responses"
	"Backend-GACP-Survey/src/services/summary"
	"Backend-GACP-Survey/src/services/surveys"
	"Backend-GACP-Survey/src/testutil/fixtures"
	"Backend-GACP-Survey/src/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// memStore เก็บเอกสารเป็น JSON เพื่อให้ทุกการอ่านได้สำเนาใหม่
type memStore[T any] struct {
	mu    sync.Mutex
	items map[string][]byte
	revs  map[string]int64
}

func newMemStore[T any]() *memStore[T] {
	return &memStore[T]{items: map[string][]byte{}, revs: map[string]int64{}}
}

func (m *memStore[T]) put(id string, rev int64, v *T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.items[id] = data
	m.revs[id] = rev
	return nil
}

func (m *memStore[T]) get(id string) (*T, error) {
	data, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, models.ErrNotFound)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (m *memStore[T]) all() []T {
	out := []T{}
	for id := range m.items {
		if v, err := m.get(id); err == nil {
			out = append(out, *v)
		}
	}
	return out
}

type memSurveyRepo struct{ *memStore[models.Survey] }

func (r memSurveyRepo) Create(_ context.Context, s *models.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.put(s.SurveyID, s.Revision, s)
}

func (r memSurveyRepo) FindByID(_ context.Context, id string) (*models.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r memSurveyRepo) List(_ context.Context, _ models.PaginationParams) ([]models.Survey, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.all()
	return out, int64(len(out)), nil
}

func (r memSurveyRepo) Update(_ context.Context, s *models.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revs[s.SurveyID] != s.Revision {
		return models.ErrRevisionConflict
	}
	s.Revision++
	return r.put(s.SurveyID, s.Revision, s)
}

type memResponseRepo struct{ *memStore[models.SurveyResponse] }

func (r memResponseRepo) Create(_ context.Context, resp *models.SurveyResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.put(resp.ResponseID, resp.Revision, resp)
}

func (r memResponseRepo) FindByID(_ context.Context, id string) (*models.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.get(id)
}

func (r memResponseRepo) Update(_ context.Context, resp *models.SurveyResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revs[resp.ResponseID] != resp.Revision {
		return models.ErrRevisionConflict
	}
	resp.Revision++
	return r.put(resp.ResponseID, resp.Revision, resp)
}

func (r memResponseRepo) filter(match func(models.SurveyResponse) bool) []models.SurveyResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.SurveyResponse{}
	for _, resp := range r.all() {
		if match(resp) {
			out = append(out, resp)
		}
	}
	return out
}

func (r memResponseRepo) ListBySurvey(_ context.Context, surveyID string, _ models.PaginationParams) ([]models.SurveyResponse, int64, error) {
	out := r.filter(func(resp models.SurveyResponse) bool { return resp.SurveyID == surveyID })
	return out, int64(len(out)), nil
}

func (r memResponseRepo) ListByRespondent(_ context.Context, respondentID string, _ models.PaginationParams) ([]models.SurveyResponse, int64, error) {
	out := r.filter(func(resp models.SurveyResponse) bool { return resp.RespondentID == respondentID })
	return out, int64(len(out)), nil
}

func (r memResponseRepo) CountByStatus(_ context.Context, surveyID string) (map[models.ResponseStatus]int64, error) {
	counts := map[models.ResponseStatus]int64{}
	for _, resp := range r.filter(func(resp models.SurveyResponse) bool { return resp.SurveyID == surveyID }) {
		counts[resp.Status]++
	}
	return counts, nil
}

func (r memResponseRepo) ScoreStats(_ context.Context, surveyID string) (*models.ScoreStats, error) {
	stats := &models.ScoreStats{ComplianceCounts: map[models.ComplianceLevel]int64{}}
	var sum float64
	for _, resp := range r.filter(func(resp models.SurveyResponse) bool { return resp.SurveyID == surveyID && resp.Scoring != nil }) {
		stats.Scored++
		sum += resp.Scoring.Percentage
		if resp.Passed {
			stats.Passed++
		}
		stats.ComplianceCounts[resp.Scoring.ComplianceLevel]++
	}
	if stats.Scored > 0 {
		stats.AveragePercentage = sum / float64(stats.Scored)
	}
	return stats, nil
}

type testServer struct {
	app    *fiber.App
	events *recordingPublisher
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads []jobs.ResponseSubmittedPayload
}

func (p *recordingPublisher) PublishResponseSubmitted(_ context.Context, payload jobs.ResponseSubmittedPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logging.Discard()
	m := metrics.New()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	surveyRepo := memSurveyRepo{newMemStore[models.Survey]()}
	responseRepo := memResponseRepo{newMemStore[models.SurveyResponse]()}
	events := &recordingPublisher{}

	surveySvc := surveys.NewService(surveyRepo, surveys.NewRedisCache(rdb, time.Minute, logger), m, logger)
	responseSvc := responses.NewService(responseRepo, surveySvc, events, models.DefaultResponseConfig(), m, logger)
	summarySvc := summary.NewService(surveySvc, responseRepo, logger)
	blacklist := utils.NewTokenBlacklist(rdb)

	app := fiber.New()
	InitRoutes(app, Container{
		JWTSecret: testSecret,
		Blacklist: blacklist,
		Metrics:   m,
		Surveys:   controllers.NewSurveyController(surveySvc, responseSvc, summarySvc),
		Responses: controllers.NewResponseController(responseSvc),
		Auth:      controllers.NewAuthController(blacklist, logger),
	})
	return &testServer{app: app, events: events}
}

func token(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := utils.GenerateJWT(testSecret, userID, userID+"@example.com", role, time.Hour)
	require.NoError(t, err)
	return tok
}

// do ส่ง request แล้วถอด JSON ลง out (ถ้าไม่ใช่ nil) คืน status code
func (s *testServer) do(t *testing.T, method, path, tok string, body interface{}, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestSurveyResponseFlow(t *testing.T) {
	srv := newTestServer(t)
	admin := token(t, "admin-01", "admin")
	farmer := token(t, "farmer-01", "farmer")
	other := token(t, "farmer-02", "farmer")

	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/surveys", "", nil, nil))
	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodPost, "/surveys", farmer, fixtures.SurveyRequest(), nil))

	var created struct {
		Data models.Survey `json:"data"`
	}
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/surveys", admin, fixtures.SurveyRequest(), &created))
	surveyID := created.Data.SurveyID
	assert.Equal(t, 40.0, created.Data.TotalPossibleScore)

	var errResp models.ErrorResponse
	assert.Equal(t, http.StatusConflict, srv.do(t, http.MethodPost, "/responses", farmer, models.StartResponseRequest{SurveyID: surveyID}, &errResp))

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/surveys/"+surveyID+"/activate", admin, nil, nil))

	var raw json.RawMessage
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/surveys/"+surveyID, farmer, nil, &raw))
	assert.NotContains(t, string(raw), "correctAnswers")
	assert.NotContains(t, string(raw), "targetValue")
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/surveys", farmer, nil, &raw))
	assert.NotContains(t, string(raw), "correctAnswers")
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/surveys/"+surveyID, admin, nil, &raw))
	assert.Contains(t, string(raw), "correctAnswers")

	scoreReq := models.ScoreRequest{Responses: []models.QuestionResponse{{QuestionID: "q-soil", Answer: "YES"}}}
	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodPost, "/surveys/"+surveyID+"/score", farmer, scoreReq, nil))
	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodPost, "/surveys/"+surveyID+"/report", farmer, scoreReq, nil))
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/surveys/"+surveyID+"/score", admin, scoreReq, nil))

	var started models.SurveyResponse
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/responses", farmer, models.StartResponseRequest{SurveyID: surveyID}, &started))
	base := "/responses/" + started.ResponseID

	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodGet, base, other, nil, nil))

	for qid, input := range fixtures.FullMarks() {
		require.Equal(t, http.StatusOK, srv.do(t, http.MethodPut, base+"/answers/"+qid, farmer, input, nil), qid)
	}

	var progress models.ProgressReport
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, base+"/progress", farmer, nil, &progress))
	assert.Equal(t, 100.0, progress.OverallProgress)

	var completed models.SurveyResponse
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, base+"/complete", farmer, nil, &completed))
	assert.Equal(t, models.ResponseCompleted, completed.Status)
	assert.True(t, completed.Passed)

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, base+"/submit", farmer, nil, nil))
	assert.Len(t, srv.events.payloads, 1)

	assert.Equal(t, http.StatusConflict, srv.do(t, http.MethodPut, base+"/answers/q-soil", farmer, models.AnswerInput{Value: "NO"}, &errResp))

	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodPost, base+"/review", farmer, models.ReviewRequest{}, nil))
	var reviewed models.SurveyResponse
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, base+"/review", admin, models.ReviewRequest{Notes: "ผ่านการตรวจ"}, &reviewed))
	assert.Equal(t, models.ResponseReviewed, reviewed.Status)

	var sum models.SurveySummary
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/surveys/"+surveyID+"/summary", admin, nil, &sum))
	assert.Equal(t, int64(1), sum.TotalResponses)
	assert.Equal(t, 100.0, sum.PassRate)

	var page models.PaginatedResponse
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/respondents/farmer-01/responses", farmer, nil, &page))
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, http.StatusForbidden, srv.do(t, http.MethodGet, "/respondents/farmer-01/responses", other, nil, nil))
}

func TestValidationErrorsAreReported(t *testing.T) {
	srv := newTestServer(t)
	admin := token(t, "admin-01", "admin")

	var errResp models.ErrorResponse
	status := srv.do(t, http.MethodPost, "/surveys", admin, models.CreateSurveyRequest{PassingScore: 120}, &errResp)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, errResp.Details)

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/surveys/missing", admin, nil, &errResp))
}

func TestLogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t)
	tok := token(t, "farmer-01", "farmer")

	require.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/surveys", tok, nil, nil))
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/auth/logout", tok, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, srv.do(t, http.MethodGet, "/surveys", tok, nil, nil))
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "API is running")

	resp, err = srv.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
