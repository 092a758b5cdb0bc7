package responses

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"Backend-GACP-Survey/src/jobs"
	"Backend-GACP-Survey/src/models"
)

type fakeRepo struct {
	mu        sync.Mutex
	items     map[string][]byte
	revisions map[string]int64
	// conflicts จำนวนครั้งที่ Update จะตอบ ErrRevisionConflict ก่อนยอมบันทึก
	conflicts int
	updates   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string][]byte{}, revisions: map[string]int64{}}
}

func (r *fakeRepo) Create(_ context.Context, response *models.SurveyResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	r.items[response.ResponseID] = data
	r.revisions[response.ResponseID] = response.Revision
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, responseID string) (*models.SurveyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(responseID)
}

func (r *fakeRepo) load(responseID string) (*models.SurveyResponse, error) {
	data, ok := r.items[responseID]
	if !ok {
		return nil, fmt.Errorf("response %s: %w", responseID, models.ErrNotFound)
	}
	var response models.SurveyResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *fakeRepo) Update(_ context.Context, response *models.SurveyResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.revisions[response.ResponseID]
	if !ok {
		return fmt.Errorf("response %s: %w", response.ResponseID, models.ErrNotFound)
	}
	if r.conflicts > 0 {
		r.conflicts--
		return models.ErrRevisionConflict
	}
	if current != response.Revision {
		return models.ErrRevisionConflict
	}
	response.Revision++
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	r.items[response.ResponseID] = data
	r.revisions[response.ResponseID] = response.Revision
	r.updates++
	return nil
}

func (r *fakeRepo) all(match func(*models.SurveyResponse) bool) ([]models.SurveyResponse, error) {
	out := []models.SurveyResponse{}
	for id := range r.items {
		resp, err := r.load(id)
		if err != nil {
			return nil, err
		}
		if match(resp) {
			out = append(out, *resp)
		}
	}
	return out, nil
}

func (r *fakeRepo) ListBySurvey(_ context.Context, surveyID string, _ models.PaginationParams) ([]models.SurveyResponse, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.all(func(resp *models.SurveyResponse) bool { return resp.SurveyID == surveyID })
	return out, int64(len(out)), err
}

func (r *fakeRepo) ListByRespondent(_ context.Context, respondentID string, _ models.PaginationParams) ([]models.SurveyResponse, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.all(func(resp *models.SurveyResponse) bool { return resp.RespondentID == respondentID })
	return out, int64(len(out)), err
}

func (r *fakeRepo) CountByStatus(_ context.Context, surveyID string) (map[models.ResponseStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.all(func(resp *models.SurveyResponse) bool { return resp.SurveyID == surveyID })
	if err != nil {
		return nil, err
	}
	counts := map[models.ResponseStatus]int64{}
	for _, resp := range out {
		counts[resp.Status]++
	}
	return counts, nil
}

func (r *fakeRepo) ScoreStats(_ context.Context, surveyID string) (*models.ScoreStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out, err := r.all(func(resp *models.SurveyResponse) bool { return resp.SurveyID == surveyID && resp.Scoring != nil })
	if err != nil {
		return nil, err
	}
	stats := &models.ScoreStats{ComplianceCounts: map[models.ComplianceLevel]int64{}}
	var sum float64
	for _, resp := range out {
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

type fakeSurveys map[string]*models.Survey

func (f fakeSurveys) Get(_ context.Context, surveyID string) (*models.Survey, error) {
	s, ok := f[surveyID]
	if !ok {
		return nil, fmt.Errorf("survey %s: %w", surveyID, models.ErrNotFound)
	}
	return s, nil
}

type fakePublisher struct {
	published []jobs.ResponseSubmittedPayload
	fail      bool
}

func (p *fakePublisher) PublishResponseSubmitted(_ context.Context, payload jobs.ResponseSubmittedPayload) error {
	if p.fail {
		return errors.New("redis unavailable")
	}
	p.published = append(p.published, payload)
	return nil
}
