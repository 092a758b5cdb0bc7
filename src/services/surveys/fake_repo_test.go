package surveys

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"Backend-GACP-Survey/src/models"
)

type fakeRepo struct {
	mu        sync.Mutex
	items     map[string][]byte
	revisions map[string]int64
	// conflicts จำนวนครั้งที่ Update จะตอบ ErrRevisionConflict ก่อนยอมบันทึก
	conflicts int
	updates   int
	finds     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[string][]byte{}, revisions: map[string]int64{}}
}

func (r *fakeRepo) Create(_ context.Context, survey *models.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	r.items[survey.SurveyID] = data
	r.revisions[survey.SurveyID] = survey.Revision
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, surveyID string) (*models.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	data, ok := r.items[surveyID]
	if !ok {
		return nil, fmt.Errorf("survey %s: %w", surveyID, models.ErrNotFound)
	}
	var survey models.Survey
	if err := json.Unmarshal(data, &survey); err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *fakeRepo) List(_ context.Context, params models.PaginationParams) ([]models.Survey, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Survey{}
	for _, data := range r.items {
		var survey models.Survey
		if err := json.Unmarshal(data, &survey); err != nil {
			return nil, 0, err
		}
		if params.Status == "" || string(survey.Status) == params.Status {
			out = append(out, survey)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRepo) Update(_ context.Context, survey *models.Survey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.revisions[survey.SurveyID]
	if !ok {
		return fmt.Errorf("survey %s: %w", survey.SurveyID, models.ErrNotFound)
	}
	if r.conflicts > 0 {
		r.conflicts--
		return models.ErrRevisionConflict
	}
	if current != survey.Revision {
		return models.ErrRevisionConflict
	}
	survey.Revision++
	data, err := json.Marshal(survey)
	if err != nil {
		return err
	}
	r.items[survey.SurveyID] = data
	r.revisions[survey.SurveyID] = survey.Revision
	r.updates++
	return nil
}
