package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSurveyCompletion(t *testing.T) {
	t.Run("EmptySurvey", func(t *testing.T) {
		s := newDraftSurvey(t, 70)
		result := s.ValidateSurveyCompletion()
		assert.False(t, result.IsValid)
		assert.Len(t, result.Errors, 1)
	})

	t.Run("EmptySectionIsError", func(t *testing.T) {
		s := yesNoSurvey(t, 70)
		_, err := s.AddSection(Section{Title: "การจัดเก็บ", Category: CategoryStorage})
		require.NoError(t, err)
		result := s.ValidateSurveyCompletion()
		assert.False(t, result.IsValid)
		assert.Contains(t, result.Errors[0], "การจัดเก็บ")
	})

	t.Run("WarningsDoNotInvalidate", func(t *testing.T) {
		s := yesNoSurvey(t, 40)
		result := s.ValidateSurveyCompletion()
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
		// เกณฑ์ผ่านต่ำกว่า 50 และมีคำถามน้อยกว่า 10 ข้อ
		assert.Len(t, result.Warnings, 2)
	})

	t.Run("RecommendedRangeHasNoWarnings", func(t *testing.T) {
		s := newDraftSurvey(t, 70)
		questions := make([]Question, 10)
		for i := range questions {
			questions[i] = Question{Text: "ข้อกำหนด", Type: YesNo, Points: 1}
		}
		_, err := s.AddSection(Section{Title: "การปลูก", Category: CategoryCultivation, Questions: questions})
		require.NoError(t, err)
		result := s.ValidateSurveyCompletion()
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Warnings)
	})
}

func TestGenerateSurveyReport(t *testing.T) {
	s := yesNoSurvey(t, 70)
	_, err := s.AddSection(Section{
		SectionID: "sec-store", Title: "การจัดเก็บ", Category: CategoryStorage,
		Questions: []Question{
			{QuestionID: "st1", Text: "ป้องกันความชื้น", Type: YesNo, Points: 10, CorrectAnswers: []string{"YES"}},
			{QuestionID: "st2", Text: "ติดฉลาก", Type: YesNo, Points: 10, CorrectAnswers: []string{"YES"}},
		},
	})
	require.NoError(t, err)

	t.Run("LowCategoryGetsRecommendation", func(t *testing.T) {
		answers := append(yesNoAnswers("YES", "YES", "YES", "YES"),
			QuestionResponse{QuestionID: "st1", Answer: "YES"},
			QuestionResponse{QuestionID: "st2", Answer: "NO"},
		)
		report, err := s.GenerateSurveyReport(answers)
		require.NoError(t, err)

		assert.Equal(t, s.SurveyID, report.SurveyID)
		assert.Equal(t, 110.0, report.Score.TotalScore)
		assert.True(t, report.Score.Passed)
		assert.Contains(t, report.Summary, "ผ่าน")
		require.Len(t, report.Recommendations, 1)
		rec := report.Recommendations[0]
		assert.Equal(t, CategoryStorage, rec.Category)
		assert.Equal(t, "HIGH", rec.Priority)
		assert.Equal(t, recommendationCatalogue[CategoryStorage], rec.Messages)
	})

	t.Run("AllCategoriesStrong", func(t *testing.T) {
		answers := append(yesNoAnswers("YES", "YES", "YES", "YES"),
			QuestionResponse{QuestionID: "st1", Answer: "YES"},
			QuestionResponse{QuestionID: "st2", Answer: "YES"},
		)
		report, err := s.GenerateSurveyReport(answers)
		require.NoError(t, err)
		require.Len(t, report.Recommendations, 1)
		assert.Equal(t, "LOW", report.Recommendations[0].Priority)
		assert.Equal(t, []string{maintainRecommendation}, report.Recommendations[0].Messages)
	})

	t.Run("FailingCategoryIsHighPriority", func(t *testing.T) {
		answers := yesNoAnswers("YES", "YES", "NO", "NO")
		answers = append(answers,
			QuestionResponse{QuestionID: "st1", Answer: "YES"},
			QuestionResponse{QuestionID: "st2", Answer: "YES"},
		)
		report, err := s.GenerateSurveyReport(answers)
		require.NoError(t, err)
		require.Len(t, report.Recommendations, 1)
		assert.Equal(t, CategoryCultivation, report.Recommendations[0].Category)
		assert.Equal(t, "HIGH", report.Recommendations[0].Priority)
		assert.False(t, report.Score.Passed)
	})
}
