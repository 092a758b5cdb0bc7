package models

import (
	"encoding/json"
	"testing"
	"time"

	"Backend-GACP-Survey/src/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func yesNoAnswers(values ...string) []QuestionResponse {
	ids := []string{"yn1", "yn2", "yn3", "yn4"}
	out := make([]QuestionResponse, 0, len(values))
	for i, v := range values {
		out = append(out, QuestionResponse{QuestionID: ids[i], Answer: v})
	}
	return out
}

func TestCalculateResponseScoreYesNo(t *testing.T) {
	suite := testutil.NewSuite("Yes/No Scoring Tests")
	defer suite.PrintSummary()

	suite.Run(t, "AllCorrectPasses", func(t *testing.T) {
		s := yesNoSurvey(t, 70)
		result, err := s.CalculateResponseScore(yesNoAnswers("YES", "YES", "YES", "YES"))
		require.NoError(t, err)
		assert.Equal(t, 100.0, result.TotalScore)
		assert.Equal(t, 100.0, result.Percentage)
		assert.True(t, result.Passed)
		assert.Equal(t, FullCompliance, result.ComplianceLevel)
		assert.Equal(t, "A", result.Grade)
		require.Len(t, result.SectionScores, 1)
		assert.Equal(t, 4, result.SectionScores[0].CorrectCount)
	})

	suite.Run(t, "HalfCorrectFails", func(t *testing.T) {
		s := yesNoSurvey(t, 70)
		result, err := s.CalculateResponseScore(yesNoAnswers("YES", "NO", "ใช่", "ไม่ใช่"))
		require.NoError(t, err)
		assert.Equal(t, 50.0, result.TotalScore)
		assert.Equal(t, 50.0, result.Percentage)
		assert.False(t, result.Passed)
		assert.Equal(t, LimitedCompliance, result.ComplianceLevel)
		assert.Equal(t, "F", result.Grade)
	})

	suite.Run(t, "UnansweredScoresZero", func(t *testing.T) {
		s := yesNoSurvey(t, 70)
		result, err := s.CalculateResponseScore(nil)
		require.NoError(t, err)
		assert.Zero(t, result.TotalScore)
		assert.Equal(t, NonCompliance, result.ComplianceLevel)
		assert.Zero(t, result.SectionScores[0].AnsweredCount)
	})

	suite.Run(t, "LastDuplicateWins", func(t *testing.T) {
		s := yesNoSurvey(t, 70)
		answers := append(yesNoAnswers("YES", "YES", "YES", "YES"), QuestionResponse{QuestionID: "yn1", Answer: "NO"})
		result, err := s.CalculateResponseScore(answers)
		require.NoError(t, err)
		assert.Equal(t, 75.0, result.TotalScore)
	})
}

func TestScoreQuestion(t *testing.T) {
	tests := []struct {
		name      string
		question  Question
		answer    interface{}
		score     float64
		isCorrect bool
		answered  bool
	}{
		{
			name:      "MultipleChoiceSingleCorrect",
			question:  Question{Type: MultipleChoice, Points: 10, Options: []string{"อินทรีย์", "เคมี"}, CorrectAnswers: []string{"อินทรีย์"}},
			answer:    "อินทรีย์",
			score:     10,
			isCorrect: true,
			answered:  true,
		},
		{
			name:     "MultipleChoiceWrong",
			question: Question{Type: MultipleChoice, Points: 10, Options: []string{"อินทรีย์", "เคมี"}, CorrectAnswers: []string{"อินทรีย์"}},
			answer:   "เคมี",
			answered: true,
		},
		{
			name:      "MultipleChoiceExactSet",
			question:  Question{Type: MultipleChoice, Points: 6, Options: []string{"A", "B", "C"}, CorrectAnswers: []string{"A", "C"}},
			answer:    []interface{}{"c", "a"},
			score:     6,
			isCorrect: true,
			answered:  true,
		},
		{
			name:      "MultipleChoiceStoredArray",
			question:  Question{Type: MultipleChoice, Points: 6, Options: []string{"A", "B", "C"}, CorrectAnswers: []string{"A", "C"}},
			answer:    primitive.A{"A", "C"},
			score:     6,
			isCorrect: true,
			answered:  true,
		},
		{
			name:     "MultipleChoicePartialSet",
			question: Question{Type: MultipleChoice, Points: 6, Options: []string{"A", "B", "C"}, CorrectAnswers: []string{"A", "C"}},
			answer:   []string{"A"},
			answered: true,
		},
		{
			name:      "MultipleChoiceWithoutKey",
			question:  Question{Type: MultipleChoice, Points: 4, Options: []string{"A", "B"}},
			answer:    "B",
			score:     4,
			isCorrect: true,
			answered:  true,
		},
		{
			name:      "YesNoBoolean",
			question:  Question{Type: YesNo, Points: 5, CorrectAnswers: []string{"YES"}},
			answer:    true,
			score:     5,
			isCorrect: true,
			answered:  true,
		},
		{
			name:     "YesNoInvalidText",
			question: Question{Type: YesNo, Points: 5, CorrectAnswers: []string{"YES"}},
			answer:   "maybe",
			answered: true,
		},
		{
			name:      "RatingProportional",
			question:  Question{Type: Rating, Points: 10, Validation: QuestionValidation{MinValue: ptr(1), MaxValue: ptr(5)}},
			answer:    4,
			score:     8,
			isCorrect: true,
			answered:  true,
		},
		{
			name:     "RatingBelowCorrectRatio",
			question: Question{Type: Rating, Points: 10, Validation: QuestionValidation{MinValue: ptr(1), MaxValue: ptr(5)}},
			answer:   "2",
			score:    4,
			answered: true,
		},
		{
			name:      "RatingClampedToMax",
			question:  Question{Type: Rating, Points: 10, Validation: QuestionValidation{MinValue: ptr(1), MaxValue: ptr(5)}},
			answer:    9,
			score:     10,
			isCorrect: true,
			answered:  true,
		},
		{
			name:      "NumericWithinDefaultTolerance",
			question:  Question{Type: Numeric, Points: 10, Validation: QuestionValidation{TargetValue: ptr(7)}},
			answer:    7.1,
			score:     10,
			isCorrect: true,
			answered:  true,
		},
		{
			name:     "NumericOutsideTolerance",
			question: Question{Type: Numeric, Points: 10, Validation: QuestionValidation{TargetValue: ptr(7)}},
			answer:   7.2,
			answered: true,
		},
		{
			name:      "NumericTargetFromCorrectAnswers",
			question:  Question{Type: Numeric, Points: 10, CorrectAnswers: []string{"12.5"}, Validation: QuestionValidation{Tolerance: ptr(0.5)}},
			answer:    "13",
			score:     10,
			isCorrect: true,
			answered:  true,
		},
		{
			name:      "TextMeetsMinWords",
			question:  Question{Type: Text, Points: 10, Validation: QuestionValidation{MinWords: 3}},
			answer:    "มีการ บันทึก ทุกวัน",
			score:     10,
			isCorrect: true,
			answered:  true,
		},
		{
			name:     "TextPartialWords",
			question: Question{Type: Text, Points: 10, Validation: QuestionValidation{MinWords: 4}},
			answer:   "บันทึก ทุกวัน",
			score:    5,
			answered: true,
		},
		{
			name:      "TextThaiWithoutSpaces",
			question:  Question{Type: Text, Points: 10, Validation: QuestionValidation{MinWords: 3}},
			answer:    "มีการบันทึกทุกวัน",
			score:     10,
			isCorrect: true,
			answered:  true,
		},
		{
			name:     "TextEnglishWords",
			question: Question{Type: Text, Points: 10, Validation: QuestionValidation{MinWords: 4}},
			answer:   "daily harvest log",
			score:    7.5,
			answered: true,
		},
		{
			name:     "RatingNaNScoresZero",
			question: Question{Type: Rating, Points: 10},
			answer:   "NaN",
			answered: true,
		},
		{
			name:     "NumericInfinityIsWrong",
			question: Question{Type: Numeric, Points: 10, Validation: QuestionValidation{TargetValue: ptr(7)}},
			answer:   "+Inf",
			answered: true,
		},
		{
			name:     "BlankIsUnanswered",
			question: Question{Type: Text, Points: 10},
			answer:   "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.question.QuestionID = "q"
			qs := ScoreQuestion(tt.question, tt.answer)
			assert.InDelta(t, tt.score, qs.Score, 0.001)
			assert.Equal(t, tt.isCorrect, qs.IsCorrect)
			assert.Equal(t, tt.answered, qs.Answered)
			assert.Equal(t, tt.question.Points, qs.MaxScore)
		})
	}
}

func TestComplianceLevelAndGrade(t *testing.T) {
	tests := []struct {
		percentage float64
		level      ComplianceLevel
		grade      string
	}{
		{100, FullCompliance, "A"},
		{90, FullCompliance, "A"},
		{85, SubstantialCompliance, "B"},
		{75, SubstantialCompliance, "C"},
		{65, PartialCompliance, "D"},
		{59.99, LimitedCompliance, "F"},
		{40, LimitedCompliance, "F"},
		{10, NonCompliance, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, ComplianceLevelFor(tt.percentage), "level for %.2f", tt.percentage)
		assert.Equal(t, tt.grade, GradeFor(tt.percentage), "grade for %.2f", tt.percentage)
	}
}

func TestCalculateResponseScoreWeightsAndCategories(t *testing.T) {
	s := newDraftSurvey(t, 60)
	_, err := s.AddSection(Section{
		SectionID: "doc", Title: "เอกสาร", Category: CategoryDocumentation, Weight: 2,
		Questions: []Question{{QuestionID: "d1", Text: "มีสมุดบันทึก", Type: YesNo, Points: 10, CorrectAnswers: []string{"YES"}}},
	})
	require.NoError(t, err)
	_, err = s.AddSection(Section{
		SectionID: "cult", Title: "การปลูก", Category: CategoryCultivation,
		Questions: []Question{{QuestionID: "c1", Text: "ตรวจดิน", Type: YesNo, Points: 10, CorrectAnswers: []string{"YES"}}},
	})
	require.NoError(t, err)

	result, err := s.CalculateResponseScore([]QuestionResponse{
		{QuestionID: "d1", Answer: "YES"},
		{QuestionID: "c1", Answer: "YES"},
	})
	require.NoError(t, err)

	// น้ำหนัก 2 ทำให้คะแนนรวมเกินคะแนนเต็ม แต่เปอร์เซ็นต์ต้องไม่เกิน 100
	assert.Equal(t, 30.0, result.TotalScore)
	assert.Equal(t, 20.0, result.TotalPossibleScore)
	assert.Equal(t, 100.0, result.Percentage)
	assert.Equal(t, 20.0, result.SectionScores[0].WeightedScore)

	require.Len(t, result.CategoryScores, 2)
	assert.Equal(t, CategoryCultivation, result.CategoryScores[0].Category)
	assert.Equal(t, CategoryDocumentation, result.CategoryScores[1].Category)
}

func TestCalculateResponseScoreIsIdempotent(t *testing.T) {
	useClock(t, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	s := responseSurvey(t)
	answers := []QuestionResponse{
		{QuestionID: "q1", Answer: "YES"},
		{QuestionID: "q2", Answer: 3},
		{QuestionID: "q3", Answer: "บันทึกทุกวัน"},
		{QuestionID: "q4", Answer: 6.5},
	}

	timer := testutil.NewTimer("Idempotent Scoring")
	first, err := s.CalculateResponseScore(answers)
	require.NoError(t, err)
	second, err := s.CalculateResponseScore(answers)
	require.NoError(t, err)
	testutil.SlowWarning(t, "Idempotent Scoring", timer.Stop(), 5*time.Millisecond)

	assert.Equal(t, first, second)
	assert.Equal(t, 26.0, first.TotalScore)
	assert.Equal(t, 65.0, first.Percentage)
	assert.False(t, first.Passed)
}

func TestCalculateResponseScoreWithNonFiniteAnswers(t *testing.T) {
	s := responseSurvey(t)
	result, err := s.CalculateResponseScore([]QuestionResponse{
		{QuestionID: "q1", Answer: "YES"},
		{QuestionID: "q2", Answer: "NaN"},
		{QuestionID: "q4", Answer: "-Inf"},
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, result.TotalScore)
	assert.Equal(t, 25.0, result.Percentage)

	_, err = json.Marshal(result)
	assert.NoError(t, err)
}

func TestCalculateResponseScoreRejectsZeroPossibleScore(t *testing.T) {
	s := newDraftSurvey(t, 70)
	_, err := s.AddSection(Section{
		Title: "ข้อมูลทั่วไป", Category: CategoryDocumentation,
		Questions: []Question{{Text: "ชื่อฟาร์ม", Type: Text}},
	})
	require.NoError(t, err)

	result, err := s.CalculateResponseScore([]QuestionResponse{{QuestionID: "x", Answer: "ไร่สมุนไพร"}})
	assert.Nil(t, result)
	assert.True(t, IsValidationError(err))
}
