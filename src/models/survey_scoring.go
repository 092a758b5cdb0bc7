package models

import (
	"errors"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionResponse คำตอบหนึ่งข้อที่ส่งมาให้คิดคะแนน
type QuestionResponse struct {
	QuestionID string      `bson:"questionId" json:"questionId" validate:"required"`
	Answer     interface{} `bson:"answer" json:"answer"`
}

type ComplianceLevel string

const (
	FullCompliance        ComplianceLevel = "FULL_COMPLIANCE"
	SubstantialCompliance ComplianceLevel = "SUBSTANTIAL"
	PartialCompliance     ComplianceLevel = "PARTIAL"
	LimitedCompliance     ComplianceLevel = "LIMITED"
	NonCompliance         ComplianceLevel = "NON_COMPLIANCE"
)

// ratingCorrectRatio สัดส่วนของคะแนนเต็มที่ถือว่าตอบ RATING "ถูก"
const ratingCorrectRatio = 0.6

var errNoPossibleScore = errors.New("แบบประเมินไม่มีคะแนนเต็ม ไม่สามารถคำนวณคะแนนได้")

type QuestionScore struct {
	QuestionID string       `bson:"questionId" json:"questionId"`
	Type       QuestionType `bson:"type" json:"type"`
	Score      float64      `bson:"score" json:"score"`
	MaxScore   float64      `bson:"maxScore" json:"maxScore"`
	IsCorrect  bool         `bson:"isCorrect" json:"isCorrect"`
	Answered   bool         `bson:"answered" json:"answered"`
}

type SectionScore struct {
	SectionID     string          `bson:"sectionId" json:"sectionId"`
	Title         string          `bson:"title" json:"title"`
	Category      SectionCategory `bson:"category" json:"category"`
	Weight        float64         `bson:"weight" json:"weight"`
	RawScore      float64         `bson:"rawScore" json:"rawScore"`
	WeightedScore float64         `bson:"weightedScore" json:"weightedScore"`
	MaxScore      float64         `bson:"maxScore" json:"maxScore"`
	Percentage    float64         `bson:"percentage" json:"percentage"`
	QuestionCount int             `bson:"questionCount" json:"questionCount"`
	AnsweredCount int             `bson:"answeredCount" json:"answeredCount"`
	CorrectCount  int             `bson:"correctCount" json:"correctCount"`
	Questions     []QuestionScore `bson:"questions" json:"questions"`
}

type CategoryScore struct {
	Category   SectionCategory `bson:"category" json:"category"`
	Score      float64         `bson:"score" json:"score"`
	MaxScore   float64         `bson:"maxScore" json:"maxScore"`
	Percentage float64         `bson:"percentage" json:"percentage"`
}

// ScoringResult ผลการคิดคะแนนของแบบประเมินหนึ่งชุดคำตอบ
type ScoringResult struct {
	SurveyID           string          `bson:"surveyId" json:"surveyId"`
	TotalScore         float64         `bson:"totalScore" json:"totalScore"`
	TotalPossibleScore float64         `bson:"totalPossibleScore" json:"totalPossibleScore"`
	Percentage         float64         `bson:"percentage" json:"percentage"`
	PassingScore       float64         `bson:"passingScore" json:"passingScore"`
	Passed             bool            `bson:"passed" json:"passed"`
	ComplianceLevel    ComplianceLevel `bson:"complianceLevel" json:"complianceLevel"`
	Grade              string          `bson:"grade" json:"grade"`
	SectionScores      []SectionScore  `bson:"sectionScores" json:"sectionScores"`
	CategoryScores     []CategoryScore `bson:"categoryScores" json:"categoryScores"`
	CalculatedAt       time.Time       `bson:"calculatedAt" json:"calculatedAt"`
}

// CalculateResponseScore คิดคะแนนรายข้อ ถ่วงน้ำหนักรายหมวด แล้วรวมเป็นคะแนนทั้งแบบประเมิน
func (s *Survey) CalculateResponseScore(responses []QuestionResponse) (*ScoringResult, error) {
	if s.TotalPossibleScore <= 0 {
		return nil, NewValidationError(errNoPossibleScore.Error())
	}

	answers := make(map[string]interface{}, len(responses))
	for _, r := range responses {
		answers[r.QuestionID] = r.Answer
	}

	result := &ScoringResult{
		SurveyID:           s.SurveyID,
		TotalPossibleScore: s.TotalPossibleScore,
		PassingScore:       s.PassingScore,
		SectionScores:      make([]SectionScore, 0, len(s.Sections)),
		CalculatedAt:       now(),
	}

	categoryTotals := map[SectionCategory]*CategoryScore{}
	for _, sec := range s.Sections {
		weight := sec.Weight
		if weight == 0 {
			weight = DefaultSectionWeight
		}
		ss := SectionScore{
			SectionID:     sec.SectionID,
			Title:         sec.Title,
			Category:      sec.Category,
			Weight:        weight,
			QuestionCount: len(sec.Questions),
			Questions:     make([]QuestionScore, 0, len(sec.Questions)),
		}
		for _, q := range sec.Questions {
			qs := ScoreQuestion(q, answers[q.QuestionID])
			ss.Questions = append(ss.Questions, qs)
			ss.RawScore += qs.Score
			ss.MaxScore += q.Points
			if qs.Answered {
				ss.AnsweredCount++
			}
			if qs.IsCorrect {
				ss.CorrectCount++
			}
		}
		ss.WeightedScore = ss.RawScore * weight
		ss.Percentage = percentOf(ss.RawScore, ss.MaxScore)
		result.TotalScore += ss.WeightedScore
		result.SectionScores = append(result.SectionScores, ss)

		cs, ok := categoryTotals[sec.Category]
		if !ok {
			cs = &CategoryScore{Category: sec.Category}
			categoryTotals[sec.Category] = cs
		}
		cs.Score += ss.RawScore
		cs.MaxScore += ss.MaxScore
	}

	for _, c := range SectionCategories {
		if cs, ok := categoryTotals[c]; ok {
			cs.Percentage = percentOf(cs.Score, cs.MaxScore)
			result.CategoryScores = append(result.CategoryScores, *cs)
		}
	}

	result.TotalScore = round2(result.TotalScore)
	result.Percentage = math.Min(percentOf(result.TotalScore, s.TotalPossibleScore), 100)
	result.Passed = result.Percentage >= s.PassingScore
	result.ComplianceLevel = ComplianceLevelFor(result.Percentage)
	result.Grade = GradeFor(result.Percentage)
	return result, nil
}

// ScoreQuestion คิดคะแนนคำถามหนึ่งข้อตามชนิดคำถาม
func ScoreQuestion(q Question, answer interface{}) QuestionScore {
	qs := QuestionScore{QuestionID: q.QuestionID, Type: q.Type, MaxScore: q.Points}
	if !isAnswered(answer) {
		return qs
	}
	qs.Answered = true

	switch q.Type {
	case MultipleChoice:
		qs.IsCorrect = matchesChoice(answer, q.CorrectAnswers)
		if qs.IsCorrect {
			qs.Score = q.Points
		}
	case YesNo:
		qs.IsCorrect = matchesYesNo(answer, q.CorrectAnswers)
		if qs.IsCorrect {
			qs.Score = q.Points
		}
	case Rating:
		qs.Score, qs.IsCorrect = scoreRating(q, answer)
	case Numeric:
		qs.IsCorrect = matchesNumeric(q, answer)
		if qs.IsCorrect {
			qs.Score = q.Points
		}
	case Text:
		qs.Score, qs.IsCorrect = scoreText(q, answer)
	}
	qs.Score = round2(qs.Score)
	return qs
}

// ComplianceLevelFor แปลงเปอร์เซ็นต์เป็นระดับความสอดคล้อง 5 ระดับ
func ComplianceLevelFor(percentage float64) ComplianceLevel {
	switch {
	case percentage >= 90:
		return FullCompliance
	case percentage >= 75:
		return SubstantialCompliance
	case percentage >= 60:
		return PartialCompliance
	case percentage >= 40:
		return LimitedCompliance
	default:
		return NonCompliance
	}
}

func GradeFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

func matchesChoice(answer interface{}, correct []string) bool {
	// ไม่มีเฉลย = คำถามเชิงประกาศ ตอบแล้วได้คะแนน
	if len(correct) == 0 {
		return true
	}
	if selected, err := cast.ToStringSliceE(sliceAnswer(answer)); err == nil && isSliceAnswer(answer) {
		if len(selected) != len(correct) {
			return false
		}
		for _, s := range selected {
			if !containsFold(correct, s) {
				return false
			}
		}
		return true
	}
	return containsFold(correct, answerText(answer))
}

func matchesYesNo(answer interface{}, correct []string) bool {
	value, ok := normalizeYesNo(answer)
	if !ok {
		return false
	}
	if len(correct) == 0 {
		return true
	}
	for _, c := range correct {
		if cv, ok := normalizeYesNo(c); ok && cv == value {
			return true
		}
	}
	return false
}

func scoreRating(q Question, answer interface{}) (float64, bool) {
	value, ok := finiteNumber(answer)
	if !ok {
		return 0, false
	}
	maxRating := DefaultRatingMax
	if q.Validation.MaxValue != nil && *q.Validation.MaxValue > 0 {
		maxRating = *q.Validation.MaxValue
	}
	value = math.Max(0, math.Min(value, maxRating))
	return value / maxRating * q.Points, value >= maxRating*ratingCorrectRatio
}

func matchesNumeric(q Question, answer interface{}) bool {
	value, ok := finiteNumber(answer)
	if !ok {
		return false
	}
	var target float64
	switch {
	case q.Validation.TargetValue != nil:
		target = *q.Validation.TargetValue
	case len(q.CorrectAnswers) > 0:
		t, err := cast.ToFloat64E(q.CorrectAnswers[0])
		if err != nil {
			return false
		}
		target = t
	default:
		return true
	}
	tolerance := DefaultNumericTolerance
	if q.Validation.Tolerance != nil {
		tolerance = *q.Validation.Tolerance
	}
	// เผื่อความคลาดเคลื่อนของทศนิยม เช่น |7.1-7.0| = 0.0999999...
	return math.Abs(value-target) <= tolerance+1e-9
}

func scoreText(q Question, answer interface{}) (float64, bool) {
	words := countWords(answerText(answer))
	if words == 0 {
		return 0, false
	}
	minWords := q.Validation.MinWords
	if minWords <= 0 {
		return q.Points, true
	}
	ratio := math.Min(float64(words)/float64(minWords), 1)
	return ratio * q.Points, words >= minWords
}

// finiteNumber แปลงคำตอบเป็นตัวเลข "NaN" กับ "Inf" ถือว่าไม่ใช่ตัวเลข
func finiteNumber(answer interface{}) (float64, bool) {
	value, err := cast.ToFloat64E(answer)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// thaiCharsPerWord ความยาวคำไทยโดยประมาณ ไม่นับสระบน สระล่าง และวรรณยุกต์
const thaiCharsPerWord = 4

// countWords นับคำตามช่องว่าง ข้อความไทยที่เขียนติดกันประมาณจากจำนวนตัวอักษร
func countWords(text string) int {
	words := 0
	for _, field := range strings.Fields(text) {
		thai := 0
		for _, r := range field {
			if unicode.Is(unicode.Thai, r) && !unicode.Is(unicode.Mn, r) {
				thai++
			}
		}
		if thai == 0 {
			words++
			continue
		}
		words += (thai + thaiCharsPerWord - 1) / thaiCharsPerWord
	}
	return words
}

func isAnswered(answer interface{}) bool {
	switch v := answer.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []interface{}:
		return len(v) > 0
	case primitive.A:
		return len(v) > 0
	case []string:
		return len(v) > 0
	}
	return true
}

func isSliceAnswer(answer interface{}) bool {
	switch answer.(type) {
	case []interface{}, primitive.A, []string:
		return true
	}
	return false
}

// sliceAnswer คำตอบที่อ่านกลับจาก Mongo เป็น primitive.A ซึ่ง cast ไม่รู้จัก
func sliceAnswer(answer interface{}) interface{} {
	if a, ok := answer.(primitive.A); ok {
		return []interface{}(a)
	}
	return answer
}

func answerText(answer interface{}) string {
	if b, ok := answer.(bool); ok {
		if b {
			return "YES"
		}
		return "NO"
	}
	return strings.TrimSpace(cast.ToString(answer))
}

func normalizeYesNo(answer interface{}) (string, bool) {
	switch strings.ToUpper(answerText(answer)) {
	case "YES", "Y", "TRUE", "1", "ใช่", "มี":
		return "YES", true
	case "NO", "N", "FALSE", "0", "ไม่ใช่", "ไม่มี":
		return "NO", true
	}
	return "", false
}

func containsFold(list []string, value string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), value) {
			return true
		}
	}
	return false
}

func percentOf(score, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return round2(score / max * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
