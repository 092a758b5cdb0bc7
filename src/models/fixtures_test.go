package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

// useClock ตรึงเวลาของ package ไว้ที่ start และคืน pointer ให้ test เลื่อนเวลาเองได้
func useClock(t *testing.T, start time.Time) *time.Time {
	t.Helper()
	current := start
	prev := now
	now = func() time.Time { return current }
	t.Cleanup(func() { now = prev })
	return &current
}

func newDraftSurvey(t *testing.T, passingScore float64) *Survey {
	t.Helper()
	s, err := NewSurvey("แบบประเมิน GACP สมุนไพร", "ตรวจประเมินแปลงปลูก", "1.0", "GACP-TH-2024", passingScore, "admin-01")
	require.NoError(t, err)
	return s
}

// yesNoSurvey แบบประเมิน 1 หมวด คำถาม YES_NO 4 ข้อ ข้อละ 25 คะแนน เฉลย YES
func yesNoSurvey(t *testing.T, passingScore float64) *Survey {
	t.Helper()
	s := newDraftSurvey(t, passingScore)
	questions := make([]Question, 0, 4)
	for _, id := range []string{"yn1", "yn2", "yn3", "yn4"} {
		questions = append(questions, Question{
			QuestionID:     id,
			Text:           "มีการปฏิบัติตามข้อกำหนด " + id,
			Type:           YesNo,
			Points:         25,
			Required:       true,
			CorrectAnswers: []string{"YES"},
		})
	}
	_, err := s.AddSection(Section{SectionID: "sec-cult", Title: "การปลูก", Category: CategoryCultivation, Questions: questions})
	require.NoError(t, err)
	return s
}

// responseSurvey แบบประเมินสองหมวด (หมวดแรกบังคับ) รวม 4 ข้อ ข้อละ 10 คะแนน
func responseSurvey(t *testing.T) *Survey {
	t.Helper()
	s := newDraftSurvey(t, 70)
	_, err := s.AddSection(Section{
		SectionID:  "s1",
		Title:      "การปลูก",
		Category:   CategoryCultivation,
		IsRequired: true,
		Questions: []Question{
			{QuestionID: "q1", Text: "ตรวจวิเคราะห์ดินก่อนปลูกหรือไม่", Type: YesNo, Points: 10, Required: true, CorrectAnswers: []string{"YES"}},
			{QuestionID: "q2", Text: "ความพร้อมของแหล่งน้ำ", Type: Rating, Points: 10},
		},
	})
	require.NoError(t, err)
	_, err = s.AddSection(Section{
		SectionID: "s2",
		Title:     "เอกสาร",
		Category:  CategoryDocumentation,
		Questions: []Question{
			{QuestionID: "q3", Text: "อธิบายระบบบันทึกข้อมูล", Type: Text, Points: 10, RequiresEvidence: true},
			{QuestionID: "q4", Text: "ความชื้นหลังทำแห้ง (%)", Type: Numeric, Points: 10, Validation: QuestionValidation{TargetValue: ptr(7)}},
		},
	})
	require.NoError(t, err)
	return s
}

func recordAnswer(t *testing.T, r *SurveyResponse, s *Survey, questionID string, input AnswerInput) []string {
	t.Helper()
	info, _, ok := s.FindQuestion(questionID)
	require.True(t, ok, "question %s not found", questionID)
	warnings, err := r.RecordAnswer(questionID, input, info)
	require.NoError(t, err)
	return warnings
}

func startedResponse(t *testing.T, s *Survey) *SurveyResponse {
	t.Helper()
	r := NewSurveyResponse(s.SurveyID, "farmer-01")
	require.NoError(t, r.StartResponse(s))
	return r
}
