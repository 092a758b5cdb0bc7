package fixtures

import (
	"testing"

	"Backend-GACP-Survey/src/models"

	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

// SurveyRequest แบบประเมิน GACP สองหมวด รวม 4 ข้อ ข้อละ 10 คะแนน เกณฑ์ผ่าน 70%
//
//	s-cult (บังคับ): q-soil YES_NO เฉลย YES, q-water RATING 1-5
//	s-doc: q-record TEXT ต้องแนบหลักฐาน, q-moisture NUMERIC เป้าหมาย 7
func SurveyRequest() models.CreateSurveyRequest {
	return models.CreateSurveyRequest{
		Title:        "แบบประเมินมาตรฐาน GACP พืชสมุนไพร",
		Description:  "ตรวจประเมินแปลงปลูกก่อนขอใบรับรอง",
		Version:      "2.1",
		GACPStandard: "GACP-TH-2024",
		PassingScore: 70,
		Sections: []models.Section{
			{
				SectionID:  "s-cult",
				Title:      "การปลูก",
				Category:   models.CategoryCultivation,
				IsRequired: true,
				Questions: []models.Question{
					{QuestionID: "q-soil", Text: "มีการตรวจวิเคราะห์ดินก่อนปลูกหรือไม่", Type: models.YesNo, Points: 10, Required: true, CorrectAnswers: []string{"YES"}},
					{QuestionID: "q-water", Text: "ความพร้อมของแหล่งน้ำ", Type: models.Rating, Points: 10},
				},
			},
			{
				SectionID: "s-doc",
				Title:     "เอกสาร",
				Category:  models.CategoryDocumentation,
				Questions: []models.Question{
					{QuestionID: "q-record", Text: "อธิบายระบบบันทึกข้อมูลการผลิต", Type: models.Text, Points: 10, RequiresEvidence: true},
					{QuestionID: "q-moisture", Text: "ความชื้นหลังทำแห้ง (%)", Type: models.Numeric, Points: 10, Validation: models.QuestionValidation{TargetValue: float(7)}},
				},
			},
		},
	}
}

// ActiveSurvey แบบประเมินจาก SurveyRequest ที่เปิดใช้งานแล้ว
func ActiveSurvey(t *testing.T) *models.Survey {
	t.Helper()
	req := SurveyRequest()
	survey, err := models.NewSurvey(req.Title, req.Description, req.Version, req.GACPStandard, req.PassingScore, "admin-01")
	require.NoError(t, err)
	for _, sec := range req.Sections {
		_, err := survey.AddSection(sec)
		require.NoError(t, err)
	}
	require.NoError(t, survey.Activate())
	return survey
}

// FullMarks คำตอบที่ได้คะแนนเต็มทุกข้อ
func FullMarks() map[string]models.AnswerInput {
	return map[string]models.AnswerInput{
		"q-soil":     {Value: "YES"},
		"q-water":    {Value: 5},
		"q-record":   {Value: "บันทึกการปลูกทุกวันในสมุดบันทึก", EvidenceFiles: []string{"logbook.pdf"}},
		"q-moisture": {Value: 7},
	}
}
