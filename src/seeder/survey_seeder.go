package seeder

import (
	"context"
	"log"

	"Backend-GACP-Survey/src/models"
)

// SurveyStore ส่วนของ surveys.Service ที่ seeder ใช้
type SurveyStore interface {
	List(ctx context.Context, params models.PaginationParams) (*models.PaginatedResponse, error)
	Create(ctx context.Context, req models.CreateSurveyRequest, createdBy string) (*models.Survey, error)
	Activate(ctx context.Context, surveyID string) (*models.Survey, error)
}

const seedUser = "system-seeder"

// SeedSampleSurveys สร้างแบบประเมินตัวอย่างที่เปิดใช้งานแล้ว เมื่อยังไม่มีแบบประเมินในระบบ
func SeedSampleSurveys(ctx context.Context, store SurveyStore) error {
	page, err := store.List(ctx, models.PaginationParams{Limit: 1})
	if err != nil {
		return err
	}
	if page.Total > 0 {
		log.Println("⚠️ Surveys already exist, skip seeding")
		return nil
	}

	for _, req := range SampleSurveys() {
		survey, err := store.Create(ctx, req, seedUser)
		if err != nil {
			return err
		}
		if _, err := store.Activate(ctx, survey.SurveyID); err != nil {
			return err
		}
		log.Printf("✅ Seeded survey: %s (%d questions)", survey.Title, survey.TotalQuestions)
	}
	return nil
}

func float(v float64) *float64 { return &v }

// SampleSurveys แบบประเมิน GACP ตัวอย่างครบทุกหมวด
func SampleSurveys() []models.CreateSurveyRequest {
	return []models.CreateSurveyRequest{
		{
			Title:        "แบบประเมินตนเองตามมาตรฐาน GACP สมุนไพร",
			Description:  "ใช้ประเมินความพร้อมของแปลงปลูกก่อนยื่นขอรับรอง",
			Version:      "1.0",
			GACPStandard: "WHO-GACP-2003",
			PassingScore: 70,
			Sections: []models.Section{
				{
					SectionID:  "cultivation",
					Title:      "การเพาะปลูก",
					Category:   models.CategoryCultivation,
					IsRequired: true,
					Weight:     1.5,
					Questions: []models.Question{
						{QuestionID: "cult-soil-test", Text: "มีผลวิเคราะห์ดินและน้ำก่อนปลูกหรือไม่", Type: models.YesNo, Points: 10, Required: true, CorrectAnswers: []string{"YES"}, RequiresEvidence: true},
						{QuestionID: "cult-seed-source", Text: "แหล่งที่มาของเมล็ดพันธุ์", Type: models.MultipleChoice, Points: 10, Required: true,
							Options: []string{"ผู้ผลิตที่ได้รับรอง", "เก็บเมล็ดเอง", "ไม่ทราบแหล่งที่มา"}, CorrectAnswers: []string{"ผู้ผลิตที่ได้รับรอง"}},
						{QuestionID: "cult-pest", Text: "ระดับการจัดการศัตรูพืชแบบผสมผสาน", Type: models.Rating, Points: 10},
					},
				},
				{
					SectionID: "harvesting",
					Title:     "การเก็บเกี่ยว",
					Category:  models.CategoryHarvesting,
					Questions: []models.Question{
						{QuestionID: "harv-timing", Text: "เก็บเกี่ยวตามระยะที่มีสารสำคัญสูงสุดหรือไม่", Type: models.YesNo, Points: 10, CorrectAnswers: []string{"YES"}},
						{QuestionID: "harv-tools", Text: "อธิบายการทำความสะอาดอุปกรณ์เก็บเกี่ยว", Type: models.Text, Points: 5, Validation: models.QuestionValidation{MinWords: 5}},
					},
				},
				{
					SectionID: "post-harvest",
					Title:     "การจัดการหลังการเก็บเกี่ยว",
					Category:  models.CategoryPostHarvest,
					Questions: []models.Question{
						{QuestionID: "post-moisture", Text: "ความชื้นของวัตถุดิบหลังทำแห้ง (%)", Type: models.Numeric, Points: 10,
							Validation: models.QuestionValidation{MinValue: float(0), MaxValue: float(100), TargetValue: float(10), Tolerance: float(2)}},
					},
				},
				{
					SectionID: "storage",
					Title:     "การเก็บรักษา",
					Category:  models.CategoryStorage,
					Questions: []models.Question{
						{QuestionID: "store-separate", Text: "แยกเก็บวัตถุดิบจากสารเคมีและปุ๋ยหรือไม่", Type: models.YesNo, Points: 10, CorrectAnswers: []string{"YES"}},
					},
				},
				{
					SectionID: "quality",
					Title:     "การควบคุมคุณภาพ",
					Category:  models.CategoryQualityControl,
					Questions: []models.Question{
						{QuestionID: "qc-lab", Text: "ส่งตรวจโลหะหนักและสารตกค้างทุกรอบการผลิตหรือไม่", Type: models.YesNo, Points: 10, CorrectAnswers: []string{"YES"}, RequiresEvidence: true},
					},
				},
				{
					SectionID:  "documentation",
					Title:      "การบันทึกข้อมูล",
					Category:   models.CategoryDocumentation,
					IsRequired: true,
					Questions: []models.Question{
						{QuestionID: "doc-contact", Text: "อีเมลผู้รับผิดชอบเอกสาร", Type: models.Text, Points: 5, Required: true, Validation: models.QuestionValidation{Format: "email"}},
						{QuestionID: "doc-records", Text: "ความครบถ้วนของสมุดบันทึกการผลิต", Type: models.Rating, Points: 10, Required: true, RequiresEvidence: true},
					},
				},
			},
		},
	}
}
