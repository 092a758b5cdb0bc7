package models

import (
	"fmt"
	"time"
)

const (
	minRecommendedPassingScore = 50
	maxRecommendedPassingScore = 95
	minRecommendedQuestions    = 10
	maxRecommendedQuestions    = 100

	// หมวดที่ได้ต่ำกว่าเกณฑ์นี้จะได้รับคำแนะนำ
	recommendationThreshold = 75
	highPriorityThreshold   = 60
)

// SurveyValidationResult ผลตรวจความพร้อมของแบบประเมิน
type SurveyValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

type Recommendation struct {
	Category SectionCategory `bson:"category" json:"category"`
	Priority string          `bson:"priority" json:"priority"`
	Messages []string        `bson:"messages" json:"messages"`
}

// SurveyReport รายงานผลการประเมิน
type SurveyReport struct {
	SurveyID        string           `json:"surveyId"`
	SurveyTitle     string           `json:"surveyTitle"`
	Version         string           `json:"version"`
	GACPStandard    string           `json:"gacpStandard"`
	Score           ScoringResult    `json:"score"`
	Summary         string           `json:"summary"`
	SectionScores   []SectionScore   `json:"sectionScores"`
	CategoryScores  []CategoryScore  `json:"categoryScores"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// recommendationCatalogue ข้อแนะนำมาตรฐานรายหมวด
var recommendationCatalogue = map[SectionCategory][]string{
	CategoryCultivation: {
		"ทบทวนการเลือกพื้นที่ปลูกและประวัติการใช้ที่ดิน",
		"ตรวจสอบคุณภาพน้ำและดินอย่างสม่ำเสมอ",
		"บันทึกการใช้ปุ๋ยและสารป้องกันกำจัดศัตรูพืชทุกครั้ง",
	},
	CategoryHarvesting: {
		"กำหนดช่วงเวลาเก็บเกี่ยวที่เหมาะสมตามระยะการเจริญเติบโต",
		"ทำความสะอาดอุปกรณ์เก็บเกี่ยวก่อนและหลังใช้งาน",
	},
	CategoryPostHarvest: {
		"ควบคุมอุณหภูมิและความชื้นระหว่างการทำแห้ง",
		"แยกวัตถุดิบที่ไม่ได้มาตรฐานออกก่อนการแปรรูป",
	},
	CategoryStorage: {
		"จัดเก็บในพื้นที่ที่ป้องกันสัตว์พาหะและความชื้นได้",
		"ติดฉลากและบันทึกรุ่นการผลิตให้ตรวจสอบย้อนกลับได้",
	},
	CategoryQualityControl: {
		"ส่งตัวอย่างตรวจวิเคราะห์สารปนเปื้อนและโลหะหนัก",
		"จัดทำแผนควบคุมคุณภาพและทบทวนผลทุกรอบการผลิต",
	},
	CategoryDocumentation: {
		"จัดทำและเก็บรักษาเอกสารบันทึกการปฏิบัติงานให้ครบถ้วน",
		"ฝึกอบรมผู้ปฏิบัติงานเรื่องการบันทึกข้อมูลตามมาตรฐาน GACP",
	},
}

const maintainRecommendation = "รักษามาตรฐานการปฏิบัติงานปัจจุบันและเตรียมพร้อมสำหรับการตรวจประเมิน"

// GenerateSurveyReport คิดคะแนนแล้วประกอบรายงานพร้อมข้อแนะนำรายหมวด
func (s *Survey) GenerateSurveyReport(responses []QuestionResponse) (*SurveyReport, error) {
	score, err := s.CalculateResponseScore(responses)
	if err != nil {
		return nil, err
	}
	return s.BuildReport(score), nil
}

// BuildReport ประกอบรายงานจากผลคะแนนที่คำนวณไว้แล้ว
func (s *Survey) BuildReport(score *ScoringResult) *SurveyReport {
	report := &SurveyReport{
		SurveyID:        s.SurveyID,
		SurveyTitle:     s.Title,
		Version:         s.Version,
		GACPStandard:    s.GACPStandard,
		Score:           *score,
		SectionScores:   score.SectionScores,
		CategoryScores:  score.CategoryScores,
		Recommendations: []Recommendation{},
		GeneratedAt:     now(),
	}

	status := "ไม่ผ่าน"
	if score.Passed {
		status = "ผ่าน"
	}
	report.Summary = fmt.Sprintf("ได้คะแนน %.2f จาก %.2f (%.2f%%) ระดับ %s ผลการประเมิน: %s (เกณฑ์ผ่าน %.0f%%)",
		score.TotalScore, score.TotalPossibleScore, score.Percentage, score.ComplianceLevel, status, score.PassingScore)

	for _, cs := range score.CategoryScores {
		if cs.Percentage >= recommendationThreshold {
			continue
		}
		priority := "MEDIUM"
		if cs.Percentage < highPriorityThreshold {
			priority = "HIGH"
		}
		report.Recommendations = append(report.Recommendations, Recommendation{
			Category: cs.Category,
			Priority: priority,
			Messages: recommendationCatalogue[cs.Category],
		})
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = append(report.Recommendations, Recommendation{
			Priority: "LOW",
			Messages: []string{maintainRecommendation},
		})
	}
	return report
}

// ValidateSurveyCompletion ตรวจโครงสร้างก่อนเผยแพร่ ข้อผิดพลาดเชิงโครงสร้างเท่านั้นที่ทำให้ไม่ผ่าน
func (s *Survey) ValidateSurveyCompletion() SurveyValidationResult {
	result := SurveyValidationResult{Errors: []string{}, Warnings: []string{}}

	if len(s.Sections) == 0 {
		result.Errors = append(result.Errors, "แบบประเมินต้องมีอย่างน้อย 1 หมวด")
	}
	for _, sec := range s.Sections {
		if len(sec.Questions) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("หมวด \"%s\" ต้องมีอย่างน้อย 1 คำถาม", sec.Title))
		}
	}

	if s.PassingScore < minRecommendedPassingScore || s.PassingScore > maxRecommendedPassingScore {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("เกณฑ์ผ่าน %.0f%% อยู่นอกช่วงที่แนะนำ (%d-%d%%)", s.PassingScore, minRecommendedPassingScore, maxRecommendedPassingScore))
	}
	if s.TotalQuestions < minRecommendedQuestions || s.TotalQuestions > maxRecommendedQuestions {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("จำนวนคำถาม %d ข้อ อยู่นอกช่วงที่แนะนำ (%d-%d ข้อ)", s.TotalQuestions, minRecommendedQuestions, maxRecommendedQuestions))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
