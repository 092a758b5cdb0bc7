package models

// CreateSurveyRequest ข้อมูลสำหรับสร้างแบบประเมิน
type CreateSurveyRequest struct {
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description" validate:"max=2000"`
	Version      string    `json:"version" validate:"max=20"`
	GACPStandard string    `json:"gacpStandard" validate:"max=50"`
	PassingScore float64   `json:"passingScore" validate:"gte=0,lte=100"`
	Sections     []Section `json:"sections" validate:"omitempty,dive"`
}

// ScoreRequest คำตอบที่ส่งมาคิดคะแนนโดยตรง (ไม่ผ่าน SurveyResponse)
type ScoreRequest struct {
	Responses []QuestionResponse `json:"responses" validate:"required,dive"`
}

// StartResponseRequest เริ่มทำแบบประเมิน
type StartResponseRequest struct {
	SurveyID string `json:"surveyId" validate:"required"`
}

// ReviewRequest ผลการตรวจทาน
type ReviewRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// SurveySummary ภาพรวมผลการตอบของแบบประเมินหนึ่งชุด
type SurveySummary struct {
	SurveyID          string                    `json:"surveyId"`
	Title             string                    `json:"title"`
	Status            SurveyStatus              `json:"status"`
	TotalQuestions    int                       `json:"totalQuestions"`
	TotalResponses    int64                     `json:"totalResponses"`
	StatusCounts      map[ResponseStatus]int64  `json:"statusCounts"`
	ScoredResponses   int64                     `json:"scoredResponses"`
	AveragePercentage float64                   `json:"averagePercentage"`
	PassedResponses   int64                     `json:"passedResponses"`
	PassRate          float64                   `json:"passRate"`
	CompletionRate    float64                   `json:"completionRate"`
	ComplianceCounts  map[ComplianceLevel]int64 `json:"complianceCounts"`
}

// ScoreStats สถิติคะแนนที่ได้จาก aggregation
type ScoreStats struct {
	Scored            int64                     `json:"scored" bson:"scored"`
	AveragePercentage float64                   `json:"averagePercentage" bson:"averagePercentage"`
	Passed            int64                     `json:"passed" bson:"passed"`
	ComplianceCounts  map[ComplianceLevel]int64 `json:"complianceCounts" bson:"-"`
}

// RespondentView สำเนาแบบประเมินสำหรับผู้ตอบ ตัดเฉลย ค่าเป้าหมาย และค่าคลาดเคลื่อนออก
func (s *Survey) RespondentView() *Survey {
	view := *s
	view.Sections = make([]Section, len(s.Sections))
	for i, sec := range s.Sections {
		sec.Questions = make([]Question, len(s.Sections[i].Questions))
		for j, q := range s.Sections[i].Questions {
			q.CorrectAnswers = nil
			q.Validation.TargetValue = nil
			q.Validation.Tolerance = nil
			sec.Questions[j] = q
		}
		view.Sections[i] = sec
	}
	return &view
}
