package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeResponseSubmitted = "response:submitted"

// ResponseSubmittedPayload ข้อมูลสรุปของคำตอบที่ส่งแล้ว ใช้แจ้งผู้ตรวจ
type ResponseSubmittedPayload struct {
	ResponseID          string    `json:"responseId"`
	SurveyID            string    `json:"surveyId"`
	SurveyTitle         string    `json:"surveyTitle"`
	RespondentID        string    `json:"respondentId"`
	Percentage          float64   `json:"percentage"`
	Passed              bool      `json:"passed"`
	ComplianceLevel     string    `json:"complianceLevel"`
	Grade               string    `json:"grade"`
	CertificateEligible bool      `json:"certificateEligible"`
	Warnings            []string  `json:"warnings,omitempty"`
	SubmittedAt         time.Time `json:"submittedAt"`
}

func NewResponseSubmittedTask(p ResponseSubmittedPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeResponseSubmitted, b), nil
}

// ResponseSubmittedTaskID ใช้เป็น asynq.TaskID กันการส่งงานซ้ำของคำตอบเดียวกัน
func ResponseSubmittedTaskID(responseID string) string {
	return "response-submitted-" + responseID
}
