package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ResponseStatus string

const (
	ResponseNotStarted ResponseStatus = "NOT_STARTED"
	ResponseInProgress ResponseStatus = "IN_PROGRESS"
	ResponseCompleted  ResponseStatus = "COMPLETED"
	ResponseSubmitted  ResponseStatus = "SUBMITTED"
	ResponseReviewed   ResponseStatus = "REVIEWED"
)

// certificateEligibleThreshold เปอร์เซ็นต์ขั้นต่ำ (ระดับ SUBSTANTIAL) สำหรับขอใบรับรอง
const certificateEligibleThreshold = 75

// ResponseConfig ค่าตั้งต้นของการตอบแบบประเมิน
type ResponseConfig struct {
	// MinCompletionRate เปอร์เซ็นต์ความครบถ้วนขั้นต่ำก่อนส่งคิดคะแนน
	MinCompletionRate float64
}

// DefaultResponseConfig ค่าตั้งต้นสำหรับ ResponseConfig
func DefaultResponseConfig() ResponseConfig {
	return ResponseConfig{MinCompletionRate: 80}
}

// QualityCheck ตรวจคุณภาพก่อนส่งคำตอบขั้นสุดท้าย คืน error ถ้าไม่ผ่าน
type QualityCheck func(r *SurveyResponse) error

// AnswerRecord คำตอบที่บันทึกไว้หนึ่งข้อ
type AnswerRecord struct {
	QuestionID     string       `bson:"questionId" json:"questionId"`
	SectionID      string       `bson:"sectionId" json:"sectionId"`
	Type           QuestionType `bson:"type" json:"type"`
	Answer         interface{}  `bson:"answer" json:"answer"`
	Confidence     *float64     `bson:"confidence,omitempty" json:"confidence,omitempty"`
	Notes          string       `bson:"notes,omitempty" json:"notes,omitempty"`
	EvidenceFiles  []string     `bson:"evidenceFiles,omitempty" json:"evidenceFiles,omitempty"`
	TimeToAnswer   int          `bson:"timeToAnswer,omitempty" json:"timeToAnswer,omitempty"`
	AnsweredAt     time.Time    `bson:"answeredAt" json:"answeredAt"`
	IsModified     bool         `bson:"isModified" json:"isModified"`
	PreviousAnswer interface{}  `bson:"previousAnswer,omitempty" json:"previousAnswer,omitempty"`
	ModifiedCount  int          `bson:"modifiedCount" json:"modifiedCount"`
}

// SectionProgress ความคืบหน้ารายหมวด (จำนวนคำถามทั้งหมดเป็น snapshot ตอนเริ่มทำ)
type SectionProgress struct {
	SectionID     string          `bson:"sectionId" json:"sectionId"`
	Title         string          `bson:"title" json:"title"`
	Category      SectionCategory `bson:"category" json:"category"`
	Order         int             `bson:"order" json:"order"`
	IsRequired    bool            `bson:"isRequired" json:"isRequired"`
	Answered      int             `bson:"answered" json:"answered"`
	Total         int             `bson:"total" json:"total"`
	Percentage    float64         `bson:"percentage" json:"percentage"`
	StartedAt     *time.Time      `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	LastUpdatedAt *time.Time      `bson:"lastUpdatedAt,omitempty" json:"lastUpdatedAt,omitempty"`
	CompletedAt   *time.Time      `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// Session ช่วงเวลาที่ผู้ตอบเปิดทำแบบประเมิน
type Session struct {
	SessionID string     `bson:"sessionId" json:"sessionId"`
	StartedAt time.Time  `bson:"startedAt" json:"startedAt"`
	EndedAt   *time.Time `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	Duration  int64      `bson:"duration" json:"duration"` // วินาที
}

// AuditEntry บันทึกการเปลี่ยนแปลง (เพิ่มต่อท้ายเท่านั้น)
type AuditEntry struct {
	Timestamp time.Time              `bson:"timestamp" json:"timestamp"`
	Action    string                 `bson:"action" json:"action"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
}

// --- SurveyResponse ---
type SurveyResponse struct {
	ID                  primitive.ObjectID          `bson:"_id,omitempty" json:"-"`
	ResponseID          string                      `bson:"responseId" json:"responseId"`
	SurveyID            string                      `bson:"surveyId" json:"surveyId"`
	SurveyVersion       string                      `bson:"surveyVersion" json:"surveyVersion"`
	RespondentID        string                      `bson:"respondentId" json:"respondentId"`
	Status              ResponseStatus              `bson:"status" json:"status"`
	Answers             map[string]AnswerRecord     `bson:"answers" json:"answers"`
	SectionProgress     map[string]*SectionProgress `bson:"sectionProgress" json:"sectionProgress"`
	OverallProgress     float64                     `bson:"overallProgress" json:"overallProgress"`
	Sessions            []Session                   `bson:"sessions" json:"sessions"`
	TotalTimeSpent      int64                       `bson:"totalTimeSpent" json:"totalTimeSpent"` // วินาที
	Scoring             *ScoringResult              `bson:"scoring,omitempty" json:"scoring"`
	Passed              bool                        `bson:"passed" json:"passed"`
	Grade               string                      `bson:"grade,omitempty" json:"grade,omitempty"`
	CertificateEligible bool                        `bson:"certificateEligible" json:"certificateEligible"`
	Locked              bool                        `bson:"locked" json:"locked"`
	Warnings            []string                    `bson:"warnings,omitempty" json:"warnings,omitempty"`
	ReviewedBy          string                      `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewNotes         string                      `bson:"reviewNotes,omitempty" json:"reviewNotes,omitempty"`
	AuditTrail          []AuditEntry                `bson:"auditTrail" json:"auditTrail"`
	StartedAt           *time.Time                  `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt         *time.Time                  `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	SubmittedAt         *time.Time                  `bson:"submittedAt,omitempty" json:"submittedAt,omitempty"`
	ReviewedAt          *time.Time                  `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	CreatedAt           time.Time                   `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time                   `bson:"updatedAt" json:"updatedAt"`
	Revision            int64                       `bson:"revision" json:"revision"`
}

// NewSurveyResponse สร้างคำตอบใหม่ในสถานะ NOT_STARTED
func NewSurveyResponse(surveyID, respondentID string) *SurveyResponse {
	t := now()
	r := &SurveyResponse{
		ResponseID:      uuid.NewString(),
		SurveyID:        surveyID,
		RespondentID:    respondentID,
		Status:          ResponseNotStarted,
		Answers:         map[string]AnswerRecord{},
		SectionProgress: map[string]*SectionProgress{},
		Sessions:        []Session{},
		AuditTrail:      []AuditEntry{},
		CreatedAt:       t,
		UpdatedAt:       t,
	}
	r.appendAudit("created", map[string]interface{}{"surveyId": surveyID, "respondentId": respondentID})
	return r
}

// StartResponse เริ่มทำแบบประเมิน สร้างตัวติดตามความคืบหน้าตามหมวดของแบบประเมิน ณ ตอนนี้
func (r *SurveyResponse) StartResponse(survey *Survey) error {
	if r.Status != ResponseNotStarted {
		return NewStateTransitionError("startResponse", string(r.Status), "เริ่มทำแบบประเมินได้เฉพาะสถานะยังไม่เริ่ม")
	}
	if survey == nil || survey.SurveyID != r.SurveyID {
		return NewValidationError("แบบประเมินไม่ตรงกับคำตอบนี้")
	}

	r.SectionProgress = make(map[string]*SectionProgress, len(survey.Sections))
	for _, sec := range survey.Sections {
		r.SectionProgress[sec.SectionID] = &SectionProgress{
			SectionID:  sec.SectionID,
			Title:      sec.Title,
			Category:   sec.Category,
			Order:      sec.Order,
			IsRequired: sec.IsRequired,
			Total:      len(sec.Questions),
		}
	}

	t := now()
	r.SurveyVersion = survey.Version
	r.Status = ResponseInProgress
	r.StartedAt = &t
	r.openSession(t)
	r.OverallProgress = 0
	r.touch(t)
	r.appendAudit("started", map[string]interface{}{
		"surveyVersion": survey.Version,
		"sections":      len(survey.Sections),
		"questions":     survey.TotalQuestions,
	})
	return nil
}

// RecordAnswer บันทึกคำตอบหนึ่งข้อ (ตอบซ้ำได้ คำตอบล่าสุดมีผล) คืนคำเตือนที่ไม่ทำให้ล้มเหลว
func (r *SurveyResponse) RecordAnswer(questionID string, input AnswerInput, info QuestionInfo) ([]string, error) {
	if r.Status != ResponseInProgress {
		return nil, NewStateTransitionError("recordAnswer", string(r.Status), "ไม่สามารถบันทึกคำตอบในสถานะนี้")
	}
	if questionID == "" || info.Question.QuestionID != questionID {
		return nil, NewValidationError("รหัสคำถามไม่ตรงกับข้อมูลคำถาม")
	}
	progress, ok := r.SectionProgress[info.SectionID]
	if !ok {
		return nil, NewValidationError("ไม่พบหมวดของคำถามในแบบประเมินที่เริ่มทำ: " + info.SectionID)
	}
	if msgs := ValidateAnswer(input, info); len(msgs) > 0 {
		return nil, NewValidationError(msgs...)
	}

	t := now()
	record := AnswerRecord{
		QuestionID:    questionID,
		SectionID:     info.SectionID,
		Type:          info.Question.Type,
		Answer:        input.Value,
		Confidence:    input.Confidence,
		Notes:         input.Notes,
		EvidenceFiles: input.EvidenceFiles,
		TimeToAnswer:  input.TimeToAnswer,
		AnsweredAt:    t,
	}
	prev, existed := r.Answers[questionID]
	if existed {
		record.IsModified = true
		record.PreviousAnswer = prev.Answer
		record.ModifiedCount = prev.ModifiedCount + 1
	}
	if r.Answers == nil {
		r.Answers = map[string]AnswerRecord{}
	}
	r.Answers[questionID] = record

	r.recountSection(progress, t)
	r.recalculateOverall()

	var warnings []string
	if info.Question.RequiresEvidence && len(input.EvidenceFiles) == 0 {
		w := fmt.Sprintf("คำถาม %s ต้องแนบหลักฐานประกอบ", questionID)
		warnings = append(warnings, w)
		r.Warnings = appendUnique(r.Warnings, w)
	}

	r.touch(t)
	auditData := map[string]interface{}{
		"questionId": questionID,
		"sectionId":  info.SectionID,
		"modified":   existed,
	}
	if existed {
		auditData["previousAnswer"] = prev.Answer
	}
	r.appendAudit("answer_recorded", auditData)
	return warnings, nil
}

// CompleteResponse ตรวจความครบถ้วน คิดคะแนน แล้วปิดการแก้ไขคำตอบ
func (r *SurveyResponse) CompleteResponse(survey *Survey, cfg ResponseConfig) (*ScoringResult, error) {
	switch r.Status {
	case ResponseCompleted, ResponseSubmitted, ResponseReviewed:
		return nil, NewStateTransitionError("completeResponse", string(r.Status), "แบบประเมินนี้ทำเสร็จแล้ว")
	case ResponseNotStarted:
		return nil, NewStateTransitionError("completeResponse", string(r.Status), "ยังไม่ได้เริ่มทำแบบประเมิน")
	}
	if survey == nil || survey.SurveyID != r.SurveyID {
		return nil, NewValidationError("แบบประเมินไม่ตรงกับคำตอบนี้")
	}
	if msgs := r.ValidateCompletion(cfg); len(msgs) > 0 {
		return nil, NewValidationError(msgs...)
	}

	score, err := survey.CalculateResponseScore(r.questionResponses())
	if err != nil {
		return nil, err
	}

	t := now()
	r.closeSession(t)
	r.TotalTimeSpent = r.sumSessionTime()
	r.Scoring = score
	r.Passed = score.Passed
	r.Grade = score.Grade
	r.CertificateEligible = score.Passed && score.Percentage >= certificateEligibleThreshold
	r.Status = ResponseCompleted
	r.CompletedAt = &t
	r.touch(t)
	r.appendAudit("completed", map[string]interface{}{
		"percentage":      score.Percentage,
		"passed":          score.Passed,
		"complianceLevel": string(score.ComplianceLevel),
		"totalTimeSpent":  r.TotalTimeSpent,
	})
	return score, nil
}

// ValidateCompletion คืนรายการเหตุผลที่ยังส่งคิดคะแนนไม่ได้ (ว่าง = พร้อม)
func (r *SurveyResponse) ValidateCompletion(cfg ResponseConfig) []string {
	minRate := cfg.MinCompletionRate
	if minRate <= 0 {
		minRate = DefaultResponseConfig().MinCompletionRate
	}
	var msgs []string
	if r.OverallProgress < minRate {
		msgs = append(msgs, fmt.Sprintf("ตอบแล้ว %.2f%% ต้องตอบอย่างน้อย %.0f%%", r.OverallProgress, minRate))
	}
	for _, p := range r.orderedProgress() {
		if p.IsRequired && p.Percentage < 100 {
			msgs = append(msgs, fmt.Sprintf("หมวดบังคับ \"%s\" ตอบแล้ว %.2f%% ต้องตอบครบ 100%%", p.Title, p.Percentage))
		}
	}
	return msgs
}

// SubmitResponse ส่งคำตอบขั้นสุดท้ายหลังคิดคะแนนแล้ว และล็อกไม่ให้แก้ไข
func (r *SurveyResponse) SubmitResponse(check QualityCheck) error {
	if r.Status == ResponseSubmitted || r.Status == ResponseReviewed {
		return NewStateTransitionError("submitResponse", string(r.Status), "ส่งแบบประเมินนี้แล้ว")
	}
	if r.Status != ResponseCompleted {
		return NewStateTransitionError("submitResponse", string(r.Status), "ต้องทำแบบประเมินให้เสร็จก่อนส่ง")
	}
	if check == nil {
		check = DefaultQualityCheck
	}
	if err := check(r); err != nil {
		r.appendAudit("quality_check_failed", map[string]interface{}{"reason": err.Error()})
		return err
	}

	t := now()
	r.Status = ResponseSubmitted
	r.SubmittedAt = &t
	r.lockResponse()
	r.touch(t)
	r.appendAudit("submitted", map[string]interface{}{"certificateEligible": r.CertificateEligible})
	return nil
}

// MarkReviewed บันทึกผลการตรวจทานจากเจ้าหน้าที่
func (r *SurveyResponse) MarkReviewed(reviewerID, notes string) error {
	if r.Status != ResponseSubmitted {
		return NewStateTransitionError("markReviewed", string(r.Status), "ตรวจทานได้เฉพาะแบบประเมินที่ส่งแล้ว")
	}
	if strings.TrimSpace(reviewerID) == "" {
		return NewValidationError("กรุณาระบุผู้ตรวจทาน")
	}
	t := now()
	r.Status = ResponseReviewed
	r.ReviewedBy = reviewerID
	r.ReviewNotes = notes
	r.ReviewedAt = &t
	r.touch(t)
	r.appendAudit("reviewed", map[string]interface{}{"reviewedBy": reviewerID})
	return nil
}

// PauseSession ปิด session ปัจจุบัน (เช่น ผู้ตอบออกจากหน้าแบบประเมิน)
func (r *SurveyResponse) PauseSession() error {
	if r.Status != ResponseInProgress {
		return NewStateTransitionError("pauseSession", string(r.Status), "พักการทำได้เฉพาะระหว่างทำแบบประเมิน")
	}
	t := now()
	if !r.closeSession(t) {
		return nil
	}
	r.TotalTimeSpent = r.sumSessionTime()
	r.touch(t)
	r.appendAudit("session_paused", nil)
	return nil
}

// ResumeSession เปิด session ใหม่ถ้ายังไม่มี session ที่เปิดอยู่
func (r *SurveyResponse) ResumeSession() error {
	if r.Status != ResponseInProgress {
		return NewStateTransitionError("resumeSession", string(r.Status), "ทำต่อได้เฉพาะแบบประเมินที่ยังไม่เสร็จ")
	}
	if r.openSessionIndex() >= 0 {
		return nil
	}
	t := now()
	r.openSession(t)
	r.touch(t)
	r.appendAudit("session_resumed", nil)
	return nil
}

// DefaultQualityCheck ต้องมีผลคะแนนและมีคำตอบอย่างน้อยหนึ่งข้อ
func DefaultQualityCheck(r *SurveyResponse) error {
	if r.Scoring == nil {
		return NewValidationError("ยังไม่มีผลการคิดคะแนน")
	}
	if len(r.Answers) == 0 {
		return NewValidationError("ไม่พบคำตอบในแบบประเมิน")
	}
	return nil
}

func (r *SurveyResponse) lockResponse() {
	r.Locked = true
}

// recountSection นับจำนวนคำตอบของหมวดใหม่จากคำตอบทั้งหมดที่เก็บไว้
func (r *SurveyResponse) recountSection(p *SectionProgress, t time.Time) {
	answered := 0
	for _, a := range r.Answers {
		if a.SectionID == p.SectionID && isAnswered(a.Answer) {
			answered++
		}
	}
	p.Answered = answered
	p.Percentage = percentOf(float64(answered), float64(p.Total))
	if p.StartedAt == nil {
		p.StartedAt = &t
	}
	p.LastUpdatedAt = &t
	if p.Total > 0 && answered >= p.Total {
		if p.CompletedAt == nil {
			p.CompletedAt = &t
		}
	} else {
		p.CompletedAt = nil
	}
}

func (r *SurveyResponse) recalculateOverall() {
	answered, total := 0, 0
	for _, p := range r.SectionProgress {
		answered += p.Answered
		total += p.Total
	}
	r.OverallProgress = percentOf(float64(answered), float64(total))
}

func (r *SurveyResponse) questionResponses() []QuestionResponse {
	out := make([]QuestionResponse, 0, len(r.Answers))
	for id, a := range r.Answers {
		out = append(out, QuestionResponse{QuestionID: id, Answer: a.Answer})
	}
	return out
}

func (r *SurveyResponse) openSession(t time.Time) {
	r.Sessions = append(r.Sessions, Session{SessionID: uuid.NewString(), StartedAt: t})
}

func (r *SurveyResponse) openSessionIndex() int {
	for i := len(r.Sessions) - 1; i >= 0; i-- {
		if r.Sessions[i].EndedAt == nil {
			return i
		}
	}
	return -1
}

// closeSession ปิด session ที่เปิดอยู่ คืน false ถ้าไม่มี session เปิดอยู่
func (r *SurveyResponse) closeSession(t time.Time) bool {
	i := r.openSessionIndex()
	if i < 0 {
		return false
	}
	end := t
	r.Sessions[i].EndedAt = &end
	r.Sessions[i].Duration = int64(end.Sub(r.Sessions[i].StartedAt).Seconds())
	return true
}

func (r *SurveyResponse) sumSessionTime() int64 {
	var total int64
	for _, s := range r.Sessions {
		total += s.Duration
	}
	return total
}

func (r *SurveyResponse) touch(t time.Time) {
	r.UpdatedAt = t
}

func (r *SurveyResponse) appendAudit(action string, data map[string]interface{}) {
	r.AuditTrail = append(r.AuditTrail, AuditEntry{Timestamp: now(), Action: action, Data: data})
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
