package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// now ใช้ร่วมกันทั้ง package เพื่อให้ test กำหนดเวลาได้
var now = func() time.Time { return time.Now().UTC() }

type SurveyStatus string

const (
	SurveyDraft    SurveyStatus = "DRAFT"
	SurveyActive   SurveyStatus = "ACTIVE"
	SurveyInactive SurveyStatus = "INACTIVE"
	SurveyArchived SurveyStatus = "ARCHIVED"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "MULTIPLE_CHOICE"
	YesNo          QuestionType = "YES_NO"
	Rating         QuestionType = "RATING"
	Numeric        QuestionType = "NUMERIC"
	Text           QuestionType = "TEXT"
)

type SectionCategory string

const (
	CategoryCultivation    SectionCategory = "CULTIVATION"
	CategoryHarvesting     SectionCategory = "HARVESTING"
	CategoryPostHarvest    SectionCategory = "POST_HARVEST"
	CategoryStorage        SectionCategory = "STORAGE"
	CategoryQualityControl SectionCategory = "QUALITY_CONTROL"
	CategoryDocumentation  SectionCategory = "DOCUMENTATION"
)

// SectionCategories หมวดตามมาตรฐาน GACP (เรียงตามขั้นตอนการผลิต)
var SectionCategories = []SectionCategory{
	CategoryCultivation,
	CategoryHarvesting,
	CategoryPostHarvest,
	CategoryStorage,
	CategoryQualityControl,
	CategoryDocumentation,
}

func (c SectionCategory) IsValid() bool {
	for _, v := range SectionCategories {
		if v == c {
			return true
		}
	}
	return false
}

func (t QuestionType) IsValid() bool {
	switch t {
	case MultipleChoice, YesNo, Rating, Numeric, Text:
		return true
	}
	return false
}

const (
	DefaultSectionWeight    = 1.0
	DefaultNumericTolerance = 0.1
	DefaultRatingMin        = 1.0
	DefaultRatingMax        = 5.0
)

// --- Survey ---
type Survey struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	SurveyID           string             `bson:"surveyId" json:"surveyId"`
	Title              string             `bson:"title" json:"title"`
	Description        string             `bson:"description" json:"description"`
	Version            string             `bson:"version" json:"version"`
	GACPStandard       string             `bson:"gacpStandard" json:"gacpStandard"`
	Status             SurveyStatus       `bson:"status" json:"status"`
	PassingScore       float64            `bson:"passingScore" json:"passingScore"`
	Sections           []Section          `bson:"sections" json:"sections"`
	TotalQuestions     int                `bson:"totalQuestions" json:"totalQuestions"`
	TotalPossibleScore float64            `bson:"totalPossibleScore" json:"totalPossibleScore"`
	CreatedBy          string             `bson:"createdBy" json:"createdBy"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	LastModified       time.Time          `bson:"lastModified" json:"lastModified"`
	Revision           int64              `bson:"revision" json:"revision"`
}

// --- Section ---
type Section struct {
	SectionID   string          `bson:"sectionId" json:"sectionId"`
	Title       string          `bson:"title" json:"title" validate:"required"`
	Description string          `bson:"description" json:"description"`
	Category    SectionCategory `bson:"category" json:"category" validate:"required"`
	Weight      float64         `bson:"weight" json:"weight" validate:"gte=0"`
	IsRequired  bool            `bson:"isRequired" json:"isRequired"`
	Order       int             `bson:"order" json:"order"`
	Questions   []Question      `bson:"questions" json:"questions" validate:"dive"`
}

// --- Question ---
type Question struct {
	QuestionID       string             `bson:"questionId" json:"questionId"`
	Text             string             `bson:"text" json:"text" validate:"required"`
	Type             QuestionType       `bson:"type" json:"type" validate:"required"`
	Options          []string           `bson:"options,omitempty" json:"options,omitempty"`
	Points           float64            `bson:"points" json:"points" validate:"gte=0"`
	Required         bool               `bson:"required" json:"required"`
	RequiresEvidence bool               `bson:"requiresEvidence" json:"requiresEvidence"`
	Validation       QuestionValidation `bson:"validation" json:"validation"`
	CorrectAnswers   []string           `bson:"correctAnswers,omitempty" json:"correctAnswers,omitempty"`
	Order            int                `bson:"order" json:"order"`
}

// QuestionValidation ขอบเขตของคำตอบแต่ละชนิด
type QuestionValidation struct {
	MinValue    *float64 `bson:"minValue,omitempty" json:"minValue,omitempty"`
	MaxValue    *float64 `bson:"maxValue,omitempty" json:"maxValue,omitempty"`
	MinLength   int      `bson:"minLength,omitempty" json:"minLength,omitempty"`
	MaxLength   int      `bson:"maxLength,omitempty" json:"maxLength,omitempty"`
	MinWords    int      `bson:"minWords,omitempty" json:"minWords,omitempty"`
	Format      string   `bson:"format,omitempty" json:"format,omitempty"`
	TargetValue *float64 `bson:"targetValue,omitempty" json:"targetValue,omitempty"`
	Tolerance   *float64 `bson:"tolerance,omitempty" json:"tolerance,omitempty"`
}

// QuestionInfo คำถามพร้อมหมวดที่เป็นเจ้าของ ใช้ตอนบันทึกคำตอบ
type QuestionInfo struct {
	SectionID string   `json:"sectionId"`
	Question  Question `json:"question"`
}

// NewSurvey สร้างแบบประเมินใหม่ในสถานะ DRAFT
func NewSurvey(title, description, version, standard string, passingScore float64, createdBy string) (*Survey, error) {
	var errs []string
	if strings.TrimSpace(title) == "" {
		errs = append(errs, "กรุณาระบุชื่อแบบประเมิน")
	}
	if passingScore < 0 || passingScore > 100 {
		errs = append(errs, "เกณฑ์ผ่านต้องอยู่ระหว่าง 0 ถึง 100 เปอร์เซ็นต์")
	}
	if len(errs) > 0 {
		return nil, NewValidationError(errs...)
	}
	if version == "" {
		version = "1.0"
	}
	t := now()
	return &Survey{
		SurveyID:     uuid.NewString(),
		Title:        strings.TrimSpace(title),
		Description:  description,
		Version:      version,
		GACPStandard: standard,
		Status:       SurveyDraft,
		PassingScore: passingScore,
		Sections:     []Section{},
		CreatedBy:    createdBy,
		CreatedAt:    t,
		LastModified: t,
	}, nil
}

// AddSection เพิ่มหมวดพร้อมคำถาม แล้วคำนวณจำนวนคำถามและคะแนนเต็มใหม่ทั้งแบบประเมิน
func (s *Survey) AddSection(section Section) (*Section, error) {
	if err := s.ensureEditable("addSection"); err != nil {
		return nil, err
	}

	var errs []string
	section.Title = strings.TrimSpace(section.Title)
	if section.Title == "" {
		errs = append(errs, "กรุณาระบุชื่อหมวด")
	}
	if !section.Category.IsValid() {
		errs = append(errs, "หมวดหมู่ไม่ถูกต้อง: "+string(section.Category))
	}
	if section.Weight < 0 {
		errs = append(errs, "น้ำหนักของหมวดต้องไม่ติดลบ")
	}
	section.Questions = append([]Question(nil), section.Questions...)
	for i := range section.Questions {
		errs = append(errs, prepareQuestion(&section.Questions[i], i+1)...)
	}
	if len(errs) > 0 {
		return nil, NewValidationError(errs...)
	}

	if section.SectionID == "" {
		section.SectionID = uuid.NewString()
	}
	if s.sectionIndex(section.SectionID) >= 0 {
		return nil, NewValidationError("รหัสหมวดซ้ำ: " + section.SectionID)
	}
	seen := make(map[string]bool, len(section.Questions))
	for _, q := range section.Questions {
		if _, _, exists := s.FindQuestion(q.QuestionID); exists || seen[q.QuestionID] {
			return nil, NewValidationError("รหัสคำถามซ้ำ: " + q.QuestionID)
		}
		seen[q.QuestionID] = true
	}
	if section.Weight == 0 {
		section.Weight = DefaultSectionWeight
	}
	section.Order = len(s.Sections) + 1
	if section.Questions == nil {
		section.Questions = []Question{}
	}

	s.Sections = append(s.Sections, section)
	s.recalculateTotals()
	return &s.Sections[len(s.Sections)-1], nil
}

// AddQuestion เพิ่มคำถามเข้าในหมวดที่มีอยู่แล้ว
func (s *Survey) AddQuestion(sectionID string, question Question) (*Question, error) {
	if err := s.ensureEditable("addQuestion"); err != nil {
		return nil, err
	}
	idx := s.sectionIndex(sectionID)
	if idx < 0 {
		return nil, NewValidationError("ไม่พบหมวด: " + sectionID)
	}
	sec := &s.Sections[idx]
	if errs := prepareQuestion(&question, len(sec.Questions)+1); len(errs) > 0 {
		return nil, NewValidationError(errs...)
	}
	if _, _, ok := s.FindQuestion(question.QuestionID); ok {
		return nil, NewValidationError("รหัสคำถามซ้ำ: " + question.QuestionID)
	}
	sec.Questions = append(sec.Questions, question)
	s.recalculateTotals()
	return &sec.Questions[len(sec.Questions)-1], nil
}

// FindQuestion คืนคำถามและหมวดที่คำถามนั้นอยู่
func (s *Survey) FindQuestion(questionID string) (QuestionInfo, *Section, bool) {
	for i := range s.Sections {
		for _, q := range s.Sections[i].Questions {
			if q.QuestionID == questionID {
				return QuestionInfo{SectionID: s.Sections[i].SectionID, Question: q}, &s.Sections[i], true
			}
		}
	}
	return QuestionInfo{}, nil, false
}

// Activate เปิดใช้งานแบบประเมิน ต้องผ่านการตรวจสอบโครงสร้างและมีคะแนนเต็มมากกว่า 0
func (s *Survey) Activate() error {
	if s.Status != SurveyDraft && s.Status != SurveyInactive {
		return NewStateTransitionError("activate", string(s.Status), "เปิดใช้งานได้เฉพาะแบบประเมินสถานะร่างหรือปิดใช้งาน")
	}
	result := s.ValidateSurveyCompletion()
	if !result.IsValid {
		return NewValidationError(result.Errors...)
	}
	if s.TotalPossibleScore <= 0 {
		return NewValidationError("แบบประเมินต้องมีคะแนนเต็มมากกว่า 0")
	}
	s.Status = SurveyActive
	s.LastModified = now()
	return nil
}

func (s *Survey) Deactivate() error {
	if s.Status != SurveyActive {
		return NewStateTransitionError("deactivate", string(s.Status), "ปิดใช้งานได้เฉพาะแบบประเมินที่เปิดใช้งานอยู่")
	}
	s.Status = SurveyInactive
	s.LastModified = now()
	return nil
}

func (s *Survey) Archive() error {
	if s.Status == SurveyArchived {
		return NewStateTransitionError("archive", string(s.Status), "แบบประเมินถูกจัดเก็บแล้ว")
	}
	s.Status = SurveyArchived
	s.LastModified = now()
	return nil
}

// ensureEditable โครงสร้างแก้ไขได้เฉพาะตอนเป็นร่าง
func (s *Survey) ensureEditable(action string) error {
	if s.Status != SurveyDraft {
		return NewStateTransitionError(action, string(s.Status), "ไม่สามารถแก้ไขโครงสร้างแบบประเมินที่เผยแพร่แล้ว")
	}
	return nil
}

func (s *Survey) sectionIndex(sectionID string) int {
	for i := range s.Sections {
		if s.Sections[i].SectionID == sectionID {
			return i
		}
	}
	return -1
}

func (s *Survey) recalculateTotals() {
	total := 0
	points := 0.0
	for _, sec := range s.Sections {
		total += len(sec.Questions)
		for _, q := range sec.Questions {
			points += q.Points
		}
	}
	s.TotalQuestions = total
	s.TotalPossibleScore = points
	s.LastModified = now()
}

// prepareQuestion ตรวจสอบคำถามตามชนิด และกำหนดรหัส/ลำดับถ้ายังไม่มี
func prepareQuestion(q *Question, order int) []string {
	var errs []string
	label := "คำถามที่ " + strconv.Itoa(order)

	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		errs = append(errs, label+": กรุณาระบุข้อความคำถาม")
	}
	if !q.Type.IsValid() {
		errs = append(errs, label+": ชนิดคำถามไม่ถูกต้อง ("+string(q.Type)+")")
	}
	if q.Points < 0 {
		errs = append(errs, label+": คะแนนต้องไม่ติดลบ")
	}

	switch q.Type {
	case MultipleChoice:
		if len(q.Options) < 2 {
			errs = append(errs, label+": คำถามแบบหลายตัวเลือกต้องมีอย่างน้อย 2 ตัวเลือก")
		}
	case YesNo:
		if len(q.Options) == 0 {
			q.Options = []string{"YES", "NO"}
		}
	case Rating:
		if q.Validation.MinValue == nil && q.Validation.MaxValue == nil {
			min, max := DefaultRatingMin, DefaultRatingMax
			q.Validation.MinValue, q.Validation.MaxValue = &min, &max
		}
		if q.Validation.MinValue == nil || q.Validation.MaxValue == nil ||
			*q.Validation.MinValue >= *q.Validation.MaxValue {
			errs = append(errs, label+": คะแนนต่ำสุดต้องน้อยกว่าคะแนนสูงสุด")
		}
	case Numeric:
		if q.Validation.MinValue != nil && q.Validation.MaxValue != nil &&
			*q.Validation.MinValue > *q.Validation.MaxValue {
			errs = append(errs, label+": ค่าต่ำสุดต้องไม่มากกว่าค่าสูงสุด")
		}
		if q.Validation.Tolerance != nil && *q.Validation.Tolerance < 0 {
			errs = append(errs, label+": ค่าความคลาดเคลื่อนต้องไม่ติดลบ")
		}
	case Text:
		if q.Validation.MaxLength > 0 && q.Validation.MinLength > q.Validation.MaxLength {
			errs = append(errs, label+": ความยาวขั้นต่ำต้องไม่มากกว่าความยาวสูงสุด")
		}
	}

	if q.QuestionID == "" {
		q.QuestionID = uuid.NewString()
	}
	if q.Order == 0 {
		q.Order = order
	}
	return errs
}
