package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

var validate = validator.New()

// Validator คืน validator ตัวเดียวกับที่ models ใช้ ให้ controller ตรวจ DTO ได้
func Validator() *validator.Validate {
	return validate
}

// ValidateStruct ตรวจ struct ตาม validate tag แล้วคืน ValidationError (nil = ผ่าน)
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("ข้อมูล %s ไม่ถูกต้อง (%s)", fe.Namespace(), fe.Tag()))
	}
	return NewValidationError(msgs...)
}

// AnswerInput ข้อมูลคำตอบที่ผู้ตอบส่งเข้ามาหนึ่งข้อ
type AnswerInput struct {
	Value         interface{}  `json:"value"`
	Type          QuestionType `json:"type,omitempty"`
	Confidence    *float64     `json:"confidence,omitempty" validate:"omitempty,gte=0,lte=1"`
	Notes         string       `json:"notes,omitempty" validate:"max=2000"`
	EvidenceFiles []string     `json:"evidenceFiles,omitempty" validate:"omitempty,dive,required"`
	TimeToAnswer  int          `json:"timeToAnswer,omitempty" validate:"gte=0"`
}

// ValidateAnswer ตรวจคำตอบตามกฎของคำถาม คืนรายการข้อความผิดพลาด (ว่าง = ผ่าน)
func ValidateAnswer(input AnswerInput, info QuestionInfo) []string {
	q := info.Question
	var msgs []string

	if err := validate.Struct(input); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				msgs = append(msgs, answerFieldMessage(fe))
			}
		} else {
			msgs = append(msgs, err.Error())
		}
	}
	if input.Type != "" && input.Type != q.Type {
		msgs = append(msgs, fmt.Sprintf("ชนิดคำตอบ %s ไม่ตรงกับชนิดคำถาม %s", input.Type, q.Type))
	}

	if !isAnswered(input.Value) {
		if q.Required {
			msgs = append(msgs, "กรุณาตอบคำถามข้อนี้")
		}
		return msgs
	}

	switch q.Type {
	case MultipleChoice:
		msgs = append(msgs, validateChoice(input.Value, q.Options)...)
	case YesNo:
		if _, ok := normalizeYesNo(input.Value); !ok {
			msgs = append(msgs, "คำตอบต้องเป็น ใช่ (YES) หรือ ไม่ใช่ (NO)")
		}
	case Rating, Numeric:
		value, ok := finiteNumber(input.Value)
		if !ok {
			msgs = append(msgs, "คำตอบต้องเป็นตัวเลข")
			break
		}
		if q.Validation.MinValue != nil && value < *q.Validation.MinValue {
			msgs = append(msgs, fmt.Sprintf("ค่าต้องไม่น้อยกว่า %v", *q.Validation.MinValue))
		}
		if q.Validation.MaxValue != nil && value > *q.Validation.MaxValue {
			msgs = append(msgs, fmt.Sprintf("ค่าต้องไม่มากกว่า %v", *q.Validation.MaxValue))
		}
	case Text:
		text := answerText(input.Value)
		length := utf8.RuneCountInString(text)
		if q.Validation.MinLength > 0 && length < q.Validation.MinLength {
			msgs = append(msgs, fmt.Sprintf("ข้อความต้องยาวอย่างน้อย %d ตัวอักษร", q.Validation.MinLength))
		}
		if q.Validation.MaxLength > 0 && length > q.Validation.MaxLength {
			msgs = append(msgs, fmt.Sprintf("ข้อความต้องยาวไม่เกิน %d ตัวอักษร", q.Validation.MaxLength))
		}
		if strings.EqualFold(q.Validation.Format, "email") && validate.Var(text, "email") != nil {
			msgs = append(msgs, "รูปแบบอีเมลไม่ถูกต้อง")
		}
	}
	return msgs
}

func validateChoice(value interface{}, options []string) []string {
	if len(options) == 0 {
		return nil
	}
	var selected []string
	if isSliceAnswer(value) {
		selected = cast.ToStringSlice(sliceAnswer(value))
	} else {
		selected = []string{answerText(value)}
	}
	var msgs []string
	for _, s := range selected {
		if !containsFold(options, s) {
			msgs = append(msgs, "ตัวเลือกไม่ถูกต้อง: "+s)
		}
	}
	return msgs
}

func answerFieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.Index(name, "["); i >= 0 {
		name = name[:i]
	}
	switch name {
	case "Confidence":
		return "ค่าความมั่นใจต้องอยู่ระหว่าง 0 ถึง 1"
	case "Notes":
		return "หมายเหตุยาวเกินกำหนด"
	case "EvidenceFiles":
		return "ชื่อไฟล์หลักฐานต้องไม่ว่าง"
	case "TimeToAnswer":
		return "เวลาที่ใช้ตอบต้องไม่ติดลบ"
	}
	return fmt.Sprintf("ข้อมูล %s ไม่ถูกต้อง (%s)", fe.Field(), fe.Tag())
}
