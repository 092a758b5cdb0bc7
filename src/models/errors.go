package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound ไม่พบข้อมูลที่ร้องขอ
	ErrNotFound = errors.New("ไม่พบข้อมูลที่ร้องขอ")
	// ErrRevisionConflict เอกสารถูกแก้ไขโดยผู้อื่นก่อนหน้า ต้องโหลดใหม่แล้วลองอีกครั้ง
	ErrRevisionConflict = errors.New("ข้อมูลถูกแก้ไขโดยผู้ใช้อื่น กรุณาโหลดข้อมูลใหม่แล้วลองอีกครั้ง")
)

// ValidationError ข้อผิดพลาดจากการตรวจสอบข้อมูล (อาจมีหลายข้อความ)
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	if len(e.Messages) == 0 {
		return "ข้อมูลไม่ถูกต้อง"
	}
	return strings.Join(e.Messages, ", ")
}

// StateTransitionError เรียกใช้งานในสถานะที่ไม่อนุญาต
type StateTransitionError struct {
	Action  string
	Current string
	Message string
}

func (e *StateTransitionError) Error() string {
	return fmt.Sprintf("%s (action=%s, status=%s)", e.Message, e.Action, e.Current)
}

func NewStateTransitionError(action, current, message string) *StateTransitionError {
	return &StateTransitionError{Action: action, Current: current, Message: message}
}

// IsValidationError ตรวจว่า err เป็น ValidationError หรือไม่
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStateTransitionError ตรวจว่า err เป็น StateTransitionError หรือไม่
func IsStateTransitionError(err error) bool {
	var se *StateTransitionError
	return errors.As(err, &se)
}
