package models

// ErrorResponse โครงสร้างมาตรฐานสำหรับการส่ง Error
type ErrorResponse struct {
	Status  int      `json:"status"`            // HTTP Status Code
	Message string   `json:"message"`           // รายละเอียดของ Error
	Details []string `json:"details,omitempty"` // รายการข้อผิดพลาดย่อย (เช่น validation หลายข้อ)
}
