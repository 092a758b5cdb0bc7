package models

import "math"

const maxPageLimit = 100

// PaginationParams ใช้เก็บค่าการแบ่งหน้า และเรียงลำดับ
type PaginationParams struct {
	Page   int    `json:"page" query:"page" example:"1"`            // หมายเลขหน้าที่ต้องการ
	Limit  int    `json:"limit" query:"limit" example:"10"`         // จำนวนรายการต่อหน้า
	Status string `json:"status" query:"status" example:"ACTIVE"`   // กรองตามสถานะ (Optional)
	SortBy string `json:"sortBy" query:"sortBy" example:"createdAt"` // ฟิลด์ที่ใช้เรียงลำดับ
	Order  string `json:"order" query:"order" example:"desc"`       // ทิศทางการเรียง (asc/desc)
}

// PaginatedResponse โครงสร้างการตอบกลับแบบแบ่งหน้า
type PaginatedResponse struct {
	Data        interface{} `json:"data"`
	Total       int64       `json:"total"`
	Page        int         `json:"page"`
	Limit       int         `json:"limit"`
	TotalPages  int         `json:"totalPages"`
	HasNext     bool        `json:"hasNext"`
	HasPrevious bool        `json:"hasPrevious"`
}

// DefaultPagination ค่าตั้งต้นสำหรับ Pagination
func DefaultPagination() PaginationParams {
	return PaginationParams{
		Page:   1,
		Limit:  10,
		SortBy: "createdAt",
		Order:  "desc",
	}
}

// Normalize ปรับค่าที่ไม่ถูกต้องให้เป็นค่าตั้งต้น และจำกัดฟิลด์เรียงลำดับตาม allowed
func (p *PaginationParams) Normalize(allowed ...string) {
	def := DefaultPagination()
	if p.Page < 1 {
		p.Page = def.Page
	}
	if p.Limit < 1 {
		p.Limit = def.Limit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	if p.Order != "asc" {
		p.Order = "desc"
	}
	ok := false
	for _, f := range allowed {
		if f == p.SortBy {
			ok = true
			break
		}
	}
	if !ok {
		p.SortBy = def.SortBy
	}
}

// NewPaginatedResponse สร้าง PaginatedResponse ใหม่
func NewPaginatedResponse(data interface{}, total int64, params PaginationParams) *PaginatedResponse {
	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))

	return &PaginatedResponse{
		Data:        data,
		Total:       total,
		Page:        params.Page,
		Limit:       params.Limit,
		TotalPages:  totalPages,
		HasNext:     params.Page < totalPages,
		HasPrevious: params.Page > 1,
	}
}

// GetSkip คำนวณจำนวนรายการที่ต้องข้าม
func (p *PaginationParams) GetSkip() int64 {
	return int64((p.Page - 1) * p.Limit)
}

// GetSortOrder 1 = asc, -1 = desc
func (p *PaginationParams) GetSortOrder() int {
	if p.Order == "asc" {
		return 1
	}
	return -1
}
