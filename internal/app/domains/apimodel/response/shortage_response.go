package response

import "time"

// ShortageResponse 短缺响应（DTO）
type ShortageResponse struct {
	ID                string     `json:"id"`
	HospitalID        string     `json:"hospital_id"`
	MedicineName      string     `json:"medicine_name"`
	GenericName       string     `json:"generic_name,omitempty"`
	QuantityNeeded    int64      `json:"quantity_needed"`
	QuantityAvailable int64      `json:"quantity_available"`
	Unit              string     `json:"unit"`
	UrgencyLevel      string     `json:"urgency_level"`
	Status            string     `json:"status"`
	Description       string     `json:"description,omitempty"`
	ContactEmail      string     `json:"contact_email,omitempty"`
	EstimatedFunding  *string    `json:"estimated_funding"`
	FundingCurrency   string     `json:"funding_currency"`
	CostPerUnit       *string    `json:"cost_per_unit,omitempty"`
	FundingNote       string     `json:"funding_note,omitempty"`
	ExpirationDate    *time.Time `json:"expiration_date,omitempty"`
	CreatedBy         string     `json:"created_by,omitempty"`
	UpdatedBy         string     `json:"updated_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// MedicineResponse 医院药品视图
type MedicineResponse struct {
	ShortageID   string `json:"shortage_id"`
	Medicine     string `json:"medicine"`
	Available    int64  `json:"available"`
	Needed       int64  `json:"needed"`
	Lack         int64  `json:"lack"`
	Unit         string `json:"unit"`
	UrgencyLevel string `json:"urgency_level"`
	Status       string `json:"status"`
}

// CancelShortageResponse 取消短缺响应
type CancelShortageResponse struct {
	ShortageID       string `json:"shortage_id"`
	Status           string `json:"status"`
	AlreadyCancelled bool   `json:"already_cancelled"`
}

// ImportRejection 导入失败的文档
type ImportRejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// ImportReportResponse 导入结果
type ImportReportResponse struct {
	Imported []*ShortageResponse `json:"imported"`
	Rejected []ImportRejection   `json:"rejected"`
}
