package request

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateShortageRequest 创建短缺请求（DTO）
type CreateShortageRequest struct {
	MedicineName      string           `json:"medicine_name" binding:"required" example:"Ceftriaxone 1g"`
	GenericName       string           `json:"generic_name" example:"Ceftriaxone"`
	QuantityNeeded    int64            `json:"quantity_needed" binding:"required,gt=0" example:"200"`
	QuantityAvailable int64            `json:"quantity_available" binding:"min=0" example:"20"`
	Unit              string           `json:"unit" binding:"required" example:"vials"`
	UrgencyLevel      string           `json:"urgency_level" binding:"required" example:"HIGH"`
	Description       string           `json:"description" example:"ICU stock running low"`
	ContactEmail      string           `json:"contact_email" binding:"omitempty,email" example:"pharmacy@cgh.lk"`
	EstimatedFunding  *decimal.Decimal `json:"estimated_funding" swaggertype:"string" example:"5000.00"`
	CostPerUnit       *decimal.Decimal `json:"cost_per_unit" swaggertype:"string" example:"25.00"`
	FundingNote       string           `json:"funding_note"`
	ExpirationDate    *time.Time       `json:"expiration_date" example:"2026-12-31T00:00:00Z"`
	CreatedBy         string           `json:"created_by" example:"pharmacist.perera"`
}

// ImportShortagesRequest 历史短缺文档导入请求，文档字段名不固定
type ImportShortagesRequest struct {
	Documents []map[string]any `json:"documents" binding:"required"`
}
