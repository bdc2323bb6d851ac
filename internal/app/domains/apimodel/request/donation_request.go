package request

import "github.com/shopspring/decimal"

// CreatePledgeRequest 认捐请求（DTO）
type CreatePledgeRequest struct {
	OrderID      string          `json:"order_id" binding:"required" example:"ORDER_1728912000_ab12"`
	ShortageID   string          `json:"shortage_id" example:"6f1c2b9e-4d0a-4c1e-9f55-1b2f3c4d5e6f"`
	HospitalID   string          `json:"hospital_id" example:"CGH_001"`
	DonorName    string          `json:"donor_name" binding:"required" example:"Kamala Perera"`
	DonorEmail   string          `json:"donor_email" binding:"required,email" example:"kamala@example.lk"`
	DonorPhone   string          `json:"donor_phone" binding:"required" example:"0771234567"`
	DonorAddress string          `json:"donor_address"`
	DonorCity    string          `json:"donor_city" example:"Colombo"`
	MedicineName string          `json:"medicine_name" example:"Ceftriaxone 1g"`
	HospitalName string          `json:"hospital_name" example:"Colombo General Hospital"`
	Note         string          `json:"note"`
	Amount       decimal.Decimal `json:"amount" swaggertype:"string" example:"1000.00"`
	Currency     string          `json:"currency" example:"LKR"`
	MerchantID   string          `json:"merchant_id"`
}

// ListDonationsQuery 捐赠列表查询参数
type ListDonationsQuery struct {
	Status     string `form:"status" example:"all"`
	HospitalID string `form:"hospital_id"`
	ShortageID string `form:"shortage_id"`
	Page       int    `form:"page" binding:"omitempty,min=1" example:"1"`
	Limit      int    `form:"limit" binding:"omitempty,min=1" example:"10"`
}

// GetDonationQuery 单笔捐赠查询参数
type GetDonationQuery struct {
	Wait int `form:"wait" binding:"omitempty,min=0,max=30" example:"10"`
}
