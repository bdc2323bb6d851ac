package response

import (
	"time"

	"hopely/internal/app/domains/modules/mdfunding"
)

// DonationResponse 捐赠响应（DTO），金额为两位小数字符串
type DonationResponse struct {
	ID            int64      `json:"id,string"`
	OrderID       string     `json:"order_id"`
	ShortageID    string     `json:"shortage_id,omitempty"`
	HospitalID    string     `json:"hospital_id,omitempty"`
	DonorName     string     `json:"donor_name"`
	DonorEmail    string     `json:"donor_email"`
	DonorPhone    string     `json:"donor_phone"`
	DonorAddress  string     `json:"donor_address,omitempty"`
	DonorCity     string     `json:"donor_city,omitempty"`
	MedicineName  string     `json:"medicine_name,omitempty"`
	HospitalName  string     `json:"hospital_name,omitempty"`
	Note          string     `json:"note,omitempty"`
	Amount        string     `json:"amount"`
	Currency      string     `json:"currency"`
	Status        string     `json:"status"`
	PaymentID     string     `json:"payment_id,omitempty"`
	PaymentMethod string     `json:"payment_method,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// PledgeResponse 认捐响应
type PledgeResponse struct {
	Donation *DonationResponse `json:"donation"`
	// Funding 仅在按资金目标对账时返回
	Funding     *mdfunding.Snapshot `json:"funding,omitempty"`
	Replayed    bool                `json:"replayed"`
	CheckoutURL string              `json:"checkout_url"`
}

// PaginationResponse 分页信息
type PaginationResponse struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// DonationListResponse 捐赠列表
type DonationListResponse struct {
	Donations  []*DonationResponse `json:"donations"`
	Pagination PaginationResponse  `json:"pagination"`
}

// TotalsResponse 汇总
type TotalsResponse struct {
	TotalDonations  int64            `json:"total_donations"`
	Counts          map[string]int64 `json:"counts"`
	ConfirmedAmount string           `json:"confirmed_amount"`
}

// ShortageProgressResponse 短缺筹款进度
type ShortageProgressResponse struct {
	ShortageID         string              `json:"shortage_id"`
	Shortage           *ShortageResponse   `json:"shortage,omitempty"`
	FundingTarget      *string             `json:"funding_target"`
	TotalDonated       string              `json:"total_donated"`
	CompletedAmount    string              `json:"completed_amount"`
	PendingAmount      string              `json:"pending_amount"`
	DonationCount      int                 `json:"donation_count"`
	ProgressPercentage string              `json:"progress_percentage"`
	Donations          []*DonationResponse `json:"donations"`
}
