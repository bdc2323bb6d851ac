package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Donation 捐赠记录实体，order_id 为幂等键
type Donation struct {
	ID         int64   `gorm:"column:id;primaryKey;autoIncrement:false"`
	OrderID    string  `gorm:"column:order_id;type:varchar(128);not null;uniqueIndex:uk_order_id"`
	ShortageID *string `gorm:"column:shortage_id;type:varchar(64);index:idx_shortage_id"`
	HospitalID *string `gorm:"column:hospital_id;type:varchar(64);index:idx_hospital_id"`

	// 捐赠人信息
	DonorName    string `gorm:"column:donor_name;type:varchar(255);not null"`
	DonorEmail   string `gorm:"column:donor_email;type:varchar(255);not null"`
	DonorPhone   string `gorm:"column:donor_phone;type:varchar(64);not null"`
	DonorAddress string `gorm:"column:donor_address;type:varchar(512)"`
	DonorCity    string `gorm:"column:donor_city;type:varchar(128)"`

	MedicineName string `gorm:"column:medicine_name;type:varchar(255)"`
	HospitalName string `gorm:"column:hospital_name;type:varchar(255)"`
	Note         string `gorm:"column:note;type:text"`

	Amount   decimal.Decimal `gorm:"column:amount;type:decimal(12,2);not null"`
	Currency string          `gorm:"column:currency;type:varchar(8);not null;default:'LKR'"`
	Status   string          `gorm:"column:status;type:varchar(16);not null;default:'pending';index:idx_status"`

	// 网关回填字段
	MerchantID      string           `gorm:"column:merchant_id;type:varchar(64)"`
	PaymentID       *string          `gorm:"column:payment_id;type:varchar(128)"`
	PaymentMethod   *string          `gorm:"column:payment_method;type:varchar(64)"`
	GatewayAmount   *decimal.Decimal `gorm:"column:gateway_amount;type:decimal(12,2)"`
	GatewayCurrency *string          `gorm:"column:gateway_currency;type:varchar(8)"`

	CreatedAt   time.Time  `gorm:"column:created_at;not null;index:idx_created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;not null"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

// TableName 指定表名
func (Donation) TableName() string {
	return "donations"
}

// 捐赠状态常量
const (
	DonationStatusPending   = "pending"
	DonationStatusCompleted = "completed"
	DonationStatusFailed    = "failed"
	DonationStatusCancelled = "cancelled"
)
