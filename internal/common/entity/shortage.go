package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shortage 药品短缺实体
type Shortage struct {
	ID             string `gorm:"column:id;primaryKey;type:varchar(64)"`
	HospitalID     string `gorm:"column:hospital_id;type:varchar(64);not null;index:idx_hospital_status"`
	MedicineName   string `gorm:"column:medicine_name;type:varchar(255);not null"`
	GenericName    string `gorm:"column:generic_name;type:varchar(255)"`
	QuantityNeeded int64  `gorm:"column:quantity_needed;not null"`
	// QuantityAvailable 医院现有库存
	QuantityAvailable int64  `gorm:"column:quantity_available;not null;default:0"`
	Unit              string `gorm:"column:unit;type:varchar(32);not null"`
	Urgency           string `gorm:"column:urgency;type:varchar(16);not null"`
	Status            string `gorm:"column:status;type:varchar(16);not null;default:'ACTIVE';index:idx_hospital_status"`
	Description       string `gorm:"column:description;type:text"`
	ContactEmail      string `gorm:"column:contact_email;type:varchar(255)"`

	// 资金信息
	FundingTarget   *decimal.Decimal `gorm:"column:funding_target;type:decimal(12,2)"`
	FundingCurrency string           `gorm:"column:funding_currency;type:varchar(8);not null;default:'LKR'"`
	CostPerUnit     *decimal.Decimal `gorm:"column:cost_per_unit;type:decimal(12,2)"`
	FundingNote     string           `gorm:"column:funding_note;type:text"`

	ExpirationDate *time.Time `gorm:"column:expiration_date"`
	CreatedBy      string     `gorm:"column:created_by;type:varchar(255)"`
	UpdatedBy      string     `gorm:"column:updated_by;type:varchar(255)"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null;index:idx_updated_at"`
}

// TableName 指定表名
func (Shortage) TableName() string {
	return "shortages"
}
