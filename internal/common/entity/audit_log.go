package entity

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog 账本审计日志
type AuditLog struct {
	ID      int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Kind    string         `gorm:"column:kind;type:varchar(32);not null;index:idx_kind"`
	OrderID string         `gorm:"column:order_id;type:varchar(128);index:idx_order_id"`
	Actor   string         `gorm:"column:actor;type:varchar(128);not null"`
	Payload datatypes.JSON `gorm:"column:payload;type:json"`

	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName 指定表名
func (AuditLog) TableName() string {
	return "ledger_audit_logs"
}

