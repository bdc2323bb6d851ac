package rpaudit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"hopely/internal/app/domains/entity/etaudit"
	"hopely/internal/common/entity"
)

// AuditRepositoryImpl 审计日志仓储实现（MySQL）
type AuditRepositoryImpl struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计日志仓储实例
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &AuditRepositoryImpl{db: db}
}

// Create 写入一条审计记录
func (r *AuditRepositoryImpl) Create(ctx context.Context, entry *etaudit.Entry) error {
	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload failed: %w", err)
	}

	po := &entity.AuditLog{
		Kind:      string(entry.Kind),
		OrderID:   entry.OrderID,
		Actor:     entry.Actor,
		Payload:   payload,
		CreatedAt: entry.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(po).Error; err != nil {
		return err
	}
	entry.ID = po.ID
	return nil
}

// ListByOrderID 按订单号查询审计记录
func (r *AuditRepositoryImpl) ListByOrderID(ctx context.Context, orderID string) ([]*etaudit.Entry, error) {
	var pos []entity.AuditLog
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&pos).Error; err != nil {
		return nil, err
	}

	entries := make([]*etaudit.Entry, 0, len(pos))
	for i := range pos {
		entry := &etaudit.Entry{
			ID:        pos[i].ID,
			Kind:      etaudit.Kind(pos[i].Kind),
			OrderID:   pos[i].OrderID,
			Actor:     pos[i].Actor,
			CreatedAt: pos[i].CreatedAt,
		}
		if len(pos[i].Payload) > 0 {
			if err := json.Unmarshal(pos[i].Payload, &entry.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal audit payload failed: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
