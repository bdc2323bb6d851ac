package rpaudit

import (
	"context"

	"hopely/internal/app/domains/entity/etaudit"
)

// AuditRepository 审计日志仓储接口
type AuditRepository interface {
	// Create 写入一条审计记录
	Create(ctx context.Context, entry *etaudit.Entry) error

	// ListByOrderID 按订单号查询审计记录，按时间正序
	ListByOrderID(ctx context.Context, orderID string) ([]*etaudit.Entry, error)
}
