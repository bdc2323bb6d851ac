package rpshortage

import (
	"context"

	"hopely/internal/app/domains/entity/etshortage"
)

// ShortageRepository 短缺仓储接口（只定义，不实现）
type ShortageRepository interface {
	// Create 创建短缺，id 冲突返回 ErrDuplicateShortage
	Create(ctx context.Context, shortage *etshortage.Shortage) error

	// GetByID 根据ID查询，不存在返回 nil, nil
	GetByID(ctx context.Context, shortageID string) (*etshortage.Shortage, error)

	// GetByHospitalAndID 同时匹配医院与ID，不存在返回 nil, nil
	GetByHospitalAndID(ctx context.Context, hospitalID, shortageID string) (*etshortage.Shortage, error)

	// ListActiveByHospital 医院的 ACTIVE 短缺，按更新时间倒序
	ListActiveByHospital(ctx context.Context, hospitalID string) ([]*etshortage.Shortage, error)

	// ListByHospital 医院的全部短缺（药品视图）
	ListByHospital(ctx context.Context, hospitalID string) ([]*etshortage.Shortage, error)

	// UpdateStatus 条件更新状态，当前状态已是目标状态时返回 false
	UpdateStatus(ctx context.Context, shortageID string, status etshortage.Status, updatedBy string) (bool, error)
}
