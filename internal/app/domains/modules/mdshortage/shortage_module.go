package mdshortage

import (
	"context"

	"hopely/internal/app/domains/entity/etshortage"
	"hopely/internal/app/domains/repo/rpshortage"
)

// ShortageModule 短缺模块（数据操作）
type ShortageModule struct {
	shortageRepo rpshortage.ShortageRepository
}

// NewShortageModule 创建短缺模块
func NewShortageModule(shortageRepo rpshortage.ShortageRepository) *ShortageModule {
	return &ShortageModule{shortageRepo: shortageRepo}
}

// CreateShortage 创建短缺
func (m *ShortageModule) CreateShortage(ctx context.Context, shortage *etshortage.Shortage) error {
	return m.shortageRepo.Create(ctx, shortage)
}

// GetShortage 查询短缺，不存在返回 nil, nil
func (m *ShortageModule) GetShortage(ctx context.Context, shortageID string) (*etshortage.Shortage, error) {
	return m.shortageRepo.GetByID(ctx, shortageID)
}

// GetHospitalShortage 查询属于某医院的短缺
func (m *ShortageModule) GetHospitalShortage(ctx context.Context, hospitalID, shortageID string) (*etshortage.Shortage, error) {
	return m.shortageRepo.GetByHospitalAndID(ctx, hospitalID, shortageID)
}

// ListActive 医院当前 ACTIVE 的短缺
func (m *ShortageModule) ListActive(ctx context.Context, hospitalID string) ([]*etshortage.Shortage, error) {
	return m.shortageRepo.ListActiveByHospital(ctx, hospitalID)
}

// ListAll 医院全部短缺
func (m *ShortageModule) ListAll(ctx context.Context, hospitalID string) ([]*etshortage.Shortage, error) {
	return m.shortageRepo.ListByHospital(ctx, hospitalID)
}

// Cancel 软删除，已取消返回 false
func (m *ShortageModule) Cancel(ctx context.Context, shortageID, by string) (bool, error) {
	return m.shortageRepo.UpdateStatus(ctx, shortageID, etshortage.StatusCancelled, by)
}
