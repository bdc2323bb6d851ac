package mddonation

import (
	"context"

	"github.com/shopspring/decimal"

	"hopely/internal/app/domains/entity/etaudit"
	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/entity/etprimitive"
	"hopely/internal/app/domains/repo/rpaudit"
	"hopely/internal/app/domains/repo/rpdonation"
	"hopely/internal/app/pkg/idgen"
)

// DonationModule 捐赠台账模块（数据操作 + 审计）
type DonationModule struct {
	donationRepo rpdonation.DonationRepository
	auditRepo    rpaudit.AuditRepository
}

// NewDonationModule 创建捐赠台账模块
func NewDonationModule(
	donationRepo rpdonation.DonationRepository,
	auditRepo rpaudit.AuditRepository,
) *DonationModule {
	return &DonationModule{
		donationRepo: donationRepo,
		auditRepo:    auditRepo,
	}
}

// GetDonation 根据订单号查询，不存在返回 nil, nil
func (m *DonationModule) GetDonation(ctx context.Context, orderID string) (*etdonation.Donation, error) {
	return m.donationRepo.GetByOrderID(ctx, orderID)
}

// ListDonations 分页查询
func (m *DonationModule) ListDonations(ctx context.Context, filter rpdonation.Filter, page etprimitive.Pagination) ([]*etdonation.Donation, int64, error) {
	return m.donationRepo.List(ctx, filter, page)
}

// Totals 按状态汇总
func (m *DonationModule) Totals(ctx context.Context, filter rpdonation.Filter) (*rpdonation.Totals, error) {
	return m.donationRepo.Totals(ctx, filter)
}

// ListByShortage 短缺下全部捐赠
func (m *DonationModule) ListByShortage(ctx context.Context, shortageID string) ([]*etdonation.Donation, error) {
	return m.donationRepo.ListByShortage(ctx, shortageID)
}

// CommittedTotal 短缺下已认捐（全部状态）的累计金额
func (m *DonationModule) CommittedTotal(ctx context.Context, shortageID string) (decimal.Decimal, error) {
	return m.donationRepo.SumByShortage(ctx, shortageID)
}

// TransitionToCompleted 幂等完成转换，补录记录使用 snowflake 主键
func (m *DonationModule) TransitionToCompleted(ctx context.Context, orderID string, payment etdonation.PaymentFields) (*rpdonation.TransitionResult, error) {
	return m.donationRepo.TransitionToCompleted(ctx, orderID, payment, idgen.GenerateID)
}

// ListPending 全部 pending 记录
func (m *DonationModule) ListPending(ctx context.Context) ([]*etdonation.Donation, error) {
	return m.donationRepo.ListPending(ctx)
}

// CompletePending 人工完成，orderID 为空表示全部
func (m *DonationModule) CompletePending(ctx context.Context, orderID string) ([]string, error) {
	return m.donationRepo.CompletePending(ctx, orderID, etdonation.ManualPaymentMethod)
}

// Audit 写入审计记录
func (m *DonationModule) Audit(ctx context.Context, entry *etaudit.Entry) error {
	return m.auditRepo.Create(ctx, entry)
}

// AuditTrail 订单的审计记录
func (m *DonationModule) AuditTrail(ctx context.Context, orderID string) ([]*etaudit.Entry, error) {
	return m.auditRepo.ListByOrderID(ctx, orderID)
}
