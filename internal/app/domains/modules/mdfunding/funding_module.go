package mdfunding

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/entity/etshortage"
	"hopely/internal/app/domains/repo/rpdonation"
	"hopely/internal/app/pkg/errorx"
	"hopely/internal/app/pkg/keylock"
)

// Admission 认捐准入结果
type Admission struct {
	Donation *etdonation.Donation
	// Decision 为 nil 表示没有资金目标（一般捐赠或未设目标），未做截断
	Decision *Decision
}

// FundingModule 资金对账模块
// 同一短缺的 读取-决策-插入 在进程内由 keylock 串行，跨进程由事务内的行锁串行
type FundingModule struct {
	donationRepo rpdonation.DonationRepository
	locks        *keylock.KeyLock
}

// NewFundingModule 创建资金对账模块
func NewFundingModule(donationRepo rpdonation.DonationRepository, locks *keylock.KeyLock) *FundingModule {
	if locks == nil {
		locks = keylock.New()
	}
	return &FundingModule{
		donationRepo: donationRepo,
		locks:        locks,
	}
}

// AdmitPledge 对账并以 pending 状态写入认捐
// 返回 rpdonation.ErrDuplicateOrder 表示订单号已存在
func (m *FundingModule) AdmitPledge(ctx context.Context, fields etdonation.PledgeFields, newID func() int64) (*Admission, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	if fields.ShortageID == "" {
		donation, err := etdonation.NewPledge(newID(), fields, fields.Amount)
		if err != nil {
			return nil, err
		}
		if err := m.donationRepo.Create(ctx, donation); err != nil {
			return nil, err
		}
		return &Admission{Donation: donation}, nil
	}

	unlock, err := m.locks.Lock(ctx, fields.ShortageID)
	if err != nil {
		return nil, fmt.Errorf("wait for shortage lock failed: %w", err)
	}
	defer unlock()

	var decision *Decision
	donation, err := m.donationRepo.CreateWithinShortageBudget(ctx, fields.ShortageID,
		func(shortage *etshortage.Shortage, committed decimal.Decimal) (*etdonation.Donation, error) {
			amount := fields.Amount
			if shortage != nil {
				if fields.HospitalID == "" {
					fields.HospitalID = shortage.HospitalID
				}

				if !shortage.Status.AcceptsPledges() {
					snapshot := Snapshot{
						CurrentTotal:      committed,
						OriginalRequested: fields.Amount,
						ShortageStatus:    string(shortage.Status),
					}
					if shortage.HasFundingTarget() {
						snapshot.Target = *shortage.FundingTarget
						snapshot.Remaining = decimal.Max(shortage.FundingTarget.Sub(committed), decimal.Zero)
					}
					return nil, errorx.FundingClosed("This shortage is no longer accepting donations", snapshot)
				}

				// 目标为 0 与未设置等同：不截断
				if shortage.HasFundingTarget() && !shortage.FundingTarget.IsZero() {
					d, err := Reconcile(*shortage.FundingTarget, committed, fields.Amount)
					if err != nil {
						return nil, err
					}
					decision = d
					amount = d.ValidatedAmount
				}
			}
			return etdonation.NewPledge(newID(), fields, amount)
		})
	if err != nil {
		return nil, err
	}

	return &Admission{Donation: donation, Decision: decision}, nil
}
