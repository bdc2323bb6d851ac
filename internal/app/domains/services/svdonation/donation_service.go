package svdonation

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/entity/etprimitive"
	"hopely/internal/app/domains/entity/etshortage"
	"hopely/internal/app/domains/modules/mddonation"
	"hopely/internal/app/domains/modules/mdfunding"
	"hopely/internal/app/domains/modules/mdprogress"
	"hopely/internal/app/domains/modules/mdshortage"
	"hopely/internal/app/domains/repo/rpdonation"
	"hopely/internal/app/pkg/errorx"
	"hopely/internal/app/pkg/idgen"
	"hopely/internal/app/pkg/logger"
	"hopely/internal/common/model"
)

// MaxWaitSeconds Smart Wait 最长等待时间
const MaxWaitSeconds = 30

// StatusAll 列表与汇总中表示不过滤状态
const StatusAll = "all"

// DonationService 捐赠服务，负责认捐与查询的业务编排
type DonationService struct {
	fundingModule  *mdfunding.FundingModule
	donationModule *mddonation.DonationModule
	shortageModule *mdshortage.ShortageModule
	progressModule *mdprogress.ProgressModule
	logger         logger.Logger
}

// NewDonationService 创建捐赠服务实例
func NewDonationService(
	fundingModule *mdfunding.FundingModule,
	donationModule *mddonation.DonationModule,
	shortageModule *mdshortage.ShortageModule,
	progressModule *mdprogress.ProgressModule,
	logger logger.Logger,
) *DonationService {
	return &DonationService{
		fundingModule:  fundingModule,
		donationModule: donationModule,
		shortageModule: shortageModule,
		progressModule: progressModule,
		logger:         logger,
	}
}

// PledgeResult 认捐结果
type PledgeResult struct {
	Donation *etdonation.Donation
	// Decision 为 nil 表示未做资金截断
	Decision *mdfunding.Decision
	// Replayed 订单号已存在，返回的是已有记录
	Replayed bool
}

// RecordPledge 记录认捐（完整业务流程）
// 1. 订单号已存在：幂等返回已有记录
// 2. 资金对账（截断或拒绝）并以 pending 落库
// 3. 发布短缺进度事件
func (s *DonationService) RecordPledge(ctx context.Context, fields etdonation.PledgeFields) (*PledgeResult, error) {
	if err := fields.Validate(); err != nil {
		return nil, toValidation(err)
	}

	existing, err := s.donationModule.GetDonation(ctx, fields.OrderID)
	if err != nil {
		return nil, errorx.Storage("check order duplicate failed", err)
	}
	if existing != nil {
		return &PledgeResult{Donation: existing, Replayed: true}, nil
	}

	admission, err := s.fundingModule.AdmitPledge(ctx, fields, idgen.GenerateID)
	if err != nil {
		if errors.Is(err, rpdonation.ErrDuplicateOrder) {
			// 并发的同一订单号先写入
			existing, getErr := s.donationModule.GetDonation(ctx, fields.OrderID)
			if getErr != nil {
				return nil, errorx.Storage("reload duplicate order failed", getErr)
			}
			if existing != nil {
				return &PledgeResult{Donation: existing, Replayed: true}, nil
			}
		}
		return nil, s.classify(ctx, fields, err)
	}

	donation := admission.Donation
	if admission.Decision != nil && admission.Decision.Snapshot.WasCapped {
		s.logger.InfoContext(ctx, "Pledge capped to remaining funding",
			"order_id", donation.OrderID,
			"shortage_id", donation.ShortageID,
			"requested", fields.Amount.StringFixed(2),
			"validated", donation.Amount.StringFixed(2),
		)
	}

	s.logger.InfoContext(ctx, "Pledge recorded",
		"order_id", donation.OrderID,
		"shortage_id", donation.ShortageID,
		"amount", donation.Amount.StringFixed(2),
	)

	if donation.HasShortage() {
		s.publishProgress(ctx, donation)
	}

	return &PledgeResult{Donation: donation, Decision: admission.Decision}, nil
}

// classify 将认捐错误归类为业务错误
func (s *DonationService) classify(ctx context.Context, fields etdonation.PledgeFields, err error) error {
	if _, ok := errorx.As(err); ok {
		if errorx.Is(err, errorx.KindFundingClosed) {
			s.logger.InfoContext(ctx, "Pledge rejected, funding closed",
				"order_id", fields.OrderID,
				"shortage_id", fields.ShortageID,
			)
		}
		return err
	}

	var fe *etdonation.FieldError
	if errors.As(err, &fe) {
		return toValidation(err)
	}

	s.logger.ErrorContext(ctx, "Failed to record pledge",
		"order_id", fields.OrderID,
		"error", err,
	)
	return errorx.Storage("save pledge failed", err)
}

// publishProgress 发布进度事件，失败只记录日志
func (s *DonationService) publishProgress(ctx context.Context, donation *etdonation.Donation) {
	total, err := s.donationModule.CommittedTotal(ctx, donation.ShortageID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to compute committed total",
			"shortage_id", donation.ShortageID,
			"error", err,
		)
		return
	}

	event := model.DonationProgressEvent{
		ShortageID:   donation.ShortageID,
		OrderID:      donation.OrderID,
		Status:       string(donation.Status),
		Amount:       donation.Amount.StringFixed(2),
		CurrentTotal: total.StringFixed(2),
		OccurredAt:   time.Now().Unix(),
	}
	if err := s.progressModule.PublishProgress(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish progress event",
			"shortage_id", donation.ShortageID,
			"error", err,
		)
	}
}

// ListQuery 列表查询条件
type ListQuery struct {
	Status     string // 空或 all 表示不过滤
	HospitalID string
	ShortageID string
	Page       int
	Limit      int
}

func (q ListQuery) filter() (rpdonation.Filter, error) {
	f := rpdonation.Filter{HospitalID: q.HospitalID, ShortageID: q.ShortageID}
	if q.Status == "" || q.Status == StatusAll {
		return f, nil
	}
	status, err := etdonation.ParseStatus(q.Status)
	if err != nil {
		return f, errorx.Validation("invalid status filter", errorx.ErrorDetail{
			Path: "status",
			Info: "status must be one of all, pending, completed, failed, cancelled",
		})
	}
	f.Status = status
	return f, nil
}

// ListDonations 分页查询捐赠，按创建时间倒序
func (s *DonationService) ListDonations(ctx context.Context, q ListQuery) ([]*etdonation.Donation, etprimitive.Pagination, error) {
	page := etprimitive.NewPagination(q.Page, q.Limit)

	filter, err := q.filter()
	if err != nil {
		return nil, page, err
	}

	donations, total, err := s.donationModule.ListDonations(ctx, filter, page)
	if err != nil {
		return nil, page, errorx.Storage("list donations failed", err)
	}
	page.Total = total
	return donations, page, nil
}

// AggregateTotals 按状态计数，并汇总已确认金额
func (s *DonationService) AggregateTotals(ctx context.Context, q ListQuery) (*rpdonation.Totals, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	totals, err := s.donationModule.Totals(ctx, filter)
	if err != nil {
		return nil, errorx.Storage("aggregate totals failed", err)
	}
	return totals, nil
}

// ShortageProgress 短缺的筹款进度
type ShortageProgress struct {
	ShortageID string
	// Shortage 为 nil 表示短缺不存在（历史捐赠仍可查询）
	Shortage           *etshortage.Shortage
	Donations          []*etdonation.Donation
	TotalDonated       decimal.Decimal // 全部状态，含 pending
	CompletedAmount    decimal.Decimal
	PendingAmount      decimal.Decimal
	ProgressPercentage decimal.Decimal // 无资金目标时为 0，最大 100
}

// GetShortageProgress 查询短缺下的捐赠与进度
func (s *DonationService) GetShortageProgress(ctx context.Context, shortageID string) (*ShortageProgress, error) {
	shortage, err := s.shortageModule.GetShortage(ctx, shortageID)
	if err != nil {
		return nil, errorx.Storage("get shortage failed", err)
	}

	donations, err := s.donationModule.ListByShortage(ctx, shortageID)
	if err != nil {
		return nil, errorx.Storage("list shortage donations failed", err)
	}

	progress := &ShortageProgress{
		ShortageID:         shortageID,
		Shortage:           shortage,
		Donations:          donations,
		TotalDonated:       decimal.Zero,
		CompletedAmount:    decimal.Zero,
		PendingAmount:      decimal.Zero,
		ProgressPercentage: decimal.Zero,
	}
	for _, d := range donations {
		progress.TotalDonated = progress.TotalDonated.Add(d.Amount)
		switch d.Status {
		case etdonation.StatusCompleted:
			progress.CompletedAmount = progress.CompletedAmount.Add(d.Amount)
		case etdonation.StatusPending:
			progress.PendingAmount = progress.PendingAmount.Add(d.Amount)
		}
	}

	if shortage != nil && shortage.HasFundingTarget() && shortage.FundingTarget.IsPositive() {
		pct := progress.TotalDonated.Mul(decimal.NewFromInt(100)).Div(*shortage.FundingTarget).Round(2)
		progress.ProgressPercentage = decimal.Min(pct, decimal.NewFromInt(100))
	}
	return progress, nil
}

// GetDonation 查询单笔捐赠
// waitSeconds > 0 且记录为 pending 时，订阅完成频道等待（Smart Wait），超时后重新读取
func (s *DonationService) GetDonation(ctx context.Context, orderID string, waitSeconds int) (*etdonation.Donation, error) {
	donation, err := s.donationModule.GetDonation(ctx, orderID)
	if err != nil {
		return nil, errorx.Storage("get donation failed", err)
	}
	if donation == nil {
		return nil, errorx.NotFound("Donation not found")
	}
	if waitSeconds <= 0 || donation.Status != etdonation.StatusPending {
		return donation, nil
	}
	if waitSeconds > MaxWaitSeconds {
		waitSeconds = MaxWaitSeconds
	}

	timeout := time.Duration(waitSeconds) * time.Second
	_, err = s.progressModule.WaitForCompletion(ctx, orderID, timeout, func() (bool, error) {
		current, err := s.donationModule.GetDonation(ctx, orderID)
		if err != nil {
			return false, err
		}
		return current != nil && current.IsCompleted(), nil
	})
	if err != nil {
		// 订阅失败只记录日志，返回当前状态
		s.logger.WarnContext(ctx, "Wait for completion failed",
			"order_id", orderID,
			"error", err,
		)
	}

	refreshed, err := s.donationModule.GetDonation(ctx, orderID)
	if err != nil {
		return nil, errorx.Storage("reload donation failed", err)
	}
	if refreshed == nil {
		return donation, nil
	}
	return refreshed, nil
}

// toValidation 字段错误转换为 ValidationError
func toValidation(err error) error {
	var fe *etdonation.FieldError
	if errors.As(err, &fe) {
		return errorx.Validation(fe.Err.Error(), errorx.ErrorDetail{Path: fe.Field, Info: fe.Err.Error()})
	}
	return errorx.Validation(err.Error())
}
