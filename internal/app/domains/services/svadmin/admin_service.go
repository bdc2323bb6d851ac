package svadmin

import (
	"context"
	"strings"
	"time"

	"hopely/internal/app/domains/entity/etaudit"
	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/modules/mddonation"
	"hopely/internal/app/domains/modules/mdprogress"
	"hopely/internal/app/pkg/errorx"
	"hopely/internal/app/pkg/logger"
	"hopely/internal/common/model"
)

// AdminService 运维服务：人工完成 pending 捐赠
// 只能经运维令牌或 adminctl 调用，与网关通知入口隔离
type AdminService struct {
	donationModule *mddonation.DonationModule
	progressModule *mdprogress.ProgressModule
	logger         logger.Logger
}

// NewAdminService 创建运维服务实例
func NewAdminService(
	donationModule *mddonation.DonationModule,
	progressModule *mdprogress.ProgressModule,
	logger logger.Logger,
) *AdminService {
	return &AdminService{
		donationModule: donationModule,
		progressModule: progressModule,
		logger:         logger,
	}
}

// ListPending 全部 pending 捐赠
func (s *AdminService) ListPending(ctx context.Context) ([]*etdonation.Donation, error) {
	donations, err := s.donationModule.ListPending(ctx)
	if err != nil {
		return nil, errorx.Storage("list pending donations failed", err)
	}
	return donations, nil
}

// CompleteAllPending 将全部 pending 捐赠置为 completed
func (s *AdminService) CompleteAllPending(ctx context.Context, operator string) ([]string, error) {
	if err := requireOperator(operator); err != nil {
		return nil, err
	}
	return s.complete(ctx, operator, "")
}

// CompleteOrder 人工完成单笔捐赠
// 记录不存在返回 NotFoundError，记录不是 pending 返回 ValidationError
func (s *AdminService) CompleteOrder(ctx context.Context, operator, orderID string) error {
	if err := requireOperator(operator); err != nil {
		return err
	}
	if strings.TrimSpace(orderID) == "" {
		return errorx.Validation("order_id is required", errorx.ErrorDetail{Path: "order_id", Info: "order_id is required"})
	}

	donation, err := s.donationModule.GetDonation(ctx, orderID)
	if err != nil {
		return errorx.Storage("get donation failed", err)
	}
	if donation == nil {
		return errorx.NotFound("Donation not found")
	}

	completed, err := s.complete(ctx, operator, orderID)
	if err != nil {
		return err
	}
	if len(completed) == 0 {
		return errorx.Validation("Donation is not pending", errorx.ErrorDetail{
			Path: "status",
			Info: "donation status is " + string(donation.Status),
		})
	}
	return nil
}

func (s *AdminService) complete(ctx context.Context, operator, orderID string) ([]string, error) {
	ctx = logger.WithActor(ctx, operator)

	completed, err := s.donationModule.CompletePending(ctx, orderID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Manual completion failed",
			"order_id", orderID,
			"error", err,
		)
		return nil, errorx.Storage("complete pending donations failed", err)
	}

	now := time.Now()
	for _, id := range completed {
		entry := etaudit.NewEntry(etaudit.KindManualCompletion, id, operator, map[string]interface{}{
			"payment_method": etdonation.ManualPaymentMethod,
		})
		if err := s.donationModule.Audit(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "Failed to write audit log",
				"order_id", id,
				"error", err,
			)
		}

		event := model.DonationCompletedEvent{OrderID: id, CompletedAt: now.Unix()}
		if err := s.progressModule.PublishCompleted(ctx, event); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish completed event",
				"order_id", id,
				"error", err,
			)
		}
	}

	s.logger.InfoContext(ctx, "Pending donations completed manually",
		"count", len(completed),
		"order_id", orderID,
	)
	return completed, nil
}

func requireOperator(operator string) error {
	if strings.TrimSpace(operator) == "" {
		return errorx.Validation("operator is required", errorx.ErrorDetail{Path: "operator", Info: "operator is required"})
	}
	return nil
}
