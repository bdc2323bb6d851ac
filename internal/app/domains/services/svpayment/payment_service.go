package svpayment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hopely/internal/app/domains/entity/etaudit"
	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/modules/mddonation"
	"hopely/internal/app/domains/modules/mdpayment"
	"hopely/internal/app/domains/modules/mdprogress"
	"hopely/internal/app/domains/repo/rpdonation"
	"hopely/internal/app/pkg/errorx"
	"hopely/internal/app/pkg/logger"
	"hopely/internal/common/model"
)

// RetryDelaySeconds 通知重试任务的投递延迟
const RetryDelaySeconds uint32 = 10

// RetryQueue 通知重试队列（由 infra/mq/lmstfy 实现）
type RetryQueue interface {
	Publish(ctx context.Context, queue string, data interface{}, delay uint32) (string, error)
}

// Config 支付服务配置
type Config struct {
	MerchantID string
	Currency   string
	Sandbox    bool
	ReturnURL  string
	CancelURL  string
	NotifyURL  string
	Country    string
	RetryQueue string
}

// PaymentService 支付桥接服务
// 职责：
// 1. 出站：签名与收银台表单
// 2. 入站：校验网关通知并完成捐赠
// 3. 存储失败时投递重试任务
type PaymentService struct {
	signer         *mdpayment.Signer
	verifier       *mdpayment.Verifier
	donationModule *mddonation.DonationModule
	progressModule *mdprogress.ProgressModule
	retryQueue     RetryQueue
	cfg            Config
	logger         logger.Logger
}

// NewPaymentService 创建支付服务实例
func NewPaymentService(
	signer *mdpayment.Signer,
	verifier *mdpayment.Verifier,
	donationModule *mddonation.DonationModule,
	progressModule *mdprogress.ProgressModule,
	retryQueue RetryQueue,
	cfg Config,
	logger logger.Logger,
) *PaymentService {
	if cfg.Currency == "" {
		cfg.Currency = etdonation.DefaultCurrency
	}
	if cfg.Country == "" {
		cfg.Country = "Sri Lanka"
	}
	return &PaymentService{
		signer:         signer,
		verifier:       verifier,
		donationModule: donationModule,
		progressModule: progressModule,
		retryQueue:     retryQueue,
		cfg:            cfg,
		logger:         logger,
	}
}

// PaymentHash 签名结果及参与签名的字段
type PaymentHash struct {
	Hash       string
	MerchantID string
	OrderID    string
	Amount     string
	Currency   string
}

// IssuePaymentHash 生成支付请求签名，merchantID 与 currency 为空时取配置
func (s *PaymentService) IssuePaymentHash(ctx context.Context, merchantID, orderID string, amount decimal.Decimal, currency string) (*PaymentHash, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, errorx.Validation("order_id is required", errorx.ErrorDetail{Path: "order_id", Info: "order_id is required"})
	}
	if !amount.IsPositive() {
		return nil, errorx.Validation("amount must be greater than zero", errorx.ErrorDetail{Path: "amount", Info: "amount must be greater than zero"})
	}
	if merchantID == "" {
		merchantID = s.cfg.MerchantID
	}
	if currency == "" {
		currency = s.cfg.Currency
	}

	hash, err := s.signer.IssuePaymentHash(merchantID, orderID, amount, currency)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to issue payment hash",
			"order_id", orderID,
			"error", err,
		)
		return nil, err
	}
	return &PaymentHash{
		Hash:       hash,
		MerchantID: merchantID,
		OrderID:    orderID,
		Amount:     mdpayment.FormatAmount(amount),
		Currency:   currency,
	}, nil
}

// CheckoutForm 收银台表单（POST 到网关）
type CheckoutForm struct {
	ActionURL  string
	Sandbox    bool
	MerchantID string
	ReturnURL  string
	CancelURL  string
	NotifyURL  string
	OrderID    string
	Items      string
	Amount     string
	Currency   string
	Hash       string
	FirstName  string
	LastName   string
	Email      string
	Phone      string
	Address    string
	City       string
	Country    string
}

// BuildCheckoutForm 基于已落库的认捐生成收银台表单，金额为对账后的金额
func (s *PaymentService) BuildCheckoutForm(ctx context.Context, orderID string) (*CheckoutForm, error) {
	donation, err := s.donationModule.GetDonation(ctx, orderID)
	if err != nil {
		return nil, errorx.Storage("get donation failed", err)
	}
	if donation == nil {
		return nil, errorx.NotFound("Donation not found")
	}
	if donation.Status != etdonation.StatusPending {
		return nil, errorx.Validation("Donation is not awaiting payment", errorx.ErrorDetail{
			Path: "status",
			Info: "donation status is " + string(donation.Status),
		})
	}

	merchantID := donation.MerchantID
	if merchantID == "" {
		merchantID = s.cfg.MerchantID
	}
	hash, err := s.IssuePaymentHash(ctx, merchantID, donation.OrderID, donation.Amount, donation.Currency)
	if err != nil {
		return nil, err
	}

	firstName, lastName := splitName(donation.Donor.Name)
	return &CheckoutForm{
		ActionURL:  mdpayment.CheckoutURL(s.cfg.Sandbox),
		Sandbox:    s.cfg.Sandbox,
		MerchantID: merchantID,
		ReturnURL:  s.cfg.ReturnURL,
		CancelURL:  s.cfg.CancelURL,
		NotifyURL:  s.cfg.NotifyURL,
		OrderID:    donation.OrderID,
		Items:      itemsLabel(donation),
		Amount:     hash.Amount,
		Currency:   hash.Currency,
		Hash:       hash.Hash,
		FirstName:  firstName,
		LastName:   lastName,
		Email:      donation.Donor.Email,
		Phone:      donation.Donor.Phone,
		Address:    withDefault(donation.Donor.Address, "Not provided"),
		City:       withDefault(donation.Donor.City, "Colombo"),
		Country:    s.cfg.Country,
	}, nil
}

// NotificationOutcome 通知处理结果
type NotificationOutcome struct {
	OrderID string
	Verdict mdpayment.Verdict
	// Transition 仅在通知被接受且已落库时有值
	Transition rpdonation.TransitionOutcome
	// Enqueued 存储失败，已投递重试任务
	Enqueued bool
	// Rejection 校验未通过时为 SignatureVerificationFailure
	Rejection *errorx.BusinessError
}

// HandleNotification 处理网关异步通知
// 校验失败只记录日志与审计，不修改状态；存储失败时投递重试任务
// 返回 error 表示既未落库也未能入队，网关需要重发
func (s *PaymentService) HandleNotification(ctx context.Context, form map[string]string) (*NotificationOutcome, error) {
	n := mdpayment.NotificationFromForm(form)

	outcome, err := s.apply(ctx, n)
	if err == nil {
		return outcome, nil
	}
	if !errorx.Is(err, errorx.KindStorage) {
		return nil, err
	}

	job := model.NotificationRetryJob{
		RequestID:  logger.RequestID(ctx),
		OrderID:    n.OrderID,
		Fields:     form,
		Attempt:    1,
		ReceivedAt: time.Now().Unix(),
	}
	jobID, pubErr := s.retryQueue.Publish(ctx, s.cfg.RetryQueue, job, RetryDelaySeconds)
	if pubErr != nil {
		s.logger.ErrorContext(ctx, "Failed to enqueue notification retry",
			"order_id", n.OrderID,
			"error", pubErr,
		)
		return nil, err
	}

	s.logger.WarnContext(ctx, "Notification enqueued for retry",
		"order_id", n.OrderID,
		"job_id", jobID,
		"error", err,
	)
	s.audit(ctx, etaudit.KindRetryEnqueued, n.OrderID, map[string]interface{}{
		"job_id": jobID,
		"error":  err.Error(),
	})

	outcome.Enqueued = true
	return outcome, nil
}

// ProcessRetry 重新处理一条重试任务
// 返回 error 时任务不 ACK，由队列在 TTR 后重新投递
func (s *PaymentService) ProcessRetry(ctx context.Context, job *model.NotificationRetryJob) error {
	if job.RequestID != "" {
		ctx = logger.WithRequestID(ctx, job.RequestID)
	}
	_, err := s.apply(ctx, mdpayment.NotificationFromForm(job.Fields))
	return err
}

// apply 校验并执行完成转换
// 存储失败时返回的 outcome 仍带有校验结论
func (s *PaymentService) apply(ctx context.Context, n mdpayment.Notification) (*NotificationOutcome, error) {
	verdict, err := s.verifier.Verify(n)
	if err != nil {
		s.logger.ErrorContext(ctx, "Notification verification misconfigured",
			"order_id", n.OrderID,
			"error", err,
		)
		return nil, err
	}

	outcome := &NotificationOutcome{OrderID: n.OrderID, Verdict: verdict}
	if !verdict.Accepted {
		outcome.Rejection = errorx.Signature(verdict.Reason)
		s.logger.WarnContext(ctx, "Notification rejected",
			"order_id", n.OrderID,
			"mode", verdict.Mode,
			"status_code", n.StatusCode,
			"error", outcome.Rejection,
		)
		payload := notificationPayload(n, verdict)
		payload["error_kind"] = string(outcome.Rejection.Kind)
		s.audit(ctx, etaudit.KindNotificationRejected, n.OrderID, payload)
		return outcome, nil
	}

	result, err := s.donationModule.TransitionToCompleted(ctx, n.OrderID, n.PaymentFields())
	if err != nil {
		var fe *etdonation.FieldError
		if errors.As(err, &fe) {
			// 补录所需字段缺失，重试也无法成功
			verdict.Accepted = false
			verdict.Reason = fe.Error()
			outcome.Verdict = verdict
			s.logger.WarnContext(ctx, "Accepted notification cannot be applied",
				"order_id", n.OrderID,
				"reason", verdict.Reason,
			)
			s.audit(ctx, etaudit.KindNotificationRejected, n.OrderID, notificationPayload(n, verdict))
			return outcome, nil
		}

		s.logger.ErrorContext(ctx, "Failed to complete donation",
			"order_id", n.OrderID,
			"error", err,
		)
		return outcome, errorx.Storage("complete donation failed", err)
	}
	outcome.Transition = result.Outcome

	payload := notificationPayload(n, verdict)
	payload["outcome"] = result.Outcome.String()
	if result.PreviousStatus != "" {
		payload["previous_status"] = string(result.PreviousStatus)
	}
	s.audit(ctx, etaudit.KindNotificationAccepted, n.OrderID, payload)

	if result.Outcome == rpdonation.TransitionFallbackInserted {
		s.logger.WarnContext(ctx, "No pledge found, inserted completed donation from notification",
			"order_id", n.OrderID,
			"amount", n.PayhereAmount,
		)
		s.audit(ctx, etaudit.KindFallbackInsert, n.OrderID, map[string]interface{}{
			"payhere_amount":   n.PayhereAmount,
			"payhere_currency": n.PayhereCurrency,
			"payment_id":       result.Donation.PaymentID,
		})
	}

	s.logger.InfoContext(ctx, "Notification processed",
		"order_id", n.OrderID,
		"mode", verdict.Mode,
		"outcome", result.Outcome.String(),
	)

	if result.Outcome != rpdonation.TransitionAlreadyCompleted {
		s.publishCompleted(ctx, result.Donation)
	}
	return outcome, nil
}

// publishCompleted 发布完成事件，失败不影响处理结果
func (s *PaymentService) publishCompleted(ctx context.Context, donation *etdonation.Donation) {
	completedAt := time.Now()
	if donation.CompletedAt != nil {
		completedAt = *donation.CompletedAt
	}

	event := model.DonationCompletedEvent{
		OrderID:     donation.OrderID,
		PaymentID:   donation.PaymentID,
		CompletedAt: completedAt.Unix(),
	}
	if err := s.progressModule.PublishCompleted(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish completed event",
			"order_id", donation.OrderID,
			"error", err,
		)
	}

	if !donation.HasShortage() {
		return
	}
	total, err := s.donationModule.CommittedTotal(ctx, donation.ShortageID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to compute committed total",
			"shortage_id", donation.ShortageID,
			"error", err,
		)
		return
	}
	progress := model.DonationProgressEvent{
		ShortageID:   donation.ShortageID,
		OrderID:      donation.OrderID,
		Status:       string(etdonation.StatusCompleted),
		Amount:       donation.Amount.StringFixed(2),
		CurrentTotal: total.StringFixed(2),
		OccurredAt:   completedAt.Unix(),
	}
	if err := s.progressModule.PublishProgress(ctx, progress); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish progress event",
			"shortage_id", donation.ShortageID,
			"error", err,
		)
	}
}

// audit 写审计记录，失败只记录日志
func (s *PaymentService) audit(ctx context.Context, kind etaudit.Kind, orderID string, payload map[string]interface{}) {
	entry := etaudit.NewEntry(kind, orderID, etaudit.ActorGateway, payload)
	if err := s.donationModule.Audit(ctx, entry); err != nil {
		s.logger.WarnContext(ctx, "Failed to write audit log",
			"order_id", orderID,
			"kind", kind,
			"error", err,
		)
	}
}

// notificationPayload 审计内容，不记录签名原文
func notificationPayload(n mdpayment.Notification, verdict mdpayment.Verdict) map[string]interface{} {
	return map[string]interface{}{
		"merchant_id":      n.MerchantID,
		"payhere_amount":   n.PayhereAmount,
		"payhere_currency": n.PayhereCurrency,
		"status_code":      n.StatusCode,
		"payment_id":       n.PaymentID,
		"method":           n.Method,
		"mode":             string(verdict.Mode),
		"signature_valid":  verdict.SignatureValid,
		"accepted":         verdict.Accepted,
		"reason":           verdict.Reason,
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	first, last := "Anonymous", "Donor"
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last
}

func itemsLabel(d *etdonation.Donation) string {
	switch {
	case d.MedicineName != "" && d.HospitalName != "":
		return "Donation for " + d.MedicineName + " at " + d.HospitalName
	case d.MedicineName != "":
		return "Donation for " + d.MedicineName
	default:
		return "Donation for medical shortage"
	}
}

func withDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
