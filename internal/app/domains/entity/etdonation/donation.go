package etdonation

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 错误定义
var (
	ErrMissingOrderID    = errors.New("order_id is required")
	ErrMissingDonorName  = errors.New("donor_name is required")
	ErrMissingDonorEmail = errors.New("donor_email is required")
	ErrMissingDonorPhone = errors.New("donor_phone is required")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidStatus     = errors.New("invalid donation status")
)

// DefaultCurrency 默认币种
const DefaultCurrency = "LKR"

// 网关未回填时使用的默认值
const (
	DefaultPaymentID     = "sandbox_payment"
	DefaultPaymentMethod = "card"
	ManualPaymentMethod  = "manual_completion"
)

// 兜底插入时的占位捐赠人
const (
	SyntheticDonorName  = "PayHere User"
	SyntheticDonorEmail = "payhere@example.com"
)

// FieldError 字段级校验错误
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Status 捐赠状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// AllStatuses 全部状态，按展示顺序
var AllStatuses = []Status{StatusPending, StatusCompleted, StatusFailed, StatusCancelled}

// ParseStatus 解析状态
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", ErrInvalidStatus
}

// Donor 捐赠人信息（值对象）
type Donor struct {
	Name    string
	Email   string
	Phone   string
	Address string
	City    string
}

// Donation 捐赠聚合根（领域对象）
type Donation struct {
	ID         int64
	OrderID    string
	ShortageID string // 空表示一般捐赠
	HospitalID string

	Donor        Donor
	MedicineName string
	HospitalName string
	Note         string

	Amount   decimal.Decimal
	Currency string
	Status   Status

	MerchantID      string
	PaymentID       string
	PaymentMethod   string
	GatewayAmount   *decimal.Decimal
	GatewayCurrency string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

// PledgeFields 认捐请求字段
type PledgeFields struct {
	OrderID      string
	ShortageID   string
	HospitalID   string
	Donor        Donor
	MedicineName string
	HospitalName string
	Note         string
	Amount       decimal.Decimal
	Currency     string
	MerchantID   string
}

// Validate 校验必填字段与金额
func (f PledgeFields) Validate() error {
	if strings.TrimSpace(f.OrderID) == "" {
		return &FieldError{Field: "order_id", Err: ErrMissingOrderID}
	}
	if strings.TrimSpace(f.Donor.Name) == "" {
		return &FieldError{Field: "donor_name", Err: ErrMissingDonorName}
	}
	if strings.TrimSpace(f.Donor.Email) == "" {
		return &FieldError{Field: "donor_email", Err: ErrMissingDonorEmail}
	}
	if strings.TrimSpace(f.Donor.Phone) == "" {
		return &FieldError{Field: "donor_phone", Err: ErrMissingDonorPhone}
	}
	// 金额按两位小数入库，舍入后为 0 的金额同样无效
	if !f.Amount.Round(2).IsPositive() {
		return &FieldError{Field: "amount", Err: ErrInvalidAmount}
	}
	return nil
}

// NewPledge 创建待支付的认捐（工厂方法），amount 为对账后的金额
func NewPledge(id int64, fields PledgeFields, amount decimal.Decimal) (*Donation, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	rounded := amount.Round(2)
	if !rounded.IsPositive() {
		return nil, &FieldError{Field: "amount", Err: ErrInvalidAmount}
	}

	currency := strings.ToUpper(strings.TrimSpace(fields.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	now := time.Now()
	return &Donation{
		ID:           id,
		OrderID:      strings.TrimSpace(fields.OrderID),
		ShortageID:   fields.ShortageID,
		HospitalID:   fields.HospitalID,
		Donor:        fields.Donor,
		MedicineName: fields.MedicineName,
		HospitalName: fields.HospitalName,
		Note:         fields.Note,
		Amount:       rounded,
		Currency:     currency,
		Status:       StatusPending,
		MerchantID:   fields.MerchantID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// PaymentFields 网关通知回填的支付信息
type PaymentFields struct {
	MerchantID      string
	PaymentID       string
	PaymentMethod   string
	GatewayAmount   *decimal.Decimal
	GatewayCurrency string
}

// WithDefaults 补齐网关未提供的字段
func (p PaymentFields) WithDefaults() PaymentFields {
	if p.PaymentID == "" {
		p.PaymentID = DefaultPaymentID
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = DefaultPaymentMethod
	}
	return p
}

// NewSyntheticCompleted 网关确认了一笔找不到认捐记录的支付，按网关金额补录为已完成
func NewSyntheticCompleted(id int64, orderID string, payment PaymentFields) (*Donation, error) {
	if strings.TrimSpace(orderID) == "" {
		return nil, &FieldError{Field: "order_id", Err: ErrMissingOrderID}
	}
	if payment.GatewayAmount == nil || !payment.GatewayAmount.Round(2).IsPositive() {
		return nil, &FieldError{Field: "payhere_amount", Err: ErrInvalidAmount}
	}

	payment = payment.WithDefaults()
	currency := payment.GatewayCurrency
	if currency == "" {
		currency = DefaultCurrency
	}

	now := time.Now()
	return &Donation{
		ID:      id,
		OrderID: orderID,
		Donor: Donor{
			Name:  SyntheticDonorName,
			Email: SyntheticDonorEmail,
			Phone: SyntheticDonorName,
		},
		Amount:          payment.GatewayAmount.Round(2),
		Currency:        currency,
		Status:          StatusCompleted,
		MerchantID:      payment.MerchantID,
		PaymentID:       payment.PaymentID,
		PaymentMethod:   payment.PaymentMethod,
		GatewayAmount:   payment.GatewayAmount,
		GatewayCurrency: payment.GatewayCurrency,
		CreatedAt:       now,
		UpdatedAt:       now,
		CompletedAt:     &now,
	}, nil
}

// IsCompleted 是否已完成，完成后金额与 payment_id 不可变
func (d *Donation) IsCompleted() bool {
	return d.Status == StatusCompleted
}

// HasShortage 是否关联到某个短缺
func (d *Donation) HasShortage() bool {
	return d.ShortageID != ""
}
