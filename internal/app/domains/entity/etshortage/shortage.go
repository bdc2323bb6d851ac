package etshortage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 错误定义
var (
	ErrMissingID           = errors.New("shortage id cannot be empty")
	ErrMissingHospitalID   = errors.New("hospital id cannot be empty")
	ErrMissingMedicineName = errors.New("medicine name is required")
	ErrInvalidQuantity     = errors.New("quantity needed must be greater than zero")
	ErrNegativeAvailable   = errors.New("quantity available cannot be negative")
	ErrMissingUnit         = errors.New("unit is required")
	ErrMissingUrgency      = errors.New("urgency level is required")
	ErrInvalidUrgency      = errors.New("invalid urgency level, must be LOW, MEDIUM, HIGH, or CRITICAL")
	ErrInvalidStatus       = errors.New("invalid shortage status")
	ErrNegativeFunding     = errors.New("funding target cannot be negative")
	ErrNegativeCostPerUnit = errors.New("cost per unit cannot be negative")
)

// DefaultCurrency 资金目标的默认币种
const DefaultCurrency = "LKR"

// FieldError 字段级校验错误
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Urgency 紧急程度，LOW < MEDIUM < HIGH < CRITICAL
type Urgency string

const (
	UrgencyLow      Urgency = "LOW"
	UrgencyMedium   Urgency = "MEDIUM"
	UrgencyHigh     Urgency = "HIGH"
	UrgencyCritical Urgency = "CRITICAL"
)

var urgencyRank = map[Urgency]int{
	UrgencyLow:      1,
	UrgencyMedium:   2,
	UrgencyHigh:     3,
	UrgencyCritical: 4,
}

// ParseUrgency 大小写不敏感地解析紧急程度
func ParseUrgency(s string) (Urgency, error) {
	u := Urgency(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := urgencyRank[u]; !ok {
		return "", ErrInvalidUrgency
	}
	return u, nil
}

// Rank 排序权重，非法值为 0
func (u Urgency) Rank() int {
	return urgencyRank[u]
}

// Less 紧急程度比较
func (u Urgency) Less(other Urgency) bool {
	return u.Rank() < other.Rank()
}

// Status 短缺状态
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusFulfilled Status = "FULFILLED"
	StatusCancelled Status = "CANCELLED"
	StatusExpired   Status = "EXPIRED"
)

// ParseStatus 解析状态
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusActive, StatusFulfilled, StatusCancelled, StatusExpired:
		return st, nil
	default:
		return "", ErrInvalidStatus
	}
}

// AcceptsPledges CANCELLED 与 EXPIRED 不再接受新的认捐
func (s Status) AcceptsPledges() bool {
	return s != StatusCancelled && s != StatusExpired
}

// Shortage 药品短缺聚合根（领域对象）
type Shortage struct {
	ID                string
	HospitalID        string
	MedicineName      string
	GenericName       string
	QuantityNeeded    int64
	QuantityAvailable int64
	Unit              string
	Urgency           Urgency
	Status            Status
	Description       string
	ContactEmail      string

	FundingTarget   *decimal.Decimal // nil 表示不设上限
	FundingCurrency string
	CostPerUnit     *decimal.Decimal
	FundingNote     string

	ExpirationDate *time.Time
	CreatedBy      string
	UpdatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Spec 医院提交的短缺描述
type Spec struct {
	MedicineName      string
	GenericName       string
	QuantityNeeded    int64
	QuantityAvailable int64
	Unit              string
	Urgency           string
	Description       string
	ContactEmail      string
	FundingTarget     *decimal.Decimal
	CostPerUnit       *decimal.Decimal
	FundingNote       string
	ExpirationDate    *time.Time
	CreatedBy         string
}

// NewShortage 创建短缺（工厂方法），状态为 ACTIVE
func NewShortage(id, hospitalID string, spec Spec) (*Shortage, error) {
	now := time.Now()
	s := &Shortage{
		ID:                id,
		HospitalID:        hospitalID,
		MedicineName:      strings.TrimSpace(spec.MedicineName),
		GenericName:       spec.GenericName,
		QuantityNeeded:    spec.QuantityNeeded,
		QuantityAvailable: spec.QuantityAvailable,
		Unit:              strings.TrimSpace(spec.Unit),
		Status:            StatusActive,
		Description:       spec.Description,
		ContactEmail:      spec.ContactEmail,
		FundingTarget:     spec.FundingTarget,
		FundingCurrency:   DefaultCurrency,
		CostPerUnit:       spec.CostPerUnit,
		FundingNote:       spec.FundingNote,
		ExpirationDate:    spec.ExpirationDate,
		CreatedBy:         spec.CreatedBy,
		UpdatedBy:         spec.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if strings.TrimSpace(spec.Urgency) == "" {
		return nil, &FieldError{Field: "urgency_level", Err: ErrMissingUrgency}
	}
	urgency, err := ParseUrgency(spec.Urgency)
	if err != nil {
		return nil, &FieldError{Field: "urgency_level", Err: err}
	}
	s.Urgency = urgency

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate 校验不变量
func (s *Shortage) Validate() error {
	if s.ID == "" {
		return &FieldError{Field: "id", Err: ErrMissingID}
	}
	if s.HospitalID == "" {
		return &FieldError{Field: "hospital_id", Err: ErrMissingHospitalID}
	}
	if s.MedicineName == "" {
		return &FieldError{Field: "medicine_name", Err: ErrMissingMedicineName}
	}
	if s.QuantityNeeded <= 0 {
		return &FieldError{Field: "quantity_needed", Err: ErrInvalidQuantity}
	}
	if s.QuantityAvailable < 0 {
		return &FieldError{Field: "quantity_available", Err: ErrNegativeAvailable}
	}
	if s.Unit == "" {
		return &FieldError{Field: "unit", Err: ErrMissingUnit}
	}
	if s.Urgency.Rank() == 0 {
		return &FieldError{Field: "urgency_level", Err: ErrInvalidUrgency}
	}
	if _, err := ParseStatus(string(s.Status)); err != nil {
		return &FieldError{Field: "status", Err: err}
	}
	if s.FundingTarget != nil && s.FundingTarget.IsNegative() {
		return &FieldError{Field: "estimated_funding", Err: ErrNegativeFunding}
	}
	if s.CostPerUnit != nil && s.CostPerUnit.IsNegative() {
		return &FieldError{Field: "cost_per_unit", Err: ErrNegativeCostPerUnit}
	}
	return nil
}

// HasFundingTarget 是否设置了资金目标
func (s *Shortage) HasFundingTarget() bool {
	return s.FundingTarget != nil
}

// Lack 缺口数量 max(needed - available, 0)
func (s *Shortage) Lack() int64 {
	if lack := s.QuantityNeeded - s.QuantityAvailable; lack > 0 {
		return lack
	}
	return 0
}

// Cancel 软删除（领域行为），已取消时返回 false
func (s *Shortage) Cancel(by string) bool {
	if s.Status == StatusCancelled {
		return false
	}
	s.Status = StatusCancelled
	s.UpdatedBy = by
	s.UpdatedAt = time.Now()
	return true
}
