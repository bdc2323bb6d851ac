package rpdonation

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/domains/entity/etprimitive"
	"hopely/internal/app/domains/entity/etshortage"
)

var ErrDuplicateOrder = errors.New("order id already exists")

// Filter 列表/汇总过滤条件，空字段表示不过滤
type Filter struct {
	Status     etdonation.Status
	HospitalID string
	ShortageID string
}

// Totals 按状态汇总
type Totals struct {
	TotalDonations  int64
	Counts          map[etdonation.Status]int64
	ConfirmedAmount decimal.Decimal // 仅 completed
}

// TransitionOutcome 完成转换的分支
type TransitionOutcome int

const (
	// TransitionUpdated 已有未完成记录，原地更新为 completed
	TransitionUpdated TransitionOutcome = iota + 1
	// TransitionAlreadyCompleted 记录已是 completed，不做任何修改
	TransitionAlreadyCompleted
	// TransitionFallbackInserted 没有任何记录，按网关数据补录一条已完成记录
	TransitionFallbackInserted
)

func (o TransitionOutcome) String() string {
	switch o {
	case TransitionUpdated:
		return "updated"
	case TransitionAlreadyCompleted:
		return "already_completed"
	case TransitionFallbackInserted:
		return "fallback_inserted"
	default:
		return "unknown"
	}
}

// TransitionResult 完成转换结果
type TransitionResult struct {
	Outcome        TransitionOutcome
	PreviousStatus etdonation.Status // 仅 TransitionUpdated 有值
	Donation       *etdonation.Donation
}

// BudgetFunc 在短缺行锁内执行的对账决策
// shortage 为 nil 表示短缺不存在；committed 为该短缺下全部状态捐赠的累计金额
// 返回 nil 记录表示不插入
type BudgetFunc func(shortage *etshortage.Shortage, committed decimal.Decimal) (*etdonation.Donation, error)

// DonationRepository 捐赠仓储接口（只定义，不实现）
type DonationRepository interface {
	// Create 创建记录，order_id 冲突返回 ErrDuplicateOrder
	Create(ctx context.Context, donation *etdonation.Donation) error

	// CreateWithinShortageBudget 在一个事务内锁定短缺行、汇总已认捐金额、执行 build 并插入
	CreateWithinShortageBudget(ctx context.Context, shortageID string, build BudgetFunc) (*etdonation.Donation, error)

	// GetByOrderID 根据订单号查询，不存在返回 nil, nil
	GetByOrderID(ctx context.Context, orderID string) (*etdonation.Donation, error)

	// List 分页查询，按创建时间倒序
	List(ctx context.Context, filter Filter, page etprimitive.Pagination) ([]*etdonation.Donation, int64, error)

	// Totals 按状态计数，并汇总 completed 金额
	Totals(ctx context.Context, filter Filter) (*Totals, error)

	// ListByShortage 短缺下全部捐赠，按创建时间倒序
	ListByShortage(ctx context.Context, shortageID string) ([]*etdonation.Donation, error)

	// SumByShortage 短缺下全部状态的累计金额
	SumByShortage(ctx context.Context, shortageID string) (decimal.Decimal, error)

	// TransitionToCompleted 幂等地将订单置为 completed
	// 找不到记录时用 newID 生成主键补录
	TransitionToCompleted(ctx context.Context, orderID string, payment etdonation.PaymentFields, newID func() int64) (*TransitionResult, error)

	// ListPending 全部 pending 记录，按创建时间倒序
	ListPending(ctx context.Context) ([]*etdonation.Donation, error)

	// CompletePending 将 pending 记录人工置为 completed，orderID 为空表示全部
	// 返回实际被修改的订单号
	CompletePending(ctx context.Context, orderID string, method string) ([]string, error)
}
