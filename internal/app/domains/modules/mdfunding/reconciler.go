package mdfunding

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"hopely/internal/app/pkg/errorx"
)

// Snapshot 某一时刻短缺的资金快照（不落库）
// CurrentTotal 包含全部状态的捐赠，pending 也计入
type Snapshot struct {
	Target            decimal.Decimal
	CurrentTotal      decimal.Decimal
	Remaining         decimal.Decimal // max(Target - CurrentTotal, 0)
	OriginalRequested decimal.Decimal
	WasCapped         bool
	CappedAmount      *decimal.Decimal
	ShortageStatus    string
}

// MarshalJSON 金额统一输出两位小数字符串
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"target":             s.Target.StringFixed(2),
		"current_total":      s.CurrentTotal.StringFixed(2),
		"remaining_needed":   s.Remaining.StringFixed(2),
		"original_requested": s.OriginalRequested.StringFixed(2),
		"was_capped":         s.WasCapped,
	}
	if s.CappedAmount != nil {
		out["capped_amount"] = s.CappedAmount.StringFixed(2)
	}
	if s.ShortageStatus != "" {
		out["shortage_status"] = s.ShortageStatus
	}
	return json.Marshal(out)
}

// Decision 对账结果
type Decision struct {
	ValidatedAmount decimal.Decimal
	Snapshot        Snapshot
}

// Reconcile 根据目标金额与已认捐金额校验/截断本次认捐
//
//	remaining = target - current
//	remaining <= 0       拒绝（FundingClosedError，附快照）
//	requested > remaining 截断为 remaining
//	否则                  原样接受
func Reconcile(target, current, requested decimal.Decimal) (*Decision, error) {
	remaining := target.Sub(current)

	snapshot := Snapshot{
		Target:            target,
		CurrentTotal:      current,
		Remaining:         decimal.Max(remaining, decimal.Zero),
		OriginalRequested: requested,
	}

	if !remaining.IsPositive() {
		return nil, errorx.FundingClosed("This shortage request is already fully funded", snapshot)
	}

	validated := requested
	if requested.GreaterThan(remaining) {
		validated = remaining
		snapshot.WasCapped = true
		snapshot.CappedAmount = &validated
	}

	return &Decision{ValidatedAmount: validated, Snapshot: snapshot}, nil
}
