package etshortage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// 历史文档中同一字段的多种命名，按优先级排列
var (
	aliasID             = []string{"id", "shortageId", "shortage_id", "_id"}
	aliasHospitalID     = []string{"hospitalId", "hospital_id"}
	aliasMedicineName   = []string{"medicineName", "name", "medicine", "medicine_name"}
	aliasGenericName    = []string{"genericName", "generic_name"}
	aliasNeeded         = []string{"quantityNeeded", "needed", "required", "quantity_needed", "quantity"}
	aliasAvailable      = []string{"availableStock", "quantityAvailable", "available", "quantity_available"}
	aliasUnit           = []string{"unit"}
	aliasUrgency        = []string{"urgencyLevel", "urgency", "urgency_level"}
	aliasStatus         = []string{"status"}
	aliasDescription    = []string{"description"}
	aliasContactEmail   = []string{"contactEmail", "contact_email"}
	aliasFundingTarget  = []string{"estimatedFunding", "funding_target", "fundingTarget", "estimated_funding"}
	aliasCurrency       = []string{"fundingCurrency", "funding_currency", "currency"}
	aliasCostPerUnit    = []string{"costPerUnit", "cost_per_unit"}
	aliasFundingNote    = []string{"fundingNote", "funding_note"}
	aliasExpirationDate = []string{"expirationDate", "expiration_date"}
	aliasCreatedBy      = []string{"createdBy", "created_by"}
	aliasUpdatedBy      = []string{"updatedBy", "updated_by"}
	aliasCreatedAt      = []string{"datePosted", "createdAt", "created_at"}
	aliasUpdatedAt      = []string{"dateUpdated", "updatedAt", "updated_at"}
)

// NormalizeDocument 将历史形态的短缺文档映射为规范的 Shortage
// 缺失的名称取 "Unknown"，缺失的紧急程度取 LOW，缺失的状态取 ACTIVE，缺失的币种取 LKR
// 返回值未经过 Validate，调用方决定是否入库
func NormalizeDocument(doc map[string]any) (*Shortage, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is empty")
	}

	s := &Shortage{
		ID:              pickString(doc, aliasID),
		HospitalID:      pickString(doc, aliasHospitalID),
		MedicineName:    pickString(doc, aliasMedicineName),
		GenericName:     pickString(doc, aliasGenericName),
		Unit:            pickString(doc, aliasUnit),
		Description:     pickString(doc, aliasDescription),
		ContactEmail:    pickString(doc, aliasContactEmail),
		FundingCurrency: strings.ToUpper(pickString(doc, aliasCurrency)),
		FundingNote:     pickString(doc, aliasFundingNote),
		CreatedBy:       pickString(doc, aliasCreatedBy),
		UpdatedBy:       pickString(doc, aliasUpdatedBy),
	}

	if s.MedicineName == "" {
		s.MedicineName = "Unknown"
	}
	if s.FundingCurrency == "" {
		s.FundingCurrency = DefaultCurrency
	}

	var err error
	if s.QuantityNeeded, err = pickInt(doc, aliasNeeded); err != nil {
		return nil, &FieldError{Field: "quantity_needed", Err: err}
	}
	if s.QuantityAvailable, err = pickInt(doc, aliasAvailable); err != nil {
		return nil, &FieldError{Field: "quantity_available", Err: err}
	}

	s.Urgency = UrgencyLow
	if raw := pickString(doc, aliasUrgency); raw != "" {
		if s.Urgency, err = ParseUrgency(raw); err != nil {
			return nil, &FieldError{Field: "urgency_level", Err: err}
		}
	}

	s.Status = StatusActive
	if raw := pickString(doc, aliasStatus); raw != "" {
		if s.Status, err = ParseStatus(raw); err != nil {
			return nil, &FieldError{Field: "status", Err: err}
		}
	}

	if s.FundingTarget, err = pickDecimal(doc, aliasFundingTarget); err != nil {
		return nil, &FieldError{Field: "estimated_funding", Err: err}
	}
	if s.CostPerUnit, err = pickDecimal(doc, aliasCostPerUnit); err != nil {
		return nil, &FieldError{Field: "cost_per_unit", Err: err}
	}

	s.ExpirationDate = pickTime(doc, aliasExpirationDate)
	now := time.Now()
	if t := pickTime(doc, aliasCreatedAt); t != nil {
		s.CreatedAt = *t
	} else {
		s.CreatedAt = now
	}
	if t := pickTime(doc, aliasUpdatedAt); t != nil {
		s.UpdatedAt = *t
	} else {
		s.UpdatedAt = s.CreatedAt
	}

	return s, nil
}

func pick(doc map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := doc[k]; ok && v != nil {
			if str, isStr := v.(string); isStr && strings.TrimSpace(str) == "" {
				continue
			}
			return v, true
		}
	}
	return nil, false
}

func pickString(doc map[string]any, keys []string) string {
	v, ok := pick(doc, keys)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func pickInt(doc map[string]any, keys []string) (int64, error) {
	v, ok := pick(doc, keys)
	if !ok {
		return 0, nil
	}
	switch t := v.(type) {
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case int64:
		return t, nil
	case float64:
		return floatToInt(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t.String())
		}
		return floatToInt(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		return floatToInt(f)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// floatToInt 数量必须是 int64 范围内的整数
func floatToInt(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not a finite number")
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	// float64(math.MaxInt64) 向上取整为 2^63，本身已越界
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("out of range: %v", f)
	}
	return int64(f), nil
}

func pickDecimal(doc map[string]any, keys []string) (*decimal.Decimal, error) {
	v, ok := pick(doc, keys)
	if !ok {
		return nil, nil
	}
	var d decimal.Decimal
	switch t := v.(type) {
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case float64:
		d = decimal.NewFromFloat(t)
	case json.Number:
		parsed, err := decimal.NewFromString(t.String())
		if err != nil {
			return nil, err
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(t))
		if err != nil {
			return nil, fmt.Errorf("not a number: %q", t)
		}
		d = parsed
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
	// 旧数据以 0 表示“未设置资金目标”
	if d.IsZero() {
		return nil, nil
	}
	return &d, nil
}

func pickTime(doc map[string]any, keys []string) *time.Time {
	v, ok := pick(doc, keys)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed
			}
		}
	}
	return nil
}
