package mdpayment

import (
	"crypto/subtle"
	"strings"

	"github.com/shopspring/decimal"

	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/pkg/errorx"
)

// Notification 网关异步通知（form-encoded）
type Notification struct {
	MerchantID      string
	OrderID         string
	PayhereAmount   string
	PayhereCurrency string
	StatusCode      string
	MD5Sig          string
	PaymentID       string
	Method          string
	StatusMessage   string
}

// NotificationFromForm 从表单字段构造通知
func NotificationFromForm(form map[string]string) Notification {
	return Notification{
		MerchantID:      form["merchant_id"],
		OrderID:         form["order_id"],
		PayhereAmount:   form["payhere_amount"],
		PayhereCurrency: form["payhere_currency"],
		StatusCode:      form["status_code"],
		MD5Sig:          form["md5sig"],
		PaymentID:       form["payment_id"],
		Method:          form["method"],
		StatusMessage:   form["status_message"],
	}
}

// PaymentFields 通知中的支付信息
func (n Notification) PaymentFields() etdonation.PaymentFields {
	p := etdonation.PaymentFields{
		MerchantID:      n.MerchantID,
		PaymentID:       n.PaymentID,
		PaymentMethod:   n.Method,
		GatewayCurrency: n.PayhereCurrency,
	}
	if amount, err := decimal.NewFromString(strings.TrimSpace(n.PayhereAmount)); err == nil {
		p.GatewayAmount = &amount
	}
	return p
}

// Mode 校验所走的分支
type Mode string

const (
	ModeBypass     Mode = "TEST_BYPASS"
	ModeSandbox    Mode = "LENIENT_SANDBOX"
	ModeProduction Mode = "STRICT_PRODUCTION"
)

// Verdict 校验结论
type Verdict struct {
	Accepted       bool
	Mode           Mode
	SignatureValid bool
	Reason         string
}

// VerifierConfig 校验参数
type VerifierConfig struct {
	MerchantSecret    string
	Sandbox           bool
	SuccessStatusCode string
	BypassSignature   string
	TestOrderPrefix   string
}

// Verifier 入站通知校验，系统唯一的信任边界
type Verifier struct {
	cfg VerifierConfig
}

// NewVerifier 创建校验器
func NewVerifier(cfg VerifierConfig) *Verifier {
	if cfg.SuccessStatusCode == "" {
		cfg.SuccessStatusCode = "2"
	}
	return &Verifier{cfg: cfg}
}

// Verify 校验通知
//   - 测试签名 + 测试订单前缀：任何模式下都接受
//   - sandbox：merchant_id、order_id、payhere_amount 齐全即接受
//   - production：签名一致（常量时间比较）且 status_code 为成功码；未配置 secret 返回 ConfigurationError
func (v *Verifier) Verify(n Notification) (Verdict, error) {
	if v.isBypass(n) {
		return Verdict{Accepted: true, Mode: ModeBypass, Reason: "test bypass signature"}, nil
	}

	if v.cfg.Sandbox {
		verdict := Verdict{Mode: ModeSandbox}
		if v.cfg.MerchantSecret != "" {
			verdict.SignatureValid = v.signatureMatches(n)
		}
		if n.MerchantID == "" || n.OrderID == "" || n.PayhereAmount == "" {
			verdict.Reason = "missing merchant_id, order_id or payhere_amount"
			return verdict, nil
		}
		verdict.Accepted = true
		return verdict, nil
	}

	if v.cfg.MerchantSecret == "" {
		return Verdict{Mode: ModeProduction}, errorx.Configuration("merchant secret not configured")
	}

	verdict := Verdict{Mode: ModeProduction, SignatureValid: v.signatureMatches(n)}
	switch {
	case !verdict.SignatureValid:
		verdict.Reason = "signature mismatch"
	case n.StatusCode != v.cfg.SuccessStatusCode:
		verdict.Reason = "status_code " + n.StatusCode + " is not a success code"
	default:
		verdict.Accepted = true
	}
	return verdict, nil
}

func (v *Verifier) isBypass(n Notification) bool {
	return v.cfg.BypassSignature != "" &&
		v.cfg.TestOrderPrefix != "" &&
		n.MD5Sig == v.cfg.BypassSignature &&
		strings.HasPrefix(n.OrderID, v.cfg.TestOrderPrefix)
}

func (v *Verifier) signatureMatches(n Notification) bool {
	local := notificationSignature(v.cfg.MerchantSecret, n)
	return subtle.ConstantTimeCompare([]byte(local), []byte(n.MD5Sig)) == 1
}
