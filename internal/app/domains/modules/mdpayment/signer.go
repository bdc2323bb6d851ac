package mdpayment

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/shopspring/decimal"

	"hopely/internal/app/pkg/errorx"
)

// 网关收银台地址
const (
	SandboxCheckoutURL = "https://sandbox.payhere.lk/pay/checkout"
	LiveCheckoutURL    = "https://www.payhere.lk/pay/checkout"
)

// CheckoutURL 按环境选择收银台地址
func CheckoutURL(sandbox bool) string {
	if sandbox {
		return SandboxCheckoutURL
	}
	return LiveCheckoutURL
}

// FormatAmount 金额格式化为两位小数字符串，网关按字节比对
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// md5Upper UPPER(HEX(MD5(s)))
func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Signer 出站支付请求签名
type Signer struct {
	merchantSecret string
}

// NewSigner 创建签名器
func NewSigner(merchantSecret string) *Signer {
	return &Signer{merchantSecret: merchantSecret}
}

// IssuePaymentHash 生成支付请求签名
//
//	digest1 = UPPER(HEX(MD5(secret)))
//	hash    = UPPER(HEX(MD5(merchantId + orderId + amount(2dp) + currency + digest1)))
func (s *Signer) IssuePaymentHash(merchantID, orderID string, amount decimal.Decimal, currency string) (string, error) {
	if s.merchantSecret == "" {
		return "", errorx.Configuration("merchant secret not configured")
	}
	return md5Upper(merchantID + orderID + FormatAmount(amount) + currency + md5Upper(s.merchantSecret)), nil
}

// notificationSignature 入站通知的本地签名
func notificationSignature(secret string, n Notification) string {
	return md5Upper(n.MerchantID + n.OrderID + n.PayhereAmount + n.PayhereCurrency + n.StatusCode + md5Upper(secret))
}
