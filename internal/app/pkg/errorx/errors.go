package errorx

import (
	"errors"
	"fmt"
)

// Kind 错误分类
type Kind string

const (
	KindValidation    Kind = "ValidationError"
	KindNotFound      Kind = "NotFoundError"
	KindFundingClosed Kind = "FundingClosedError"
	KindConfiguration Kind = "ConfigurationError"
	KindSignature     Kind = "SignatureVerificationFailure"
	KindStorage       Kind = "StorageError"
)

// BusinessError 业务错误结构
type BusinessError struct {
	Kind    Kind
	Message string
	Details []ErrorDetail
	// Data 随错误返回给调用方的附加数据（例如资金快照）
	Data  interface{}
	cause error
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Path string
	Info string
}

// Error 实现 error 接口
func (e *BusinessError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap 支持 errors.Is / errors.As
func (e *BusinessError) Unwrap() error {
	return e.cause
}

// Validation 参数或必填字段错误
func Validation(message string, details ...ErrorDetail) *BusinessError {
	return &BusinessError{Kind: KindValidation, Message: message, Details: details}
}

// NotFound 引用的资源不存在
func NotFound(message string) *BusinessError {
	return &BusinessError{Kind: KindNotFound, Message: message}
}

// FundingClosed 需求已筹满或已关闭，data 为资金快照
func FundingClosed(message string, data interface{}) *BusinessError {
	return &BusinessError{Kind: KindFundingClosed, Message: message, Data: data}
}

// Configuration 服务端配置缺失
func Configuration(message string) *BusinessError {
	return &BusinessError{Kind: KindConfiguration, Message: message}
}

// Signature 支付通知签名校验失败
func Signature(message string) *BusinessError {
	return &BusinessError{Kind: KindSignature, Message: message}
}

// Storage 包装存储层错误，可重试
func Storage(op string, err error) *BusinessError {
	return &BusinessError{Kind: KindStorage, Message: op, cause: err}
}

// KindOf 返回错误分类，非业务错误返回空
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

// Is 判断错误是否属于某一分类
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// As 提取 BusinessError
func As(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
