package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"hopely/internal/app/pkg/errorx"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Meta    Meta        `json:"meta"`
	Data    interface{} `json:"data,omitempty"`
}

// Meta 元数据
type Meta struct {
	Code    int           `json:"code" example:"200"`
	Type    string        `json:"type,omitempty" example:"ValidationError"`
	Message string        `json:"message" example:"OK"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail 错误详情
type ErrorDetail struct {
	Path string `json:"path" example:"donor_email"`
	Info string `json:"info" example:"donor_email is required"`
}

// ProcessingData Smart Wait 超时返回的数据
type ProcessingData struct {
	OrderID string `json:"order_id" example:"ORDER_1728912000_ab12"`
	Status  string `json:"status" example:"pending"`
	PollURL string `json:"poll_url" example:"/api/v1/donations/ORDER_1728912000_ab12"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Meta: Meta{
			Code:    200,
			Message: "OK",
		},
		Data: data,
	})
}

// SuccessWithMessage 成功响应，附带提示信息
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Meta: Meta{
			Code:    200,
			Message: message,
		},
		Data: data,
	})
}

// Error 错误响应（400/500）
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, Response{
		Meta: Meta{
			Code:    httpCode,
			Message: message,
		},
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpCode int, message string, details []ErrorDetail) {
	c.JSON(httpCode, Response{
		Meta: Meta{
			Code:    httpCode,
			Message: message,
			Details: details,
		},
	})
}

// Processing 处理中响应（3001），用于 Smart Wait 超时场景
func Processing(c *gin.Context, orderID, status, pollURL string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Meta: Meta{
			Code:    3001,
			Message: "Payment confirmation pending, please poll for results",
		},
		Data: ProcessingData{
			OrderID: orderID,
			Status:  status,
			PollURL: pollURL,
		},
	})
}

// Fail 按业务错误分类输出响应
// ConfigurationError 与 StorageError 不向客户端暴露细节
func Fail(c *gin.Context, err error) {
	be, ok := errorx.As(err)
	if !ok {
		_ = c.Error(err)
		InternalError(c, "internal server error")
		return
	}

	switch be.Kind {
	case errorx.KindValidation:
		details := make([]ErrorDetail, 0, len(be.Details))
		for _, d := range be.Details {
			details = append(details, ErrorDetail{Path: d.Path, Info: d.Info})
		}
		c.JSON(http.StatusBadRequest, Response{
			Meta: Meta{Code: http.StatusBadRequest, Type: string(be.Kind), Message: be.Message, Details: details},
		})
	case errorx.KindNotFound:
		c.JSON(http.StatusNotFound, Response{
			Meta: Meta{Code: http.StatusNotFound, Type: string(be.Kind), Message: be.Message},
		})
	case errorx.KindFundingClosed:
		c.JSON(http.StatusBadRequest, Response{
			Meta: Meta{Code: http.StatusBadRequest, Type: string(be.Kind), Message: be.Message},
			Data: be.Data,
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, Response{
			Meta: Meta{Code: http.StatusInternalServerError, Type: string(errorx.KindStorage), Message: "internal server error"},
		})
	}
}

// BadRequest 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// BadRequestWithValidation 400 错误（带验证详情）
func BadRequestWithValidation(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]ErrorDetail, 0, len(validationErrs))
		for _, fieldErr := range validationErrs {
			details = append(details, ErrorDetail{
				Path: fieldErr.Field(),
				Info: getValidationErrorMessage(fieldErr),
			})
		}
		ErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details)
		return
	}

	BadRequest(c, err.Error())
}

// NotFound 404 错误
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500 错误
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// getValidationErrorMessage 根据验证错误类型返回友好的错误消息
func getValidationErrorMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fieldErr.Field() + " is required"
	case "email":
		return fieldErr.Field() + " must be a valid email address"
	case "min":
		return fieldErr.Field() + " must be at least " + fieldErr.Param()
	case "max":
		return fieldErr.Field() + " must be at most " + fieldErr.Param()
	case "oneof":
		return fieldErr.Field() + " must be one of " + fieldErr.Param()
	default:
		return fieldErr.Field() + " is invalid"
	}
}
