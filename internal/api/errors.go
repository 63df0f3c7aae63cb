package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopadmin/internal/service"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeNotFound           = "ERR_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"

	// 认证错误码
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeUsernameExists     = "ERR_USERNAME_EXISTS"
	ErrCodeEmailExists        = "ERR_EMAIL_EXISTS"
	ErrCodeUserDisabled       = "ERR_USER_DISABLED"
	ErrCodeInvalidToken       = "ERR_INVALID_TOKEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"

	// 资源错误码
	ErrCodeUserNotFound     = "ERR_USER_NOT_FOUND"
	ErrCodeProductNotFound  = "ERR_PRODUCT_NOT_FOUND"
	ErrCodeProductExists    = "ERR_PRODUCT_EXISTS"
	ErrCodeOrderNotFound    = "ERR_ORDER_NOT_FOUND"
	ErrCodeCustomerNotFound = "ERR_CUSTOMER_NOT_FOUND"

	// 业务逻辑错误码
	ErrCodeMissingField      = "ERR_MISSING_FIELD"
	ErrCodeInvalidStatus     = "ERR_INVALID_STATUS"
	ErrCodeCannotDeleteSelf  = "ERR_CANNOT_DELETE_SELF"
	ErrCodePasswordIncorrect = "ERR_CURRENT_PASSWORD_INCORRECT"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
	})
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, APIError{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// 常用错误响应快捷函数

// BadRequest 400 错误请求
func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401 未授权
func Unauthorized(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403 禁止访问
func Forbidden(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusForbidden, code, message)
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// MissingField 缺少必填字段
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", gin.H{"field": field})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// DomainError 将领域错误按 Kind 翻译为 HTTP 状态码，统一出口。
func DomainError(c *gin.Context, err error) {
	domainErr, ok := service.AsError(err)
	if !ok {
		InternalError(c, "internal server error")
		return
	}

	switch domainErr.Kind {
	case service.KindValidation:
		BadRequest(c, domainCode(domainErr.Code), domainErr.Message)
	case service.KindConflict:
		ErrorResponse(c, http.StatusConflict, domainCode(domainErr.Code), domainErr.Message)
	case service.KindAuthentication:
		Unauthorized(c, domainCode(domainErr.Code), domainErr.Message)
	case service.KindAuthorization:
		Forbidden(c, domainCode(domainErr.Code), domainErr.Message)
	case service.KindNotFound:
		NotFound(c, domainCode(domainErr.Code), domainErr.Message)
	default:
		InternalError(c, "internal server error")
	}
}

// domainCode 将领域错误码映射为对外 ERR_* 错误码
func domainCode(code string) string {
	switch code {
	case service.CodeUsernameTaken:
		return ErrCodeUsernameExists
	case service.CodeEmailTaken:
		return ErrCodeEmailExists
	case service.CodeInvalidCredentials:
		return ErrCodeInvalidCredentials
	case service.CodeAccountDeactivated:
		return ErrCodeUserDisabled
	case service.CodeUserNotFound:
		return ErrCodeUserNotFound
	case service.CodeCurrentPasswordIncorrect:
		return ErrCodePasswordIncorrect
	default:
		return ErrCodeInvalidRequest
	}
}
