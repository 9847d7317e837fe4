// Package errors 将业务错误转换为统一的 JSON 错误响应
package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexbyte/hackmd/pkg/app"
	"github.com/nexbyte/hackmd/pkg/code"
)

// AppError is the JSON body written for failed API calls.
// AppError API 错误响应体
type AppError struct {
	Code       int       `json:"code"`
	Message    string    `json:"message"`
	Details    []string  `json:"details,omitempty"`
	TraceID    string    `json:"traceId,omitempty"`
	HTTPStatus int       `json:"-"`
	Cause      error     `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Cause }

// NewAppError 由错误码构造 AppError，cause 保留在错误链中
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:       c.Code(),
		Message:    c.Msg(),
		Details:    c.Details(),
		HTTPStatus: c.StatusCode(),
		Cause:      cause,
		Timestamp:  time.Now(),
	}
}

// FromError resolves err to an AppError. An AppError in the chain wins over a
// *code.Code; anything else becomes code.ErrorInternal with err as its cause.
func FromError(err error) *AppError {
	if appErr := GetAppError(err); appErr != nil {
		return appErr
	}
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return NewAppError(codeErr, err)
	}
	return NewAppError(code.ErrorInternal, err)
}

// ErrorResponse 写出错误响应并带上请求的 TraceID
func ErrorResponse(c *gin.Context, err error) {
	appErr := FromError(err)
	appErr.TraceID = app.GetTraceIDFromGin(c)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, appErr)
}

// IsAppError 判断错误链中是否包含 AppError
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// GetAppError 从错误链中取出 AppError
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}
