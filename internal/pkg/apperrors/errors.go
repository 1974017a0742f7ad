package apperrors

import (
	"errors"
	"fmt"
)

// Code 定义错误码类型
type Code int

// 系统级错误码 (1000-1999)
const (
	CodeInternal Code = 1000 + iota
	CodeDatabase
	CodeExternalService // 下游网关（支付/承运商/邮件）调用失败，本地状态未发生变化
)

// 认证与权限错误码 (2000-2999)
const (
	CodeUnauthorized Code = 2000 + iota
	CodeForbidden
)

// 请求与业务错误码 (3000-3999)
const (
	CodeValidation Code = 3000 + iota
	CodeNotFound
	CodeConflict          // 唯一性约束冲突：订单重复包裹、重复保修单
	CodeInvalidTransition // 状态流转不在允许表内
)

// AppError 定义应用错误结构
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New 创建新的应用错误
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf 创建带格式化消息的应用错误
func Newf(code Code, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装已有错误
func Wrap(code Code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// IsCode 判断错误链上是否存在指定错误码
func IsCode(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// CodeOf 返回错误链上的错误码，非 AppError 一律视为内部错误
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
