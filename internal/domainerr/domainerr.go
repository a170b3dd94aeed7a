package domainerr

import (
	"errors"
	"fmt"
)

// Kind 领域错误类别
type Kind string

const (
	KindNotFound           Kind = "not_found"           // 实体不存在
	KindUnauthorized       Kind = "unauthorized"        // 操作者无权限
	KindWindowClosed       Kind = "window_closed"       // 不在允许的时间窗口内
	KindLimitExceeded      Kind = "limit_exceeded"      // 超过募资上限或投资等级限额
	KindInvariantViolation Kind = "invariant_violation" // 违反一致性约束
	KindAlreadyProcessed   Kind = "already_processed"   // 已处理过，禁止重复操作
)

// Error 携带类别的领域错误，消息可直接展示给用户
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New 创建领域错误
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound 实体不存在
func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

// Unauthorized 操作者无权限
func Unauthorized(format string, args ...interface{}) *Error {
	return New(KindUnauthorized, format, args...)
}

// WindowClosed 不在允许的时间窗口内
func WindowClosed(format string, args ...interface{}) *Error {
	return New(KindWindowClosed, format, args...)
}

// LimitExceeded 超过限额
func LimitExceeded(format string, args ...interface{}) *Error {
	return New(KindLimitExceeded, format, args...)
}

// InvariantViolation 违反一致性约束
func InvariantViolation(format string, args ...interface{}) *Error {
	return New(KindInvariantViolation, format, args...)
}

// AlreadyProcessed 禁止重复操作
func AlreadyProcessed(format string, args ...interface{}) *Error {
	return New(KindAlreadyProcessed, format, args...)
}

// KindOf 提取错误类别，非领域错误返回空字符串
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// Is 判断错误是否为指定类别的领域错误
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
