// Package errs 定义服务层向 HTTP 边界传递的错误种类.
//
// 存储层只返回普通的包装错误，由 service 统一归类为以下三种之一:
//   - InvalidInput   客户端输入不合法 -> 400
//   - NotFound       标识符未知 -> 404
//   - StorageFailure 后端故障，原因只写日志 -> 500
package errs

import (
	"errors"
	"fmt"
)

// Kind 错误种类.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindNotFound
	KindStorageFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindNotFound:
		return "NotFound"
	case KindStorageFailure:
		return "StorageFailure"
	default:
		return "Unknown"
	}
}

// Error 带种类的错误. Msg 可以直接返回给调用方，Err 仅用于日志.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}

	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// InvalidInput 构造客户端输入错误.
func InvalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

// NotFound 构造未找到错误.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// StorageFailure 构造内部错误，cause 不会暴露给调用方.
func StorageFailure(msg string, cause error) *Error {
	return &Error{Kind: KindStorageFailure, Msg: msg, Err: cause}
}

// KindOf 返回 err 链上第一个 *Error 的种类；nil 返回 KindUnknown，其它错误视为 StorageFailure.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindStorageFailure
}

// Message 返回可以安全展示给调用方的信息.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}

	return "internal error"
}
