package zabbix

import (
	"errors"
	"strings"
)

// TransportError 网络层失败（连接失败、超时、非 2xx 以外的读取错误）
type TransportError struct {
	URL    string
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError 响应不是合法的 JSON-RPC 对象
type ProtocolError struct {
	URL    string
	Method string
	Body   string
}

func (e *ProtocolError) Error() string {
	return "Invalid JSON-RPC response."
}

// RemoteApiError 远端返回了 JSON-RPC error 信封
type RemoteApiError struct {
	URL     string
	Method  string
	Code    int
	Message string
}

func (e *RemoteApiError) Error() string {
	return e.Message
}

// IsNotAuthorized 判断是否为远端拒绝鉴权, 用于触发旧版 auth 字段重试
func IsNotAuthorized(err error) bool {
	var apiErr *RemoteApiError
	if !errors.As(err, &apiErr) {
		return false
	}

	return strings.Contains(strings.ToLower(apiErr.Message), "not authorized")
}

// ErrInvalidVersion apiinfo.version 返回空值或非字符串
var ErrInvalidVersion = errors.New("Invalid API version response.")
