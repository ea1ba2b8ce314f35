package services

import (
	"errors"
	"strings"
)

// ValidationError 调用方输入未通过本地校验, 在发起任何远端调用之前返回
type ValidationError struct {
	Title    string   `json:"title"`
	Messages []string `json:"messages"`
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// NotFoundError 目标对象不存在, 或调用方在远端没有可见权限
type NotFoundError struct {
	Title    string   `json:"title"`
	Messages []string `json:"messages"`
}

func (e *NotFoundError) Error() string {
	return strings.Join(e.Messages, " ")
}

// RemoteError 单目标操作的远端失败, 原样保留远端信息
type RemoteError struct {
	Title    string   `json:"title"`
	Messages []string `json:"messages"`
	Err      error    `json:"-"`
}

func (e *RemoteError) Error() string {
	return strings.Join(e.Messages, " ")
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func validationError(title string, messages ...string) *ValidationError {
	return &ValidationError{Title: title, Messages: messages}
}

func notFoundError(title string, messages ...string) *NotFoundError {
	return &NotFoundError{Title: title, Messages: messages}
}

func remoteError(title string, err error) *RemoteError {
	return &RemoteError{Title: title, Messages: []string{err.Error()}, Err: err}
}

// ErrorBlock 提取可展示的标题与消息列表, 非业务错误返回 false
func ErrorBlock(err error) (string, []string, bool) {
	var (
		ve *ValidationError
		ne *NotFoundError
		re *RemoteError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Title, ve.Messages, true
	case errors.As(err, &ne):
		return ne.Title, ne.Messages, true
	case errors.As(err, &re):
		return re.Title, re.Messages, true
	}
	return "", nil, false
}
