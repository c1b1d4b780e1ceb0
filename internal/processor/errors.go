package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrInvalidInput    = errors.New("输入无效")
	ErrUnsupportedFile = errors.New("不支持的文件类型")
	ErrNoUsableText    = errors.New("无法从上传内容中提取文本")
	ErrSynthesisFailed = errors.New("无法生成结构化简历")
	ErrNoProfile       = errors.New("当前会话没有简历数据")
	ErrRenderFailed    = errors.New("导出文档失败")
	ErrSessionStore    = errors.New("会话存储失败")
)

// ProfileError 包含详细错误信息的自定义错误
type ProfileError struct {
	Op        string
	SessionID string
	BaseErr   error
	Detail    string
}

func (e *ProfileError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 会话:%s): %s", e.BaseErr, e.Op, e.SessionID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 会话:%s)", e.BaseErr, e.Op, e.SessionID)
}

func (e *ProfileError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ProfileError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newError(op, sessionID string, base error, detail string) error {
	return &ProfileError{Op: op, SessionID: sessionID, BaseErr: base, Detail: detail}
}

// 错误构造函数
func NewInputError(sessionID, detail string) error {
	return newError("input", sessionID, ErrInvalidInput, detail)
}

func NewUnsupportedFileError(sessionID, detail string) error {
	return newError("upload", sessionID, ErrUnsupportedFile, detail)
}

func NewExtractError(sessionID, detail string) error {
	return newError("extract", sessionID, ErrNoUsableText, detail)
}

func NewSynthesisError(sessionID, detail string) error {
	return newError("synthesize", sessionID, ErrSynthesisFailed, detail)
}

func NewNoProfileError(sessionID string) error {
	return newError("load", sessionID, ErrNoProfile, "")
}

func NewRenderError(sessionID, detail string) error {
	return newError("render", sessionID, ErrRenderFailed, detail)
}

func NewStoreError(sessionID, detail string) error {
	return newError("store", sessionID, ErrSessionStore, detail)
}
