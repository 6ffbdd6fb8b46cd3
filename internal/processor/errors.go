package processor

import (
	"errors"
	"fmt"
)

// 基础错误类型
var (
	ErrEmptyUpload         = errors.New("上传文件为空")
	ErrDocumentTooLarge    = errors.New("文件超过大小限制")
	ErrUnsupportedDocument = errors.New("Only PDF, DOCX and TXT files are supported")
	ErrParseFailed         = errors.New("简历解析失败")
)

// ParseError 带解析ID和阶段信息的错误
type ParseError struct {
	ParseID string
	Op      string
	BaseErr error
	Detail  string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, ID:%s): %s", e.BaseErr, e.Op, e.ParseID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, ID:%s)", e.BaseErr, e.Op, e.ParseID)
}

func (e *ParseError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ParseError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

func newValidationError(parseID string, base error, detail string) error {
	return &ParseError{ParseID: parseID, Op: "validate", BaseErr: base, Detail: detail}
}

func newParseError(parseID string, err error) error {
	return &ParseError{ParseID: parseID, Op: "parse", BaseErr: ErrParseFailed, Detail: err.Error()}
}
