package collector

import (
	"errors"
	"fmt"
)

var (
	ErrNoSources   = errors.New("no sources configured")
	ErrUnknownKind = errors.New("unknown source kind")
)

// FetchError 网络错误、超时或非 2xx 状态码，整个源本轮记为 0 条
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError 整个文档无法解析，处理方式与 FetchError 相同
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// GapError 单条候选缺字段或被过滤，只跳过这一条
type GapError struct {
	Field  string
	Reason string
}

func (e *GapError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func gap(field, reason string) error {
	return &GapError{Field: field, Reason: reason}
}
