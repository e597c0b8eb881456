package humanize

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrEmptyText 输入为空
	ErrEmptyText = errors.New("Input text cannot be empty")

	// ErrInvalidLevel 改写级别越界
	ErrInvalidLevel = errors.New("humanization level must be an integer between 1 and 5")

	// ErrUnknownStrategy 未知的改写策略
	ErrUnknownStrategy = errors.New("unknown humanization strategy")

	// ErrNoStrategy 未配置改写策略实现
	ErrNoStrategy = errors.New("transformation strategy not configured")

	// ErrJobNotFound 任务不存在
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyActive 同一 ID 的任务已在运行
	ErrJobAlreadyActive = errors.New("job with this id is already active")

	// ErrJobPaused 任务被暂停，运行中的 Transform 以此返回
	ErrJobPaused = errors.New("job paused")

	// ErrJobCanceled 任务被取消
	ErrJobCanceled = errors.New("job canceled")

	// ErrPlaceholderLost 改写输出中保护占位符丢失
	ErrPlaceholderLost = errors.New("protected placeholder missing from strategy output")
)

// 错误代码常量
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeChunk      = "CHUNK_ERROR"
	ErrCodeStrategy   = "STRATEGY_ERROR"
	ErrCodeCanceled   = "CANCELED"
	ErrCodePaused     = "PAUSED"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeStore      = "STORE_ERROR"
	ErrCodeUnknown    = "UNKNOWN_ERROR"
)

// HumanizeError 管线错误
type HumanizeError struct {
	Code       string // 错误代码
	Message    string // 错误消息
	Cause      error  // 原因
	ChunkIndex int    // 出错的块序号，-1 表示与具体块无关
}

// Error 实现 error 接口
func (e *HumanizeError) Error() string {
	if e.ChunkIndex >= 0 {
		return fmt.Sprintf("[%s] %s (chunk %d)", e.Code, e.Message, e.ChunkIndex)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原因错误
func (e *HumanizeError) Unwrap() error {
	return e.Cause
}

// NewError 创建管线错误
func NewError(code, message string) *HumanizeError {
	return &HumanizeError{
		Code:       code,
		Message:    message,
		ChunkIndex: -1,
	}
}

// WrapError 包装错误
func WrapError(err error, code, message string) *HumanizeError {
	if err == nil {
		return nil
	}

	// 已经是 HumanizeError 时保留原有代码和块序号
	var he *HumanizeError
	if errors.As(err, &he) {
		return &HumanizeError{
			Code:       he.Code,
			Message:    message + ": " + he.Message,
			Cause:      he,
			ChunkIndex: he.ChunkIndex,
		}
	}

	return &HumanizeError{
		Code:       code,
		Message:    message,
		Cause:      err,
		ChunkIndex: -1,
	}
}

// NewChunkError 创建与具体块关联的错误
func NewChunkError(index int, cause error) *HumanizeError {
	return &HumanizeError{
		Code:       ErrCodeChunk,
		Message:    fmt.Sprintf("failed to process chunk %d: %v", index, cause),
		Cause:      cause,
		ChunkIndex: index,
	}
}

// IsValidationError 判断是否为校验错误
func IsValidationError(err error) bool {
	var he *HumanizeError
	if errors.As(err, &he) {
		return he.Code == ErrCodeValidation
	}
	return false
}

// IsNotFound 判断是否为任务不存在错误
func IsNotFound(err error) bool {
	if errors.Is(err, ErrJobNotFound) {
		return true
	}
	var he *HumanizeError
	if errors.As(err, &he) {
		return he.Code == ErrCodeNotFound
	}
	return false
}
