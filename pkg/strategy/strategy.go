// Package strategy 提供可插拔的改写策略实现。
// 策略内部如何把文本改写得更像人写的不属于管线核心，
// 这里只约定实现必须满足 humanize.TransformationStrategy 接口。
package strategy

import (
	"time"
)

// BaseConfig 策略提供商基础配置
type BaseConfig struct {
	// API 配置
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// 超时和重试
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`
	RetryDelay time.Duration `json:"retry_delay"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    5 * time.Minute, // LLM 请求可能很慢
		MaxRetries: 3,
		RetryDelay: time.Second,
		Headers:    make(map[string]string),
	}
}

// Error 提供商错误
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// IsRetryable 判断错误是否可重试
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case "rate_limit", "timeout", "server_error":
		return true
	default:
		return false
	}
}

// NewError 创建提供商错误
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}
