package config

import (
	"fmt"
	"time"

	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
)

// AppConfig 应用配置
type AppConfig struct {
	// Pipeline 改写管线配置
	Pipeline PipelineConfig `mapstructure:"pipeline"`

	// Strategy 改写策略提供商配置
	Strategy StrategyConfig `mapstructure:"strategy"`

	// JobStore 任务状态存储配置
	JobStore JobStoreConfig `mapstructure:"job_store"`

	// Debug 调试日志
	Debug bool `mapstructure:"debug"`
}

// PipelineConfig 管线配置，字段与 humanize.Config 一一对应
type PipelineConfig struct {
	MaxChunkSize           int           `mapstructure:"max_chunk_size"`
	ChunkOverlap           int           `mapstructure:"chunk_overlap"`
	ProgressUpdateInterval time.Duration `mapstructure:"progress_update_interval"`
	ParallelProcessing     bool          `mapstructure:"parallel_processing"`
	MaxParallelChunks      int           `mapstructure:"max_parallel_chunks"`
	MemoryLimitPercent     float64       `mapstructure:"memory_limit_percent"`
	EnableAutoSave         bool          `mapstructure:"enable_auto_save"`
	AutoSaveInterval       int           `mapstructure:"auto_save_interval"`
	DefaultTimeout         time.Duration `mapstructure:"default_timeout"`
}

// StrategyConfig 策略提供商配置
type StrategyConfig struct {
	// Provider 提供商名称：raw 或 openai
	Provider string `mapstructure:"provider"`

	APIKey      string  `mapstructure:"api_key"`
	APIEndpoint string  `mapstructure:"api_endpoint"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// JobStoreConfig 任务状态存储配置
type JobStoreConfig struct {
	// Backend 存储后端：memory 或 postgres
	Backend string `mapstructure:"backend"`

	// DSN postgres 后端的连接串
	DSN string `mapstructure:"dsn"`
}

// ToPipelineConfig 转换为管线配置
func (c *AppConfig) ToPipelineConfig() *humanize.Config {
	return &humanize.Config{
		MaxChunkSize:           c.Pipeline.MaxChunkSize,
		ChunkOverlap:           c.Pipeline.ChunkOverlap,
		ProgressUpdateInterval: c.Pipeline.ProgressUpdateInterval,
		ParallelProcessing:     c.Pipeline.ParallelProcessing,
		MaxParallelChunks:      c.Pipeline.MaxParallelChunks,
		MemoryLimitPercent:     c.Pipeline.MemoryLimitPercent,
		EnableAutoSave:         c.Pipeline.EnableAutoSave,
		AutoSaveInterval:       c.Pipeline.AutoSaveInterval,
		DefaultTimeout:         c.Pipeline.DefaultTimeout,
	}
}

// Validate 验证应用配置
func (c *AppConfig) Validate() error {
	if err := c.ToPipelineConfig().Validate(); err != nil {
		return fmt.Errorf("pipeline config: %w", err)
	}

	switch c.Strategy.Provider {
	case "raw":
	case "openai":
		if c.Strategy.APIKey == "" {
			return fmt.Errorf("strategy config: openai provider requires an api key")
		}
	default:
		return fmt.Errorf("strategy config: unknown provider %q", c.Strategy.Provider)
	}

	switch c.JobStore.Backend {
	case "", "memory":
	case "postgres":
		if c.JobStore.DSN == "" {
			return fmt.Errorf("job_store config: postgres backend requires a dsn")
		}
	default:
		return fmt.Errorf("job_store config: unknown backend %q", c.JobStore.Backend)
	}

	return nil
}
