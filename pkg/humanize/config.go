package humanize

import (
	"fmt"
	"time"
)

// Config 管线配置。构造时给定，任务运行期间不可变。
type Config struct {
	// MaxChunkSize 单块目标词数
	MaxChunkSize int `json:"max_chunk_size" mapstructure:"max_chunk_size"`

	// ChunkOverlap 相邻块之间作为上下文携带的重叠词数
	ChunkOverlap int `json:"chunk_overlap" mapstructure:"chunk_overlap"`

	// ProgressUpdateInterval 订阅者通知的最小间隔（阶段切换不受限）
	ProgressUpdateInterval time.Duration `json:"progress_update_interval" mapstructure:"progress_update_interval"`

	// ParallelProcessing 是否按批并行处理块
	ParallelProcessing bool `json:"parallel_processing" mapstructure:"parallel_processing"`

	// MaxParallelChunks 并行模式下每批的块数
	MaxParallelChunks int `json:"max_parallel_chunks" mapstructure:"max_parallel_chunks"`

	// MemoryLimitPercent 堆使用率阈值，超过后收缩本任务的块大小目标
	MemoryLimitPercent float64 `json:"memory_limit_percent" mapstructure:"memory_limit_percent"`

	// EnableAutoSave 顺序模式下是否周期性写检查点
	EnableAutoSave bool `json:"enable_auto_save" mapstructure:"enable_auto_save"`

	// AutoSaveInterval 每处理多少块写一次检查点
	AutoSaveInterval int `json:"auto_save_interval" mapstructure:"auto_save_interval"`

	// DefaultTimeout 任务超时配置。编排器自身不强制执行，
	// 交由调用方通过 context 控制（见设计文档）。
	DefaultTimeout time.Duration `json:"default_timeout" mapstructure:"default_timeout"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxChunkSize:           1000,
		ChunkOverlap:           50,
		ProgressUpdateInterval: 500 * time.Millisecond,
		ParallelProcessing:     false,
		MaxParallelChunks:      3,
		MemoryLimitPercent:     80,
		EnableAutoSave:         true,
		AutoSaveInterval:       10,
		DefaultTimeout:         10 * time.Minute,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("max_chunk_size must be positive, got %d", c.MaxChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must not be negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.MaxChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be smaller than max_chunk_size (%d)", c.ChunkOverlap, c.MaxChunkSize)
	}
	if c.MaxParallelChunks <= 0 {
		return fmt.Errorf("max_parallel_chunks must be positive, got %d", c.MaxParallelChunks)
	}
	if c.MemoryLimitPercent <= 0 || c.MemoryLimitPercent > 100 {
		return fmt.Errorf("memory_limit_percent must be in (0, 100], got %v", c.MemoryLimitPercent)
	}
	if c.AutoSaveInterval <= 0 {
		return fmt.Errorf("auto_save_interval must be positive, got %d", c.AutoSaveInterval)
	}
	return nil
}

// Clone 复制配置
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
