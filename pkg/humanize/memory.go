package humanize

import (
	"runtime"

	"go.uber.org/zap"
)

const (
	// memorySampleInterval 每处理多少块（顺序）或多少批（并行）采样一次内存
	memorySampleInterval = 5

	// chunkShrinkFactor 超过内存阈值时块大小目标的收缩系数
	chunkShrinkFactor = 0.8

	// minChunkTarget 块大小目标的下限，避免无限收缩
	minChunkTarget = 100
)

// memoryGovernor 内存治理器。
// 超过堆使用率阈值时收缩块大小目标，用更多更小的块换取更低的峰值内存。
// 块大小目标按任务持有，不跨任务共享。
type memoryGovernor struct {
	limitPercent float64
	logger       *zap.Logger

	// readMemStats 可被测试替换
	readMemStats func(*runtime.MemStats)
}

// newMemoryGovernor 创建内存治理器
func newMemoryGovernor(limitPercent float64, logger *zap.Logger) *memoryGovernor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &memoryGovernor{
		limitPercent: limitPercent,
		logger:       logger,
		readMemStats: runtime.ReadMemStats,
	}
}

// overLimit 采样进程内存，判断堆使用率是否超过阈值
func (g *memoryGovernor) overLimit() bool {
	var stats runtime.MemStats
	g.readMemStats(&stats)

	if stats.HeapSys == 0 {
		return false
	}
	utilization := float64(stats.HeapAlloc) / float64(stats.HeapSys) * 100
	return utilization > g.limitPercent
}

// shrink 收缩块大小目标。已切分的块不受影响，只作用于之后的切分。
func (g *memoryGovernor) shrink(target int) int {
	shrunk := int(float64(target) * chunkShrinkFactor)
	if shrunk < minChunkTarget {
		shrunk = minChunkTarget
	}
	if shrunk != target {
		g.logger.Info("memory pressure detected, shrinking chunk size target",
			zap.Int("from", target),
			zap.Int("to", shrunk))
	}
	return shrunk
}
