package humanize

import (
	"context"
)

// Service 改写管线编排器对外接口
type Service interface {
	// Transform 执行完整的改写流程：分析、分块、逐块改写、重组。
	// 成功返回完整结果；任何内部失败都会以错误返回，没有部分成功的结果形态。
	Transform(ctx context.Context, req *Request, subscribers ...ProgressSubscriber) (*Result, error)

	// Pause 协作式暂停正在运行的任务并写入检查点。
	// jobID 不是活动任务时返回 NOT_FOUND 错误。
	Pause(jobID string) error

	// Resume 消费检查点并继续处理剩余的块。
	// 剩余块的原文会被重新分块（接受的近似，块边界不保证与原切分一致）。
	Resume(ctx context.Context, jobID string, subscribers ...ProgressSubscriber) (*Result, error)

	// Cancel 协作式取消任务并丢弃其全部状态。未知 jobID 时为 no-op。
	Cancel(jobID string) error

	// GetStatus 返回活动任务的实时进度快照，暂停任务的合成快照，未知任务返回 nil
	GetStatus(jobID string) *ProgressUpdate

	// GetJobState 返回暂停任务的检查点，未知任务返回 nil
	GetJobState(jobID string) *ResumableJobState
}

// TextAnalyzer 文本分析器：校验输入、识别内容类型、检测语言
type TextAnalyzer interface {
	Analyze(text string) (*AnalysisResult, error)
}

// SegmentParser 保护段解析器：在分块前定位"不可改动"的文本段
type SegmentParser interface {
	Parse(text string, delims *DelimiterPair) ([]ProtectedSegment, error)
}

// TransformationStrategy 可插拔的单块改写策略。
// 内部逻辑不在本库范围内；raw 策略原样返回输入。
type TransformationStrategy interface {
	// Apply 改写一个文本块
	Apply(ctx context.Context, req *StrategyRequest) (*StrategyResponse, error)

	// GetName 获取策略实现名称
	GetName() string
}

// ProgressSubscriber 进度订阅回调。
// 在任务协程内同步调用；订阅者 panic 不会中断任务。
type ProgressSubscriber func(*ProgressUpdate)

// JobStore 可恢复任务状态存储。
// 默认为进程内内存实现，也可由数据库等外部存储实现以跨实例共享任务可见性。
type JobStore interface {
	// Put 写入或覆盖检查点
	Put(ctx context.Context, state *ResumableJobState) error

	// Get 读取检查点，不存在时返回 (nil, nil)
	Get(ctx context.Context, jobID string) (*ResumableJobState, error)

	// Delete 删除检查点，不存在时为 no-op
	Delete(ctx context.Context, jobID string) error

	// List 列出全部检查点的任务 ID
	List(ctx context.Context) ([]string, error)
}
