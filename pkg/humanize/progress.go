package humanize

import (
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Tracker 单任务进度跟踪器。
// 订阅者在任务协程内同步通知；订阅者 panic 不会波及任务本身。
// Progress 按 wordsProcessed/totalWords*100 计算，任务活动期间单调不减。
type Tracker struct {
	jobID string

	mu             sync.Mutex
	status         JobStatus
	phase          string
	totalWords     int
	totalChunks    int
	wordsProcessed int
	chunksDone     int
	currentChunk   int
	lastProgress   float64
	lastNotify     time.Time
	disposed       bool

	notifyInterval time.Duration
	subscribers    []ProgressSubscriber
	logger         *zap.Logger
}

// NewTracker 创建单任务进度跟踪器
func NewTracker(jobID string, notifyInterval time.Duration, logger *zap.Logger, subscribers ...ProgressSubscriber) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		jobID:          jobID,
		status:         JobAnalyzing,
		notifyInterval: notifyInterval,
		subscribers:    subscribers,
		logger:         logger,
	}
}

// Initialize 设置任务总量
func (t *Tracker) Initialize(totalWords, totalChunks int) {
	t.mu.Lock()
	t.totalWords = totalWords
	t.totalChunks = totalChunks
	update := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(update, true)
}

// SetTotalChunks 分块完成后回填总块数
func (t *Tracker) SetTotalChunks(totalChunks int) {
	t.mu.Lock()
	t.totalChunks = totalChunks
	t.mu.Unlock()
}

// UpdateStatus 切换任务阶段。阶段事件总是通知订阅者，不受节流限制。
func (t *Tracker) UpdateStatus(status JobStatus, phase string) {
	t.mu.Lock()
	t.status = status
	t.phase = phase
	update := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Debug("job phase changed",
		zap.String("job_id", t.jobID),
		zap.String("status", string(status)),
		zap.String("phase", phase))

	t.notify(update, true)
}

// StartChunk 记录某个块开始处理
func (t *Tracker) StartChunk(index int) {
	t.mu.Lock()
	t.currentChunk = index
	update := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(update, false)
}

// CompleteChunk 记录某个块处理完成
func (t *Tracker) CompleteChunk(chunk *Chunk) {
	t.mu.Lock()
	t.chunksDone++
	t.wordsProcessed += chunk.WordCount
	update := t.snapshotLocked()
	t.mu.Unlock()

	t.notify(update, false)
}

// FailChunk 记录某个块处理失败
func (t *Tracker) FailChunk(chunk *Chunk, reason error) {
	t.mu.Lock()
	t.status = JobFailed
	t.phase = "chunk " + strconv.Itoa(chunk.Index) + " failed"
	update := t.snapshotLocked()
	t.mu.Unlock()

	t.logger.Warn("chunk failed",
		zap.String("job_id", t.jobID),
		zap.Int("chunk", chunk.Index),
		zap.Error(reason))

	t.notify(update, true)
}

// Snapshot 返回当前进度快照
func (t *Tracker) Snapshot() *ProgressUpdate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Dispose 停止通知订阅者
func (t *Tracker) Dispose() {
	t.mu.Lock()
	t.disposed = true
	t.subscribers = nil
	t.mu.Unlock()
}

// snapshotLocked 生成进度快照。调用方需持有锁。
func (t *Tracker) snapshotLocked() *ProgressUpdate {
	progress := 0.0
	if t.totalWords > 0 {
		progress = float64(t.wordsProcessed) / float64(t.totalWords) * 100
	}
	if t.status == JobCompleted {
		progress = 100
	}
	// 任务活动期间进度不回退
	if progress < t.lastProgress {
		progress = t.lastProgress
	}
	t.lastProgress = progress

	return &ProgressUpdate{
		JobID:          t.jobID,
		Status:         t.status,
		Progress:       progress,
		CurrentChunk:   t.currentChunk,
		TotalChunks:    t.totalChunks,
		WordsProcessed: t.wordsProcessed,
		TotalWords:     t.totalWords,
		Phase:          t.phase,
		Timestamp:      time.Now(),
	}
}

// notify 同步通知订阅者。force 为 false 时按 notifyInterval 节流。
func (t *Tracker) notify(update *ProgressUpdate, force bool) {
	t.mu.Lock()
	if t.disposed {
		t.mu.Unlock()
		return
	}
	if !force && t.notifyInterval > 0 && time.Since(t.lastNotify) < t.notifyInterval {
		t.mu.Unlock()
		return
	}
	t.lastNotify = time.Now()
	subscribers := t.subscribers
	t.mu.Unlock()

	for _, sub := range subscribers {
		t.safeNotify(sub, update)
	}
}

// safeNotify 调用单个订阅者，吞掉 panic 以保证任务不被订阅者拖垮
func (t *Tracker) safeNotify(sub ProgressSubscriber, update *ProgressUpdate) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("progress subscriber panicked",
				zap.String("job_id", t.jobID),
				zap.Any("panic", r))
		}
	}()
	sub(update)
}
