package humanize

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// service 改写管线编排器实现
type service struct {
	cfg      *Config
	options  serviceOptions
	splitter *Splitter
	governor *memoryGovernor
	logger   *zap.Logger

	mu     sync.RWMutex
	active map[string]*activeJob
}

// activeJob 进程内活动任务。任务运行或等待暂停检查点期间存在，
// 完成、失败、取消或暂停成功后从活动注册表移除。
type activeJob struct {
	id        string
	request   *Request
	strategy  StrategyName
	tracker   *Tracker
	preserver *ContextPreserver

	chunks    []*Chunk
	processed []*Chunk

	startTime    time.Time
	priorElapsed time.Duration

	// chunkTarget 本任务的块大小目标，内存压力下按任务收缩，不跨任务共享
	chunkTarget    int
	preservedCount atomic.Int64

	// 恢复的任务携带之前轮次已交付的前缀，再次暂停时写回检查点
	assembledPrefix string
	originalPrefix  string
	priorChunks     int

	cancelRequested atomic.Bool
	pauseRequested  atomic.Bool

	// pausedCh 在检查点写入完成后关闭；doneCh 在任务离开注册表时关闭
	pausedCh chan struct{}
	doneCh   chan struct{}
	pauseErr error
}

// resumeSeed 恢复任务时带入的检查点状态
type resumeSeed struct {
	chunkTarget     int
	globalContext   *ChunkContext
	priorElapsed    time.Duration
	assembledPrefix string
	originalPrefix  string
	priorChunks     int
}

// New 创建改写管线服务
func New(cfg *Config, opts ...Option) (Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapError(err, ErrCodeValidation, "invalid pipeline configuration")
	}

	options := serviceOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if options.strategy == nil && len(options.strategies) == 0 {
		return nil, ErrNoStrategy
	}
	if options.analyzer == nil {
		options.analyzer = NewDefaultAnalyzer()
	}
	if options.parser == nil {
		options.parser = NewDefaultSegmentParser()
	}
	if options.store == nil {
		options.store = NewMemoryJobStore()
	}
	if options.logger == nil {
		options.logger = zap.NewNop()
	}

	return &service{
		cfg:      cfg.Clone(),
		options:  options,
		splitter: NewSplitter(cfg.ChunkOverlap, options.logger),
		governor: newMemoryGovernor(cfg.MemoryLimitPercent, options.logger),
		logger:   options.logger,
		active:   make(map[string]*activeJob),
	}, nil
}

// Transform 执行完整的改写流程
func (s *service) Transform(ctx context.Context, req *Request, subscribers ...ProgressSubscriber) (*Result, error) {
	return s.run(ctx, req, nil, subscribers...)
}

// run 任务主流程：校验 → 注册 → 分析 → 画像 → 分块 → 逐块改写 → 重组
func (s *service) run(ctx context.Context, req *Request, seed *resumeSeed, subscribers ...ProgressSubscriber) (*Result, error) {
	// 所有校验都在注册任务之前完成：被拒绝的请求不会出现在 GetStatus 中
	if req == nil || strings.TrimSpace(req.Text) == "" {
		return nil, WrapError(ErrEmptyText, ErrCodeValidation, ErrEmptyText.Error())
	}
	lvl, err := ResolveLevel(req.Level)
	if err != nil {
		return nil, err
	}
	if err := validateStrategyName(req.Strategy); err != nil {
		return nil, err
	}

	analysis, err := s.options.analyzer.Analyze(req.Text)
	if err != nil {
		return nil, WrapError(err, ErrCodeValidation, "text analysis failed")
	}
	if !analysis.IsValid {
		msg := "invalid input"
		if len(analysis.ValidationErrors) > 0 {
			msg = analysis.ValidationErrors[0]
		}
		return nil, NewError(ErrCodeValidation, msg)
	}

	reqCopy := *req
	if reqCopy.ID == "" {
		reqCopy.ID = uuid.New().String()
	}

	job := &activeJob{
		id:          reqCopy.ID,
		request:     &reqCopy,
		tracker:     NewTracker(reqCopy.ID, s.cfg.ProgressUpdateInterval, s.logger, subscribers...),
		preserver:   NewContextPreserver(s.logger),
		startTime:   time.Now(),
		chunkTarget: s.cfg.MaxChunkSize,
		pausedCh:    make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	if seed != nil {
		if seed.chunkTarget > 0 {
			job.chunkTarget = seed.chunkTarget
		}
		job.priorElapsed = seed.priorElapsed
		job.assembledPrefix = seed.assembledPrefix
		job.originalPrefix = seed.originalPrefix
		job.priorChunks = seed.priorChunks
		job.preserver.RestoreGlobalContext(seed.globalContext)
	}

	s.mu.Lock()
	if _, exists := s.active[job.id]; exists {
		s.mu.Unlock()
		return nil, WrapError(ErrJobAlreadyActive, ErrCodeValidation,
			fmt.Sprintf("job %q is already active", job.id))
	}
	s.active[job.id] = job
	s.mu.Unlock()
	defer s.deregister(job)

	s.logger.Info("job started",
		zap.String("job_id", job.id),
		zap.Int("level", lvl.Level),
		zap.Int("words", analysis.WordCount),
		zap.Bool("parallel", s.cfg.ParallelProcessing))

	job.tracker.Initialize(analysis.WordCount, 0)
	job.tracker.UpdateStatus(JobAnalyzing, "analyzing input")

	// 风格画像在任何分块之前对全文计算一次，恢复的任务沿用检查点里的画像
	if seed == nil || seed.globalContext == nil || seed.globalContext.Profile == nil {
		job.preserver.BuildStyleProfile(reqCopy.Text, analysis)
	}

	job.tracker.UpdateStatus(JobChunking, "splitting into chunks")
	segments, err := s.options.parser.Parse(reqCopy.Text, reqCopy.ProtectedDelimiters)
	if err != nil {
		job.tracker.UpdateStatus(JobFailed, "protected segment parsing failed")
		return nil, WrapError(err, ErrCodeChunk, "protected segment parsing failed")
	}
	job.chunks = s.splitter.Split(reqCopy.Text, job.chunkTarget, segments)
	job.tracker.SetTotalChunks(len(job.chunks))

	job.strategy = resolveStrategyName(reqCopy.Strategy, analysis.ContentType)
	impl := s.strategyFor(job.strategy)
	if impl == nil {
		job.tracker.UpdateStatus(JobFailed, "no strategy available")
		return nil, WrapError(ErrNoStrategy, ErrCodeStrategy,
			fmt.Sprintf("no implementation registered for strategy %q", job.strategy))
	}

	job.tracker.UpdateStatus(JobProcessing, "processing chunks")
	var procErr error
	if s.cfg.ParallelProcessing {
		procErr = s.processParallel(ctx, job, impl, lvl)
	} else {
		procErr = s.processSequential(ctx, job, impl, lvl)
	}

	if procErr != nil {
		return nil, s.finishInterrupted(job, procErr)
	}

	job.tracker.UpdateStatus(JobAssembling, "assembling output")
	output := Assemble(job.chunks)

	elapsed := time.Since(job.startTime) + job.priorElapsed
	result := &Result{
		ID:                         job.id,
		HumanizedText:              output,
		Metrics:                    ComputeMetrics(reqCopy.Text, output),
		ProcessingTime:             elapsed,
		ChunksProcessed:            len(job.processed),
		TotalChunks:                len(job.chunks),
		StrategyUsed:               job.strategy,
		LevelApplied:               lvl.Level,
		ProtectedSegmentsPreserved: int(job.preservedCount.Load()),
		ContentType:                analysis.ContentType,
		Language:                   analysis.Language,
	}

	// 完成后清掉中途自动保存的检查点
	if err := s.options.store.Delete(context.Background(), job.id); err != nil {
		s.logger.Warn("failed to drop checkpoint after completion",
			zap.String("job_id", job.id), zap.Error(err))
	}

	job.tracker.UpdateStatus(JobCompleted, "completed")
	s.logger.Info("job completed",
		zap.String("job_id", job.id),
		zap.Int("chunks", result.TotalChunks),
		zap.Duration("elapsed", elapsed))

	return result, nil
}

// finishInterrupted 统一收尾暂停、取消和块失败三种中断路径
func (s *service) finishInterrupted(job *activeJob, procErr error) error {
	switch {
	case isPause(procErr):
		err := s.checkpoint(job)
		job.pauseErr = err
		job.tracker.UpdateStatus(JobPaused, "paused")
		close(job.pausedCh)
		if err != nil {
			return WrapError(err, ErrCodeStore, "failed to write pause checkpoint")
		}
		s.logger.Info("job paused",
			zap.String("job_id", job.id),
			zap.Int("processed", len(job.processed)),
			zap.Int("pending", len(job.chunks)-len(job.processed)))
		return WrapError(ErrJobPaused, ErrCodePaused, fmt.Sprintf("job %q paused", job.id))

	case isCancel(procErr):
		job.tracker.UpdateStatus(JobCanceled, "canceled")
		// 取消不保留任何状态
		if err := s.options.store.Delete(context.Background(), job.id); err != nil {
			s.logger.Warn("failed to drop checkpoint after cancel",
				zap.String("job_id", job.id), zap.Error(err))
		}
		s.logger.Info("job canceled", zap.String("job_id", job.id))
		return WrapError(ErrJobCanceled, ErrCodeCanceled, fmt.Sprintf("job %q canceled", job.id))

	default:
		job.tracker.UpdateStatus(JobFailed, procErr.Error())
		s.logger.Error("job failed", zap.String("job_id", job.id), zap.Error(procErr))
		return procErr
	}
}

// processSequential 顺序模式：第 i 块在第 i-1 块完成后才开始，
// 上下文严格从前一块的改写输出推导。
func (s *service) processSequential(ctx context.Context, job *activeJob, impl TransformationStrategy, lvl LevelProfile) error {
	var previous *Chunk

	for i, chunk := range job.chunks {
		if err := checkInterrupt(ctx, job); err != nil {
			return err
		}

		job.preserver.PrepareChunkContext(chunk, previous)
		job.tracker.StartChunk(chunk.Index)

		err := s.applyStrategy(ctx, job, impl, chunk, lvl)

		// 暂停/取消信号发出后才完成的在途结果不进入最终输出
		if ierr := checkInterrupt(ctx, job); ierr != nil {
			resetChunk(chunk)
			return ierr
		}
		if err != nil {
			chunk.Status = ChunkFailed
			chunk.ErrorMessage = err.Error()
			job.tracker.FailChunk(chunk, err)
			return NewChunkError(chunk.Index, err)
		}

		chunk.Status = ChunkCompleted
		job.processed = append(job.processed, chunk)
		job.tracker.CompleteChunk(chunk)
		previous = chunk

		done := i + 1
		if s.cfg.EnableAutoSave && done%s.cfg.AutoSaveInterval == 0 && done < len(job.chunks) {
			if err := s.checkpoint(job); err != nil {
				s.logger.Warn("auto-save checkpoint failed",
					zap.String("job_id", job.id), zap.Error(err))
			}
		}
		if done%memorySampleInterval == 0 && s.governor.overLimit() {
			job.chunkTarget = s.governor.shrink(job.chunkTarget)
		}
	}

	return nil
}

// processParallel 并行模式：固定大小的批内所有块并发启动。
// 批内各块的上下文只来自本批开始前最后完成的块；批内不传递上下文，
// 这是有意保留的近似，不是保证（跨批边界的传递才是保证的）。
func (s *service) processParallel(ctx context.Context, job *activeJob, impl TransformationStrategy, lvl LevelProfile) error {
	batchSize := s.cfg.MaxParallelChunks
	batches := 0
	var anchor *Chunk

	for start := 0; start < len(job.chunks); start += batchSize {
		if err := checkInterrupt(ctx, job); err != nil {
			return err
		}

		end := start + batchSize
		if end > len(job.chunks) {
			end = len(job.chunks)
		}
		batch := job.chunks[start:end]

		for _, chunk := range batch {
			job.preserver.PrepareChunkContext(chunk, anchor)
		}

		var wg sync.WaitGroup
		var once sync.Once
		var batchErr error

		for _, chunk := range batch {
			wg.Add(1)
			go func(c *Chunk) {
				defer wg.Done()
				job.tracker.StartChunk(c.Index)
				if err := s.applyStrategy(ctx, job, impl, c, lvl); err != nil {
					c.Status = ChunkFailed
					c.ErrorMessage = err.Error()
					job.tracker.FailChunk(c, err)
					once.Do(func() { batchErr = NewChunkError(c.Index, err) })
					return
				}
				c.Status = ChunkCompleted
				job.tracker.CompleteChunk(c)
			}(chunk)
		}
		wg.Wait()

		if ierr := checkInterrupt(ctx, job); ierr != nil {
			for _, chunk := range batch {
				resetChunk(chunk)
			}
			return ierr
		}
		if batchErr != nil {
			return batchErr
		}

		job.processed = append(job.processed, batch...)
		anchor = batch[len(batch)-1]

		batches++
		if batches%memorySampleInterval == 0 && s.governor.overLimit() {
			job.chunkTarget = s.governor.shrink(job.chunkTarget)
		}
	}

	return nil
}

// applyStrategy 改写一个块：保护段换占位符 → 调用策略 → 逐字还原
func (s *service) applyStrategy(ctx context.Context, job *activeJob, impl TransformationStrategy, chunk *Chunk, lvl LevelProfile) error {
	start := time.Now()
	chunk.Status = ChunkProcessing

	// 尾部分隔符剥离后原样接回，保证块重组处无缝
	body := strings.TrimRight(chunk.Content, " \t\r\n")
	suffix := chunk.Content[len(body):]

	segments, err := s.options.parser.Parse(body, job.request.ProtectedDelimiters)
	if err != nil {
		return WrapError(err, ErrCodeChunk, "protected segment parsing failed")
	}

	pm := NewPreserveManager(DefaultPreserveConfig)
	protected := pm.Protect(body, segments)

	resp, err := impl.Apply(ctx, &StrategyRequest{
		Text:      protected,
		Strategy:  job.strategy,
		Level:     lvl.Level,
		Intensity: lvl.Intensity,
		Context:   chunk.Context,
	})
	if err != nil {
		return WrapError(err, ErrCodeStrategy, "strategy invocation failed")
	}

	restored, err := pm.Restore(resp.Text)
	if err != nil {
		return err
	}

	chunk.TransformedContent = restored + suffix
	chunk.ProcessingTime = time.Since(start)
	job.preservedCount.Add(int64(pm.Count()))

	return nil
}

// Pause 协作式暂停：设置暂停标志，等任务在下一个块/批边界写完检查点
func (s *service) Pause(jobID string) error {
	s.mu.RLock()
	job := s.active[jobID]
	s.mu.RUnlock()

	if job == nil {
		return notFoundError(jobID)
	}

	job.pauseRequested.Store(true)

	select {
	case <-job.pausedCh:
		if job.pauseErr != nil {
			return WrapError(job.pauseErr, ErrCodeStore, "pause checkpoint failed")
		}
		return nil
	case <-job.doneCh:
		return WrapError(ErrJobNotFound, ErrCodeNotFound,
			fmt.Sprintf("job %q finished before pause took effect", jobID))
	}
}

// Resume 消费检查点并继续处理剩余块。
// 剩余块的原文拼接后重新分块，块边界不保证与原切分一致（接受的近似）。
func (s *service) Resume(ctx context.Context, jobID string, subscribers ...ProgressSubscriber) (*Result, error) {
	state, err := s.options.store.Get(ctx, jobID)
	if err != nil {
		return nil, WrapError(err, ErrCodeStore, "failed to load job state")
	}
	if state == nil {
		return nil, notFoundError(jobID)
	}
	if err := s.options.store.Delete(ctx, jobID); err != nil {
		return nil, WrapError(err, ErrCodeStore, "failed to consume job state")
	}

	// 多轮暂停时前缀跨轮累积：之前轮次已交付的部分加上本检查点的已处理块
	prefix := state.AssembledPrefix + Assemble(state.ProcessedChunks)
	priorChunks := state.PriorChunksDone + len(state.ProcessedChunks)

	var pendingText strings.Builder
	for _, chunk := range state.PendingChunks {
		pendingText.WriteString(chunk.Content)
	}
	var original strings.Builder
	original.WriteString(state.OriginalPrefix)
	for _, chunk := range state.ProcessedChunks {
		original.WriteString(chunk.Content)
	}
	originalPrefix := original.String()
	original.WriteString(pendingText.String())

	req := *state.Request
	req.ID = jobID
	req.Text = pendingText.String()

	s.logger.Info("resuming job",
		zap.String("job_id", jobID),
		zap.Int("processed", len(state.ProcessedChunks)),
		zap.Int("pending", len(state.PendingChunks)))

	result, err := s.run(ctx, &req, &resumeSeed{
		chunkTarget:     state.ChunkSizeTarget,
		globalContext:   state.CurrentContext,
		priorElapsed:    state.TotalProcessingTime,
		assembledPrefix: prefix,
		originalPrefix:  originalPrefix,
		priorChunks:     priorChunks,
	}, subscribers...)
	if err != nil {
		return nil, err
	}

	// 暂停前已装配的输出接在前面，计数与指标按整个任务合并
	result.HumanizedText = prefix + result.HumanizedText
	result.ChunksProcessed += priorChunks
	result.TotalChunks += priorChunks
	result.Metrics = ComputeMetrics(original.String(), result.HumanizedText)

	return result, nil
}

// Cancel 协作式取消。活动任务置取消标志，暂停任务直接丢弃检查点，
// 未知任务为 no-op。
func (s *service) Cancel(jobID string) error {
	s.mu.RLock()
	job := s.active[jobID]
	s.mu.RUnlock()

	if job != nil {
		job.cancelRequested.Store(true)
		return nil
	}

	return s.options.store.Delete(context.Background(), jobID)
}

// GetStatus 活动任务返回实时快照，暂停任务返回合成快照，未知任务返回 nil
func (s *service) GetStatus(jobID string) *ProgressUpdate {
	s.mu.RLock()
	job := s.active[jobID]
	s.mu.RUnlock()

	if job != nil {
		return job.tracker.Snapshot()
	}

	state, err := s.options.store.Get(context.Background(), jobID)
	if err != nil || state == nil {
		return nil
	}

	// 之前轮次已交付的部分按原文词数计入进度
	priorWords := countWords(state.OriginalPrefix)
	totalWords := priorWords
	processedWords := priorWords
	for _, chunk := range state.ProcessedChunks {
		totalWords += chunk.WordCount
		processedWords += chunk.WordCount
	}
	for _, chunk := range state.PendingChunks {
		totalWords += chunk.WordCount
	}

	progress := 0.0
	if totalWords > 0 {
		progress = float64(processedWords) / float64(totalWords) * 100
	}

	return &ProgressUpdate{
		JobID:          jobID,
		Status:         JobPaused,
		Progress:       progress,
		CurrentChunk:   state.PriorChunksDone + len(state.ProcessedChunks),
		TotalChunks:    state.PriorChunksDone + len(state.ProcessedChunks) + len(state.PendingChunks),
		WordsProcessed: processedWords,
		TotalWords:     totalWords,
		Phase:          "paused",
		Timestamp:      state.LastCheckpoint,
	}
}

// GetJobState 返回暂停任务的检查点
func (s *service) GetJobState(jobID string) *ResumableJobState {
	state, err := s.options.store.Get(context.Background(), jobID)
	if err != nil {
		return nil
	}
	return state
}

// checkpoint 把已处理/待处理块和全局上下文快照写入 JobStore。
// 快照时刻恒有 len(processed)+len(pending) == 总块数。
func (s *service) checkpoint(job *activeJob) error {
	processed := make([]*Chunk, 0, len(job.processed))
	pending := make([]*Chunk, 0, len(job.chunks)-len(job.processed))

	for _, chunk := range job.chunks {
		clone := *chunk
		if chunk.Status == ChunkCompleted {
			processed = append(processed, &clone)
		} else {
			resetChunk(&clone)
			pending = append(pending, &clone)
		}
	}

	state := &ResumableJobState{
		JobID:               job.id,
		Request:             job.request,
		ProcessedChunks:     processed,
		PendingChunks:       pending,
		CurrentContext:      job.preserver.GlobalContext(),
		ChunkSizeTarget:     job.chunkTarget,
		LastCheckpoint:      time.Now(),
		TotalProcessingTime: time.Since(job.startTime) + job.priorElapsed,
		AssembledPrefix:     job.assembledPrefix,
		OriginalPrefix:      job.originalPrefix,
		PriorChunksDone:     job.priorChunks,
	}

	return s.options.store.Put(context.Background(), state)
}

// deregister 把任务移出活动注册表
func (s *service) deregister(job *activeJob) {
	s.mu.Lock()
	delete(s.active, job.id)
	s.mu.Unlock()

	close(job.doneCh)
	job.tracker.Dispose()
}

// checkInterrupt 在块/批边界轮询协作式取消与暂停信号
func checkInterrupt(ctx context.Context, job *activeJob) error {
	if job.cancelRequested.Load() || ctx.Err() != nil {
		return ErrJobCanceled
	}
	if job.pauseRequested.Load() {
		return ErrJobPaused
	}
	return nil
}

// resetChunk 把块恢复到待处理状态，丢弃在途结果
func resetChunk(chunk *Chunk) {
	chunk.Status = ChunkPending
	chunk.TransformedContent = ""
	chunk.ErrorMessage = ""
	chunk.ProcessingTime = 0
}

// validateStrategyName 校验请求的策略名称
func validateStrategyName(name StrategyName) error {
	switch name {
	case "", StrategyAuto, StrategyCasual, StrategyProfessional, StrategyAcademic:
		return nil
	default:
		return WrapError(ErrUnknownStrategy, ErrCodeValidation,
			fmt.Sprintf("unknown humanization strategy %q", name))
	}
}

// resolveStrategyName 策略解析：显式指定优先，auto 按内容类型映射
func resolveStrategyName(requested StrategyName, contentType ContentType) StrategyName {
	if requested != "" && requested != StrategyAuto {
		return requested
	}
	switch contentType {
	case ContentAcademic:
		return StrategyAcademic
	case ContentBusiness, ContentTechnical:
		return StrategyProfessional
	case ContentCasual, ContentCreative:
		return StrategyCasual
	default:
		return StrategyProfessional
	}
}

// strategyFor 取某个策略名称的实现，专用实现优先于默认实现
func (s *service) strategyFor(name StrategyName) TransformationStrategy {
	if impl, ok := s.options.strategies[name]; ok {
		return impl
	}
	return s.options.strategy
}

// isPause / isCancel 识别中断类别
func isPause(err error) bool {
	return errors.Is(err, ErrJobPaused)
}

func isCancel(err error) bool {
	return errors.Is(err, ErrJobCanceled)
}

// notFoundError 构造任务不存在错误
func notFoundError(jobID string) error {
	return WrapError(ErrJobNotFound, ErrCodeNotFound, fmt.Sprintf("job %q not found", jobID))
}
