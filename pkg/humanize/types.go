package humanize

import (
	"time"
)

// StrategyName 改写策略名称
type StrategyName string

const (
	// StrategyCasual 口语化改写
	StrategyCasual StrategyName = "casual"
	// StrategyProfessional 商务/专业改写
	StrategyProfessional StrategyName = "professional"
	// StrategyAcademic 学术改写
	StrategyAcademic StrategyName = "academic"
	// StrategyAuto 根据内容类型自动选择
	StrategyAuto StrategyName = "auto"
)

// ContentType 内容类型
type ContentType string

const (
	ContentAcademic  ContentType = "academic"
	ContentBusiness  ContentType = "business"
	ContentTechnical ContentType = "technical"
	ContentCasual    ContentType = "casual"
	ContentCreative  ContentType = "creative"
	ContentOther     ContentType = "other"
)

// ChunkStatus 块处理状态
type ChunkStatus string

const (
	ChunkPending    ChunkStatus = "pending"
	ChunkProcessing ChunkStatus = "processing"
	ChunkCompleted  ChunkStatus = "completed"
	ChunkFailed     ChunkStatus = "failed"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobAnalyzing  JobStatus = "analyzing"
	JobChunking   JobStatus = "chunking"
	JobProcessing JobStatus = "processing"
	JobAssembling JobStatus = "assembling"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
	JobPaused     JobStatus = "paused"
	JobCanceled   JobStatus = "canceled"
)

// DelimiterPair 自定义保护标记对
type DelimiterPair struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Request 改写请求。任务启动后不可变。
type Request struct {
	// ID 任务标识，为空时自动生成
	ID string `json:"id,omitempty"`

	// Text 要改写的文本
	Text string `json:"text"`

	// Level 改写强度（1-5），0 表示未指定，按默认级别处理
	Level int `json:"level,omitempty"`

	// Strategy 改写策略，为空时等同于 auto
	Strategy StrategyName `json:"strategy,omitempty"`

	// ProtectedDelimiters 自定义保护标记对（可选）
	ProtectedDelimiters *DelimiterPair `json:"protected_delimiters,omitempty"`

	// Metadata 元数据
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// StyleProfile 文档级风格画像，在分块前对全文计算一次
type StyleProfile struct {
	Tone               string      `json:"tone"`
	Formality          float64     `json:"formality"`
	AvgSentenceLength  float64     `json:"avg_sentence_length"`
	VocabularyRichness float64     `json:"vocabulary_richness"`
	FrequentWords      []string    `json:"frequent_words,omitempty"`
	ContentType        ContentType `json:"content_type"`
	Language           string      `json:"language"`
}

// ChunkContext 单块上下文：文档级画像加上前一块译后输出带来的尾部状态
type ChunkContext struct {
	// Profile 文档级风格画像
	Profile *StyleProfile `json:"profile,omitempty"`

	// LeadIn 前一块原文结尾的重叠上下文（只作提示，不重复计入输出）
	LeadIn string `json:"lead_in,omitempty"`

	// PreviousTail 前一块改写输出的结尾
	PreviousTail string `json:"previous_tail,omitempty"`

	// PreviousTone 前一块改写输出的语气
	PreviousTone string `json:"previous_tone,omitempty"`

	// RecentVocabulary 前一块改写输出中的显著词汇
	RecentVocabulary []string `json:"recent_vocabulary,omitempty"`
}

// Chunk 一个有界的连续文本块
type Chunk struct {
	// Index 0 起始的稳定序号
	Index int `json:"index"`

	// Content 原文子串。所有块的 Content 顺序拼接即还原原文。
	Content string `json:"content"`

	// TransformedContent 改写后的文本，处理完成前为空
	TransformedContent string `json:"transformed_content,omitempty"`

	// Context 本块上下文
	Context *ChunkContext `json:"context,omitempty"`

	// Status 处理状态
	Status ChunkStatus `json:"status"`

	// WordCount 原文词数
	WordCount int `json:"word_count"`

	// ErrorMessage 失败原因
	ErrorMessage string `json:"error_message,omitempty"`

	// ProcessingTime 本块处理耗时
	ProcessingTime time.Duration `json:"processing_time,omitempty"`
}

// ProgressUpdate 进度快照
type ProgressUpdate struct {
	JobID          string    `json:"job_id"`
	Status         JobStatus `json:"status"`
	Progress       float64   `json:"progress"`
	CurrentChunk   int       `json:"current_chunk"`
	TotalChunks    int       `json:"total_chunks"`
	WordsProcessed int       `json:"words_processed"`
	TotalWords     int       `json:"total_words"`
	Phase          string    `json:"phase"`
	Timestamp      time.Time `json:"timestamp"`
}

// TextMetrics 改写前后指标
type TextMetrics struct {
	InputWordCount         int     `json:"input_word_count"`
	OutputWordCount        int     `json:"output_word_count"`
	InputSentenceCount     int     `json:"input_sentence_count"`
	OutputSentenceCount    int     `json:"output_sentence_count"`
	SentencesModified      int     `json:"sentences_modified"`
	ModificationPercentage float64 `json:"modification_percentage"`
}

// Result 改写结果
type Result struct {
	ID                         string        `json:"id"`
	HumanizedText              string        `json:"humanized_text"`
	Metrics                    *TextMetrics  `json:"metrics,omitempty"`
	ProcessingTime             time.Duration `json:"processing_time"`
	ChunksProcessed            int           `json:"chunks_processed"`
	TotalChunks                int           `json:"total_chunks"`
	StrategyUsed               StrategyName  `json:"strategy_used"`
	LevelApplied               int           `json:"level_applied"`
	ProtectedSegmentsPreserved int           `json:"protected_segments_preserved"`
	ContentType                ContentType   `json:"content_type"`
	Language                   string        `json:"language"`
}

// ResumableJobState 可恢复任务快照。
// 不变量：len(ProcessedChunks)+len(PendingChunks) 等于快照时刻的总块数。
type ResumableJobState struct {
	JobID               string        `json:"job_id"`
	Request             *Request      `json:"request"`
	ProcessedChunks     []*Chunk      `json:"processed_chunks"`
	PendingChunks       []*Chunk      `json:"pending_chunks"`
	CurrentContext      *ChunkContext `json:"current_context,omitempty"`
	ChunkSizeTarget     int           `json:"chunk_size_target"`
	LastCheckpoint      time.Time     `json:"last_checkpoint"`
	TotalProcessingTime time.Duration `json:"total_processing_time"`

	// 再次暂停已恢复过的任务时，之前轮次已交付的前缀随检查点一起保留
	AssembledPrefix string `json:"assembled_prefix,omitempty"`
	OriginalPrefix  string `json:"original_prefix,omitempty"`
	PriorChunksDone int    `json:"prior_chunks_done,omitempty"`
}

// AnalysisResult 文本分析结果
type AnalysisResult struct {
	IsValid          bool        `json:"is_valid"`
	ValidationErrors []string    `json:"validation_errors,omitempty"`
	ContentType      ContentType `json:"content_type"`
	Language         string      `json:"language"`
	WordCount        int         `json:"word_count"`
	SentenceCount    int         `json:"sentence_count"`
}

// SegmentKind 保护段类型
type SegmentKind string

const (
	SegmentCodeBlock  SegmentKind = "code_block"
	SegmentInlineCode SegmentKind = "inline_code"
	SegmentCitation   SegmentKind = "citation"
	SegmentCustom     SegmentKind = "custom"
)

// ProtectedSegment 必须原样通过改写的文本段，[Start, End) 为字节偏移
type ProtectedSegment struct {
	Start   int         `json:"start"`
	End     int         `json:"end"`
	Content string      `json:"content"`
	Kind    SegmentKind `json:"kind"`
}

// StrategyRequest 单块改写请求，交给可插拔的改写策略
type StrategyRequest struct {
	Text      string        `json:"text"`
	Strategy  StrategyName  `json:"strategy"`
	Level     int           `json:"level"`
	Intensity float64       `json:"intensity"`
	Context   *ChunkContext `json:"context,omitempty"`
}

// StrategyResponse 单块改写响应
type StrategyResponse struct {
	Text     string            `json:"text"`
	Model    string            `json:"model,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
