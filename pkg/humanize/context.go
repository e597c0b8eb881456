package humanize

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ContextPreserver 上下文保持器。为一个任务独占持有：
// 先对未分块的全文计算一次风格画像，任务中途不再重算；
// 之后从每个块的改写输出推导下一块的上下文。
type ContextPreserver struct {
	mu      sync.Mutex
	profile *StyleProfile

	// 前一块改写输出带来的尾部状态
	previousTail string
	previousTone string
	recentVocab  []string

	tailWords int
	logger    *zap.Logger
}

// NewContextPreserver 创建上下文保持器
func NewContextPreserver(logger *zap.Logger) *ContextPreserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextPreserver{
		tailWords: 40,
		logger:    logger,
	}
}

// formalMarkers 正式语体标记词
var formalMarkers = []string{
	"therefore", "furthermore", "consequently", "moreover", "thus",
	"regarding", "pursuant", "hereby", "notwithstanding",
}

// casualMarkers 口语语体标记词（含常见缩写形式）
var casualMarkers = []string{
	"don't", "can't", "won't", "it's", "that's", "gonna", "kinda",
	"really", "stuff", "okay", "yeah",
}

// BuildStyleProfile 对全文计算文档级风格画像。
// 必须在分块之前调用，这样每个块的改写都带着全文语境。
func (cp *ContextPreserver) BuildStyleProfile(fullText string, analysis *AnalysisResult) *StyleProfile {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	sentences := splitSentences(fullText)
	words := strings.Fields(fullText)

	avgLen := 0.0
	if len(sentences) > 0 {
		avgLen = float64(len(words)) / float64(len(sentences))
	}

	profile := &StyleProfile{
		AvgSentenceLength:  avgLen,
		VocabularyRichness: vocabularyRichness(words),
		Formality:          formalityScore(fullText),
		FrequentWords:      frequentWords(words, 10),
	}
	profile.Tone = toneLabel(profile.Formality)

	if analysis != nil {
		profile.ContentType = analysis.ContentType
		profile.Language = analysis.Language
	}

	cp.profile = profile
	cp.logger.Debug("style profile built",
		zap.Float64("avg_sentence_length", profile.AvgSentenceLength),
		zap.Float64("formality", profile.Formality),
		zap.String("tone", profile.Tone))

	return profile
}

// PrepareChunkContext 为一个块准备上下文。
// 第 0 块只携带文档级画像；之后的块还携带前一块改写输出的尾部状态。
func (cp *ContextPreserver) PrepareChunkContext(chunk *Chunk, previous *Chunk) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	ctx := chunk.Context
	if ctx == nil {
		ctx = &ChunkContext{}
		chunk.Context = ctx
	}
	ctx.Profile = cp.profile

	if previous != nil && previous.TransformedContent != "" {
		cp.absorbLocked(previous.TransformedContent)
	}

	ctx.PreviousTail = cp.previousTail
	ctx.PreviousTone = cp.previousTone
	ctx.RecentVocabulary = cp.recentVocab
}

// absorbLocked 吸收一段改写输出的尾部状态。调用方需持有锁。
func (cp *ContextPreserver) absorbLocked(transformed string) {
	cp.previousTail = lastWords(transformed, cp.tailWords)
	cp.previousTone = toneLabel(formalityScore(transformed))
	cp.recentVocab = frequentWords(strings.Fields(transformed), 8)
}

// GlobalContext 返回可序列化的全局上下文快照，用于检查点
func (cp *ContextPreserver) GlobalContext() *ChunkContext {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	return &ChunkContext{
		Profile:          cp.profile,
		PreviousTail:     cp.previousTail,
		PreviousTone:     cp.previousTone,
		RecentVocabulary: append([]string(nil), cp.recentVocab...),
	}
}

// RestoreGlobalContext 从检查点快照恢复全局上下文，用于任务恢复
func (cp *ContextPreserver) RestoreGlobalContext(ctx *ChunkContext) {
	if ctx == nil {
		return
	}

	cp.mu.Lock()
	defer cp.mu.Unlock()

	cp.profile = ctx.Profile
	cp.previousTail = ctx.PreviousTail
	cp.previousTone = ctx.PreviousTone
	cp.recentVocab = append([]string(nil), ctx.RecentVocabulary...)
}

// vocabularyRichness 词汇丰富度：去重词数与总词数之比
func vocabularyRichness(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(strings.Trim(w, ".,!?;:\"'()"))] = struct{}{}
	}
	return float64(len(unique)) / float64(len(words))
}

// formalityScore 正式度评分，范围 [0, 1]
func formalityScore(text string) float64 {
	lower := strings.ToLower(text)

	formal := 0
	for _, m := range formalMarkers {
		formal += strings.Count(lower, m)
	}
	casual := 0
	for _, m := range casualMarkers {
		casual += strings.Count(lower, m)
	}

	total := formal + casual
	if total == 0 {
		return 0.5
	}
	return float64(formal) / float64(total)
}

// toneLabel 把正式度评分映射为语气标签
func toneLabel(formality float64) string {
	switch {
	case formality >= 0.7:
		return "formal"
	case formality <= 0.3:
		return "casual"
	default:
		return "neutral"
	}
}

// frequentWords 返回出现最频繁的 n 个实词（4 个字母以上）
func frequentWords(words []string, n int) []string {
	counts := make(map[string]int)
	for _, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,!?;:\"'()"))
		if len(w) >= 4 {
			counts[w]++
		}
	}

	type wordCount struct {
		word  string
		count int
	}
	ranked := make([]wordCount, 0, len(counts))
	for w, c := range counts {
		ranked = append(ranked, wordCount{w, c})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	result := make([]string, len(ranked))
	for i, wc := range ranked {
		result[i] = wc.word
	}
	return result
}
