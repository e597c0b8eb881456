package humanize

import (
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// Splitter 文本分块器。
// 产出的块满足两个不变量：所有块的 Content 顺序拼接严格还原原文
// （分隔符归属前一块），切点永远不落在保护段内部。
type Splitter struct {
	overlap int
	logger  *zap.Logger
}

// NewSplitter 创建分块器
func NewSplitter(overlap int, logger *zap.Logger) *Splitter {
	if overlap < 0 {
		overlap = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Splitter{
		overlap: overlap,
		logger:  logger,
	}
}

// Split 把文本切成有序文本块。targetWords 为单块目标词数。
func (s *Splitter) Split(text string, targetWords int, protected []ProtectedSegment) []*Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if targetWords <= 0 {
		targetWords = 1000
	}

	// 文本不超过目标大小时直接返回单块
	if countWords(text) <= targetWords {
		return []*Chunk{s.newChunk(0, text)}
	}

	var chunks []*Chunk
	start := 0
	for start < len(text) {
		end := s.nextCut(text, start, targetWords, protected)
		if end <= start {
			end = len(text)
		}
		chunks = append(chunks, s.newChunk(len(chunks), text[start:end]))
		start = end
	}

	// 重叠以 LeadIn 上下文形式携带，不重复计入块内容
	if s.overlap > 0 {
		for i := 1; i < len(chunks); i++ {
			chunks[i].Context = &ChunkContext{
				LeadIn: lastWords(chunks[i-1].Content, s.overlap),
			}
		}
	}

	s.logger.Debug("text split into chunks",
		zap.Int("chunks", len(chunks)),
		zap.Int("target_words", targetWords),
		zap.Int("protected_segments", len(protected)))

	return chunks
}

// newChunk 构造一个待处理的块
func (s *Splitter) newChunk(index int, content string) *Chunk {
	return &Chunk{
		Index:     index,
		Content:   content,
		Status:    ChunkPending,
		WordCount: countWords(content),
	}
}

// nextCut 从 start 开始扫描，返回下一个切点的字节偏移。
// 候选切点按段落边界、句子边界、普通词边界的顺序退让，
// 均以"新词的起始位置"表示，因此分隔符总是归属前一块。
func (s *Splitter) nextCut(text string, start, target int, protected []ProtectedSegment) int {
	var lastBreak, lastSpace int // 段落/句子边界与普通词边界候选
	words := 0
	inWord := false
	gapStart := start
	var prevNonSpace rune

	for i, r := range text[start:] {
		pos := start + i

		if unicode.IsSpace(r) {
			if inWord {
				inWord = false
				gapStart = pos
			}
			continue
		}

		if !inWord {
			// 新词在 pos 开始：先登记候选切点，再判断是否需要切分
			if pos > start && !insideSegment(pos, protected) {
				gap := text[gapStart:pos]
				if strings.Contains(gap, "\n\n") || isSentenceEnd(prevNonSpace) {
					lastBreak = pos
				} else {
					lastSpace = pos
				}
			}

			if words >= target {
				if lastBreak > start {
					return lastBreak
				}
				if lastSpace > start {
					return lastSpace
				}
				// 尚无可用切点（超长句或保护段横跨），继续扫描
			}

			inWord = true
			words++
		}

		prevNonSpace = r
	}

	return len(text)
}

// insideSegment 判断切点是否落在某个保护段内部（端点处允许切分）
func insideSegment(pos int, segments []ProtectedSegment) bool {
	for _, seg := range segments {
		if pos > seg.Start && pos < seg.End {
			return true
		}
	}
	return false
}

// Assemble 按块序号顺序重组文本，与处理模式和完成顺序无关
func Assemble(chunks []*Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	sorted := make([]*Chunk, len(chunks))
	copy(sorted, chunks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	var b strings.Builder
	for _, chunk := range sorted {
		if chunk.TransformedContent != "" {
			b.WriteString(chunk.TransformedContent)
		} else {
			b.WriteString(chunk.Content)
		}
	}
	return b.String()
}
