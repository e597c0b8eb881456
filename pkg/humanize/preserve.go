package humanize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// PreserveConfig 保护占位符配置
type PreserveConfig struct {
	// Prefix 占位符前缀
	Prefix string
	// Suffix 占位符后缀
	Suffix string
}

// DefaultPreserveConfig 默认保护占位符配置
var DefaultPreserveConfig = PreserveConfig{
	Prefix: "@@PRESERVE_",
	Suffix: "@@",
}

// PreserveManager 保护段占位符管理器。
// 改写前把保护段换成占位符，改写后逐字还原，保证保护内容字节级不变。
type PreserveManager struct {
	config       PreserveConfig
	counter      int
	replacements map[string]string
}

// NewPreserveManager 创建保护段管理器
func NewPreserveManager(config PreserveConfig) *PreserveManager {
	return &PreserveManager{
		config:       config,
		replacements: make(map[string]string),
	}
}

// Protect 把文本中的保护段替换为占位符。
// segments 的偏移以 text 为基准，从后往前替换以保持偏移有效。
func (pm *PreserveManager) Protect(text string, segments []ProtectedSegment) string {
	if len(segments) == 0 {
		return text
	}

	sorted := make([]ProtectedSegment, len(segments))
	copy(sorted, segments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	// 占位符编号按出现顺序分配，内容按偏移从原文重取，替换从后往前执行
	placeholders := make([]string, len(sorted))
	for i, seg := range sorted {
		placeholders[i] = pm.placeholder()
		if seg.Start >= 0 && seg.End <= len(text) && seg.Start < seg.End {
			pm.replacements[placeholders[i]] = text[seg.Start:seg.End]
		}
	}

	for i := len(sorted) - 1; i >= 0; i-- {
		seg := sorted[i]
		if seg.Start < 0 || seg.End > len(text) || seg.Start >= seg.End {
			continue
		}
		text = text[:seg.Start] + placeholders[i] + text[seg.End:]
	}

	return text
}

// Restore 还原所有占位符。改写输出弄丢占位符时返回 ErrPlaceholderLost。
func (pm *PreserveManager) Restore(text string) (string, error) {
	// 按编号降序还原，避免 @@PRESERVE_1@@ 误匹配 @@PRESERVE_12@@ 的前缀
	for i := pm.counter - 1; i >= 0; i-- {
		placeholder := fmt.Sprintf("%s%d%s", pm.config.Prefix, i, pm.config.Suffix)
		original, ok := pm.replacements[placeholder]
		if !ok {
			continue
		}
		if !strings.Contains(text, placeholder) {
			return "", WrapError(ErrPlaceholderLost, ErrCodeChunk,
				fmt.Sprintf("placeholder %s not found in output", placeholder))
		}
		text = strings.ReplaceAll(text, placeholder, original)
	}
	return text, nil
}

// Count 返回已保护的段数
func (pm *PreserveManager) Count() int {
	return pm.counter
}

// placeholder 生成下一个占位符
func (pm *PreserveManager) placeholder() string {
	p := fmt.Sprintf("%s%d%s", pm.config.Prefix, pm.counter, pm.config.Suffix)
	pm.counter++
	return p
}

// citationPattern 匹配 [1]、[3, 5]、[Smith et al., 2020] 形式的文献引用，
// 负向前瞻排除 markdown 链接 [text](url)。stdlib regexp 不支持前瞻，因此用 regexp2。
var citationPattern = regexp2.MustCompile(
	`\[(?:\d+(?:\s*[,\-–]\s*\d+)*|[A-Z][A-Za-z]+(?:\s+et\s+al\.)?,?\s+\d{4})\](?!\()`,
	regexp2.None,
)

// defaultSegmentParser 默认保护段解析器：
// markdown 代码块与行内代码（goldmark AST）、文献引用、自定义标记对。
type defaultSegmentParser struct {
	md goldmark.Markdown
}

// NewDefaultSegmentParser 创建默认保护段解析器
func NewDefaultSegmentParser() SegmentParser {
	return &defaultSegmentParser{
		md: goldmark.New(),
	}
}

// Parse 定位文本中的全部保护段，按起始偏移升序返回，重叠段已合并
func (p *defaultSegmentParser) Parse(text string, delims *DelimiterPair) ([]ProtectedSegment, error) {
	var segments []ProtectedSegment

	segments = append(segments, p.parseMarkdownCode(text)...)

	citations, err := p.parseCitations(text)
	if err != nil {
		return nil, err
	}
	segments = append(segments, citations...)

	if delims != nil && delims.Start != "" && delims.End != "" {
		segments = append(segments, parseCustomDelimiters(text, delims)...)
	}

	return mergeSegments(text, segments), nil
}

// parseMarkdownCode 通过 goldmark AST 定位围栏代码块和行内代码
func (p *defaultSegmentParser) parseMarkdownCode(text string) []ProtectedSegment {
	source := []byte(text)
	doc := p.md.Parser().Parse(gmtext.NewReader(source))

	var segments []ProtectedSegment
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			if seg, ok := fencedBlockSpan(source, node); ok {
				segments = append(segments, seg)
			}
		case *ast.CodeSpan:
			if seg, ok := codeSpanSpan(source, node); ok {
				segments = append(segments, seg)
			}
		}
		return ast.WalkContinue, nil
	})

	return segments
}

// fencedBlockSpan 把围栏代码块的内容行扩展到包含两侧围栏行的完整区间
func fencedBlockSpan(source []byte, node *ast.FencedCodeBlock) (ProtectedSegment, bool) {
	lines := node.Lines()
	if lines.Len() == 0 {
		return ProtectedSegment{}, false
	}

	contentStart := lines.At(0).Start
	contentStop := lines.At(lines.Len() - 1).Stop

	start := lineStartBefore(source, contentStart)
	end := lineEndAfter(source, contentStop)

	return ProtectedSegment{
		Start:   start,
		End:     end,
		Content: string(source[start:end]),
		Kind:    SegmentCodeBlock,
	}, true
}

// codeSpanSpan 把行内代码的文本区间向两侧扩展到反引号
func codeSpanSpan(source []byte, node *ast.CodeSpan) (ProtectedSegment, bool) {
	first := node.FirstChild()
	textNode, ok := first.(*ast.Text)
	if !ok {
		return ProtectedSegment{}, false
	}

	start := textNode.Segment.Start
	end := textNode.Segment.Stop
	if last, ok := node.LastChild().(*ast.Text); ok {
		end = last.Segment.Stop
	}

	for start > 0 && source[start-1] == '`' {
		start--
	}
	for end < len(source) && source[end] == '`' {
		end++
	}

	return ProtectedSegment{
		Start:   start,
		End:     end,
		Content: string(source[start:end]),
		Kind:    SegmentInlineCode,
	}, true
}

// lineStartBefore 返回 pos 所在行之前一行的行首偏移
func lineStartBefore(source []byte, pos int) int {
	// pos 是内容首行的行首，前一个字节是围栏行的换行符
	i := pos - 1
	if i > 0 && source[i-1] == '\n' {
		i--
	}
	for i > 0 && source[i-1] != '\n' {
		i--
	}
	if i < 0 {
		return 0
	}
	return i
}

// lineEndAfter 返回 pos 之后下一行（关闭围栏行）的行尾偏移，不含换行符
func lineEndAfter(source []byte, pos int) int {
	i := pos
	// 跳过关闭围栏行
	for i < len(source) && source[i] != '\n' {
		i++
	}
	return i
}

// parseCitations 用 regexp2 定位文献引用。
// regexp2 的匹配偏移以 rune 计，需要换算回字节偏移。
func (p *defaultSegmentParser) parseCitations(text string) ([]ProtectedSegment, error) {
	runes := []rune(text)

	// rune 序号到字节偏移的映射表
	byteOffsets := make([]int, len(runes)+1)
	offset := 0
	for i, r := range runes {
		byteOffsets[i] = offset
		offset += len(string(r))
	}
	byteOffsets[len(runes)] = offset

	var segments []ProtectedSegment
	m, err := citationPattern.FindStringMatch(text)
	if err != nil {
		return nil, WrapError(err, ErrCodeValidation, "citation pattern failed")
	}
	for m != nil {
		start := byteOffsets[m.Index]
		end := byteOffsets[m.Index+m.Length]
		segments = append(segments, ProtectedSegment{
			Start:   start,
			End:     end,
			Content: text[start:end],
			Kind:    SegmentCitation,
		})
		m, err = citationPattern.FindNextMatch(m)
		if err != nil {
			return nil, WrapError(err, ErrCodeValidation, "citation pattern failed")
		}
	}

	return segments, nil
}

// parseCustomDelimiters 定位调用方自定义标记对包住的区间，标记本身也一并保护
func parseCustomDelimiters(text string, delims *DelimiterPair) []ProtectedSegment {
	var segments []ProtectedSegment
	offset := 0
	for {
		rel := strings.Index(text[offset:], delims.Start)
		if rel < 0 {
			break
		}
		start := offset + rel
		bodyStart := start + len(delims.Start)

		endRel := strings.Index(text[bodyStart:], delims.End)
		if endRel < 0 {
			break
		}
		end := bodyStart + endRel + len(delims.End)

		segments = append(segments, ProtectedSegment{
			Start:   start,
			End:     end,
			Content: text[start:end],
			Kind:    SegmentCustom,
		})
		offset = end
	}
	return segments
}

// mergeSegments 按起始偏移排序并合并重叠的保护段
func mergeSegments(text string, segments []ProtectedSegment) []ProtectedSegment {
	if len(segments) <= 1 {
		return segments
	}

	sort.Slice(segments, func(i, j int) bool { return segments[i].Start < segments[j].Start })

	merged := segments[:1]
	for _, seg := range segments[1:] {
		last := &merged[len(merged)-1]
		if seg.Start < last.End {
			if seg.End > last.End {
				last.End = seg.End
				last.Content = text[last.Start:last.End]
			}
			continue
		}
		merged = append(merged, seg)
	}

	return merged
}
