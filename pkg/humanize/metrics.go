package humanize

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ComputeMetrics 计算改写前后指标。
// 词级改动按位置逐一比较两个词序列中较短的一段，再加上长度差的绝对值，
// 以原文词数的百分比表示，结果截断在 [0, 100]。
func ComputeMetrics(original, humanized string) *TextMetrics {
	origWords := strings.Fields(original)
	outWords := strings.Fields(humanized)

	origSentences := splitSentences(original)
	outSentences := splitSentences(humanized)

	metrics := &TextMetrics{
		InputWordCount:      len(origWords),
		OutputWordCount:     len(outWords),
		InputSentenceCount:  len(origSentences),
		OutputSentenceCount: len(outSentences),
	}

	if len(origWords) == 0 {
		return metrics
	}

	shorter := len(origWords)
	if len(outWords) < shorter {
		shorter = len(outWords)
	}

	changed := 0
	for i := 0; i < shorter; i++ {
		if origWords[i] != outWords[i] {
			changed++
		}
	}
	delta := len(origWords) - len(outWords)
	if delta < 0 {
		delta = -delta
	}

	pct := float64(changed+delta) / float64(len(origWords)) * 100
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	metrics.ModificationPercentage = pct

	metrics.SentencesModified = countModifiedSentences(origSentences, outSentences)

	return metrics
}

// countModifiedSentences 按位置配对比较句子。
// 精确相等视为未改动；其余用 fuzzysearch 的归一化匹配过滤掉
// 只有大小写或变音符差异的句子。输出比原文多出的句子也计入改动。
func countModifiedSentences(original, humanized []string) int {
	shorter := len(original)
	if len(humanized) < shorter {
		shorter = len(humanized)
	}

	modified := 0
	for i := 0; i < shorter; i++ {
		if original[i] == humanized[i] {
			continue
		}
		rank := fuzzy.RankMatchNormalizedFold(original[i], humanized[i])
		if rank != 0 {
			modified++
		}
	}

	delta := len(original) - len(humanized)
	if delta < 0 {
		delta = -delta
	}
	return modified + delta
}
