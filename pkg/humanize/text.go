package humanize

import (
	"strings"
	"unicode"
)

// countWords 统计词数
func countWords(text string) int {
	return len(strings.Fields(text))
}

// isSentenceEnd 判断是否是句子结束符
func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '。' || r == '！' || r == '？'
}

// splitSentences 按句子分割文本
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)

		if isSentenceEnd(r) {
			// 句末符号后面是空白或文本结束才算句子边界，
			// 避免把小数点、缩写点当成句子结束
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				sentence := strings.TrimSpace(current.String())
				if sentence != "" {
					sentences = append(sentences, sentence)
				}
				current.Reset()
			}
		}
	}

	if current.Len() > 0 {
		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	return sentences
}

// lastWords 返回文本末尾最多 n 个词
func lastWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[len(words)-n:], " ")
}
