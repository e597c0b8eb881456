package humanize

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
)

// defaultAnalyzer 默认文本分析器实现
type defaultAnalyzer struct {
	maxWords int
}

// NewDefaultAnalyzer 创建默认分析器
func NewDefaultAnalyzer() TextAnalyzer {
	return &defaultAnalyzer{
		maxWords: 200000,
	}
}

// contentKeywords 各内容类型的特征词
var contentKeywords = map[ContentType][]string{
	ContentAcademic: {
		"hypothesis", "methodology", "furthermore", "literature", "empirical",
		"et al", "abstract", "findings", "研究", "thus", "moreover", "study",
	},
	ContentBusiness: {
		"revenue", "stakeholder", "quarterly", "market", "roi", "customer",
		"growth", "sales", "budget", "meeting", "client", "strategy",
	},
	ContentTechnical: {
		"server", "database", "algorithm", "config", "api", "deploy",
		"function", "code", "implementation", "runtime", "protocol", "module",
	},
	ContentCasual: {
		"gonna", "stuff", "kinda", "really", "pretty", "honestly",
		"anyway", "yeah", "okay", "guys", "cool",
	},
	ContentCreative: {
		"whispered", "shimmering", "dream", "shadow", "heart", "silence",
		"moonlight", "story", "wind", "gazed",
	},
}

// Analyze 校验输入并识别内容类型与语言
func (a *defaultAnalyzer) Analyze(text string) (*AnalysisResult, error) {
	result := &AnalysisResult{
		IsValid: true,
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		result.IsValid = false
		result.ValidationErrors = append(result.ValidationErrors, ErrEmptyText.Error())
		return result, nil
	}

	result.WordCount = countWords(text)
	result.SentenceCount = len(splitSentences(text))

	if result.WordCount > a.maxWords {
		result.IsValid = false
		result.ValidationErrors = append(result.ValidationErrors, "input text exceeds maximum supported length")
		return result, nil
	}

	result.ContentType = a.classify(trimmed)
	result.Language = a.detectLanguage(trimmed).String()

	return result, nil
}

// classify 按特征词密度给内容类型打分
func (a *defaultAnalyzer) classify(text string) ContentType {
	lower := strings.ToLower(text)
	words := float64(countWords(text))
	if words == 0 {
		return ContentOther
	}

	best := ContentOther
	bestScore := 0.0
	for contentType, keywords := range contentKeywords {
		hits := 0
		for _, kw := range keywords {
			hits += strings.Count(lower, kw)
		}
		// 每千词命中数，消除文本长度影响
		score := float64(hits) / words * 1000
		if score > bestScore {
			bestScore = score
			best = contentType
		}
	}

	// 命中密度过低时不强行归类
	if bestScore < 2.0 {
		return ContentOther
	}
	return best
}

// languageStopwords 常用停用词，用于拉丁字母语言的粗粒度判别
var languageStopwords = map[string][]string{
	"en": {"the", "and", "is", "of", "to", "in", "that", "it", "with", "for"},
	"es": {"el", "la", "de", "que", "los", "una", "por", "con", "para", "es"},
	"fr": {"le", "la", "les", "des", "une", "est", "dans", "que", "pour", "avec"},
	"de": {"der", "die", "das", "und", "ist", "nicht", "ein", "mit", "auf", "für"},
}

// detectLanguage 粗粒度语言检测。
// 先看 CJK 字符占比，再按停用词频率判别常见拉丁字母语言。
func (a *defaultAnalyzer) detectLanguage(text string) language.Tag {
	runes := []rune(text)
	cjk := 0
	for _, r := range runes {
		if unicode.Is(unicode.Han, r) {
			cjk++
		}
	}
	if len(runes) > 0 && float64(cjk)/float64(len(runes)) > 0.2 {
		return language.Chinese
	}

	words := strings.Fields(strings.ToLower(text))
	counts := make(map[string]int)
	for _, w := range words {
		counts[strings.Trim(w, ".,!?;:\"'()")]++
	}

	bestLang := "en"
	bestHits := 0
	for lang, stopwords := range languageStopwords {
		hits := 0
		for _, sw := range stopwords {
			hits += counts[sw]
		}
		if hits > bestHits {
			bestHits = hits
			bestLang = lang
		}
	}

	tag, err := language.Parse(bestLang)
	if err != nil {
		return language.English
	}
	return tag
}
