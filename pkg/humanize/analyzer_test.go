package humanize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeEmptyText(t *testing.T) {
	analyzer := NewDefaultAnalyzer()

	for _, text := range []string{"", "   ", "\n\t  \n"} {
		result, err := analyzer.Analyze(text)
		require.NoError(t, err)
		assert.False(t, result.IsValid)
		require.NotEmpty(t, result.ValidationErrors)
		assert.Equal(t, "Input text cannot be empty", result.ValidationErrors[0])
	}
}

func TestAnalyzeContentType(t *testing.T) {
	tests := []struct {
		name string
		text string
		want ContentType
	}{
		{
			name: "technical",
			text: "The server exposes an api endpoint. The database stores config data and the deploy pipeline runs the algorithm in the runtime module.",
			want: ContentTechnical,
		},
		{
			name: "academic",
			text: "The methodology follows the empirical literature. Furthermore, the findings support the hypothesis presented in the abstract; moreover the study cites Smith et al extensively.",
			want: ContentAcademic,
		},
		{
			name: "business",
			text: "Quarterly revenue growth beat the budget. The stakeholder meeting covered market strategy, customer sales and roi for each client.",
			want: ContentBusiness,
		},
		{
			name: "casual",
			text: "Honestly guys, this is gonna be really cool stuff, kinda pretty okay anyway yeah.",
			want: ContentCasual,
		},
		{
			name: "plain text with no signal",
			text: "Water flows downhill. Birds migrate south during winter when temperatures drop gradually across regions over long periods without interruption.",
			want: ContentOther,
		},
	}

	analyzer := NewDefaultAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := analyzer.Analyze(tt.text)
			require.NoError(t, err)
			assert.True(t, result.IsValid)
			assert.Equal(t, tt.want, result.ContentType)
			assert.Greater(t, result.WordCount, 0)
			assert.Greater(t, result.SentenceCount, 0)
		})
	}
}

func TestAnalyzeLanguageDetection(t *testing.T) {
	analyzer := NewDefaultAnalyzer()

	english, err := analyzer.Analyze("The system is designed to process the input and deliver it to the consumer with the least delay.")
	require.NoError(t, err)
	assert.Equal(t, "en", english.Language)

	chinese, err := analyzer.Analyze("这是一个用于测试语言检测的中文段落。系统应当识别出主要文字属于中文。")
	require.NoError(t, err)
	assert.Equal(t, "zh", chinese.Language)
}

func TestAnalyzeRejectsOversizedInput(t *testing.T) {
	analyzer := NewDefaultAnalyzer()

	huge := strings.Repeat("word ", 200001)
	result, err := analyzer.Analyze(huge)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	require.NotEmpty(t, result.ValidationErrors)
	assert.Contains(t, result.ValidationErrors[0], "maximum supported length")
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "simple", text: "One sentence. Another one. A third!", want: 3},
		{name: "decimal point kept inside sentence", text: "The rate is 3.5 percent today.", want: 1},
		{name: "question and cjk punctuation", text: "Is it done? 已经完成了。", want: 2},
		{name: "no terminator", text: "trailing fragment without punctuation", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, splitSentences(tt.text), tt.want)
		})
	}
}
