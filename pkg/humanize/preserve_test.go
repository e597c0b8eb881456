package humanize

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreserveManagerRoundTrip(t *testing.T) {
	text := "Run `go build` first, then check [12] for details."
	segments := []ProtectedSegment{
		{Start: strings.Index(text, "`go build`"), End: strings.Index(text, "`go build`") + len("`go build`"), Kind: SegmentInlineCode},
		{Start: strings.Index(text, "[12]"), End: strings.Index(text, "[12]") + len("[12]"), Kind: SegmentCitation},
	}

	pm := NewPreserveManager(DefaultPreserveConfig)
	protected := pm.Protect(text, segments)

	assert.NotContains(t, protected, "`go build`")
	assert.NotContains(t, protected, "[12]")
	assert.Contains(t, protected, "@@PRESERVE_0@@")
	assert.Contains(t, protected, "@@PRESERVE_1@@")
	assert.Equal(t, 2, pm.Count())

	// 模拟策略改写了周围文本但保留了占位符
	rewritten := strings.ReplaceAll(protected, "details", "specifics")
	restored, err := pm.Restore(rewritten)
	require.NoError(t, err)
	assert.Contains(t, restored, "`go build`")
	assert.Contains(t, restored, "[12]")
	assert.NotContains(t, restored, "@@PRESERVE_")
}

func TestPreserveManagerLostPlaceholder(t *testing.T) {
	text := "keep [1] safe"
	segments := []ProtectedSegment{{Start: 5, End: 8, Kind: SegmentCitation}}

	pm := NewPreserveManager(DefaultPreserveConfig)
	_ = pm.Protect(text, segments)

	_, err := pm.Restore("the placeholder is gone")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlaceholderLost))
}

func TestPreserveManagerManyPlaceholders(t *testing.T) {
	// 超过 10 个占位符时降序还原不会把 _1 当成 _12 的前缀
	var parts []string
	var segments []ProtectedSegment
	offset := 0
	for i := 0; i < 13; i++ {
		seg := "[7]"
		segments = append(segments, ProtectedSegment{Start: offset, End: offset + len(seg), Kind: SegmentCitation})
		parts = append(parts, seg)
		offset += len(seg) + len(" and ")
	}
	text := strings.Join(parts, " and ")

	pm := NewPreserveManager(DefaultPreserveConfig)
	protected := pm.Protect(text, segments)
	assert.Equal(t, 13, pm.Count())

	restored, err := pm.Restore(protected)
	require.NoError(t, err)
	assert.Equal(t, text, restored)
}

func TestDefaultSegmentParserFencedCodeBlock(t *testing.T) {
	text := "Intro paragraph.\n\n```go\nfunc main() {\n\tprintln(\"hi\")\n}\n```\n\nOutro paragraph."

	parser := NewDefaultSegmentParser()
	segments, err := parser.Parse(text, nil)
	require.NoError(t, err)
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.Equal(t, SegmentCodeBlock, seg.Kind)
	assert.Equal(t, text[seg.Start:seg.End], seg.Content)
	assert.True(t, strings.HasPrefix(seg.Content, "```go"), "span must include the opening fence, got %q", seg.Content)
	assert.True(t, strings.HasSuffix(seg.Content, "```"), "span must include the closing fence, got %q", seg.Content)
	assert.Contains(t, seg.Content, "func main()")
}

func TestDefaultSegmentParserInlineCode(t *testing.T) {
	text := "Use the `humanize.New` constructor to build the service."

	parser := NewDefaultSegmentParser()
	segments, err := parser.Parse(text, nil)
	require.NoError(t, err)
	require.Len(t, segments, 1)

	seg := segments[0]
	assert.Equal(t, SegmentInlineCode, seg.Kind)
	assert.Equal(t, "`humanize.New`", seg.Content)
	assert.Equal(t, text[seg.Start:seg.End], seg.Content)
}

func TestDefaultSegmentParserCitations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "numeric citation",
			text: "as demonstrated in [12] earlier",
			want: []string{"[12]"},
		},
		{
			name: "numeric range and list",
			text: "several works [3, 5] and [1-4] agree",
			want: []string{"[3, 5]", "[1-4]"},
		},
		{
			name: "author year",
			text: "following [Smith et al., 2020] we proceed",
			want: []string{"[Smith et al., 2020]"},
		},
		{
			name: "markdown link is not a citation",
			text: "see [1](https://example.com) for the PDF",
			want: nil,
		},
	}

	parser := NewDefaultSegmentParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segments, err := parser.Parse(tt.text, nil)
			require.NoError(t, err)

			var got []string
			for _, seg := range segments {
				if seg.Kind == SegmentCitation {
					got = append(got, seg.Content)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultSegmentParserCustomDelimiters(t *testing.T) {
	text := "before [[KEEP this intact]] middle [[KEEP that too]] after"
	delims := &DelimiterPair{Start: "[[KEEP", End: "]]"}

	parser := NewDefaultSegmentParser()
	segments, err := parser.Parse(text, delims)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	assert.Equal(t, "[[KEEP this intact]]", segments[0].Content)
	assert.Equal(t, "[[KEEP that too]]", segments[1].Content)
	for _, seg := range segments {
		assert.Equal(t, SegmentCustom, seg.Kind)
		assert.Equal(t, text[seg.Start:seg.End], seg.Content)
	}
}

func TestMergeSegmentsOverlap(t *testing.T) {
	text := "abcdefghij"
	segments := []ProtectedSegment{
		{Start: 0, End: 4, Content: "abcd"},
		{Start: 2, End: 6, Content: "cdef"},
		{Start: 8, End: 10, Content: "ij"},
	}

	merged := mergeSegments(text, segments)
	require.Len(t, merged, 2)
	assert.Equal(t, 0, merged[0].Start)
	assert.Equal(t, 6, merged[0].End)
	assert.Equal(t, "abcdef", merged[0].Content)
	assert.Equal(t, "ij", merged[1].Content)
}
