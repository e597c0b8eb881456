package humanize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSingleChunkWhenUnderTarget(t *testing.T) {
	s := NewSplitter(0, nil)
	text := "This is a short paragraph. It easily fits into one chunk."

	chunks := s.Split(text, 1000, nil)

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, text, chunks[0].Content)
	assert.Equal(t, ChunkPending, chunks[0].Status)
	assert.Equal(t, countWords(text), chunks[0].WordCount)
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(0, nil)
	assert.Nil(t, s.Split("", 100, nil))
	assert.Nil(t, s.Split("   \n\t ", 100, nil))
}

func TestSplitConcatenationRestoresOriginal(t *testing.T) {
	s := NewSplitter(50, nil)
	sentence := "The quick brown fox jumps over the lazy dog. "
	text := strings.TrimRight(strings.Repeat(sentence, 60), " ")

	chunks := s.Split(text, 100, nil)

	require.Greater(t, len(chunks), 1)
	var b strings.Builder
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
		b.WriteString(chunk.Content)
	}
	assert.Equal(t, text, b.String(), "chunk contents must concatenate back to the original text")
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	s := NewSplitter(0, nil)
	para := strings.TrimRight(strings.Repeat("alpha beta gamma delta epsilon. ", 4), " ")
	text := para + "\n\n" + para + "\n\n" + para

	chunks := s.Split(text, 20, nil)

	require.Greater(t, len(chunks), 1)
	// 段落边界切分时分隔符归属前一块，后续块都从段首实词开始
	for _, chunk := range chunks[1:] {
		assert.False(t, strings.HasPrefix(chunk.Content, "\n"),
			"chunk %d should start at a word, got %q", chunk.Index, chunk.Content[:1])
	}
	var b strings.Builder
	for _, chunk := range chunks {
		b.WriteString(chunk.Content)
	}
	assert.Equal(t, text, b.String())
}

func TestSplitNeverCutsInsideProtectedSegment(t *testing.T) {
	s := NewSplitter(0, nil)

	prefix := strings.Repeat("word ", 30)
	code := "```go\nfunc main() {\n\tprintln(\"hello world example\")\n}\n```"
	suffix := strings.TrimRight(strings.Repeat(" trailing", 30), " ")
	text := prefix + code + suffix

	segStart := len(prefix)
	segEnd := len(prefix) + len(code)
	protected := []ProtectedSegment{{Start: segStart, End: segEnd, Content: code, Kind: SegmentCodeBlock}}

	chunks := s.Split(text, 10, protected)
	require.Greater(t, len(chunks), 1)

	offset := 0
	for _, chunk := range chunks[:len(chunks)-1] {
		offset += len(chunk.Content)
		assert.False(t, offset > segStart && offset < segEnd,
			"cut at byte %d falls inside protected segment [%d, %d)", offset, segStart, segEnd)
	}

	var b strings.Builder
	for _, chunk := range chunks {
		b.WriteString(chunk.Content)
	}
	assert.Equal(t, text, b.String())
}

func TestSplitCarriesOverlapAsLeadIn(t *testing.T) {
	s := NewSplitter(5, nil)
	sentence := "one two three four five six seven eight nine ten. "
	text := strings.TrimRight(strings.Repeat(sentence, 30), " ")

	chunks := s.Split(text, 50, nil)
	require.Greater(t, len(chunks), 1)

	assert.Nil(t, chunks[0].Context, "first chunk has no lead-in")
	for i := 1; i < len(chunks); i++ {
		require.NotNil(t, chunks[i].Context)
		want := lastWords(chunks[i-1].Content, 5)
		assert.Equal(t, want, chunks[i].Context.LeadIn)
	}
}

func TestAssembleOrdersByIndex(t *testing.T) {
	chunks := []*Chunk{
		{Index: 2, Content: "c", TransformedContent: "C"},
		{Index: 0, Content: "a", TransformedContent: "A"},
		{Index: 1, Content: "b"},
	}

	// 未改写的块退回原文
	assert.Equal(t, "AbC", Assemble(chunks))
	assert.Equal(t, "", Assemble(nil))
}
