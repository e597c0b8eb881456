package openai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.InDelta(t, 0.7, cfg.Temperature, 0.001)
	assert.Equal(t, 4096, cfg.MaxTokens)
	assert.Equal(t, 3, cfg.MaxRetries)
}

func TestSystemPromptCarriesIntensityAndTone(t *testing.T) {
	s := New(DefaultConfig())

	prompt := s.systemPrompt(&humanize.StrategyRequest{
		Strategy:  humanize.StrategyAcademic,
		Level:     4,
		Intensity: 0.65,
	})

	assert.Contains(t, prompt, "0.65")
	assert.Contains(t, prompt, "level 4 of 5")
	assert.Contains(t, prompt, "scholarly")
	assert.Contains(t, prompt, "@@PRESERVE_<n>@@")
}

func TestSystemPromptCarriesChunkContext(t *testing.T) {
	s := New(DefaultConfig())

	prompt := s.systemPrompt(&humanize.StrategyRequest{
		Strategy:  humanize.StrategyCasual,
		Level:     2,
		Intensity: 0.30,
		Context: &humanize.ChunkContext{
			Profile: &humanize.StyleProfile{
				Tone:              "casual",
				AvgSentenceLength: 14,
			},
			PreviousTail: "and that was the end of the previous chunk",
		},
	})

	assert.Contains(t, prompt, "casual tone")
	assert.Contains(t, prompt, "and that was the end of the previous chunk")
	assert.True(t, strings.Contains(prompt, "conversational"), "casual tone instruction expected")
}

func TestSystemPromptWithoutContext(t *testing.T) {
	s := New(DefaultConfig())

	prompt := s.systemPrompt(&humanize.StrategyRequest{
		Strategy:  humanize.StrategyProfessional,
		Level:     3,
		Intensity: 0.45,
	})

	assert.NotContains(t, prompt, "Document voice")
	assert.NotContains(t, prompt, "continues directly from")
}
