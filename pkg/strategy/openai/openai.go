// Package openai 提供基于 OpenAI 兼容接口的改写策略实现。
package openai

import (
	"context"
	"fmt"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
	"github.com/nerdneilsfield/go-humanizer-agent/pkg/strategy"
)

// Config OpenAI 策略配置
type Config struct {
	strategy.BaseConfig
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		BaseConfig:  strategy.DefaultConfig(),
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Strategy OpenAI 改写策略
type Strategy struct {
	config Config
	client *goopenai.Client
}

// New 创建 OpenAI 改写策略
func New(config Config) *Strategy {
	clientConfig := goopenai.DefaultConfig(config.APIKey)
	if config.APIEndpoint != "" {
		clientConfig.BaseURL = config.APIEndpoint
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient.Timeout = config.Timeout
	}

	return &Strategy{
		config: config,
		client: goopenai.NewClientWithConfig(clientConfig),
	}
}

// toneInstructions 各策略对应的语气指示
var toneInstructions = map[humanize.StrategyName]string{
	humanize.StrategyCasual:       "Use a relaxed, conversational register with natural contractions and varied rhythm.",
	humanize.StrategyProfessional: "Use a clear, confident business register without stiff boilerplate phrasing.",
	humanize.StrategyAcademic:     "Use precise scholarly prose with varied sentence openings and measured hedging.",
}

// Apply 调用聊天补全接口改写一个文本块
func (s *Strategy) Apply(ctx context.Context, req *humanize.StrategyRequest) (*humanize.StrategyResponse, error) {
	resp, err := s.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       s.config.Model,
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleSystem,
				Content: s.systemPrompt(req),
			},
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: req.Text,
			},
		},
	})
	if err != nil {
		return nil, strategy.NewError("server_error", fmt.Sprintf("chat completion failed: %v", err))
	}
	if len(resp.Choices) == 0 {
		return nil, strategy.NewError("server_error", "chat completion returned no choices")
	}

	return &humanize.StrategyResponse{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Metadata: map[string]string{
			"finish_reason": string(resp.Choices[0].FinishReason),
		},
	}, nil
}

// systemPrompt 根据策略、强度和块上下文组装系统提示词
func (s *Strategy) systemPrompt(req *humanize.StrategyRequest) string {
	var b strings.Builder

	b.WriteString("You rewrite machine-generated text so it reads as if written by a careful human author. ")
	b.WriteString("Keep the meaning, facts and language of the original. ")
	b.WriteString(fmt.Sprintf("Rewrite intensity: %.2f on a 0-1 scale (level %d of 5); higher means more aggressive rephrasing.\n", req.Intensity, req.Level))

	if instruction, ok := toneInstructions[req.Strategy]; ok {
		b.WriteString(instruction)
		b.WriteString("\n")
	}

	if ctx := req.Context; ctx != nil {
		if ctx.Profile != nil {
			b.WriteString(fmt.Sprintf("Document voice: %s tone, average sentence length %.0f words.\n",
				ctx.Profile.Tone, ctx.Profile.AvgSentenceLength))
		}
		if ctx.PreviousTail != "" {
			b.WriteString("The text continues directly from: \"")
			b.WriteString(ctx.PreviousTail)
			b.WriteString("\"; keep the transition seamless.\n")
		}
	}

	b.WriteString("Never alter placeholders matching @@PRESERVE_<n>@@; copy them into your output exactly as given. ")
	b.WriteString("Reply with the rewritten text only.")

	return b.String()
}

// GetName 获取策略名称
func (s *Strategy) GetName() string {
	return "openai"
}
