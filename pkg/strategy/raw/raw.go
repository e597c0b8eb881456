// Package raw 提供直通策略：跳过改写，原样返回输入。
// 用于测试管线本身，也对应线上在算法未就绪时的占位行为。
package raw

import (
	"context"

	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
)

// Strategy Raw 策略实现
type Strategy struct{}

// New 创建 Raw 策略
func New() *Strategy {
	return &Strategy{}
}

// Apply 直接返回原文，不做任何改写
func (s *Strategy) Apply(_ context.Context, req *humanize.StrategyRequest) (*humanize.StrategyResponse, error) {
	return &humanize.StrategyResponse{
		Text:  req.Text,
		Model: "raw",
		Metadata: map[string]string{
			"type": "raw_passthrough",
		},
	}, nil
}

// GetName 获取策略名称
func (s *Strategy) GetName() string {
	return "raw"
}
