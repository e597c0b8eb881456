package humanize

import "go.uber.org/zap"

// Option 服务配置选项函数
type Option func(*serviceOptions)

// serviceOptions 服务内部选项
type serviceOptions struct {
	strategy   TransformationStrategy
	strategies map[StrategyName]TransformationStrategy
	analyzer   TextAnalyzer
	parser     SegmentParser
	store      JobStore
	logger     *zap.Logger
}

// WithStrategy 设置默认改写策略实现（必需）
func WithStrategy(strategy TransformationStrategy) Option {
	return func(o *serviceOptions) {
		o.strategy = strategy
	}
}

// WithNamedStrategy 为某个策略名称设置专用实现，覆盖默认实现
func WithNamedStrategy(name StrategyName, strategy TransformationStrategy) Option {
	return func(o *serviceOptions) {
		if o.strategies == nil {
			o.strategies = make(map[StrategyName]TransformationStrategy)
		}
		o.strategies[name] = strategy
	}
}

// WithAnalyzer 设置文本分析器
func WithAnalyzer(analyzer TextAnalyzer) Option {
	return func(o *serviceOptions) {
		o.analyzer = analyzer
	}
}

// WithSegmentParser 设置保护段解析器
func WithSegmentParser(parser SegmentParser) Option {
	return func(o *serviceOptions) {
		o.parser = parser
	}
}

// WithJobStore 设置可恢复任务状态存储
func WithJobStore(store JobStore) Option {
	return func(o *serviceOptions) {
		o.store = store
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger *zap.Logger) Option {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}
