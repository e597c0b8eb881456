package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger 创建一个新的日志记录器
func NewLogger(debug bool) *zap.Logger {
	return build(debug, false)
}

// NewLoggerWithVerbose 创建日志记录器。
// verbose 打开 Debug 级别；debug 额外进入开发模式输出。
func NewLoggerWithVerbose(debug, verbose bool) *zap.Logger {
	return build(debug, verbose)
}

func build(debug, verbose bool) *zap.Logger {
	config := zap.NewProductionConfig()

	switch {
	case debug:
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.Development = true
	case verbose:
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.DisableCaller = true
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		config.DisableCaller = true
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	config.DisableStacktrace = true

	logger, err := config.Build()
	if err != nil {
		panic("初始化日志系统失败: " + err.Error())
	}

	return logger
}
