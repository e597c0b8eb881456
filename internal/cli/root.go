package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-humanizer-agent/internal/config"
	"github.com/nerdneilsfield/go-humanizer-agent/internal/logger"
	"github.com/nerdneilsfield/go-humanizer-agent/internal/store"
	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
	"github.com/nerdneilsfield/go-humanizer-agent/pkg/strategy"
	openaistrategy "github.com/nerdneilsfield/go-humanizer-agent/pkg/strategy/openai"
	rawstrategy "github.com/nerdneilsfield/go-humanizer-agent/pkg/strategy/raw"
)

var (
	// 命令行标志变量
	cfgFile        string
	level          int
	strategyName   string
	providerName   string
	parallelMode   bool
	debugMode      bool
	verboseMode    bool // 显示详细日志
	showVersion    bool
	listStrategies bool
	protectStart   string
	protectEnd     string
	resumeJobID    string
	noProgressBar  bool
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "humanizer [flags] input_file output_file",
		Short: "AI 文本人性化改写工具",
		Long: `AI 文本人性化改写工具：分析输入文本、按句子边界分块、
逐块调用改写策略并在保持文档风格连贯的前提下重新组装输出。
代码块、行内代码和引用标记在改写中原样保留。

支持的改写策略:
  - auto: 根据检测到的内容类型自动选择（默认）
  - casual: 口语化改写
  - professional: 商务/专业改写
  - academic: 学术改写`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion || listStrategies {
				return nil
			}
			if len(args) != 2 {
				return fmt.Errorf("accepts 2 arg(s), received %d", len(args))
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			log := logger.NewLoggerWithVerbose(debugMode, verboseMode)
			defer func() {
				_ = log.Sync()
			}()

			if showVersion {
				fmt.Printf("humanizer %s (commit %s, built %s)\n", version, commit, buildDate)
				return
			}

			if listStrategies {
				handleListStrategies()
				return
			}

			if err := runHumanize(cmd.Context(), args[0], args[1], log); err != nil {
				log.Error("改写失败", zap.Error(err))
				pterm.Error.Println(err.Error())
				os.Exit(1)
			}
		},
	}

	addGlobalFlags(rootCmd)

	return rootCmd
}

// addGlobalFlags 添加全局标志
func addGlobalFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().IntVarP(&level, "level", "l", 0, "改写强度级别 (1-5)，0 表示使用默认级别")
	rootCmd.PersistentFlags().StringVarP(&strategyName, "strategy", "s", "", "改写策略 (auto, casual, professional, academic)")
	rootCmd.PersistentFlags().StringVar(&providerName, "provider", "", "策略提供商 (raw, openai)，覆盖配置文件")
	rootCmd.PersistentFlags().BoolVar(&parallelMode, "parallel", false, "启用有界并行块处理")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "启用调试模式")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "显示详细日志（包括分块信息）")
	rootCmd.PersistentFlags().BoolVar(&showVersion, "version", false, "显示版本信息")
	rootCmd.PersistentFlags().BoolVar(&listStrategies, "list-strategies", false, "列出支持的改写策略")
	rootCmd.PersistentFlags().StringVar(&protectStart, "protect-start", "", "自定义保护段起始标记")
	rootCmd.PersistentFlags().StringVar(&protectEnd, "protect-end", "", "自定义保护段结束标记")
	rootCmd.PersistentFlags().StringVar(&resumeJobID, "resume", "", "恢复指定任务 ID 的检查点而不是开始新任务")
	rootCmd.PersistentFlags().BoolVar(&noProgressBar, "no-progress", false, "禁用进度条输出")
}

// handleListStrategies 列出支持的改写策略
func handleListStrategies() {
	reg := strategy.NewRegistry()
	_ = reg.Register("raw", rawstrategy.New())
	_ = reg.Register("openai", openaistrategy.New(openaistrategy.DefaultConfig()))

	pterm.DefaultSection.Println("支持的改写策略")
	items := []pterm.BulletListItem{
		{Level: 0, Text: "auto: 根据检测到的内容类型自动选择"},
		{Level: 0, Text: "casual: 口语化改写"},
		{Level: 0, Text: "professional: 商务/专业改写"},
		{Level: 0, Text: "academic: 学术改写"},
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()

	pterm.DefaultSection.Println("已注册的策略提供商")
	providers := make([]pterm.BulletListItem, 0, len(reg.List()))
	for _, name := range reg.List() {
		providers = append(providers, pterm.BulletListItem{Level: 0, Text: name})
	}
	_ = pterm.DefaultBulletList.WithItems(providers).Render()
}

// runHumanize 执行完整的文件改写流程
func runHumanize(ctx context.Context, inputPath, outputPath string, log *zap.Logger) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	applyFlagOverrides(cfg)

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("读取输入文件失败: %w", err)
	}

	svc, cleanup, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	req := &humanize.Request{
		Text:     string(content),
		Level:    level,
		Strategy: humanize.StrategyName(strategyName),
	}
	if protectStart != "" && protectEnd != "" {
		req.ProtectedDelimiters = &humanize.DelimiterPair{
			Start: protectStart,
			End:   protectEnd,
		}
	}

	var subscribers []humanize.ProgressSubscriber
	var printer *progressPrinter
	if !noProgressBar {
		printer = newProgressPrinter()
		subscribers = append(subscribers, printer.Subscriber())
	}

	var result *humanize.Result
	if resumeJobID != "" {
		log.Info("恢复检查点任务", zap.String("jobID", resumeJobID))
		result, err = svc.Resume(ctx, resumeJobID, subscribers...)
	} else {
		result, err = svc.Transform(ctx, req, subscribers...)
	}
	if printer != nil {
		printer.Stop()
	}
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(result.HumanizedText), 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}

	log.Info("改写完成",
		zap.String("输入文件", inputPath),
		zap.String("输出文件", outputPath),
		zap.String("任务", result.ID),
		zap.Int("总块数", result.TotalChunks),
		zap.Duration("耗时", result.ProcessingTime),
	)

	printSummary(result)
	pterm.Success.Printf("输出已写入 %s\n", outputPath)

	return nil
}

// applyFlagOverrides 使用命令行参数覆盖配置
func applyFlagOverrides(cfg *config.AppConfig) {
	if parallelMode {
		cfg.Pipeline.ParallelProcessing = true
	}
	if providerName != "" {
		cfg.Strategy.Provider = providerName
	}
	if debugMode {
		cfg.Debug = true
	}
}

// buildService 按配置组装改写服务及其策略和存储后端。
// 返回的 cleanup 负责释放数据库连接等资源。
func buildService(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (humanize.Service, func(), error) {
	cleanup := func() {}

	var impl humanize.TransformationStrategy
	switch cfg.Strategy.Provider {
	case "openai":
		openaiCfg := openaistrategy.DefaultConfig()
		openaiCfg.APIKey = cfg.Strategy.APIKey
		openaiCfg.APIEndpoint = cfg.Strategy.APIEndpoint
		if cfg.Strategy.Model != "" {
			openaiCfg.Model = cfg.Strategy.Model
		}
		if cfg.Strategy.Temperature > 0 {
			openaiCfg.Temperature = cfg.Strategy.Temperature
		}
		if cfg.Strategy.MaxTokens > 0 {
			openaiCfg.MaxTokens = cfg.Strategy.MaxTokens
		}
		impl = openaistrategy.New(openaiCfg)
	default:
		impl = rawstrategy.New()
	}

	opts := []humanize.Option{
		humanize.WithStrategy(impl),
		humanize.WithLogger(log),
	}

	if cfg.JobStore.Backend == "postgres" {
		pgStore, err := store.NewPostgresJobStore(ctx, cfg.JobStore.DSN)
		if err != nil {
			return nil, cleanup, fmt.Errorf("初始化 postgres 任务存储失败: %w", err)
		}
		cleanup = pgStore.Close
		opts = append(opts, humanize.WithJobStore(pgStore))
	}

	svc, err := humanize.New(cfg.ToPipelineConfig(), opts...)
	if err != nil {
		return nil, cleanup, fmt.Errorf("创建改写服务失败: %w", err)
	}

	return svc, cleanup, nil
}
