package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
)

const timeRounding = 10 * time.Millisecond

// printSummary 打印改写结果摘要表
func printSummary(result *humanize.Result) {
	title := color.New(color.FgCyan, color.Bold)
	title.Println("\n改写结果摘要")

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendRows([]table.Row{
		{"任务 ID", result.ID},
		{"策略", result.StrategyUsed},
		{"强度级别", result.LevelApplied},
		{"内容类型", result.ContentType},
		{"语言", result.Language},
		{"处理块数", fmt.Sprintf("%d/%d", result.ChunksProcessed, result.TotalChunks)},
		{"保护段数", result.ProtectedSegmentsPreserved},
		{"耗时", result.ProcessingTime.Round(timeRounding)},
	})

	if m := result.Metrics; m != nil {
		t.AppendSeparator()
		t.AppendRows([]table.Row{
			{"输入词数", m.InputWordCount},
			{"输出词数", m.OutputWordCount},
			{"输入句数", m.InputSentenceCount},
			{"输出句数", m.OutputSentenceCount},
			{"改动句数", m.SentencesModified},
			{"改动比例", fmt.Sprintf("%.1f%%", m.ModificationPercentage)},
		})
	}

	t.Render()
}
