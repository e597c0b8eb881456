package cli

import (
	"fmt"
	"sync"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"

	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
)

// progressPrinter 把管线的进度回调渲染成终端进度条
type progressPrinter struct {
	writer  progress.Writer
	mu      sync.Mutex
	tracker *progress.Tracker
	started bool
}

// newProgressPrinter 创建进度条打印器
func newProgressPrinter() *progressPrinter {
	pw := progress.NewWriter()

	pw.SetStyle(progress.StyleDefault)
	pw.Style().Colors = progress.StyleColorsExample
	pw.Style().Options.PercentFormat = "%4.1f%%"
	pw.SetUpdateFrequency(200 * time.Millisecond)
	pw.SetTrackerLength(40)
	pw.SetMessageLength(28)
	pw.SetNumTrackersExpected(1)

	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true
	pw.Style().Visibility.Value = true

	return &progressPrinter{writer: pw}
}

// Subscriber 返回可挂到改写任务上的进度订阅回调
func (p *progressPrinter) Subscriber() humanize.ProgressSubscriber {
	return func(update *humanize.ProgressUpdate) {
		p.mu.Lock()
		defer p.mu.Unlock()

		if p.tracker == nil {
			p.tracker = &progress.Tracker{
				Message: "改写进度",
				Total:   int64(update.TotalWords),
				Units:   progress.UnitsDefault,
			}
			p.writer.AppendTracker(p.tracker)
		}
		if !p.started {
			go p.writer.Render()
			p.started = true
		}

		if p.tracker.Total <= 0 && update.TotalWords > 0 {
			p.tracker.UpdateTotal(int64(update.TotalWords))
		}
		p.tracker.SetValue(int64(update.WordsProcessed))
		p.tracker.UpdateMessage(fmt.Sprintf("改写进度 [%s] 块 %d/%d",
			update.Status, update.CurrentChunk, update.TotalChunks))

		switch update.Status {
		case humanize.JobCompleted:
			p.tracker.MarkAsDone()
		case humanize.JobFailed, humanize.JobCanceled:
			p.tracker.MarkAsErrored()
		}
	}
}

// Stop 停止渲染并等待最后一帧刷出
func (p *progressPrinter) Stop() {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()

	if !started {
		return
	}

	p.writer.Stop()
	for p.writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
