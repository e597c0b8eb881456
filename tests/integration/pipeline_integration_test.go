package integration

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-humanizer-agent/internal/config"
	"github.com/nerdneilsfield/go-humanizer-agent/internal/logger"
	"github.com/nerdneilsfield/go-humanizer-agent/internal/store"
	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
	rawstrategy "github.com/nerdneilsfield/go-humanizer-agent/pkg/strategy/raw"
)

// TestPipelineIntegration 用默认配置和 raw 策略走一遍完整的改写流程
func TestPipelineIntegration(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	log := logger.NewLogger(false)
	defer func() {
		_ = log.Sync()
	}()

	svc, err := humanize.New(cfg.ToPipelineConfig(),
		humanize.WithStrategy(rawstrategy.New()),
		humanize.WithLogger(log))
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("Markdown Document Round Trip", func(t *testing.T) {
		text := "# Heading\n\nSome introduction text about the system design.\n\n" +
			"```go\nfunc main() {\n\tprintln(\"kept verbatim\")\n}\n```\n\n" +
			"A closing paragraph that references [3] and uses `inline code` casually."

		result, err := svc.Transform(ctx, &humanize.Request{Text: text})
		require.NoError(t, err)

		// raw 策略下输出必须与输入完全一致
		assert.Equal(t, text, result.HumanizedText)
		assert.GreaterOrEqual(t, result.ProtectedSegmentsPreserved, 3)
		require.NotNil(t, result.Metrics)
		assert.Equal(t, 0.0, result.Metrics.ModificationPercentage)
	})

	t.Run("Large Document Chunked Round Trip", func(t *testing.T) {
		var b strings.Builder
		for i := 0; i < 400; i++ {
			fmt.Fprintf(&b, "Sentence number %d carries a handful of ordinary words. ", i)
		}
		text := strings.TrimRight(b.String(), " ")

		var updates []*humanize.ProgressUpdate
		result, err := svc.Transform(ctx, &humanize.Request{Text: text, Level: 2},
			func(u *humanize.ProgressUpdate) { updates = append(updates, u) })
		require.NoError(t, err)

		assert.Greater(t, result.TotalChunks, 1)
		assert.Equal(t, text, result.HumanizedText)
		assert.Equal(t, 2, result.LevelApplied)

		require.NotEmpty(t, updates)
		last := updates[len(updates)-1]
		assert.Equal(t, humanize.JobCompleted, last.Status)
		assert.Equal(t, 100.0, last.Progress)
	})

	t.Run("Parallel Mode Round Trip", func(t *testing.T) {
		parallelCfg := cfg.ToPipelineConfig()
		parallelCfg.ParallelProcessing = true

		parallelSvc, err := humanize.New(parallelCfg,
			humanize.WithStrategy(rawstrategy.New()),
			humanize.WithLogger(log))
		require.NoError(t, err)

		var b strings.Builder
		for i := 0; i < 500; i++ {
			fmt.Fprintf(&b, "Parallel sentence %d keeps its position in the document. ", i)
		}
		text := strings.TrimRight(b.String(), " ")

		result, err := parallelSvc.Transform(ctx, &humanize.Request{Text: text})
		require.NoError(t, err)
		assert.Greater(t, result.TotalChunks, 1)
		assert.Equal(t, text, result.HumanizedText)
	})
}

// TestPostgresJobStoreIntegration 需要真实数据库，本地没有 DSN 时跳过
func TestPostgresJobStoreIntegration(t *testing.T) {
	dsn := os.Getenv("HUMANIZER_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("HUMANIZER_TEST_POSTGRES_DSN not set, skipping postgres store test")
	}

	ctx := context.Background()
	pgStore, err := store.NewPostgresJobStore(ctx, dsn)
	require.NoError(t, err)
	defer pgStore.Close()

	state := &humanize.ResumableJobState{
		JobID:           "integration-job",
		Request:         &humanize.Request{Text: "text", Level: 2},
		ProcessedChunks: []*humanize.Chunk{{Index: 0, Content: "done", Status: humanize.ChunkCompleted}},
		PendingChunks:   []*humanize.Chunk{{Index: 1, Content: "todo", Status: humanize.ChunkPending}},
		ChunkSizeTarget: 900,
	}
	require.NoError(t, pgStore.Put(ctx, state))

	loaded, err := pgStore.Get(ctx, "integration-job")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, 900, loaded.ChunkSizeTarget)
	assert.Len(t, loaded.ProcessedChunks, 1)

	ids, err := pgStore.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "integration-job")

	require.NoError(t, pgStore.Delete(ctx, "integration-job"))
	loaded, err = pgStore.Get(ctx, "integration-job")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
