package humanize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryJobStoreRoundTrip(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	state := &ResumableJobState{
		JobID:           "job-a",
		Request:         &Request{Text: "text", Level: 2},
		ProcessedChunks: []*Chunk{{Index: 0, Content: "done", Status: ChunkCompleted}},
		PendingChunks:   []*Chunk{{Index: 1, Content: "todo", Status: ChunkPending}},
		ChunkSizeTarget: 800,
	}
	require.NoError(t, store.Put(ctx, state))

	loaded, err := store.Get(ctx, "job-a")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "job-a", loaded.JobID)
	assert.Equal(t, 800, loaded.ChunkSizeTarget)
	assert.Len(t, loaded.ProcessedChunks, 1)
	assert.Len(t, loaded.PendingChunks, 1)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"job-a"}, ids)

	require.NoError(t, store.Delete(ctx, "job-a"))
	loaded, err = store.Get(ctx, "job-a")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestMemoryJobStoreMissingJob(t *testing.T) {
	store := NewMemoryJobStore()
	ctx := context.Background()

	// 不存在的任务读到 (nil, nil)，删除是 no-op
	state, err := store.Get(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, state)
	assert.NoError(t, store.Delete(ctx, "ghost"))
}

func TestMemoryJobStoreRejectsStateWithoutID(t *testing.T) {
	store := NewMemoryJobStore()

	err := store.Put(context.Background(), &ResumableJobState{})
	require.Error(t, err)

	err = store.Put(context.Background(), nil)
	require.Error(t, err)
}
