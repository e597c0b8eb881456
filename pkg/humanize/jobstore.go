package humanize

import (
	"context"
	"sync"
)

// MemoryJobStore 进程内内存实现的 JobStore。
// 检查点不落盘；需要跨进程恢复时换用外部存储实现。
type MemoryJobStore struct {
	mu     sync.RWMutex
	states map[string]*ResumableJobState
}

// NewMemoryJobStore 创建内存任务状态存储
func NewMemoryJobStore() *MemoryJobStore {
	return &MemoryJobStore{
		states: make(map[string]*ResumableJobState),
	}
}

// Put 写入或覆盖检查点
func (s *MemoryJobStore) Put(_ context.Context, state *ResumableJobState) error {
	if state == nil || state.JobID == "" {
		return NewError(ErrCodeStore, "job state must carry a job id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state.JobID] = state
	return nil
}

// Get 读取检查点，不存在时返回 (nil, nil)
func (s *MemoryJobStore) Get(_ context.Context, jobID string) (*ResumableJobState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.states[jobID], nil
}

// Delete 删除检查点
func (s *MemoryJobStore) Delete(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, jobID)
	return nil
}

// List 列出全部检查点的任务 ID
func (s *MemoryJobStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	return ids, nil
}
