package strategy

import (
	"fmt"
	"sync"

	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
)

// Registry 策略实现注册表
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]humanize.TransformationStrategy
}

// NewRegistry 创建新的注册表
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]humanize.TransformationStrategy),
	}
}

// Register 注册策略实现
func (r *Registry) Register(name string, impl humanize.TransformationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[name]; exists {
		return fmt.Errorf("strategy %s already registered", name)
	}

	r.strategies[name] = impl
	return nil
}

// Get 获取策略实现
func (r *Registry) Get(name string) (humanize.TransformationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	impl, exists := r.strategies[name]
	if !exists {
		return nil, fmt.Errorf("strategy %s not found", name)
	}

	return impl, nil
}

// List 列出所有已注册的策略实现
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}

	return names
}

// Remove 移除策略实现
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.strategies, name)
}
