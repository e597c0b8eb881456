package strategy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-humanizer-agent/pkg/humanize"
)

type fakeStrategy struct{ name string }

func (f *fakeStrategy) Apply(_ context.Context, req *humanize.StrategyRequest) (*humanize.StrategyResponse, error) {
	return &humanize.StrategyResponse{Text: req.Text}, nil
}

func (f *fakeStrategy) GetName() string { return f.name }

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("alpha", &fakeStrategy{name: "alpha"}))
	require.NoError(t, reg.Register("beta", &fakeStrategy{name: "beta"}))

	// 重复注册被拒绝
	assert.Error(t, reg.Register("alpha", &fakeStrategy{name: "alpha"}))

	impl, err := reg.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", impl.GetName())

	_, err = reg.Get("missing")
	assert.Error(t, err)

	assert.ElementsMatch(t, []string{"alpha", "beta"}, reg.List())

	reg.Remove("alpha")
	_, err = reg.Get("alpha")
	assert.Error(t, err)
	assert.ElementsMatch(t, []string{"beta"}, reg.List())
}

func TestErrorRetryable(t *testing.T) {
	assert.True(t, NewError("rate_limit", "slow down").IsRetryable())
	assert.True(t, NewError("timeout", "too slow").IsRetryable())
	assert.True(t, NewError("server_error", "upstream down").IsRetryable())
	assert.False(t, NewError("invalid_request", "bad payload").IsRetryable())
}
