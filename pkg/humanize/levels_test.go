package humanize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name          string
		level         int
		wantLevel     int
		wantIntensity float64
		wantErr       bool
	}{
		{name: "zero falls back to default", level: 0, wantLevel: 3, wantIntensity: 0.45},
		{name: "level 1", level: 1, wantLevel: 1, wantIntensity: 0.15},
		{name: "level 2", level: 2, wantLevel: 2, wantIntensity: 0.30},
		{name: "level 3", level: 3, wantLevel: 3, wantIntensity: 0.45},
		{name: "level 4", level: 4, wantLevel: 4, wantIntensity: 0.65},
		{name: "level 5", level: 5, wantLevel: 5, wantIntensity: 0.80},
		{name: "level 6 rejected", level: 6, wantErr: true},
		{name: "negative rejected", level: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := ResolveLevel(tt.level)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, profile.Level)
			assert.InDelta(t, tt.wantIntensity, profile.Intensity, 0.001)
		})
	}
}

func TestLevelProfilesCoverFullRange(t *testing.T) {
	// 级别 1 到 5 的改动区间首尾相接覆盖 [0, 100]
	assert.Equal(t, 0.0, levelProfiles[1].MinModification)
	assert.Equal(t, 100.0, levelProfiles[5].MaxModification)
	for lvl := 2; lvl <= 5; lvl++ {
		assert.Equal(t, levelProfiles[lvl-1].MaxModification, levelProfiles[lvl].MinModification,
			"level %d should start where level %d ends", lvl, lvl-1)
	}
}
