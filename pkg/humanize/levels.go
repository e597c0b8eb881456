package humanize

import "fmt"

// DefaultLevel 未指定级别时的默认值
const DefaultLevel = 3

// LevelProfile 某个改写级别对应的强度参数
type LevelProfile struct {
	// Level 改写级别（1-5）
	Level int `json:"level"`

	// MinModification / MaxModification 目标句子改动比例区间（百分比）
	MinModification float64 `json:"min_modification"`
	MaxModification float64 `json:"max_modification"`

	// Intensity 策略实现可用的标量强度因子
	Intensity float64 `json:"intensity"`
}

// levelProfiles 级别到强度参数的无状态映射
var levelProfiles = map[int]LevelProfile{
	1: {Level: 1, MinModification: 0, MaxModification: 20, Intensity: 0.15},
	2: {Level: 2, MinModification: 20, MaxModification: 35, Intensity: 0.30},
	3: {Level: 3, MinModification: 35, MaxModification: 50, Intensity: 0.45},
	4: {Level: 4, MinModification: 50, MaxModification: 60, Intensity: 0.65},
	5: {Level: 5, MinModification: 60, MaxModification: 100, Intensity: 0.80},
}

// ResolveLevel 解析改写级别。
// 0 表示调用方未指定，按 DefaultLevel 处理；其余越界值一律报错，从不静默截断。
func ResolveLevel(level int) (LevelProfile, error) {
	if level == 0 {
		level = DefaultLevel
	}

	profile, ok := levelProfiles[level]
	if !ok {
		return LevelProfile{}, WrapError(
			fmt.Errorf("%w: got %d", ErrInvalidLevel, level),
			ErrCodeValidation,
			"invalid humanization level",
		)
	}

	return profile, nil
}
