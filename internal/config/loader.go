package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load 加载应用配置。
// configPath 为空时在用户目录和当前目录搜索 .humanizer.yaml，
// 找不到配置文件时返回默认配置；环境变量 HUMANIZER_* 覆盖同名配置项。
func Load(configPath string) (*AppConfig, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("HUMANIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(".humanizer")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		// 显式指定的配置文件读不到是错误，搜索不到默认配置文件不是
		if configPath != "" {
			return nil, err
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults 设置默认配置
func setDefaults(v *viper.Viper) {
	v.SetDefault("pipeline.max_chunk_size", 1000)
	v.SetDefault("pipeline.chunk_overlap", 50)
	v.SetDefault("pipeline.progress_update_interval", "500ms")
	v.SetDefault("pipeline.parallel_processing", false)
	v.SetDefault("pipeline.max_parallel_chunks", 3)
	v.SetDefault("pipeline.memory_limit_percent", 80)
	v.SetDefault("pipeline.enable_auto_save", true)
	v.SetDefault("pipeline.auto_save_interval", 10)
	v.SetDefault("pipeline.default_timeout", "10m")

	v.SetDefault("strategy.provider", "raw")
	v.SetDefault("strategy.model", "gpt-4o-mini")
	v.SetDefault("strategy.temperature", 0.7)
	v.SetDefault("strategy.max_tokens", 4096)

	v.SetDefault("job_store.backend", "memory")
}
