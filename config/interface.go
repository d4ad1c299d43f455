// Package config 为 flake 提供统一的配置加载能力，基于 Viper 实现。
//
// 特性：
//   - 多源配置加载：YAML/JSON 文件、环境变量、.env 文件
//   - 配置优先级：环境变量 > .env > 环境特定配置 > 基础配置 > 默认值
//   - 热更新支持：监听配置文件变化，按 key 通知订阅者
//
// 基本使用：
//
//	loader, _ := config.New(&config.Config{
//		Name:      "flake",
//		Paths:     []string{".", "./config"},
//		EnvPrefix: "FLAKE",
//	})
//	loader.SetDefault("idgen.method", "mac")
//	if err := loader.Load(ctx); err != nil {
//		return err
//	}
//
//	var cfg struct {
//		IDGen idgen.Config `mapstructure:"idgen"`
//	}
//	if err := loader.Unmarshal(&cfg); err != nil {
//		return err
//	}
package config

import (
	"context"
	"time"
)

// Loader 定义配置加载器的核心行为
type Loader interface {
	// Load 加载配置并初始化内部状态
	Load(ctx context.Context) error

	// SetDefault 设置默认值，需在 Load 之前调用；
	// 设置了默认值的 key 才能在 Unmarshal 时被环境变量覆盖
	SetDefault(key string, value any)

	// Get 获取原始配置值
	Get(key string) any

	// Unmarshal 将整个配置反序列化到结构体（mapstructure 标签）
	Unmarshal(v any) error

	// UnmarshalKey 将指定 Key 的配置反序列化到结构体
	UnmarshalKey(key string, v any) error

	// Watch 监听配置变化，通过 context 取消监听
	Watch(ctx context.Context, key string) (<-chan Event, error)

	// Validate 验证当前配置的有效性
	Validate() error
}

// Event 配置变更事件
type Event struct {
	Key       string // 配置 key
	Value     any    // 新值
	OldValue  any    // 旧值
	Source    string // "file"
	Timestamp time.Time
}
