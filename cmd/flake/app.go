package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/config"
	"github.com/ceyewan/flake/idgen"
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/xerrors"
)

// appConfig 命令行工具的完整配置
type appConfig struct {
	Log     clog.Config    `mapstructure:"log"`
	Metrics metrics.Config `mapstructure:"metrics"`
	IDGen   idgen.Config   `mapstructure:"idgen"`
}

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	configFile string
	envPrefix  string
	nodeID     int64
	nodeIDSet  bool
	method     string
}

// app 一次命令执行所需的依赖
type app struct {
	cfg    appConfig
	logger clog.Logger
	meter  metrics.Meter
	gen    *idgen.Snowflake
}

// loadConfig 按 默认值 < 配置文件 < 环境变量 < 命令行参数 的顺序合并配置
func loadConfig(ctx context.Context, flags *globalFlags) (*appConfig, error) {
	loaderCfg := &config.Config{EnvPrefix: flags.envPrefix}
	if flags.configFile != "" {
		if _, err := os.Stat(flags.configFile); err != nil {
			return nil, xerrors.Wrap(err, "config file")
		}
		ext := filepath.Ext(flags.configFile)
		loaderCfg.Paths = []string{filepath.Dir(flags.configFile)}
		loaderCfg.Name = strings.TrimSuffix(filepath.Base(flags.configFile), ext)
		loaderCfg.FileType = strings.TrimPrefix(ext, ".")
	}

	loader, err := config.New(loaderCfg)
	if err != nil {
		return nil, err
	}

	// 只有设置了默认值的 key 才会被环境变量覆盖
	loader.SetDefault("log.level", "warn")
	loader.SetDefault("log.format", "console")
	loader.SetDefault("log.output", "stderr")
	loader.SetDefault("metrics.enabled", false)
	loader.SetDefault("metrics.service_name", "flake")
	loader.SetDefault("metrics.version", "dev")
	loader.SetDefault("metrics.port", 0)
	loader.SetDefault("metrics.path", "/metrics")
	loader.SetDefault("idgen.epoch", idgen.DefaultEpoch)
	loader.SetDefault("idgen.method", idgen.SourceMAC)
	loader.SetDefault("idgen.node_id", nil)

	if err := loader.Load(ctx); err != nil {
		return nil, xerrors.Wrap(err, "load config")
	}

	var cfg appConfig
	if err := loader.Unmarshal(&cfg); err != nil {
		return nil, xerrors.Wrap(err, "unmarshal config")
	}

	if flags.method != "" {
		cfg.IDGen.Method = flags.method
		if flags.method != idgen.SourceStatic {
			cfg.IDGen.NodeID = nil
		}
	}
	if flags.nodeIDSet {
		id := flags.nodeID
		cfg.IDGen.NodeID = &id
	}
	return &cfg, nil
}

// newApp 加载配置并创建 Logger、Meter 与生成器
func newApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := loadConfig(ctx, flags)
	if err != nil {
		return nil, err
	}

	logger, err := clog.New(&cfg.Log)
	if err != nil {
		return nil, xerrors.Wrap(err, "create logger")
	}

	meter, err := metrics.New(&cfg.Metrics, metrics.WithLogger(logger))
	if err != nil {
		return nil, xerrors.Wrap(err, "create meter")
	}

	gen, err := idgen.NewFromConfig(&cfg.IDGen, idgen.WithLogger(logger), idgen.WithMeter(meter))
	if err != nil {
		_ = meter.Shutdown(ctx)
		return nil, err
	}

	return &app{cfg: *cfg, logger: logger, meter: meter, gen: gen}, nil
}

// run 执行 fn 并在结束时关闭 app，关闭失败的错误与 fn 的错误合并返回
func (a *app) run(ctx context.Context, fn func(a *app) error) (err error) {
	defer func() {
		if cerr := a.Close(ctx); cerr != nil {
			a.logger.Warn("close app failed", clog.Error(cerr))
			err = xerrors.Combine(err, cerr)
		}
	}()
	return fn(a)
}

// Close 关闭 Meter 并刷新日志
func (a *app) Close(ctx context.Context) error {
	err := a.meter.Shutdown(ctx)
	a.logger.Flush()
	return err
}
