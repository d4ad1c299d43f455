package idgen

import (
	"time"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/metrics"
)

// Option 生成器初始化选项
type Option func(*options)

type options struct {
	epoch  int64
	source NodeSource
	logger clog.Logger
	meter  metrics.Meter
	now    func() time.Time
}

func defaultOptions() *options {
	return &options{
		epoch:  DefaultEpoch,
		logger: clog.Discard(),
		meter:  metrics.Discard(),
		now:    time.Now,
	}
}

// WithEpoch 设置自定义纪元（Unix 毫秒）
func WithEpoch(epoch int64) Option {
	return func(o *options) {
		o.epoch = epoch
	}
}

// WithNodeID 显式指定节点 ID，取值范围 [0, 1023]
func WithNodeID(id int64) Option {
	return WithNodeSource(StaticSource(id))
}

// WithNodeSource 设置节点 ID 来源，默认 MACSource
func WithNodeSource(src NodeSource) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithLogger 设置 Logger
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMeter 设置 Meter
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		if meter != nil {
			o.meter = meter
		}
	}
}

// WithClock 替换时钟，主要用于测试
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
