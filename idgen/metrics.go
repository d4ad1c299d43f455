package idgen

import (
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/xerrors"
)

// Metrics 指标常量定义
const (
	// MetricSnowflakeGenerated 生成 ID 总数 (Counter)
	MetricSnowflakeGenerated = "idgen_snowflake_generated_total"

	// MetricClockBackwards 时钟回拨次数 (Counter)
	MetricClockBackwards = "idgen_snowflake_clock_backwards_total"

	// MetricSequenceOverflow 单毫秒序列号耗尽次数 (Counter)
	MetricSequenceOverflow = "idgen_snowflake_sequence_overflow_total"

	// MetricOverflowWait 序列号耗尽后等待下一毫秒的耗时 (Histogram, 秒)
	MetricOverflowWait = "idgen_snowflake_overflow_wait_seconds"

	// MetricNodeFallback 节点 ID 退化为随机值的次数 (Counter)
	MetricNodeFallback = "idgen_snowflake_node_fallback_total"

	// MetricNodeID 当前实例的节点 ID (Gauge)
	MetricNodeID = "idgen_snowflake_node_id"
)

type instruments struct {
	generated     metrics.Counter
	clockBack     metrics.Counter
	overflow      metrics.Counter
	overflowWait  metrics.Histogram
	nodeFallback  metrics.Counter
	nodeIDCurrent metrics.Gauge
}

func newInstruments(meter metrics.Meter) (*instruments, error) {
	var (
		inst instruments
		errs []error
		err  error
	)

	inst.generated, err = meter.Counter(MetricSnowflakeGenerated, "Total number of snowflake ids generated")
	errs = append(errs, err)
	inst.clockBack, err = meter.Counter(MetricClockBackwards, "Number of clock regressions detected")
	errs = append(errs, err)
	inst.overflow, err = meter.Counter(MetricSequenceOverflow, "Number of per-millisecond sequence exhaustions")
	errs = append(errs, err)
	inst.overflowWait, err = meter.Histogram(MetricOverflowWait, "Time spent waiting for the next millisecond", metrics.WithUnit("s"))
	errs = append(errs, err)
	inst.nodeFallback, err = meter.Counter(MetricNodeFallback, "Number of random node id fallbacks")
	errs = append(errs, err)
	inst.nodeIDCurrent, err = meter.Gauge(MetricNodeID, "Node id of the generator")
	errs = append(errs, err)

	if err := xerrors.Combine(errs...); err != nil {
		return nil, xerrors.Wrap(err, "idgen: create instruments")
	}
	return &inst, nil
}

func nodeSourceLabel(name string) metrics.Label {
	return metrics.L("source", name)
}
