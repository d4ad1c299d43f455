package idgen

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/xerrors"
)

// Snowflake 雪花算法生成器
//
// 并发安全，内部通过互斥锁串行化 Next。多个实例之间互不影响。
type Snowflake struct {
	mu            sync.Mutex
	epoch         int64
	nodeID        int64
	source        string
	sequence      int64
	lastTimestamp int64

	now    func() time.Time
	logger clog.Logger
	inst   *instruments
}

// New 创建 Snowflake 生成器
//
// 未指定节点来源时使用 MACSource；MAC 推导失败会退化为随机节点 ID 并输出 Warn 日志。
// 显式指定的节点 ID 越界或 epoch 越界时返回 ErrInvalidConfig。
//
// 使用示例:
//
//	gen, err := idgen.New(idgen.WithNodeID(7), idgen.WithLogger(logger))
func New(opts ...Option) (*Snowflake, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.source == nil {
		o.source = MACSource()
	}

	logger := o.logger.With(clog.String("component", "idgen"))

	nowMs := o.now().UnixMilli()
	if o.epoch < 0 || o.epoch > nowMs {
		return nil, xerrors.WithCode(
			xerrors.Wrapf(ErrInvalidConfig, "epoch %d outside [0, %d]", o.epoch, nowMs),
			CodeEpochOutOfRange,
		)
	}

	inst, err := newInstruments(o.meter)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	nodeID, source, err := resolveNodeID(ctx, o.source, logger, inst)
	if err != nil {
		return nil, err
	}
	inst.nodeIDCurrent.Set(ctx, float64(nodeID), nodeSourceLabel(source))

	s := &Snowflake{
		epoch:         o.epoch,
		nodeID:        nodeID,
		source:        source,
		lastTimestamp: -1,
		now:           o.now,
		logger:        logger.With(clog.Int64("node_id", nodeID)),
		inst:          inst,
	}

	logger.Info("snowflake generator created",
		clog.Int64("node_id", nodeID),
		clog.String("source", source),
		clog.Int64("epoch", o.epoch),
	)
	return s, nil
}

// NodeID 返回节点 ID
func (s *Snowflake) NodeID() int64 {
	return s.nodeID
}

// Epoch 返回纪元（Unix 毫秒）
func (s *Snowflake) Epoch() int64 {
	return s.epoch
}

// NodeSource 返回节点 ID 的实际来源: static / mac / ip / random
func (s *Snowflake) NodeSource() string {
	return s.source
}

// Decode 按实例的 epoch 解析 ID，不修改生成器状态
func (s *Snowflake) Decode(id uint64) Decoded {
	return Decode(id, s.epoch)
}

// Next 生成下一个 ID
func (s *Snowflake) Next() (uint64, error) {
	return s.NextContext(context.Background())
}

// NextContext 生成下一个 ID，序列号耗尽等待下一毫秒期间可被 ctx 取消
//
// 取消时不返回 ID，且保证同一毫秒内已发出的 ID 不会被再次发出。
func (s *Snowflake) NextContext(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := s.elapsed()
	if elapsed < s.lastTimestamp || elapsed < 0 {
		return 0, s.clockBackwards(ctx, elapsed)
	}
	if elapsed > MaxTimestamp {
		return 0, timestampOverflow(elapsed)
	}

	if elapsed == s.lastTimestamp {
		s.sequence = (s.sequence + 1) & MaxSequence
		if s.sequence == 0 {
			var err error
			if elapsed, err = s.waitNextMilli(ctx); err != nil {
				s.sequence = MaxSequence
				return 0, err
			}
			if elapsed > MaxTimestamp {
				s.sequence = MaxSequence
				return 0, timestampOverflow(elapsed)
			}
		}
	} else {
		s.sequence = 0
	}

	s.lastTimestamp = elapsed
	s.inst.generated.Inc(ctx)
	return Encode(elapsed, s.nodeID, s.sequence), nil
}

func (s *Snowflake) elapsed() int64 {
	return s.now().UnixMilli() - s.epoch
}

// waitNextMilli 自旋直到时间越过 lastTimestamp
func (s *Snowflake) waitNextMilli(ctx context.Context) (int64, error) {
	s.inst.overflow.Inc(ctx)
	start := time.Now()
	defer func() {
		s.inst.overflowWait.Record(ctx, time.Since(start).Seconds())
	}()

	for {
		elapsed := s.elapsed()
		if elapsed > s.lastTimestamp {
			return elapsed, nil
		}
		select {
		case <-ctx.Done():
			return 0, xerrors.Wrap(ctx.Err(), "idgen: wait for next millisecond")
		default:
		}
		runtime.Gosched()
	}
}

func (s *Snowflake) clockBackwards(ctx context.Context, elapsed int64) error {
	s.inst.clockBack.Inc(ctx)
	s.logger.ErrorContext(ctx, "clock moved backwards, refusing to generate id",
		clog.Int64("last_timestamp", s.lastTimestamp),
		clog.Int64("current_timestamp", elapsed),
		clog.Int64("drift_ms", s.lastTimestamp-elapsed),
	)
	return xerrors.WithCode(
		xerrors.Wrapf(ErrClockBackwards, "last=%d now=%d", s.lastTimestamp, elapsed),
		CodeClockBackwards,
	)
}

func timestampOverflow(elapsed int64) error {
	return xerrors.Wrapf(ErrTimestampOverflow, "elapsed=%d max=%d", elapsed, MaxTimestamp)
}
