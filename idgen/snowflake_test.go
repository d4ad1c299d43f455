package idgen

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/testkit"
	"github.com/ceyewan/flake/xerrors"
)

// fakeClock 可手动推进的毫秒时钟
type fakeClock struct {
	ms atomic.Int64
}

func newFakeClock(ms int64) *fakeClock {
	c := &fakeClock{}
	c.ms.Store(ms)
	return c
}

func (c *fakeClock) Now() time.Time {
	return time.UnixMilli(c.ms.Load())
}

func (c *fakeClock) Set(ms int64) {
	c.ms.Store(ms)
}

func (c *fakeClock) Advance(d int64) {
	c.ms.Add(d)
}

// failingSource 总是失败的节点来源
type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) NodeID(context.Context) (int64, error) {
	return 0, ErrNoHardwareAddr
}

// fixedSource 返回固定值且不报错的自定义来源，不做范围校验
type fixedSource struct {
	id int64
}

func (fixedSource) Name() string { return "fixed" }

func (s fixedSource) NodeID(context.Context) (int64, error) {
	return s.id, nil
}

func newTestSnowflake(t *testing.T, opts ...Option) *Snowflake {
	t.Helper()
	kit := testkit.NewKit(t)
	base := []Option{WithLogger(kit.Logger), WithMeter(kit.Meter)}
	gen, err := New(append(base, opts...)...)
	require.NoError(t, err)
	return gen
}

// ========================================
// 构造 (Construction)
// ========================================

func TestNew_NodeIDOverride(t *testing.T) {
	for id := int64(0); id <= MaxNodeID; id++ {
		gen, err := New(WithNodeID(id))
		require.NoError(t, err)
		require.Equal(t, id, gen.NodeID())
		require.Equal(t, SourceStatic, gen.NodeSource())
	}
}

func TestNew_NodeIDOutOfRange(t *testing.T) {
	for _, id := range []int64{-1, MaxNodeID + 1, 1 << 20} {
		gen, err := New(WithNodeID(id))
		assert.Nil(t, gen)
		assert.ErrorIs(t, err, ErrInvalidConfig)
		assert.Equal(t, CodeNodeIDOutOfRange, xerrors.GetCode(err))
	}
}

func TestNew_CustomSourceRange(t *testing.T) {
	tests := []struct {
		name    string
		id      int64
		wantErr bool
	}{
		{name: "zero", id: 0},
		{name: "max", id: MaxNodeID},
		{name: "too large", id: MaxNodeID + 1, wantErr: true},
		{name: "negative", id: -3, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(WithNodeSource(fixedSource{id: tt.id}))
			if tt.wantErr {
				assert.Nil(t, gen)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Equal(t, CodeNodeIDOutOfRange, xerrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, gen.NodeID())
			assert.Equal(t, "fixed", gen.NodeSource())
		})
	}
}

func TestNew_Epoch(t *testing.T) {
	clock := newFakeClock(1739194479256)

	gen, err := New(WithNodeID(1), WithClock(clock.Now))
	require.NoError(t, err)
	assert.Equal(t, DefaultEpoch, gen.Epoch())

	_, err = New(WithNodeID(1), WithClock(clock.Now), WithEpoch(-1))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Equal(t, CodeEpochOutOfRange, xerrors.GetCode(err))

	_, err = New(WithNodeID(1), WithClock(clock.Now), WithEpoch(1739194479256+1))
	assert.Equal(t, CodeEpochOutOfRange, xerrors.GetCode(err))

	gen, err = New(WithNodeID(1), WithClock(clock.Now), WithEpoch(1739194479256))
	require.NoError(t, err)
	id, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(1739194479256), gen.Decode(id).Timestamp)
}

func TestNew_RandomFallback(t *testing.T) {
	var buf bytes.Buffer
	logger, err := clog.New(&clog.Config{Level: "warn", Format: "json", Output: "buffer"}, clog.WithWriter(&buf))
	require.NoError(t, err)

	gen, err := New(WithNodeSource(failingSource{}), WithLogger(logger))
	require.NoError(t, err)

	assert.Equal(t, SourceRandom, gen.NodeSource())
	assert.GreaterOrEqual(t, gen.NodeID(), int64(0))
	assert.LessOrEqual(t, gen.NodeID(), MaxNodeID)
	assert.Contains(t, buf.String(), "collisions across nodes become possible")
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

func TestNew_DefaultSource(t *testing.T) {
	gen := newTestSnowflake(t)

	// 取决于运行环境：有网卡时为 mac，否则退化为 random
	assert.Contains(t, []string{SourceMAC, SourceRandom}, gen.NodeSource())
	assert.GreaterOrEqual(t, gen.NodeID(), int64(0))
	assert.LessOrEqual(t, gen.NodeID(), MaxNodeID)
}

// ========================================
// 生成 (Generation)
// ========================================

func TestNext_Unique(t *testing.T) {
	gen := newTestSnowflake(t, WithNodeID(1))

	seen := make(map[uint64]struct{}, 5000)
	var prev uint64
	for i := 0; i < 5000; i++ {
		id, err := gen.Next()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
		require.Greater(t, id, prev, "ids must strictly increase")
		prev = id
	}
}

func TestNext_DecodeRecoversFields(t *testing.T) {
	gen := newTestSnowflake(t, WithNodeID(360))

	before := time.Now().UnixMilli()
	id, err := gen.Next()
	require.NoError(t, err)
	after := time.Now().UnixMilli()

	d := gen.Decode(id)
	assert.Equal(t, int64(360), d.NodeID)
	assert.GreaterOrEqual(t, d.Timestamp, before)
	assert.LessOrEqual(t, d.Timestamp, after)
}

func TestNext_SequenceWithinMillisecond(t *testing.T) {
	clock := newFakeClock(1739194479256)
	gen := newTestSnowflake(t, WithNodeID(7), WithClock(clock.Now))

	for want := int64(0); want <= MaxSequence; want++ {
		id, err := gen.Next()
		require.NoError(t, err)
		d := gen.Decode(id)
		require.Equal(t, want, d.Sequence)
		require.Equal(t, int64(1739194479256), d.Timestamp)
	}
}

func TestNext_NewMillisecondResetsSequence(t *testing.T) {
	clock := newFakeClock(1739194479256)
	gen := newTestSnowflake(t, WithNodeID(7), WithClock(clock.Now))

	for i := 0; i < 10; i++ {
		_, err := gen.Next()
		require.NoError(t, err)
	}

	clock.Advance(1)
	id, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen.Decode(id).Sequence)
	assert.Equal(t, int64(1739194479257), gen.Decode(id).Timestamp)
}

func TestNext_SequenceOverflowWaits(t *testing.T) {
	clock := newFakeClock(1739194479256)
	gen := newTestSnowflake(t, WithNodeID(7), WithClock(clock.Now))

	for i := int64(0); i <= MaxSequence; i++ {
		_, err := gen.Next()
		require.NoError(t, err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		clock.Advance(1)
	}()

	id, err := gen.Next()
	require.NoError(t, err)
	d := gen.Decode(id)
	assert.Equal(t, int64(0), d.Sequence)
	assert.Equal(t, int64(1739194479257), d.Timestamp)
}

func TestNextContext_CancelDuringWait(t *testing.T) {
	clock := newFakeClock(1739194479256)
	gen := newTestSnowflake(t, WithNodeID(7), WithClock(clock.Now))

	issued := make(map[uint64]struct{})
	for i := int64(0); i <= MaxSequence; i++ {
		id, err := gen.Next()
		require.NoError(t, err)
		issued[id] = struct{}{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := gen.NextContext(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// 时钟仍未推进，再次调用依旧等待，不会重复发出同一毫秒的 ID
	ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel2()
	_, err = gen.NextContext(ctx2)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	clock.Advance(1)
	id, err := gen.Next()
	require.NoError(t, err)
	_, dup := issued[id]
	assert.False(t, dup)
	assert.Equal(t, int64(0), gen.Decode(id).Sequence)
}

func TestNext_ClockBackwards(t *testing.T) {
	clock := newFakeClock(1739194479256)
	gen := newTestSnowflake(t, WithNodeID(7), WithClock(clock.Now))

	first, err := gen.Next()
	require.NoError(t, err)

	clock.Set(1739194479256 - 5)
	_, err = gen.Next()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClockBackwards))
	assert.Equal(t, CodeClockBackwards, xerrors.GetCode(err))
	assert.Contains(t, err.Error(), "last=")

	// 时钟恢复后实例仍然可用，且 ID 继续递增
	clock.Set(1739194479256)
	next, err := gen.Next()
	require.NoError(t, err)
	assert.Greater(t, next, first)
	assert.Equal(t, int64(1), gen.Decode(next).Sequence)
}

func TestNext_TimestampOverflow(t *testing.T) {
	clock := newFakeClock(MaxTimestamp + 1)
	gen := newTestSnowflake(t, WithNodeID(7), WithClock(clock.Now), WithEpoch(0))

	_, err := gen.Next()
	assert.ErrorIs(t, err, ErrTimestampOverflow)

	clock.Set(MaxTimestamp)
	id, err := gen.Next()
	require.NoError(t, err)
	assert.Equal(t, MaxTimestamp, gen.Decode(id).Timestamp)
}

func TestNext_TwoInstancesDistinct(t *testing.T) {
	a := newTestSnowflake(t, WithNodeID(1))
	b := newTestSnowflake(t, WithNodeID(2))

	seen := make(map[uint64]struct{}, 200)
	for i := 0; i < 100; i++ {
		for _, gen := range []*Snowflake{a, b} {
			id, err := gen.Next()
			require.NoError(t, err)
			_, dup := seen[id]
			require.False(t, dup)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, 200)
}

func TestNext_Concurrent(t *testing.T) {
	gen := newTestSnowflake(t, WithNodeID(3))

	const (
		workers = 8
		perWork = 2000
	)
	var (
		mu   sync.Mutex
		seen = make(map[uint64]struct{}, workers*perWork)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]uint64, 0, perWork)
			for i := 0; i < perWork; i++ {
				id, err := gen.Next()
				if err != nil {
					t.Errorf("Next() error = %v", err)
					return
				}
				ids = append(ids, id)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range ids {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers*perWork)
}
