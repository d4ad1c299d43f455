// Package idgen 提供无需协调的 Snowflake 64 位 ID 生成能力。
//
// ID 布局（高位到低位）：
//
//	| 1 bit 保留 | 41 bit 毫秒时间戳（相对 epoch） | 10 bit 节点 ID | 12 bit 序列号 |
//
// 节点 ID 在创建时确定一次，默认由主机第一个有效 MAC 地址推导，也可以通过
// WithNodeID 显式指定。同一实例内生成的 ID 严格递增，不同节点依赖节点 ID 区分。
//
// 基本使用：
//
//	gen, err := idgen.New(idgen.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	id, err := gen.Next()
//	parts := gen.Decode(id)
//
// 时钟回拨时 Next 直接返回 ErrClockBackwards，不会等待，实例仍可继续使用。
package idgen

const (
	// DefaultEpoch 默认纪元 (2010-11-04T01:42:54.657Z)，单位毫秒
	DefaultEpoch int64 = 1288834974657

	timestampBits = 41
	nodeIDBits    = 10
	sequenceBits  = 12

	// MaxNodeID 节点 ID 最大值 (1023)
	MaxNodeID int64 = -1 ^ (-1 << nodeIDBits)
	// MaxSequence 单毫秒内序列号最大值 (4095)
	MaxSequence int64 = -1 ^ (-1 << sequenceBits)
	// MaxTimestamp 可编码的最大相对时间戳 (2^41-1 毫秒)
	MaxTimestamp int64 = -1 ^ (-1 << timestampBits)

	nodeIDShift    = sequenceBits
	timestampShift = sequenceBits + nodeIDBits
)
