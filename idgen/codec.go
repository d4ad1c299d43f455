package idgen

import "time"

// Decoded 解析后的 ID 组成部分
type Decoded struct {
	// Timestamp 绝对毫秒时间戳（已加回 epoch）
	Timestamp int64 `json:"timestamp"`
	NodeID    int64 `json:"node_id"`
	Sequence  int64 `json:"sequence"`
}

// Time 返回 Timestamp 对应的 UTC 时间
func (d Decoded) Time() time.Time {
	return time.UnixMilli(d.Timestamp).UTC()
}

// Encode 将相对时间戳、节点 ID 与序列号打包为 64 位 ID
//
// 各字段按位宽截断，调用方负责保证取值范围。
func Encode(elapsed, nodeID, sequence int64) uint64 {
	return uint64(elapsed&MaxTimestamp)<<timestampShift |
		uint64(nodeID&MaxNodeID)<<nodeIDShift |
		uint64(sequence&MaxSequence)
}

// Decode 按给定 epoch 解析 ID
func Decode(id uint64, epoch int64) Decoded {
	return Decoded{
		Timestamp: int64(id>>timestampShift) + epoch,
		NodeID:    int64(id>>nodeIDShift) & MaxNodeID,
		Sequence:  int64(id) & MaxSequence,
	}
}
