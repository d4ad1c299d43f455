package idgen

import (
	"github.com/ceyewan/flake/idgen/internal/nodeid"
	"github.com/ceyewan/flake/xerrors"
)

var (
	// ErrInvalidConfig 配置无效（节点 ID 越界、epoch 越界、不支持的 method）
	ErrInvalidConfig = xerrors.New("idgen: invalid config")

	// ErrClockBackwards 时钟回拨，当前时间早于上一次生成 ID 的时间
	ErrClockBackwards = xerrors.New("idgen: clock moved backwards")

	// ErrTimestampOverflow 相对时间戳超出 41 bit
	ErrTimestampOverflow = xerrors.New("idgen: timestamp exceeds 41 bits")

	// ErrNoHardwareAddr 没有可用于推导节点 ID 的网络地址
	ErrNoHardwareAddr = nodeid.ErrNoHardwareAddr
)

// 错误码
const (
	CodeNodeIDOutOfRange  = "node_id_out_of_range"
	CodeEpochOutOfRange   = "epoch_out_of_range"
	CodeUnsupportedMethod = "unsupported_method"
	CodeConfigNil         = "config_nil"
	CodeClockBackwards    = "clock_backwards"
)
