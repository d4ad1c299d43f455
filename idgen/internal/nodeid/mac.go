package nodeid

import (
	"context"
	"net"

	"github.com/ceyewan/flake/xerrors"
)

// MAC 使用第一个非全零的 6 字节硬件地址推导节点 ID
type MAC struct {
	list  Lister
	space int64
}

// NewMAC 创建 MAC 来源，space 为节点 ID 空间大小（Snowflake 为 1024）
func NewMAC(list Lister, space int64) *MAC {
	return &MAC{list: list, space: space}
}

// Name 返回来源名称
func (m *MAC) Name() string {
	return "mac"
}

// NodeID 将硬件地址视为 48 位大端整数并对 space 取模
func (m *MAC) NodeID(ctx context.Context) (int64, error) {
	ifaces, err := m.list(ctx)
	if err != nil {
		return 0, err
	}

	for _, iface := range ifaces {
		if v, ok := HardwareAddrValue(iface.HardwareAddr); ok {
			return int64(v % uint64(m.space)), nil
		}
	}
	return 0, xerrors.Wrapf(ErrNoHardwareAddr, "scanned %d interfaces", len(ifaces))
}

// HardwareAddrValue 返回 6 字节硬件地址对应的 48 位整数，长度不符或全零时 ok 为 false
func HardwareAddrValue(hw net.HardwareAddr) (uint64, bool) {
	if len(hw) != 6 {
		return 0, false
	}

	var v uint64
	for _, b := range hw {
		v = v<<8 | uint64(b)
	}
	return v, v != 0
}
