package nodeid

import (
	"context"
	"encoding/binary"

	"github.com/ceyewan/flake/xerrors"
)

// IP 使用第一个非 loopback 的 IPv4 地址低位作为节点 ID
//
// 同一 /22 网段内的主机可以得到互不相同的节点 ID。
type IP struct {
	list  Lister
	space int64
}

// NewIP 创建 IP 来源，space 为节点 ID 空间大小
func NewIP(list Lister, space int64) *IP {
	return &IP{list: list, space: space}
}

// Name 返回来源名称
func (a *IP) Name() string {
	return "ip"
}

// NodeID 返回 IPv4 地址对 space 取模的结果
func (a *IP) NodeID(ctx context.Context) (int64, error) {
	ifaces, err := a.list(ctx)
	if err != nil {
		return 0, err
	}

	for _, iface := range ifaces {
		if iface.Loopback {
			continue
		}
		for _, prefix := range iface.Addrs {
			addr := prefix.Addr().Unmap()
			if !addr.Is4() || addr.IsLoopback() || addr.IsUnspecified() {
				continue
			}
			b := addr.As4()
			return int64(binary.BigEndian.Uint32(b[:]) % uint32(a.space)), nil
		}
	}
	return 0, xerrors.Wrapf(ErrNoHardwareAddr, "no ipv4 address among %d interfaces", len(ifaces))
}
