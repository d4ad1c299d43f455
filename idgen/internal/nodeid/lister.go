// Package nodeid 从主机网络接口推导 Snowflake 节点 ID。
//
// 接口枚举通过 Lister 注入，生产环境使用 gopsutil，测试中可替换为固定列表。
package nodeid

import (
	"context"
	"net"
	"net/netip"
	"slices"

	psnet "github.com/shirou/gopsutil/v4/net"

	"github.com/ceyewan/flake/xerrors"
)

var (
	// ErrNoHardwareAddr 没有满足条件的网络地址
	ErrNoHardwareAddr = xerrors.New("nodeid: no qualifying network address")

	// ErrEnumerate 枚举网络接口失败
	ErrEnumerate = xerrors.New("nodeid: enumerate interfaces failed")
)

// Interface 网络接口的最小视图
type Interface struct {
	Name         string
	HardwareAddr net.HardwareAddr
	Addrs        []netip.Prefix
	Loopback     bool
}

// Lister 按系统顺序返回主机网络接口
type Lister func(ctx context.Context) ([]Interface, error)

// SystemInterfaces 通过 gopsutil 枚举本机网络接口
//
// 无法解析的硬件地址或网络地址会被忽略，而不是让整个枚举失败。
func SystemInterfaces(ctx context.Context) ([]Interface, error) {
	stats, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, xerrors.Wrap(ErrEnumerate, err.Error())
	}

	ifaces := make([]Interface, 0, len(stats))
	for _, st := range stats {
		iface := Interface{
			Name:     st.Name,
			Loopback: slices.Contains(st.Flags, "loopback"),
		}
		if st.HardwareAddr != "" {
			if hw, err := net.ParseMAC(st.HardwareAddr); err == nil {
				iface.HardwareAddr = hw
			}
		}
		for _, addr := range st.Addrs {
			if prefix, err := netip.ParsePrefix(addr.Addr); err == nil {
				iface.Addrs = append(iface.Addrs, prefix)
			}
		}
		ifaces = append(ifaces, iface)
	}
	return ifaces, nil
}
