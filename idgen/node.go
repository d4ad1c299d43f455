package idgen

import (
	"context"
	"math/rand"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/idgen/internal/nodeid"
	"github.com/ceyewan/flake/xerrors"
)

// 节点 ID 来源名称
const (
	SourceStatic = "static"
	SourceMAC    = "mac"
	SourceIP     = "ip"
	SourceRandom = "random"
)

// NodeSource 节点 ID 来源
type NodeSource interface {
	// Name 返回来源名称，用于日志和 NodeSource()
	Name() string
	// NodeID 返回 [0, MaxNodeID] 内的节点 ID
	NodeID(ctx context.Context) (int64, error)
}

// ========================================
// 内置来源 (Built-in Sources)
// ========================================

type staticSource struct {
	id int64
}

// StaticSource 返回固定节点 ID 的来源，越界时 NodeID 返回 ErrInvalidConfig
func StaticSource(id int64) NodeSource {
	return staticSource{id: id}
}

func (s staticSource) Name() string {
	return SourceStatic
}

func (s staticSource) NodeID(context.Context) (int64, error) {
	if err := validateNodeID(s.id); err != nil {
		return 0, err
	}
	return s.id, nil
}

// MACSource 返回基于主机 MAC 地址的来源
func MACSource() NodeSource {
	return nodeid.NewMAC(nodeid.SystemInterfaces, MaxNodeID+1)
}

// IPSource 返回基于主机 IPv4 地址的来源
func IPSource() NodeSource {
	return nodeid.NewIP(nodeid.SystemInterfaces, MaxNodeID+1)
}

func validateNodeID(id int64) error {
	if id < 0 || id > MaxNodeID {
		return xerrors.WithCode(
			xerrors.Wrapf(ErrInvalidConfig, "node id override out of range: %d (want 0-%d)", id, MaxNodeID),
			CodeNodeIDOutOfRange,
		)
	}
	return nil
}

// ========================================
// 解析 (Resolution)
// ========================================

// resolveNodeID 从来源获取节点 ID
//
// 显式指定的节点 ID 越界会直接返回错误，其余来源失败时退化为随机节点 ID。
func resolveNodeID(ctx context.Context, src NodeSource, logger clog.Logger, inst *instruments) (int64, string, error) {
	id, err := src.NodeID(ctx)
	if err == nil {
		if verr := validateNodeID(id); verr != nil {
			return 0, "", verr
		}
		return id, src.Name(), nil
	}
	if xerrors.Is(err, ErrInvalidConfig) {
		return 0, "", err
	}

	id = rand.Int63n(MaxNodeID + 1)
	logger.Warn("node id derivation failed, using random node id; collisions across nodes become possible",
		clog.String("source", src.Name()),
		clog.Int64("node_id", id),
		clog.Error(err),
	)
	inst.nodeFallback.Inc(ctx, nodeSourceLabel(src.Name()))
	return id, SourceRandom, nil
}
