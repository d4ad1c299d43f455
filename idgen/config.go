package idgen

import (
	"strings"

	"github.com/ceyewan/flake/xerrors"
)

// Config 生成器配置，可直接由 config 包的 Unmarshal 填充
type Config struct {
	// Epoch 纪元（Unix 毫秒），0 表示使用 DefaultEpoch
	Epoch int64 `yaml:"epoch" json:"epoch" mapstructure:"epoch"`

	// Method 节点 ID 来源: "mac" | "ip" | "static"，默认 "mac"
	Method string `yaml:"method" json:"method" mapstructure:"method"`

	// NodeID 显式节点 ID，非空时优先于 Method
	NodeID *int64 `yaml:"node_id" json:"node_id" mapstructure:"node_id"`
}

// NewDefaultConfig 返回默认配置
func NewDefaultConfig() *Config {
	return &Config{
		Epoch:  DefaultEpoch,
		Method: SourceMAC,
	}
}

func (c *Config) setDefaults() {
	if c.Epoch == 0 {
		c.Epoch = DefaultEpoch
	}
	c.Method = strings.ToLower(strings.TrimSpace(c.Method))
	if c.NodeID != nil {
		c.Method = SourceStatic
	}
	if c.Method == "" {
		c.Method = SourceMAC
	}
}

func (c *Config) validate() error {
	switch c.Method {
	case SourceMAC, SourceIP:
		return nil
	case SourceStatic:
		if c.NodeID == nil {
			return xerrors.WithCode(
				xerrors.Wrap(ErrInvalidConfig, "method static requires node_id"),
				CodeNodeIDOutOfRange,
			)
		}
		return validateNodeID(*c.NodeID)
	default:
		return xerrors.WithCode(
			xerrors.Wrapf(ErrInvalidConfig, "unsupported method %q", c.Method),
			CodeUnsupportedMethod,
		)
	}
}

// source 返回配置对应的节点来源
func (c *Config) source() NodeSource {
	switch c.Method {
	case SourceStatic:
		return StaticSource(*c.NodeID)
	case SourceIP:
		return IPSource()
	default:
		return MACSource()
	}
}

// NewFromConfig 根据配置创建生成器，opts 中的选项优先于配置
func NewFromConfig(cfg *Config, opts ...Option) (*Snowflake, error) {
	if cfg == nil {
		return nil, xerrors.WithCode(xerrors.Wrap(ErrInvalidConfig, "config is nil"), CodeConfigNil)
	}

	c := *cfg
	c.setDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}

	base := []Option{WithEpoch(c.Epoch), WithNodeSource(c.source())}
	return New(append(base, opts...)...)
}
