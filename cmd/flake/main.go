// Command flake 生成并解析 Snowflake ID。
//
//	flake next -n 10
//	flake decode 1888944671579078978
//	flake node
//
// 配置通过 --config 指定的 YAML 文件或 FLAKE_* 环境变量加载，例如
// FLAKE_IDGEN_NODE_ID=42 flake next。
//
// 配置无效时退出码为 2，时钟回拨时为 3，其他错误为 1。
package main

import (
	"os"

	"github.com/ceyewan/flake/idgen"
	"github.com/ceyewan/flake/xerrors"
)

// 退出码
const (
	exitOK             = 0
	exitFailure        = 1
	exitInvalidConfig  = 2
	exitClockBackwards = 3
)

func main() {
	os.Exit(exitCode(newRootCmd().Execute()))
}

// exitCode 按错误类别映射退出码，便于脚本区分配置错误与时钟回拨
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case xerrors.Is(err, idgen.ErrInvalidConfig):
		return exitInvalidConfig
	case xerrors.HasCode(err, idgen.CodeClockBackwards):
		return exitClockBackwards
	default:
		return exitFailure
	}
}
