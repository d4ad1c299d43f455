package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceyewan/flake/clog"
	"github.com/ceyewan/flake/idgen"
	"github.com/ceyewan/flake/metrics"
	"github.com/ceyewan/flake/testkit"
	"github.com/ceyewan/flake/xerrors"
)

// runFlake 执行命令并返回标准输出
func runFlake(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	// 独立的环境变量前缀，避免受宿主环境影响
	root.SetArgs(append([]string{"--env-prefix", "T" + strings.ToUpper(testkit.NewID())}, args...))
	root.SetContext(testkit.NewContext(t, 10*time.Second))
	err := root.Execute()
	return out.String(), err
}

func TestDecodeCmd(t *testing.T) {
	out, err := runFlake(t, "decode", "1888944671579078978")
	require.NoError(t, err)
	assert.Contains(t, out, "timestamp=1739194479256")
	assert.Contains(t, out, "node_id=360")
	assert.Contains(t, out, "sequence=322")
	assert.Contains(t, out, "2025-02-10T13:34:39.256Z")
}

func TestDecodeCmd_JSON(t *testing.T) {
	out, err := runFlake(t, "decode", "--json", "1888944671579078978", "0")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "1888944671579078978", got["id"])
	assert.Equal(t, float64(1739194479256), got["timestamp"])
	assert.Equal(t, float64(360), got["node_id"])
	assert.Equal(t, float64(322), got["sequence"])
}

func TestDecodeCmd_InvalidID(t *testing.T) {
	_, err := runFlake(t, "decode", "not-a-number")
	assert.Error(t, err)

	_, err = runFlake(t, "decode")
	assert.Error(t, err)
}

func TestNextCmd(t *testing.T) {
	out, err := runFlake(t, "--node-id", "42", "next", "-n", "50")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 50)

	var prev uint64
	for _, line := range lines {
		id, err := strconv.ParseUint(line, 10, 64)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		assert.Equal(t, int64(42), idgen.Decode(id, idgen.DefaultEpoch).NodeID)
		prev = id
	}
}

func TestNextCmd_InvalidArgs(t *testing.T) {
	_, err := runFlake(t, "--node-id", "1", "next", "-n", "0")
	assert.Error(t, err)

	for _, id := range []string{"1024", "-5", "-1"} {
		_, err = runFlake(t, "--node-id", id, "next")
		assert.ErrorIs(t, err, idgen.ErrInvalidConfig, "node id %s", id)
		assert.Equal(t, idgen.CodeNodeIDOutOfRange, xerrors.GetCode(err), "node id %s", id)
	}

	_, err = runFlake(t, "--node-id", "-5", "node")
	assert.ErrorIs(t, err, idgen.ErrInvalidConfig)

	_, err = runFlake(t, "--method", "redis", "next")
	assert.Equal(t, idgen.CodeUnsupportedMethod, xerrors.GetCode(err))
}

func TestNodeCmd_NodeIDZero(t *testing.T) {
	out, err := runFlake(t, "--node-id", "0", "node")
	require.NoError(t, err)
	assert.Contains(t, out, "node_id=0")
	assert.Contains(t, out, "source=static")
}

// failingMeter Shutdown 总是失败的 Meter
type failingMeter struct {
	metrics.Meter
}

func (failingMeter) Shutdown(context.Context) error {
	return errors.New("shutdown failed")
}

func TestAppRun_CloseError(t *testing.T) {
	ctx := testkit.NewContext(t, 10*time.Second)
	a := &app{logger: clog.Discard(), meter: failingMeter{Meter: metrics.Discard()}}

	err := a.run(ctx, func(*app) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shutdown failed")

	runErr := errors.New("run failed")
	err = a.run(ctx, func(*app) error { return runErr })
	assert.ErrorIs(t, err, runErr)
	assert.Contains(t, err.Error(), "and 1 more errors")

	a.meter = metrics.Discard()
	assert.NoError(t, a.run(ctx, func(*app) error { return nil }))
}

func TestNodeCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flake.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: error
idgen:
  epoch: 1700000000000
  node_id: 513
`), 0o644))

	out, err := runFlake(t, "--config", path, "node")
	require.NoError(t, err)
	assert.Contains(t, out, "node_id=513")
	assert.Contains(t, out, "source=static")
	assert.Contains(t, out, "epoch=1700000000000")

	out, err = runFlake(t, "--config", path, "decode", strconv.FormatUint(idgen.Encode(1, 2, 3), 10))
	require.NoError(t, err)
	assert.Contains(t, out, "timestamp=1700000000001")
}

func TestNodeCmd_MissingConfigFile(t *testing.T) {
	_, err := runFlake(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "node")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailure, exitCode(errors.New("boom")))

	_, err := runFlake(t, "--node-id", "-5", "next")
	assert.Equal(t, exitInvalidConfig, exitCode(err))

	clockErr := xerrors.Wrap(xerrors.WithCode(idgen.ErrClockBackwards, idgen.CodeClockBackwards), "generate")
	assert.Equal(t, exitClockBackwards, exitCode(clockErr))

	// 关闭失败与时钟回拨合并后仍按时钟回拨处理
	merged := xerrors.Combine(errors.New("shutdown failed"), clockErr)
	assert.Equal(t, exitClockBackwards, exitCode(merged))
}
