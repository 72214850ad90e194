package exec

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
}

func sh(script string) Command {
	return Command{Name: "sh", Args: []string{"-c", script}}
}

func TestOSRunnerCapturesOutput(t *testing.T) {
	skipOnWindows(t)

	res, err := NewOSRunner().Run(context.Background(), sh("echo out; echo err >&2"))
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestOSRunnerNonZeroExit(t *testing.T) {
	skipOnWindows(t)

	res, err := NewOSRunner().Run(context.Background(), sh("exit 3"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestOSRunnerMissingBinary(t *testing.T) {
	_, err := NewOSRunner().Run(context.Background(), Command{Name: "forge-definitely-not-installed"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInterrupted)
}

func TestOSRunnerDirAndEnv(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	c := sh("pwd; echo $FORGE_TEST_VALUE")
	c.Dir = dir
	c.Env = map[string]string{"FORGE_TEST_VALUE": "hello"}

	res, err := NewOSRunner().Run(context.Background(), c)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	require.Len(t, lines, 2)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(lines[0])
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "hello", lines[1])
	assert.Empty(t, os.Getenv("FORGE_TEST_VALUE"))
}

func TestOSRunnerInterrupted(t *testing.T) {
	skipOnWindows(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewOSRunner().Run(ctx, sh("sleep 5"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestEnvListSorted(t *testing.T) {
	assert.Equal(t, []string{"A=1", "B=2"}, envList(map[string]string{"B": "2", "A": "1"}))
}
