package daemon

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/forge/internal/config"
	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/pkg/protocol"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default(t.TempDir())
	cfg.Install.Skip = true
	cfg.Watcher.DebounceWindow = 20 * time.Millisecond
	return cfg
}

func newDaemon(t *testing.T, cfg *config.Config) *Daemon {
	t.Helper()
	d, err := NewDaemon(cfg)
	require.NoError(t, err)
	t.Cleanup(d.Shutdown)
	return d
}

func dial(t *testing.T, ctx context.Context, rwc net.Conn, notes chan<- *jsonrpc2.Request) *jsonrpc2.Conn {
	t.Helper()
	h := jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (interface{}, error) {
		if req.Notif && notes != nil {
			notes <- req
		}
		return nil, nil
	})
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(rwc, jsonrpc2.PlainObjectCodec{}), h)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRegistersAllTools(t *testing.T) {
	d := newDaemon(t, testConfig(t))
	assert.Equal(t, 19, d.ToolCount())
	_, ok := d.Registry().Get("story_routes")
	assert.True(t, ok)
}

func TestBacklogDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Backlog.Enabled = false
	d := newDaemon(t, cfg)

	_, ok := d.Registry().Get("story_create")
	assert.False(t, ok)
	assert.Equal(t, 10, d.ToolCount())
}

func TestInstallerFromConfig(t *testing.T) {
	cfg := testConfig(t)
	assert.IsType(t, project.SkipInstaller{}, Installer(cfg))

	cfg.Install.Skip = false
	cfg.Install.Command = "pnpm"
	cfg.Install.Args = []string{"install", "--silent"}
	cfg.Install.Env = map[string]string{"npm_config_loglevel": "error"}
	inst, ok := Installer(cfg).(*project.CommandInstaller)
	require.True(t, ok)
	assert.Equal(t, "pnpm", inst.Command)
	assert.Equal(t, []string{"install", "--silent"}, inst.Args)
	assert.Equal(t, cfg.Install.Env, inst.Env)
}

func TestServeWatchNotifies(t *testing.T) {
	d := newDaemon(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverSide, clientSide := net.Pipe()
	go d.Serve(ctx, serverSide)

	notes := make(chan *jsonrpc2.Request, 16)
	client := dial(t, ctx, clientSide, notes)

	root := filepath.Join(t.TempDir(), "svc")
	var init map[string]interface{}
	require.NoError(t, client.Call(ctx, "initialize_project", map[string]string{"path": root}, &init))

	var watching map[string][]string
	require.NoError(t, client.Call(ctx, "watch_project", map[string]string{"path": root}, &watching))
	require.Len(t, watching["watching"], 1)

	require.NoError(t, os.WriteFile(filepath.Join(root, "routes.js"), []byte("// routes\n"), 0o644))

	select {
	case req := <-notes:
		assert.Equal(t, protocol.MethodProjectChanged, req.Method)
	case <-time.After(5 * time.Second):
		t.Fatal("no project/changed notification")
	}
}

func TestServeSocket(t *testing.T) {
	d := newDaemon(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())

	sock := filepath.Join(t.TempDir(), "forge.sock")
	done := make(chan error, 1)
	go func() { done <- d.ServeSocket(ctx, sock) }()

	var conn net.Conn
	require.Eventually(t, func() bool {
		c, err := net.Dial("unix", sock)
		if err != nil {
			return false
		}
		conn = c
		return true
	}, 2*time.Second, 20*time.Millisecond)

	client := dial(t, ctx, conn, nil)

	var health map[string]interface{}
	require.NoError(t, client.Call(ctx, "health", nil, &health))
	assert.Equal(t, "healthy", health["status"])

	client.Close()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ServeSocket did not return")
	}
}

func TestWatcherDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Watcher.Enabled = false
	d := newDaemon(t, cfg)

	_, ok := d.Registry().Get("watch_project")
	assert.False(t, ok)
	assert.Equal(t, 17, d.ToolCount())
}
