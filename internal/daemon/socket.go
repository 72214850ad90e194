package daemon

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
)

type SocketListener struct {
	path     string
	listener net.Listener
}

func NewSocketListener(socketPath string) *SocketListener {
	return &SocketListener{
		path: socketPath,
	}
}

// Start replaces any stale socket file and listens with owner-only
// permissions.
func (sl *SocketListener) Start() error {
	dir := filepath.Dir(sl.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	if err := os.Remove(sl.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	listener, err := net.Listen("unix", sl.path)
	if err != nil {
		return err
	}

	sl.listener = listener
	return os.Chmod(sl.path, 0700)
}

func (sl *SocketListener) Accept() (net.Conn, error) {
	if sl.listener == nil {
		return nil, errors.New("listener not started")
	}
	return sl.listener.Accept()
}

func (sl *SocketListener) Close() error {
	if sl.listener == nil {
		return nil
	}
	err := sl.listener.Close()
	os.Remove(sl.path)
	return err
}

// ServeSocket accepts clients on a unix socket until ctx ends. Every client
// shares the registry and receives project/changed notifications.
func (d *Daemon) ServeSocket(ctx context.Context, socketPath string) error {
	sl := NewSocketListener(socketPath)
	if err := sl.Start(); err != nil {
		return err
	}

	go func() {
		<-ctx.Done()
		sl.Close()
	}()

	log.Info("listening", "socket", socketPath)

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := sl.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Warn("accept failed", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.Serve(ctx, conn); err != nil {
				log.Warn("connection ended with error", "error", err)
			}
		}()
	}
}
