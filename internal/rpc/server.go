// Package rpc serves the editor commands over JSON-RPC 2.0, one JSON object
// per line.
package rpc

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/forge/internal/logger"
	"github.com/alucardeht/forge/internal/tools"
	"github.com/alucardeht/forge/internal/watcher"
	"github.com/alucardeht/forge/pkg/protocol"
)

var log = logger.ForComponent("rpc")

type Server struct {
	registry *tools.Registry
	handler  *Handler

	mu    sync.Mutex
	conns map[*jsonrpc2.Conn]struct{}
}

func NewServer(registry *tools.Registry) *Server {
	return &Server{
		registry: registry,
		handler:  NewHandler(registry),
		conns:    make(map[*jsonrpc2.Conn]struct{}),
	}
}

func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// ServeStream answers requests on rwc until the peer disconnects or ctx is
// cancelled. Requests are handled concurrently; a slow install does not
// block ping.
func (s *Server) ServeStream(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.PlainObjectCodec{})
	h := jsonrpc2.HandlerWithError(s.handler.Handle)
	h.SuppressErrClosed()
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.AsyncHandler(h))

	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
	}()

	log.Info("client connected")

	select {
	case <-conn.DisconnectNotify():
		log.Info("client disconnected")
		return nil
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}
}

// Notify sends a notification to every connected client.
func (s *Server) Notify(ctx context.Context, method string, params interface{}) {
	s.mu.Lock()
	conns := make([]*jsonrpc2.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		if err := c.Notify(ctx, method, params); err != nil {
			log.Warn("notification failed", "method", method, "error", err)
		}
	}
}

// OnWatchBatch forwards a debounced watcher batch as one project/changed
// notification per project root.
func (s *Server) OnWatchBatch(events []watcher.FileEvent) {
	for _, p := range groupByRoot(events) {
		s.Notify(context.Background(), protocol.MethodProjectChanged, p)
	}
}

func groupByRoot(events []watcher.FileEvent) []protocol.ProjectChangedParams {
	byRoot := make(map[string][]protocol.FileChange)
	for _, e := range events {
		byRoot[e.Root] = append(byRoot[e.Root], protocol.FileChange{Path: e.Path, Type: e.Type.String()})
	}

	roots := make([]string, 0, len(byRoot))
	for r := range byRoot {
		roots = append(roots, r)
	}
	sort.Strings(roots)

	out := make([]protocol.ProjectChangedParams, 0, len(roots))
	for _, r := range roots {
		out = append(out, protocol.ProjectChangedParams{Root: r, Changes: byRoot[r]})
	}
	return out
}
