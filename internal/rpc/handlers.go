package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/forge/internal/tools"
	"github.com/alucardeht/forge/pkg/protocol"
)

// DefaultCallTimeout bounds a single command. Tools implementing
// tools.TimedTool set their own; initialize_project has none.
const DefaultCallTimeout = 4 * time.Minute

type Handler struct {
	registry    *tools.Registry
	callTimeout time.Duration

	mu          sync.Mutex
	initialized bool
	clientInfo  protocol.ClientInfo
}

func NewHandler(registry *tools.Registry) *Handler {
	return &Handler{registry: registry, callTimeout: DefaultCallTimeout}
}

// Handle dispatches one request. Anything that is not a protocol method is
// looked up as a tool name and answered with the tool's bare result.
func (h *Handler) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panic recovered",
				"method", req.Method,
				"panic", r,
				"stack", string(debug.Stack()))
			result = nil
			err = newError(jsonrpc2.CodeInternalError, fmt.Sprintf("internal error: %v", r), "internal")
		}
	}()

	log.Debug("request", "method", req.Method, "notification", req.Notif)

	switch req.Method {
	case protocol.MethodInitialize:
		return h.handleInitialize(req)
	case protocol.MethodInitialized:
		h.mu.Lock()
		h.initialized = true
		h.mu.Unlock()
		return nil, nil
	case protocol.MethodPing:
		return map[string]interface{}{}, nil
	case protocol.MethodToolsList:
		return h.handleListTools(), nil
	case protocol.MethodToolsCall:
		return h.handleCallTool(ctx, req)
	}

	if _, ok := h.registry.Get(req.Method); ok {
		out, err := h.registry.ExecuteWithTimeout(ctx, req.Method, params(req), h.callTimeout)
		if err != nil {
			return nil, toRPCError(err)
		}
		return out, nil
	}

	return nil, newError(jsonrpc2.CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method), "not_found")
}

// Initialized reports whether the client sent notifications/initialized.
func (h *Handler) Initialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initialized
}

func (h *Handler) ClientInfo() protocol.ClientInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clientInfo
}

func params(req *jsonrpc2.Request) json.RawMessage {
	if req.Params == nil {
		return nil
	}
	return *req.Params
}

func (h *Handler) handleInitialize(req *jsonrpc2.Request) (interface{}, error) {
	var init protocol.InitializeParams
	if raw := params(req); len(raw) > 0 {
		if err := json.Unmarshal(raw, &init); err != nil {
			return nil, newError(jsonrpc2.CodeInvalidParams, fmt.Sprintf("failed to parse initialize request: %v", err), "invalid_params")
		}
	}

	h.mu.Lock()
	h.clientInfo = init.ClientInfo
	h.mu.Unlock()

	log.Info("client initialized", "client", init.ClientInfo.Name, "version", init.ClientInfo.Version)

	return protocol.InitializeResult{
		ProtocolVersion: protocol.NegotiateVersion(init.ProtocolVersion),
		Capabilities: map[string]interface{}{
			"tools": map[string]interface{}{},
		},
		ServerInfo: protocol.ServerInfo{
			Name:    protocol.ServerName,
			Version: protocol.Version,
		},
	}, nil
}

func (h *Handler) handleListTools() protocol.ListToolsResult {
	list := h.registry.List()
	out := make([]protocol.Tool, 0, len(list))

	for _, t := range list {
		info := protocol.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Schema(),
		}
		if annotated, ok := t.(tools.AnnotatedTool); ok {
			info.Title = annotated.Title()
			info.Annotations = annotated.Annotations()
		}
		out = append(out, info)
	}

	return protocol.ListToolsResult{Tools: out}
}

func (h *Handler) handleCallTool(ctx context.Context, req *jsonrpc2.Request) (interface{}, error) {
	var call protocol.CallToolParams
	if err := json.Unmarshal(params(req), &call); err != nil {
		return nil, newError(jsonrpc2.CodeInvalidParams, fmt.Sprintf("failed to parse tool call request: %v", err), "invalid_params")
	}
	if call.Name == "" {
		return nil, newError(jsonrpc2.CodeInvalidParams, "tool name is required", "invalid_params")
	}

	result, err := h.registry.ExecuteWithTimeout(ctx, call.Name, call.Arguments, h.callTimeout)
	if err != nil {
		return nil, toRPCError(err)
	}

	text, err := json.Marshal(result)
	if err != nil {
		return nil, newError(jsonrpc2.CodeInternalError, fmt.Sprintf("failed to marshal result: %v", err), "internal")
	}

	return protocol.CallToolResult{
		Content: []protocol.Content{{Type: "text", Text: string(text)}},
	}, nil
}

func newError(code int64, msg, kind string) *jsonrpc2.Error {
	e := &jsonrpc2.Error{Code: code, Message: msg}
	e.SetError(protocol.ErrorData{Kind: kind})
	return e
}

func toRPCError(err error) *jsonrpc2.Error {
	var te *tools.ToolError
	if errors.As(err, &te) {
		return newError(int64(te.Code), te.Message, te.Kind)
	}
	return newError(jsonrpc2.CodeInternalError, err.Error(), "internal")
}
