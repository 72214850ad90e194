// Package tools holds the command registry the server dispatches into. Each
// editor command is a Tool with a JSON schema and a JSON result.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/alucardeht/forge/internal/logger"
)

var log = logger.ForComponent("tools")

type Tool interface {
	Name() string
	Description() string
	Schema() json.RawMessage
	Execute(ctx context.Context, input json.RawMessage) (interface{}, error)
}

type AnnotatedTool interface {
	Tool
	Title() string
	Annotations() map[string]bool
}

// TimedTool sets its own deadline, replacing the caller's. A Timeout <= 0
// runs the tool with no deadline at all.
type TimedTool interface {
	Tool
	Timeout() time.Duration
}

type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	return nil
}

// RegisterAll registers every tool, stopping at the first duplicate.
func (r *Registry) RegisterAll(tools ...Tool) error {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Execute runs the named tool. Every failure comes back as a *ToolError;
// a panicking tool is reported as an internal error.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (result interface{}, err error) {
	tool, ok := r.Get(name)
	if !ok {
		return nil, NewToolNotFoundError(name)
	}

	defer func() {
		if p := recover(); p != nil {
			log.Error("tool panic recovered",
				"tool", name,
				"panic", p,
				"stack", string(debug.Stack()))
			result = nil
			err = NewToolPanicError(name, p)
		}
	}()

	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	result, err = tool.Execute(ctx, input)
	if err != nil {
		log.Debug("tool failed", "tool", name, "error", err)
		return nil, NewToolExecutionError(name, err)
	}
	return result, nil
}

// ExecuteWithTimeout is Execute under a deadline. A timeout <= 0 means
// none. Tools implementing TimedTool use their own timeout instead.
func (r *Registry) ExecuteWithTimeout(ctx context.Context, name string, input json.RawMessage, timeout time.Duration) (interface{}, error) {
	if tool, ok := r.Get(name); ok {
		if timed, ok := tool.(TimedTool); ok {
			timeout = timed.Timeout()
		}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return r.Execute(ctx, name, input)
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Decode unmarshals a tool's input into v, reporting failures as invalid
// params.
func Decode(input json.RawMessage, v interface{}) error {
	if err := json.Unmarshal(input, v); err != nil {
		return &InvalidParamsError{Err: err}
	}
	return nil
}
