package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alucardeht/forge/internal/backlog"
	"github.com/alucardeht/forge/internal/project"
)

type fakeTool struct {
	name string
	run  func(input json.RawMessage) (interface{}, error)
}

func (f *fakeTool) Name() string            { return f.name }
func (f *fakeTool) Description() string     { return "fake" }
func (f *fakeTool) Schema() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }
func (f *fakeTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return f.run(input)
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "a"}))
	assert.Error(t, r.Register(&fakeTool{name: "a"}))
}

func TestListSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterAll(&fakeTool{name: "b"}, &fakeTool{name: "a"}, &fakeTool{name: "c"}))

	assert.Equal(t, []string{"a", "b", "c"}, r.Names())
	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "a", list[0].Name())
}

func TestExecuteNotFound(t *testing.T) {
	_, err := NewRegistry().Execute(context.Background(), "nope", nil)

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeMethodNotFound, te.Code)
}

func TestExecuteEmptyInputBecomesObject(t *testing.T) {
	r := NewRegistry()
	var seen string
	require.NoError(t, r.Register(&fakeTool{name: "echo", run: func(in json.RawMessage) (interface{}, error) {
		seen = string(in)
		return "ok", nil
	}}))

	got, err := r.Execute(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, "{}", seen)
}

func TestExecuteRecoversPanic(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakeTool{name: "boom", run: func(json.RawMessage) (interface{}, error) {
		panic("kaboom")
	}}))

	got, err := r.Execute(context.Background(), "boom", nil)
	assert.Nil(t, got)

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, CodeInternal, te.Code)
	assert.Contains(t, te.Message, "kaboom")
}

func TestExecutionErrorClassification(t *testing.T) {
	dir := t.TempDir()
	_, loadErr := project.Load(dir+"/missing", project.LoadOptions{})
	_, readErr := project.ReadFile(dir + "/missing.txt")

	tests := []struct {
		name string
		err  error
		code int
		kind string
	}{
		{"precondition", loadErr, CodePrecondition, "precondition"},
		{"filesystem", readErr, CodeFilesystem, "filesystem"},
		{"invalid params", Required("path"), CodeInvalidParams, "invalid_params"},
		{"story missing", fmt.Errorf("%w: x", backlog.ErrNotFound), CodeNotFound, "not_found"},
		{"other", errors.New("boom"), CodeInternal, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := NewToolExecutionError("t", tt.err)
			assert.Equal(t, tt.code, te.Code)
			assert.Equal(t, tt.kind, te.Kind)
		})
	}

	assert.Equal(t, fmt.Sprintf("'%s/missing' is not a valid directory.", dir), NewToolExecutionError("t", loadErr).Message)
}

func TestDecode(t *testing.T) {
	var v struct {
		Path string `json:"path"`
	}
	require.NoError(t, Decode(json.RawMessage(`{"path":"x"}`), &v))
	assert.Equal(t, "x", v.Path)

	err := Decode(json.RawMessage(`[`), &v)
	var ip *InvalidParamsError
	assert.ErrorAs(t, err, &ip)
}

func TestHealth(t *testing.T) {
	r := NewRegistry()
	h := NewHealthTool(r)
	require.NoError(t, r.Register(h))

	got, err := r.Execute(context.Background(), "health", nil)
	require.NoError(t, err)
	m := got.(map[string]interface{})
	assert.Equal(t, "healthy", m["status"])
	assert.Equal(t, 1, m["tools"])
}

func TestExecuteWithTimeoutSetsDeadline(t *testing.T) {
	r := NewRegistry()
	var hasDeadline bool
	require.NoError(t, r.Register(&ctxTool{run: func(ctx context.Context) {
		_, hasDeadline = ctx.Deadline()
	}}))

	_, err := r.ExecuteWithTimeout(context.Background(), "ctx", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, hasDeadline)

	_, err = r.ExecuteWithTimeout(context.Background(), "ctx", nil, 0)
	require.NoError(t, err)
	assert.False(t, hasDeadline)
}

type ctxTool struct {
	run func(ctx context.Context)
}

func (c *ctxTool) Name() string            { return "ctx" }
func (c *ctxTool) Description() string     { return "records its context" }
func (c *ctxTool) Schema() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }
func (c *ctxTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	c.run(ctx)
	return nil, nil
}

type timedTool struct {
	ctxTool
	timeout time.Duration
}

func (t *timedTool) Timeout() time.Duration { return t.timeout }

func TestTimedToolOverridesCallerTimeout(t *testing.T) {
	r := NewRegistry()
	var deadline time.Time
	var hasDeadline bool
	record := func(ctx context.Context) { deadline, hasDeadline = ctx.Deadline() }

	require.NoError(t, r.Register(&timedTool{ctxTool: ctxTool{run: record}}))

	_, err := r.ExecuteWithTimeout(context.Background(), "ctx", nil, time.Millisecond)
	require.NoError(t, err)
	assert.False(t, hasDeadline, "zero timeout means no deadline")

	r = NewRegistry()
	require.NoError(t, r.Register(&timedTool{ctxTool: ctxTool{run: record}, timeout: time.Hour}))

	_, err = r.ExecuteWithTimeout(context.Background(), "ctx", nil, time.Millisecond)
	require.NoError(t, err)
	require.True(t, hasDeadline)
	assert.Greater(t, time.Until(deadline), 30*time.Minute)
}
