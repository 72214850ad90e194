package scaffold

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/internal/tools"
)

type WatchRequest struct {
	Path string `json:"path"`
}

type WatchResponse struct {
	Watching []string `json:"watching"`
}

const watchSchema = `{
	"type": "object",
	"properties": {
		"path": {
			"type": "string",
			"description": "Project directory"
		}
	},
	"required": ["path"]
}`

func decodeWatch(input json.RawMessage) (string, error) {
	var req WatchRequest
	if err := tools.Decode(input, &req); err != nil {
		return "", err
	}
	if req.Path == "" {
		return "", tools.Required("path")
	}
	return req.Path, nil
}

// WatchTool starts project/changed notifications for a project directory.
type WatchTool struct {
	watcher Watcher
}

func (t *WatchTool) Name() string {
	return "watch_project"
}

func (t *WatchTool) Description() string {
	return "Send project/changed notifications when files under a project change"
}

func (t *WatchTool) Title() string {
	return "Watch Project"
}

func (t *WatchTool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *WatchTool) Schema() json.RawMessage {
	return json.RawMessage(watchSchema)
}

func (t *WatchTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	path, err := decodeWatch(input)
	if err != nil {
		return nil, err
	}
	if err := project.CheckDir("watch", path); err != nil {
		return nil, err
	}
	if err := t.watcher.Watch(path); err != nil {
		return nil, err
	}
	return WatchResponse{Watching: t.watcher.Roots()}, nil
}

// UnwatchTool stops notifications for a root. The directory may already be
// gone, and a root that is not watched is a no-op.
type UnwatchTool struct {
	watcher Watcher
}

func (t *UnwatchTool) Name() string {
	return "unwatch_project"
}

func (t *UnwatchTool) Description() string {
	return "Stop change notifications for a project directory"
}

func (t *UnwatchTool) Title() string {
	return "Unwatch Project"
}

func (t *UnwatchTool) Annotations() map[string]bool {
	return tools.SafeWriteAnnotations()
}

func (t *UnwatchTool) Schema() json.RawMessage {
	return json.RawMessage(watchSchema)
}

func (t *UnwatchTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	path, err := decodeWatch(input)
	if err != nil {
		return nil, err
	}
	if err := t.watcher.Unwatch(path); err != nil {
		return nil, err
	}
	return WatchResponse{Watching: t.watcher.Roots()}, nil
}
