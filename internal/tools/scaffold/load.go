package scaffold

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/internal/tools"
)

type LoadRequest struct {
	Path    string `json:"path"`
	Pattern string `json:"pattern,omitempty"`
}

type LoadTool struct{}

func (t *LoadTool) Name() string {
	return "load_project"
}

func (t *LoadTool) Description() string {
	return "List the regular files directly under a project directory"
}

func (t *LoadTool) Title() string {
	return "Load Project"
}

func (t *LoadTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *LoadTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Project directory"
			},
			"pattern": {
				"type": "string",
				"description": "Glob matched against file names, e.g. *.js (optional)"
			}
		},
		"required": ["path"]
	}`)
}

func (t *LoadTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req LoadRequest
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, tools.Required("path")
	}

	handle, err := project.Load(req.Path, project.LoadOptions{Pattern: req.Pattern})
	if errors.Is(err, project.ErrInvalidPattern) {
		return nil, &tools.InvalidParamsError{Err: err}
	}
	return handle, err
}
