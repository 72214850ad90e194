package scaffold

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/internal/tools"
)

type ReadRequest struct {
	Path string `json:"path"`
}

type ReadTool struct{}

func (t *ReadTool) Name() string {
	return "read_file"
}

func (t *ReadTool) Description() string {
	return "Read a project file as text"
}

func (t *ReadTool) Title() string {
	return "Read File"
}

func (t *ReadTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *ReadTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "File to read"
			}
		},
		"required": ["path"]
	}`)
}

// Execute returns the file content as a bare JSON string.
func (t *ReadTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req ReadRequest
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, tools.Required("path")
	}

	return project.ReadFile(req.Path)
}
