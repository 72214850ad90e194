package scaffold

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/internal/tools"
)

type WriteRequest struct {
	Path    string  `json:"path"`
	Content *string `json:"content"`
}

type WriteResponse struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

type WriteTool struct{}

func (t *WriteTool) Name() string {
	return "write_file"
}

func (t *WriteTool) Description() string {
	return "Replace a project file's contents, creating the file if needed"
}

func (t *WriteTool) Title() string {
	return "Write File"
}

func (t *WriteTool) Annotations() map[string]bool {
	return tools.DestructiveAnnotations()
}

func (t *WriteTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "File to write. Its directory must exist."
			},
			"content": {
				"type": "string",
				"description": "Full new content"
			}
		},
		"required": ["path", "content"]
	}`)
}

func (t *WriteTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req WriteRequest
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, tools.Required("path")
	}
	if req.Content == nil {
		return nil, tools.Required("content")
	}

	if err := project.WriteFile(req.Path, *req.Content); err != nil {
		return nil, err
	}
	return WriteResponse{Path: req.Path, Bytes: len(*req.Content)}, nil
}
