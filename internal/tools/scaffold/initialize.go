package scaffold

import (
	"context"
	"encoding/json"
	"time"

	"github.com/alucardeht/forge/internal/config"
	"github.com/alucardeht/forge/internal/generate"
	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/internal/tools"
)

type InitializeRequest struct {
	Path       string                  `json:"path"`
	Config     *generate.ProjectConfig `json:"config,omitempty"`
	ConfigFile string                  `json:"configFile,omitempty"`
}

type InitializeResponse struct {
	Path  string   `json:"path"`
	Files []string `json:"files"`
}

type InitializeTool struct {
	gateway *project.Gateway
}

func (t *InitializeTool) Name() string {
	return "initialize_project"
}

func (t *InitializeTool) Description() string {
	return "Create a new Express project directory with package.json, index.js and .env, then install dependencies"
}

func (t *InitializeTool) Title() string {
	return "Initialize Project"
}

func (t *InitializeTool) Annotations() map[string]bool {
	return tools.NonIdempotentWriteAnnotations()
}

// Timeout is zero: the dependency install runs to completion however long
// it takes.
func (t *InitializeTool) Timeout() time.Duration {
	return 0
}

func (t *InitializeTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"path": {
				"type": "string",
				"description": "Directory to create. Must not exist yet."
			},
			"config": {
				"type": "object",
				"description": "Project name, description and package ids (optional)",
				"properties": {
					"name": {"type": "string"},
					"description": {"type": "string"},
					"packages": {"type": "array", "items": {"type": "string"}}
				}
			},
			"configFile": {
				"type": "string",
				"description": "YAML or JSON file holding the project config (optional, ignored when config is set)"
			}
		},
		"required": ["path"]
	}`)
}

func (t *InitializeTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req InitializeRequest
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	if req.Path == "" {
		return nil, tools.Required("path")
	}

	cfg := req.Config
	if cfg == nil && req.ConfigFile != "" {
		loaded, err := config.LoadProjectConfig(req.ConfigFile)
		if err != nil {
			return nil, &tools.InvalidParamsError{Err: err}
		}
		cfg = loaded
	}

	if err := t.gateway.Initialize(ctx, req.Path, cfg); err != nil {
		return nil, err
	}

	artifacts := t.gateway.Artifacts(cfg)
	files := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		files = append(files, a.RelativePath)
	}

	return InitializeResponse{Path: req.Path, Files: files}, nil
}
