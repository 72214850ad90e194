package scaffold

import (
	"context"
	"encoding/json"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alucardeht/forge/internal/generate"
	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/internal/tools"
)

type PreviewRequest struct {
	Config *generate.ProjectConfig `json:"config,omitempty"`
}

type PreviewResponse struct {
	Artifacts     []generate.GeneratedArtifact `json:"artifacts"`
	ManifestValid bool                         `json:"manifestValid"`
}

const previewCacheSize = 64

// PreviewTool shows what initialize_project would write without touching
// the disk. Renders are pure, so they are cached by config.
type PreviewTool struct {
	gateway *project.Gateway
	cache   *lru.Cache[string, PreviewResponse]
}

func NewPreviewTool(gateway *project.Gateway) *PreviewTool {
	// only fails for a non-positive size
	cache, _ := lru.New[string, PreviewResponse](previewCacheSize)
	return &PreviewTool{gateway: gateway, cache: cache}
}

func (t *PreviewTool) Name() string {
	return "preview_project"
}

func (t *PreviewTool) Description() string {
	return "Show the files initialize_project would generate for a config, without writing anything"
}

func (t *PreviewTool) Title() string {
	return "Preview Project"
}

func (t *PreviewTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *PreviewTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"config": {
				"type": "object",
				"properties": {
					"name": {"type": "string"},
					"description": {"type": "string"},
					"packages": {"type": "array", "items": {"type": "string"}}
				}
			}
		},
		"required": []
	}`)
}

func (t *PreviewTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req PreviewRequest
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}

	key, err := json.Marshal(req.Config)
	if err != nil {
		return nil, err
	}
	if cached, ok := t.cache.Get(string(key)); ok {
		return cached, nil
	}

	artifacts := t.gateway.Artifacts(req.Config)
	valid := true
	for _, a := range artifacts {
		if a.RelativePath == generate.ManifestFile {
			valid = generate.ManifestIsValid(a.Content)
		}
	}

	resp := PreviewResponse{Artifacts: artifacts, ManifestValid: valid}
	t.cache.Add(string(key), resp)
	return resp, nil
}

func (t *PreviewTool) cached() int {
	return t.cache.Len()
}
