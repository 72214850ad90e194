package scaffold

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/forge/internal/generate"
	"github.com/alucardeht/forge/internal/tools"
)

type RoutesRequest struct {
	Description string   `json:"description"`
	Stories     []string `json:"stories"`
}

type RoutesTool struct{}

func (t *RoutesTool) Name() string {
	return "generate_routes_fragment"
}

func (t *RoutesTool) Description() string {
	return "Render an Express routes fragment with one GET stub per user story"
}

func (t *RoutesTool) Title() string {
	return "Generate Routes"
}

func (t *RoutesTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *RoutesTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"description": {
				"type": "string",
				"description": "Project description (accepted, not used)"
			},
			"stories": {
				"type": "array",
				"items": {"type": "string"},
				"description": "User stories, one route each"
			}
		},
		"required": []
	}`)
}

// Execute never fails on well-formed input; Description is ignored.
func (t *RoutesTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	var req RoutesRequest
	if err := tools.Decode(input, &req); err != nil {
		return nil, err
	}
	return generate.SynthesizeRoutes(req.Stories), nil
}
