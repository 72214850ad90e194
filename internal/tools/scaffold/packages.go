package scaffold

import (
	"context"
	"encoding/json"

	"github.com/alucardeht/forge/internal/catalog"
	"github.com/alucardeht/forge/internal/tools"
)

type PackagesTool struct{}

func (t *PackagesTool) Name() string {
	return "list_packages"
}

func (t *PackagesTool) Description() string {
	return "List the npm packages forge pins versions for"
}

func (t *PackagesTool) Title() string {
	return "List Packages"
}

func (t *PackagesTool) Annotations() map[string]bool {
	return tools.ReadOnlyAnnotations()
}

func (t *PackagesTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *PackagesTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	return map[string]interface{}{
		"packages": catalog.Known(),
		"fallback": catalog.FallbackVersion,
	}, nil
}
