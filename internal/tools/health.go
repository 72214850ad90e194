package tools

import (
	"context"
	"encoding/json"
	"time"
)

type HealthTool struct {
	registry *Registry
	started  time.Time
}

func NewHealthTool(registry *Registry) *HealthTool {
	return &HealthTool{registry: registry, started: time.Now()}
}

func (t *HealthTool) Name() string {
	return "health"
}

func (t *HealthTool) Description() string {
	return "Report server status, uptime and the number of registered commands"
}

func (t *HealthTool) Title() string {
	return "Health"
}

func (t *HealthTool) Annotations() map[string]bool {
	return ReadOnlyAnnotations()
}

func (t *HealthTool) Schema() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {},
		"required": []
	}`)
}

func (t *HealthTool) Execute(ctx context.Context, input json.RawMessage) (interface{}, error) {
	count := 0
	if t.registry != nil {
		count = len(t.registry.Names())
	}
	return map[string]interface{}{
		"status": "healthy",
		"uptime": int64(time.Since(t.started).Seconds()),
		"tools":  count,
	}, nil
}
