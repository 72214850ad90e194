// Package scaffold exposes project scaffolding and file access as editor
// commands.
package scaffold

import (
	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/internal/tools"
)

// Watcher is the part of the project watcher these commands drive.
type Watcher interface {
	Watch(root string) error
	Unwatch(root string) error
	Roots() []string
}

// GetTools returns the project commands. watch_project and unwatch_project
// are left out when w is nil.
func GetTools(gateway *project.Gateway, w Watcher) []tools.Tool {
	list := []tools.Tool{
		&InitializeTool{gateway: gateway},
		&LoadTool{},
		&ReadTool{},
		&WriteTool{},
		&RoutesTool{},
		NewPreviewTool(gateway),
		&PackagesTool{},
	}
	if w != nil {
		list = append(list, &WatchTool{watcher: w}, &UnwatchTool{watcher: w})
	}
	return list
}
