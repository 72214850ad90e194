// Package generate composes the text of a scaffolded Express project: the
// package.json manifest, the index.js entry point, the optional .env file and
// route stubs synthesized from user stories.
//
// Everything here is pure string composition. Nothing touches the disk and
// no function returns an error; unknown package ids degrade to a fallback
// version and contribute no code.
package generate

import (
	"encoding/json"
	"slices"

	"github.com/alucardeht/forge/internal/catalog"
)

const (
	ManifestFile   = "package.json"
	EntryPointFile = "index.js"
	EnvFile        = ".env"

	DefaultProjectName = "new-project"
)

// ProjectConfig is the declarative input for a new project. Package order is
// significant and is carried verbatim into the generated files.
type ProjectConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Packages    []string `json:"packages" yaml:"packages"`
}

// DefaultProjectConfig is used when the caller supplies no configuration.
func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Name:        DefaultProjectName,
		Description: "",
		Packages:    []string{catalog.Framework},
	}
}

// UnmarshalJSON decodes over DefaultProjectConfig, so fields the input
// leaves out keep their defaults. An explicit empty packages list stays
// empty.
func (c *ProjectConfig) UnmarshalJSON(data []byte) error {
	type plain ProjectConfig
	p := plain(DefaultProjectConfig())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = ProjectConfig(p)
	return nil
}

// Uses reports whether id was selected.
func (c ProjectConfig) Uses(id string) bool {
	return slices.Contains(c.Packages, id)
}

type GeneratedArtifact struct {
	RelativePath string `json:"relativePath"`
	Content      string `json:"content"`
}

type RouteStub struct {
	StoryText   string `json:"storyText"`
	RoutePath   string `json:"routePath"`
	HandlerBody string `json:"handlerBody"`
}
