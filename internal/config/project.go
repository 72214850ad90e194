package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/alucardeht/forge/internal/generate"
)

// LoadProjectConfig reads a project definition from a YAML (or JSON) file.
// Fields the file leaves out keep their defaults, except that an explicit
// empty packages list stays empty.
func LoadProjectConfig(path string) (*generate.ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read project file: %w", err)
	}

	cfg := generate.DefaultProjectConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse project file %s: %w", path, err)
	}
	return &cfg, nil
}
