package generate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alucardeht/forge/internal/catalog"
)

const manifestTemplate = `{
  "name": "%s",
  "version": "1.0.0",
  "description": "%s",
  "main": "index.js",
  "scripts": {
    "start": "node index.js",
    "dev": "nodemon index.js"
  },
  "dependencies": {
%s
  }
}`

// ManifestName is the package.json form of a project name.
func ManifestName(name string) string {
	return lower(hyphenate(name))
}

// ComposeManifest renders package.json for cfg. The description is embedded
// without JSON escaping; see ManifestIsValid.
func ComposeManifest(cfg ProjectConfig) string {
	return fmt.Sprintf(manifestTemplate,
		ManifestName(cfg.Name),
		cfg.Description,
		dependencyLines(cfg.Packages),
	)
}

func dependencyLines(packages []string) string {
	deps := catalog.Resolve(packages)
	lines := make([]string, 0, len(deps))
	for _, d := range deps {
		lines = append(lines, fmt.Sprintf(`    "%s": "%s"`, d.ID, d.Version))
	}
	return strings.Join(lines, ",\n")
}

// ManifestIsValid reports whether a composed manifest is well-formed JSON.
// It is false when the description or a package id carries characters that
// need escaping.
func ManifestIsValid(manifest string) bool {
	return json.Valid([]byte(manifest))
}
