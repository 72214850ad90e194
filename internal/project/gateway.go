// Package project materializes generated projects on disk and gives the
// editor plain access to their files.
package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/alucardeht/forge/internal/generate"
	"github.com/alucardeht/forge/internal/logger"
)

var log = logger.ForComponent("project")

type Gateway struct {
	installer Installer
}

func NewGateway(installer Installer) *Gateway {
	if installer == nil {
		installer = SkipInstaller{}
	}
	return &Gateway{installer: installer}
}

// Artifacts returns what Initialize would write for cfg, with the same
// defaulting.
func (g *Gateway) Artifacts(cfg *generate.ProjectConfig) []generate.GeneratedArtifact {
	return generate.Artifacts(resolveConfig(cfg))
}

func resolveConfig(cfg *generate.ProjectConfig) generate.ProjectConfig {
	if cfg == nil {
		return generate.DefaultProjectConfig()
	}
	return *cfg
}

// Initialize creates root, writes the project files and installs
// dependencies. Files already written stay on disk when a later step fails.
func (g *Gateway) Initialize(ctx context.Context, root string, cfg *generate.ProjectConfig) error {
	if _, err := os.Lstat(root); err == nil {
		return preconditionError("initialize", root, fmt.Sprintf("Directory '%s' already exists.", root))
	} else if !errors.Is(err, fs.ErrNotExist) {
		return filesystemError("initialize", root, err)
	}

	if err := createRoot(root); err != nil {
		return err
	}

	resolved := resolveConfig(cfg)
	for _, a := range generate.Artifacts(resolved) {
		path := filepath.Join(root, a.RelativePath)
		if a.RelativePath == generate.ManifestFile && !generate.ManifestIsValid(a.Content) {
			log.Warn("manifest is not valid JSON; description is embedded unescaped", "path", path)
		}
		if err := os.WriteFile(path, []byte(a.Content), 0o644); err != nil {
			return filesystemError("write", path, err)
		}
		log.Debug("wrote artifact", "path", path, "bytes", len(a.Content))
	}

	return g.installer.Install(ctx, root)
}

// createRoot makes the parents of root, then root itself with an exclusive
// mkdir so two initializations of the same path cannot both succeed.
func createRoot(root string) error {
	clean := filepath.Clean(root)
	if err := os.MkdirAll(filepath.Dir(clean), 0o755); err != nil {
		return filesystemError("mkdir", root, err)
	}
	if err := os.Mkdir(clean, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return preconditionError("initialize", root, fmt.Sprintf("Directory '%s' already exists.", root))
		}
		return filesystemError("mkdir", root, err)
	}
	return nil
}
