// Package daemon assembles the forge server: configuration, the command
// registry, the story backlog, the project watcher and the JSON-RPC
// front end.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/alucardeht/forge/internal/backlog"
	"github.com/alucardeht/forge/internal/config"
	"github.com/alucardeht/forge/internal/exec"
	"github.com/alucardeht/forge/internal/logger"
	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/internal/rpc"
	"github.com/alucardeht/forge/internal/tools"
	"github.com/alucardeht/forge/internal/tools/scaffold"
	"github.com/alucardeht/forge/internal/tools/stories"
	"github.com/alucardeht/forge/internal/watcher"
)

var log = logger.ForComponent("daemon")

type Daemon struct {
	cfg       *config.Config
	registry  *tools.Registry
	server    *rpc.Server
	store     *backlog.Store
	watcher   *watcher.Watcher
	startTime time.Time

	shutdownOnce sync.Once
}

// Installer builds the dependency installer described by cfg.
func Installer(cfg *config.Config) project.Installer {
	if cfg.Install.Skip {
		return project.SkipInstaller{}
	}
	return &project.CommandInstaller{
		Runner:  exec.NewOSRunner(),
		Command: cfg.Install.Command,
		Args:    cfg.Install.Args,
		Env:     cfg.Install.Env,
	}
}

func NewDaemon(cfg *config.Config) (*Daemon, error) {
	d := &Daemon{
		cfg:       cfg,
		registry:  tools.NewRegistry(),
		startTime: time.Now(),
	}
	d.server = rpc.NewServer(d.registry)

	if cfg.Watcher.Enabled {
		w, err := watcher.New(cfg.Watcher, d.server.OnWatchBatch)
		if err != nil {
			return nil, fmt.Errorf("failed to create watcher: %w", err)
		}
		// stopped by Close in Shutdown
		if err := w.Start(context.Background()); err != nil {
			w.Close()
			return nil, fmt.Errorf("failed to start watcher: %w", err)
		}
		d.watcher = w
	}

	if cfg.Backlog.Enabled {
		store, err := backlog.Open(cfg.Backlog.DBPath)
		if err != nil {
			d.Shutdown()
			return nil, fmt.Errorf("failed to open backlog: %w", err)
		}
		d.store = store
	}

	if err := d.registerAllTools(); err != nil {
		d.Shutdown()
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return d, nil
}

func (d *Daemon) registerAllTools() error {
	if err := d.registry.Register(tools.NewHealthTool(d.registry)); err != nil {
		return err
	}

	var w scaffold.Watcher
	if d.watcher != nil {
		w = d.watcher
	}

	gateway := project.NewGateway(Installer(d.cfg))
	if err := d.registry.RegisterAll(scaffold.GetTools(gateway, w)...); err != nil {
		return fmt.Errorf("scaffold: %w", err)
	}

	if d.store != nil {
		if err := d.registry.RegisterAll(stories.GetTools(d.store)...); err != nil {
			return fmt.Errorf("stories: %w", err)
		}
	}

	log.Debug("tools registered", "count", d.ToolCount())
	return nil
}

// Serve answers one client on rwc until it disconnects or ctx ends.
func (d *Daemon) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	err := d.server.ServeStream(ctx, rwc)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(func() {
		if d.watcher != nil {
			if err := d.watcher.Close(); err != nil {
				log.Warn("watcher close failed", "error", err)
			}
		}
		if d.store != nil {
			if err := d.store.Close(); err != nil {
				log.Warn("backlog close failed", "error", err)
			}
		}
		log.Info("daemon stopped", "uptime", d.Uptime().Round(time.Second))
	})
}

func (d *Daemon) Registry() *tools.Registry {
	return d.registry
}

func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.startTime)
}

func (d *Daemon) ToolCount() int {
	return len(d.registry.Names())
}
