package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alucardeht/forge/internal/catalog"
	"github.com/alucardeht/forge/internal/config"
	"github.com/alucardeht/forge/internal/daemon"
	"github.com/alucardeht/forge/internal/generate"
	"github.com/alucardeht/forge/internal/logger"
	"github.com/alucardeht/forge/internal/project"
	"github.com/alucardeht/forge/internal/rpc"
	"github.com/alucardeht/forge/pkg/protocol"
)

const usage = `usage: forge <command> [flags]

commands:
  serve     serve editor commands over JSON-RPC on stdio (default)
  init      create a new Express project: forge init [-config file] [-no-install] <path>
  load      list a project's files: forge load [-pattern glob] <path>
  read      print a file: forge read <path>
  write     replace a file with stdin: forge write <path>
  routes    print a routes fragment: forge routes [story...]
  packages  list pinned package versions
  version   print the forge version
`

// errUsage makes the process exit with status 2.
var errUsage = errors.New("usage error")

type app struct {
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Logger())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(a.run(ctx, os.Args[1:]))
}

func (a *app) run(ctx context.Context, args []string) int {
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = a.serve(ctx, args)
	case "init":
		err = a.initProject(ctx, args)
	case "load":
		err = a.load(args)
	case "read":
		err = a.read(args)
	case "write":
		err = a.write(args)
	case "routes":
		err = a.routes(args)
	case "packages":
		err = a.writeJSON(catalog.Known())
	case "version":
		fmt.Fprintln(a.stdout, protocol.Version)
	case "help", "-h", "--help":
		fmt.Fprint(a.stdout, usage)
	default:
		fmt.Fprintf(a.stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintln(a.stderr, err)
		return 1
	}
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// onePath parses fs and returns its single positional argument.
func (a *app) onePath(fs *flag.FlagSet, args []string) (string, error) {
	if err := parse(fs, args); err != nil {
		return "", err
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(a.stderr, "%s: expected exactly one path\n", fs.Name())
		return "", errUsage
	}
	return fs.Arg(0), nil
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs := a.flags("serve")
	socket := fs.String("socket", "", "listen on this unix socket instead of stdio")
	if err := parse(fs, args); err != nil {
		return err
	}

	if err := a.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	d, err := daemon.NewDaemon(a.cfg)
	if err != nil {
		return err
	}
	defer d.Shutdown()

	if *socket != "" {
		return d.ServeSocket(ctx, *socket)
	}
	return d.Serve(ctx, &rpc.StdioConn{Reader: os.Stdin, Writer: os.Stdout})
}

func (a *app) initProject(ctx context.Context, args []string) error {
	fs := a.flags("init")
	configFile := fs.String("config", "", "YAML or JSON project config")
	noInstall := fs.Bool("no-install", false, "skip the dependency install")
	path, err := a.onePath(fs, args)
	if err != nil {
		return err
	}

	var cfg *generate.ProjectConfig
	if *configFile != "" {
		if cfg, err = config.LoadProjectConfig(*configFile); err != nil {
			return err
		}
	}

	installer := daemon.Installer(a.cfg)
	if *noInstall {
		installer = project.SkipInstaller{}
	}

	if err := project.NewGateway(installer).Initialize(ctx, path, cfg); err != nil {
		var pe *project.Error
		if errors.As(err, &pe) && pe.Output != "" {
			fmt.Fprint(a.stderr, pe.Output)
		}
		return err
	}

	fmt.Fprintf(a.stdout, "created %s\n", path)
	return nil
}

func (a *app) load(args []string) error {
	fs := a.flags("load")
	pattern := fs.String("pattern", "", "only list file names matching this glob")
	path, err := a.onePath(fs, args)
	if err != nil {
		return err
	}

	handle, err := project.Load(path, project.LoadOptions{Pattern: *pattern})
	if err != nil {
		return err
	}
	return a.writeJSON(handle)
}

func (a *app) read(args []string) error {
	path, err := a.onePath(a.flags("read"), args)
	if err != nil {
		return err
	}

	content, err := project.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.stdout, content)
	return err
}

func (a *app) write(args []string) error {
	path, err := a.onePath(a.flags("write"), args)
	if err != nil {
		return err
	}

	content, err := io.ReadAll(a.stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return project.WriteFile(path, string(content))
}

func (a *app) routes(args []string) error {
	fs := a.flags("routes")
	if err := parse(fs, args); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.stdout, generate.SynthesizeRoutes(fs.Args()))
	return err
}

func (a *app) writeJSON(v interface{}) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
