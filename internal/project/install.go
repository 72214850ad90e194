package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alucardeht/forge/internal/exec"
)

// Installer installs a freshly written project's dependencies.
type Installer interface {
	Install(ctx context.Context, root string) error
}

// CommandInstaller runs Command with Args in the project root and waits for
// it. A launch failure is a filesystem error. A non-zero exit, or a process
// stopped by ctx, is an installation error.
type CommandInstaller struct {
	Runner  exec.Runner
	Command string
	Args    []string
	Env     map[string]string
}

func NewNPMInstaller(runner exec.Runner) *CommandInstaller {
	return &CommandInstaller{Runner: runner, Command: "npm", Args: []string{"install"}}
}

func (i *CommandInstaller) commandLine() string {
	return strings.Join(append([]string{i.Command}, i.Args...), " ")
}

func (i *CommandInstaller) failed(root string, res exec.Result, err error) error {
	return &Error{
		Kind:   KindInstallation,
		Op:     "install",
		Path:   root,
		Msg:    fmt.Sprintf("`%s` failed", i.commandLine()),
		Output: res.Stderr,
		Err:    err,
	}
}

func (i *CommandInstaller) Install(ctx context.Context, root string) error {
	log.Info("installing dependencies", "root", root, "command", i.commandLine())

	res, err := i.Runner.Run(ctx, exec.Command{
		Name: i.Command,
		Args: i.Args,
		Dir:  root,
		Env:  i.Env,
	})
	if errors.Is(err, exec.ErrInterrupted) {
		log.Warn("dependency install interrupted", "root", root, "elapsed", res.Elapsed, "error", err)
		return i.failed(root, res, err)
	}
	if err != nil {
		return filesystemError("install", root, err)
	}

	if res.ExitCode != 0 {
		log.Warn("dependency install failed", "root", root, "exit_code", res.ExitCode, "stderr", res.Stderr)
		return i.failed(root, res, nil)
	}

	log.Debug("dependencies installed", "root", root, "elapsed", res.Elapsed)
	return nil
}

// SkipInstaller leaves dependencies uninstalled.
type SkipInstaller struct{}

func (SkipInstaller) Install(ctx context.Context, root string) error {
	log.Info("skipping dependency install", "root", root)
	return nil
}
