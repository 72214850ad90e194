// Package exec launches the dependency installer and other child processes
// behind an interface tests can replace.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"time"
)

// ErrInterrupted marks a process that started but was stopped because its
// context ended.
var ErrInterrupted = errors.New("process interrupted")

// Command is one process launch. Env entries are added on top of the
// parent environment.
type Command struct {
	Name string
	Args []string
	Dir  string
	Env  map[string]string
}

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Elapsed  time.Duration
}

// Runner runs a command to completion. A non-zero exit is reported in
// Result.ExitCode with a nil error. Errors mean the process never started,
// or it started and was interrupted (ErrInterrupted).
type Runner interface {
	Run(ctx context.Context, c Command) (Result, error)
}

type OSRunner struct{}

func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

func (r *OSRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(cmd.Environ(), envList(c.Env)...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	res := Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: time.Since(start),
	}

	switch {
	case err == nil:
		return res, nil
	case cmd.ProcessState != nil && ctx.Err() != nil:
		res.ExitCode = cmd.ProcessState.ExitCode()
		return res, fmt.Errorf("%w after %s: %w", ErrInterrupted, res.Elapsed.Round(time.Millisecond), ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}

// envList renders env as KEY=VALUE pairs in key order.
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
