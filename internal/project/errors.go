package project

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindPrecondition: the target exists for Initialize, or is missing or
	// not a directory for Load.
	KindPrecondition Kind = "precondition"
	// KindFilesystem wraps the OS error from a create, write, read or list.
	KindFilesystem Kind = "filesystem"
	// KindInstallation is a dependency install that ran and then exited
	// non-zero or was stopped by its context.
	KindInstallation Kind = "installation"
)

type Error struct {
	Kind   Kind
	Op     string
	Path   string
	Msg    string
	Output string
	Err    error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %s error", e.Op, e.Path, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func preconditionError(op, path, msg string) error {
	return &Error{Kind: KindPrecondition, Op: op, Path: path, Msg: msg}
}

func filesystemError(op, path string, err error) error {
	return &Error{Kind: KindFilesystem, Op: op, Path: path, Err: err}
}

// KindOf returns the kind of a project error, or "" for anything else.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func IsPrecondition(err error) bool { return KindOf(err) == KindPrecondition }
func IsFilesystem(err error) bool   { return KindOf(err) == KindFilesystem }
func IsInstallation(err error) bool { return KindOf(err) == KindInstallation }
