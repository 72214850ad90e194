package tools

import (
	"errors"
	"fmt"

	"github.com/alucardeht/forge/internal/backlog"
	"github.com/alucardeht/forge/internal/project"
)

const (
	CodeInvalidParams  = -32602
	CodeMethodNotFound = -32601
	CodeInternal       = -32603
	CodePrecondition   = -32010
	CodeFilesystem     = -32011
	CodeInstallation   = -32012
	CodeNotFound       = -32013
)

// ToolError is what the registry returns for any failed call. Kind names
// the failure class for clients that branch on it.
type ToolError struct {
	Code    int
	Message string
	Kind    string
	Err     error
}

func (e *ToolError) Error() string {
	return e.Message
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// InvalidParamsError marks input a tool could not accept.
type InvalidParamsError struct {
	Err error
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid params: %v", e.Err)
}

func (e *InvalidParamsError) Unwrap() error {
	return e.Err
}

// Required returns an invalid params error for a missing field.
func Required(field string) error {
	return &InvalidParamsError{Err: fmt.Errorf("%s is required", field)}
}

func NewToolNotFoundError(name string) *ToolError {
	return &ToolError{
		Code:    CodeMethodNotFound,
		Message: fmt.Sprintf("Tool not found: %s", name),
		Kind:    "not_found",
	}
}

func NewToolPanicError(name string, p interface{}) *ToolError {
	return &ToolError{
		Code:    CodeInternal,
		Message: fmt.Sprintf("tool %s panicked: %v", name, p),
		Kind:    "internal",
	}
}

// NewToolExecutionError classifies err. Project and backlog failures keep
// their own message so the editor can show it as-is.
func NewToolExecutionError(name string, err error) *ToolError {
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}

	var ip *InvalidParamsError
	if errors.As(err, &ip) {
		return &ToolError{Code: CodeInvalidParams, Message: ip.Error(), Kind: "invalid_params", Err: err}
	}

	switch project.KindOf(err) {
	case project.KindPrecondition:
		return &ToolError{Code: CodePrecondition, Message: err.Error(), Kind: string(project.KindPrecondition), Err: err}
	case project.KindFilesystem:
		return &ToolError{Code: CodeFilesystem, Message: err.Error(), Kind: string(project.KindFilesystem), Err: err}
	case project.KindInstallation:
		return &ToolError{Code: CodeInstallation, Message: err.Error(), Kind: string(project.KindInstallation), Err: err}
	}

	if errors.Is(err, backlog.ErrNotFound) {
		return &ToolError{Code: CodeNotFound, Message: err.Error(), Kind: "not_found", Err: err}
	}
	if errors.Is(err, backlog.ErrEmptyTitle) || errors.Is(err, backlog.ErrEmptyPath) {
		return &ToolError{Code: CodeInvalidParams, Message: err.Error(), Kind: "invalid_params", Err: err}
	}

	return &ToolError{
		Code:    CodeInternal,
		Message: fmt.Sprintf("Error executing tool %s: %v", name, err),
		Kind:    "internal",
		Err:     err,
	}
}
