package view

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ErrLayoutNotFound matches errors reporting an explicitly requested layout
// missing from every view root.
var ErrLayoutNotFound = errors.New("view: layout not found")

// LayoutNotFoundError names the layout and the roots that were searched.
type LayoutNotFoundError struct {
	Name  string
	Roots []string
}

func (e *LayoutNotFoundError) Error() string {
	return fmt.Sprintf("view: layout %q not found in [%s]", e.Name, strings.Join(e.Roots, ", "))
}

func (e *LayoutNotFoundError) Is(target error) bool {
	return target == ErrLayoutNotFound
}

func (e *LayoutNotFoundError) Unwrap() error { return fs.ErrNotExist }

// FileReadError reports a template or partial that could not be read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("view: read %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// CompileError reports source rejected by the engine. The message is
// prefixed with the offending file path.
type CompileError struct {
	Path string
	Err  error
}

func (e *CompileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *CompileError) Unwrap() error { return e.Err }

// ExecError reports a template that compiled but failed while executing.
type ExecError struct {
	Path string
	Err  error
}

func (e *ExecError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *ExecError) Unwrap() error { return e.Err }

// PartialsError aggregates per-file failures from RegisterPartials.
type PartialsError struct {
	Dir  string
	Errs []error
}

func (e *PartialsError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("view: register partials from %s: %s", e.Dir, strings.Join(msgs, "; "))
}

func (e *PartialsError) Unwrap() []error { return e.Errs }
