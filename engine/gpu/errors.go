package gpu

import (
	"errors"
	"fmt"
)

var (
	ErrNilProgram       = errors.New("pipeline requires a shader program")
	ErrNotProgram       = errors.New("shader is not a program")
	ErrEmptySource      = errors.New("shader has neither GLSL source nor SPIR-V bytecode")
	ErrStageConflict    = errors.New("conflicting shader stages in program")
	ErrSlotConflict     = errors.New("conflicting binding slots in program")
	ErrBackendReleased  = errors.New("backend has been released")
	ErrUnsupportedStage = errors.New("shader stage not supported by backend")
	// ErrContextLost is matched by backend errors caused by a lost device or context.
	// The backend has already dropped its caches when it is returned.
	ErrContextLost = errors.New("device context lost")
)

// ResourceNotFoundError is returned when a shader bytecode file cannot be opened or read.
type ResourceNotFoundError struct {
	Path string
	Err  error
}

func (e *ResourceNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("resource `%s` not found: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("resource `%s` not found", e.Path)
}

func (e *ResourceNotFoundError) Unwrap() error { return e.Err }

// NativeCompilationError is returned when the native device rejects shader bytecode
// or a pipeline-state build.
type NativeCompilationError struct {
	// Op is the native operation that failed, e.g. "vkCreateShaderModule".
	Op     string
	Path   string
	Reason string
	Err    error
}

func (e *NativeCompilationError) Error() string {
	msg := e.Op + " failed"
	if e.Path != "" {
		msg += fmt.Sprintf(" for `%s`", e.Path)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%s)", e.Err)
	}
	return msg
}

func (e *NativeCompilationError) Unwrap() error { return e.Err }

// FormatConflictError is returned when two attributes of a Format collide.
type FormatConflictError struct {
	Slot   uint32
	Other  uint32
	Reason string
}

func (e *FormatConflictError) Error() string {
	if e.Slot == e.Other {
		return fmt.Sprintf("format conflict on slot %d: %s", e.Slot, e.Reason)
	}
	return fmt.Sprintf("format conflict between slots %d and %d: %s", e.Slot, e.Other, e.Reason)
}

// BackendCompilationError wraps a native link/build failure together with the
// backend diagnostic text. The Pipeline stays valid.
type BackendCompilationError struct {
	Backend  string
	Pipeline string
	Stage    ShaderStage
	Log      string
	Err      error
}

func (e *BackendCompilationError) Error() string {
	msg := fmt.Sprintf("%s: pipeline `%s` %s stage failed to build", e.Backend, e.Pipeline, e.Stage)
	if e.Log != "" {
		msg += ": " + e.Log
	}
	if e.Err != nil {
		msg += fmt.Sprintf(" (%s)", e.Err)
	}
	return msg
}

func (e *BackendCompilationError) Unwrap() error { return e.Err }
