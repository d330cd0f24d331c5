// Package engineerr provides unified error handling for the simulation runtime.
package engineerr

import (
	"errors"
	"fmt"
)

// Code identifies a distinct failure kind from spec section 7.
type Code string

const (
	CodeUnregisteredComponent Code = "UNREGISTERED_COMPONENT"
	CodeModeDisallowed        Code = "MODE_DISALLOWED"
	CodeSchemaValidation      Code = "SCHEMA_VALIDATION_FAILED"
	CodeInvalidSchema         Code = "INVALID_SCHEMA"
	CodeUnsupportedVersion    Code = "UNSUPPORTED_VERSION"
	CodeDeserialization       Code = "DESERIALIZATION_ERROR"
	CodeJobNotFound           Code = "JOB_NOT_FOUND"
	CodeSystemNotFound        Code = "SYSTEM_NOT_FOUND"
	CodeHandlerNotFound       Code = "HANDLER_NOT_FOUND"
	CodePluginLoadFailed      Code = "PLUGIN_LOAD_FAILED"
	CodeWorldgenNotFound      Code = "WORLDGEN_NOT_FOUND"
	CodeSnapshotNotFound      Code = "SNAPSHOT_NOT_FOUND"
)

// EngineError is a structured error carrying a stable code and optional details.
type EngineError struct {
	Code    Code
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error, if any.
func (e *EngineError) Unwrap() error {
	return e.Err
}

// WithDetails attaches additional diagnostic context and returns the error
// for chaining.
func (e *EngineError) WithDetails(key string, value interface{}) *EngineError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new EngineError.
func New(code Code, message string) *EngineError {
	return &EngineError{Code: code, Message: message}
}

// Wrap wraps an existing error with an EngineError.
func Wrap(code Code, message string, err error) *EngineError {
	return &EngineError{Code: code, Message: message, Err: err}
}

// Is reports whether err (or any error in its chain) carries the given code.
func Is(err error, code Code) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Code == code
	}
	return false
}

func UnregisteredComponent(name string) *EngineError {
	return New(CodeUnregisteredComponent, fmt.Sprintf("component %q is not registered", name)).
		WithDetails("component", name)
}

func ModeDisallowed(component, mode string) *EngineError {
	return New(CodeModeDisallowed, fmt.Sprintf("component %q not allowed in mode %q", component, mode)).
		WithDetails("component", component).
		WithDetails("mode", mode)
}

func SchemaValidationFailed(component string, violations []string) *EngineError {
	msg := "schema validation failed"
	if len(violations) > 0 {
		msg = fmt.Sprintf("schema validation failed: %s", joinComma(violations))
	}
	return New(CodeSchemaValidation, msg).
		WithDetails("component", component).
		WithDetails("violations", violations)
}

func InvalidSchema(component string, err error) *EngineError {
	return Wrap(CodeInvalidSchema, fmt.Sprintf("schema for %q failed to compile", component), err).
		WithDetails("component", component)
}

func UnsupportedVersion(version string) *EngineError {
	return New(CodeUnsupportedVersion, fmt.Sprintf("migration cannot handle version %q", version)).
		WithDetails("version", version)
}

func DeserializationError(err error) *EngineError {
	return Wrap(CodeDeserialization, "failed to decode persisted data", err)
}

func JobNotFound(id string) *EngineError {
	return New(CodeJobNotFound, fmt.Sprintf("job %q not found", id)).WithDetails("job", id)
}

func SystemNotFound(name string) *EngineError {
	return New(CodeSystemNotFound, fmt.Sprintf("system %q not found", name)).WithDetails("system", name)
}

func HandlerNotFound(name string) *EngineError {
	return New(CodeHandlerNotFound, fmt.Sprintf("handler %q not found", name)).WithDetails("handler", name)
}

func PluginLoadFailed(path string, err error) *EngineError {
	return Wrap(CodePluginLoadFailed, fmt.Sprintf("failed to load plugin %q", path), err).
		WithDetails("path", path)
}

func WorldgenNotFound(name string) *EngineError {
	return New(CodeWorldgenNotFound, fmt.Sprintf("worldgen generator %q not found", name)).
		WithDetails("generator", name)
}

func SnapshotNotFound(id string) *EngineError {
	return New(CodeSnapshotNotFound, fmt.Sprintf("snapshot %q not found", id)).
		WithDetails("id", id)
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
