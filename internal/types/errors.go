package types

import (
	"errors"
	"fmt"
)

// DispatchError is the typed failure of a dispatched call. Module and Code
// identify the failure; Message is the human-readable form.
//
// Engines declare their failures as package-level sentinels and may wrap them
// with call-specific detail; errors.Is matches through the wrapping by
// module and code.
type DispatchError struct {
	Module  string
	Code    string
	Message string
}

// NewDispatchError declares a dispatch error for a module.
func NewDispatchError(module, code, message string) *DispatchError {
	return &DispatchError{Module: module, Code: code, Message: message}
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Module, e.Code, e.Message)
}

// Is reports whether target is a DispatchError with the same module and code.
func (e *DispatchError) Is(target error) bool {
	var t *DispatchError
	if !errors.As(target, &t) {
		return false
	}
	return t.Module == e.Module && t.Code == e.Code
}

// AsDispatchError extracts the DispatchError from an error chain.
func AsDispatchError(err error) (*DispatchError, bool) {
	var de *DispatchError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// ErrorCode returns "module.Code" for dispatch errors, "ok" for nil and
// "other" for anything else.
func ErrorCode(err error) string {
	if err == nil {
		return "ok"
	}
	if de, ok := AsDispatchError(err); ok {
		return de.Module + "." + de.Code
	}
	return "other"
}
