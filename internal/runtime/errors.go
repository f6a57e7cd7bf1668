package runtime

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes runtime errors. Dispatch errors raised by the engines
// are not runtime errors; they are recorded as call outcomes.
type ErrorCode string

const (
	// ErrCodeUnknownCall indicates a method with no registered handler.
	ErrCodeUnknownCall ErrorCode = "E_UNKNOWN_CALL"

	// ErrCodeDecode indicates call arguments or an origin that do not decode.
	ErrCodeDecode ErrorCode = "E_DECODE"

	// ErrCodeBlockFull indicates the per-block call quota is exhausted.
	ErrCodeBlockFull ErrorCode = "E_BLOCK_FULL"

	// ErrCodeStore indicates the recorder failed to persist the log.
	ErrCodeStore ErrorCode = "E_STORE"

	// ErrCodeReplayDiverged indicates replay produced a different log.
	ErrCodeReplayDiverged ErrorCode = "E_REPLAY_DIVERGED"
)

// Error is a runtime failure that prevented a call or block from being
// applied or verified.
type Error struct {
	Code    ErrorCode
	Message string
	Method  string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Method != "" {
		msg += fmt.Sprintf(" (method=%s)", e.Method)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnknownCallError reports whether err is an E_UNKNOWN_CALL error.
func IsUnknownCallError(err error) bool { return hasCode(err, ErrCodeUnknownCall) }

// IsDecodeError reports whether err is an E_DECODE error.
func IsDecodeError(err error) bool { return hasCode(err, ErrCodeDecode) }

// IsBlockFullError reports whether err is an E_BLOCK_FULL error.
func IsBlockFullError(err error) bool { return hasCode(err, ErrCodeBlockFull) }

// IsStoreError reports whether err is an E_STORE error.
func IsStoreError(err error) bool { return hasCode(err, ErrCodeStore) }

// IsReplayDivergedError reports whether err is an E_REPLAY_DIVERGED error.
func IsReplayDivergedError(err error) bool { return hasCode(err, ErrCodeReplayDiverged) }

func storeError(what string, err error) *Error {
	return &Error{Code: ErrCodeStore, Message: what, Err: err}
}
