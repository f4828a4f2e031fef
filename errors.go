package armkernel

import (
	"errors"
	"fmt"
)

// Error is a structured kernel error: an operation, a category code,
// a human-readable message, and an optionally wrapped cause.
type Error struct {
	Op    string    // operation that failed, e.g. "fork", "read"
	PID   int32     // process involved, -1 if not applicable
	FID   int32     // file descriptor involved, -1 if not applicable
	Code  ErrorCode // high-level error category
	Msg   string    // human-readable message
	Inner error     // wrapped error, if any
}

func (e *Error) Error() string {
	var parts []string
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}
	if e.PID >= 0 {
		parts = append(parts, fmt.Sprintf("pid=%d", e.PID))
	}
	if e.FID >= 0 {
		parts = append(parts, fmt.Sprintf("fid=%d", e.FID))
	}

	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}

	if len(parts) > 0 {
		return fmt.Sprintf("kernel: %s (%s)", msg, parts[0])
	}
	return fmt.Sprintf("kernel: %s", msg)
}

func (e *Error) Unwrap() error {
	return e.Inner
}

func (e *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == te.Code
}

// ErrorCode enumerates the kernel's failure categories.
type ErrorCode string

const (
	ErrCodeInvalidDescriptor    ErrorCode = "invalid descriptor"
	ErrCodeUnsupportedOperation ErrorCode = "unsupported operation"
	ErrCodePidNotFound          ErrorCode = "pid not found"
	ErrCodeTableFull            ErrorCode = "table full"
	ErrCodeInvalidMemoryRange   ErrorCode = "invalid memory range"
	ErrCodeKernelPanic          ErrorCode = "kernel panic"
)

// NewError creates a structured error with no PID/FID context.
func NewError(op string, code ErrorCode, msg string) *Error {
	return &Error{Op: op, PID: -1, FID: -1, Code: code, Msg: msg}
}

// NewProcessError creates a structured error scoped to a process.
func NewProcessError(op string, pid int32, code ErrorCode, msg string) *Error {
	return &Error{Op: op, PID: pid, FID: -1, Code: code, Msg: msg}
}

// NewDescriptorError creates a structured error scoped to a process's
// file descriptor.
func NewDescriptorError(op string, pid, fid int32, code ErrorCode, msg string) *Error {
	return &Error{Op: op, PID: pid, FID: fid, Code: code, Msg: msg}
}

// WrapError wraps an existing error with kernel operation context.
func WrapError(op string, inner error) *Error {
	if inner == nil {
		return nil
	}
	if ke, ok := inner.(*Error); ok {
		return &Error{Op: op, PID: ke.PID, FID: ke.FID, Code: ke.Code, Msg: ke.Msg, Inner: ke.Inner}
	}
	return &Error{Op: op, PID: -1, FID: -1, Code: ErrCodeKernelPanic, Msg: inner.Error(), Inner: inner}
}

// IsCode reports whether err is a *Error with the given code.
func IsCode(err error, code ErrorCode) bool {
	var kerr *Error
	if errors.As(err, &kerr) {
		return kerr.Code == code
	}
	return false
}
