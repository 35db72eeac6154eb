package errors

import (
	"fmt"
)

// RealmError is the interface for all structured errors in realmkit.
// It extends the standard error interface with the context callers need to
// decide whether a failed shutdown action is worth retrying.
type RealmError interface {
	error

	// Code returns the specific error code identifying the failure type.
	Code() ErrorCode

	// Category returns the error category for retry/handling decisions.
	Category() ErrorCategory

	// Retryable returns true if the operation may succeed on retry.
	Retryable() bool

	// Moniker returns the moniker of the node the error is attributed to,
	// or the empty string.
	Moniker() string

	// Unwrap returns the underlying error, if any.
	Unwrap() error
}

// Error is the concrete implementation of RealmError.
type Error struct {
	code      ErrorCode
	category  ErrorCategory
	message   string
	cause     error
	moniker   string
	retryable *bool // nil means use default based on category
}

var _ RealmError = (*Error)(nil)

// Error returns the error message.
func (e *Error) Error() string {
	msg := e.message
	if e.moniker != "" {
		msg = fmt.Sprintf("%s (node %s)", msg, e.moniker)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

// Code returns the error code.
func (e *Error) Code() ErrorCode {
	return e.code
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.category
}

// Retryable returns whether this error is retryable.
func (e *Error) Retryable() bool {
	if e.retryable != nil {
		return *e.retryable
	}
	return e.category.IsRetryable()
}

// Moniker returns the moniker of the node the error is attributed to.
func (e *Error) Moniker() string {
	return e.moniker
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Option is a functional option for configuring an Error.
type Option func(*Error)

// WithCategory overrides the default category.
func WithCategory(cat ErrorCategory) Option {
	return func(e *Error) {
		e.category = cat
	}
}

// WithRetryable explicitly sets whether the error is retryable.
func WithRetryable(retryable bool) Option {
	return func(e *Error) {
		e.retryable = &retryable
	}
}

// WithMoniker attributes the error to a node.
func WithMoniker(moniker string) Option {
	return func(e *Error) {
		e.moniker = moniker
	}
}

// WithCause sets the underlying cause.
func WithCause(cause error) Option {
	return func(e *Error) {
		e.cause = cause
	}
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string, opts ...Option) *Error {
	e := &Error{
		code:     code,
		category: code.DefaultCategory(),
		message:  message,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Newf creates a new Error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// FromCode creates an error with the default description for the code.
func FromCode(code ErrorCode, opts ...Option) *Error {
	return New(code, code.Description(), opts...)
}

// Invariantf creates an invariant-violation error. These replace the
// panics the algorithm would otherwise hit on declarations that static
// validation should have rejected; they are never retryable.
func Invariantf(format string, args ...interface{}) *Error {
	return New(ErrCodeInvariant, fmt.Sprintf(format, args...))
}

// Cyclef creates a dependency-cycle error.
func Cyclef(format string, args ...interface{}) *Error {
	return New(ErrCodeCycle, fmt.Sprintf(format, args...))
}

// StopFailed creates an error for a failed node-stop call.
func StopFailed(moniker string, cause error) *Error {
	return New(ErrCodeStopFailed, "node stop failed",
		WithMoniker(moniker), WithCause(cause))
}

// NotFound creates a not found error.
func NotFound(message string, opts ...Option) *Error {
	return New(ErrCodeNotFound, message, opts...)
}

// Unresolved creates an error for operations that need a resolved declaration.
func Unresolved(message string, opts ...Option) *Error {
	return New(ErrCodeUnresolved, message, opts...)
}
