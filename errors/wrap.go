package errors

import (
	"context"
	"errors"
	"fmt"
)

// Wrap wraps an error with additional context while preserving the error chain.
// If err is nil, Wrap returns nil.
// If err is already a realmkit Error, its code, category, and attribution
// are preserved. Context errors map to their transient codes. Anything else
// becomes an internal error wrapping the original.
func Wrap(err error, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}

	var realmErr *Error
	if errors.As(err, &realmErr) {
		wrapped := &Error{
			code:      realmErr.code,
			category:  realmErr.category,
			message:   message,
			cause:     err,
			moniker:   realmErr.moniker,
			retryable: realmErr.retryable,
		}
		for _, opt := range opts {
			opt(wrapped)
		}
		return wrapped
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(ErrCodeTimeout, message, append(opts, WithCause(err))...)
	}
	if errors.Is(err, context.Canceled) {
		return New(ErrCodeCanceled, message, append(opts, WithCause(err))...)
	}

	return New(ErrCodeInternal, message, append(opts, WithCause(err))...)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific error code.
func WrapWithCode(err error, code ErrorCode, message string, opts ...Option) *Error {
	if err == nil {
		return nil
	}
	opts = append(opts, WithCause(err))
	return New(code, message, opts...)
}

// AsRealmError extracts a RealmError from an error chain.
func AsRealmError(err error) (RealmError, bool) {
	var realmErr *Error
	if errors.As(err, &realmErr) {
		return realmErr, true
	}
	return nil, false
}

// IsRetryable reports whether the error chain indicates a retryable failure.
// Unknown errors are not retryable.
func IsRetryable(err error) bool {
	if realmErr, ok := AsRealmError(err); ok {
		return realmErr.Retryable()
	}
	return false
}

// IsInvariant reports whether the error chain contains an invariant
// violation or dependency cycle.
func IsInvariant(err error) bool {
	realmErr, ok := AsRealmError(err)
	if !ok {
		return false
	}
	return realmErr.Code() == ErrCodeInvariant || realmErr.Code() == ErrCodeCycle
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need to import both error packages.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
