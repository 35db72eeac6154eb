package errors

// ErrorCategory classifies errors by their nature and retry semantics.
type ErrorCategory string

// Error categories define how errors should be handled.
const (
	// CategoryTransient indicates temporary failures where retrying the
	// whole shutdown action may succeed. Already-stopped nodes stay stopped,
	// so a retry only exercises the nodes that failed or were never reached.
	CategoryTransient ErrorCategory = "transient"

	// CategoryPermanent indicates failures where retry will not help.
	CategoryPermanent ErrorCategory = "permanent"

	// CategoryInternal indicates invariant violations: declarations or
	// scheduler state that static validation should have made impossible.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// IsRetryable returns true if errors in this category may succeed on retry.
func (c ErrorCategory) IsRetryable() bool {
	return c == CategoryTransient
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes for shutdown and realm failures.
const (
	// Transient errors
	ErrCodeStopFailed  ErrorCode = "STOP_FAILED" // a node's stop primitive returned an error
	ErrCodeTimeout     ErrorCode = "TIMEOUT"     // stop primitive timed out
	ErrCodeCanceled    ErrorCode = "CANCELED"    // caller's context was canceled
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE" // runtime backing the stop primitive unavailable

	// Permanent errors
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"   // named child or collection does not exist
	ErrCodeConflict   ErrorCode = "CONFLICT"    // conflicting instance operation
	ErrCodeDestroyed  ErrorCode = "DESTROYED"   // instance was already destroyed
	ErrCodeUnresolved ErrorCode = "UNRESOLVED"  // operation requires a resolved declaration
	ErrCodeBadDecl    ErrorCode = "BAD_DECL"    // declaration input could not be decoded

	// Internal errors
	ErrCodeInternal  ErrorCode = "INTERNAL"         // unexpected internal error
	ErrCodeInvariant ErrorCode = "INVARIANT"        // declaration/scheduler invariant violated
	ErrCodeCycle     ErrorCode = "DEPENDENCY_CYCLE" // strong dependency cycle detected
)

// codeCategories maps codes to their default categories.
var codeCategories = map[ErrorCode]ErrorCategory{
	ErrCodeStopFailed:  CategoryTransient,
	ErrCodeTimeout:     CategoryTransient,
	ErrCodeCanceled:    CategoryTransient,
	ErrCodeUnavailable: CategoryTransient,

	ErrCodeNotFound:   CategoryPermanent,
	ErrCodeConflict:   CategoryPermanent,
	ErrCodeDestroyed:  CategoryPermanent,
	ErrCodeUnresolved: CategoryPermanent,
	ErrCodeBadDecl:    CategoryPermanent,

	ErrCodeInternal:  CategoryInternal,
	ErrCodeInvariant: CategoryInternal,
	ErrCodeCycle:     CategoryInternal,
}

// codeDescriptions provides default human-readable descriptions.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeStopFailed:  "node stop failed",
	ErrCodeTimeout:     "operation timed out",
	ErrCodeCanceled:    "operation canceled",
	ErrCodeUnavailable: "runtime unavailable",
	ErrCodeNotFound:    "instance not found",
	ErrCodeConflict:    "conflicting instance operation",
	ErrCodeDestroyed:   "instance destroyed",
	ErrCodeUnresolved:  "instance not resolved",
	ErrCodeBadDecl:     "malformed declaration input",
	ErrCodeInternal:    "internal error",
	ErrCodeInvariant:   "declaration invariant violated",
	ErrCodeCycle:       "strong dependency cycle",
}

// String returns the string representation of the code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the category this code belongs to. Unknown codes
// default to internal.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	if cat, ok := codeCategories[c]; ok {
		return cat
	}
	return CategoryInternal
}

// Description returns the default description for the code.
func (c ErrorCode) Description() string {
	if d, ok := codeDescriptions[c]; ok {
		return d
	}
	return string(c)
}
