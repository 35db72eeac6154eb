// Package errors provides the structured error taxonomy for realmkit.
//
// # Error Categories
//
// Errors are classified into three categories:
//
//   - Transient: failures where retrying the shutdown action may succeed
//     (a node's stop primitive failed, timed out, or was interrupted)
//   - Permanent: failures where retry will not help (unknown child, action
//     on a destroyed instance)
//   - Internal: invariant violations in declarations or scheduler state that
//     static validation should have made impossible
//
// # Invariant violations
//
// Malformed declarations (an offer whose target does not exist, a dynamic
// child appearing in a static offer, a self-sourced storage cycle, a strong
// dependency cycle) are reported with ErrCodeInvariant or ErrCodeCycle.
// These carry the Internal category and are never retryable: they indicate a
// declaration that should have been rejected before it ever reached the
// shutdown machinery, so callers must not treat them like an ordinary stop
// failure.
//
// # Usage
//
// Create a new error:
//
//	err := errors.New(errors.ErrCodeStopFailed, "stop primitive failed")
//
// Wrap an existing error with context:
//
//	wrapped := errors.Wrap(err, "shutting down child logger:0")
//
// Check whether a shutdown action is worth retrying:
//
//	if realmErr, ok := errors.AsRealmError(err); ok && realmErr.Retryable() {
//	    // retry the shutdown action; already-stopped nodes are skipped
//	}
package errors
