// Package realm hosts live component instances. An Instance owns a stop
// primitive for its own execution, a resolved declaration describing the
// capabilities routed between its children, and the set of child instances
// currently placed under it.
//
// Shutting down an instance runs the dependency-ordered drain from the
// shutdown package over the whole subtree. Concurrent Shutdown calls on the
// same instance collapse into a single run; callers all observe the same
// result.
package realm
