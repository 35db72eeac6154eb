// Package shutdown implements graceful, dependency-ordered shutdown of a
// realm: a component instance together with its children.
//
// # Overview
//
// Children of a realm are related both by containment and by declared
// capability routing: offers between siblings, environments whose runners and
// resolvers are sourced from siblings, storage capabilities backed by a
// sibling, and capabilities the realm itself consumes from a child. A
// consumer must halt before any provider it depends on, so shutting a realm
// down means deriving a dependency graph from the declaration snapshot and
// draining it with maximum safe concurrency.
//
// # Architecture
//
//	┌────────────────────────────────────────────────────────────────┐
//	│                            Job                                 │
//	├────────────────────────────────────────────────────────────────┤
//	│  Component view ──► ProcessDependencies ──► dependency index   │
//	│  (decl snapshot)     offers/environments     provider ──► set  │
//	│                      /uses/storage edges     of dependents,    │
//	│                                              plus the inverse  │
//	│                                                                │
//	│  Execute: stop every node with no remaining dependents, wait   │
//	│  for whichever stop finishes first, prune it from its          │
//	│  providers, repeat until the index drains.                     │
//	└────────────────────────────────────────────────────────────────┘
//
// Stopping a child recurses this same action into the child's own realm, so
// sibling concurrency is flat at each level and composes depth-first
// underneath.
//
// # Usage
//
// The entry point is Shutdown, which is idempotent:
//
//	if err := shutdown.Shutdown(ctx, instance, logger); err != nil {
//	    if errors.IsRetryable(err) {
//	        // Retry later. Nodes that already stopped stay stopped, so a
//	        // retry only exercises the nodes that failed or were unreached.
//	    }
//	}
//
// # Ordering rules
//
// Only static declarations contribute edges. Weak and weak-for-migration
// dependencies never do. Event offers never do. Offers sourced from a
// collection are deliberately not considered: dynamic children participate
// in ordering only through environments and collection membership. A
// malformed declaration (an edge to a child that does not exist, a dynamic
// child in a static offer, storage backed by its own component) surfaces as
// an invariant-violation error; static validation upstream should have made
// those impossible.
package shutdown
