package shutdown

import (
	"sort"

	"github.com/vinayprograms/realmkit/errors"
)

// nodeState tracks where a node is in the drain.
type nodeState uint8

const (
	// stateWaiting: the node still has dependents that must stop first.
	stateWaiting nodeState = iota
	// stateReady: no remaining dependents; a stop call has not started yet.
	stateReady
	// stateInFlight: the node's stop call was issued and has not finished.
	stateInFlight
	// stateDone: the node's stop call completed successfully.
	stateDone
)

// nodeEntry tracks one live node through the drain.
type nodeEntry struct {
	moniker NodeMoniker
	state   nodeState

	// dependents are the nodes that must stop before this one; the set
	// shrinks as they finish.
	dependents map[NodeMoniker]struct{}

	// providers are the nodes whose dependent sets contain this node, kept
	// as the inverse of dependents so completion can prune in O(edges).
	providers []NodeMoniker

	handle Handle
}

// depIndex is the bidirectional dependency index for one shutdown job. Both
// directions are built together and only mutated through markDone, so the
// inverse invariant holds by construction rather than caller discipline.
type depIndex struct {
	entries map[NodeMoniker]*nodeEntry
}

// newDepIndex builds the index from an expanded dependency map, resolving
// each node to its owned handle.
func newDepIndex(dm map[NodeMoniker]map[NodeMoniker]struct{}, resolve func(NodeMoniker) (Handle, error)) (*depIndex, error) {
	x := &depIndex{entries: make(map[NodeMoniker]*nodeEntry, len(dm))}
	for m, dependents := range dm {
		handle, err := resolve(m)
		if err != nil {
			return nil, err
		}
		set := make(map[NodeMoniker]struct{}, len(dependents))
		for d := range dependents {
			set[d] = struct{}{}
		}
		x.entries[m] = &nodeEntry{moniker: m, dependents: set, handle: handle}
	}
	for _, e := range x.entries {
		for d := range e.dependents {
			dependent, ok := x.entries[d]
			if !ok {
				return nil, errors.Invariantf(
					"%s is recorded as a dependent of %s but is not a live node", d, e.moniker)
			}
			dependent.providers = append(dependent.providers, e.moniker)
		}
	}
	return x, nil
}

// size returns the number of nodes in the index.
func (x *depIndex) size() int {
	return len(x.entries)
}

// takeReady transitions every waiting node with no remaining dependents to
// ready and returns them.
func (x *depIndex) takeReady() []*nodeEntry {
	var ready []*nodeEntry
	for _, e := range x.entries {
		if e.state == stateWaiting && len(e.dependents) == 0 {
			e.state = stateReady
			ready = append(ready, e)
		}
	}
	return ready
}

// start marks a ready node's stop call as issued.
func (x *depIndex) start(e *nodeEntry) {
	e.state = stateInFlight
}

// markDone records that a node's stop call completed, prunes it from its
// providers' dependent sets, and returns any providers that became ready.
func (x *depIndex) markDone(m NodeMoniker) ([]*nodeEntry, error) {
	e, ok := x.entries[m]
	if !ok {
		return nil, errors.Invariantf("unknown node %s reported as stopped", m)
	}
	e.state = stateDone

	var ready []*nodeEntry
	for _, p := range e.providers {
		provider, ok := x.entries[p]
		if !ok || provider.state == stateDone {
			// A provider finishing before its dependent means the ordering
			// guarantee was already broken.
			return nil, errors.Invariantf(
				"%s appears to have stopped before its dependent %s", p, m)
		}
		delete(provider.dependents, m)
		if provider.state == stateWaiting && len(provider.dependents) == 0 {
			provider.state = stateReady
			ready = append(ready, provider)
		}
	}
	return ready, nil
}

// unfinished returns the nodes that never became ready, sorted for stable
// diagnostics. Non-empty after a full drain means a strong dependency cycle.
func (x *depIndex) unfinished() []string {
	var out []string
	for _, e := range x.entries {
		if e.state == stateWaiting {
			out = append(out, e.moniker.String())
		}
	}
	sort.Strings(out)
	return out
}
