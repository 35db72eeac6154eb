package shutdown

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vinayprograms/realmkit/errors"
	"github.com/vinayprograms/realmkit/logging"
	"github.com/vinayprograms/realmkit/moniker"
)

// Handle is the externally supplied stop primitive for one live node. The
// shutdown machinery owns a handle for the duration of one Execute call.
type Handle interface {
	// Stop halts the node's own execution and guarantees it will never be
	// started again. It does not touch the node's children.
	Stop(ctx context.Context) error

	// Shutdown runs the full dependency-ordered shutdown on the node's own
	// realm, children included.
	Shutdown(ctx context.Context) error
}

// Instance is the live node a shutdown action operates on.
type Instance interface {
	Handle

	// IsShutDown reports whether the node was already fully shut down.
	IsShutDown() bool

	// Resolved returns the declaration view, or false if no declaration was
	// ever resolved for this node.
	Resolved() (Component, bool)

	// LiveChild returns the handle of a live child instance.
	LiveChild(m moniker.Child) (Handle, bool)
}

// Shutdown stops every instance in the node's realm, consumers before the
// providers they depend on, and finally the node itself relative to its
// children. It is idempotent: a node that is already shut down is a no-op,
// and because per-node shut-down state persists on the instances, retrying
// after a stop failure only exercises the nodes that failed or were never
// reached.
func Shutdown(ctx context.Context, inst Instance, log *logging.Logger) error {
	if log == nil {
		log = logging.Nop()
	}
	if inst.IsShutDown() {
		return nil
	}
	state, ok := inst.Resolved()
	if !ok {
		// Never resolved: there are no children to order, halt directly.
		return inst.Stop(ctx)
	}
	job, err := NewJob(inst, state, log)
	if err != nil {
		return err
	}
	return job.Execute(ctx)
}

// Job holds the state required to shut down one realm: the expanded
// dependency index with an owned handle per live node.
type Job struct {
	index *depIndex
	log   *logging.Logger
}

// NewJob examines the node's declaration view and live children and builds
// the dependency index used by Execute. The index is derived fresh from the
// current snapshot on every shutdown invocation; nothing is persisted.
func NewJob(inst Instance, state Component, log *logging.Logger) (*Job, error) {
	dm, err := ProcessDependencies(state)
	if err != nil {
		return nil, err
	}
	index, err := newDepIndex(dm, func(m NodeMoniker) (Handle, error) {
		if m.IsSelf() {
			return inst, nil
		}
		child, _ := m.Child()
		handle, ok := inst.LiveChild(child)
		if !ok {
			return nil, errors.Invariantf(
				"%s is in the dependency graph but not among live children", m)
		}
		return handle, nil
	})
	if err != nil {
		return nil, err
	}
	return &Job{
		index: index,
		log:   log.WithRunID(uuid.NewString()[:8]),
	}, nil
}

type stopResult struct {
	moniker NodeMoniker
	err     error
}

// Execute drains the dependency index: every node with no remaining
// dependents is stopped concurrently, whichever stop finishes first is
// pruned from its providers, and providers that become free of dependents
// join the ready queue. A stop failure aborts immediately with no rollback;
// nodes already stopped stay stopped and unreached nodes stay running.
//
// Execute must be called at most once per Job.
func (j *Job) Execute(ctx context.Context) error {
	started := time.Now()
	total := j.index.size()

	// Buffered to capacity so a stop call that finishes after an early error
	// return never blocks. There is no cancellation at this layer: an issued
	// stop runs to completion because the tree's consistency depends on it.
	results := make(chan stopResult, total)

	ready := j.index.takeReady()
	inFlight := 0
	for len(ready) > 0 || inFlight > 0 {
		for _, e := range ready {
			j.index.start(e)
			inFlight++
			go j.stopNode(ctx, e.moniker, e.handle, results)
		}
		ready = ready[:0]

		res := <-results
		inFlight--
		if res.err != nil {
			if _, ok := errors.AsRealmError(res.err); ok {
				return errors.Wrap(res.err, "shutdown aborted")
			}
			return errors.StopFailed(res.moniker.String(), res.err)
		}

		newlyReady, err := j.index.markDone(res.moniker)
		if err != nil {
			return err
		}
		ready = append(ready, newlyReady...)
	}

	if remaining := j.index.unfinished(); len(remaining) > 0 {
		// Static validation rejects strong dependency cycles, so a stuck
		// drain means internal state is inconsistent.
		return errors.Cyclef(
			"no node is ready to stop but %d remain (%v): strong dependency cycle",
			len(remaining), remaining)
	}

	j.log.ShutdownComplete(total, time.Since(started))
	return nil
}

// stopNode issues the stop call for one node. Stopping self halts the
// component's own execution; stopping a child recurses the whole shutdown
// action into the child's realm.
func (j *Job) stopNode(ctx context.Context, m NodeMoniker, h Handle, results chan<- stopResult) {
	j.log.StopStart(m.String())
	started := time.Now()

	var err error
	if m.IsSelf() {
		err = h.Stop(ctx)
	} else {
		err = h.Shutdown(ctx)
	}

	j.log.StopResult(m.String(), time.Since(started), err)
	results <- stopResult{moniker: m, err: err}
}
