package realm

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/vinayprograms/realmkit/decl"
	"github.com/vinayprograms/realmkit/errors"
	"github.com/vinayprograms/realmkit/logging"
	"github.com/vinayprograms/realmkit/moniker"
	"github.com/vinayprograms/realmkit/shutdown"
)

// StopFunc halts the component's own execution. It must leave the component
// unable to run again; it is never called for the component's children.
type StopFunc func(ctx context.Context) error

// Option configures an Instance at construction time.
type Option func(*Instance)

// WithLogger sets the logger used for lifecycle events. The default
// discards everything.
func WithLogger(log *logging.Logger) Option {
	return func(i *Instance) {
		i.log = log
	}
}

// childRecord tracks one placed child.
type childRecord struct {
	instance    *Instance
	environment string
	live        bool
}

// resolvedState is the declaration-derived view of an instance, populated by
// Resolve and grown by child placement.
type resolvedState struct {
	decl     decl.Decl
	children map[moniker.Child]*childRecord

	// collections tracks the last instance id handed out per collection.
	collections map[string]uint32
}

// Instance is one live component in the tree.
type Instance struct {
	uid    string
	name   string
	log    *logging.Logger
	stopFn StopFunc

	mu       sync.Mutex
	resolved *resolvedState
	shutDown bool

	actions singleflight.Group
}

// New creates an unresolved instance around a stop primitive. A nil stop
// function is treated as an immediate successful stop.
func New(name string, stop StopFunc, opts ...Option) *Instance {
	i := &Instance{
		uid:    uuid.NewString(),
		name:   name,
		log:    logging.Nop(),
		stopFn: stop,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.log = i.log.WithComponent(name)
	return i
}

// UID returns the unique id assigned to this instance at creation.
func (i *Instance) UID() string { return i.uid }

// Name returns the instance's name within its parent.
func (i *Instance) Name() string { return i.name }

// Resolve attaches a declaration to the instance. Children named by the
// declaration still have to be placed with AddChild before they participate
// in shutdown ordering.
func (i *Instance) Resolve(d decl.Decl) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.shutDown {
		return errors.New(errors.ErrCodeDestroyed, "instance is shut down",
			errors.WithMoniker(i.name))
	}
	if i.resolved != nil {
		return errors.New(errors.ErrCodeConflict, "instance is already resolved",
			errors.WithMoniker(i.name))
	}
	i.resolved = &resolvedState{
		decl:        d,
		children:    make(map[moniker.Child]*childRecord),
		collections: make(map[string]uint32),
	}
	return nil
}

// AddChild places a static child. The child's name must appear in the
// resolved declaration; its environment is taken from there.
func (i *Instance) AddChild(child *Instance) (moniker.Child, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	state, err := i.mutableState()
	if err != nil {
		return moniker.Child{}, err
	}
	d, ok := state.decl.Child(child.name)
	if !ok {
		return moniker.Child{}, errors.NotFound(
			"child is not in the declaration", errors.WithMoniker(child.name))
	}
	m := moniker.StaticChild(child.name)
	if _, exists := state.children[m]; exists {
		return moniker.Child{}, errors.New(errors.ErrCodeConflict,
			"child already placed", errors.WithMoniker(m.String()))
	}
	state.children[m] = &childRecord{
		instance:    child,
		environment: d.Environment,
		live:        true,
	}
	return m, nil
}

// CreateChild places a dynamic child in a collection, assigning the next
// instance id. Instance ids start at 1 and are never reused within the
// lifetime of this instance.
func (i *Instance) CreateChild(collection string, child *Instance) (moniker.Child, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	state, err := i.mutableState()
	if err != nil {
		return moniker.Child{}, err
	}
	coll, ok := state.decl.Collection(collection)
	if !ok {
		return moniker.Child{}, errors.NotFound(
			"collection is not in the declaration", errors.WithMoniker(collection))
	}
	state.collections[collection]++
	m := moniker.DynamicChild(collection, child.name, state.collections[collection])
	state.children[m] = &childRecord{
		instance:    child,
		environment: coll.Environment,
		live:        true,
	}
	return m, nil
}

// MarkChildDeleted takes a dynamic child out of the live set. A deleted
// child no longer participates in shutdown; the caller is responsible for
// having stopped it first. Static children exist for the lifetime of their
// parent and cannot be deleted.
func (i *Instance) MarkChildDeleted(m moniker.Child) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	state, err := i.mutableState()
	if err != nil {
		return err
	}
	if !m.IsDynamic() {
		return errors.New(errors.ErrCodeConflict,
			"static children cannot be deleted", errors.WithMoniker(m.String()))
	}
	rec, ok := state.children[m]
	if !ok {
		return errors.NotFound("no such child", errors.WithMoniker(m.String()))
	}
	rec.live = false
	return nil
}

// mutableState returns the resolved state for modification. Callers hold mu.
func (i *Instance) mutableState() (*resolvedState, error) {
	if i.shutDown {
		return nil, errors.New(errors.ErrCodeDestroyed, "instance is shut down",
			errors.WithMoniker(i.name))
	}
	if i.resolved == nil {
		return nil, errors.Unresolved("instance has no resolved declaration",
			errors.WithMoniker(i.name))
	}
	return i.resolved, nil
}

// Stop halts this instance's own execution and marks it shut down. It does
// not touch children; use Shutdown for the ordered subtree drain. Stopping
// an already stopped instance is a no-op.
func (i *Instance) Stop(ctx context.Context) error {
	i.mu.Lock()
	if i.shutDown {
		i.mu.Unlock()
		return nil
	}
	stop := i.stopFn
	i.mu.Unlock()

	if stop != nil {
		if err := stop(ctx); err != nil {
			// Leave shutDown unset so a retry reaches the stop primitive again.
			return errors.StopFailed(i.name, err)
		}
	}

	i.mu.Lock()
	i.shutDown = true
	i.mu.Unlock()
	return nil
}

// Shutdown stops every instance in this subtree, consumers before the
// providers they depend on and children before this instance. Concurrent
// calls share a single run.
func (i *Instance) Shutdown(ctx context.Context) error {
	_, err, _ := i.actions.Do("shutdown", func() (interface{}, error) {
		return nil, shutdown.Shutdown(ctx, i, i.log)
	})
	return err
}

// IsShutDown reports whether the instance finished stopping.
func (i *Instance) IsShutDown() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.shutDown
}

// Resolved returns the declaration view consumed by the shutdown machinery.
// The view is a snapshot: later child placement is not reflected in it.
func (i *Instance) Resolved() (shutdown.Component, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.resolved == nil {
		return nil, false
	}
	v := &declView{decl: i.resolved.decl}
	for m, rec := range i.resolved.children {
		v.children = append(v.children, shutdown.Child{
			Moniker:     m,
			Environment: rec.environment,
			Live:        rec.live,
		})
	}
	return v, true
}

// LiveChild returns the live child instance at the given moniker.
func (i *Instance) LiveChild(m moniker.Child) (shutdown.Handle, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.resolved == nil {
		return nil, false
	}
	rec, ok := i.resolved.children[m]
	if !ok || !rec.live {
		return nil, false
	}
	return rec.instance, true
}

// declView adapts a resolved snapshot to the shutdown package's component
// view. Built under the instance lock so it can be read without one.
type declView struct {
	decl     decl.Decl
	children []shutdown.Child
}

func (v *declView) Uses() []decl.Use                 { return v.decl.Uses }
func (v *declView) Exposes() []decl.Expose           { return v.decl.Exposes }
func (v *declView) Offers() []decl.Offer             { return v.decl.Offers }
func (v *declView) Capabilities() []decl.Capability  { return v.decl.Capabilities }
func (v *declView) Collections() []decl.Collection   { return v.decl.Collections }
func (v *declView) Environments() []decl.Environment { return v.decl.Environments }
func (v *declView) Children() []shutdown.Child       { return v.children }
