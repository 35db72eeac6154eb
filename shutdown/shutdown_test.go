package shutdown

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vinayprograms/realmkit/decl"
	"github.com/vinayprograms/realmkit/moniker"
)

// fakeComponent implements Component from a declaration plus minimal runtime
// state (dynamic children).
type fakeComponent struct {
	decl    decl.Decl
	dynamic []Child
}

func (f *fakeComponent) Uses() []decl.Use                 { return f.decl.Uses }
func (f *fakeComponent) Exposes() []decl.Expose           { return f.decl.Exposes }
func (f *fakeComponent) Offers() []decl.Offer             { return f.decl.Offers }
func (f *fakeComponent) Capabilities() []decl.Capability  { return f.decl.Capabilities }
func (f *fakeComponent) Collections() []decl.Collection   { return f.decl.Collections }
func (f *fakeComponent) Environments() []decl.Environment { return f.decl.Environments }

func (f *fakeComponent) Children() []Child {
	var out []Child
	for _, c := range f.decl.Children {
		out = append(out, Child{
			Moniker:     moniker.StaticChild(c.Name),
			Environment: c.Environment,
			Live:        true,
		})
	}
	return append(out, f.dynamic...)
}

// child parses a node moniker for expectations: "self" or a child moniker
// like "a:0" or "coll:dyn1:1".
func node(s string) NodeMoniker {
	if s == "self" {
		return SelfNode()
	}
	return ChildNode(moniker.MustParse(s))
}

// wantDeps asserts the expanded dependency map matches want, where keys and
// values use the node() notation.
func wantDeps(t *testing.T, c Component, want map[string][]string) {
	t.Helper()
	got, err := ProcessDependencies(c)
	if err != nil {
		t.Fatalf("ProcessDependencies failed: %v", err)
	}

	expected := make(map[NodeMoniker]map[NodeMoniker]struct{}, len(want))
	for k, deps := range want {
		set := make(map[NodeMoniker]struct{}, len(deps))
		for _, d := range deps {
			set[node(d)] = struct{}{}
		}
		expected[node(k)] = set
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("dependency map mismatch\n got: %v\nwant: %v", render(got), render(expected))
	}
}

func render(m map[NodeMoniker]map[NodeMoniker]struct{}) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, deps := range m {
		var list []string
		for d := range deps {
			list = append(list, d.String())
		}
		sort.Strings(list)
		out[k.String()] = list
	}
	return out
}

// --- declaration shorthand ---

func protocolOffer(source, target decl.Ref, name string) decl.Offer {
	return decl.Offer{Kind: decl.KindProtocol, Source: source, SourceName: name, Target: target, TargetName: name}
}

func weakProtocolOffer(source, target decl.Ref, name string, dep decl.DependencyType) decl.Offer {
	o := protocolOffer(source, target, name)
	o.Dependency = dep
	return o
}

func serviceOffer(source, target decl.Ref, name string) decl.Offer {
	return decl.Offer{Kind: decl.KindService, Source: source, SourceName: name, Target: target, TargetName: name}
}

func storageOffer(source, target decl.Ref, name string) decl.Offer {
	return decl.Offer{Kind: decl.KindStorage, Source: source, SourceName: name, Target: target, TargetName: name}
}

func useProtocol(source decl.Ref, name string, dep decl.DependencyType) decl.Use {
	return decl.Use{Kind: decl.KindProtocol, Source: source, SourceName: name, Dependency: dep}
}

func runnerEnv(name, sourceChild, runner string) decl.Environment {
	return decl.Environment{
		Name: name,
		Registrations: []decl.Registration{
			{Kind: decl.RegistrationRunner, Source: decl.ChildRef(sourceChild), SourceName: runner},
		},
	}
}

func children(names ...string) []decl.Child {
	var out []decl.Child
	for _, n := range names {
		out = append(out, decl.Child{Name: n})
	}
	return out
}

// --- scheduler fakes ---

// recorder captures the order in which stop calls complete.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = append(r.order, name)
}

func (r *recorder) sequence() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// assertBefore fails unless a and b both completed and a completed first.
func (r *recorder) assertBefore(t *testing.T, a, b string) {
	t.Helper()
	seq := r.sequence()
	ai, bi := -1, -1
	for i, s := range seq {
		if s == a {
			ai = i
		}
		if s == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		t.Fatalf("expected both %q and %q to stop, got %v", a, b, seq)
	}
	if ai > bi {
		t.Fatalf("expected %q to stop before %q, got %v", a, b, seq)
	}
}

// fakeHandle records stop traffic for one node.
type fakeHandle struct {
	name string
	rec  *recorder
	err  error

	// barrier, when set, is waited on before the call records, letting
	// tests prove that independent stops overlap.
	barrier *sync.WaitGroup

	stopCalls     atomic.Int32
	shutdownCalls atomic.Int32
}

func (h *fakeHandle) settle() error {
	if h.barrier != nil {
		h.barrier.Done()
		waitWithTimeout(h.barrier)
	}
	if h.err != nil {
		return h.err
	}
	h.rec.add(h.name)
	return nil
}

func (h *fakeHandle) Stop(ctx context.Context) error {
	h.stopCalls.Add(1)
	return h.settle()
}

func (h *fakeHandle) Shutdown(ctx context.Context) error {
	h.shutdownCalls.Add(1)
	return h.settle()
}

func waitWithTimeout(wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		panic("barrier never released; stops did not overlap")
	}
}

// fakeInstance implements Instance over a fakeComponent.
type fakeInstance struct {
	*fakeHandle
	component *fakeComponent
	resolved  bool
	shutDown  bool
	children  map[moniker.Child]*fakeHandle
}

func newFakeInstance(d decl.Decl, dynamic ...Child) *fakeInstance {
	rec := &recorder{}
	component := &fakeComponent{decl: d, dynamic: dynamic}
	inst := &fakeInstance{
		fakeHandle: &fakeHandle{name: "self", rec: rec},
		component:  component,
		resolved:   true,
		children:   make(map[moniker.Child]*fakeHandle),
	}
	for _, c := range component.Children() {
		inst.children[c.Moniker] = &fakeHandle{name: c.Moniker.String(), rec: rec}
	}
	return inst
}

func (i *fakeInstance) IsShutDown() bool { return i.shutDown }

func (i *fakeInstance) Resolved() (Component, bool) {
	if !i.resolved {
		return nil, false
	}
	return i.component, true
}

func (i *fakeInstance) LiveChild(m moniker.Child) (Handle, bool) {
	h, ok := i.children[m]
	return h, ok
}

func (i *fakeInstance) child(t *testing.T, s string) *fakeHandle {
	t.Helper()
	h, ok := i.children[moniker.MustParse(s)]
	if !ok {
		t.Fatalf("no fake child %q", s)
	}
	return h
}
