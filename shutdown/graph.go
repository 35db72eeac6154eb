package shutdown

import (
	"github.com/vinayprograms/realmkit/decl"
	"github.com/vinayprograms/realmkit/errors"
	"github.com/vinayprograms/realmkit/moniker"
)

type nodeSet map[depNode]struct{}

// dependencyMap maps a provider to the set of its dependents: the nodes
// that must stop before it.
type dependencyMap map[depNode]nodeSet

// ProcessDependencies identifies capability dependencies between the
// component and its children. The returned map goes from a provider node to
// the set of nodes which consume capabilities from it; every consumer must
// be stopped before its provider. Symbolic collections are expanded into
// their live members, so the keys and values are concrete instance monikers.
//
// A routing edge whose source or target is not present among the component's
// children and collections is an invariant violation: the declaration should
// have been rejected by static validation before it got here.
func ProcessDependencies(c Component) (map[NodeMoniker]map[NodeMoniker]struct{}, error) {
	dm := dependencyMap{}
	for _, child := range StaticChildren(c) {
		dm[childDep(child.Moniker.Name)] = nodeSet{}
	}
	for _, coll := range c.Collections() {
		dm[collectionDep(coll.Name)] = nodeSet{}
	}
	dm[selfDep()] = nodeSet{}

	if err := addOfferDependencies(c, dm); err != nil {
		return nil, err
	}
	if err := addEnvironmentDependencies(c, dm); err != nil {
		return nil, err
	}
	if err := addUseDependencies(c, dm); err != nil {
		return nil, err
	}

	expanded := make(map[NodeMoniker]map[NodeMoniker]struct{}, len(dm))
	for source, targets := range dm {
		expandedTargets := expandNodeSet(c, targets)
		// The provider may be a collection; each live member gets the full
		// dependent set.
		for _, src := range expandNode(c, source) {
			set := make(map[NodeMoniker]struct{}, len(expandedTargets))
			for m := range expandedTargets {
				set[m] = struct{}{}
			}
			expanded[src] = set
		}
	}
	return expanded, nil
}

// addOfferDependencies records which siblings provide capabilities to other
// siblings through static offers.
func addOfferDependencies(c Component, dm dependencyMap) error {
	for _, offer := range StaticOffers(c) {
		provider, target, ok, err := dependencyFromOffer(c, offer)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if _, exists := dm[target]; !exists {
			return errors.Invariantf(
				"offer of %q routes to %s, which does not exist in this realm",
				offer.SourceName, target)
		}
		dependents, exists := dm[provider]
		if !exists {
			return errors.Invariantf(
				"offer of %q routes from %s, which does not exist in this realm",
				offer.SourceName, provider)
		}
		dependents[target] = struct{}{}
	}
	return nil
}

// dependencyFromOffer extracts a (provider, dependent) pair from one offer,
// or reports that the offer has no impact on shutdown ordering.
func dependencyFromOffer(c Component, offer decl.Offer) (provider, target depNode, ok bool, err error) {
	switch offer.Kind {
	case decl.KindProtocol, decl.KindDirectory:
		if offer.Dependency.IsWeak() {
			// Weak dependencies can be broken arbitrarily.
			return depNode{}, depNode{}, false, nil
		}
	case decl.KindService, decl.KindRunner, decl.KindResolver:
		// These cannot be weak.
	case decl.KindStorage:
		return dependencyFromStorageOffer(c, offer)
	case decl.KindEvent:
		// Events aren't tracked as dependencies for shutdown.
		return depNode{}, depNode{}, false, nil
	default:
		return depNode{}, depNode{}, false, nil
	}

	switch offer.Source.Kind {
	case decl.RefChild:
		if offer.Source.IsDynamicChild() {
			// Static declarations never reference dynamic children; dynamic
			// offers were already filtered out by target.
			return depNode{}, depNode{}, false, errors.Invariantf(
				"dynamic child %s appeared as the source of a static offer", offer.Source)
		}
		target, err := nodeFromOfferTarget(offer)
		if err != nil {
			return depNode{}, depNode{}, false, err
		}
		return childDep(offer.Source.Name), target, true, nil
	case decl.RefCollection:
		// Offers routed out of a collection are deliberately not considered
		// for shutdown ordering.
		return depNode{}, depNode{}, false, nil
	default:
		// Capabilities offered by the parent, by the component itself, or by
		// the framework are not provided by a sibling, so they don't order
		// siblings.
		return depNode{}, depNode{}, false, nil
	}
}

// dependencyFromStorageOffer handles storage offers. Storage is special: the
// offer's source is `self`, but the storage capability's own declaration may
// name a child as the backing directory provider, and it's that child the
// dependents must stop before.
func dependencyFromStorageOffer(c Component, offer decl.Offer) (provider, target depNode, ok bool, err error) {
	if offer.Source.Kind != decl.RefSelf {
		// A storage offer not from `self` encodes no sibling relationship:
		// offers from `parent` route the grandparent's storage, and the
		// child case is expressed through the capability declaration, which
		// still lists the offer source as `self`.
		return depNode{}, depNode{}, false, nil
	}
	backing, ok, err := storageBackingChild(c, offer.SourceName)
	if err != nil || !ok {
		return depNode{}, depNode{}, false, err
	}
	target, err = nodeFromOfferTarget(offer)
	if err != nil {
		return depNode{}, depNode{}, false, err
	}
	return childDep(backing), target, true, nil
}

// storageBackingChild resolves the named storage capability to the child
// that provides its backing directory. Parent-backed storage creates no
// sibling edge. Storage backed by the declaring component itself is a
// dependency cycle and is disallowed.
func storageBackingChild(c Component, name string) (string, bool, error) {
	for _, capability := range c.Capabilities() {
		if capability.Kind != decl.KindStorage || capability.Name != name {
			continue
		}
		switch capability.Source.Kind {
		case decl.RefChild:
			if capability.Source.IsDynamicChild() {
				return "", false, errors.Invariantf(
					"storage capability %q is backed by dynamic child %s", name, capability.Source)
			}
			return capability.Source.Name, true, nil
		case decl.RefSelf:
			return "", false, errors.Invariantf(
				"storage capability %q is backed by its own component, which is a dependency cycle", name)
		default:
			return "", false, nil
		}
	}
	return "", false, nil
}

// nodeFromOfferTarget converts an offer target into a symbolic node.
func nodeFromOfferTarget(offer decl.Offer) (depNode, error) {
	switch offer.Target.Kind {
	case decl.RefChild:
		if offer.Target.IsDynamicChild() {
			return depNode{}, errors.Invariantf(
				"dynamic child %s appeared as the target of a static offer", offer.Target)
		}
		return childDep(offer.Target.Name), nil
	case decl.RefCollection:
		return collectionDep(offer.Target.Name), nil
	default:
		return depNode{}, errors.Invariantf(
			"offer of %q targets %s; targets must be a child or collection",
			offer.SourceName, offer.Target)
	}
}

// addEnvironmentDependencies records which siblings provide runners,
// resolvers, or debug capabilities to other siblings through an environment.
// A provider registered into an environment must outlive anything launched
// or resolved with it.
func addEnvironmentDependencies(c Component, dm dependencyMap) error {
	providers := map[string][]string{}
	for _, env := range c.Environments() {
		if _, ok := providers[env.Name]; !ok {
			providers[env.Name] = nil
		}
		for _, reg := range env.Registrations {
			if reg.Source.Kind != decl.RefChild {
				// Registrations from parent or self don't order siblings.
				continue
			}
			if reg.Source.IsDynamicChild() {
				return errors.Invariantf(
					"dynamic child %s appeared as the source of a registration in environment %q",
					reg.Source, env.Name)
			}
			providers[env.Name] = append(providers[env.Name], reg.Source.Name)
		}
	}

	ensure := func(n depNode) nodeSet {
		set, ok := dm[n]
		if !ok {
			set = nodeSet{}
			dm[n] = set
		}
		return set
	}

	for _, child := range StaticChildren(c) {
		if child.Environment == "" {
			continue
		}
		sources, ok := providers[child.Environment]
		if !ok {
			return errors.Invariantf(
				"environment %q selected by child %q is not a declared environment",
				child.Environment, child.Moniker.Name)
		}
		for _, source := range sources {
			ensure(childDep(source))[childDep(child.Moniker.Name)] = struct{}{}
		}
	}
	for _, coll := range c.Collections() {
		if coll.Environment == "" {
			continue
		}
		sources, ok := providers[coll.Environment]
		if !ok {
			return errors.Invariantf(
				"environment %q selected by collection %q is not a declared environment",
				coll.Environment, coll.Name)
		}
		for _, source := range sources {
			ensure(childDep(source))[collectionDep(coll.Name)] = struct{}{}
		}
	}
	return nil
}

// addUseDependencies handles capabilities the component itself consumes from
// its children, and decides where the component sits relative to children it
// has no direct edge with.
func addUseDependencies(c Component, dm dependencyMap) error {
	// Children the component uses a strong capability from must outlive it:
	// the component is their dependent.
	direct := nodeSet{}
	for _, use := range c.Uses() {
		if use.Source.Kind != decl.RefChild {
			// Capabilities which cannot or are not used from a child can be
			// ignored.
			continue
		}
		switch use.Kind {
		case decl.KindService, decl.KindProtocol, decl.KindDirectory, decl.KindEvent:
		default:
			continue
		}
		if use.Dependency.IsWeak() {
			continue
		}
		direct[childDep(use.Source.Name)] = struct{}{}
	}
	for node := range direct {
		dependents, ok := dm[node]
		if !ok {
			return errors.Invariantf("use names %s, which is not a static child", node)
		}
		dependents[selfDep()] = struct{}{}
	}

	// Find children the component transitively depends on through offer
	// chains rooted at a directly-used child. Those edges are added by the
	// offer step; here we only need to know which children must not be made
	// dependents of the component below, or the flipped edge would be
	// contradicted.
	transitive := nodeSet{}
	for node := range direct {
		transitive[node] = struct{}{}
	}
	for again := true; again; {
		again = false
		for _, offer := range StaticOffers(c) {
			if (offer.Kind == decl.KindProtocol || offer.Kind == decl.KindDirectory) &&
				offer.Dependency.IsWeak() {
				continue
			}
			target, err := nodeFromOfferTarget(offer)
			if err != nil {
				return err
			}
			if _, in := transitive[target]; !in {
				continue
			}

			var source depNode
			switch offer.Source.Kind {
			case decl.RefChild:
				if offer.Source.IsDynamicChild() {
					return errors.Invariantf(
						"dynamic child %s appeared as the source of a static offer", offer.Source)
				}
				source = childDep(offer.Source.Name)
			case decl.RefCollection:
				source = collectionDep(offer.Source.Name)
			case decl.RefCapability:
				backing, ok, err := storageBackingChild(c, offer.Source.Name)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				source = childDep(backing)
			case decl.RefSelf:
				// Only a storage offer can legitimately match here; for
				// anything else the lookup finds nothing and the storage
				// source was the parent, so there is no dependency to add.
				backing, ok, err := storageBackingChild(c, offer.SourceName)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				source = childDep(backing)
			default:
				// The framework and the parent outlive this realm; whether we
				// transitively depend on them is irrelevant here.
				continue
			}
			if _, in := transitive[source]; !in {
				transitive[source] = struct{}{}
				again = true
			}
		}
	}

	// Every remaining node the component has no dependency on, directly or
	// transitively, stops before the component does.
	selfDependents := dm[selfDep()]
	for source, dependents := range dm {
		if source == selfDep() {
			continue
		}
		if _, in := transitive[source]; in {
			continue
		}
		if _, flipped := dependents[selfDep()]; flipped {
			continue
		}
		selfDependents[source] = struct{}{}
	}
	return nil
}

// expandNodeSet resolves a set of symbolic nodes into concrete instance
// monikers.
func expandNodeSet(c Component, nodes nodeSet) map[NodeMoniker]struct{} {
	out := map[NodeMoniker]struct{}{}
	for node := range nodes {
		for _, m := range expandNode(c, node) {
			out[m] = struct{}{}
		}
	}
	return out
}

// expandNode resolves one symbolic node: a child becomes its instanced
// moniker, a collection becomes its currently-live members, self stays self.
func expandNode(c Component, node depNode) []NodeMoniker {
	switch node.kind {
	case depNodeSelf:
		return []NodeMoniker{SelfNode()}
	case depNodeChild:
		return []NodeMoniker{ChildNode(moniker.StaticChild(node.name))}
	case depNodeCollection:
		var out []NodeMoniker
		for _, child := range c.Children() {
			if child.Moniker.Collection == node.name && child.Live {
				out = append(out, ChildNode(child.Moniker))
			}
		}
		return out
	}
	return nil
}
