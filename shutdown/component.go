package shutdown

import (
	"github.com/vinayprograms/realmkit/decl"
	"github.com/vinayprograms/realmkit/moniker"
)

// Component is the read-only declaration view the shutdown machinery
// consumes. It mirrors a resolved component's declaration but reflects
// runtime state where relevant: Children includes dynamically created
// children and Offers may include dynamically created offers.
//
// In production this is implemented by the realm's resolved state; tests
// implement it with fixtures.
type Component interface {
	// Uses returns the component's current `uses` declarations.
	Uses() []decl.Use

	// Exposes returns the component's current `exposes` declarations.
	Exposes() []decl.Expose

	// Offers returns the component's current `offers` declarations.
	Offers() []decl.Offer

	// Capabilities returns the component's current `capabilities` declarations.
	Capabilities() []decl.Capability

	// Collections returns the component's current `collections` declarations.
	Collections() []decl.Collection

	// Environments returns the component's current `environments` declarations.
	Environments() []decl.Environment

	// Children returns metadata about each child of the component.
	Children() []Child
}

// Child is the runtime metadata about one child needed to compute shutdown
// order.
type Child struct {
	// Moniker identifies the child, complete with instance id.
	Moniker moniker.Child

	// Environment is the name of the environment the child selected, if any.
	Environment string

	// Live is true for static children and for dynamic children that are
	// running; false for a dynamic child that is being deleted but has not
	// yet been purged.
	Live bool
}

// StaticOffers filters Offers down to remove runtime-created dynamic offers,
// which are identified by a dynamic-child target.
func StaticOffers(c Component) []decl.Offer {
	var out []decl.Offer
	for _, o := range c.Offers() {
		if o.Target.IsDynamicChild() {
			continue
		}
		out = append(out, o)
	}
	return out
}

// StaticChildren filters Children down to remove runtime-created dynamic
// children (children in collections).
func StaticChildren(c Component) []Child {
	var out []Child
	for _, child := range c.Children() {
		if child.Moniker.IsDynamic() {
			continue
		}
		out = append(out, child)
	}
	return out
}
