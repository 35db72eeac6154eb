package decl

// CapabilityKind classifies routed capabilities.
type CapabilityKind string

const (
	KindService   CapabilityKind = "service"
	KindProtocol  CapabilityKind = "protocol"
	KindDirectory CapabilityKind = "directory"
	KindStorage   CapabilityKind = "storage"
	KindRunner    CapabilityKind = "runner"
	KindResolver  CapabilityKind = "resolver"
	KindEvent     CapabilityKind = "event"
)

// DependencyType is the declared strength of a use or offer edge.
// The empty string means strong.
type DependencyType string

const (
	DependencyStrong           DependencyType = "strong"
	DependencyWeak             DependencyType = "weak"
	DependencyWeakForMigration DependencyType = "weak_for_migration"
)

// IsWeak reports whether the dependency may be broken arbitrarily. Weak
// edges never constrain shutdown ordering.
func (d DependencyType) IsWeak() bool {
	return d == DependencyWeak || d == DependencyWeakForMigration
}

// Use declares a capability the component itself consumes.
type Use struct {
	Kind       CapabilityKind `toml:"kind"`
	Source     Ref            `toml:"source"`
	SourceName string         `toml:"source_name"`
	Dependency DependencyType `toml:"dependency,omitempty"`
}

// Expose declares a capability the component re-exposes to its parent.
type Expose struct {
	Kind       CapabilityKind `toml:"kind"`
	Source     Ref            `toml:"source"`
	SourceName string         `toml:"source_name"`
	TargetName string         `toml:"target_name,omitempty"`
}

// Offer declares a capability routed from a source to a target within the
// component's realm.
type Offer struct {
	Kind       CapabilityKind `toml:"kind"`
	Source     Ref            `toml:"source"`
	SourceName string         `toml:"source_name"`
	Target     Ref            `toml:"target"`
	TargetName string         `toml:"target_name,omitempty"`

	// Dependency is meaningful for protocol and directory offers; other
	// kinds cannot be weak.
	Dependency DependencyType `toml:"dependency,omitempty"`
}

// Capability declares a capability the component itself defines. For storage
// capabilities Source names where the backing directory comes from, which may
// be a child; that backing source is what ties a storage offer to a concrete
// provider.
type Capability struct {
	Kind   CapabilityKind `toml:"kind"`
	Name   string         `toml:"name"`
	Source Ref            `toml:"source,omitempty"`
}

// Collection declares a named container for dynamically created children.
type Collection struct {
	Name        string `toml:"name"`
	Environment string `toml:"environment,omitempty"`
}

// RegistrationKind classifies environment registrations.
type RegistrationKind string

const (
	RegistrationRunner   RegistrationKind = "runner"
	RegistrationResolver RegistrationKind = "resolver"
	RegistrationDebug    RegistrationKind = "debug"
)

// Registration places a runner, resolver, or debug capability into an
// environment. Source is parent, self, or a named child.
type Registration struct {
	Kind       RegistrationKind `toml:"kind"`
	Source     Ref              `toml:"source"`
	SourceName string           `toml:"source_name"`
}

// Environment declares an inheritable registry of runners, resolvers, and
// debug capabilities that children and collections can select.
type Environment struct {
	Name          string         `toml:"name"`
	Registrations []Registration `toml:"registrations,omitempty"`
}

// Child declares a static child of the component.
type Child struct {
	Name        string `toml:"name"`
	URL         string `toml:"url,omitempty"`
	Environment string `toml:"environment,omitempty"`
}

// Decl is a component's resolved declaration snapshot.
type Decl struct {
	Uses         []Use         `toml:"use,omitempty"`
	Exposes      []Expose      `toml:"expose,omitempty"`
	Offers       []Offer       `toml:"offer,omitempty"`
	Capabilities []Capability  `toml:"capability,omitempty"`
	Collections  []Collection  `toml:"collection,omitempty"`
	Environments []Environment `toml:"environment,omitempty"`
	Children     []Child       `toml:"child,omitempty"`
}

// Child returns the static child declaration with the given name.
func (d *Decl) Child(name string) (Child, bool) {
	for _, c := range d.Children {
		if c.Name == name {
			return c, true
		}
	}
	return Child{}, false
}

// Collection returns the collection declaration with the given name.
func (d *Decl) Collection(name string) (Collection, bool) {
	for _, c := range d.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return Collection{}, false
}

// Capability returns the capability declaration with the given name.
func (d *Decl) Capability(name string) (Capability, bool) {
	for _, c := range d.Capabilities {
		if c.Name == name {
			return c, true
		}
	}
	return Capability{}, false
}

// Environment returns the environment declaration with the given name.
func (d *Decl) Environment(name string) (Environment, bool) {
	for _, e := range d.Environments {
		if e.Name == name {
			return e, true
		}
	}
	return Environment{}, false
}
