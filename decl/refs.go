package decl

import (
	"fmt"
	"strings"
)

// RefKind identifies what a Ref points at.
type RefKind string

const (
	// RefParent is the component's parent.
	RefParent RefKind = "parent"

	// RefSelf is the component itself.
	RefSelf RefKind = "self"

	// RefChild is a child of the component, named by Ref.Name. A dynamic
	// child additionally carries the collection it lives in.
	RefChild RefKind = "child"

	// RefCollection is a named collection of dynamic children.
	RefCollection RefKind = "collection"

	// RefFramework is the runtime framework itself, which outlives every
	// component.
	RefFramework RefKind = "framework"

	// RefCapability is a capability declared by the component, named by
	// Ref.Name. Today this only appears as the source of storage offers.
	RefCapability RefKind = "capability"
)

// Ref is the source or target of a routed capability.
type Ref struct {
	Kind RefKind

	// Name is the child, collection, or capability name, depending on Kind.
	Name string

	// Collection is set only for a RefChild that names a dynamic child.
	// Static declarations never carry it.
	Collection string
}

// ParentRef refers to the component's parent.
func ParentRef() Ref { return Ref{Kind: RefParent} }

// SelfRef refers to the component itself.
func SelfRef() Ref { return Ref{Kind: RefSelf} }

// ChildRef refers to the static child with the given name.
func ChildRef(name string) Ref { return Ref{Kind: RefChild, Name: name} }

// DynamicChildRef refers to a dynamic child in a collection.
func DynamicChildRef(collection, name string) Ref {
	return Ref{Kind: RefChild, Name: name, Collection: collection}
}

// CollectionRef refers to the collection with the given name.
func CollectionRef(name string) Ref { return Ref{Kind: RefCollection, Name: name} }

// FrameworkRef refers to the runtime framework.
func FrameworkRef() Ref { return Ref{Kind: RefFramework} }

// CapabilityRef refers to a capability declared by the component.
func CapabilityRef(name string) Ref { return Ref{Kind: RefCapability, Name: name} }

// IsDynamicChild reports whether the ref names a collection-created child.
func (r Ref) IsDynamicChild() bool {
	return r.Kind == RefChild && r.Collection != ""
}

// String renders the ref in its text form.
func (r Ref) String() string {
	switch r.Kind {
	case RefParent, RefSelf, RefFramework:
		return string(r.Kind)
	case RefChild:
		if r.Collection != "" {
			return fmt.Sprintf("child:%s:%s", r.Collection, r.Name)
		}
		return "child:" + r.Name
	case RefCollection, RefCapability:
		return fmt.Sprintf("%s:%s", r.Kind, r.Name)
	}
	return fmt.Sprintf("invalid:%s", string(r.Kind))
}

// MarshalText implements encoding.TextMarshaler so refs serialize as their
// text form in TOML.
func (r Ref) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Ref) UnmarshalText(text []byte) error {
	s := string(text)
	switch s {
	case "parent":
		*r = ParentRef()
		return nil
	case "self":
		*r = SelfRef()
		return nil
	case "framework":
		*r = FrameworkRef()
		return nil
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || parts[len(parts)-1] == "" {
		return fmt.Errorf("malformed ref %q", s)
	}
	switch RefKind(parts[0]) {
	case RefChild:
		switch len(parts) {
		case 2:
			*r = ChildRef(parts[1])
		case 3:
			if parts[1] == "" {
				return fmt.Errorf("malformed ref %q", s)
			}
			*r = DynamicChildRef(parts[1], parts[2])
		default:
			return fmt.Errorf("malformed ref %q", s)
		}
	case RefCollection:
		if len(parts) != 2 {
			return fmt.Errorf("malformed ref %q", s)
		}
		*r = CollectionRef(parts[1])
	case RefCapability:
		if len(parts) != 2 {
			return fmt.Errorf("malformed ref %q", s)
		}
		*r = CapabilityRef(parts[1])
	default:
		return fmt.Errorf("unknown ref kind %q", parts[0])
	}
	return nil
}
