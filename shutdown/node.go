package shutdown

import (
	"fmt"

	"github.com/vinayprograms/realmkit/moniker"
)

// NodeMoniker identifies a live node in the realm being shut down: either
// the realm's own component (self) or one of its children, by instanced
// moniker. A collection never appears here; collections are always expanded
// into their live members first. The zero value is the self node.
type NodeMoniker struct {
	child moniker.Child
	self  bool
}

// SelfNode returns the moniker of the realm's own component.
func SelfNode() NodeMoniker {
	return NodeMoniker{self: true}
}

// ChildNode returns the node moniker for a child instance.
func ChildNode(m moniker.Child) NodeMoniker {
	return NodeMoniker{child: m}
}

// IsSelf reports whether the moniker names the realm's own component.
func (n NodeMoniker) IsSelf() bool {
	return n.self
}

// Child returns the child moniker, or false for the self node.
func (n NodeMoniker) Child() (moniker.Child, bool) {
	if n.self {
		return moniker.Child{}, false
	}
	return n.child, true
}

// String renders the node for logs and errors.
func (n NodeMoniker) String() string {
	if n.self {
		return "self"
	}
	return n.child.String()
}

// depNode is the symbolic identity used while the dependency graph is under
// construction, before expansion to concrete instances: the component
// itself, a named child, or a named collection.
type depNode struct {
	kind depNodeKind
	name string
}

type depNodeKind uint8

const (
	depNodeSelf depNodeKind = iota
	depNodeChild
	depNodeCollection
)

func selfDep() depNode             { return depNode{kind: depNodeSelf} }
func childDep(name string) depNode { return depNode{kind: depNodeChild, name: name} }

func collectionDep(name string) depNode {
	return depNode{kind: depNodeCollection, name: name}
}

func (d depNode) String() string {
	switch d.kind {
	case depNodeSelf:
		return "self"
	case depNodeChild:
		return fmt.Sprintf("child `%s`", d.name)
	case depNodeCollection:
		return fmt.Sprintf("collection `%s`", d.name)
	}
	return "invalid"
}
