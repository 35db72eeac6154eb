// Package moniker provides instanced identities for component instances.
//
// A child moniker names one instance of a child within a realm. Names may
// repeat across generations (a dynamic child can be destroyed and re-created
// under the same name), so the moniker carries an instance id that
// disambiguates generations. Static children always have instance id 0 and no
// collection; dynamic children belong to a named collection and receive a
// fresh instance id from their realm.
package moniker

import (
	"fmt"
	"strconv"
	"strings"
)

// Child identifies one instance of a child component within its parent realm.
// The zero value is not a valid moniker.
type Child struct {
	// Name is the child's name within its realm or collection.
	Name string

	// Collection is the collection the child was created in, or empty for a
	// static child.
	Collection string

	// Instance distinguishes generations of children that share a name.
	Instance uint32
}

// StaticChild returns the moniker of the static child with the given name.
// Static children always have instance id 0.
func StaticChild(name string) Child {
	return Child{Name: name}
}

// DynamicChild returns the moniker of a dynamic child in a collection.
func DynamicChild(collection, name string, instance uint32) Child {
	return Child{Name: name, Collection: collection, Instance: instance}
}

// IsDynamic reports whether the moniker names a collection-created child.
func (c Child) IsDynamic() bool {
	return c.Collection != ""
}

// String renders the moniker as "name:instance" or "collection:name:instance".
func (c Child) String() string {
	if c.Collection != "" {
		return fmt.Sprintf("%s:%s:%d", c.Collection, c.Name, c.Instance)
	}
	return fmt.Sprintf("%s:%d", c.Name, c.Instance)
}

// Parse decodes a moniker in the form produced by String.
func Parse(s string) (Child, error) {
	parts := strings.Split(s, ":")
	var c Child
	switch len(parts) {
	case 2:
		c.Name = parts[0]
	case 3:
		c.Collection = parts[0]
		c.Name = parts[1]
	default:
		return Child{}, fmt.Errorf("malformed child moniker %q", s)
	}
	instance, err := strconv.ParseUint(parts[len(parts)-1], 10, 32)
	if err != nil {
		return Child{}, fmt.Errorf("malformed instance id in child moniker %q", s)
	}
	if c.Name == "" || (len(parts) == 3 && c.Collection == "") {
		return Child{}, fmt.Errorf("malformed child moniker %q", s)
	}
	c.Instance = uint32(instance)
	return c, nil
}

// MustParse is Parse for tests and fixtures; it panics on malformed input.
func MustParse(s string) Child {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}
