// Package decl models the resolved capability declarations of a component:
// what it uses, exposes, and offers, the capabilities it defines, its
// collections and environments, and its static children.
//
// The model is a read-only snapshot. Producing it (manifest syntax,
// compilation, validation) belongs to the surrounding runtime; this package
// only gives the shutdown machinery a typed view of the result. Declarations
// can also be written as plain TOML, which is how test fixtures and examples
// describe component topologies without a manifest compiler.
//
// Dependency strengths follow the runtime's routing rules: a strong
// dependency constrains shutdown order, while weak and weak-for-migration
// dependencies may be broken arbitrarily and never constrain ordering.
package decl
