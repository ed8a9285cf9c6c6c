// Package schema declares the static shape of the code-entity graph.
//
// The graph is heterogeneous: each entity is a typed record from a fixed
// catalog (module, function, type, ...) carrying a named field map. The
// package provides three things:
//
//   - [EntityType]: the closed enumeration of entity kinds and the field
//     catalog declared for each of them.
//   - [Entity]: the generic record shape all engine components operate on.
//   - [Relation] and [Edge]: the static relation table joins and traversals
//     are resolved against.
//
// Relations come in four flavors. Containment links a parent to the rows
// holding its foreign key (module to function, type to constructor).
// Nested definitions link a function to its local functions. Call sites
// link a function or nested function to the call records made inside it.
// Dependency edges (function_dependency, type_dependency) are bare
// (source, target) id pairs with no payload.
//
// Everything in this package is immutable after init. Query validation
// resolves field names and relation roles here so that a malformed
// descriptor fails before any store access happens.
package schema
