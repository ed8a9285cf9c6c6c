// Package quarry holds the shared contracts of the code-graph query
// engine: the error taxonomy reported across packages and the Cache
// interface the caching store wrapper writes through.
//
// The engine itself lives in the subpackages: schema declares the
// closed entity catalog and relation table, store adapts relational
// backends, querylanguage defines and evaluates query descriptors,
// query interprets them, and graph and analysis compute traversals and
// similarity metrics on top.
package quarry
