// Package store implements the entity store adapter the engine reads
// the code graph through.
//
// The contract is deliberately small: fetch one entity by id, fetch the
// children of a relation, fetch all entities of a type under a
// condition list, and fetch a dependency edge set. A missing entity is
// (nil, nil), never an error; only a store failure surfaces, wrapped as
// quarry.StoreUnavailableError.
//
// Three implementations are provided:
//
//   - [SQLStore] reads from a relational database through a
//     dialect.Driver, pushing conditions down into SQL where the
//     operator translates and filtering client-side otherwise.
//   - [MemStore] holds the graph in memory; it backs tests and small
//     one-shot analyses over pre-loaded snapshots.
//   - [CachedStore] layers a quarry.Cache over any Store, with msgpack
//     as the entity codec.
//
// All implementations return entities ordered by ascending id so that
// engine output is deterministic regardless of backend.
package store
