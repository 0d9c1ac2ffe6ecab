// Package cache provides the in-memory entity cache shared by every CRUD
// surface of clientkit.
//
// Entries are keyed by ordered segment tuples forming a prefix hierarchy
// (["budgets","list"], ["budgets","detail","7"]); invalidating a prefix marks
// everything nested under it stale. Reads trigger background refetches with
// in-flight de-duplication, and every fetch is tagged with the generation of
// the entry it was issued against: a fetch superseded by a later invalidation
// is discarded so stale data can never resurrect.
//
// The store is an explicitly constructed, injectable object. All optimistic
// mutation flows through the mutate package, which uses the store's
// Snapshot/Restore primitives for rollback.
package cache
