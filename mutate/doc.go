// Package mutate coordinates optimistic write operations against the entity
// cache.
//
// Every create, update, and delete runs the same protocol: snapshot the
// affected cache entries, apply the expected effect synchronously, issue the
// real write, then either invalidate the affected keys (success) or restore
// the snapshot verbatim (failure). Mutations touching overlapping keys
// serialize their whole snapshot-apply-confirm cycle through locks scoped
// per entity kind, so one mutation's rollback can never clobber another's
// optimistic write.
//
// The package also holds the small delete-confirmation state machine that
// tracks which entity, if any, is awaiting a destructive confirmation.
package mutate
