// Package entity provides typed CRUD clients for the backend's REST
// resources, wiring the cache, the mutation coordinator, and the session
// manager together per entity kind.
//
// Reads go through the cache (list and detail entries with staleness
// tracking); writes go through the coordinator's optimistic
// snapshot-apply-confirm cycle. Inputs are validated locally with the same
// field-addressable error shape the backend produces, so form mappers
// handle both identically.
package entity
