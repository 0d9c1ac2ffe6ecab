package cache

import "time"

// Status describes the lifecycle state of a cache entry.
type Status int

const (
	// StatusIdle means the entry exists but no fetch has completed or started.
	StatusIdle Status = iota
	// StatusLoading means the first fetch for the entry is in flight.
	StatusLoading
	// StatusSuccess means the entry holds a fetched or written value.
	StatusSuccess
	// StatusError means the last fetch failed and no value is held.
	StatusError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Entry is a point-in-time view of one cache slot.
// Invariant: Status == StatusSuccess implies Value is present;
// Status == StatusError implies Err is non-nil.
type Entry struct {
	Key        Key
	Status     Status
	Value      any
	Err        error
	FetchedAt  time.Time
	StaleAfter time.Duration
	// Stale is set by explicit invalidation, independent of age.
	Stale bool
}

// HasValue reports whether the entry holds a usable value.
func (e Entry) HasValue() bool {
	return e.Status == StatusSuccess
}

// IsStale reports whether the entry should be refetched.
// A zero StaleAfter disables age-based staleness: the entry stays fresh
// until explicitly invalidated (the current-user entry uses this).
func (e Entry) IsStale(now time.Time) bool {
	if e.Stale {
		return true
	}
	if e.Status != StatusSuccess {
		return false
	}
	if e.StaleAfter <= 0 {
		return false
	}
	return now.Sub(e.FetchedAt) > e.StaleAfter
}

// entry is the mutable slot held by the store. The exported Entry is a copy
// handed to callers; nobody mutates a slot outside the store's lock.
type entry struct {
	key        Key
	status     Status
	value      any
	err        error
	fetchedAt  time.Time
	staleAfter time.Duration
	stale      bool

	// generation increments on every invalidation of this slot. A fetch
	// issued against an older generation discards its result.
	generation uint64
	// inflight is set while a fetch tagged inflightGen is outstanding.
	// An invalidation bumps generation past inflightGen, which both dooms
	// the outstanding fetch and lets the next read launch a fresh one.
	inflight    bool
	inflightGen uint64
}

func (e *entry) view() Entry {
	return Entry{
		Key:        e.key.Clone(),
		Status:     e.status,
		Value:      e.value,
		Err:        e.err,
		FetchedAt:  e.fetchedAt,
		StaleAfter: e.staleAfter,
		Stale:      e.stale,
	}
}

// needsFetch reports whether a read should launch a background fetch:
// the slot wants data and no fetch for the current generation is in flight.
func (e *entry) needsFetch(now time.Time) bool {
	if e.inflight && e.inflightGen == e.generation {
		return false
	}
	switch e.status {
	case StatusIdle, StatusError:
		return true
	default:
		return e.view().IsStale(now)
	}
}
