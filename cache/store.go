package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kbayram/clientkit/logger"
)

const defaultStaleAfter = 30 * time.Second

// FetchFunc loads the value for a cache key from the source of truth.
type FetchFunc func(ctx context.Context) (any, error)

// Config configures the cache store.
type Config struct {
	// StaleAfter is the default age after which a successful entry is
	// considered stale. Zero keeps the package default; reads can override
	// per key with WithStaleAfter.
	StaleAfter time.Duration `yaml:"stale_after" mapstructure:"stale_after"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.StaleAfter <= 0 {
		c.StaleAfter = defaultStaleAfter
	}
}

// Store is an in-memory keyed store of query results with staleness
// tracking. It is safe for concurrent use. The lock is never held across a
// fetch; only the synchronous bookkeeping around it.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	cfg     Config
	sf      singleflight.Group
	log     *logger.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewStore creates an empty cache store.
func NewStore(cfg Config, log *logger.Logger) *Store {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		entries: make(map[string]*entry),
		cfg:     cfg,
		log:     log.WithComponent("cache"),
		now:     time.Now,
	}
}

// ReadOption configures a single read.
type ReadOption func(*readOptions)

type readOptions struct {
	staleAfter time.Duration
	hasStale   bool
}

// WithStaleAfter overrides the store's default staleness window for the
// entry. Zero disables age-based staleness entirely.
func WithStaleAfter(d time.Duration) ReadOption {
	return func(o *readOptions) {
		o.staleAfter = d
		o.hasStale = true
	}
}

// Read returns the current entry for key, launching a background fetch when
// the entry is absent, errored, or stale and no fetch for the current
// generation is already in flight. Concurrent reads of the same key share a
// single fetch.
func (s *Store) Read(ctx context.Context, key Key, fetch FetchFunc, opts ...ReadOption) Entry {
	view, launch, gen := s.prepareRead(key, opts...)
	if launch {
		go s.runFetch(ctx, key, gen, fetch)
	}
	return view
}

// ReadWait behaves like Read but blocks until a usable value is available:
// a fresh cached value is returned directly, otherwise the caller joins the
// in-flight fetch for the key and receives its result. A fetch superseded by
// an invalidation still returns its value to the waiting caller; it is only
// barred from overwriting the cache.
func (s *Store) ReadWait(ctx context.Context, key Key, fetch FetchFunc, opts ...ReadOption) (any, error) {
	view, launch, gen := s.prepareRead(key, opts...)
	if !launch {
		if view.HasValue() && !view.IsStale(s.now()) {
			return view.Value, nil
		}
		if view.Status == StatusError && !view.Stale {
			return nil, view.Err
		}
		// A fetch is in flight; join it.
		gen = s.currentInflightGen(key)
	}
	value, err, _ := s.sf.Do(sfKey(key, gen), func() (any, error) {
		value, err := fetch(ctx)
		s.complete(key, gen, value, err)
		return value, err
	})
	return value, err
}

// prepareRead performs the synchronous half of a read under the lock.
func (s *Store) prepareRead(key Key, opts ...ReadOption) (Entry, bool, uint64) {
	ro := readOptions{}
	for _, opt := range opts {
		opt(&ro)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ent := s.ensure(key)
	if ro.hasStale {
		ent.staleAfter = ro.staleAfter
	}

	view := ent.view()
	if !ent.needsFetch(s.now()) {
		return view, false, 0
	}

	ent.inflight = true
	ent.inflightGen = ent.generation
	if ent.status == StatusIdle || ent.status == StatusError {
		ent.status = StatusLoading
		ent.err = nil
		view = ent.view()
	}
	return view, true, ent.generation
}

// runFetch executes a background fetch, de-duplicated per key+generation.
func (s *Store) runFetch(ctx context.Context, key Key, gen uint64, fetch FetchFunc) {
	_, _, _ = s.sf.Do(sfKey(key, gen), func() (any, error) {
		value, err := fetch(ctx)
		s.complete(key, gen, value, err)
		return value, err
	})
}

// complete lands a fetch result, discarding it if the generation was
// superseded by an invalidation issued after the fetch started.
func (s *Store) complete(key Key, gen uint64, value any, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key.String()]
	if !ok {
		return
	}
	if ent.inflightGen == gen {
		ent.inflight = false
	}
	if ent.generation != gen {
		s.log.Debug("discarding superseded fetch", map[string]interface{}{
			logger.FieldCacheKey:   key.String(),
			logger.FieldGeneration: gen,
		})
		return
	}

	if err != nil {
		ent.status = StatusError
		ent.err = err
		ent.value = nil
		return
	}
	ent.status = StatusSuccess
	ent.value = value
	ent.err = nil
	ent.stale = false
	ent.fetchedAt = s.now()
}

// Write replaces the entry's value and marks it fresh.
func (s *Store) Write(key Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent := s.ensure(key)
	ent.status = StatusSuccess
	ent.value = value
	ent.err = nil
	ent.stale = false
	ent.fetchedAt = s.now()
}

// Apply replaces the values of successful entries under the prefix using fn,
// leaving freshness metadata untouched. An optimistic overlay is not
// server-fresh, so it must neither refresh fetchedAt nor clear a stale
// marker. fn returns the replacement value and whether to apply it.
func (s *Store) Apply(prefix Key, fn func(key Key, value any) (any, bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ent := range s.entries {
		if !ent.key.HasPrefix(prefix) || ent.status != StatusSuccess {
			continue
		}
		if next, ok := fn(ent.key.Clone(), ent.value); ok {
			ent.value = next
		}
	}
}

// Invalidate marks every entry under the prefix stale and bumps its
// generation, dooming any in-flight fetch issued before this call.
// It does not block; subsequent reads trigger refetches.
func (s *Store) Invalidate(prefix Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ent := range s.entries {
		if !ent.key.HasPrefix(prefix) {
			continue
		}
		ent.stale = true
		ent.generation++
		s.log.Debug("invalidated", map[string]interface{}{
			logger.FieldCacheKey:   ent.key.String(),
			logger.FieldGeneration: ent.generation,
		})
	}
}

// Remove drops every entry under the prefix entirely. Used by logout to make
// the current-user entry absent rather than merely stale.
func (s *Store) Remove(prefix Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for mapKey, ent := range s.entries {
		if ent.key.HasPrefix(prefix) {
			delete(s.entries, mapKey)
		}
	}
}

// Peek returns the entry for key without triggering a fetch.
func (s *Store) Peek(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key.String()]
	if !ok {
		return Entry{}, false
	}
	return ent.view(), true
}

// Len returns the number of entries held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ensure returns the slot for key, creating an idle one if absent.
// Caller holds the lock.
func (s *Store) ensure(key Key) *entry {
	mapKey := key.String()
	ent, ok := s.entries[mapKey]
	if !ok {
		ent = &entry{
			key:        key.Clone(),
			status:     StatusIdle,
			staleAfter: s.cfg.StaleAfter,
		}
		s.entries[mapKey] = ent
	}
	return ent
}

// currentInflightGen returns the generation of the key's in-flight fetch.
func (s *Store) currentInflightGen(key Key) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ent, ok := s.entries[key.String()]; ok {
		return ent.inflightGen
	}
	return 0
}

func sfKey(key Key, gen uint64) string {
	return fmt.Sprintf("%s@%d", key.String(), gen)
}
