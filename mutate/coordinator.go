package mutate

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kbayram/clientkit/cache"
	"github.com/kbayram/clientkit/logger"
)

// Entity is anything the coordinator can address inside cached values.
// EntityID must be stable for a given entity; placeholders created for
// optimistic inserts carry a client-assigned id until the server responds.
type Entity interface {
	EntityID() string
}

// Kind identifies the mutation type.
type Kind int

const (
	// KindCreate prepends a placeholder entity to list entries.
	KindCreate Kind = iota
	// KindUpdate replaces the matching entity wherever it appears.
	KindUpdate
	// KindDelete removes the matching entity from list entries.
	KindDelete
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindUpdate:
		return "update"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Intent describes a single write operation.
type Intent[T Entity] struct {
	// Kind is the mutation type.
	Kind Kind
	// TargetID identifies the entity for update/delete. Empty for create.
	TargetID string
	// Optimistic is the entity as it should appear locally before server
	// confirmation. Ignored for delete.
	Optimistic T
	// Keys are the cache key prefixes affected by this mutation.
	Keys []cache.Key
}

// CallFunc issues the real write and returns the server's canonical entity.
// Delete calls return the zero value.
type CallFunc[T Entity] func(ctx context.Context) (T, error)

// Coordinator wraps write operations with optimistic application, server
// confirmation, rollback-on-failure, and post-mutation invalidation.
type Coordinator[T Entity] struct {
	store *cache.Store
	log   *logger.Logger

	mu        sync.Mutex
	kindLocks map[string]*sync.Mutex
}

// NewCoordinator creates a coordinator bound to a cache store.
func NewCoordinator[T Entity](store *cache.Store, log *logger.Logger) *Coordinator[T] {
	if log == nil {
		log = logger.Nop()
	}
	return &Coordinator[T]{
		store:     store,
		log:       log.WithComponent("mutate"),
		kindLocks: make(map[string]*sync.Mutex),
	}
}

// Mutate runs the snapshot-apply-confirm cycle for one intent.
// On success the affected keys are invalidated so the server's canonical
// representation (ids, timestamps) replaces the optimistic shape on the next
// read. On failure the cache is restored to exactly its prior state and the
// typed error is re-raised.
func (c *Coordinator[T]) Mutate(ctx context.Context, intent Intent[T], call CallFunc[T]) (T, error) {
	var zero T
	if err := validateIntent(intent); err != nil {
		return zero, err
	}

	unlock := c.lockKeys(intent.Keys)
	defer unlock()

	snap := c.store.Snapshot(intent.Keys)
	c.applyOptimistic(intent)

	result, err := call(ctx)
	if err != nil {
		c.store.Restore(snap)
		c.log.Debug("mutation rolled back", map[string]interface{}{
			logger.FieldOperation: intent.Kind.String(),
			logger.FieldEntityID:  intent.TargetID,
			logger.FieldError:     err.Error(),
		})
		return zero, err
	}

	for _, key := range intent.Keys {
		c.store.Invalidate(key)
	}
	return result, nil
}

func validateIntent[T Entity](intent Intent[T]) error {
	switch intent.Kind {
	case KindCreate:
		if intent.TargetID != "" {
			return fmt.Errorf("mutate: create must not carry a target id")
		}
	case KindUpdate, KindDelete:
		if intent.TargetID == "" {
			return fmt.Errorf("mutate: %s requires a target id", intent.Kind)
		}
	default:
		return fmt.Errorf("mutate: unknown mutation kind %d", intent.Kind)
	}
	if len(intent.Keys) == 0 {
		return fmt.Errorf("mutate: intent affects no cache keys")
	}
	return nil
}

// applyOptimistic applies the expected effect of the intent to every cached
// value under the affected keys. List entries hold []T, detail entries hold T.
func (c *Coordinator[T]) applyOptimistic(intent Intent[T]) {
	for _, prefix := range intent.Keys {
		c.store.Apply(prefix, func(_ cache.Key, value any) (any, bool) {
			switch v := value.(type) {
			case []T:
				return applyToList(intent, v)
			case T:
				if intent.Kind == KindUpdate && v.EntityID() == intent.TargetID {
					return intent.Optimistic, true
				}
			}
			return nil, false
		})
	}
}

func applyToList[T Entity](intent Intent[T], list []T) (any, bool) {
	switch intent.Kind {
	case KindCreate:
		next := make([]T, 0, len(list)+1)
		next = append(next, intent.Optimistic)
		return append(next, list...), true
	case KindUpdate:
		next := make([]T, len(list))
		changed := false
		for i, e := range list {
			if e.EntityID() == intent.TargetID {
				next[i] = intent.Optimistic
				changed = true
			} else {
				next[i] = e
			}
		}
		return next, changed
	case KindDelete:
		next := make([]T, 0, len(list))
		changed := false
		for _, e := range list {
			if e.EntityID() == intent.TargetID {
				changed = true
				continue
			}
			next = append(next, e)
		}
		return next, changed
	}
	return nil, false
}

// lockKeys acquires the mutation locks for the intent in a deterministic
// order and returns a function releasing them in reverse. A lock is scoped
// to the key's leading segment (the entity kind), so keys that merely
// overlap as prefixes still conflict: ["budgets"] and ["budgets","list"]
// take the same lock and their cycles serialize.
func (c *Coordinator[T]) lockKeys(keys []cache.Key) func() {
	names := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		name := lockName(k)
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)

	locks := make([]*sync.Mutex, 0, len(names))
	c.mu.Lock()
	for _, name := range names {
		lock, ok := c.kindLocks[name]
		if !ok {
			lock = &sync.Mutex{}
			c.kindLocks[name] = lock
		}
		locks = append(locks, lock)
	}
	c.mu.Unlock()

	for _, lock := range locks {
		lock.Lock()
	}
	return func() {
		for i := len(locks) - 1; i >= 0; i-- {
			locks[i].Unlock()
		}
	}
}

// lockName maps a cache key to its mutation lock: the entity kind segment.
func lockName(k cache.Key) string {
	if len(k) > 0 {
		return k[0]
	}
	return ""
}
