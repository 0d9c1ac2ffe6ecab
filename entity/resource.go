package entity

import (
	"context"
	"time"

	"github.com/kbayram/clientkit/cache"
	"github.com/kbayram/clientkit/httpclient"
	"github.com/kbayram/clientkit/logger"
	"github.com/kbayram/clientkit/mutate"
)

// Resource is a generic CRUD client for one entity kind.
type Resource[T mutate.Entity] struct {
	kind       string
	basePath   string
	doer       httpclient.Doer
	store      *cache.Store
	coord      *mutate.Coordinator[T]
	staleAfter time.Duration
	log        *logger.Logger
}

// ResourceOption configures a resource.
type ResourceOption[T mutate.Entity] func(*Resource[T])

// WithStaleAfter overrides the staleness window for the resource's entries.
func WithStaleAfter[T mutate.Entity](d time.Duration) ResourceOption[T] {
	return func(r *Resource[T]) {
		r.staleAfter = d
	}
}

// NewResource creates a CRUD client for an entity kind. basePath is the
// collection endpoint ("/api/budgets/"); member endpoints append "<id>/".
func NewResource[T mutate.Entity](kind, basePath string, doer httpclient.Doer, store *cache.Store, log *logger.Logger, opts ...ResourceOption[T]) *Resource[T] {
	if log == nil {
		log = logger.Nop()
	}
	r := &Resource[T]{
		kind:       kind,
		basePath:   basePath,
		doer:       doer,
		store:      store,
		coord:      mutate.NewCoordinator[T](store, log),
		staleAfter: 30 * time.Second,
		log:        log.WithComponent("entity." + kind),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListKey returns the cache key of the resource's collection entry.
func (r *Resource[T]) ListKey() cache.Key {
	return cache.ListKey(r.kind)
}

// DetailKey returns the cache key of a single entity's entry.
func (r *Resource[T]) DetailKey(id string) cache.Key {
	return cache.DetailKey(r.kind, id)
}

// List returns all entities of the kind, served from cache when fresh.
func (r *Resource[T]) List(ctx context.Context) ([]T, error) {
	value, err := r.store.ReadWait(ctx, r.ListKey(), func(ctx context.Context) (any, error) {
		resp, err := httpclient.Get[[]T](r.doer, ctx, r.basePath)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	}, cache.WithStaleAfter(r.staleAfter))
	if err != nil {
		return nil, err
	}
	return value.([]T), nil
}

// ListEntry returns the collection entry's current state without blocking,
// kicking a background refetch when stale. UI layers poll this for
// optimistic state and loading indicators.
func (r *Resource[T]) ListEntry(ctx context.Context) cache.Entry {
	return r.store.Read(ctx, r.ListKey(), func(ctx context.Context) (any, error) {
		resp, err := httpclient.Get[[]T](r.doer, ctx, r.basePath)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	}, cache.WithStaleAfter(r.staleAfter))
}

// Get returns one entity by id, served from cache when fresh.
func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	value, err := r.store.ReadWait(ctx, r.DetailKey(id), func(ctx context.Context) (any, error) {
		resp, err := httpclient.Get[T](r.doer, ctx, r.memberPath(id))
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	}, cache.WithStaleAfter(r.staleAfter))
	if err != nil {
		return zero, err
	}
	return value.(T), nil
}

// Create posts a new entity, prepending the placeholder to the cached list
// until the server's canonical representation replaces it.
func (r *Resource[T]) Create(ctx context.Context, input any, placeholder T) (T, error) {
	var zero T
	if err := validateInput(input); err != nil {
		return zero, err
	}
	return r.coord.Mutate(ctx, mutate.Intent[T]{
		Kind:       mutate.KindCreate,
		Optimistic: placeholder,
		Keys:       []cache.Key{r.ListKey()},
	}, func(ctx context.Context) (T, error) {
		resp, err := httpclient.Post[T](r.doer, ctx, r.basePath, input)
		if err != nil {
			return zero, err
		}
		return resp.Data, nil
	})
}

// Update replaces an entity, applying the optimistic shape to every cache
// entry it appears in until confirmation.
func (r *Resource[T]) Update(ctx context.Context, id string, input any, optimistic T) (T, error) {
	var zero T
	if err := validateInput(input); err != nil {
		return zero, err
	}
	return r.coord.Mutate(ctx, mutate.Intent[T]{
		Kind:       mutate.KindUpdate,
		TargetID:   id,
		Optimistic: optimistic,
		Keys:       []cache.Key{cache.KindKey(r.kind)},
	}, func(ctx context.Context) (T, error) {
		resp, err := httpclient.Put[T](r.doer, ctx, r.memberPath(id), input)
		if err != nil {
			return zero, err
		}
		return resp.Data, nil
	})
}

// Delete removes an entity, dropping it from the cached list immediately
// and removing its detail entry once the server confirms.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.coord.Mutate(ctx, mutate.Intent[T]{
		Kind:     mutate.KindDelete,
		TargetID: id,
		Keys:     []cache.Key{r.ListKey()},
	}, func(ctx context.Context) (T, error) {
		var zero T
		if _, err := httpclient.Delete[struct{}](r.doer, ctx, r.memberPath(id)); err != nil {
			return zero, err
		}
		return zero, nil
	})
	if err != nil {
		return err
	}
	r.store.Remove(r.DetailKey(id))
	return nil
}

// Confirmer returns a delete-confirmation state machine bound to this
// resource's Delete operation.
func (r *Resource[T]) Confirmer() *mutate.Confirmer {
	return mutate.NewConfirmer(func(ctx context.Context, id string) error {
		return r.Delete(ctx, id)
	}, r.log)
}

func (r *Resource[T]) memberPath(id string) string {
	return r.basePath + id + "/"
}
