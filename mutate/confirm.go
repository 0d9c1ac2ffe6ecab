package mutate

import (
	"context"
	"errors"
	"sync"

	"github.com/kbayram/clientkit/logger"
)

// ErrNoPending is returned by Confirm when no deletion awaits confirmation.
var ErrNoPending = errors.New("mutate: no deletion pending confirmation")

// DeleteFunc performs the actual deletion of an entity.
type DeleteFunc func(ctx context.Context, id string) error

// Confirmer tracks which entity, if any, is awaiting a destructive
// confirmation. At most one id is pending at a time; a second request while
// one is pending replaces it (last request wins).
type Confirmer struct {
	mu      sync.Mutex
	pending string
	del     DeleteFunc
	log     *logger.Logger
}

// NewConfirmer creates a confirmer bound to a delete operation.
func NewConfirmer(del DeleteFunc, log *logger.Logger) *Confirmer {
	if log == nil {
		log = logger.Nop()
	}
	return &Confirmer{del: del, log: log.WithComponent("confirm")}
}

// RequestDelete marks id as pending confirmation, replacing any prior id.
func (c *Confirmer) RequestDelete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = id
}

// Pending returns the id awaiting confirmation, if any.
func (c *Confirmer) Pending() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending, c.pending != ""
}

// Cancel clears the pending confirmation without side effects.
func (c *Confirmer) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = ""
}

// Confirm runs the bound deletion for the pending id. Whether the deletion
// settles in success or failure, the pending state is cleared; the error, if
// any, is returned for user-facing reporting.
func (c *Confirmer) Confirm(ctx context.Context) error {
	c.mu.Lock()
	id := c.pending
	c.mu.Unlock()
	if id == "" {
		return ErrNoPending
	}

	err := c.del(ctx, id)
	if err != nil {
		c.log.Debug("confirmed deletion failed", logger.ErrorFields("delete", err))
	}

	c.mu.Lock()
	if c.pending == id {
		c.pending = ""
	}
	c.mu.Unlock()
	return err
}
