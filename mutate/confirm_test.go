package mutate

import (
	"context"
	"errors"
	"testing"

	"github.com/kbayram/clientkit/logger"
)

func TestConfirmer_RequestReplacesPending(t *testing.T) {
	c := NewConfirmer(func(ctx context.Context, id string) error { return nil }, logger.Nop())

	if _, ok := c.Pending(); ok {
		t.Error("expected no pending id initially")
	}

	c.RequestDelete("1")
	c.RequestDelete("2") // last request wins

	id, ok := c.Pending()
	if !ok || id != "2" {
		t.Errorf("expected pending 2, got %q (%v)", id, ok)
	}
}

func TestConfirmer_CancelClearsWithoutSideEffects(t *testing.T) {
	called := false
	c := NewConfirmer(func(ctx context.Context, id string) error {
		called = true
		return nil
	}, logger.Nop())

	c.RequestDelete("1")
	c.Cancel()

	if _, ok := c.Pending(); ok {
		t.Error("expected pending cleared after cancel")
	}
	if called {
		t.Error("cancel must not trigger the deletion")
	}
}

func TestConfirmer_ConfirmRunsDeleteAndClears(t *testing.T) {
	var deleted string
	c := NewConfirmer(func(ctx context.Context, id string) error {
		deleted = id
		return nil
	}, logger.Nop())

	c.RequestDelete("42")
	if err := c.Confirm(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "42" {
		t.Errorf("expected deletion of 42, got %q", deleted)
	}
	if _, ok := c.Pending(); ok {
		t.Error("expected pending cleared after confirm")
	}
}

func TestConfirmer_FailureStillClearsPending(t *testing.T) {
	boom := errors.New("boom")
	c := NewConfirmer(func(ctx context.Context, id string) error { return boom }, logger.Nop())

	c.RequestDelete("42")
	if err := c.Confirm(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok := c.Pending(); ok {
		t.Error("pending must clear whether the deletion settles in success or failure")
	}
}

func TestConfirmer_ConfirmWithoutPending(t *testing.T) {
	c := NewConfirmer(func(ctx context.Context, id string) error { return nil }, logger.Nop())
	if err := c.Confirm(context.Background()); !errors.Is(err, ErrNoPending) {
		t.Errorf("expected ErrNoPending, got %v", err)
	}
}

func TestConfirmer_AtMostOnePending(t *testing.T) {
	c := NewConfirmer(func(ctx context.Context, id string) error { return nil }, logger.Nop())

	ops := []func(){
		func() { c.RequestDelete("a") },
		func() { c.Cancel() },
		func() { c.RequestDelete("b") },
		func() { c.RequestDelete("c") },
		func() { _ = c.Confirm(context.Background()) },
		func() { c.Cancel() },
	}
	for _, op := range ops {
		op()
		if id, ok := c.Pending(); ok && id == "" {
			t.Fatal("pending reported with empty id")
		}
	}
	if _, ok := c.Pending(); ok {
		t.Error("expected no pending id at the end of the sequence")
	}
}
