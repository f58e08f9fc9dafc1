package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("username or password is incorrect")
	ErrInvalidActor       = errors.New("actor is not allowed to perform this action")
	ErrAlreadyResolved    = errors.New("prescription already resolved")
	ErrUnauthorizedPeer   = errors.New("peer is not available for chat with this role")
	ErrAlreadyBound       = errors.New("session already bound")
	ErrNotBound           = errors.New("session not bound")
	ErrNoPeer             = errors.New("no chat peer selected")
	ErrEmptyBody          = errors.New("body must not be blank")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnavailable        = errors.New("feature not configured")

	// ErrNoEscalationTarget is reported in Resolution.Warning; the status
	// change it accompanies has committed.
	ErrNoEscalationTarget = errors.New("no community health worker present")
	ErrEscalationFailed   = errors.New("escalation failed; prescription left pending")

	ErrStoreTimeout     = errors.New("store timeout")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// storeError classifies a failure from the store into ErrStoreTimeout or
// ErrStoreUnavailable, keeping the cause in the chain for logs.
func storeError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStoreTimeout) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrStoreTimeout, err)
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// bounded returns ctx limited to d.  A non-positive d leaves ctx unbounded.
func bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// clock hands out timestamps that never go backwards within the process,
// truncated to what both SQL dialects store.
type clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func newClock(now func() time.Time) *clock {
	if now == nil {
		now = time.Now
	}
	return &clock{now: now}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now().UTC().Truncate(time.Microsecond)
	if t.Before(c.last) {
		t = c.last
	}
	c.last = t
	return t
}
