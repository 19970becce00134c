package applock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/client/repositories/metadata"
)

// MaxAttemptsBeforeLockout is the number of consecutive failures that
// starts a lockout window.
const MaxAttemptsBeforeLockout = 3

// lockoutSchedule is indexed by lockout cycle; the last step repeats.
var lockoutSchedule = []time.Duration{
	30 * time.Second,
	time.Minute,
	5 * time.Minute,
	15 * time.Minute,
	time.Hour,
}

// lockoutDuration returns the window for the n-th consecutive lockout (n >= 1).
func lockoutDuration(cycle int) time.Duration {
	if cycle < 1 {
		cycle = 1
	}
	if cycle > len(lockoutSchedule) {
		cycle = len(lockoutSchedule)
	}
	return lockoutSchedule[cycle-1]
}

// FailedAttemptCounter is the persisted failure count.
type FailedAttemptCounter struct {
	Count         int
	LastAttemptAt time.Time
}

// LockoutState describes PinSecurity after an attempt was recorded.
type LockoutState struct {
	Attempts  int
	LockedOut bool
	Until     time.Time
	Remaining time.Duration
}

// PinSecurity counts failed unlock attempts and enforces escalating
// lockouts. The counter survives lockouts and is reset only by
// ClearAttempts, so every third failure lengthens the next window.
type PinSecurity struct {
	store metadata.Repository
	now   func() time.Time
	mu    sync.Mutex
}

// NewPinSecurity returns a PinSecurity persisting into store. A nil now
// defaults to time.Now.
func NewPinSecurity(store metadata.Repository, now func() time.Time) *PinSecurity {
	if now == nil {
		now = time.Now
	}
	return &PinSecurity{store: store, now: now}
}

// RecordFailedAttempt increments the counter and, on every
// MaxAttemptsBeforeLockout-th failure, starts a lockout.
func (p *PinSecurity) RecordFailedAttempt(ctx context.Context) (LockoutState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var state LockoutState

	err := p.store.InTx(ctx, func(ctx context.Context, tx metadata.Repository) error {
		count, _, err := getInt64(ctx, tx, KeyFailedAttemptCount)
		if err != nil {
			return err
		}
		count++

		if err := setInt64(ctx, tx, KeyFailedAttemptCount, count); err != nil {
			return err
		}
		if err := setTime(ctx, tx, KeyLastFailedAttemptTs, now); err != nil {
			return err
		}

		state.Attempts = int(count)
		if count%MaxAttemptsBeforeLockout != 0 {
			return nil
		}

		until := now.Add(lockoutDuration(int(count / MaxAttemptsBeforeLockout)))
		if err := setTime(ctx, tx, KeyLockoutUntilTs, until); err != nil {
			return err
		}
		state.LockedOut = true
		state.Until = until
		state.Remaining = until.Sub(now)
		return nil
	})
	if err != nil {
		return LockoutState{}, fmt.Errorf("record failed attempt: %w", err)
	}
	return state, nil
}

// IsLockedOut reports whether a lockout window is running.
func (p *PinSecurity) IsLockedOut(ctx context.Context) (bool, error) {
	remaining, err := p.LockoutRemaining(ctx)
	if err != nil {
		return false, err
	}
	return remaining > 0, nil
}

// LockoutRemaining returns max(0, until-now).
func (p *PinSecurity) LockoutRemaining(ctx context.Context) (time.Duration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	until, ok, err := getTime(ctx, p.store, KeyLockoutUntilTs)
	if err != nil {
		return 0, fmt.Errorf("read lockout: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return max(0, until.Sub(p.now())), nil
}

// Attempts returns the persisted failure counter.
func (p *PinSecurity) Attempts(ctx context.Context) (FailedAttemptCounter, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	count, _, err := getInt64(ctx, p.store, KeyFailedAttemptCount)
	if err != nil {
		return FailedAttemptCounter{}, err
	}
	last, _, err := getTime(ctx, p.store, KeyLastFailedAttemptTs)
	if err != nil {
		return FailedAttemptCounter{}, err
	}
	return FailedAttemptCounter{Count: int(count), LastAttemptAt: last}, nil
}

// ClearAttempts resets the counter and ends any lockout.
func (p *PinSecurity) ClearAttempts(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clearAttempts(ctx, p.store)
}

func clearAttempts(ctx context.Context, store metadata.Repository) error {
	if err := store.Delete(ctx, KeyFailedAttemptCount, KeyLastFailedAttemptTs, KeyLockoutUntilTs); err != nil {
		return fmt.Errorf("clear attempts: %w", err)
	}
	return nil
}
