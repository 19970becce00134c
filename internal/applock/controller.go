// Package applock implements the PIN app lock: PIN setup and verification,
// failed-attempt lockouts, the biometric flag, the idle timeout and the
// in-memory session that holds the journal key while the app is unlocked.
//
// The PIN is the only root secret. From it and a per-setup salt Argon2id
// yields a master secret, which is expanded twice with distinct labels: once
// into the verifier persisted as pin_hash and once into the journal key that
// lives only inside a Session. Knowing pin_hash does not give the journal key.
package applock

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mindvault/internal/common"
	"github.com/dmitrijs2005/mindvault/internal/cryptox"
	"github.com/dmitrijs2005/mindvault/internal/logging"
)

const (
	minPinLength = 4
	maxPinLength = 6
)

// Credential is the persisted form of a PIN.
type Credential struct {
	Hash []byte
	Salt []byte
}

// Controller gates access to the journal behind the PIN.
type Controller struct {
	store    metadata.Repository
	security *PinSecurity
	probe    BiometricProbe
	deriver  *cryptox.KeyDeriver
	now      func() time.Time
	log      logging.Logger

	mu      sync.Mutex
	session *Session
}

type Option func(*Controller)

// WithKeyDeriver overrides the Argon2id cost parameters.
func WithKeyDeriver(d *cryptox.KeyDeriver) Option {
	return func(c *Controller) { c.deriver = d }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// NewController wires a Controller. A nil probe reports biometrics as
// unavailable.
func NewController(store metadata.Repository, security *PinSecurity, probe BiometricProbe, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		security: security,
		probe:    probe,
		deriver:  cryptox.NewKeyDeriver(cryptox.DefaultArgon2Params),
		now:      time.Now,
		log:      logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.probe == nil {
		c.probe = StaticProbe{}
	}
	if c.security == nil {
		c.security = NewPinSecurity(store, c.now)
	}
	return c
}

// ValidatePin checks that pin is 4 to 6 ASCII digits.
func ValidatePin(pin string) error {
	if len(pin) < minPinLength || len(pin) > maxPinLength {
		return ErrInvalidPinFormat
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return ErrInvalidPinFormat
		}
	}
	return nil
}

// SetupPin sets (or replaces) the PIN and returns the unlocked session that
// goes with it. Entries encrypted under a previous PIN are not re-encrypted
// here; see the PIN change service for that.
func (c *Controller) SetupPin(ctx context.Context, pin string) (*Session, error) {
	cred, sess, err := c.PrepareCredential(ctx, pin)
	if err != nil {
		return nil, err
	}
	if err := c.SaveCredential(ctx, nil, cred); err != nil {
		sess.Lock()
		return nil, err
	}
	c.Activate(ctx, sess)
	c.log.Info(ctx, "pin set")
	return sess, nil
}

// PrepareCredential validates pin, draws a fresh salt and derives both the
// verifier and the journal key. Nothing is persisted.
func (c *Controller) PrepareCredential(ctx context.Context, pin string) (Credential, *Session, error) {
	if err := ValidatePin(pin); err != nil {
		return Credential{}, nil, err
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return Credential{}, nil, err
	}

	verifier, key, err := c.derive(ctx, pin, salt)
	if err != nil {
		return Credential{}, nil, err
	}
	return Credential{Hash: verifier, Salt: salt}, newSession(key), nil
}

// SaveCredential persists cred and clears failed attempts. A nil store
// means the controller's own store; passing a transaction-bound store lets
// callers commit the credential together with other writes.
func (c *Controller) SaveCredential(ctx context.Context, store metadata.Repository, cred Credential) error {
	if store == nil {
		store = c.store
	}
	err := store.InTx(ctx, func(ctx context.Context, tx metadata.Repository) error {
		if err := setBytes(ctx, tx, KeyPinHash, cred.Hash); err != nil {
			return err
		}
		if err := setBytes(ctx, tx, KeyPinSalt, cred.Salt); err != nil {
			return err
		}
		return clearAttempts(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("save pin: %w", err)
	}
	return nil
}

// Activate makes sess the current session, locking the previous one.
func (c *Controller) Activate(ctx context.Context, sess *Session) {
	c.mu.Lock()
	prev := c.session
	c.session = sess
	c.mu.Unlock()

	if prev != nil && prev != sess {
		prev.Lock()
	}
	if err := c.UpdateLastActive(ctx); err != nil {
		c.log.Warn(ctx, "update last active failed", "error", err)
	}
}

// RemovePin deletes the PIN, disables biometrics and locks the session.
// Entries encrypted under the removed PIN can no longer be read; the PIN
// service decrypts them first.
func (c *Controller) RemovePin(ctx context.Context) error {
	if err := c.DeleteCredential(ctx, nil); err != nil {
		return err
	}
	c.Lock()
	c.log.Info(ctx, "pin removed")
	return nil
}

// DeleteCredential removes the PIN, the biometric flag and the attempt
// counters from store (nil means the controller's own store). The current
// session is left alone.
func (c *Controller) DeleteCredential(ctx context.Context, store metadata.Repository) error {
	if store == nil {
		store = c.store
	}
	err := store.InTx(ctx, func(ctx context.Context, tx metadata.Repository) error {
		if err := tx.Delete(ctx, KeyPinHash, KeyPinSalt, KeyBiometricEnabled, KeyLastActiveTs); err != nil {
			return err
		}
		return clearAttempts(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("remove pin: %w", err)
	}
	return nil
}

// HasPin reports whether a PIN is configured.
func (c *Controller) HasPin(ctx context.Context) (bool, error) {
	hash, err := c.store.Get(ctx, KeyPinHash)
	if err != nil {
		return false, err
	}
	return len(hash) > 0, nil
}

// EnableBiometric turns on biometric unlock. Biometrics only back up the
// PIN, so a PIN must exist and the platform must offer a sensor.
func (c *Controller) EnableBiometric(ctx context.Context) error {
	ok, err := c.HasPin(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPinRequired
	}

	avail, err := c.probe.CheckAvailability(ctx)
	if err != nil {
		return fmt.Errorf("check biometric availability: %w", err)
	}
	if !avail.Available {
		return ErrBiometricUnavailable
	}

	if err := setBool(ctx, c.store, KeyBiometricEnabled, true); err != nil {
		return err
	}
	c.log.Info(ctx, "biometric enabled", "type", avail.Type.Name())
	return nil
}

func (c *Controller) DisableBiometric(ctx context.Context) error {
	return setBool(ctx, c.store, KeyBiometricEnabled, false)
}

// BiometricAvailability proxies the platform probe.
func (c *Controller) BiometricAvailability(ctx context.Context) (BiometricAvailability, error) {
	return c.probe.CheckAvailability(ctx)
}

// GetAppLockConfig reads the persisted flags, falling back to defaults.
func (c *Controller) GetAppLockConfig(ctx context.Context) (AppLockConfig, error) {
	cfg := DefaultAppLockConfig()

	pin, err := c.HasPin(ctx)
	if err != nil {
		return cfg, err
	}
	cfg.PinEnabled = pin

	bio, err := getBool(ctx, c.store, KeyBiometricEnabled)
	if err != nil {
		return cfg, err
	}
	cfg.BiometricEnabled = bio && pin

	ms, ok, err := getInt64(ctx, c.store, KeyLockTimeoutMs)
	if err != nil {
		return cfg, err
	}
	if ok && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	return cfg, nil
}

// SetLockTimeout persists the idle timeout.
func (c *Controller) SetLockTimeout(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ErrInvalidTimeout
	}
	return setInt64(ctx, c.store, KeyLockTimeoutMs, d.Milliseconds())
}

// ShouldLockApp is the idle policy: lock when no activity was ever
// recorded or when more than cfg.Timeout has passed since the last one.
func (c *Controller) ShouldLockApp(ctx context.Context, cfg AppLockConfig) (bool, error) {
	last, ok, err := getTime(ctx, c.store, KeyLastActiveTs)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, nil
	}
	return c.now().Sub(last) > cfg.Timeout, nil
}

// UpdateLastActive records user activity.
func (c *Controller) UpdateLastActive(ctx context.Context) error {
	return setTime(ctx, c.store, KeyLastActiveTs, c.now())
}

// Unlock verifies pin and, on success, returns the session holding the
// journal key. During a lockout it fails with *LockedOutError before any
// key derivation. A wrong PIN is recorded and reported as ErrIncorrectPin,
// or as *LockedOutError when that failure starts a lockout.
func (c *Controller) Unlock(ctx context.Context, pin string) (*Session, error) {
	remaining, err := c.security.LockoutRemaining(ctx)
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return nil, &LockedOutError{Remaining: remaining}
	}

	if err := ValidatePin(pin); err != nil {
		return nil, err
	}

	hash, err := getBytes(ctx, c.store, KeyPinHash)
	if err != nil {
		return nil, err
	}
	salt, err := getBytes(ctx, c.store, KeyPinSalt)
	if err != nil {
		return nil, err
	}
	if hash == nil || salt == nil {
		return nil, ErrPinRequired
	}

	verifier, key, err := c.derive(ctx, pin, salt)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(verifier)

	if subtle.ConstantTimeCompare(verifier, hash) != 1 {
		common.WipeByteArray(key)
		state, err := c.security.RecordFailedAttempt(ctx)
		if err != nil {
			return nil, err
		}
		c.log.Warn(ctx, "pin verification failed", "attempts", state.Attempts)
		if state.LockedOut {
			return nil, &LockedOutError{Remaining: state.Remaining}
		}
		return nil, ErrIncorrectPin
	}

	if err := c.security.ClearAttempts(ctx); err != nil {
		common.WipeByteArray(key)
		return nil, err
	}

	sess := newSession(key)
	c.Activate(ctx, sess)
	c.log.Debug(ctx, "unlocked")
	return sess, nil
}

// Lock discards the current session key.
func (c *Controller) Lock() {
	c.mu.Lock()
	sess := c.session
	c.session = nil
	c.mu.Unlock()
	sess.Lock()
}

// Session returns the current session, or nil when locked.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Locked() {
		return nil
	}
	return c.session
}

// Security exposes the lockout state machine.
func (c *Controller) Security() *PinSecurity {
	return c.security
}

// derive runs Argon2id off the caller's goroutine and expands the master
// secret into the verifier and the journal key. If ctx ends first the
// caller returns early and the pending result is dropped unread.
func (c *Controller) derive(ctx context.Context, pin string, salt []byte) (verifier, key []byte, err error) {
	var res cryptox.DeriveResult
	select {
	case res = <-c.deriver.DeriveKeyAsync(pin, salt):
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	if res.Err != nil {
		return nil, nil, res.Err
	}
	master := res.Key
	defer common.WipeByteArray(master)

	verifier, err = cryptox.DeriveSubkey(master, cryptox.LabelPinVerifier)
	if err != nil {
		return nil, nil, err
	}
	key, err = cryptox.DeriveSubkey(master, cryptox.LabelJournalKey)
	if err != nil {
		common.WipeByteArray(verifier)
		return nil, nil, err
	}
	return verifier, key, nil
}
