package applock

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePin(t *testing.T) {
	tests := []struct {
		pin     string
		wantErr bool
	}{
		{"1234", false},
		{"12345", false},
		{"123456", false},
		{"000000", false},
		{"", true},
		{"123", true},
		{"1234567", true},
		{"12ab", true},
		{"12 4", true},
		{"١٢٣٤", true},
	}
	for _, tt := range tests {
		t.Run(tt.pin, func(t *testing.T) {
			err := ValidatePin(tt.pin)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidPinFormat)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSetupPin_RejectsBadFormatWithoutPersisting(t *testing.T) {
	ctrl, store, _ := newTestController(t, nil)
	ctx := context.Background()

	for _, pin := range []string{"123", "1234567", "12ab"} {
		_, err := ctrl.SetupPin(ctx, pin)
		require.ErrorIs(t, err, ErrInvalidPinFormat, pin)
	}

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSetupPin_PersistsHashAndSalt(t *testing.T) {
	ctx := context.Background()

	for _, pin := range []string{"1234", "123456"} {
		t.Run(pin, func(t *testing.T) {
			ctrl, store, _ := newTestController(t, nil)

			sess, err := ctrl.SetupPin(ctx, pin)
			require.NoError(t, err)
			require.NotNil(t, sess)

			rawHash, err := store.Get(ctx, KeyPinHash)
			require.NoError(t, err)
			rawSalt, err := store.Get(ctx, KeyPinSalt)
			require.NoError(t, err)

			hash, err := base64.StdEncoding.DecodeString(string(rawHash))
			require.NoError(t, err)
			salt, err := base64.StdEncoding.DecodeString(string(rawSalt))
			require.NoError(t, err)
			assert.Len(t, hash, cryptox.KeySize)
			assert.Len(t, salt, cryptox.SaltSize)

			key, err := sess.Key()
			require.NoError(t, err)
			assert.Len(t, key, cryptox.KeySize)
			assert.NotEqual(t, hash, key, "stored verifier must not be the journal key")

			ok, err := ctrl.HasPin(ctx)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Same(t, sess, ctrl.Session())
		})
	}
}

func TestSetupPin_FreshSaltEachTime(t *testing.T) {
	ctrl, store, _ := newTestController(t, nil)
	ctx := context.Background()

	first, err := ctrl.SetupPin(ctx, "1234")
	require.NoError(t, err)
	salt1, _ := store.Get(ctx, KeyPinSalt)

	second, err := ctrl.SetupPin(ctx, "1234")
	require.NoError(t, err)
	salt2, _ := store.Get(ctx, KeyPinSalt)

	assert.NotEqual(t, salt1, salt2)
	assert.True(t, first.Locked(), "previous session is locked on re-setup")
	assert.False(t, second.Locked())
}

func TestUnlock_CorrectPinYieldsSameKey(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	ctx := context.Background()

	sess, err := ctrl.SetupPin(ctx, "2468")
	require.NoError(t, err)
	want, err := sess.Key()
	require.NoError(t, err)
	want = append([]byte(nil), want...)

	ctrl.Lock()
	assert.Nil(t, ctrl.Session())

	sess, err = ctrl.Unlock(ctx, "2468")
	require.NoError(t, err)
	got, err := sess.Key()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUnlock_WrongPinThenLockout(t *testing.T) {
	ctrl, _, clock := newTestController(t, nil)
	ctx := context.Background()

	_, err := ctrl.SetupPin(ctx, "1234")
	require.NoError(t, err)
	ctrl.Lock()

	_, err = ctrl.Unlock(ctx, "0000")
	require.ErrorIs(t, err, ErrIncorrectPin)
	_, err = ctrl.Unlock(ctx, "1111")
	require.ErrorIs(t, err, ErrIncorrectPin)

	_, err = ctrl.Unlock(ctx, "2222")
	var lockedOut *LockedOutError
	require.True(t, errors.As(err, &lockedOut))
	assert.Equal(t, 30*time.Second, lockedOut.Remaining)
	assert.ErrorIs(t, err, ErrLockedOut)

	// the correct PIN is refused while the window runs
	_, err = ctrl.Unlock(ctx, "1234")
	require.ErrorIs(t, err, ErrLockedOut)
	assert.Nil(t, ctrl.Session())

	counter, err := ctrl.Security().Attempts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, counter.Count, "attempts during lockout are not counted")

	clock.Advance(31 * time.Second)

	sess, err := ctrl.Unlock(ctx, "1234")
	require.NoError(t, err)
	assert.False(t, sess.Locked())

	counter, err = ctrl.Security().Attempts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counter.Count)
}

func TestUnlock_InvalidFormatNotCounted(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	ctx := context.Background()

	_, err := ctrl.SetupPin(ctx, "1234")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err = ctrl.Unlock(ctx, "12")
		require.ErrorIs(t, err, ErrInvalidPinFormat)
	}

	counter, err := ctrl.Security().Attempts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counter.Count)
}

func TestUnlock_NoPinConfigured(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)

	_, err := ctrl.Unlock(context.Background(), "1234")
	require.ErrorIs(t, err, ErrPinRequired)
}

func TestUnlock_CancelledContext(t *testing.T) {
	store := setupStore(t)
	ctrl := NewController(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, ctrl.SaveCredential(ctx, nil, Credential{
		Hash: make([]byte, cryptox.KeySize),
		Salt: make([]byte, cryptox.SaltSize),
	}))

	cctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err := ctrl.Unlock(cctx, "1234")
	require.ErrorIs(t, err, context.Canceled)
}

func TestLock_WipesSessionKey(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	ctx := context.Background()

	sess, err := ctrl.SetupPin(ctx, "1234")
	require.NoError(t, err)
	key, err := sess.Key()
	require.NoError(t, err)

	ctrl.Lock()

	assert.Equal(t, make([]byte, len(key)), key)
	_, err = sess.Key()
	require.ErrorIs(t, err, ErrSessionLocked)
}

func TestRemovePin(t *testing.T) {
	ctrl, store, _ := newTestController(t, ProbeFor(BiometryFingerprint))
	ctx := context.Background()

	sess, err := ctrl.SetupPin(ctx, "1234")
	require.NoError(t, err)
	require.NoError(t, ctrl.EnableBiometric(ctx))
	_, err = ctrl.Unlock(ctx, "9999")
	require.ErrorIs(t, err, ErrIncorrectPin)

	require.NoError(t, ctrl.RemovePin(ctx))

	for _, k := range []string{KeyPinHash, KeyPinSalt, KeyBiometricEnabled, KeyFailedAttemptCount} {
		v, err := store.Get(ctx, k)
		require.NoError(t, err)
		assert.Nil(t, v, k)
	}
	assert.True(t, sess.Locked())

	cfg, err := ctrl.GetAppLockConfig(ctx)
	require.NoError(t, err)
	assert.False(t, cfg.PinEnabled)
	assert.False(t, cfg.BiometricEnabled)
}

func TestEnableBiometric(t *testing.T) {
	ctx := context.Background()

	t.Run("requires pin", func(t *testing.T) {
		ctrl, _, _ := newTestController(t, ProbeFor(BiometryFace))
		require.ErrorIs(t, ctrl.EnableBiometric(ctx), ErrPinRequired)
	})

	t.Run("requires sensor", func(t *testing.T) {
		ctrl, _, _ := newTestController(t, nil)
		_, err := ctrl.SetupPin(ctx, "1234")
		require.NoError(t, err)
		require.ErrorIs(t, ctrl.EnableBiometric(ctx), ErrBiometricUnavailable)

		cfg, err := ctrl.GetAppLockConfig(ctx)
		require.NoError(t, err)
		assert.False(t, cfg.BiometricEnabled)
	})

	t.Run("enable and disable", func(t *testing.T) {
		ctrl, _, _ := newTestController(t, ProbeFor(BiometryFace))
		_, err := ctrl.SetupPin(ctx, "1234")
		require.NoError(t, err)

		avail, err := ctrl.BiometricAvailability(ctx)
		require.NoError(t, err)
		assert.Equal(t, Available(BiometryFace), avail)

		require.NoError(t, ctrl.EnableBiometric(ctx))
		cfg, err := ctrl.GetAppLockConfig(ctx)
		require.NoError(t, err)
		assert.True(t, cfg.BiometricEnabled)

		require.NoError(t, ctrl.DisableBiometric(ctx))
		cfg, err = ctrl.GetAppLockConfig(ctx)
		require.NoError(t, err)
		assert.False(t, cfg.BiometricEnabled)
	})
}

func TestGetAppLockConfig_DefaultsAndTimeout(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	ctx := context.Background()

	cfg, err := ctrl.GetAppLockConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultAppLockConfig(), cfg)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)

	require.ErrorIs(t, ctrl.SetLockTimeout(ctx, 0), ErrInvalidTimeout)
	require.NoError(t, ctrl.SetLockTimeout(ctx, 90*time.Second))

	cfg, err = ctrl.GetAppLockConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
}

func TestShouldLockApp(t *testing.T) {
	ctrl, _, clock := newTestController(t, nil)
	ctx := context.Background()
	cfg := AppLockConfig{PinEnabled: true, Timeout: 300000 * time.Millisecond}

	lock, err := ctrl.ShouldLockApp(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, lock, "no recorded activity locks")

	require.NoError(t, ctrl.UpdateLastActive(ctx))

	clock.Advance(299000 * time.Millisecond)
	lock, err = ctrl.ShouldLockApp(ctx, cfg)
	require.NoError(t, err)
	assert.False(t, lock)

	clock.Advance(2000 * time.Millisecond)
	lock, err = ctrl.ShouldLockApp(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, lock)
}
