package applock

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/client/repositories/metadata"
)

// Keys of the persisted app lock state.
const (
	KeyPinHash             = "pin_hash"
	KeyPinSalt             = "pin_salt"
	KeyBiometricEnabled    = "biometric_enabled"
	KeyLockTimeoutMs       = "lock_timeout_ms"
	KeyLastActiveTs        = "last_active_ts"
	KeyFailedAttemptCount  = "failed_attempt_count"
	KeyLastFailedAttemptTs = "last_failed_attempt_ts"
	KeyLockoutUntilTs      = "lockout_until_ts"
)

func getInt64(ctx context.Context, store metadata.Repository, key string) (int64, bool, error) {
	raw, err := store.Get(ctx, key)
	if err != nil {
		return 0, false, err
	}
	if len(raw) == 0 {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("metadata[%s]: %w", key, err)
	}
	return v, true, nil
}

func setInt64(ctx context.Context, store metadata.Repository, key string, v int64) error {
	return store.Set(ctx, key, []byte(strconv.FormatInt(v, 10)))
}

func getTime(ctx context.Context, store metadata.Repository, key string) (time.Time, bool, error) {
	ms, ok, err := getInt64(ctx, store, key)
	if err != nil || !ok {
		return time.Time{}, ok, err
	}
	return time.UnixMilli(ms), true, nil
}

func setTime(ctx context.Context, store metadata.Repository, key string, t time.Time) error {
	return setInt64(ctx, store, key, t.UnixMilli())
}

func getBool(ctx context.Context, store metadata.Repository, key string) (bool, error) {
	raw, err := store.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		return false, err
	}
	v, err := strconv.ParseBool(string(raw))
	if err != nil {
		return false, fmt.Errorf("metadata[%s]: %w", key, err)
	}
	return v, nil
}

func setBool(ctx context.Context, store metadata.Repository, key string, v bool) error {
	return store.Set(ctx, key, []byte(strconv.FormatBool(v)))
}

func getBytes(ctx context.Context, store metadata.Repository, key string) ([]byte, error) {
	raw, err := store.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		return nil, err
	}
	b, err := base64.StdEncoding.DecodeString(string(raw))
	if err != nil {
		return nil, fmt.Errorf("metadata[%s]: %w", key, err)
	}
	return b, nil
}

func setBytes(ctx context.Context, store metadata.Repository, key string, b []byte) error {
	return store.Set(ctx, key, []byte(base64.StdEncoding.EncodeToString(b)))
}
