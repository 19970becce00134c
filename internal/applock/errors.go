package applock

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidPinFormat     = errors.New("PIN must be 4 to 6 digits")
	ErrPinRequired          = errors.New("a PIN must be set first")
	ErrIncorrectPin         = errors.New("incorrect PIN")
	ErrLockedOut            = errors.New("too many failed attempts")
	ErrBiometricUnavailable = errors.New("biometric authentication is not available on this device")
	ErrSessionLocked        = errors.New("session is locked")
	ErrInvalidTimeout       = errors.New("lock timeout must be positive")
)

// LockedOutError rejects a PIN attempt made during a lockout window.
type LockedOutError struct {
	Remaining time.Duration
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("%v, try again in %s", ErrLockedOut, FormatLockoutRemaining(e.Remaining))
}

func (e *LockedOutError) Unwrap() error { return ErrLockedOut }
