package applock

import "time"

// DefaultLockTimeout is the idle time after which the app locks itself.
const DefaultLockTimeout = 5 * time.Minute

// AppLockConfig is the lock configuration shown to the UI. It is a value:
// callers get a copy and change settings only through the Controller.
type AppLockConfig struct {
	PinEnabled       bool
	BiometricEnabled bool
	Timeout          time.Duration
}

// DefaultAppLockConfig is the configuration of a device with no PIN.
func DefaultAppLockConfig() AppLockConfig {
	return AppLockConfig{Timeout: DefaultLockTimeout}
}
