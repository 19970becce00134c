package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/applock"
	"github.com/dmitrijs2005/mindvault/internal/client/services"
)

var errPinMismatch = errors.New("PINs do not match")

// Status prints the lock configuration and state.
func (a *App) Status(ctx context.Context) error {
	cfg, err := a.lock.GetAppLockConfig(ctx)
	if err != nil {
		return err
	}
	avail, err := a.lock.BiometricAvailability(ctx)
	if err != nil {
		return err
	}

	state := "locked"
	if a.isUnlocked() {
		state = "unlocked"
	}

	fmt.Fprintf(a.out, "PIN:        %s\n", onOff(cfg.PinEnabled))
	if avail.Available {
		fmt.Fprintf(a.out, "Biometrics: %s (%s)\n", onOff(cfg.BiometricEnabled), avail.Type.Name())
	} else {
		fmt.Fprintf(a.out, "Biometrics: not available\n")
	}
	fmt.Fprintf(a.out, "Timeout:    %s\n", cfg.Timeout)
	if cfg.PinEnabled {
		fmt.Fprintf(a.out, "State:      %s\n", state)
	}

	remaining, err := a.lock.Security().LockoutRemaining(ctx)
	if err != nil {
		return err
	}
	if remaining > 0 {
		a.warn("Locked out, try again in %s", applock.FormatLockoutRemaining(remaining))
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// readNewPin asks for a PIN twice.
func (a *App) readNewPin(prompt string) (string, error) {
	pin, err := a.readPin(prompt)
	if err != nil {
		return "", err
	}
	if err := applock.ValidatePin(pin); err != nil {
		return "", err
	}
	again, err := a.readPin("Repeat PIN")
	if err != nil {
		return "", err
	}
	if pin != again {
		return "", errPinMismatch
	}
	return pin, nil
}

// SetPin sets the first PIN. Replacing an existing one goes through
// ChangePin so encrypted entries follow the new key.
func (a *App) SetPin(ctx context.Context) error {
	hasPin, err := a.lock.HasPin(ctx)
	if err != nil {
		return err
	}
	if hasPin {
		a.hint("A PIN is already set, use 'changepin'")
		return nil
	}

	pin, err := a.readNewPin("New PIN (4-6 digits)")
	if err != nil {
		return err
	}

	err = a.withSpinner("Deriving keys...", func() error {
		_, err := a.lock.SetupPin(ctx, pin)
		return err
	})
	if err != nil {
		return err
	}

	a.ok("PIN set, journal unlocked")
	a.hint("Run 'migrate' to encrypt private entries written before the PIN")
	return nil
}

// ChangePin replaces the PIN and re-encrypts private entries.
func (a *App) ChangePin(ctx context.Context) error {
	oldPin, err := a.readPin("Current PIN")
	if err != nil {
		return err
	}
	newPin, err := a.readNewPin("New PIN (4-6 digits)")
	if err != nil {
		return err
	}

	var res services.RekeyResult
	err = a.withSpinner("Re-encrypting journal...", func() error {
		var err error
		res, err = a.pins.ChangePin(ctx, oldPin, newPin)
		return err
	})
	if err != nil {
		return err
	}

	a.ok("PIN changed, %d private entries re-encrypted", res.Updated)
	if res.Skipped > 0 {
		a.warn("%d entries could not be read with the old PIN and were left as they are", res.Skipped)
	}
	return nil
}

// RemovePin asks for confirmation and the current PIN, then removes the
// PIN. Encrypted entries are stored as plaintext again.
func (a *App) RemovePin(ctx context.Context) error {
	hasPin, err := a.lock.HasPin(ctx)
	if err != nil {
		return err
	}
	if !hasPin {
		a.hint("No PIN is set")
		return nil
	}

	a.warn("Private entries will be stored unencrypted until a new PIN is set")
	sure, err := GetYesNo(a.reader, "Remove the PIN?", a.out)
	if err != nil {
		return err
	}
	if !sure {
		a.hint("PIN kept")
		return nil
	}

	pin, err := a.readPin("Current PIN")
	if err != nil {
		return err
	}

	var res services.RekeyResult
	err = a.withSpinner("Decrypting journal...", func() error {
		var err error
		res, err = a.pins.RemovePin(ctx, pin)
		return err
	})
	if err != nil {
		return err
	}

	a.ok("PIN removed, %d private entries decrypted", res.Updated)
	if res.Skipped > 0 {
		a.warn("%d entries could not be decrypted and stay unreadable", res.Skipped)
	}
	if res.Updated > 0 {
		a.hint("Run 'setpin' and then 'migrate' to encrypt them again")
	}
	return nil
}

// Unlock asks for the PIN and opens the journal.
func (a *App) Unlock(ctx context.Context) error {
	if a.isUnlocked() {
		a.hint("Already unlocked")
		return nil
	}

	remaining, err := a.lock.Security().LockoutRemaining(ctx)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return &applock.LockedOutError{Remaining: remaining}
	}

	pin, err := a.readPin("PIN")
	if err != nil {
		return err
	}

	err = a.withSpinner("Unlocking...", func() error {
		_, err := a.lock.Unlock(ctx, pin)
		return err
	})
	if err != nil {
		return err
	}

	a.ok("Unlocked")
	return nil
}

// Lock discards the session key.
func (a *App) Lock(ctx context.Context) error {
	a.lock.Lock()
	a.ok("Locked")
	return nil
}

// Biometric turns the biometric flag on or off.
func (a *App) Biometric(ctx context.Context, arg string) error {
	if err := a.requireAccess(ctx); err != nil {
		return err
	}

	switch arg {
	case "on":
		if err := a.lock.EnableBiometric(ctx); err != nil {
			return err
		}
		a.ok("Biometric unlock enabled")
	case "off":
		if err := a.lock.DisableBiometric(ctx); err != nil {
			return err
		}
		a.ok("Biometric unlock disabled")
	default:
		return errors.New("usage: biometric on|off")
	}
	return nil
}

// Timeout sets the idle timeout in seconds.
func (a *App) Timeout(ctx context.Context, arg string) error {
	if err := a.requireAccess(ctx); err != nil {
		return err
	}

	secs, err := strconv.Atoi(arg)
	if err != nil {
		return errors.New("usage: timeout <seconds>")
	}
	d := time.Duration(secs) * time.Second
	if err := a.lock.SetLockTimeout(ctx, d); err != nil {
		return err
	}
	a.ok("Lock timeout set to %s", d)
	return nil
}
