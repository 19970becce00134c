package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dmitrijs2005/mindvault/internal/applock"
	"github.com/dmitrijs2005/mindvault/internal/journal"
	"github.com/fatih/color"
)

var errLocked = errors.New("app is locked, type 'unlock' first")

func (a *App) ok(format string, args ...any) {
	fmt.Fprintln(a.out, color.GreenString("✓")+" "+fmt.Sprintf(format, args...))
}

func (a *App) warn(format string, args ...any) {
	fmt.Fprintln(a.out, color.YellowString("!")+" "+fmt.Sprintf(format, args...))
}

func (a *App) hint(format string, args ...any) {
	fmt.Fprintln(a.out, color.CyanString("→")+" "+fmt.Sprintf(format, args...))
}

// withSpinner runs fn while a spinner with suffix is shown.
func (a *App) withSpinner(suffix string, fn func() error) error {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(a.out))
	s.Suffix = " " + suffix
	s.Start()
	err := fn()
	s.Stop()
	return err
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var lockedOut *applock.LockedOutError
	var unsupported *journal.UnsupportedVersionError

	switch {
	case errors.As(err, &lockedOut):
		return lockedOut.Error()
	case errors.As(err, &unsupported):
		return fmt.Sprintf("entry was written by a newer version of mindvault (scheme %d)", unsupported.Version)
	case errors.Is(err, journal.ErrNoSession):
		return "private entries need a PIN, run 'setpin' first"
	default:
		return err.Error()
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, color.RedString("✗")+" "+describe(err))
}
