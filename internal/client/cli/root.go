package cli

import (
	"context"
	"fmt"
)

// Run starts the REPL and blocks until the user exits or input ends. When a
// PIN is set the user is asked to unlock first.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "mindvault (type 'help' for commands)")

	hasPin, err := a.lock.HasPin(ctx)
	switch {
	case err != nil:
		printError(a.out, err)
	case hasPin:
		if err := a.Unlock(ctx); err != nil {
			printError(a.out, err)
		}
	default:
		a.hint("No PIN set, type 'setpin' to protect private entries")
	}

	runREPL(ctx, a, func() string { return a.getStatus(ctx) }, a.reader, a.out)
}
