package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	checkIdle(ctx context.Context) error

	Status(ctx context.Context) error
	SetPin(ctx context.Context) error
	ChangePin(ctx context.Context) error
	RemovePin(ctx context.Context) error
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	Biometric(ctx context.Context, arg string) error
	Timeout(ctx context.Context, arg string) error

	Write(ctx context.Context) error
	Read(ctx context.Context, id string) error
	List(ctx context.Context) error
	Delete(ctx context.Context, id string) error
	Migrate(ctx context.Context) error
}

const helpText = `Available commands:
  status                 show lock settings
  setpin                 set a PIN
  changepin              change the PIN and re-encrypt private entries
  removepin              remove the PIN
  unlock | lock          open or close the journal
  biometric on|off       toggle biometric unlock
  timeout <seconds>      set the idle lock timeout
  write                  write a new entry
  (l)ist                 list entries
  read <id>              show one entry
  delete <id>            delete an entry
  migrate                encrypt private entries stored in plaintext
  exit | quit            leave the program`

// runREPL reads commands from reader until EOF or exit and dispatches them
// to a. Before every command the idle timeout is checked, so a session left
// alone for too long is locked before the command runs. Command errors are
// printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "mv %s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText)
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		if err := a.checkIdle(ctx); err != nil {
			printError(w, err)
			continue
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			if errors.Is(err, errUnknownCommand) {
				fmt.Fprintln(w, "Unknown command:", cmd)
				continue
			}
			printError(w, err)
		}
	}
}

var errUnknownCommand = errors.New("unknown command")

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	arg := func(usage string) (string, error) {
		if len(args) == 0 {
			return "", errors.New("usage: " + usage)
		}
		return args[0], nil
	}

	switch cmd {
	case "status":
		return a.Status(ctx)
	case "setpin":
		return a.SetPin(ctx)
	case "changepin":
		return a.ChangePin(ctx)
	case "removepin":
		return a.RemovePin(ctx)
	case "unlock":
		return a.Unlock(ctx)
	case "lock":
		return a.Lock(ctx)
	case "biometric":
		v, err := arg("biometric on|off")
		if err != nil {
			return err
		}
		return a.Biometric(ctx, v)
	case "timeout":
		v, err := arg("timeout <seconds>")
		if err != nil {
			return err
		}
		return a.Timeout(ctx, v)
	case "write":
		return a.Write(ctx)
	case "l", "list":
		return a.List(ctx)
	case "read":
		id, err := arg("read <id>")
		if err != nil {
			return err
		}
		return a.Read(ctx, id)
	case "delete":
		id, err := arg("delete <id>")
		if err != nil {
			return err
		}
		return a.Delete(ctx, id)
	case "migrate":
		return a.Migrate(ctx)
	default:
		return errUnknownCommand
	}
}
