package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/mindvault/internal/applock"
	"github.com/dmitrijs2005/mindvault/internal/client/client"
	"github.com/dmitrijs2005/mindvault/internal/client/config"
	"github.com/dmitrijs2005/mindvault/internal/client/services"
	"github.com/dmitrijs2005/mindvault/internal/journal"
	"github.com/dmitrijs2005/mindvault/internal/logging"
)

type App struct {
	db      *sql.DB
	lock    *applock.Controller
	pins    *services.PinService
	journal services.JournalService
	log     logging.Logger

	reader  *bufio.Reader
	out     io.Writer
	readPin func(prompt string) (string, error)
}

// NewApp opens the database named in c and wires the lock controller and
// services on top of it.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	kind, err := applock.ParseBiometryType(c.BiometricKind)
	if err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	a := newApp(db, applock.ProbeFor(kind), log, os.Stdin, os.Stdout)

	if c.LockTimeout > 0 {
		if err := a.lock.SetLockTimeout(ctx, c.LockTimeout); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return a, nil
}

func newApp(db *sql.DB, probe applock.BiometricProbe, log logging.Logger, in io.Reader, out io.Writer, opts ...applock.Option) *App {
	repos := client.NewRepositories(db)

	opts = append([]applock.Option{applock.WithLogger(log)}, opts...)
	lock := applock.NewController(repos.Metadata, nil, probe, opts...)

	a := &App{
		db:      db,
		lock:    lock,
		pins:    services.NewPinService(db, lock, log),
		journal: services.NewJournalService(repos.Entries, log),
		log:     log,
		reader:  bufio.NewReader(in),
		out:     out,
	}
	a.readPin = func(prompt string) (string, error) { return GetPin(prompt, a.out) }
	return a
}

// Close locks the app and closes the database.
func (a *App) Close() error {
	a.lock.Lock()
	return a.db.Close()
}

// keys returns the current session, or nil while locked.
func (a *App) keys() journal.KeyHolder {
	if s := a.lock.Session(); s != nil {
		return s
	}
	return nil
}

func (a *App) isUnlocked() bool {
	return a.lock.Session() != nil
}

// requireAccess fails when a PIN is set and the app is locked.
func (a *App) requireAccess(ctx context.Context) error {
	if a.isUnlocked() {
		return nil
	}
	hasPin, err := a.lock.HasPin(ctx)
	if err != nil {
		return err
	}
	if hasPin {
		return errLocked
	}
	return nil
}

// checkIdle locks the app once the idle timeout has passed and otherwise
// records activity.
func (a *App) checkIdle(ctx context.Context) error {
	if !a.isUnlocked() {
		return nil
	}

	cfg, err := a.lock.GetAppLockConfig(ctx)
	if err != nil {
		return err
	}
	idle, err := a.lock.ShouldLockApp(ctx, cfg)
	if err != nil {
		return err
	}
	if idle {
		a.lock.Lock()
		a.warn("Locked after %s of inactivity", cfg.Timeout)
		return nil
	}
	return a.lock.UpdateLastActive(ctx)
}

func (a *App) getStatus(ctx context.Context) string {
	if a.isUnlocked() {
		return "(unlocked)"
	}
	hasPin, err := a.lock.HasPin(ctx)
	if err != nil || !hasPin {
		return "(no pin)"
	}
	return "(locked)"
}
