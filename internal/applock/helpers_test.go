package applock

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/client/migrations"
	"github.com/dmitrijs2005/mindvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mindvault/internal/cryptox"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var testDeriver = cryptox.NewKeyDeriver(cryptox.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1})

func setupStore(t *testing.T) *metadata.SQLiteRepository {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return metadata.NewSQLiteRepository(db)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestController(t *testing.T, probe BiometricProbe) (*Controller, *metadata.SQLiteRepository, *fakeClock) {
	t.Helper()
	store := setupStore(t)
	clock := newFakeClock()
	ctrl := NewController(store, NewPinSecurity(store, clock.Now), probe,
		WithKeyDeriver(testDeriver), WithClock(clock.Now))
	return ctrl, store, clock
}
