package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/mindvault/internal/client/migrations"
	"github.com/dmitrijs2005/mindvault/internal/common"
	"github.com/dmitrijs2005/mindvault/internal/cryptox"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	goose.SetBaseFS(migrations.Migrations)
	require.NoError(t, goose.SetDialect("sqlite3"))
	require.NoError(t, goose.UpContext(context.Background(), db, "."))
	return db
}

type staticKey []byte

func (k staticKey) Key() ([]byte, error) { return k, nil }

func newKey(t *testing.T) staticKey {
	t.Helper()
	k, err := common.RandomBytes(cryptox.KeySize)
	require.NoError(t, err)
	return k
}

func oneRow[T any](t *testing.T, db *sql.DB, q string, args ...any) T {
	t.Helper()
	var out T
	require.NoError(t, db.QueryRow(q, args...).Scan(&out))
	return out
}
