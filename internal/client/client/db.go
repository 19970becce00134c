package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/mindvault/internal/client/migrations"
	"github.com/dmitrijs2005/mindvault/internal/client/repositories/entries"
	"github.com/dmitrijs2005/mindvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mindvault/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Repositories groups the stores sharing one database handle.
type Repositories struct {
	DB       *sql.DB
	Metadata *metadata.SQLiteRepository
	Entries  *entries.SQLiteRepository
}

// NewRepositories wires the repositories on top of db.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		DB:       db,
		Metadata: metadata.NewSQLiteRepository(db),
		Entries:  entries.NewSQLiteRepository(db),
	}
}

// RunMigrations brings the schema up to date. Running it again is a no-op.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// InitDatabase opens (creating if needed) the database at path and applies
// migrations. The pool holds a single connection, so code running inside a
// transaction must use the transaction handle only.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		abs, err := filex.EnsureParentDir(path)
		if err != nil {
			return nil, err
		}
		dsn = abs
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure sqlite: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
