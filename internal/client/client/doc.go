// Package client bootstraps local storage for the mindvault client: it opens
// the SQLite database, applies the embedded goose migrations and wires the
// repositories on top of it.
package client
