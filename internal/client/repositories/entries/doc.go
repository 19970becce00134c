// Package entries provides the local persistence layer for journal entries.
//
// # Data Model
//
// Each row mirrors models.Entry: a plaintext title and mood, the content
// column (plaintext or an encrypted payload), the is_private and
// is_encrypted flags, a nullable encryption_version, millisecond timestamps
// and a soft-delete flag. The repository never encrypts or decrypts; it
// stores whatever the journal layer hands it.
//
// # Transactions
//
// SQLiteRepository works over dbx.DBTX, so the same code runs on a *sql.DB
// or inside a *sql.Tx (see dbx.WithTx), which is how PIN changes re-encrypt
// every entry atomically.
//
//	repo := entries.NewSQLiteRepository(db)
//	_ = repo.Insert(ctx, entry)
//	list, _ := repo.List(ctx)
//	one, _ := repo.GetByID(ctx, id)
//	_ = repo.DeleteByID(ctx, id)
package entries
