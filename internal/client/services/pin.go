package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/applock"
	"github.com/dmitrijs2005/mindvault/internal/client/models"
	"github.com/dmitrijs2005/mindvault/internal/client/repositories/entries"
	"github.com/dmitrijs2005/mindvault/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/mindvault/internal/cryptox"
	"github.com/dmitrijs2005/mindvault/internal/dbx"
	"github.com/dmitrijs2005/mindvault/internal/journal"
	"github.com/dmitrijs2005/mindvault/internal/logging"
)

// RekeyResult counts the encrypted entries handled by a PIN change or
// removal. Skipped entries did not decrypt under the current PIN (for
// example rows left behind by an earlier removal) and were not touched.
type RekeyResult struct {
	Updated int
	Skipped int
}

// PinService changes and removes the PIN without losing private entries.
type PinService struct {
	db   *sql.DB
	lock *applock.Controller
	log  logging.Logger
	now  func() time.Time
}

// NewPinService constructs a PinService. db must be the database backing
// the controller's metadata store.
func NewPinService(db *sql.DB, lock *applock.Controller, log logging.Logger) *PinService {
	if log == nil {
		log = logging.Nop()
	}
	return &PinService{db: db, lock: lock, log: log, now: time.Now}
}

// ChangePin verifies oldPin, then re-encrypts every encrypted entry under
// the key of newPin and stores the new credential. Both happen in a single
// transaction: if anything fails the old PIN and the old ciphertext stay in
// place. Entries that do not decrypt under oldPin are skipped; entries of
// an unknown scheme version abort the change. On success the new session
// becomes current.
func (s *PinService) ChangePin(ctx context.Context, oldPin, newPin string) (RekeyResult, error) {
	if err := applock.ValidatePin(newPin); err != nil {
		return RekeyResult{}, err
	}

	oldSess, err := s.lock.Unlock(ctx, oldPin)
	if err != nil {
		return RekeyResult{}, err
	}

	cred, newSess, err := s.lock.PrepareCredential(ctx, newPin)
	if err != nil {
		return RekeyResult{}, err
	}

	var res RekeyResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		res, err = s.rewriteEncrypted(ctx, entries.NewSQLiteRepository(tx), func(e *models.Entry) error {
			return journal.Reencrypt(ctx, e, oldSess, newSess)
		})
		if err != nil {
			return err
		}
		return s.lock.SaveCredential(ctx, metadata.NewSQLiteRepository(tx), cred)
	})
	if err != nil {
		newSess.Lock()
		s.log.Error(ctx, "pin change failed", "error", err)
		return RekeyResult{}, fmt.Errorf("change pin: %w", err)
	}

	s.lock.Activate(ctx, newSess)
	s.log.Info(ctx, "pin changed", "reencrypted", res.Updated, "skipped", res.Skipped)
	return res, nil
}

// RemovePin verifies pin, stores every encrypted entry as plaintext (still
// marked private) and deletes the credential in one transaction, then locks
// the app. A later PIN plus MigrateLegacy seals those entries again.
func (s *PinService) RemovePin(ctx context.Context, pin string) (RekeyResult, error) {
	sess, err := s.lock.Unlock(ctx, pin)
	if err != nil {
		return RekeyResult{}, err
	}

	var res RekeyResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		res, err = s.rewriteEncrypted(ctx, entries.NewSQLiteRepository(tx), func(e *models.Entry) error {
			return journal.Unseal(ctx, e, sess)
		})
		if err != nil {
			return err
		}
		return s.lock.DeleteCredential(ctx, metadata.NewSQLiteRepository(tx))
	})
	if err != nil {
		s.log.Error(ctx, "pin removal failed", "error", err)
		return RekeyResult{}, fmt.Errorf("remove pin: %w", err)
	}

	s.lock.Lock()
	s.log.Info(ctx, "pin removed", "decrypted", res.Updated, "skipped", res.Skipped)
	return res, nil
}

func (s *PinService) rewriteEncrypted(ctx context.Context, repo entries.Repository, rewrite func(e *models.Entry) error) (RekeyResult, error) {
	var res RekeyResult

	rows, err := repo.ListEncrypted(ctx)
	if err != nil {
		return res, err
	}
	for _, e := range rows {
		err := rewrite(e)
		if errors.Is(err, cryptox.ErrDecryptionFailed) {
			s.log.Warn(ctx, "entry left unchanged", "id", e.ID, "error", err)
			res.Skipped++
			continue
		}
		if err != nil {
			return res, fmt.Errorf("rewrite entry %s: %w", e.ID, err)
		}

		e.UpdatedAt = s.now().UTC()
		if err := repo.Update(ctx, e); err != nil {
			return res, err
		}
		res.Updated++
	}
	return res, nil
}
