package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/client/models"
	"github.com/dmitrijs2005/mindvault/internal/client/repositories/entries"
	"github.com/dmitrijs2005/mindvault/internal/journal"
	"github.com/dmitrijs2005/mindvault/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// NewEntry is the user input of JournalService.Write.
type NewEntry struct {
	Title     string
	Content   string
	Mood      *int
	IsPrivate bool
}

// EntryView is an entry with its content in readable form. Err is set
// when the content could not be decrypted; Content is empty then.
type EntryView struct {
	models.Overview
	Content string
	Err     error
}

// JournalService defines journal operations for the CLI.
//
// Contract:
//   - Write: validate, seal private content and store a new entry.
//   - Read: load one entry and decrypt its content.
//   - List: load all live entries, decrypting in parallel. Per entry
//     decryption failures are reported on the view, not as an error.
//   - Delete: soft delete one entry.
//   - MigrateLegacy: encrypt entries marked private but stored in plaintext.
//
// keys may be nil while the app is locked; only encrypted content needs it.
type JournalService interface {
	Write(ctx context.Context, in NewEntry, keys journal.KeyHolder) (*models.Entry, error)
	Read(ctx context.Context, id string, keys journal.KeyHolder) (*EntryView, error)
	List(ctx context.Context, keys journal.KeyHolder) ([]EntryView, error)
	Delete(ctx context.Context, id string) error
	MigrateLegacy(ctx context.Context, keys journal.KeyHolder) (int, error)
}

type journalService struct {
	repo entries.Repository
	log  logging.Logger
	now  func() time.Time
}

// NewJournalService constructs a JournalService on top of repo.
func NewJournalService(repo entries.Repository, log logging.Logger) JournalService {
	if log == nil {
		log = logging.Nop()
	}
	return &journalService{repo: repo, log: log, now: time.Now}
}

func (s *journalService) Write(ctx context.Context, in NewEntry, keys journal.KeyHolder) (*models.Entry, error) {
	now := s.now().UTC()
	e := &models.Entry{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Mood:      in.Mood,
		IsPrivate: in.IsPrivate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}

	if err := journal.Seal(ctx, e, in.Content, keys); err != nil {
		return nil, fmt.Errorf("seal entry: %w", err)
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		return nil, fmt.Errorf("saving error: %w", err)
	}

	s.log.Debug(ctx, "entry written", "id", e.ID, "encrypted", e.IsEncrypted)
	return e, nil
}

func (s *journalService) Read(ctx context.Context, id string, keys journal.KeyHolder) (*EntryView, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving entry: %w", err)
	}

	content, err := journal.DecryptContent(ctx, e, keys)
	if err != nil {
		return nil, err
	}
	return &EntryView{Overview: e.Overview(), Content: content}, nil
}

func (s *journalService) List(ctx context.Context, keys journal.KeyHolder) ([]EntryView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error: %w", err)
	}

	views := make([]EntryView, len(rows))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, row := range rows {
		g.Go(func() error {
			views[i].Overview = row.Overview()
			views[i].Content, views[i].Err = journal.DecryptContent(ctx, row, keys)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, v := range views {
		if v.Err != nil && !errors.Is(v.Err, journal.ErrNoSession) {
			s.log.Warn(ctx, "entry decryption failed", "id", v.ID, "error", v.Err)
		}
	}
	return views, nil
}

func (s *journalService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
	}
	return nil
}

func (s *journalService) MigrateLegacy(ctx context.Context, keys journal.KeyHolder) (int, error) {
	rows, err := s.repo.ListNeedingEncryption(ctx)
	if err != nil {
		return 0, fmt.Errorf("error retrieving entries: %w", err)
	}

	n := 0
	for _, e := range rows {
		if err := journal.Seal(ctx, e, e.Content, keys); err != nil {
			return n, fmt.Errorf("seal entry %s: %w", e.ID, err)
		}
		e.UpdatedAt = s.now().UTC()
		if err := s.repo.Update(ctx, e); err != nil {
			return n, fmt.Errorf("update entry %s: %w", e.ID, err)
		}
		n++
	}

	if n > 0 {
		s.log.Info(ctx, "legacy entries encrypted", "count", n)
	}
	return n, nil
}
