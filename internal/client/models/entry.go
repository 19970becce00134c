// Package models defines the client-side data models of mindvault.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/mindvault/internal/common"
)

// Mood bounds accepted on a journal entry.
const (
	MinMood = 1
	MaxMood = 5
)

// Entry is a journal entry as stored locally.
//
// Content holds plaintext when IsEncrypted is false and an encrypted payload
// when it is true. IsPrivate records the author's intent and may run ahead of
// IsEncrypted for rows written before encryption existed.
type Entry struct {
	ID    string
	Title string

	Content string
	Mood    *int

	IsPrivate   bool
	IsEncrypted bool

	// EncryptionVersion names the scheme used to produce Content. Nil for
	// plaintext rows.
	EncryptionVersion *int

	CreatedAt time.Time
	UpdatedAt time.Time
	Deleted   bool
}

// Validate checks the user supplied fields of e.
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return common.ErrorEmptyTitle
	}
	if e.Mood != nil && (*e.Mood < MinMood || *e.Mood > MaxMood) {
		return fmt.Errorf("mood must be between %d and %d, got %d", MinMood, MaxMood, *e.Mood)
	}
	return nil
}

// NeedsEncryption reports whether e is marked private but still stored in
// plaintext.
func (e *Entry) NeedsEncryption() bool {
	return e.IsPrivate && !e.IsEncrypted
}

// Overview is the listing view of an entry.
type Overview struct {
	ID          string
	Title       string
	Mood        *int
	IsPrivate   bool
	IsEncrypted bool
	CreatedAt   time.Time
}

// Overview returns the listing view of e.
func (e *Entry) Overview() Overview {
	return Overview{
		ID:          e.ID,
		Title:       e.Title,
		Mood:        e.Mood,
		IsPrivate:   e.IsPrivate,
		IsEncrypted: e.IsEncrypted,
		CreatedAt:   e.CreatedAt,
	}
}

// IntPtr is a small helper for optional integer fields.
func IntPtr(v int) *int { return &v }
