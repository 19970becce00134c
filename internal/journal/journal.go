// Package journal decides how journal content is stored. Private entries are
// sealed with the session key and tagged with the scheme version that
// produced them; reads dispatch on that tag so new schemes can be added
// without touching rows written by old ones.
package journal

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mindvault/internal/client/models"
	"github.com/dmitrijs2005/mindvault/internal/cryptox"
)

// CurrentEncryptionVersion tags everything written today.
const CurrentEncryptionVersion = 1

const fieldContent = "content"

var (
	ErrUnsupportedEncryptionVersion = errors.New("unsupported encryption version")
	ErrNoSession                    = errors.New("no session key")
)

// UnsupportedVersionError is returned for rows written by a scheme this
// build does not know. It is a compatibility problem, not a wrong key.
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%v: %d", ErrUnsupportedEncryptionVersion, e.Version)
}

func (e *UnsupportedVersionError) Unwrap() error { return ErrUnsupportedEncryptionVersion }

// KeyHolder hands out the journal key of an unlocked session.
type KeyHolder interface {
	Key() ([]byte, error)
}

// Scheme is one entry of the version table: the fields of an entry it
// seals with the field cipher.
type Scheme struct {
	Version int
	Fields  []string
}

var schemes = map[int]Scheme{
	1: {Version: 1, Fields: []string{fieldContent}},
}

// SchemeFor looks up a version. A nil version on an encrypted row means
// version 1, which predates tagging.
func SchemeFor(version *int) (Scheme, error) {
	v := 1
	if version != nil {
		v = *version
	}
	s, ok := schemes[v]
	if !ok {
		return Scheme{}, &UnsupportedVersionError{Version: v}
	}
	return s, nil
}

// Sealed is the storage form of entry content.
type Sealed struct {
	Content           string
	IsEncrypted       bool
	EncryptionVersion *int
}

// EncryptContent returns content unchanged for public entries. Private
// content is sealed under the current scheme; keys may be nil only when
// isPrivate is false.
func EncryptContent(ctx context.Context, content string, isPrivate bool, keys KeyHolder) (Sealed, error) {
	if !isPrivate {
		return Sealed{Content: content}, nil
	}
	key, err := sessionKey(keys)
	if err != nil {
		return Sealed{}, err
	}

	s := schemes[CurrentEncryptionVersion]
	out, err := cryptox.EncryptObject(ctx, cryptox.Record{fieldContent: content}, s.Fields, key)
	if err != nil {
		return Sealed{}, fmt.Errorf("encrypt content: %w", err)
	}

	v := s.Version
	return Sealed{
		Content:           out[fieldContent].(string),
		IsEncrypted:       true,
		EncryptionVersion: &v,
	}, nil
}

// DecryptContent returns the readable content of e. Plaintext rows are
// returned as they are and need no session. Rows tagged with an unknown
// version fail with *UnsupportedVersionError before any decryption is
// attempted.
func DecryptContent(ctx context.Context, e *models.Entry, keys KeyHolder) (string, error) {
	if !e.IsEncrypted {
		return e.Content, nil
	}

	s, err := SchemeFor(e.EncryptionVersion)
	if err != nil {
		return "", err
	}
	key, err := sessionKey(keys)
	if err != nil {
		return "", err
	}

	out, err := cryptox.DecryptObject(ctx, cryptox.Record{fieldContent: e.Content}, s.Fields, key)
	if err != nil {
		return "", fmt.Errorf("decrypt entry %s: %w", e.ID, err)
	}
	return out[fieldContent].(string), nil
}

// Seal applies EncryptContent to e in place using e.IsPrivate.
func Seal(ctx context.Context, e *models.Entry, plaintext string, keys KeyHolder) error {
	sealed, err := EncryptContent(ctx, plaintext, e.IsPrivate, keys)
	if err != nil {
		return err
	}
	e.Content = sealed.Content
	e.IsEncrypted = sealed.IsEncrypted
	e.EncryptionVersion = sealed.EncryptionVersion
	return nil
}

// Reencrypt moves an encrypted entry from one session key to another,
// upgrading it to the current scheme. Plaintext entries are left alone.
func Reencrypt(ctx context.Context, e *models.Entry, from, to KeyHolder) error {
	if !e.IsEncrypted {
		return nil
	}
	plain, err := DecryptContent(ctx, e, from)
	if err != nil {
		return err
	}
	return Seal(ctx, e, plain, to)
}

// Unseal replaces encrypted content with its plaintext in place. The entry
// stays private, so it is picked up again by the next legacy migration.
func Unseal(ctx context.Context, e *models.Entry, keys KeyHolder) error {
	if !e.IsEncrypted {
		return nil
	}
	plain, err := DecryptContent(ctx, e, keys)
	if err != nil {
		return err
	}
	e.Content = plain
	e.IsEncrypted = false
	e.EncryptionVersion = nil
	return nil
}

// NeedsMigration reports whether e is private but was stored in plaintext.
func NeedsMigration(e *models.Entry) bool {
	return e.NeedsEncryption()
}

func sessionKey(keys KeyHolder) ([]byte, error) {
	if keys == nil {
		return nil, ErrNoSession
	}
	return keys.Key()
}
