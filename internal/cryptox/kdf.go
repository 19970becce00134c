// Package cryptox holds the cryptographic building blocks of mindvault:
// password based key derivation, authenticated encryption of single string
// fields and selective encryption of record fields.
package cryptox

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/dmitrijs2005/mindvault/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
)

const (
	// SaltSize is the length of every salt fed to DeriveKey.
	SaltSize = 32
	// KeySize is the length of derived keys and of keys accepted by the cipher.
	KeySize = 32
)

// Labels used with DeriveSubkey. The verifier stored on disk and the journal
// encryption key come from the same master secret but never from the same label.
const (
	LabelPinVerifier = "mindvault/pin-verifier/v1"
	LabelJournalKey  = "mindvault/journal-key/v1"
)

// Argon2Params are the cost parameters of Argon2id.
type Argon2Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultArgon2Params takes tens to low hundreds of milliseconds on a phone
// class CPU, enough to make brute forcing a 4-6 digit PIN expensive.
var DefaultArgon2Params = Argon2Params{Time: 3, Memory: 64 * 1024, Threads: 4}

// KeyDeriver turns a low-entropy secret and a salt into a KeySize key.
type KeyDeriver struct {
	params Argon2Params
}

// NewKeyDeriver returns a KeyDeriver using p.
func NewKeyDeriver(p Argon2Params) *KeyDeriver {
	return &KeyDeriver{params: p}
}

var defaultDeriver = NewKeyDeriver(DefaultArgon2Params)

// GenerateSalt returns SaltSize bytes read from crypto/rand.
func GenerateSalt() ([]byte, error) {
	salt, err := common.RandomBytes(SaltSize)
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives a key from secret and salt with the default parameters.
func DeriveKey(secret string, salt []byte) ([]byte, error) {
	return defaultDeriver.DeriveKey(secret, salt)
}

// DeriveKey derives a KeySize key with Argon2id. The result is deterministic
// for a given (secret, salt) pair.
func (d *KeyDeriver) DeriveKey(secret string, salt []byte) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrInvalidInput)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("%w: salt must be %d bytes, got %d", ErrInvalidInput, SaltSize, len(salt))
	}
	return argon2.IDKey([]byte(secret), salt, d.params.Time, d.params.Memory, d.params.Threads, KeySize), nil
}

// DeriveResult is delivered by DeriveKeyAsync.
type DeriveResult struct {
	Key []byte
	Err error
}

// DeriveKeyAsync runs DeriveKey on its own goroutine. The channel receives
// exactly one result and is then closed. A caller that stops listening leaves
// the result unread; it is never cached.
func (d *KeyDeriver) DeriveKeyAsync(secret string, salt []byte) <-chan DeriveResult {
	out := make(chan DeriveResult, 1)
	go func() {
		defer close(out)
		key, err := d.DeriveKey(secret, salt)
		out <- DeriveResult{Key: key, Err: err}
	}()
	return out
}

// DeriveSubkey expands master into a KeySize key bound to label (HKDF-SHA256).
func DeriveSubkey(master []byte, label string) ([]byte, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	if label == "" {
		return nil, fmt.Errorf("%w: empty label", ErrInvalidInput)
	}
	sub := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master, nil, []byte(label)), sub); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return sub, nil
}
