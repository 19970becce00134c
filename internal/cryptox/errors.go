package cryptox

import "errors"

var (
	// ErrInvalidInput is returned for malformed key derivation arguments
	// (empty secret, salt of the wrong length).
	ErrInvalidInput = errors.New("invalid key derivation input")

	// ErrInvalidKeyLength means a key of the wrong size reached the cipher.
	// It is a programming error, not a user-recoverable condition.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrDecryptionFailed covers every decryption failure: wrong key, corrupted
	// payload, tampering. Callers must not try to tell these apart.
	ErrDecryptionFailed = errors.New("decryption failed")
)
