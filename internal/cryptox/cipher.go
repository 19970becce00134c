package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// EncryptedPrefix marks a field value as an encrypted payload.
// Format: ENC:base64(nonce|ciphertext|tag).
const EncryptedPrefix = "ENC:"

const (
	nonceSize = 12
	tagSize   = 16
)

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// EncryptField encrypts plaintext with AES-256-GCM under key. A fresh random
// nonce is drawn for every call, so equal plaintexts never produce equal
// payloads.
func EncryptField(plaintext string, key []byte) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize, nonceSize+len(plaintext)+tagSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	sealed := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptField reverses EncryptField. Apart from ErrInvalidKeyLength, every
// failure is reported as ErrDecryptionFailed.
func DecryptField(payload string, key []byte) (string, error) {
	aead, err := newGCM(key)
	if err != nil {
		return "", err
	}

	raw, ok := decodePayload(payload)
	if !ok {
		return "", ErrDecryptionFailed
	}

	plaintext, err := aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether value has the structure of an encrypted
// payload. It never attempts decryption; plaintext that happens to look like
// a payload is classified as encrypted and then fails DecryptField.
func IsEncrypted(value string) bool {
	_, ok := decodePayload(value)
	return ok
}

func decodePayload(payload string) ([]byte, bool) {
	encoded, ok := strings.CutPrefix(payload, EncryptedPrefix)
	if !ok {
		return nil, false
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) < nonceSize+tagSize {
		return nil, false
	}
	return raw, true
}
