package common

import (
	"crypto/rand"
	"fmt"
)

// RandomBytes returns size bytes read from crypto/rand.
func RandomBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random: %w", err)
	}
	return b, nil
}

// WipeByteArray overwrites b with zeros. Used for PINs and keys once they
// are no longer needed. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
