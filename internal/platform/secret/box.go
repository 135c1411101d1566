// Package secret seals small secrets, such as OAuth refresh tokens, before
// they are written to the database.
package secret

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
	// hkdfInfo binds derived keys to this use so the configured key can be shared.
	hkdfInfo = "memberguard refresh token sealing v1"
)

var (
	// ErrShortKey is returned when the configured key material is too short.
	ErrShortKey = errors.New("encryption key must be at least 32 bytes")
	// ErrOpen is returned when a sealed value was tampered with or sealed under another key.
	ErrOpen = errors.New("failed to open sealed value")
)

// Box seals and opens values with XSalsa20-Poly1305.
type Box struct {
	key [keySize]byte
}

// NewBox derives a sealing key from keyMaterial.
func NewBox(keyMaterial string) (*Box, error) {
	if len(keyMaterial) < keySize {
		return nil, ErrShortKey
	}

	b := &Box{}
	r := hkdf.New(sha256.New, []byte(keyMaterial), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(r, b.key[:]); err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return b, nil
}

// Seal encrypts plaintext. The random nonce is prepended to the output.
func (b *Box) Seal(plaintext []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], plaintext, &nonce, &b.key), nil
}

// Open decrypts a value produced by Seal.
func (b *Box) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	plaintext, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &b.key)
	if !ok {
		return nil, ErrOpen
	}
	return plaintext, nil
}
