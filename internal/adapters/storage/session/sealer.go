package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

// KeySize is the length of a sealing key in bytes.
const KeySize = 32

const nonceSize = 24

// ErrOpen is returned when a sealed value cannot be authenticated.
var ErrOpen = errors.New("cannot open sealed value")

// Sealer encrypts tokens at rest with NaCl secretbox.
type Sealer struct {
	key [KeySize]byte
}

// NewSealer builds a sealer from a raw key.
// PRE: len(key) == KeySize
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("sealing key must be %d bytes, got %d", KeySize, len(key))
	}
	s := &Sealer{}
	copy(s.key[:], key)
	return s, nil
}

// NewSealerHex builds a sealer from a hex-encoded key.
func NewSealerHex(key string) (*Sealer, error) {
	raw, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("decode sealing key: %w", err)
	}
	return NewSealer(raw)
}

// Seal encrypts plaintext under a fresh random nonce.
// POST: output is nonce || box
func (s *Sealer) Seal(plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed []byte) (string, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrOpen
	}
	return string(out), nil
}
