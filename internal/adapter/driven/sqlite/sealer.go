package sqlite

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

// errCiphertextTooShort is returned for stored values shorter than a nonce.
var errCiphertextTooShort = errors.New("ciphertext too short")

// sealer encrypts values with AES-256-GCM. The slot a value belongs to is
// bound in as additional data, so a row copied to another slot fails to open.
type sealer struct {
	aead cipher.AEAD
}

func newSealer(key []byte) (*sealer, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return &sealer{aead: aead}, nil
}

// seal returns base64(nonce || ciphertext || tag).
func (s *sealer) seal(slot, plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(slot))
	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *sealer) open(slot, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	n := s.aead.NonceSize()
	if len(data) < n {
		return "", errCiphertextTooShort
	}

	plaintext, err := s.aead.Open(nil, data[:n], data[n:], []byte(slot))
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	return string(plaintext), nil
}
