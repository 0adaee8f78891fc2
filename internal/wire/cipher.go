package wire

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

// ErrIntegrity indicates a payload was tampered with or encrypted
// under a different key. Callers must treat it as a fatal transport
// fault and never attempt to interpret the bytes.
var ErrIntegrity = errors.New("message failed integrity check")

// Cipher seals and opens message payloads using AES-256-GCM.
// Every message on the auth and game channels passes through it;
// nothing above this layer sees raw network bytes.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a raw AES key.
// key must be a valid AES length (16/24/32 bytes).
func NewCipher(key []byte) (*Cipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts one plaintext payload, returning nonce || ciphertext.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	// AES-GCM requires a unique nonce per encryption under the same key.
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a payload previously produced by Seal.
// Returns ErrIntegrity if authentication fails.
func (c *Cipher) Open(payload []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(payload) < nonceSize {
		return nil, ErrIntegrity
	}
	// Payload format is nonce || ciphertext.
	nonce := payload[:nonceSize]
	ciphertext := payload[nonceSize:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrIntegrity
	}
	return plaintext, nil
}
