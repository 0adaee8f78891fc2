package wire

import "crypto/sha256"

// KeySource supplies the symmetric key for one connection. It is the
// substitution point for stronger key exchange: the framing contract
// below never cares where the key came from.
type KeySource interface {
	SessionKey() []byte
}

// PresharedKey derives a static AES-256 key from a passphrase shared
// by client and server out of band. Key material is held in memory
// only; it is never logged or persisted.
type PresharedKey struct {
	key [sha256.Size]byte
}

// NewPresharedKey derives the session key as SHA-256(passphrase).
func NewPresharedKey(passphrase string) *PresharedKey {
	return &PresharedKey{key: sha256.Sum256([]byte(passphrase))}
}

// SessionKey returns the derived 32-byte key.
func (p *PresharedKey) SessionKey() []byte {
	return p.key[:]
}
