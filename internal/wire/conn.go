package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// MaxFrameSize bounds a single encrypted frame. Anything larger is a
// protocol violation, not a legitimate message.
const MaxFrameSize = 64 * 1024

// ErrFrameTooLarge indicates a frame header declared a length over MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame exceeds maximum size")

// SecureConn wraps a net.Conn with encrypted, length-prefixed framing.
// Each frame on the stream is a 4-byte big-endian length followed by a
// sealed payload. Partial reads are reassembled before decoding, so a
// message boundary is never inferred from a single read.
type SecureConn struct {
	conn   net.Conn
	cipher *Cipher
	hdr    [4]byte
}

// NewSecureConn wraps conn using the key from ks.
func NewSecureConn(conn net.Conn, ks KeySource) (*SecureConn, error) {
	cipher, err := NewCipher(ks.SessionKey())
	if err != nil {
		return nil, err
	}
	return &SecureConn{conn: conn, cipher: cipher}, nil
}

// WriteMessage seals and writes one plaintext message as a single frame.
func (c *SecureConn) WriteMessage(plaintext []byte) error {
	sealed, err := c.cipher.Seal(plaintext)
	if err != nil {
		return err
	}
	if len(sealed) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	frame := make([]byte, 4+len(sealed))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(sealed)))
	copy(frame[4:], sealed)

	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadMessage reads one full frame and returns the decrypted payload.
// Returns ErrIntegrity when the payload fails authentication.
func (c *SecureConn) ReadMessage() ([]byte, error) {
	if _, err := io.ReadFull(c.conn, c.hdr[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	size := binary.BigEndian.Uint32(c.hdr[:])
	if size > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}

	sealed := make([]byte, size)
	if _, err := io.ReadFull(c.conn, sealed); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}

	return c.cipher.Open(sealed)
}

// SetReadDeadline bounds the next ReadMessage call.
func (c *SecureConn) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

// SetWriteDeadline bounds the next WriteMessage call.
func (c *SecureConn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

// RemoteAddr returns the peer address.
func (c *SecureConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Close closes the underlying connection.
func (c *SecureConn) Close() error {
	return c.conn.Close()
}
