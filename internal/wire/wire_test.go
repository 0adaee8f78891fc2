package wire

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type WireSuite struct {
	suite.Suite
	key *PresharedKey
}

func TestWireSuite(t *testing.T) {
	suite.Run(t, new(WireSuite))
}

func (s *WireSuite) SetupTest() {
	s.key = NewPresharedKey("test passphrase")
}

func (s *WireSuite) TestPresharedKeyLength() {
	s.Len(s.key.SessionKey(), 32)
}

func (s *WireSuite) TestPresharedKeyIsDeterministic() {
	other := NewPresharedKey("test passphrase")
	s.Equal(s.key.SessionKey(), other.SessionKey())

	different := NewPresharedKey("another passphrase")
	s.NotEqual(s.key.SessionKey(), different.SessionKey())
}

func (s *WireSuite) TestCipherRoundTrip() {
	c, err := NewCipher(s.key.SessionKey())
	s.Require().NoError(err)

	sealed, err := c.Seal([]byte("hello pong"))
	s.Require().NoError(err)
	s.NotEqual([]byte("hello pong"), sealed)

	opened, err := c.Open(sealed)
	s.Require().NoError(err)
	s.Equal([]byte("hello pong"), opened)
}

func (s *WireSuite) TestCipherRejectsInvalidKeyLength() {
	_, err := NewCipher([]byte("short"))
	s.Error(err)
}

func (s *WireSuite) TestCipherRejectsTamperedPayload() {
	c, err := NewCipher(s.key.SessionKey())
	s.Require().NoError(err)

	sealed, err := c.Seal([]byte("hello pong"))
	s.Require().NoError(err)

	sealed[len(sealed)-1] ^= 0xff
	_, err = c.Open(sealed)
	s.ErrorIs(err, ErrIntegrity)
}

func (s *WireSuite) TestCipherRejectsWrongKey() {
	c, err := NewCipher(s.key.SessionKey())
	s.Require().NoError(err)
	other, err := NewCipher(NewPresharedKey("wrong").SessionKey())
	s.Require().NoError(err)

	sealed, err := c.Seal([]byte("hello pong"))
	s.Require().NoError(err)

	_, err = other.Open(sealed)
	s.ErrorIs(err, ErrIntegrity)
}

func (s *WireSuite) TestCipherRejectsTruncatedPayload() {
	c, err := NewCipher(s.key.SessionKey())
	s.Require().NoError(err)

	_, err = c.Open([]byte{0x01})
	s.ErrorIs(err, ErrIntegrity)
}

func (s *WireSuite) pipe() (*SecureConn, *SecureConn) {
	a, b := net.Pipe()
	ca, err := NewSecureConn(a, s.key)
	s.Require().NoError(err)
	cb, err := NewSecureConn(b, s.key)
	s.Require().NoError(err)
	return ca, cb
}

func (s *WireSuite) TestSecureConnRoundTrip() {
	ca, cb := s.pipe()
	defer ca.Close()
	defer cb.Close()

	go func() {
		_ = ca.WriteMessage([]byte("first"))
		_ = ca.WriteMessage([]byte("second message"))
	}()

	msg, err := cb.ReadMessage()
	s.Require().NoError(err)
	s.Equal([]byte("first"), msg)

	msg, err = cb.ReadMessage()
	s.Require().NoError(err)
	s.Equal([]byte("second message"), msg)
}

func (s *WireSuite) TestSecureConnKeyMismatchFailsIntegrity() {
	a, b := net.Pipe()
	ca, err := NewSecureConn(a, s.key)
	s.Require().NoError(err)
	cb, err := NewSecureConn(b, NewPresharedKey("other"))
	s.Require().NoError(err)
	defer ca.Close()
	defer cb.Close()

	go func() {
		_ = ca.WriteMessage([]byte("payload"))
	}()

	_, err = cb.ReadMessage()
	s.ErrorIs(err, ErrIntegrity)
}

func (s *WireSuite) TestSecureConnReadDeadline() {
	ca, cb := s.pipe()
	defer ca.Close()
	defer cb.Close()

	s.Require().NoError(cb.SetReadDeadline(time.Now().Add(10 * time.Millisecond)))
	_, err := cb.ReadMessage()
	s.Error(err)
}

func (s *WireSuite) TestSecureConnRejectsOversizeHeader() {
	a, b := net.Pipe()
	cb, err := NewSecureConn(b, s.key)
	s.Require().NoError(err)
	defer a.Close()
	defer cb.Close()

	go func() {
		// Header declaring a frame far beyond MaxFrameSize
		_, _ = a.Write([]byte{0xff, 0xff, 0xff, 0xff})
	}()

	_, err = cb.ReadMessage()
	s.ErrorIs(err, ErrFrameTooLarge)
}
