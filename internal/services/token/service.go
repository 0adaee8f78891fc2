package token

import (
	"sync"
	"time"

	"github.com/netpong/netpong/internal/dependencies/clock"
	"github.com/netpong/netpong/internal/dependencies/random"
	"github.com/netpong/netpong/internal/model"
)

// TokenBytes is the entropy in each issued token
const TokenBytes = 32

// Service issues and verifies opaque session tokens bound to a
// username. Tokens live in process memory for the server's lifetime;
// expiry is a coarse safety net, not a precise security boundary.
type Service struct {
	clock  clock.Clock
	random random.Random
	ttl    time.Duration

	mu     sync.Mutex
	tokens map[string]entry
}

type entry struct {
	username  string
	issuedAt  time.Time
	expiresAt time.Time
}

// Config holds configuration for the token service
type Config struct {
	TTL time.Duration
}

// DefaultConfig returns default token configuration
func DefaultConfig() Config {
	return Config{
		TTL: 10 * time.Minute,
	}
}

// New creates a new token Service
func New(clk clock.Clock, rnd random.Random, cfg Config) *Service {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	return &Service{
		clock:  clk,
		random: rnd,
		ttl:    cfg.TTL,
		tokens: make(map[string]entry),
	}
}

// Issue generates an unguessable token for a username. Multiple
// concurrent tokens per user are permitted; each login event gets its
// own.
func (s *Service) Issue(username string) string {
	token := s.random.Token(TokenBytes)
	now := s.clock.Now()

	s.mu.Lock()
	s.tokens[token] = entry{
		username:  username,
		issuedAt:  now,
		expiresAt: now.Add(s.ttl),
	}
	s.mu.Unlock()

	return token
}

// Verify resolves a token to its username, failing with
// model.ErrInvalidToken if unknown or expired. Expired tokens are
// removed as a side effect.
func (s *Service) Verify(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[token]
	if !ok {
		return "", model.ErrInvalidToken
	}
	if s.clock.Now().After(e.expiresAt) {
		delete(s.tokens, token)
		return "", model.ErrInvalidToken
	}
	return e.username, nil
}

// Revoke discards a token
func (s *Service) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// CleanExpired removes all expired tokens (call periodically)
func (s *Service) CleanExpired() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, e := range s.tokens {
		if now.After(e.expiresAt) {
			delete(s.tokens, token)
		}
	}
}
