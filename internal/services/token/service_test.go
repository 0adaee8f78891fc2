package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/netpong/netpong/internal/dependencies/mocks"
	"github.com/netpong/netpong/internal/dependencies/random"
	"github.com/netpong/netpong/internal/model"
)

type ServiceSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 11, 25, 12, 0, 0, 0, time.UTC))
	s.service = New(s.clock, random.New(), DefaultConfig())
}

func (s *ServiceSuite) TestIssueAndVerify() {
	token := s.service.Issue("alice")
	s.NotEmpty(token)

	username, err := s.service.Verify(token)
	s.Require().NoError(err)
	s.Equal("alice", username)
}

func (s *ServiceSuite) TestTokensAreUnique() {
	first := s.service.Issue("alice")
	second := s.service.Issue("alice")
	s.NotEqual(first, second)

	// Both remain valid; multiple concurrent tokens per user are allowed
	for _, token := range []string{first, second} {
		username, err := s.service.Verify(token)
		s.Require().NoError(err)
		s.Equal("alice", username)
	}
}

func (s *ServiceSuite) TestVerifyUnknownTokenFails() {
	_, err := s.service.Verify("no-such-token")
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyExpiredTokenFails() {
	token := s.service.Issue("alice")

	s.clock.Advance(10*time.Minute + time.Second)

	_, err := s.service.Verify(token)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyJustBeforeExpirySucceeds() {
	token := s.service.Issue("alice")

	s.clock.Advance(10*time.Minute - time.Second)

	username, err := s.service.Verify(token)
	s.Require().NoError(err)
	s.Equal("alice", username)
}

func (s *ServiceSuite) TestRevoke() {
	token := s.service.Issue("alice")
	s.service.Revoke(token)

	_, err := s.service.Verify(token)
	s.ErrorIs(err, model.ErrInvalidToken)
}

func (s *ServiceSuite) TestCleanExpired() {
	expired := s.service.Issue("alice")
	s.clock.Advance(11 * time.Minute)
	fresh := s.service.Issue("bob")

	s.service.CleanExpired()

	_, err := s.service.Verify(expired)
	s.ErrorIs(err, model.ErrInvalidToken)

	username, err := s.service.Verify(fresh)
	s.Require().NoError(err)
	s.Equal("bob", username)
}

func (s *ServiceSuite) TestCustomTTL() {
	service := New(s.clock, random.New(), Config{TTL: time.Hour})
	token := service.Issue("alice")

	s.clock.Advance(30 * time.Minute)
	_, err := service.Verify(token)
	s.NoError(err)

	s.clock.Advance(31 * time.Minute)
	_, err = service.Verify(token)
	s.ErrorIs(err, model.ErrInvalidToken)
}
