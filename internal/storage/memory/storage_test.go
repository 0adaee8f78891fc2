package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/netpong/netpong/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) account(username string) *model.Account {
	return &model.Account{
		Username:     username,
		PasswordHash: "$2a$10$fakehash",
		CreatedAt:    time.Date(2025, 11, 25, 12, 0, 0, 0, time.UTC),
	}
}

func (s *StorageSuite) TestCreateAndGetAccount() {
	err := s.storage.CreateAccount(s.ctx, s.account("alice"))
	s.Require().NoError(err)

	account, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", account.Username)
	s.Equal("$2a$10$fakehash", account.PasswordHash)
}

func (s *StorageSuite) TestGetAccountNotFound() {
	_, err := s.storage.GetAccountByUsername(s.ctx, "nobody")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestCreateRejectsDuplicate() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, s.account("alice")))

	second := s.account("alice")
	second.PasswordHash = "$2a$10$otherhash"
	s.ErrorIs(s.storage.CreateAccount(s.ctx, second), model.ErrDuplicateUsername)

	// The losing create must not touch the stored account
	account, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("$2a$10$fakehash", account.PasswordHash)
}

func (s *StorageSuite) TestConcurrentCreateAdmitsOne() {
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			errs <- s.storage.CreateAccount(s.ctx, s.account("alice"))
		}()
	}

	var dupes int
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			s.ErrorIs(err, model.ErrDuplicateUsername)
			dupes++
		}
	}
	s.Equal(1, dupes)
}

func (s *StorageSuite) TestUsernamesAreCaseSensitive() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, s.account("Alice")))

	_, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.ErrorIs(err, model.ErrAccountNotFound)
}

func (s *StorageSuite) TestGetAccountReturnsCopy() {
	s.Require().NoError(s.storage.CreateAccount(s.ctx, s.account("alice")))

	first, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	first.PasswordHash = "mutated"

	second, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal("$2a$10$fakehash", second.PasswordHash)
}

func (s *StorageSuite) TestWinsStartAtZero() {
	wins, err := s.storage.GetWins(s.ctx, "alice")
	s.Require().NoError(err)
	s.Zero(wins)
}

func (s *StorageSuite) TestIncrementWins() {
	s.Require().NoError(s.storage.IncrementWins(s.ctx, "alice"))
	s.Require().NoError(s.storage.IncrementWins(s.ctx, "alice"))

	wins, err := s.storage.GetWins(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(2, wins)
}

func (s *StorageSuite) TestTopWinsSortedDescending() {
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.storage.IncrementWins(s.ctx, "alice"))
	}
	s.Require().NoError(s.storage.IncrementWins(s.ctx, "bob"))

	records, err := s.storage.TopWins(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal([]model.WinRecord{
		{Username: "alice", Wins: 3},
		{Username: "bob", Wins: 1},
	}, records)
}

func (s *StorageSuite) TestTopWinsTieBreaksByUsername() {
	s.Require().NoError(s.storage.IncrementWins(s.ctx, "carol"))
	s.Require().NoError(s.storage.IncrementWins(s.ctx, "alice"))
	s.Require().NoError(s.storage.IncrementWins(s.ctx, "bob"))

	records, err := s.storage.TopWins(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal([]model.WinRecord{
		{Username: "alice", Wins: 1},
		{Username: "bob", Wins: 1},
		{Username: "carol", Wins: 1},
	}, records)
}

func (s *StorageSuite) TestTopWinsRespectsLimit() {
	s.Require().NoError(s.storage.IncrementWins(s.ctx, "alice"))
	s.Require().NoError(s.storage.IncrementWins(s.ctx, "bob"))
	s.Require().NoError(s.storage.IncrementWins(s.ctx, "carol"))

	records, err := s.storage.TopWins(s.ctx, 2)
	s.Require().NoError(err)
	s.Len(records, 2)
}
