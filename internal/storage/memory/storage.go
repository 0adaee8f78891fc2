package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/netpong/netpong/internal/model"
	"github.com/netpong/netpong/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	accounts map[string]*model.Account
	wins     map[string]int
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		accounts: make(map[string]*model.Account),
		wins:     make(map[string]int),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Username]; ok {
		return model.ErrDuplicateUsername
	}
	copied := *account
	s.accounts[account.Username] = &copied
	return nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[username]
	if !ok {
		return nil, model.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

// Win count operations

func (s *Storage) IncrementWins(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wins[username]++
	return nil
}

func (s *Storage) GetWins(ctx context.Context, username string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wins[username], nil
}

func (s *Storage) TopWins(ctx context.Context, limit int) ([]model.WinRecord, error) {
	s.mu.RLock()
	records := make([]model.WinRecord, 0, len(s.wins))
	for username, wins := range s.wins {
		records = append(records, model.WinRecord{Username: username, Wins: wins})
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if records[i].Wins != records[j].Wins {
			return records[i].Wins > records[j].Wins
		}
		return records[i].Username < records[j].Username
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
