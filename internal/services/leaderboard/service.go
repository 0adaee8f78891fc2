package leaderboard

import (
	"context"
	"fmt"

	"github.com/netpong/netpong/internal/model"
	"github.com/netpong/netpong/internal/storage"
)

// DefaultLimit caps how many standings a snapshot returns when the
// caller does not say
const DefaultLimit = 100

// Service reads the standings that the Recorder writes
type Service struct {
	storage storage.Storage
}

func NewService(store storage.Storage) *Service {
	return &Service{storage: store}
}

// Standings returns up to limit win records, most wins first with ties
// broken by username.
func (s *Service) Standings(ctx context.Context, limit int) ([]model.WinRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	records, err := s.storage.TopWins(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("reading standings: %w", err)
	}
	return records, nil
}

// Wins returns one player's win count. Players with no recorded wins
// report zero.
func (s *Service) Wins(ctx context.Context, username string) (int, error) {
	wins, err := s.storage.GetWins(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("reading wins for %q: %w", username, err)
	}
	return wins, nil
}
