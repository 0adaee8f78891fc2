package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/netpong/netpong/internal/model"
	"github.com/netpong/netpong/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Accounts are stored as JSON values; win counts live in a sorted set
// so the leaderboard reads come back already ranked.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Account operations

func (s *Storage) CreateAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// SetNX makes the check-and-insert a single round trip, so a
	// concurrent creation of the same username loses cleanly.
	created, err := s.client.SetNX(ctx, accountKey(account.Username), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrDuplicateUsername
	}
	return nil
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	data, err := s.client.Get(ctx, accountKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}

	var account model.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Win count operations

func (s *Storage) IncrementWins(ctx context.Context, username string) error {
	return s.client.ZIncrBy(ctx, winsKey(), 1, username).Err()
}

func (s *Storage) GetWins(ctx context.Context, username string) (int, error) {
	score, err := s.client.ZScore(ctx, winsKey(), username).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return int(score), nil
}

func (s *Storage) TopWins(ctx context.Context, limit int) ([]model.WinRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit) - 1
	}

	members, err := s.client.ZRevRangeWithScores(ctx, winsKey(), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	records := make([]model.WinRecord, 0, len(members))
	for _, m := range members {
		username, ok := m.Member.(string)
		if !ok {
			continue
		}
		records = append(records, model.WinRecord{
			Username: username,
			Wins:     int(m.Score),
		})
	}

	// Redis orders tied scores by descending member; rankings break
	// ties by ascending username instead.
	sort.Slice(records, func(i, j int) bool {
		if records[i].Wins != records[j].Wins {
			return records[i].Wins > records[j].Wins
		}
		return records[i].Username < records[j].Username
	})
	return records, nil
}
