package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/netpong/netpong/internal/dependencies/clock"
	"github.com/netpong/netpong/internal/dependencies/random"
	"github.com/netpong/netpong/internal/services/account"
	"github.com/netpong/netpong/internal/services/auth"
	"github.com/netpong/netpong/internal/services/leaderboard"
	"github.com/netpong/netpong/internal/services/match"
	"github.com/netpong/netpong/internal/services/matchmaker"
	"github.com/netpong/netpong/internal/services/token"
	"github.com/netpong/netpong/internal/storage"
	"github.com/netpong/netpong/internal/storage/memory"
	redisstorage "github.com/netpong/netpong/internal/storage/redis"
	"github.com/netpong/netpong/internal/wire"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Channel encryption
	Keys wire.KeySource

	// Services
	TokenService       *token.Service
	AccountService     *account.Service
	AuthHandler        *auth.Handler
	Matchmaker         *matchmaker.Service
	Recorder           *leaderboard.Recorder
	LeaderboardService *leaderboard.Service
}

// Config holds configuration for the application factory
type Config struct {
	// Passphrase derives the preshared channel key (required)
	Passphrase string
	// TokenConfig holds session token settings (optional)
	// If zero value, defaults to token.DefaultConfig()
	TokenConfig token.Config
	// AuthConfig holds auth channel settings (optional)
	AuthConfig auth.Config
	// MatchmakerConfig holds pairing and match settings (optional)
	MatchmakerConfig matchmaker.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	if cfg.Passphrase == "" {
		return nil, errors.New("Passphrase is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	clk := clock.New()
	rnd := random.New()

	tokenCfg, authCfg, mmCfg := defaultedConfigs(cfg)

	return newWithDependencies(store, clk, rnd, cfg.Passphrase, tokenCfg, authCfg, mmCfg, logger), nil
}

// defaultedConfigs fills unset service config fields one by one, so a
// caller overriding a single field keeps the defaults for the rest.
func defaultedConfigs(cfg Config) (token.Config, auth.Config, matchmaker.Config) {
	tokenCfg := cfg.TokenConfig
	if tokenCfg.TTL == 0 {
		tokenCfg.TTL = token.DefaultConfig().TTL
	}

	authCfg := cfg.AuthConfig
	if authCfg.ExchangeTimeout == 0 {
		authCfg.ExchangeTimeout = auth.DefaultConfig().ExchangeTimeout
	}

	mmCfg := cfg.MatchmakerConfig
	mmDefault := matchmaker.DefaultConfig()
	if mmCfg.HelloTimeout == 0 {
		mmCfg.HelloTimeout = mmDefault.HelloTimeout
	}
	if mmCfg.WriteTimeout == 0 {
		mmCfg.WriteTimeout = mmDefault.WriteTimeout
	}
	if mmCfg.Match == (match.Config{}) {
		mmCfg.Match = mmDefault.Match
	}

	return tokenCfg, authCfg, mmCfg
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	passphrase string,
	tokenCfg token.Config,
	authCfg auth.Config,
	mmCfg matchmaker.Config,
	logger *slog.Logger,
) *App {
	keys := wire.NewPresharedKey(passphrase)

	tokenService := token.New(clk, rnd, tokenCfg)
	accountService := account.New(store, clk, logger)
	authHandler := auth.NewHandler(accountService, tokenService, keys, logger, authCfg)
	recorder := leaderboard.NewRecorder(store, logger)
	mm := matchmaker.New(tokenService, keys, clk, rnd, recorder, logger, mmCfg)
	leaderboardService := leaderboard.NewService(store)

	return &App{
		Storage:            store,
		Clock:              clk,
		Random:             rnd,
		Keys:               keys,
		TokenService:       tokenService,
		AccountService:     accountService,
		AuthHandler:        authHandler,
		Matchmaker:         mm,
		Recorder:           recorder,
		LeaderboardService: leaderboardService,
	}
}

// Close releases background resources owned by the App
func (a *App) Close() {
	a.Recorder.Close()
	if closer, ok := a.Storage.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
