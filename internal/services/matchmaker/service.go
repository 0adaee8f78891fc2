package matchmaker

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/netpong/netpong/internal/dependencies/clock"
	"github.com/netpong/netpong/internal/dependencies/random"
	"github.com/netpong/netpong/internal/model"
	"github.com/netpong/netpong/internal/protocol"
	"github.com/netpong/netpong/internal/services/match"
	"github.com/netpong/netpong/internal/services/token"
	"github.com/netpong/netpong/internal/wire"
)

const (
	MatchIDLength   = 12
	MatchIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

type Config struct {
	// HelloTimeout bounds how long a new connection may take to
	// present its session token
	HelloTimeout time.Duration
	// WriteTimeout bounds the connect response write
	WriteTimeout time.Duration
	// Match is forwarded to every session this service starts
	Match match.Config
}

func DefaultConfig() Config {
	return Config{
		HelloTimeout: 10 * time.Second,
		WriteTimeout: 5 * time.Second,
		Match:        match.DefaultConfig(),
	}
}

// Service accepts game channel connections, verifies session tokens
// and pairs authenticated clients in arrival order into match sessions.
type Service struct {
	tokens   *token.Service
	keys     wire.KeySource
	clock    clock.Clock
	random   random.Random
	recorder match.Recorder
	logger   *slog.Logger
	cfg      Config

	pool *pool

	mu       sync.Mutex
	sessions map[model.MatchID]*match.Session
}

func New(tokens *token.Service, keys wire.KeySource, clk clock.Clock, rnd random.Random, recorder match.Recorder, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		tokens:   tokens,
		keys:     keys,
		clock:    clk,
		random:   rnd,
		recorder: recorder,
		logger:   logger.With(slog.String("component", "matchmaker")),
		cfg:      cfg,
		pool:     newPool(),
		sessions: make(map[model.MatchID]*match.Session),
	}
}

// HandleConn runs the game channel handshake for one accepted
// connection: decrypt, verify the session token, then queue the client
// for pairing. The connection is closed here only on rejection; once
// queued its lifetime belongs to the pool watcher or a match session.
func (s *Service) HandleConn(ctx context.Context, conn net.Conn) {
	sc, err := wire.NewSecureConn(conn, s.keys)
	if err != nil {
		s.logger.Error("channel setup failed", slog.String("error", err.Error()))
		conn.Close()
		return
	}

	username, ok := s.handshake(sc)
	if !ok {
		sc.Close()
		return
	}

	player := match.NewPlayer(username, sc)
	player.StartReader()
	s.admit(ctx, player)
}

// handshake reads the hello and verifies its token. It writes the
// connect response for every outcome except an undecryptable hello,
// which gets a silent close like the auth channel gives it.
func (s *Service) handshake(sc *wire.SecureConn) (string, bool) {
	_ = sc.SetReadDeadline(time.Now().Add(s.cfg.HelloTimeout))
	data, err := sc.ReadMessage()
	if err != nil {
		s.logger.Warn("game channel hello failed",
			slog.String("remote", sc.RemoteAddr().String()),
			slog.String("error", err.Error()),
		)
		return "", false
	}
	_ = sc.SetReadDeadline(time.Time{})

	hello, err := protocol.DecodeHello(data)
	if err != nil {
		s.reject(sc, protocol.ReasonForError(err))
		return "", false
	}

	username, err := s.tokens.Verify(hello.Token)
	if err != nil {
		s.logger.Info("game channel token rejected",
			slog.String("remote", sc.RemoteAddr().String()),
		)
		s.reject(sc, protocol.ReasonInvalidToken)
		return "", false
	}

	resp := protocol.ConnectResponse{Status: protocol.StatusOK}
	payload, err := protocol.Encode(resp)
	if err != nil {
		s.logger.Error("encoding connect response", slog.String("error", err.Error()))
		return "", false
	}
	_ = sc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := sc.WriteMessage(payload); err != nil {
		return "", false
	}
	_ = sc.SetWriteDeadline(time.Time{})

	return username, true
}

func (s *Service) reject(sc *wire.SecureConn, reason string) {
	resp := protocol.ConnectResponse{Status: protocol.StatusError, Reason: reason}
	payload, err := protocol.Encode(resp)
	if err != nil {
		return
	}
	_ = sc.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	_ = sc.WriteMessage(payload)
}

// admit queues an authenticated player and starts a session when a
// pair is available. A watcher goroutine evicts the player from the
// pool if the connection drops before pairing.
func (s *Service) admit(ctx context.Context, player *match.Player) {
	client := &waitingClient{player: player, enqueuedAt: s.clock.Now()}
	first, second := s.pool.enqueue(client)
	if first == nil {
		s.logger.Info("player waiting for opponent",
			slog.String("username", player.Username),
		)
		go s.watchWaiting(client)
		return
	}
	s.startMatch(ctx, first, second)
}

// watchWaiting removes a queued client whose connection dies before an
// opponent arrives. If remove reports false the client was already
// paired and the session owns the disconnect.
func (s *Service) watchWaiting(c *waitingClient) {
	<-c.player.Gone()
	if s.pool.remove(c) {
		s.logger.Info("waiting player disconnected",
			slog.String("username", c.player.Username),
		)
	}
}

func (s *Service) startMatch(ctx context.Context, first, second *waitingClient) {
	id := model.MatchID(s.random.String(MatchIDLength, MatchIDAlphabet))
	session := match.New(id, first.player, second.player, s.clock, s.recorder, s.logger, s.cfg.Match)

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	s.logger.Info("match starting",
		slog.String("match_id", string(id)),
		slog.String("left", first.player.Username),
		slog.String("right", second.player.Username),
		slog.Duration("queue_wait", s.clock.Now().Sub(first.enqueuedAt)),
	)

	go func() {
		session.Run(ctx)
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
	}()
}

// Waiting reports the number of clients queued for an opponent
func (s *Service) Waiting() int {
	return s.pool.size()
}

// ActiveMatches reports the number of sessions currently running
func (s *Service) ActiveMatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
