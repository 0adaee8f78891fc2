// Package auth drives one client's register-or-login exchange on the
// auth channel. Each connection performs exactly one exchange and then
// closes; further auth operations need a new connection.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/netpong/netpong/internal/protocol"
	"github.com/netpong/netpong/internal/services/account"
	"github.com/netpong/netpong/internal/services/token"
	"github.com/netpong/netpong/internal/wire"
)

// Config holds configuration for the auth handler
type Config struct {
	// ExchangeTimeout bounds the whole register/login exchange
	ExchangeTimeout time.Duration
}

// DefaultConfig returns default auth handler configuration
func DefaultConfig() Config {
	return Config{
		ExchangeTimeout: 30 * time.Second,
	}
}

// Handler serves auth channel connections
type Handler struct {
	accounts *account.Service
	tokens   *token.Service
	keys     wire.KeySource
	logger   *slog.Logger
	cfg      Config
}

// NewHandler creates a new auth Handler
func NewHandler(accounts *account.Service, tokens *token.Service, keys wire.KeySource, logger *slog.Logger, cfg Config) *Handler {
	if cfg.ExchangeTimeout == 0 {
		cfg.ExchangeTimeout = DefaultConfig().ExchangeTimeout
	}
	return &Handler{
		accounts: accounts,
		tokens:   tokens,
		keys:     keys,
		logger:   logger.With(slog.String("component", "auth")),
		cfg:      cfg,
	}
}

// HandleConn runs one register-or-login exchange and closes the
// connection. Integrity failures close the connection without a reply;
// malformed requests get an error reply first.
func (h *Handler) HandleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	sconn, err := wire.NewSecureConn(conn, h.keys)
	if err != nil {
		h.logger.Error("secure channel setup failed", slog.Any("error", err))
		return
	}

	_ = sconn.SetReadDeadline(time.Now().Add(h.cfg.ExchangeTimeout))

	data, err := sconn.ReadMessage()
	if err != nil {
		if errors.Is(err, wire.ErrIntegrity) {
			// Never interpret bytes that failed authentication
			h.logger.Warn("integrity failure on auth channel",
				slog.String("remote", conn.RemoteAddr().String()))
		}
		return
	}

	req, err := protocol.DecodeAuthRequest(data)
	if err != nil {
		h.respond(sconn, &protocol.AuthResponse{
			Status: protocol.StatusError,
			Reason: protocol.ReasonProtocolError,
		})
		return
	}

	h.respond(sconn, h.dispatch(ctx, req))
}

// dispatch runs the requested operation and shapes the reply
func (h *Handler) dispatch(ctx context.Context, req *protocol.AuthRequest) *protocol.AuthResponse {
	var err error
	switch req.Op {
	case protocol.OpRegister:
		err = h.accounts.Register(ctx, req.Username, req.Password)
	case protocol.OpLogin:
		err = h.accounts.Verify(ctx, req.Username, req.Password)
	}

	if err != nil {
		h.logger.Info("auth exchange failed",
			slog.String("op", req.Op),
			slog.String("reason", protocol.ReasonForError(err)))
		return &protocol.AuthResponse{
			Status: protocol.StatusError,
			Reason: protocol.ReasonForError(err),
		}
	}

	h.logger.Info("auth exchange succeeded",
		slog.String("op", req.Op),
		slog.String("username", req.Username))
	return &protocol.AuthResponse{
		Status: protocol.StatusOK,
		Token:  h.tokens.Issue(req.Username),
	}
}

func (h *Handler) respond(sconn *wire.SecureConn, resp *protocol.AuthResponse) {
	data, err := protocol.Encode(resp)
	if err != nil {
		h.logger.Error("encode auth response", slog.Any("error", err))
		return
	}
	_ = sconn.SetWriteDeadline(time.Now().Add(h.cfg.ExchangeTimeout))
	if err := sconn.WriteMessage(data); err != nil {
		h.logger.Warn("write auth response", slog.Any("error", err))
	}
}
