package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/netpong/netpong/internal/protocol"
	"github.com/netpong/netpong/internal/wire"
)

const dialTimeout = 10 * time.Second

// Client talks to all three server surfaces: the encrypted auth and
// game channels over TCP, and the leaderboard over HTTP.
type Client struct {
	cfg        *Config
	keys       wire.KeySource
	httpClient *http.Client
}

// NewClient creates a client from CLI configuration
func NewClient(cfg *Config) (*Client, error) {
	if cfg.Passphrase == "" {
		return nil, fmt.Errorf("passphrase is required (flag --passphrase or env NETPONG_PASSPHRASE)")
	}
	return &Client{
		cfg:  cfg,
		keys: wire.NewPresharedKey(cfg.Passphrase),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Auth performs the single-exchange auth channel conversation
func (c *Client) Auth(op, username, password string) (*protocol.AuthResponse, error) {
	conn, err := c.dial(c.cfg.AuthAddr)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	payload, err := protocol.Encode(protocol.AuthRequest{
		Op:       op,
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	if err := conn.WriteMessage(payload); err != nil {
		return nil, fmt.Errorf("sending %s request: %w", op, err)
	}

	data, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", op, err)
	}
	return protocol.DecodeAuthResponse(data)
}

// Connect opens a game channel and presents the session token. The
// returned connection is accepted and waiting for an opponent.
func (c *Client) Connect(token string) (*wire.SecureConn, error) {
	conn, err := c.dial(c.cfg.GameAddr)
	if err != nil {
		return nil, err
	}

	payload, err := protocol.Encode(protocol.Hello{Token: token})
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.WriteMessage(payload); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sending hello: %w", err)
	}

	data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("reading connect response: %w", err)
	}
	resp, err := protocol.DecodeConnectResponse(data)
	if err != nil {
		conn.Close()
		return nil, err
	}
	if resp.Status != protocol.StatusOK {
		conn.Close()
		return nil, fmt.Errorf("connection rejected: %s", resp.Reason)
	}

	return conn, nil
}

func (c *Client) dial(addr string) (*wire.SecureConn, error) {
	raw, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", addr, err)
	}
	conn, err := wire.NewSecureConn(raw, c.keys)
	if err != nil {
		raw.Close()
		return nil, err
	}
	return conn, nil
}

// Get performs an HTTP GET against the leaderboard server
func (c *Client) Get(path string, result any) error {
	url := strings.TrimSuffix(c.cfg.ServerURL, "/") + path

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("server error: %s", errResp.Error)
		}
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
