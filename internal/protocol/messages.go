// Package protocol defines the JSON messages exchanged on the auth and
// game channels. Every message travels inside a sealed wire frame; this
// package only shapes the plaintext.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/netpong/netpong/internal/model"
)

// Auth channel operations
const (
	OpRegister = "register"
	OpLogin    = "login"
)

// Response statuses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Error reason codes reported to clients
const (
	ReasonInvalidUsername   = "invalid_username"
	ReasonDuplicateUsername = "duplicate_username"
	ReasonWeakPassword      = "weak_password"
	ReasonAuthFailed        = "auth_failed"
	ReasonInvalidToken      = "invalid_token"
	ReasonProtocolError     = "protocol_error"
	ReasonServerError       = "server_error"
)

// AuthRequest is the single request a client sends on the auth channel.
type AuthRequest struct {
	Op       string `json:"op"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse answers an AuthRequest. Token is set on success.
type AuthResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
	Token  string `json:"token,omitempty"`
}

// Hello is the first message on the game channel, presenting the
// session token issued by the auth channel.
type Hello struct {
	Token string `json:"token"`
}

// ConnectResponse accepts or rejects a game channel Hello.
type ConnectResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// MatchStart is sent to each player once a match has been formed,
// before the first snapshot.
type MatchStart struct {
	MatchID  string  `json:"match_id"`
	Side     string  `json:"side"` // "left" or "right"
	Opponent string  `json:"opponent"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	WinScore int     `json:"win_score"`
}

// ClientFrame is the per-tick client message during a match. Input
// carries paddle intent; Vote is only valid during the rematch vote.
type ClientFrame struct {
	Input string `json:"input"`
	Vote  *bool  `json:"vote,omitempty"`
}

// Snapshot is the authoritative game state broadcast each tick, and on
// terminal phases. Seq is monotonically non-decreasing per client.
type Snapshot struct {
	Phase       model.Phase `json:"phase"`
	Seq         uint64      `json:"seq"`
	Ball        model.Vec2  `json:"ball"`
	PaddleLeft  float64     `json:"paddle_left"`
	PaddleRight float64     `json:"paddle_right"`
	ScoreLeft   int         `json:"score_left"`
	ScoreRight  int         `json:"score_right"`
	Winner      string      `json:"winner,omitempty"`
}

// Encode marshals any protocol message for framing.
func Encode(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return data, nil
}

// DecodeAuthRequest parses and validates an auth channel request.
func DecodeAuthRequest(data []byte) (*AuthRequest, error) {
	var req AuthRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProtocol, err)
	}
	if req.Op != OpRegister && req.Op != OpLogin {
		return nil, fmt.Errorf("%w: unknown op %q", model.ErrProtocol, req.Op)
	}
	return &req, nil
}

// DecodeHello parses the game channel's opening token message.
func DecodeHello(data []byte) (*Hello, error) {
	var hello Hello
	if err := json.Unmarshal(data, &hello); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProtocol, err)
	}
	if hello.Token == "" {
		return nil, fmt.Errorf("%w: missing token", model.ErrProtocol)
	}
	return &hello, nil
}

// DecodeClientFrame parses a per-tick client message, validating the
// paddle input value.
func DecodeClientFrame(data []byte) (*ClientFrame, error) {
	var frame ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProtocol, err)
	}
	if frame.Input == "" {
		frame.Input = string(model.InputNone)
	}
	if _, err := model.ParseInput(frame.Input); err != nil {
		return nil, fmt.Errorf("%w: input %q", model.ErrProtocol, frame.Input)
	}
	return &frame, nil
}

// DecodeAuthResponse parses a server auth reply (client side).
func DecodeAuthResponse(data []byte) (*AuthResponse, error) {
	var resp AuthResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProtocol, err)
	}
	return &resp, nil
}

// DecodeConnectResponse parses a server connect reply (client side).
func DecodeConnectResponse(data []byte) (*ConnectResponse, error) {
	var resp ConnectResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProtocol, err)
	}
	return &resp, nil
}

// DecodeMatchStart parses the match preliminary message (client side).
func DecodeMatchStart(data []byte) (*MatchStart, error) {
	var start MatchStart
	if err := json.Unmarshal(data, &start); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProtocol, err)
	}
	return &start, nil
}

// DecodeSnapshot parses a server state broadcast (client side).
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrProtocol, err)
	}
	return &snap, nil
}

// ReasonForError maps a domain error to its wire reason code.
func ReasonForError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, model.ErrInvalidUsername):
		return ReasonInvalidUsername
	case errors.Is(err, model.ErrDuplicateUsername):
		return ReasonDuplicateUsername
	case errors.Is(err, model.ErrWeakPassword):
		return ReasonWeakPassword
	case errors.Is(err, model.ErrAuthFailed):
		return ReasonAuthFailed
	case errors.Is(err, model.ErrInvalidToken):
		return ReasonInvalidToken
	case errors.Is(err, model.ErrProtocol):
		return ReasonProtocolError
	default:
		return ReasonServerError
	}
}
