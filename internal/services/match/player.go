package match

import (
	"sync"
	"time"

	"github.com/netpong/netpong/internal/model"
	"github.com/netpong/netpong/internal/protocol"
	"github.com/netpong/netpong/internal/wire"
)

// frameBuffer bounds queued frames per player; input is latest-wins so
// old frames are dropped when a client outruns the tick clock.
const frameBuffer = 16

// Player is one side of a match: an authenticated username plus its
// live game channel connection. A reader goroutine decodes incoming
// frames so the session's tick loop never blocks on a slow peer.
type Player struct {
	Username string
	Side     model.Side

	conn   *wire.SecureConn
	frames chan *protocol.ClientFrame
	gone   chan struct{}

	closeOnce sync.Once
}

// NewPlayer wraps an accepted game channel connection
func NewPlayer(username string, conn *wire.SecureConn) *Player {
	return &Player{
		Username: username,
		conn:     conn,
		frames:   make(chan *protocol.ClientFrame, frameBuffer),
		gone:     make(chan struct{}),
	}
}

// StartReader launches the read loop. Call exactly once.
func (p *Player) StartReader() {
	go p.readLoop()
}

func (p *Player) readLoop() {
	defer close(p.gone)
	defer close(p.frames)

	for {
		data, err := p.conn.ReadMessage()
		if err != nil {
			// Covers peer close, integrity failure and oversize frames;
			// all are terminal for the connection.
			return
		}

		frame, err := protocol.DecodeClientFrame(data)
		if err != nil {
			// Malformed in-match traffic closes the offending connection
			p.Close()
			return
		}

		select {
		case p.frames <- frame:
		default:
			// Buffer full: drop the oldest frame to keep the newest intent
			select {
			case <-p.frames:
			default:
			}
			select {
			case p.frames <- frame:
			default:
			}
		}
	}
}

// Frames returns the decoded frame stream. The channel is closed when
// the connection is lost.
func (p *Player) Frames() <-chan *protocol.ClientFrame {
	return p.frames
}

// Gone is closed when the player's connection is lost
func (p *Player) Gone() <-chan struct{} {
	return p.gone
}

// Send encodes and writes one message with a write deadline
func (p *Player) Send(msg any, timeout time.Duration) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	_ = p.conn.SetWriteDeadline(time.Now().Add(timeout))
	return p.conn.WriteMessage(data)
}

// Close closes the player's connection; safe to call more than once
func (p *Player) Close() {
	p.closeOnce.Do(func() {
		_ = p.conn.Close()
	})
}
