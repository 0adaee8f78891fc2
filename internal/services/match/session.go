// Package match runs one game between exactly two players: the
// authoritative simulation loop, win detection, and the rematch vote.
package match

import (
	"context"
	"log/slog"
	"time"

	"github.com/netpong/netpong/internal/dependencies/clock"
	"github.com/netpong/netpong/internal/model"
	"github.com/netpong/netpong/internal/protocol"
)

// Recorder receives completed match outcomes. Implementations must not
// block; a slow store can never delay tick delivery.
type Recorder interface {
	Record(winner, loser string)
}

// Config holds configuration for a match session
type Config struct {
	// TickInterval is the fixed simulation cadence
	TickInterval time.Duration
	// CountdownTicks is the start delay before play, in ticks
	CountdownTicks int
	// WriteTimeout bounds each snapshot write; a peer that cannot be
	// written to within it is treated as disconnected
	WriteTimeout time.Duration
}

// DefaultConfig returns default match configuration: 50 ticks per
// second with a one second countdown.
func DefaultConfig() Config {
	return Config{
		TickInterval:   20 * time.Millisecond,
		CountdownTicks: 50,
		WriteTimeout:   5 * time.Second,
	}
}

// Session owns one Match record exclusively. All reads and writes of
// the match state happen on the session's goroutine; the only state
// crossing in from outside is the frame channels the player readers
// feed.
type Session struct {
	left  *Player
	right *Player
	match *model.Match

	recorder Recorder
	logger   *slog.Logger
	cfg      Config

	inputs    map[model.Side]model.Input
	countdown int

	done chan struct{}
}

// New creates a session for two paired players
func New(id model.MatchID, left, right *Player, clk clock.Clock, recorder Recorder, logger *slog.Logger, cfg Config) *Session {
	if cfg.TickInterval == 0 {
		cfg.TickInterval = DefaultConfig().TickInterval
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}

	left.Side = model.SideLeft
	right.Side = model.SideRight

	return &Session{
		left:     left,
		right:    right,
		match:    model.NewMatch(id, left.Username, right.Username, clk.Now()),
		recorder: recorder,
		logger: logger.With(
			slog.String("component", "match"),
			slog.String("match_id", string(id)),
		),
		cfg: cfg,
		inputs: map[model.Side]model.Input{
			model.SideLeft:  model.InputNone,
			model.SideRight: model.InputNone,
		},
		done: make(chan struct{}),
	}
}

// Done is closed when the session has torn down
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Run drives the match to completion. It returns when the match is
// closed; both connections are closed before it returns.
func (s *Session) Run(ctx context.Context) {
	defer close(s.done)
	defer s.left.Close()
	defer s.right.Close()

	s.logger.Info("match started",
		slog.String("left", s.left.Username),
		slog.String("right", s.right.Username))

	if !s.sendStart(s.left) || !s.sendStart(s.right) {
		s.logger.Warn("player lost before start")
		return
	}

	s.match.Phase = model.PhaseCountdown
	s.countdown = s.cfg.CountdownTicks

	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.match.Phase = model.PhaseClosed
			return
		case <-ticker.C:
		}

		if lost := s.collectFrames(); lost != "" {
			s.handleLost(lost)
			return
		}

		switch s.match.Phase {
		case model.PhaseCountdown:
			s.tickCountdown()
		case model.PhasePlaying:
			if s.tickPlaying() {
				return
			}
		case model.PhaseRematchVote:
			if s.tickVoting() {
				return
			}
		}

		if s.match.Phase == model.PhaseClosed {
			return
		}
	}
}

// tickCountdown counts down to play, broadcasting state so clients can
// render the frozen board.
func (s *Session) tickCountdown() {
	s.countdown--
	if s.countdown <= 0 {
		s.match.Phase = model.PhasePlaying
	}
	s.broadcast("")
}

// tickPlaying advances the simulation one tick. Returns true when the
// session is finished.
func (s *Session) tickPlaying() bool {
	applyInput(s.match, model.SideLeft, s.inputs[model.SideLeft])
	applyInput(s.match, model.SideRight, s.inputs[model.SideRight])
	step(s.match)

	// The match ends the exact tick the win score is reached; no
	// playing snapshot ever carries a winning score.
	if winner := s.match.Winner(); winner != "" {
		s.finishGame(winner)
		return false
	}

	s.broadcast("")
	return false
}

// finishGame transitions to GameOver, records the outcome, and opens
// the rematch vote.
func (s *Session) finishGame(winner model.Side) {
	winnerName := s.match.Player(winner)
	loserName := s.match.Player(winner.Opposite())

	s.match.Phase = model.PhaseGameOver
	s.logger.Info("game over",
		slog.String("winner", winnerName),
		slog.Int("score_left", s.match.ScoreL),
		slog.Int("score_right", s.match.ScoreR))

	// Best-effort: recording failures never stall the protocol
	s.recorder.Record(winnerName, loserName)

	s.broadcast(winnerName)

	s.match.Phase = model.PhaseRematchVote
	s.broadcast(winnerName)
}

// tickVoting checks collected votes. Returns true when the session is
// finished.
func (s *Session) tickVoting() bool {
	if s.match.AnyDeclined() {
		s.closeMatch()
		return true
	}
	if s.match.BothWantRematch() {
		s.logger.Info("rematch accepted")
		s.match.ResetForRematch()
		s.match.Phase = model.PhaseCountdown
		s.countdown = s.cfg.CountdownTicks
		s.inputs[model.SideLeft] = model.InputNone
		s.inputs[model.SideRight] = model.InputNone
		s.broadcast("")
	}
	return false
}

// collectFrames drains both players' pending frames into the current
// input and vote state. Returns the side whose connection is lost or
// that violated the protocol, or "".
func (s *Session) collectFrames() model.Side {
	for _, p := range []*Player{s.left, s.right} {
		for {
			select {
			case frame, ok := <-p.Frames():
				if !ok {
					return p.Side
				}
				if side := s.applyFrame(p, frame); side != "" {
					return side
				}
				continue
			default:
			}
			break
		}
	}
	return ""
}

// applyFrame folds one client frame into session state. Returns the
// player's side on a protocol violation.
func (s *Session) applyFrame(p *Player, frame *protocol.ClientFrame) model.Side {
	if frame.Vote != nil {
		if s.match.Phase != model.PhaseRematchVote {
			// A vote outside the voting phase is out-of-phase traffic
			s.logger.Warn("out-of-phase vote",
				slog.String("player", p.Username))
			p.Close()
			return p.Side
		}
		s.match.Vote(p.Side, *frame.Vote)
		return ""
	}

	input, err := model.ParseInput(frame.Input)
	if err != nil {
		p.Close()
		return p.Side
	}
	s.inputs[p.Side] = input
	return ""
}

// handleLost drives the disconnect transitions: forfeit during play,
// implicit No during the vote.
func (s *Session) handleLost(lost model.Side) {
	survivor := s.player(lost.Opposite())

	switch s.match.Phase {
	case model.PhaseCountdown, model.PhasePlaying:
		// Forfeit: the remaining player wins immediately
		s.match.Phase = model.PhaseGameOver
		s.logger.Info("forfeit",
			slog.String("lost", s.match.Player(lost)),
			slog.String("winner", survivor.Username))
		s.recorder.Record(survivor.Username, s.match.Player(lost))
		s.sendSnapshot(survivor, s.snapshot(survivor.Username))
		s.closeMatch()

	case model.PhaseRematchVote, model.PhaseGameOver:
		// Implicit No
		s.logger.Info("player left during rematch vote",
			slog.String("lost", s.match.Player(lost)))
		s.closeMatch()

	default:
		s.match.Phase = model.PhaseClosed
	}
}

// closeMatch broadcasts the terminal phase and marks the match closed
func (s *Session) closeMatch() {
	s.match.Phase = model.PhaseClosed
	s.broadcast("")
	s.logger.Info("match closed")
}

func (s *Session) player(side model.Side) *Player {
	if side == model.SideLeft {
		return s.left
	}
	return s.right
}

// sendStart sends the preliminary side/geometry message
func (s *Session) sendStart(p *Player) bool {
	start := &protocol.MatchStart{
		MatchID:  string(s.match.ID),
		Side:     string(p.Side),
		Opponent: s.match.Player(p.Side.Opposite()),
		Width:    model.FieldWidth,
		Height:   model.FieldHeight,
		WinScore: model.WinScore,
	}
	if err := p.Send(start, s.cfg.WriteTimeout); err != nil {
		p.Close()
		return false
	}
	return true
}

// snapshot builds the current authoritative state message
func (s *Session) snapshot(winner string) *protocol.Snapshot {
	return &protocol.Snapshot{
		Phase:       s.match.Phase,
		Seq:         s.match.Seq,
		Ball:        s.match.Ball,
		PaddleLeft:  s.match.PaddleL,
		PaddleRight: s.match.PaddleR,
		ScoreLeft:   s.match.ScoreL,
		ScoreRight:  s.match.ScoreR,
		Winner:      winner,
	}
}

// broadcast sends the current state to both players. Sequence numbers
// increase once per broadcast so each client sees a monotonically
// non-decreasing stream.
func (s *Session) broadcast(winner string) {
	s.match.Seq++
	snap := s.snapshot(winner)
	s.sendSnapshot(s.left, snap)
	s.sendSnapshot(s.right, snap)
}

func (s *Session) sendSnapshot(p *Player, snap *protocol.Snapshot) {
	if err := p.Send(snap, s.cfg.WriteTimeout); err != nil {
		// The reader will observe the closed connection and the next
		// collectFrames treats this player as lost.
		p.Close()
	}
}
