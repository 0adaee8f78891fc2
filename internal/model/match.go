package model

import "time"

// MatchID uniquely identifies a match
type MatchID string

// Side identifies which paddle a player controls
type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// Opposite returns the other side
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Phase represents the current stage of a match's state machine
type Phase string

const (
	PhaseWaiting     Phase = "waiting"      // Players attaching
	PhaseCountdown   Phase = "countdown"    // Start delay before play
	PhasePlaying     Phase = "playing"      // Simulation running
	PhaseGameOver    Phase = "game_over"    // A player reached the win score
	PhaseRematchVote Phase = "rematch_vote" // Waiting for both rematch votes
	PhaseClosed      Phase = "closed"       // Match torn down
)

// Input is a paddle movement intent sent by a client.
// Clients send intent only; the server computes positions.
type Input string

const (
	InputUp   Input = "up"
	InputDown Input = "down"
	InputNone Input = "none"
)

// ParseInput validates a wire input value
func ParseInput(s string) (Input, error) {
	switch Input(s) {
	case InputUp, InputDown, InputNone:
		return Input(s), nil
	}
	return InputNone, ErrInvalidInput
}

// Vec2 is a 2D position or velocity on the playfield
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Playfield geometry and rules. Dimensions match the classic 640x480 field.
const (
	FieldWidth   = 640.0
	FieldHeight  = 480.0
	PaddleHeight = 60.0
	PaddleWidth  = 10.0
	PaddleMargin = 20.0 // distance from field edge to paddle face
	PaddleSpeed  = 6.0  // per tick
	BallSpeedX   = 4.0  // per tick
	BallSpeedY   = 2.0  // per tick

	// WinScore ends the match the instant either player reaches it
	WinScore = 5
)

// Match is the authoritative state of one game between two players.
// It is owned exclusively by the match session that runs it; no other
// component reads or writes these fields concurrently.
type Match struct {
	ID MatchID

	PlayerLeft  string // username
	PlayerRight string // username

	Phase Phase
	Seq   uint64 // snapshot sequence number, monotonically increasing

	Ball    Vec2
	BallVel Vec2
	PaddleL float64 // top edge y of left paddle
	PaddleR float64 // top edge y of right paddle
	ScoreL  int
	ScoreR  int

	// Rematch votes; nil means not yet cast
	VoteL *bool
	VoteR *bool

	CreatedAt time.Time
}

// NewMatch creates a match between two players with centered state
func NewMatch(id MatchID, left, right string, now time.Time) *Match {
	m := &Match{
		ID:          id,
		PlayerLeft:  left,
		PlayerRight: right,
		Phase:       PhaseWaiting,
		CreatedAt:   now,
	}
	m.ResetPositions(SideRight)
	return m
}

// ResetPositions centers the ball and paddles. The ball is served toward
// the given side.
func (m *Match) ResetPositions(serveToward Side) {
	m.Ball = Vec2{X: FieldWidth / 2, Y: FieldHeight / 2}
	vx := BallSpeedX
	if serveToward == SideLeft {
		vx = -BallSpeedX
	}
	m.BallVel = Vec2{X: vx, Y: BallSpeedY}
	m.PaddleL = (FieldHeight - PaddleHeight) / 2
	m.PaddleR = (FieldHeight - PaddleHeight) / 2
}

// ResetForRematch clears scores and votes for a replay between the same players
func (m *Match) ResetForRematch() {
	m.ScoreL = 0
	m.ScoreR = 0
	m.VoteL = nil
	m.VoteR = nil
	m.ResetPositions(SideRight)
}

// Player returns the username on the given side
func (m *Match) Player(side Side) string {
	if side == SideLeft {
		return m.PlayerLeft
	}
	return m.PlayerRight
}

// Winner returns the side that reached the win score, or "" if none yet
func (m *Match) Winner() Side {
	if m.ScoreL >= WinScore {
		return SideLeft
	}
	if m.ScoreR >= WinScore {
		return SideRight
	}
	return ""
}

// Vote records a rematch vote for the given side
func (m *Match) Vote(side Side, yes bool) {
	v := yes
	if side == SideLeft {
		m.VoteL = &v
	} else {
		m.VoteR = &v
	}
}

// BothVoted reports whether both players have cast a rematch vote
func (m *Match) BothVoted() bool {
	return m.VoteL != nil && m.VoteR != nil
}

// BothWantRematch reports whether both players voted yes
func (m *Match) BothWantRematch() bool {
	return m.VoteL != nil && *m.VoteL && m.VoteR != nil && *m.VoteR
}

// AnyDeclined reports whether either player voted no
func (m *Match) AnyDeclined() bool {
	return (m.VoteL != nil && !*m.VoteL) || (m.VoteR != nil && !*m.VoteR)
}
