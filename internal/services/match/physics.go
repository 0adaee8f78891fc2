package match

import "github.com/netpong/netpong/internal/model"

// maxBounceY is the largest vertical speed imparted by an off-center
// paddle hit.
const maxBounceY = 4.0

// applyInput moves one paddle by the player's current intent, clamped
// to the playfield bounds.
func applyInput(m *model.Match, side model.Side, input model.Input) {
	var y *float64
	if side == model.SideLeft {
		y = &m.PaddleL
	} else {
		y = &m.PaddleR
	}

	switch input {
	case model.InputUp:
		*y -= model.PaddleSpeed
	case model.InputDown:
		*y += model.PaddleSpeed
	}

	*y = clamp(*y, 0, model.FieldHeight-model.PaddleHeight)
}

// step advances the ball one tick: wall and paddle reflection, and
// scoring on a miss. Returns the side that scored, or "" if none.
// On a score the board resets with the serve toward the conceding side.
func step(m *model.Match) model.Side {
	m.Ball.X += m.BallVel.X
	m.Ball.Y += m.BallVel.Y

	// Wall bounce
	if m.Ball.Y < 0 {
		m.Ball.Y = -m.Ball.Y
		m.BallVel.Y = -m.BallVel.Y
	} else if m.Ball.Y > model.FieldHeight {
		m.Ball.Y = 2*model.FieldHeight - m.Ball.Y
		m.BallVel.Y = -m.BallVel.Y
	}

	// Paddle faces
	leftFace := model.PaddleMargin + model.PaddleWidth
	rightFace := model.FieldWidth - model.PaddleMargin - model.PaddleWidth

	if m.BallVel.X < 0 && m.Ball.X <= leftFace && paddleCovers(m.PaddleL, m.Ball.Y) {
		m.Ball.X = leftFace + (leftFace - m.Ball.X)
		m.BallVel.X = -m.BallVel.X
		m.BallVel.Y = bounceY(m.PaddleL, m.Ball.Y)
	} else if m.BallVel.X > 0 && m.Ball.X >= rightFace && paddleCovers(m.PaddleR, m.Ball.Y) {
		m.Ball.X = rightFace - (m.Ball.X - rightFace)
		m.BallVel.X = -m.BallVel.X
		m.BallVel.Y = bounceY(m.PaddleR, m.Ball.Y)
	}

	// Miss past either edge scores for the opponent
	if m.Ball.X < 0 {
		m.ScoreR++
		m.ResetPositions(model.SideLeft)
		return model.SideRight
	}
	if m.Ball.X > model.FieldWidth {
		m.ScoreL++
		m.ResetPositions(model.SideRight)
		return model.SideLeft
	}

	return ""
}

// paddleCovers reports whether a paddle at top edge y blocks a ball at ballY
func paddleCovers(y, ballY float64) bool {
	return ballY >= y && ballY <= y+model.PaddleHeight
}

// bounceY maps the hit offset from paddle center to a vertical speed
func bounceY(paddleY, ballY float64) float64 {
	center := paddleY + model.PaddleHeight/2
	offset := (ballY - center) / (model.PaddleHeight / 2)
	return clamp(offset, -1, 1) * maxBounceY
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
