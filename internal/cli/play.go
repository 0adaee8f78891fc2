package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/netpong/netpong/internal/model"
	"github.com/netpong/netpong/internal/protocol"
)

func newPlayCmd() *cobra.Command {
	var rematches int
	var strategy string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Join the matchmaking queue and play a match",
		Long: `play connects to the game channel with the saved session token,
waits for an opponent, and plays with a scripted paddle. The default
strategy tracks the ball; --strategy up, down or idle play worse on
purpose, which is useful for testing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return fmt.Errorf("no session token: run login first")
			}
			return runPlay(cfg.Token, strategy, rematches)
		},
	}

	cmd.Flags().IntVar(&rematches, "rematch", 0, "Number of rematches to accept")
	cmd.Flags().StringVar(&strategy, "strategy", "track", "Paddle strategy: track, up, down, idle")

	return cmd
}

func runPlay(token, strategy string, rematches int) error {
	conn, err := client.Connect(token)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Println("Connected, waiting for opponent...")

	data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("waiting for match: %w", err)
	}
	start, err := protocol.DecodeMatchStart(data)
	if err != nil {
		return err
	}

	fmt.Printf("Match %s: playing %s vs %s (first to %d)\n",
		start.MatchID, start.Side, start.Opponent, start.WinScore)

	game := &gameLoop{
		conn:      conn,
		side:      model.Side(start.Side),
		strategy:  strategy,
		rematches: rematches,
	}
	return game.run()
}

// gameLoop drives one game channel connection from first snapshot to
// match teardown, sending one input frame per received snapshot.
type gameLoop struct {
	conn interface {
		ReadMessage() ([]byte, error)
		WriteMessage([]byte) error
	}
	side      model.Side
	strategy  string
	rematches int

	lastPhase  model.Phase
	lastScoreL int
	lastScoreR int
	voted      bool
}

func (g *gameLoop) run() error {
	for {
		data, err := g.conn.ReadMessage()
		if err != nil {
			// Match teardown closes the connection from the server side
			return nil
		}
		snap, err := protocol.DecodeSnapshot(data)
		if err != nil {
			return err
		}

		g.report(snap)
		if snap.Phase == model.PhaseClosed {
			return nil
		}

		if err := g.respond(snap); err != nil {
			return err
		}
	}
}

func (g *gameLoop) report(snap *protocol.Snapshot) {
	if snap.ScoreLeft != g.lastScoreL || snap.ScoreRight != g.lastScoreR {
		fmt.Printf("Score: %d - %d\n", snap.ScoreLeft, snap.ScoreRight)
		g.lastScoreL, g.lastScoreR = snap.ScoreLeft, snap.ScoreRight
	}

	if snap.Phase != g.lastPhase {
		switch snap.Phase {
		case model.PhaseCountdown:
			fmt.Println("Get ready...")
			g.voted = false
		case model.PhasePlaying:
			fmt.Println("Go!")
		case model.PhaseGameOver:
			fmt.Printf("Game over: %s wins\n", snap.Winner)
		case model.PhaseRematchVote:
			if g.rematches > 0 {
				fmt.Println("Voting for a rematch")
			} else {
				fmt.Println("Declining a rematch")
			}
		}
		g.lastPhase = snap.Phase
	}
}

func (g *gameLoop) respond(snap *protocol.Snapshot) error {
	frame := protocol.ClientFrame{Input: string(model.InputNone)}

	switch snap.Phase {
	case model.PhasePlaying:
		frame.Input = string(g.pickInput(snap))
	case model.PhaseRematchVote:
		if g.voted {
			return nil
		}
		vote := g.rematches > 0
		if vote {
			g.rematches--
		}
		frame.Vote = &vote
		g.voted = true
	default:
		return nil
	}

	payload, err := protocol.Encode(frame)
	if err != nil {
		return err
	}
	if err := g.conn.WriteMessage(payload); err != nil {
		return nil
	}
	return nil
}

func (g *gameLoop) pickInput(snap *protocol.Snapshot) model.Input {
	switch g.strategy {
	case "up":
		return model.InputUp
	case "down":
		return model.InputDown
	case "idle":
		return model.InputNone
	}

	// Track the ball: steer the paddle center toward the ball's y
	paddle := snap.PaddleLeft
	if g.side == model.SideRight {
		paddle = snap.PaddleRight
	}
	center := paddle + model.PaddleHeight/2

	switch {
	case snap.Ball.Y < center-model.PaddleSpeed:
		return model.InputUp
	case snap.Ball.Y > center+model.PaddleSpeed:
		return model.InputDown
	default:
		return model.InputNone
	}
}
