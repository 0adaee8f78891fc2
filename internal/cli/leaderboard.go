package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLeaderboardCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the leaderboard standings",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Standings

			path := "/leaderboard"
			if limit > 0 {
				path = fmt.Sprintf("/leaderboard?limit=%d", limit)
			}
			if err := client.Get(path, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum standings to show")

	return cmd
}

func newWinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wins <username>",
		Short: "Show one player's win count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result WinsResult

			if err := client.Get("/leaderboard/"+args[0], &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
