package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "pongcli",
		Short: "CLI client for the netpong server",
		Long: `pongcli is a client for the netpong two-player pong server.

It registers and logs in accounts over the encrypted auth channel,
plays matches over the game channel with a scripted paddle, and reads
the leaderboard over HTTP.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			var err error
			client, err = NewClient(cfg)
			return err
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.AuthAddr, "auth-addr", cfg.AuthAddr, "Auth channel address (env: NETPONG_AUTH_ADDR)")
	rootCmd.PersistentFlags().StringVar(&cfg.GameAddr, "game-addr", cfg.GameAddr, "Game channel address (env: NETPONG_GAME_ADDR)")
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Leaderboard server URL (env: NETPONG_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Passphrase, "passphrase", cfg.Passphrase, "Channel passphrase (env: NETPONG_PASSPHRASE)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: NETPONG_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: NETPONG_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newWinsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
