package cli

import (
	"fmt"
	"log/slog"
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
		Use:   "draftboard",
		Short: "CLI tool for the draft board API",
		Long: `draftboard is a CLI tool for the fantasy draft board server.

It manages board sessions, prints the drafted and available players, follows
live updates over SSE or websockets, and converts the raw Sleeper player dump
and FantasyPros ranking exports into the data files the server loads.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Output != OutputText && cfg.Output != OutputJSON {
				return fmt.Errorf("invalid output format %q: must be %q or %q", cfg.Output, OutputText, OutputJSON)
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			client = NewClient(cfg.ServerURL, logger)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: DRAFTBOARD_SERVER)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json (env: DRAFTBOARD_OUTPUT)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Log requests to stderr")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newBoardCmd())
	rootCmd.AddCommand(newPicksCmd())
	rootCmd.AddCommand(newAvailableCmd())
	rootCmd.AddCommand(newFilterCmd())
	rootCmd.AddCommand(newDraftCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newRankingsCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConvertCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
