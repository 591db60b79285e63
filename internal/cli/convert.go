package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mcoot/draftboard/internal/convert"
	"github.com/mcoot/draftboard/internal/model"
	"github.com/mcoot/draftboard/internal/sleeper"
)

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Build the server's data files",
		Long: `Build the static data files the server loads at startup.

These commands run locally and do not talk to the draft board server.`,
	}

	cmd.AddCommand(newConvertRosterCmd())
	cmd.AddCommand(newConvertRankingsCmd())

	return cmd
}

// rosterSummary is the JSON form of convert.RosterStats
type rosterSummary struct {
	Original   int                    `json:"original"`
	Kept       int                    `json:"kept"`
	Removed    int                    `json:"removed"`
	ByPosition map[model.Position]int `json:"by_position"`
	Backup     string                 `json:"backup,omitempty"`
}

func printRosterStats(w io.Writer, stats convert.RosterStats, backup string) error {
	if cfg.Output == OutputJSON {
		NewOutput(cfg.Output, w).Print(rosterSummary{
			Original:   stats.Original,
			Kept:       stats.Kept,
			Removed:    stats.Removed(),
			ByPosition: stats.ByPosition,
			Backup:     backup,
		})
		return nil
	}

	if err := stats.Write(w); err != nil {
		return err
	}
	if backup != "" {
		fmt.Fprintf(w, "\nOriginal saved to %s\n", backup)
	}
	return nil
}

func newConvertRosterCmd() *cobra.Command {
	var (
		out        string
		fetch      bool
		sleeperURL string
	)

	cmd := &cobra.Command{
		Use:   "roster [players.json]",
		Short: "Filter the Sleeper player dump down to fantasy-relevant players",
		Long: `Filter the Sleeper player dump down to players with a team and a fantasy
position (QB, RB, WR, TE, K, DEF).

The input file is rewritten in place unless --out is given, and its original
contents are saved next to it as <name>_backup.json. With --fetch the dump is
downloaded from Sleeper instead and no backup is made.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := "data/players.json"
			if len(args) == 1 {
				in = args[0]
			}
			if out == "" {
				out = in
			}
			w := cmd.OutOrStdout()

			if !fetch {
				stats, err := convert.FilterRosterFile(in, out)
				if err != nil {
					return err
				}
				return printRosterStats(w, stats, convert.BackupPath(in))
			}

			sleeperCfg := sleeper.DefaultConfig()
			sleeperCfg.BaseURL = sleeperURL
			players, err := sleeper.New(sleeperCfg).Players(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetch players: %w", err)
			}

			kept, stats := convert.FilterPlayers(players)
			data, err := convert.MarshalRoster(kept)
			if err != nil {
				return err
			}
			if err := convert.WriteFile(out, data); err != nil {
				return err
			}
			return printRosterStats(w, stats, "")
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Where to write the roster (default: the input file)")
	cmd.Flags().BoolVar(&fetch, "fetch", false, "Download the player dump from Sleeper instead of reading a file")
	cmd.Flags().StringVar(&sleeperURL, "sleeper-url", sleeper.DefaultConfig().BaseURL, "Sleeper API base URL used by --fetch")

	return cmd
}

func newConvertRankingsCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "rankings <rankings.csv>",
		Short: "Convert a FantasyPros ranking export to the rankings file",
		Long: `Convert a FantasyPros ranking CSV (columns RK, TIERS, PLAYER NAME, POS) into
the rankings file the server loads.

Names are cleaned so they match the roster: generational suffixes such as
"Jr." and "III" are dropped and known aliases applied. Positional ranks are
stripped from POS ("RB12" becomes RB) and DST becomes DEF.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			players, err := convert.ConvertRankingsFile(args[0], out)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if cfg.Output == OutputJSON {
				NewOutput(cfg.Output, w).Print(map[string]any{
					"converted": len(players),
					"output":    out,
				})
				return nil
			}
			return convert.WriteRankingsSummary(w, players)
		},
	}

	cmd.Flags().StringVar(&out, "out", "data/rankings.json", "Where to write the rankings file")

	return cmd
}
