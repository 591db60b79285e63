package cli

import (
	"github.com/spf13/cobra"
)

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board <code>",
		Short: "Show a session's drafted and available players",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Board(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newPicksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "picks <code>",
		Short: "List the picks made so far, in draft order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Picks(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newAvailableCmd() *cobra.Command {
	var position string

	cmd := &cobra.Command{
		Use:   "available <code>",
		Short: "List undrafted ranked players",
		Long: `List the ranked players nobody has drafted yet, in rank order.

Without --position the session's filter applies. --position overrides it for
this request only; pass --position "" to see every position.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var override *string
			if cmd.Flags().Changed("position") {
				override = &position
			}

			result, err := client.Available(cmd.Context(), args[0], override)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&position, "position", "", "Position to show instead of the session filter")

	return cmd
}

func newFilterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "filter <code> [position]",
		Short: "Set or clear a session's position filter",
		Long:  "Set the session's position filter. Leave out the position to show every position again.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			position := ""
			if len(args) == 2 {
				position = args[1]
			}

			result, err := client.SetFilter(cmd.Context(), args[0], position)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newDraftCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft <code> <draft-id>",
		Short: "Point a session at another draft",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.ChangeDraft(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <code>",
		Short: "Fetch the session's draft now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Refresh(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
