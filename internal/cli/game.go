package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newRoomStartCmd() *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "start [code]",
		Short: "Start the game (host only, needs 3 players)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := cfg.resolveCode(args)
			if err != nil {
				return err
			}
			player, err := cfg.resolvePlayer(playerID)
			if err != nil {
				return err
			}

			var result Room
			if err := client.Post(cmd.Context(), roomPath(code, "start"), map[string]string{"playerId": player}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID (default: saved session)")

	return cmd
}

func newRoomSubmitCmd() *cobra.Command {
	var (
		playerID string
		codeFlag string
	)

	cmd := &cobra.Command{
		Use:   "submit <song>...",
		Short: "Submit a song during the submitting phase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := cfg.resolveCode([]string{codeFlag})
			if err != nil {
				return err
			}
			player, err := cfg.resolvePlayer(playerID)
			if err != nil {
				return err
			}

			req := map[string]string{
				"playerId": player,
				"song":     strings.Join(args, " "),
			}
			var result SubmissionResult
			if err := client.Post(cmd.Context(), roomPath(code, "submit"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID (default: saved session)")
	cmd.Flags().StringVar(&codeFlag, "code", "", "Room code (default: saved session)")

	return cmd
}
