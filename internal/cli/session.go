package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show or forget the saved room session",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved room and player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Session == nil {
				return errors.New("no saved session")
			}
			out := NewOutput(cfg.Output)
			out.Print(*cfg.Session)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the saved room and player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.ClearSession(); err != nil {
				return err
			}
			out := NewOutput(cfg.Output)
			out.PrintMessage("Session cleared")
			return nil
		},
	})

	return cmd
}
