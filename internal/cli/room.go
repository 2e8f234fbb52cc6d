package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomKickCmd())
	cmd.AddCommand(newRoomConfigCmd())
	cmd.AddCommand(newRoomStartCmd())
	cmd.AddCommand(newRoomSubmitCmd())

	return cmd
}

func roomPath(code, action string) string {
	p := "/api/v1/rooms/" + url.PathEscape(code)
	if action != "" {
		p += "/" + action
	}
	return p
}

func newRoomCreateCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room and become its host",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name}
			var result RoomResult

			if err := client.Post(cmd.Context(), "/api/v1/rooms", req, &result); err != nil {
				return err
			}

			if err := rememberRoom(result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [code]",
		Short: "Get room details",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := cfg.resolveCode(args)
			if err != nil {
				return err
			}

			var result Room

			if err := client.Get(cmd.Context(), roomPath(code, ""), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{"name": name}
			var result RoomResult

			if err := client.Post(cmd.Context(), roomPath(args[0], "join"), req, &result); err != nil {
				return err
			}

			if err := rememberRoom(result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newRoomLeaveCmd() *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "leave [code]",
		Short: "Leave a room; the room is deleted when its last player leaves",
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

			var result LeaveResult
			if err := client.Post(cmd.Context(), roomPath(code, "leave"), map[string]string{"playerId": player}, &result); err != nil {
				return err
			}

			// Forget the session once we are no longer in the room
			if cfg.Session != nil && cfg.Session.PlayerID == player {
				if err := cfg.ClearSession(); err != nil {
					return fmt.Errorf("failed to clear session: %w", err)
				}
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID (default: saved session)")

	return cmd
}

func newRoomKickCmd() *cobra.Command {
	var codeFlag string

	cmd := &cobra.Command{
		Use:   "kick <playerId>",
		Short: "Remove a player from a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := cfg.resolveCode([]string{codeFlag})
			if err != nil {
				return err
			}

			var result LeaveResult
			if err := client.Post(cmd.Context(), roomPath(code, "kick"), map[string]string{"playerId": args[0]}, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&codeFlag, "code", "", "Room code (default: saved session)")

	return cmd
}

func newRoomConfigCmd() *cobra.Command {
	var (
		playerID    string
		songs       int
		votingTime  int
		songsToPlay int
	)

	cmd := &cobra.Command{
		Use:   "config [code]",
		Short: "Update room configuration (host only)",
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

			req := map[string]any{"playerId": player}
			if cmd.Flags().Changed("songs") {
				req["numSongsPerPlayer"] = songs
			}
			if cmd.Flags().Changed("voting-time") {
				req["timePerVotingRoundSeconds"] = votingTime
			}
			if cmd.Flags().Changed("songs-to-play") {
				req["numSongsToPlay"] = songsToPlay
			}
			if len(req) == 1 {
				return fmt.Errorf("at least one of --songs, --voting-time, --songs-to-play is required")
			}

			var result Room
			if err := client.Patch(cmd.Context(), roomPath(code, "config"), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player ID (default: saved session)")
	cmd.Flags().IntVar(&songs, "songs", 0, "Songs each player submits")
	cmd.Flags().IntVar(&votingTime, "voting-time", 0, "Seconds per voting round")
	cmd.Flags().IntVar(&songsToPlay, "songs-to-play", 0, "Songs played in the game")

	return cmd
}

// rememberRoom saves the identity returned by create or join
func rememberRoom(result RoomResult) error {
	err := cfg.SaveSession(Session{
		Code:     result.Room.Code,
		PlayerID: result.Player.ID,
		Name:     result.Player.Name,
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
