package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	neturl "net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// Event names pushed by the server
const (
	eventRoomState   = "room:state"
	eventRoomDeleted = "room:deleted"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events [code]",
		Short: "Stream SSE events from a room",
		Long: `Connect to the room's SSE endpoint and stream events in real-time.

Events include:
  - room:state: Full room snapshot, sent on connect and after every change
  - room:deleted: The room is gone; the stream ends

Press Ctrl+C to disconnect.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := cfg.resolveCode(args)
			if err != nil {
				return err
			}
			return streamEvents(cmd.Context(), code, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(parent context.Context, code string, jsonOutput bool) error {
	path := roomPath(code, "events")
	if cfg.Session != nil && cfg.Session.Code == code {
		path += "?playerId=" + neturl.QueryEscape(cfg.Session.PlayerID)
	}

	// Cancel on interrupt
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	body, err := client.Stream(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	if !jsonOutput {
		fmt.Printf("Connected to room %s\n", code)
	}

	err = readSSE(body, func(event, data string) bool {
		printEvent(os.Stdout, event, data, jsonOutput)
		return event != eventRoomDeleted
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

// readSSE parses an event stream, calling fn for each complete event until
// fn returns false or the stream ends. Comment lines are skipped.
func readSSE(r io.Reader, fn func(event, data string) bool) error {
	scanner := bufio.NewScanner(r)
	// Snapshots of large rooms can exceed the default line limit
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ":"):
			// keepalive
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" && !fn(currentEvent, strings.Join(dataLines, "\n")) {
				return nil
			}
			currentEvent = ""
			dataLines = nil
		}
	}
	return scanner.Err()
}

func printEvent(w io.Writer, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		jsonData, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: data})
		_, _ = fmt.Fprintln(w, string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, event, summarizeEvent(event, data))
}

// summarizeEvent renders a one-line description of an event payload
func summarizeEvent(event, data string) string {
	if event == eventRoomState {
		var room Room
		if err := json.Unmarshal([]byte(data), &room); err == nil {
			names := make([]string, 0, len(room.Players))
			for _, p := range room.Players {
				if p.IsHost {
					names = append(names, p.Name+"*")
				} else {
					names = append(names, p.Name)
				}
			}
			return fmt.Sprintf("phase=%s version=%d players=[%s]",
				room.Phase, room.Version, strings.Join(names, ", "))
		}
	}

	// Truncate anything else for display
	display := strings.ReplaceAll(data, "\n", " ")
	if len(display) > 100 {
		display = display[:100] + "..."
	}
	return display
}
