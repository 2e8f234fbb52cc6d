package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Room:
		o.printRoom(v)
	case RoomResult:
		o.printRoomResult(v)
	case LeaveResult:
		o.printLeaveResult(v)
	case SubmissionResult:
		o.printSubmissionResult(v)
	case Session:
		o.printSession(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// Room is the room snapshot returned by the API
type Room struct {
	Code                      string         `json:"code"`
	Phase                     string         `json:"phase"`
	Version                   int            `json:"version"`
	Players                   []Player       `json:"players"`
	NumSongsPerPlayer         int            `json:"numSongsPerPlayer"`
	TimePerVotingRoundSeconds int            `json:"timePerVotingRoundSeconds"`
	NumSongsToPlay            int            `json:"numSongsToPlay"`
	SubmissionCounts          map[string]int `json:"submissionCounts"`
}

// RoomResult is returned by create and join
type RoomResult struct {
	Player Player `json:"player"`
	Room   Room   `json:"room"`
}

// LeaveResult is returned by leave and kick
type LeaveResult struct {
	Deleted bool  `json:"deleted"`
	Room    *Room `json:"room,omitempty"`
}

// SubmissionResult is returned by submit
type SubmissionResult struct {
	SubmissionID string `json:"submissionId"`
	Room         Room   `json:"room"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

func (o *Output) printRoom(r Room) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("Phase: %s\n", r.Phase)
	fmt.Printf("Songs per player: %d\n", r.NumSongsPerPlayer)
	fmt.Printf("Voting round: %ds\n", r.TimePerVotingRoundSeconds)
	fmt.Printf("Songs to play: %d\n", r.NumSongsToPlay)
	fmt.Printf("Players (%d):\n", len(r.Players))
	for _, p := range r.Players {
		hostStr := ""
		if p.IsHost {
			hostStr = " [host]"
		}
		fmt.Printf("  - %s (%s) %d/%d songs%s\n",
			p.Name, p.ID, r.SubmissionCounts[p.ID], r.NumSongsPerPlayer, hostStr)
	}
	if o.verbose() {
		fmt.Printf("Version: %d\n", r.Version)
	}
}

func (o *Output) printRoomResult(r RoomResult) {
	fmt.Printf("You are %s (%s)\n", r.Player.Name, r.Player.ID)
	o.printRoom(r.Room)
}

func (o *Output) printLeaveResult(l LeaveResult) {
	if l.Deleted {
		fmt.Println("Room deleted")
		return
	}
	if l.Room != nil {
		o.printRoom(*l.Room)
	}
}

func (o *Output) printSubmissionResult(s SubmissionResult) {
	fmt.Printf("Submitted (%s)\n", s.SubmissionID)

	ids := make([]string, 0, len(s.Room.SubmissionCounts))
	for id := range s.Room.SubmissionCounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("  %s: %d/%d\n", id, s.Room.SubmissionCounts[id], s.Room.NumSongsPerPlayer)
	}
}

func (o *Output) printSession(s Session) {
	fmt.Printf("Room: %s\n", s.Code)
	fmt.Printf("Player: %s (%s)\n", s.Name, s.PlayerID)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Rooms: %d\n", h.Rooms)
}

func (o *Output) verbose() bool {
	return cfg != nil && cfg.Verbose
}
