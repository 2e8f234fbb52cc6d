package model

// PlayerView is the externally visible form of a Player
type PlayerView struct {
	ID     PlayerID `json:"id"`
	Name   string   `json:"name"`
	IsHost bool     `json:"isHost"`
}

// Snapshot is the immutable, externally visible projection of a room
type Snapshot struct {
	Code                      RoomCode         `json:"code"`
	Phase                     Phase            `json:"phase"`
	Version                   int              `json:"version"`
	Players                   []PlayerView     `json:"players"`
	NumSongsPerPlayer         int              `json:"numSongsPerPlayer"`
	TimePerVotingRoundSeconds int              `json:"timePerVotingRoundSeconds"`
	NumSongsToPlay            int              `json:"numSongsToPlay"`
	SubmissionCounts          map[PlayerID]int `json:"submissionCounts"`
}

// Project derives a snapshot from a room. Every current player appears in
// SubmissionCounts; submissions from departed players are not attributed.
// The result shares no memory with r.
func Project(r *Room) Snapshot {
	players := make([]PlayerView, len(r.Players))
	counts := make(map[PlayerID]int, len(r.Players))
	for i, p := range r.Players {
		players[i] = PlayerView{ID: p.ID, Name: p.Name, IsHost: p.IsHost}
		counts[p.ID] = 0
	}
	for _, s := range r.Submissions {
		if _, ok := counts[s.PlayerID]; ok {
			counts[s.PlayerID]++
		}
	}

	return Snapshot{
		Code:                      r.Code,
		Phase:                     r.Phase,
		Version:                   r.Version,
		Players:                   players,
		NumSongsPerPlayer:         r.Config.NumSongsPerPlayer,
		TimePerVotingRoundSeconds: r.Config.TimePerVotingRoundSeconds,
		NumSongsToPlay:            r.Config.NumSongsToPlay,
		SubmissionCounts:          counts,
	}
}

// Host returns the host's view, or nil for an empty snapshot
func (s Snapshot) Host() *PlayerView {
	for i := range s.Players {
		if s.Players[i].IsHost {
			return &s.Players[i]
		}
	}
	return nil
}

// HasPlayer reports whether playerID is in the snapshot's roster
func (s Snapshot) HasPlayer(playerID PlayerID) bool {
	for _, p := range s.Players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}
