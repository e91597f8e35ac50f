package response

import (
	"encoding/json"
	"time"

	"github.com/tsumogiri/riichi-client/internal/model"
)

// Replay represents replay metadata in API responses
type Replay struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Server    string    `json:"server"`
	Observer  bool      `json:"observer"`
	StartedAt time.Time `json:"started_at"`
	Finished  bool      `json:"finished"`
	LineCount int       `json:"line_count"`
}

// ReplayFromModel converts a model.ReplayMeta to a response Replay
func ReplayFromModel(m *model.ReplayMeta) Replay {
	return Replay{
		ID:        string(m.ID),
		Username:  m.Username,
		Server:    m.Server,
		Observer:  m.Observer,
		StartedAt: m.StartedAt,
		Finished:  m.Finished,
		LineCount: m.LineCount,
	}
}

// ReplayList is the response for the replay listing endpoint
type ReplayList struct {
	Replays []Replay `json:"replays"`
}

// ReplayLine represents one recorded wire line. The line itself is raw JSON,
// so it embeds directly instead of round-tripping through base64.
type ReplayLine struct {
	Seq        int             `json:"seq"`
	Outbound   bool            `json:"outbound"`
	ReceivedAt time.Time       `json:"received_at"`
	Line       json.RawMessage `json:"line"`
}

// ReplayLineFromModel converts a model.ReplayLine
func ReplayLineFromModel(l *model.ReplayLine) ReplayLine {
	return ReplayLine{
		Seq:        l.Seq,
		Outbound:   l.Outbound,
		ReceivedAt: l.ReceivedAt,
		Line:       json.RawMessage(l.Line),
	}
}

// ReplayLines is the response for the replay lines endpoint
type ReplayLines struct {
	Lines []ReplayLine `json:"lines"`
}
