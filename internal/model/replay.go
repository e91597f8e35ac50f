package model

import "time"

// ReplayID uniquely identifies one recorded session.
type ReplayID string

// ReplayMeta describes a recorded session.
type ReplayMeta struct {
	ID        ReplayID  `json:"id"`
	Username  string    `json:"username"`
	Server    string    `json:"server"`
	Observer  bool      `json:"observer"`
	StartedAt time.Time `json:"started_at"`
	Finished  bool      `json:"finished"`
	LineCount int       `json:"line_count"`
}

// ReplayLine is one raw wire line, kept verbatim so a replay can be fed back
// through the decoder unchanged.
type ReplayLine struct {
	Seq        int       `json:"seq"`
	Outbound   bool      `json:"outbound"`
	ReceivedAt time.Time `json:"received_at"`
	Line       []byte    `json:"line"`
}
