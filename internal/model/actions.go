package model

import "encoding/json"

// Action is one outbound protocol message. ActionKind names the wire event;
// the join request is the single message sent without an event field.
type Action interface {
	ActionKind() string
}

// JoinRequest is the first line sent after connecting.
type JoinRequest struct {
	Username string `json:"username"`
	Observe  bool   `json:"observe"`
}

func (JoinRequest) ActionKind() string { return "" }

// DiscardAction answers a select_tile request.
type DiscardAction struct {
	Tile Tile `json:"tile_id"`
}

func (DiscardAction) ActionKind() string { return "discard" }

// DecisionAction answers a decision request by echoing the chosen option.
type DecisionAction struct {
	Choice json.RawMessage `json:"action"`
}

func (DecisionAction) ActionKind() string { return "decision" }

// ReadyAction signals readiness to continue after a settlement.
type ReadyAction struct{}

func (ReadyAction) ActionKind() string { return "ready" }

// ChangeObservedAction switches which seat an observer is watching.
type ChangeObservedAction struct {
	Username string `json:"username"`
}

func (ChangeObservedAction) ActionKind() string { return "change_ob" }

// QuitAction is sent on session teardown.
type QuitAction struct{}

func (QuitAction) ActionKind() string { return "quit" }
