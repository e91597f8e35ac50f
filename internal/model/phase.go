package model

// Phase represents the client's position in the session state machine.
type Phase string

const (
	PhaseConnecting       Phase = "connecting"
	PhaseLobby            Phase = "lobby"
	PhaseRoundActive      Phase = "round_active"
	PhaseAwaitingDiscard  Phase = "awaiting_own_discard"
	PhaseAwaitingDecision Phase = "awaiting_decision"
	PhaseSettlement       Phase = "settlement"
	PhaseFinal            Phase = "final"
	PhaseTerminated       Phase = "terminated"
)
