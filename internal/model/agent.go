package model

// Agent is the public view of one seat, mirrored from server events.
type Agent struct {
	Username  string
	Score     int // in hundreds of points, as sent by the server
	TileCount int

	// Discards is the seat's discard pile in discard order.
	Discards []Tile

	// RiichiDeclared is set at riichi step 1; RiichiIndex is the index into
	// Discards of the sideways riichi declaration tile.
	RiichiDeclared bool
	RiichiIndex    int

	IsAutomated bool

	// Melds holds the seat's exposed melds; MeldOrder lists their keys in
	// declaration order, and CallOrder the matching call info, which is all
	// the wire carries for rebuilding arrangements of melds formed before
	// the client joined.
	Melds     map[MeldKey]*Meld
	MeldOrder []MeldKey
	CallOrder []CallInfo
}

// NewAgent returns an empty agent record.
func NewAgent() *Agent {
	return &Agent{RiichiIndex: -1, Melds: make(map[MeldKey]*Meld)}
}
