package model

import (
	"bytes"
	"encoding/json"
)

// EventKind identifies the type of an inbound protocol event
type EventKind string

const (
	EventJoin       EventKind = "join"
	EventStart      EventKind = "start"
	EventUpdate     EventKind = "update"
	EventDraw       EventKind = "draw"
	EventDiscard    EventKind = "discard"
	EventChi        EventKind = "chi"
	EventPon        EventKind = "pon"
	EventKan        EventKind = "kan"
	EventAddKan     EventKind = "addkan"
	EventRiichi     EventKind = "riichi"
	EventAgari      EventKind = "agari"
	EventRyuukyoku  EventKind = "ryuukyoku"
	EventSettlement EventKind = "settlement"
	EventSelectTile EventKind = "select_tile"
	EventDecision   EventKind = "decision"
	EventScore      EventKind = "score"
	EventWait       EventKind = "wait"
	EventQuit       EventKind = "quit"
	EventEnd        EventKind = "end"
)

// Kan subtypes carried in the first element of a kan pattern.
const (
	KanOpen      = 0 // formed on another player's discard
	KanConcealed = 1 // all four tiles from the owner's hand
	KanAdded     = 2 // upgrade of an existing triplet
)

// Event is one decoded inbound protocol message.
type Event interface {
	Kind() EventKind
}

// JoinEvent acknowledges a join request. Status 0 means rejected/pending,
// positive means accepted as a player, -1 means accepted as an observer.
type JoinEvent struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (JoinEvent) Kind() EventKind { return EventJoin }

// AgentInfo is the public per-seat snapshot inside a start payload.
type AgentInfo struct {
	Username    string   `json:"username"`
	Score       int      `json:"score"`
	TileCount   int      `json:"tile_count"`
	Furo        FuroList `json:"furo"`
	KuiInfo     [][]int  `json:"kui_info"`
	Riichi      int      `json:"riichi"`
	RiichiRound int      `json:"riichi_round"`
	Discards    []Tile   `json:"discard"`
	River       []Tile   `json:"river"`
	RiichiTile  int      `json:"riichi_tile"`
	IsAI        bool     `json:"is_ai"`
}

// GameInfo is the round-level snapshot inside a start payload.
type GameInfo struct {
	Round          int         `json:"round"`
	Honba          int         `json:"honba"`
	RiichiSticks   int         `json:"riichi_ba"`
	DoraIndicators []Tile      `json:"dora_indicator"`
	Dealer         Seat        `json:"oya"`
	Agents         []AgentInfo `json:"agents"`
	WallRemaining  int         `json:"left_num"`
}

// SelfInfo is the private snapshot for the viewing seat inside a start
// payload.
type SelfInfo struct {
	Username  string   `json:"username"`
	Seat      Seat     `json:"seat"`
	Tiles     []Tile   `json:"tiles"`
	Furo      FuroList `json:"furo"`
	FuroCount int      `json:"furo_count"`
	KuiInfo   [][]int  `json:"kui_info"`
	Machi     []Tile   `json:"machi"`
}

// StartEvent begins a round.
type StartEvent struct {
	Game GameInfo `json:"game"`
	Self SelfInfo `json:"self"`
}

func (StartEvent) Kind() EventKind { return EventStart }

// UpdateEvent is a generic single-field patch for state not covered by a
// dedicated event.
type UpdateEvent struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func (UpdateEvent) Kind() EventKind { return EventUpdate }

// DrawEvent announces a wall draw. Tile is only present when the viewing seat
// may see it (own draws, or the observed seat's draws).
type DrawEvent struct {
	Who   Seat  `json:"who"`
	Tile  *Tile `json:"tile_id"`
	Where int   `json:"where"`
}

func (DrawEvent) Kind() EventKind { return EventDraw }

// DiscardEvent announces a discard. Mode 0 means discarded from hand,
// anything else means the fresh draw was discarded directly.
type DiscardEvent struct {
	Who        Seat `json:"who"`
	Tile       Tile `json:"tile_id"`
	Mode       int  `json:"mode"`
	AfterTsumo bool `json:"after_tsumo"`
	IsRiichi   bool `json:"is_riichi"`
}

func (DiscardEvent) Kind() EventKind { return EventDiscard }

// CallEvent announces a chi or pon.
type CallEvent struct {
	Call    EventKind // EventChi or EventPon
	Tiles   []Tile    // the full meld pattern, including the called tile
	Who     Seat
	FromWho Seat
	Called  Tile
}

func (e CallEvent) Kind() EventKind { return e.Call }

// KanEvent announces a kan or an added-kan upgrade. For KanAdded the server
// sends an addkan event (Upgrade true) carrying the record mutation, paired
// with a kan event (Upgrade false) that clients treat as a no-op.
type KanEvent struct {
	Upgrade  bool // true for the addkan event
	KanType  int  // KanOpen, KanConcealed or KanAdded
	BaseRank int
	Extra    Tile // pattern[2]: the added tile, or the called tile for an open kan
	Who      Seat
	FromWho  Seat
	Called   Tile
}

func (e KanEvent) Kind() EventKind {
	if e.Upgrade {
		return EventAddKan
	}
	return EventKan
}

// RiichiEvent announces a riichi declaration. Step 1 is the declaration
// itself; step 2 confirms the stick payment after the discard passes.
type RiichiEvent struct {
	Who    Seat
	Step   int
	Double bool
}

func (RiichiEvent) Kind() EventKind { return EventRiichi }

// AgariResult is one winner's breakdown inside an agari event.
type AgariResult struct {
	Who      Seat            `json:"who"`
	FromWho  Seat            `json:"from_who"`
	Machi    Tile            `json:"machi"`
	Hai      []Tile          `json:"hai"`
	Yaku     json.RawMessage `json:"yaku"`
	YakuList []string        `json:"yaku_list"`
	Han      int             `json:"han"`
	Fu       int             `json:"fu"`
	Score    int             `json:"score"`
}

// AgariEvent announces one or more wins on the same tile.
type AgariEvent struct {
	Wins []AgariResult `json:"action"`
}

func (AgariEvent) Kind() EventKind { return EventAgari }

// Abortive draw reasons.
const (
	RyuukyokuRon3    = "ron3"     // triple ron
	RyuukyokuYao9    = "yao9"     // nine terminals declaration
	RyuukyokuYamaEnd = "yama_end" // wall exhausted
	RyuukyokuKaze4   = "kaze4"    // four identical wind discards
	RyuukyokuReach4  = "reach4"   // four riichi declarations
	RyuukyokuKan4    = "kan4"     // four kans by different players
)

// RyuukyokuEvent announces an aborted or exhausted round. Which extra fields
// are present depends on Why.
type RyuukyokuEvent struct {
	Why     string        `json:"why"`
	Results []AgariResult `json:"action"` // ron3: the three claiming hands
	Who     *Seat         `json:"who"`    // yao9: the aborting seat
	Hai     []Tile        `json:"hai"`    // yao9: the aborting hand
	// yama_end: seat (as decimal string) -> [hand tiles, waiting tiles]
	MachiState map[string][][]Tile `json:"machi_state"`
}

func (RyuukyokuEvent) Kind() EventKind { return EventRyuukyoku }

// SettlementEvent carries the end-of-round score movement. Res is an array
// for a win settlement and a non-array for a drawn round.
type SettlementEvent struct {
	Res     json.RawMessage `json:"res"`
	Score   []int           `json:"score"`
	UraDora []Tile          `json:"ura_dora"`
}

func (SettlementEvent) Kind() EventKind { return EventSettlement }

// IsWin reports whether the settlement is for a win (Res is a JSON array).
func (e SettlementEvent) IsWin() bool {
	trimmed := bytes.TrimLeft(e.Res, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '['
}

// TileSet is either the whole hand ("all" on the wire) or an explicit list.
type TileSet struct {
	All   bool
	Tiles []Tile
}

// UnmarshalJSON accepts either the string "all" or an array of tile ids.
func (s *TileSet) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		s.All = str == "all"
		s.Tiles = nil
		return nil
	}
	s.All = false
	return json.Unmarshal(data, &s.Tiles)
}

// SelectTileEvent asks the viewing seat to choose a discard. Banned holds
// tile ranks forbidden by the kuikae rule.
type SelectTileEvent struct {
	Tiles        TileSet `json:"tiles"`
	Banned       []int   `json:"banned"`
	Tsumo        *Tile   `json:"tsumo"`
	Riichi       bool    `json:"riichi"`
	IsRiichiTile bool    `json:"is_riichi_tile"`
}

func (SelectTileEvent) Kind() EventKind { return EventSelectTile }

// DecisionOption is one offered response to a call/win opportunity. Raw holds
// the option exactly as received so the chosen one can be echoed back
// unchanged.
type DecisionOption struct {
	Type    string
	Who     Seat
	FromWho Seat
	Raw     json.RawMessage
}

// UnmarshalJSON keeps the raw bytes alongside the decoded summary fields.
func (o *DecisionOption) UnmarshalJSON(data []byte) error {
	var summary struct {
		Type    string `json:"type"`
		Who     Seat   `json:"who"`
		FromWho Seat   `json:"from_who"`
	}
	if err := json.Unmarshal(data, &summary); err != nil {
		return err
	}
	o.Type = summary.Type
	o.Who = summary.Who
	o.FromWho = summary.FromWho
	o.Raw = append([]byte(nil), data...)
	return nil
}

// DecisionEvent asks the viewing seat to pick one of the offered actions.
type DecisionEvent struct {
	Actions []DecisionOption `json:"actions"`
}

func (DecisionEvent) Kind() EventKind { return EventDecision }

// ScoreEvent carries the final ranking as ordered (seat, total) pairs.
type ScoreEvent struct {
	Ranking [][]int `json:"score"`
}

func (ScoreEvent) Kind() EventKind { return EventScore }

// NoticeEvent covers informational broadcasts (wait, quit) that carry only a
// message for display.
type NoticeEvent struct {
	Notice  EventKind
	Message string
}

func (e NoticeEvent) Kind() EventKind { return e.Notice }

// EndEvent terminates the session.
type EndEvent struct{}

func (EndEvent) Kind() EventKind { return EventEnd }
