// Package presentation defines the surface the dispatcher renders game
// progress through. Implementations stay dumb: seat semantics, meld layout
// and hand ordering are all resolved before a call reaches them.
package presentation

import (
	"github.com/tsumogiri/riichi-client/internal/model"
)

// SeatView is the public display state of one seat.
type SeatView struct {
	Seat        model.Seat
	Username    string
	Score       int // hundreds of points
	TileCount   int
	IsDealer    bool
	IsAutomated bool
	Riichi      bool
}

// RoundView is the full table snapshot shown when a round starts.
type RoundView struct {
	Round          int
	Honba          int
	RiichiSticks   int
	DoraIndicators []model.Tile
	WallRemaining  int
	Dealer         model.Seat

	Self      model.Seat
	Observing bool
	Hand      []model.Tile
	Seats     [4]SeatView

	// Melds holds each seat's exposed melds in declaration order, already
	// laid out for display.
	Melds [4][]model.Arrangement
}

// DiscardPrompt describes a pending tile choice.
type DiscardPrompt struct {
	// Allowed is nil when every hand tile may be discarded.
	Allowed []model.Tile

	// BannedRanks are tile kinds forbidden by the swap-calling rule.
	BannedRanks []int

	Drawn         *model.Tile
	DeclareRiichi bool // this discard is the riichi declaration tile
}

// WinView is one winner's revealed hand and scoring breakdown.
type WinView struct {
	Who         model.Seat
	Tsumo       bool
	Tiles       []model.Tile // sorted, winning tile last
	WinningTile model.Tile
	YakuList    []string
	Han         int
	Fu          int
	Score       int
}

// DrawnRoundView describes an exhausted or aborted round.
type DrawnRoundView struct {
	Reason string

	// RevealedHands maps seats that showed their hand to its sorted tiles.
	RevealedHands map[model.Seat][]model.Tile

	// ClosedCounts maps seats that kept their hand hidden on wall exhaustion
	// to the number of face-down tiles shown for them.
	ClosedCounts map[model.Seat]int
}

// SettlementView carries the end-of-round score movement.
type SettlementView struct {
	Win     bool
	Deltas  []int // hundreds of points, seat order
	Scores  [4]int
	UraDora []model.Tile
}

// Presenter receives display updates from the dispatcher. Calls arrive from
// the dispatcher goroutine only.
type Presenter interface {
	Notice(message string)

	RoundStarted(view RoundView)
	HandChanged(hand []model.Tile, drawn *model.Tile)
	TileDrawn(who model.Seat, tile *model.Tile)
	TileDiscarded(who model.Seat, tile model.Tile, riichi bool)
	MeldFormed(who model.Seat, arrangement model.Arrangement)
	RiichiDeclared(who model.Seat, double bool)
	ScoresChanged(scores [4]int, riichiSticks int)
	DoraRevealed(indicators []model.Tile)
	WallChanged(remaining int)
	FuritenChanged(furiten bool)
	WaitsChanged(machi []model.Tile)

	PromptDiscard(prompt DiscardPrompt)
	PromptDecision(options []model.DecisionOption)

	WinDeclared(win WinView)
	RoundDrawn(view DrawnRoundView)
	SettlementShown(view SettlementView)
	FinalRanking(ranking [][]int, usernames [4]string)
	SessionEnded()
}

// Nop discards everything. Useful for replay ingestion and tests that only
// care about state.
type Nop struct{}

var _ Presenter = Nop{}

func (Nop) Notice(string)                              {}
func (Nop) RoundStarted(RoundView)                     {}
func (Nop) HandChanged([]model.Tile, *model.Tile)      {}
func (Nop) TileDrawn(model.Seat, *model.Tile)          {}
func (Nop) TileDiscarded(model.Seat, model.Tile, bool) {}
func (Nop) MeldFormed(model.Seat, model.Arrangement)   {}
func (Nop) RiichiDeclared(model.Seat, bool)            {}
func (Nop) ScoresChanged([4]int, int)                  {}
func (Nop) DoraRevealed([]model.Tile)                  {}
func (Nop) WallChanged(int)                            {}
func (Nop) FuritenChanged(bool)                        {}
func (Nop) WaitsChanged([]model.Tile)                  {}
func (Nop) PromptDiscard(DiscardPrompt)                {}
func (Nop) PromptDecision([]model.DecisionOption)      {}
func (Nop) WinDeclared(WinView)                        {}
func (Nop) RoundDrawn(DrawnRoundView)                  {}
func (Nop) SettlementShown(SettlementView)             {}
func (Nop) FinalRanking([][]int, [4]string)            {}
func (Nop) SessionEnded()                              {}
