package presentation

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/tsumogiri/riichi-client/internal/model"
)

// Console renders the table as plain text lines, one per display update.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a console presenter writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

var _ Presenter = (*Console)(nil)

func (c *Console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format+"\n", args...)
}

func (c *Console) Notice(message string) {
	c.printf("* %s", message)
}

func (c *Console) RoundStarted(view RoundView) {
	c.printf("--- round %d (honba %d, sticks %d) ---", view.Round, view.Honba, view.RiichiSticks)
	c.printf("dora indicator: %s | wall: %d", formatTiles(view.DoraIndicators), view.WallRemaining)
	for _, seat := range view.Seats {
		marker := " "
		if seat.IsDealer {
			marker = "D"
		}
		c.printf("seat %d %s %-12s %6d00", seat.Seat, marker, seat.Username, seat.Score)
	}
	if !view.Observing {
		c.printf("hand: %s", formatTiles(view.Hand))
	}
}

func (c *Console) HandChanged(hand []model.Tile, drawn *model.Tile) {
	if drawn != nil {
		c.printf("hand: %s  drawn: %s", formatTiles(hand), *drawn)
		return
	}
	c.printf("hand: %s", formatTiles(hand))
}

func (c *Console) TileDrawn(who model.Seat, tile *model.Tile) {
	if tile == nil {
		c.printf("seat %d draws", who)
		return
	}
	c.printf("seat %d draws %s", who, *tile)
}

func (c *Console) TileDiscarded(who model.Seat, tile model.Tile, riichi bool) {
	if riichi {
		c.printf("seat %d discards %s sideways (riichi)", who, tile)
		return
	}
	c.printf("seat %d discards %s", who, tile)
}

func (c *Console) MeldFormed(who model.Seat, arrangement model.Arrangement) {
	c.printf("seat %d melds %s", who, formatArrangement(arrangement))
}

func (c *Console) RiichiDeclared(who model.Seat, double bool) {
	if double {
		c.printf("seat %d declares double riichi", who)
		return
	}
	c.printf("seat %d declares riichi", who)
}

func (c *Console) ScoresChanged(scores [4]int, riichiSticks int) {
	parts := make([]string, len(scores))
	for i, s := range scores {
		parts[i] = fmt.Sprintf("%d:%d00", i, s)
	}
	c.printf("scores %s | sticks %d", strings.Join(parts, " "), riichiSticks)
}

func (c *Console) DoraRevealed(indicators []model.Tile) {
	c.printf("dora indicator: %s", formatTiles(indicators))
}

func (c *Console) WallChanged(remaining int) {
	c.printf("wall: %d", remaining)
}

func (c *Console) FuritenChanged(furiten bool) {
	if furiten {
		c.printf("furiten")
		return
	}
	c.printf("furiten cleared")
}

func (c *Console) WaitsChanged(machi []model.Tile) {
	c.printf("waiting on: %s", formatTiles(machi))
}

func (c *Console) PromptDiscard(prompt DiscardPrompt) {
	if prompt.DeclareRiichi {
		c.printf("choose riichi declaration tile")
	} else {
		c.printf("choose discard")
	}
	if prompt.Allowed != nil {
		c.printf("  allowed: %s", formatTiles(prompt.Allowed))
	}
	if len(prompt.BannedRanks) > 0 {
		names := make([]string, len(prompt.BannedRanks))
		for i, r := range prompt.BannedRanks {
			names[i] = model.Tile(r * 4).String()
		}
		c.printf("  banned kinds: %s", strings.Join(names, " "))
	}
}

func (c *Console) PromptDecision(options []model.DecisionOption) {
	c.printf("choose action:")
	for i, opt := range options {
		c.printf("  [%d] %s (on seat %d)", i, opt.Type, opt.FromWho)
	}
}

func (c *Console) WinDeclared(win WinView) {
	verb := "ron"
	if win.Tsumo {
		verb = "tsumo"
	}
	c.printf("seat %d wins by %s on %s: %s", win.Who, verb, win.WinningTile, formatTiles(win.Tiles))
	if len(win.YakuList) > 0 {
		c.printf("  %s (%d han %d fu, %d)", strings.Join(win.YakuList, ", "), win.Han, win.Fu, win.Score)
	}
}

func (c *Console) RoundDrawn(view DrawnRoundView) {
	c.printf("round drawn: %s", view.Reason)
	seats := make([]model.Seat, 0, len(view.RevealedHands))
	for seat := range view.RevealedHands {
		seats = append(seats, seat)
	}
	sort.Slice(seats, func(i, j int) bool { return seats[i] < seats[j] })
	for _, seat := range seats {
		c.printf("  seat %d shows %s", seat, formatTiles(view.RevealedHands[seat]))
	}
	closed := make([]model.Seat, 0, len(view.ClosedCounts))
	for seat := range view.ClosedCounts {
		closed = append(closed, seat)
	}
	sort.Slice(closed, func(i, j int) bool { return closed[i] < closed[j] })
	for _, seat := range closed {
		c.printf("  seat %d keeps %d tiles closed", seat, view.ClosedCounts[seat])
	}
}

func (c *Console) SettlementShown(view SettlementView) {
	kind := "drawn round"
	if view.Win {
		kind = "win"
	}
	parts := make([]string, len(view.Deltas))
	for i, d := range view.Deltas {
		parts[i] = fmt.Sprintf("%d:%+d00", i, d)
	}
	c.printf("settlement (%s): %s", kind, strings.Join(parts, " "))
	if len(view.UraDora) > 0 {
		c.printf("  ura dora indicator: %s", formatTiles(view.UraDora))
	}
}

func (c *Console) FinalRanking(ranking [][]int, usernames [4]string) {
	c.printf("final ranking:")
	for place, entry := range ranking {
		if len(entry) < 2 {
			continue
		}
		seat := entry[0]
		name := ""
		if seat >= 0 && seat < len(usernames) {
			name = usernames[seat]
		}
		c.printf("  %d. %s (seat %d) %d00", place+1, name, seat, entry[1])
	}
}

func (c *Console) SessionEnded() {
	c.printf("session over")
}

func formatTiles(tiles []model.Tile) string {
	if len(tiles) == 0 {
		return "-"
	}
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

func formatArrangement(a model.Arrangement) string {
	parts := make([]string, len(a.Tiles))
	for i, t := range a.Tiles {
		s := t.String()
		if i < len(a.Concealed) && a.Concealed[i] {
			s = "##"
		}
		if i == a.CalledIndex {
			s = "[" + s + "]"
		}
		if i == a.CalledIndex && a.Extra != nil {
			s += "+" + a.Extra.String()
		}
		parts[i] = s
	}
	return strings.Join(parts, " ")
}
