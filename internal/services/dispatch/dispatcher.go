// Package dispatch runs the client's event loop: it consumes decoded events
// in arrival order, applies each to the session store, and tells the
// presenter what changed. Discard and decision requests suspend the loop
// until the input layer answers; inbound events buffer in the protocol
// channel meanwhile, so ordering is preserved.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tsumogiri/riichi-client/internal/dependencies/clock"
	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/presentation"
	"github.com/tsumogiri/riichi-client/internal/services/decision"
	"github.com/tsumogiri/riichi-client/internal/services/meld"
	"github.com/tsumogiri/riichi-client/internal/services/session"
)

// Sender pushes outbound actions to the server.
type Sender interface {
	Send(action model.Action) error
}

const (
	// defaultAutoDiscardDelay paces the forced discard while riichi-locked,
	// so the drawn tile is visible before it goes out.
	defaultAutoDiscardDelay = 800 * time.Millisecond

	// defaultMaxPromptRetries bounds how often an invalid pick re-poses the
	// prompt before the dispatcher falls back to a legal choice itself.
	defaultMaxPromptRetries = 10
)

// Dispatcher owns the session store and drives all mutation from a single
// goroutine.
type Dispatcher struct {
	logger    *slog.Logger
	clock     clock.Clock
	store     *session.Store
	presenter presentation.Presenter
	sender    Sender

	tilePicks *decision.Queue[model.Tile]
	choices   *decision.Queue[int]

	autoDiscardDelay time.Duration
	maxPromptRetries int

	// replay makes the dispatcher read-only: prompts are skipped and
	// nothing is sent back.
	replay bool
}

// New creates a dispatcher around the given store.
func New(
	logger *slog.Logger,
	clk clock.Clock,
	store *session.Store,
	presenter presentation.Presenter,
	sender Sender,
) *Dispatcher {
	return &Dispatcher{
		logger:           logger.With(slog.String("component", "dispatcher")),
		clock:            clk,
		store:            store,
		presenter:        presenter,
		sender:           sender,
		tilePicks:        decision.New[model.Tile](),
		choices:          decision.New[int](),
		autoDiscardDelay: defaultAutoDiscardDelay,
		maxPromptRetries: defaultMaxPromptRetries,
	}
}

// NewReplay creates a read-only dispatcher for rendering recorded sessions.
func NewReplay(
	logger *slog.Logger,
	clk clock.Clock,
	store *session.Store,
	presenter presentation.Presenter,
) *Dispatcher {
	d := New(logger, clk, store, presenter, nopSender{})
	d.replay = true
	return d
}

type nopSender struct{}

func (nopSender) Send(model.Action) error { return nil }

// SubmitTile hands a picked discard to a pending select_tile request. Safe to
// call from any goroutine.
func (d *Dispatcher) SubmitTile(tile model.Tile) {
	d.tilePicks.Submit(tile)
}

// SubmitChoice hands a picked option index to a pending decision request.
// Safe to call from any goroutine.
func (d *Dispatcher) SubmitChoice(index int) {
	d.choices.Submit(index)
}

// Run consumes events until the stream closes, the session ends, or ctx is
// cancelled. Events that fail to apply are logged and skipped; the loop only
// stops for transport loss or an end event.
func (d *Dispatcher) Run(ctx context.Context, events <-chan model.Event) error {
	for {
		select {
		case <-ctx.Done():
			d.store.SetPhase(model.PhaseTerminated)
			return ctx.Err()
		case e, ok := <-events:
			if !ok {
				d.store.SetPhase(model.PhaseTerminated)
				return model.ErrNotConnected
			}
			stop, err := d.handle(ctx, e)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					d.store.SetPhase(model.PhaseTerminated)
					return err
				}
				d.logger.Warn("event not applied",
					slog.String("event", string(e.Kind())),
					slog.String("error", err.Error()),
				)
			}
			if stop {
				d.store.SetPhase(model.PhaseTerminated)
				d.presenter.SessionEnded()
				return nil
			}
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, e model.Event) (bool, error) {
	switch ev := e.(type) {
	case model.JoinEvent:
		return false, d.handleJoin(ev)
	case model.StartEvent:
		return false, d.handleStart(ev)
	case model.UpdateEvent:
		return false, d.handleUpdate(ev)
	case model.DrawEvent:
		return false, d.handleDraw(ev)
	case model.DiscardEvent:
		return false, d.handleDiscard(ev)
	case model.CallEvent:
		return false, d.handleCall(ev)
	case model.KanEvent:
		return false, d.handleKan(ev)
	case model.RiichiEvent:
		return false, d.handleRiichi(ev)
	case model.AgariEvent:
		return false, d.handleAgari(ev)
	case model.RyuukyokuEvent:
		return false, d.handleRyuukyoku(ev)
	case model.SettlementEvent:
		return false, d.handleSettlement(ev)
	case model.SelectTileEvent:
		return false, d.handleSelectTile(ctx, ev)
	case model.DecisionEvent:
		return false, d.handleDecision(ctx, ev)
	case model.ScoreEvent:
		return false, d.handleScore(ev)
	case model.NoticeEvent:
		d.presenter.Notice(ev.Message)
		return false, nil
	case model.EndEvent:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %T", model.ErrUnknownEvent, e)
	}
}

func (d *Dispatcher) handleJoin(e model.JoinEvent) error {
	if e.Status == 0 || d.replay {
		d.presenter.Notice(e.Message)
		return nil
	}
	d.store.SetIdentity(d.store.Username(), e.Status == -1)
	d.store.SetPhase(model.PhaseLobby)
	d.presenter.Notice(e.Message)
	return nil
}

func (d *Dispatcher) handleStart(e model.StartEvent) error {
	d.store.StartRound(e.Game, e.Self)

	view := presentation.RoundView{
		Round:          d.store.Round(),
		Honba:          d.store.Honba(),
		RiichiSticks:   d.store.RiichiSticks(),
		DoraIndicators: d.store.DoraIndicators(),
		WallRemaining:  d.store.WallRemaining(),
		Dealer:         d.store.DealerSeat(),
		Self:           d.store.Seat(),
		Observing:      d.store.Observing(),
		Hand:           d.store.Hand(),
	}
	for i := range view.Seats {
		seat := model.Seat(i)
		a, err := d.store.Agent(seat)
		if err != nil {
			return err
		}
		view.Seats[i] = presentation.SeatView{
			Seat:        seat,
			Username:    a.Username,
			Score:       a.Score,
			TileCount:   a.TileCount,
			IsDealer:    seat == d.store.DealerSeat(),
			IsAutomated: a.IsAutomated,
			Riichi:      a.RiichiDeclared,
		}
		arrangements, err := d.store.Arrangements(seat, meld.Reconstruct)
		if err != nil {
			return err
		}
		view.Melds[i] = arrangements
	}

	d.presenter.RoundStarted(view)
	return nil
}

func (d *Dispatcher) handleUpdate(e model.UpdateEvent) error {
	key, err := d.store.ApplyUpdate(e.Key, e.Value)
	if err != nil {
		return err
	}
	switch key {
	case session.UpdateFuriten:
		d.presenter.FuritenChanged(d.store.Furiten())
	case session.UpdateWallRemaining:
		d.presenter.WallChanged(d.store.WallRemaining())
	case session.UpdateDora:
		d.presenter.DoraRevealed(d.store.DoraIndicators())
	case session.UpdateMachi:
		d.presenter.WaitsChanged(d.store.Machi())
	}
	return nil
}

func (d *Dispatcher) handleDraw(e model.DrawEvent) error {
	if err := d.store.Draw(e.Who, e.Tile); err != nil {
		return err
	}
	d.presenter.TileDrawn(e.Who, e.Tile)
	if e.Tile != nil && e.Who == d.store.Seat() {
		d.presenter.HandChanged(d.store.Hand(), d.store.LastDrawn())
	}
	return nil
}

func (d *Dispatcher) handleDiscard(e model.DiscardEvent) error {
	err := d.store.Discard(e)
	d.presenter.TileDiscarded(e.Who, e.Tile, e.IsRiichi)
	if e.Who == d.store.Seat() {
		d.presenter.HandChanged(d.store.Hand(), nil)
	}
	return err
}

func (d *Dispatcher) handleCall(e model.CallEvent) error {
	if err := d.store.ApplyCall(e); err != nil {
		return err
	}
	arrangement := meld.Reconstruct(e.Who, e.Tiles, model.CallInfo{
		Called: e.Called,
		Source: e.FromWho,
	})
	d.presenter.MeldFormed(e.Who, arrangement)
	if e.Who == d.store.Seat() {
		d.presenter.HandChanged(d.store.Hand(), nil)
	}
	return nil
}

func (d *Dispatcher) handleKan(e model.KanEvent) error {
	if e.Upgrade {
		m, err := d.store.UpgradeMeld(e.Who, e.BaseRank, e.Extra)
		if err != nil {
			return err
		}
		info := model.CallInfo{Source: m.Source, Added: m.Added}
		if m.Called != nil {
			info.Called = *m.Called
		}
		d.presenter.MeldFormed(e.Who, meld.Reconstruct(e.Who, m.Tiles, info))
		if e.Who == d.store.Seat() {
			d.presenter.HandChanged(d.store.Hand(), nil)
		}
		return nil
	}
	if e.KanType == model.KanAdded {
		// The upgrade itself arrives as the paired addkan event.
		return nil
	}

	if err := d.store.ApplyKan(e); err != nil {
		return err
	}
	base := model.Tile(e.BaseRank * 4)
	tiles := []model.Tile{base, base + 1, base + 2, base + 3}
	info := model.CallInfo{Source: e.Who}
	if e.FromWho != e.Who {
		info = model.CallInfo{Called: e.Called, Source: e.FromWho}
	}
	d.presenter.MeldFormed(e.Who, meld.Reconstruct(e.Who, tiles, info))
	if e.Who == d.store.Seat() {
		d.presenter.HandChanged(d.store.Hand(), nil)
	}
	return nil
}

func (d *Dispatcher) handleRiichi(e model.RiichiEvent) error {
	if e.Step == 1 {
		if err := d.store.DeclareRiichi(e.Who); err != nil {
			return err
		}
		d.presenter.RiichiDeclared(e.Who, e.Double)
		return nil
	}
	if err := d.store.ConfirmRiichi(e.Who); err != nil {
		return err
	}
	d.presenter.ScoresChanged(d.scores(), d.store.RiichiSticks())
	return nil
}

func (d *Dispatcher) handleAgari(e model.AgariEvent) error {
	for _, win := range e.Wins {
		tiles, _ := model.RemoveTile(append([]model.Tile(nil), win.Hai...), win.Machi)
		model.SortTiles(tiles)
		if win.Who == win.FromWho {
			// Only a tsumo lays the winning tile with the hand; a claimed
			// discard stays out of the line.
			tiles = append(tiles, win.Machi)
		}
		d.presenter.WinDeclared(presentation.WinView{
			Who:         win.Who,
			Tsumo:       win.Who == win.FromWho,
			Tiles:       tiles,
			WinningTile: win.Machi,
			YakuList:    win.YakuList,
			Han:         win.Han,
			Fu:          win.Fu,
			Score:       win.Score,
		})
	}
	return nil
}

func (d *Dispatcher) handleRyuukyoku(e model.RyuukyokuEvent) error {
	view := presentation.DrawnRoundView{
		Reason:        e.Why,
		RevealedHands: make(map[model.Seat][]model.Tile),
	}
	switch e.Why {
	case model.RyuukyokuRon3:
		for _, res := range e.Results {
			view.RevealedHands[res.Who] = sortedCopy(res.Hai)
		}
	case model.RyuukyokuYao9:
		if e.Who != nil {
			view.RevealedHands[*e.Who] = sortedCopy(e.Hai)
		}
	case model.RyuukyokuYamaEnd:
		for key, state := range e.MachiState {
			if len(key) != 1 || key[0] < '0' || key[0] > '3' || len(state) == 0 {
				continue
			}
			view.RevealedHands[model.Seat(key[0]-'0')] = sortedCopy(state[0])
		}
		view.ClosedCounts = make(map[model.Seat]int)
		for i := 0; i < 4; i++ {
			seat := model.Seat(i)
			if _, waiting := view.RevealedHands[seat]; waiting || seat == d.store.Seat() {
				continue
			}
			if a, err := d.store.Agent(seat); err == nil {
				view.ClosedCounts[seat] = a.TileCount
			}
		}
	}
	d.presenter.RoundDrawn(view)
	return nil
}

func (d *Dispatcher) handleSettlement(e model.SettlementEvent) error {
	d.store.ApplySettlement(e.Score)
	d.presenter.SettlementShown(presentation.SettlementView{
		Win:     e.IsWin(),
		Deltas:  e.Score,
		Scores:  d.scores(),
		UraDora: e.UraDora,
	})
	if d.replay || d.store.Observing() {
		return nil
	}
	return d.sender.Send(model.ReadyAction{})
}

func (d *Dispatcher) handleSelectTile(ctx context.Context, e model.SelectTileEvent) error {
	if d.replay || d.store.Observing() {
		return nil
	}
	d.store.SetPhase(model.PhaseAwaitingDiscard)
	defer d.store.SetPhase(model.PhaseRoundActive)

	if e.Riichi {
		// Locked hand: the fresh draw goes straight back out after a pause.
		if err := d.clock.Sleep(ctx, d.autoDiscardDelay); err != nil {
			return err
		}
		return d.sendDiscard(d.riichiLockedTile(), e.IsRiichiTile)
	}

	prompt := presentation.DiscardPrompt{
		BannedRanks:   e.Banned,
		Drawn:         e.Tsumo,
		DeclareRiichi: e.IsRiichiTile,
	}
	if !e.Tiles.All {
		prompt.Allowed = e.Tiles.Tiles
	}

	for attempt := 0; ; attempt++ {
		d.presenter.PromptDiscard(prompt)
		tile, err := d.tilePicks.Await(ctx)
		if err != nil {
			return err
		}
		pickErr := d.validatePick(tile, e)
		if pickErr == nil {
			return d.sendDiscard(tile, e.IsRiichiTile)
		}
		if attempt+1 >= d.maxPromptRetries {
			fallback := d.fallbackTile(e)
			d.logger.Warn("prompt retries exhausted, discarding fallback",
				slog.Int("tile", int(fallback)),
			)
			return d.sendDiscard(fallback, e.IsRiichiTile)
		}
		d.logger.Warn("rejecting picked tile",
			slog.Int("tile", int(tile)),
			slog.String("reason", pickErr.Error()),
		)
	}
}

// sendDiscard pushes our discard out and applies it to the store in the same
// step. The server relays discards to everyone except their author, so no
// echoed event will do this for us.
func (d *Dispatcher) sendDiscard(tile model.Tile, declaresRiichi bool) error {
	if err := d.sender.Send(model.DiscardAction{Tile: tile}); err != nil {
		return err
	}
	seat := d.store.Seat()
	if err := d.store.Discard(model.DiscardEvent{
		Who:      seat,
		Tile:     tile,
		IsRiichi: declaresRiichi,
	}); err != nil {
		return err
	}
	d.presenter.TileDiscarded(seat, tile, declaresRiichi)
	d.presenter.HandChanged(d.store.Hand(), nil)
	return nil
}

func (d *Dispatcher) validatePick(tile model.Tile, e model.SelectTileEvent) error {
	if !model.ContainsTile(d.store.Hand(), tile) {
		return fmt.Errorf("%w: %s", model.ErrTileNotInHand, tile)
	}
	if !e.Tiles.All && !model.ContainsTile(e.Tiles.Tiles, tile) {
		return fmt.Errorf("%w: %s", model.ErrTileNotAllowed, tile)
	}
	for _, rank := range e.Banned {
		if tile.Rank() == rank {
			return fmt.Errorf("%w: %s", model.ErrTileBanned, tile)
		}
	}
	return nil
}

// riichiLockedTile is the forced discard while riichi-locked: the most recent
// draw, which the sorted hand no longer identifies on its own.
func (d *Dispatcher) riichiLockedTile() model.Tile {
	if t := d.store.LastDrawn(); t != nil {
		return *t
	}
	hand := d.store.Hand()
	return hand[len(hand)-1]
}

func (d *Dispatcher) fallbackTile(e model.SelectTileEvent) model.Tile {
	candidates := d.store.Hand()
	if !e.Tiles.All {
		candidates = e.Tiles.Tiles
	}
	for _, t := range candidates {
		banned := false
		for _, rank := range e.Banned {
			if t.Rank() == rank {
				banned = true
				break
			}
		}
		if !banned {
			return t
		}
	}
	return candidates[len(candidates)-1]
}

func (d *Dispatcher) handleDecision(ctx context.Context, e model.DecisionEvent) error {
	if d.replay || d.store.Observing() || len(e.Actions) == 0 {
		return nil
	}
	d.store.SetPhase(model.PhaseAwaitingDecision)
	defer d.store.SetPhase(model.PhaseRoundActive)

	for attempt := 0; ; attempt++ {
		d.presenter.PromptDecision(e.Actions)
		index, err := d.choices.Await(ctx)
		if err != nil {
			return err
		}
		if index >= 0 && index < len(e.Actions) {
			return d.sender.Send(model.DecisionAction{Choice: e.Actions[index].Raw})
		}
		if attempt+1 >= d.maxPromptRetries {
			// The pass option always leads the list; declining is the one
			// answer that is always legal.
			d.logger.Warn("prompt retries exhausted, passing")
			return d.sender.Send(model.DecisionAction{Choice: e.Actions[0].Raw})
		}
		d.logger.Warn("rejecting decision index", slog.Int("index", index))
	}
}

func (d *Dispatcher) handleScore(e model.ScoreEvent) error {
	var usernames [4]string
	for i := range usernames {
		a, err := d.store.Agent(model.Seat(i))
		if err != nil {
			return err
		}
		usernames[i] = a.Username
	}
	d.store.SetPhase(model.PhaseFinal)
	d.presenter.FinalRanking(e.Ranking, usernames)
	return nil
}

func (d *Dispatcher) scores() [4]int {
	var out [4]int
	for i := range out {
		if a, err := d.store.Agent(model.Seat(i)); err == nil {
			out[i] = a.Score
		}
	}
	return out
}

func sortedCopy(tiles []model.Tile) []model.Tile {
	out := append([]model.Tile(nil), tiles...)
	model.SortTiles(out)
	return out
}
