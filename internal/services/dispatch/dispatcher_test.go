package dispatch

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/tsumogiri/riichi-client/internal/dependencies/mocks"
	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/presentation"
	"github.com/tsumogiri/riichi-client/internal/services/session"
	"github.com/tsumogiri/riichi-client/internal/testutil"
)

// recordingSender captures every outbound action.
type recordingSender struct {
	actions []model.Action
}

func (r *recordingSender) Send(a model.Action) error {
	r.actions = append(r.actions, a)
	return nil
}

// recordingPresenter counts prompts and remembers the calls the tests care
// about.
type recordingPresenter struct {
	presentation.Nop

	discardPrompts  int
	decisionPrompts int
	settlements     []presentation.SettlementView
	wins            []presentation.WinView
	drawnRounds     []presentation.DrawnRoundView
	notices         []string
	sessionEnded    bool
}

func (r *recordingPresenter) PromptDiscard(presentation.DiscardPrompt) { r.discardPrompts++ }

func (r *recordingPresenter) PromptDecision([]model.DecisionOption) { r.decisionPrompts++ }

func (r *recordingPresenter) SettlementShown(v presentation.SettlementView) {
	r.settlements = append(r.settlements, v)
}
func (r *recordingPresenter) WinDeclared(v presentation.WinView) { r.wins = append(r.wins, v) }
func (r *recordingPresenter) RoundDrawn(v presentation.DrawnRoundView) {
	r.drawnRounds = append(r.drawnRounds, v)
}
func (r *recordingPresenter) Notice(msg string) { r.notices = append(r.notices, msg) }

func (r *recordingPresenter) SessionEnded() { r.sessionEnded = true }

type DispatcherSuite struct {
	suite.Suite
	store      *session.Store
	sender     *recordingSender
	presenter  *recordingPresenter
	clock      *mocks.MockClock
	dispatcher *Dispatcher
}

func TestDispatcherSuite(t *testing.T) {
	suite.Run(t, new(DispatcherSuite))
}

func (s *DispatcherSuite) SetupTest() {
	logger := testutil.NopLogger()
	s.store = session.New(logger)
	s.store.SetIdentity("alice", false)
	s.sender = &recordingSender{}
	s.presenter = &recordingPresenter{}
	s.clock = mocks.NewMockClock(time.Unix(0, 0))
	s.dispatcher = New(logger, s.clock, s.store, s.presenter, s.sender)
}

// run feeds the events through the dispatcher and closes the stream. Every
// prompt must have its answer submitted beforehand, so the loop never blocks.
func (s *DispatcherSuite) run(events ...model.Event) error {
	ch := make(chan model.Event, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return s.dispatcher.Run(context.Background(), ch)
}

func (s *DispatcherSuite) startEvent(hand ...model.Tile) model.StartEvent {
	agents := make([]model.AgentInfo, 4)
	for i := range agents {
		agents[i] = model.AgentInfo{Username: string(rune('a' + i)), Score: 250, TileCount: 13}
	}
	return model.StartEvent{
		Game: model.GameInfo{WallRemaining: 69, Agents: agents},
		Self: model.SelfInfo{Seat: 0, Tiles: hand},
	}
}

func (s *DispatcherSuite) TestClosedStreamReturnsNotConnected() {
	err := s.run()
	s.ErrorIs(err, model.ErrNotConnected)
	s.Equal(model.PhaseTerminated, s.store.Phase())
}

func (s *DispatcherSuite) TestEndEventStopsCleanly() {
	err := s.run(s.startEvent(4, 8), model.EndEvent{})
	s.Require().NoError(err)
	s.True(s.presenter.sessionEnded)
	s.Equal(model.PhaseTerminated, s.store.Phase())
}

func (s *DispatcherSuite) TestContextCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan model.Event)
	err := s.dispatcher.Run(ctx, ch)
	s.ErrorIs(err, context.Canceled)
	s.Equal(model.PhaseTerminated, s.store.Phase())
}

func (s *DispatcherSuite) TestUnappliedEventIsSkipped() {
	// Discarding a tile we do not hold fails to apply; the loop keeps going.
	err := s.run(
		s.startEvent(4, 8),
		model.DiscardEvent{Who: 0, Tile: 99},
		model.EndEvent{},
	)
	s.Require().NoError(err)
	s.True(s.presenter.sessionEnded)
}

func (s *DispatcherSuite) TestSelectTileSendsPickedDiscard() {
	s.dispatcher.SubmitTile(8)

	err := s.run(
		s.startEvent(4, 8, 12),
		model.SelectTileEvent{Tiles: model.TileSet{All: true}},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Equal(1, s.presenter.discardPrompts)
	s.Require().Len(s.sender.actions, 1)
	s.Equal(model.DiscardAction{Tile: 8}, s.sender.actions[0])
}

func (s *DispatcherSuite) TestSelectTileAppliesOwnDiscard() {
	// The server never echoes our own discard back, so sending it must also
	// move the tile out of the hand and onto our pile.
	s.dispatcher.SubmitTile(8)

	err := s.run(
		s.startEvent(4, 8, 12),
		model.SelectTileEvent{Tiles: model.TileSet{All: true}},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Equal([]model.Tile{4, 12}, s.store.Hand())
	self, serr := s.store.Agent(0)
	s.Require().NoError(serr)
	s.Equal([]model.Tile{8}, self.Discards)
	s.Equal(12, self.TileCount)
}

func (s *DispatcherSuite) TestSelectTileRetriesThenFallsBack() {
	// Ten invalid picks exhaust the retries; the first legal tile goes out.
	for i := 0; i < 10; i++ {
		s.dispatcher.SubmitTile(99)
	}

	err := s.run(
		s.startEvent(4, 8, 12),
		model.SelectTileEvent{
			Tiles:  model.TileSet{All: true},
			Banned: []int{1}, // bans tile 4
		},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Equal(10, s.presenter.discardPrompts)
	s.Require().Len(s.sender.actions, 1)
	s.Equal(model.DiscardAction{Tile: 8}, s.sender.actions[0])
}

func (s *DispatcherSuite) TestRiichiLockedAutoDiscard() {
	drawn := model.Tile(100)
	err := s.run(
		s.startEvent(4, 8, 12),
		model.DrawEvent{Who: 0, Tile: &drawn},
		model.SelectTileEvent{Riichi: true},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Zero(s.presenter.discardPrompts, "no prompt while riichi-locked")
	s.Equal([]time.Duration{800 * time.Millisecond}, s.clock.Slept)
	s.Require().Len(s.sender.actions, 1)
	s.Equal(model.DiscardAction{Tile: drawn}, s.sender.actions[0])
	s.Equal([]model.Tile{4, 8, 12}, s.store.Hand(), "forced discard leaves the hand")
}

func (s *DispatcherSuite) TestObserverSkipsPrompts() {
	s.store.SetIdentity("alice", true)
	err := s.run(
		s.startEvent(),
		model.SelectTileEvent{Tiles: model.TileSet{All: true}},
		model.DecisionEvent{Actions: []model.DecisionOption{{Type: "pass"}}},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Zero(s.presenter.discardPrompts)
	s.Zero(s.presenter.decisionPrompts)
	s.Empty(s.sender.actions)
}

func (s *DispatcherSuite) TestDecisionEchoesChosenOption() {
	pass := model.DecisionOption{Type: "pass", Raw: json.RawMessage(`{"type":"pass"}`)}
	pon := model.DecisionOption{
		Type: "pon",
		Raw:  json.RawMessage(`{"type":"pon","who":0,"from_who":3,"pattern":[40,41,42]}`),
	}
	s.dispatcher.SubmitChoice(1)

	err := s.run(
		s.startEvent(40, 41),
		model.DecisionEvent{Actions: []model.DecisionOption{pass, pon}},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Equal(1, s.presenter.decisionPrompts)
	s.Require().Len(s.sender.actions, 1)
	s.Equal(model.DecisionAction{Choice: pon.Raw}, s.sender.actions[0])
}

func (s *DispatcherSuite) TestDecisionOutOfRangeFallsBackToPass() {
	pass := model.DecisionOption{Type: "pass", Raw: json.RawMessage(`{"type":"pass"}`)}
	chi := model.DecisionOption{Type: "chi", Raw: json.RawMessage(`{"type":"chi"}`)}
	for i := 0; i < 10; i++ {
		s.dispatcher.SubmitChoice(7)
	}

	err := s.run(
		s.startEvent(),
		model.DecisionEvent{Actions: []model.DecisionOption{pass, chi}},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Equal(10, s.presenter.decisionPrompts)
	s.Require().Len(s.sender.actions, 1)
	s.Equal(model.DecisionAction{Choice: pass.Raw}, s.sender.actions[0])
}

func (s *DispatcherSuite) TestSettlementAcknowledged() {
	err := s.run(
		s.startEvent(),
		model.SettlementEvent{
			Res:   json.RawMessage(`[{"who":0}]`),
			Score: []int{12, -4, -4, -4},
		},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Require().Len(s.presenter.settlements, 1)
	s.True(s.presenter.settlements[0].Win)
	s.Equal([]int{12, -4, -4, -4}, s.presenter.settlements[0].Deltas)
	s.Equal([4]int{262, 246, 246, 246}, s.presenter.settlements[0].Scores)
	s.Require().Len(s.sender.actions, 1)
	s.Equal(model.ReadyAction{}, s.sender.actions[0])
}

func (s *DispatcherSuite) TestAgariNormalizesWinningHand() {
	err := s.run(
		s.startEvent(),
		model.AgariEvent{Wins: []model.AgariResult{{
			Who:     2,
			FromWho: 2,
			Machi:   8,
			Hai:     []model.Tile{16, 8, 0, 12, 4},
			Han:     1,
		}}},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Require().Len(s.presenter.wins, 1)
	win := s.presenter.wins[0]
	s.True(win.Tsumo)
	s.Equal([]model.Tile{0, 4, 12, 16, 8}, win.Tiles, "winning tile moves to the end")
	s.Equal(model.Tile(8), win.WinningTile)
}

func (s *DispatcherSuite) TestAgariRonKeepsClaimedTileOutOfHand() {
	err := s.run(
		s.startEvent(),
		model.AgariEvent{Wins: []model.AgariResult{{
			Who:     2,
			FromWho: 3,
			Machi:   8,
			Hai:     []model.Tile{16, 0, 12, 4},
			Han:     2,
		}}},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Require().Len(s.presenter.wins, 1)
	win := s.presenter.wins[0]
	s.False(win.Tsumo)
	s.Equal([]model.Tile{0, 4, 12, 16}, win.Tiles, "claimed tile stays out of the line")
	s.Equal(model.Tile(8), win.WinningTile)
}

func (s *DispatcherSuite) TestRyuukyokuExhaustiveRevealsTenpaiHands() {
	err := s.run(
		s.startEvent(),
		model.RyuukyokuEvent{
			Why: model.RyuukyokuYamaEnd,
			MachiState: map[string][][]model.Tile{
				"2": {{24, 16, 20}, {28}},
				"9": {{0}},
			},
		},
	)
	s.ErrorIs(err, model.ErrNotConnected)

	s.Require().Len(s.presenter.drawnRounds, 1)
	view := s.presenter.drawnRounds[0]
	s.Equal(model.RyuukyokuYamaEnd, view.Reason)
	s.Equal([]model.Tile{16, 20, 24}, view.RevealedHands[2])
	s.NotContains(view.RevealedHands, model.Seat(9))
	s.Equal(map[model.Seat]int{1: 13, 3: 13}, view.ClosedCounts, "non-waiting seats keep closed counts")
	s.NotContains(view.ClosedCounts, model.Seat(0), "own hand is already visible")
}

func (s *DispatcherSuite) TestReplayDispatcherSendsNothing() {
	logger := testutil.NopLogger()
	replayStore := session.New(logger)
	replayStore.SetIdentity("alice", true)
	d := NewReplay(logger, s.clock, replayStore, s.presenter)

	ch := make(chan model.Event, 3)
	ch <- s.startEvent(4, 8)
	ch <- model.SelectTileEvent{Tiles: model.TileSet{All: true}}
	ch <- model.SettlementEvent{Res: json.RawMessage(`{}`), Score: []int{0, 0, 0, 0}}
	close(ch)

	err := d.Run(context.Background(), ch)
	s.ErrorIs(err, model.ErrNotConnected)
	s.Zero(s.presenter.discardPrompts)
	s.Len(s.presenter.settlements, 1)
}
