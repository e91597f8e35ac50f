// Package session holds the authoritative client-side mirror of a game in
// progress. The store is owned by the event dispatcher and mutated only from
// its goroutine; accessors hand out copies so presenters and the debug API
// can read without racing.
package session

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tsumogiri/riichi-client/internal/model"
)

// Update keys the server is known to patch mid-round.
const (
	UpdateFuriten       = "furiten"
	UpdateWallRemaining = "left_num"
	UpdateDora          = "dora_indicator"
	UpdateMachi         = "machi"
)

// Store mirrors round and per-seat state from the event stream.
type Store struct {
	logger *slog.Logger

	username  string
	seat      model.Seat
	observing bool
	phase     model.Phase

	round        int
	honba        int
	riichiSticks int
	dora         []model.Tile
	wall         int

	hand      []model.Tile
	lastDrawn *model.Tile
	furiten   bool
	machi     []model.Tile
	furoCount int

	agents [4]*model.Agent
}

// New creates an empty store in the connecting phase.
func New(logger *slog.Logger) *Store {
	s := &Store{
		logger: logger.With(slog.String("component", "session-store")),
		phase:  model.PhaseConnecting,
	}
	for i := range s.agents {
		s.agents[i] = model.NewAgent()
	}
	return s
}

func (s *Store) Phase() model.Phase       { return s.phase }
func (s *Store) SetPhase(p model.Phase)   { s.phase = p }
func (s *Store) Username() string         { return s.username }
func (s *Store) Seat() model.Seat         { return s.seat }
func (s *Store) Observing() bool          { return s.observing }
func (s *Store) Round() int               { return s.round }
func (s *Store) Honba() int               { return s.honba }
func (s *Store) RiichiSticks() int        { return s.riichiSticks }
func (s *Store) WallRemaining() int       { return s.wall }
func (s *Store) Furiten() bool            { return s.furiten }
func (s *Store) FuroCount() int           { return s.furoCount }
func (s *Store) LastDrawn() *model.Tile   { return s.lastDrawn }
func (s *Store) DoraIndicators() []model.Tile {
	return append([]model.Tile(nil), s.dora...)
}
func (s *Store) Machi() []model.Tile {
	return append([]model.Tile(nil), s.machi...)
}

// DealerSeat is derived from the round counter, never stored.
func (s *Store) DealerSeat() model.Seat {
	return model.Seat(s.round % 4)
}

// SetIdentity records who this client is at the table.
func (s *Store) SetIdentity(username string, observing bool) {
	s.username = username
	s.observing = observing
}

// Hand returns a copy of the viewing seat's concealed tiles, sorted.
func (s *Store) Hand() []model.Tile {
	return append([]model.Tile(nil), s.hand...)
}

// Agent returns the live record for a seat. The pointer is owned by the
// store; callers outside the dispatcher goroutine must not retain it.
func (s *Store) Agent(seat model.Seat) (*model.Agent, error) {
	if seat < 0 || int(seat) >= len(s.agents) {
		return nil, fmt.Errorf("%w: %d", model.ErrNoSuchSeat, seat)
	}
	return s.agents[seat], nil
}

// StartRound resets all per-round state and loads the snapshot from a start
// event. Melds already on the table (a reconnecting or observing client) are
// rebuilt from the furo and kui_info pairs.
func (s *Store) StartRound(game model.GameInfo, self model.SelfInfo) {
	s.round = game.Round
	s.honba = game.Honba
	s.riichiSticks = game.RiichiSticks
	s.dora = append([]model.Tile(nil), game.DoraIndicators...)
	s.wall = game.WallRemaining

	s.seat = self.Seat
	s.hand = append([]model.Tile(nil), self.Tiles...)
	model.SortTiles(s.hand)
	s.lastDrawn = nil
	s.furiten = false
	s.machi = append([]model.Tile(nil), self.Machi...)
	s.furoCount = self.FuroCount

	for i := range s.agents {
		s.agents[i] = model.NewAgent()
	}
	for i, info := range game.Agents {
		if i >= len(s.agents) {
			break
		}
		a := s.agents[i]
		a.Username = info.Username
		a.Score = info.Score
		a.TileCount = info.TileCount
		a.Discards = append([]model.Tile(nil), info.Discards...)
		a.IsAutomated = info.IsAI
		if info.Riichi != 0 {
			a.RiichiDeclared = true
			a.RiichiIndex = info.RiichiRound - 1
		}
		s.rebuildMelds(model.Seat(i), info.Furo, info.KuiInfo)
	}

	s.phase = model.PhaseRoundActive
}

// rebuildMelds reconstructs a seat's meld records from a snapshot. Furo
// entries pair positionally with kui_info.
func (s *Store) rebuildMelds(owner model.Seat, furo model.FuroList, kuiInfo [][]int) {
	a := s.agents[owner]
	for i, entry := range furo {
		var kui []int
		if i < len(kuiInfo) {
			kui = kuiInfo[i]
		}
		key, kind, ok := meldKeyFromWire(entry, kui)
		if !ok {
			s.logger.Warn("skipping unparseable furo key", slog.String("key", entry.Key))
			continue
		}

		m := &model.Meld{
			Kind:   kind,
			Owner:  owner,
			Source: owner,
			Tiles:  append([]model.Tile(nil), entry.Tiles...),
		}
		info := model.CallInfo{Source: owner}
		switch kind {
		case model.MeldConcealedKan:
			// kui_info carries a null placeholder here; nothing was called
			// and the source stays the owner.
		case model.MeldAddedKan:
			// An upgraded triplet's kui entry is (added, called, source).
			added := model.Tile(kui[0])
			called := model.Tile(kui[1])
			source := model.Seat(kui[2])
			info = model.CallInfo{Called: called, Source: source, Added: &added}
			m.Source = source
			m.Called = &called
			m.Added = &added
		default:
			if len(kui) >= 2 {
				called := model.Tile(kui[0])
				source := model.Seat(kui[1])
				info.Called = called
				info.Source = source
				m.Source = source
				m.Called = &called
			}
		}

		a.Melds[key] = m
		a.MeldOrder = append(a.MeldOrder, key)
		a.CallOrder = append(a.CallOrder, info)
	}
}

// meldKeyFromWire maps a snapshot furo key into the store's keying scheme.
// Snapshot keys number the kinds 0 chi, 1 pon, 2 concealed kan, 3 open kan;
// an upgraded triplet reuses the open-kan key and is told apart by its
// three-part kui entry.
func meldKeyFromWire(entry model.FuroEntry, kui []int) (model.MeldKey, model.MeldKind, bool) {
	ints := entry.KeyInts()
	if len(ints) < 2 {
		return model.MeldKey{}, 0, false
	}
	switch ints[0] {
	case 0:
		ordinal := 0
		if len(ints) >= 3 {
			ordinal = ints[2]
		}
		return model.SequenceKey(model.Tile(ints[1]), ordinal), model.MeldSequence, true
	case 1:
		return model.TripletKey(ints[1]), model.MeldTriplet, true
	case 2:
		return model.KanKey(model.MeldConcealedKan, ints[1]), model.MeldConcealedKan, true
	case 3:
		kind := model.MeldOpenKan
		if len(kui) >= 3 {
			kind = model.MeldAddedKan
		}
		return model.KanKey(kind, ints[1]), kind, true
	default:
		return model.MeldKey{}, 0, false
	}
}

// SetHand replaces the concealed hand wholesale, keeping it sorted.
func (s *Store) SetHand(tiles []model.Tile) {
	s.hand = append([]model.Tile(nil), tiles...)
	model.SortTiles(s.hand)
	s.lastDrawn = nil
}

// Draw applies a draw event. The drawn tile joins the sorted hand when
// visible; it is also remembered separately as the most recent draw, which
// sorting would otherwise lose.
func (s *Store) Draw(who model.Seat, tile *model.Tile) error {
	a, err := s.Agent(who)
	if err != nil {
		return err
	}
	a.TileCount++
	if s.wall > 0 {
		s.wall--
	}
	if tile != nil && who == s.seat {
		t := *tile
		s.hand = append(s.hand, t)
		model.SortTiles(s.hand)
		s.lastDrawn = &t
	}
	return nil
}

// Discard applies a discard event: the tile joins the discarder's pile, and
// leaves the viewing seat's hand when it is ours.
func (s *Store) Discard(e model.DiscardEvent) error {
	a, err := s.Agent(e.Who)
	if err != nil {
		return err
	}
	a.Discards = append(a.Discards, e.Tile)
	a.TileCount--
	if e.IsRiichi {
		a.RiichiIndex = len(a.Discards) - 1
	}

	if e.Who == s.seat && len(s.hand) > 0 {
		rest, found := model.RemoveTile(s.hand, e.Tile)
		if !found {
			return fmt.Errorf("%w: %d", model.ErrTileNotInHand, e.Tile)
		}
		s.hand = rest
	}
	s.lastDrawn = nil
	return nil
}

// ApplyCall records a chi or pon: the meld is stored under its key, the
// called tile is lifted off the source's discard pile, and the owner's
// concealed tiles shrink accordingly.
func (s *Store) ApplyCall(e model.CallEvent) error {
	a, err := s.Agent(e.Who)
	if err != nil {
		return err
	}
	src, err := s.Agent(e.FromWho)
	if err != nil {
		return err
	}

	tiles := append([]model.Tile(nil), e.Tiles...)
	model.SortTiles(tiles)

	var key model.MeldKey
	var kind model.MeldKind
	if e.Call == model.EventChi {
		kind = model.MeldSequence
		ordinal := 0
		for {
			key = model.SequenceKey(tiles[0], ordinal)
			if _, taken := a.Melds[key]; !taken {
				break
			}
			ordinal++
		}
	} else {
		kind = model.MeldTriplet
		key = model.TripletKey(e.Called.Rank())
	}

	called := e.Called
	a.Melds[key] = &model.Meld{
		Kind:   kind,
		Owner:  e.Who,
		Source: e.FromWho,
		Called: &called,
		Tiles:  tiles,
	}
	a.MeldOrder = append(a.MeldOrder, key)
	a.CallOrder = append(a.CallOrder, model.CallInfo{Called: called, Source: e.FromWho})

	a.TileCount -= 2
	if n := len(src.Discards); n > 0 {
		src.Discards = src.Discards[:n-1]
	}
	if e.Who == s.seat {
		s.removeFromHand(tiles, called)
		s.furoCount++
	}
	s.lastDrawn = nil
	return nil
}

// ApplyKan records an open or concealed kan. The wire's kan subtype field is
// unreliable for telling the two apart, so the source seat decides: a kan
// from the owner's own seat is concealed. An added-kan subtype here is a
// no-op; the paired addkan event carries the upgrade.
func (s *Store) ApplyKan(e model.KanEvent) error {
	if e.KanType == model.KanAdded {
		return nil
	}
	a, err := s.Agent(e.Who)
	if err != nil {
		return err
	}

	base := model.Tile(e.BaseRank * 4)
	tiles := []model.Tile{base, base + 1, base + 2, base + 3}

	if e.FromWho == e.Who {
		key := model.KanKey(model.MeldConcealedKan, e.BaseRank)
		a.Melds[key] = &model.Meld{
			Kind:   model.MeldConcealedKan,
			Owner:  e.Who,
			Source: e.Who,
			Tiles:  tiles,
		}
		a.MeldOrder = append(a.MeldOrder, key)
		a.CallOrder = append(a.CallOrder, model.CallInfo{Source: e.Who})
		a.TileCount -= 4
		if e.Who == s.seat {
			s.removeFromHand(tiles, -1)
			s.furoCount++
		}
		s.lastDrawn = nil
		return nil
	}

	src, err := s.Agent(e.FromWho)
	if err != nil {
		return err
	}
	called := e.Called
	key := model.KanKey(model.MeldOpenKan, e.BaseRank)
	a.Melds[key] = &model.Meld{
		Kind:   model.MeldOpenKan,
		Owner:  e.Who,
		Source: e.FromWho,
		Called: &called,
		Tiles:  tiles,
	}
	a.MeldOrder = append(a.MeldOrder, key)
	a.CallOrder = append(a.CallOrder, model.CallInfo{Called: called, Source: e.FromWho})
	a.TileCount -= 3
	if n := len(src.Discards); n > 0 {
		src.Discards = src.Discards[:n-1]
	}
	if e.Who == s.seat {
		s.removeFromHand(tiles, called)
		s.furoCount++
	}
	s.lastDrawn = nil
	return nil
}

// UpgradeMeld applies an addkan event: the prior triplet with the same base
// rank becomes an added kan in place. Missing triplet means the event and
// our record have diverged; the caller decides how loudly to complain.
func (s *Store) UpgradeMeld(who model.Seat, baseRank int, added model.Tile) (*model.Meld, error) {
	a, err := s.Agent(who)
	if err != nil {
		return nil, err
	}
	key := model.TripletKey(baseRank)
	m, ok := a.Melds[key]
	if !ok {
		return nil, fmt.Errorf("%w: no triplet of rank %d for seat %d", model.ErrMeldNotFound, baseRank, who)
	}

	delete(a.Melds, key)
	m.Kind = model.MeldAddedKan
	m.Added = &added
	m.Tiles = append(m.Tiles, added)
	newKey := model.KanKey(model.MeldAddedKan, baseRank)
	a.Melds[newKey] = m

	for i := range a.MeldOrder {
		if a.MeldOrder[i] == key {
			a.MeldOrder[i] = newKey
			if i < len(a.CallOrder) {
				a.CallOrder[i].Added = &added
			}
			break
		}
	}

	a.TileCount--
	if who == s.seat {
		if rest, found := model.RemoveTile(s.hand, added); found {
			s.hand = rest
		}
	}
	s.lastDrawn = nil
	return m, nil
}

// DeclareRiichi marks riichi step 1: the declaration itself. The stick and
// the payment follow in step 2 once the discard passes uncalled.
func (s *Store) DeclareRiichi(who model.Seat) error {
	a, err := s.Agent(who)
	if err != nil {
		return err
	}
	a.RiichiDeclared = true
	a.RiichiIndex = len(a.Discards)
	return nil
}

// ConfirmRiichi applies riichi step 2: the declarer pays a stick.
func (s *Store) ConfirmRiichi(who model.Seat) error {
	a, err := s.Agent(who)
	if err != nil {
		return err
	}
	a.Score -= 10
	s.riichiSticks++
	return nil
}

// ApplyUpdate patches one field from a generic update event and returns the
// key so the caller knows what changed. Unknown keys are rejected.
func (s *Store) ApplyUpdate(key string, value json.RawMessage) (string, error) {
	switch key {
	case UpdateFuriten:
		if err := json.Unmarshal(value, &s.furiten); err != nil {
			return "", fmt.Errorf("%w: %s: %v", model.ErrMalformedEvent, key, err)
		}
	case UpdateWallRemaining:
		if err := json.Unmarshal(value, &s.wall); err != nil {
			return "", fmt.Errorf("%w: %s: %v", model.ErrMalformedEvent, key, err)
		}
	case UpdateDora:
		var dora []model.Tile
		if err := json.Unmarshal(value, &dora); err != nil {
			return "", fmt.Errorf("%w: %s: %v", model.ErrMalformedEvent, key, err)
		}
		s.dora = dora
	case UpdateMachi:
		var machi []model.Tile
		if err := json.Unmarshal(value, &machi); err != nil {
			return "", fmt.Errorf("%w: %s: %v", model.ErrMalformedEvent, key, err)
		}
		s.machi = machi
	default:
		return "", fmt.Errorf("%w: %q", model.ErrUnknownUpdateKey, key)
	}
	return key, nil
}

// ApplySettlement moves the settlement's score deltas onto the seats and
// clears the riichi stick pool, which the winner has collected.
func (s *Store) ApplySettlement(deltas []int) {
	for i, d := range deltas {
		if i >= len(s.agents) {
			break
		}
		s.agents[i].Score += d
	}
	s.riichiSticks = 0
	s.phase = model.PhaseSettlement
}

// removeFromHand drops the meld tiles from the concealed hand, skipping the
// called tile, which never was in the hand. Pass called = -1 to remove all.
func (s *Store) removeFromHand(tiles []model.Tile, called model.Tile) {
	for _, t := range tiles {
		if t == called {
			continue
		}
		if rest, found := model.RemoveTile(s.hand, t); found {
			s.hand = rest
		}
	}
}

// Arrangements returns the seat's melds in call order as display
// arrangements, rebuilt on demand.
func (s *Store) Arrangements(seat model.Seat, reconstruct func(model.Seat, []model.Tile, model.CallInfo) model.Arrangement) ([]model.Arrangement, error) {
	a, err := s.Agent(seat)
	if err != nil {
		return nil, err
	}
	out := make([]model.Arrangement, 0, len(a.MeldOrder))
	for _, key := range a.MeldOrder {
		m, ok := a.Melds[key]
		if !ok {
			continue
		}
		info := model.CallInfo{Source: m.Source, Added: m.Added}
		if m.Called != nil {
			info.Called = *m.Called
		}
		out = append(out, reconstruct(seat, m.Tiles, info))
	}
	return out, nil
}
