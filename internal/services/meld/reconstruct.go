// Package meld rebuilds canonical display arrangements from the minimal
// seat-dependent call information the wire carries. The slot holding the
// called tile encodes which neighbour supplied it: left → first slot,
// across → middle, right → last. All of that knowledge lives here; presenters
// just lay the arrangement out.
package meld

import (
	"github.com/tsumogiri/riichi-client/internal/model"
)

// Reconstruct derives the ordered arrangement for one meld from its owner,
// its constituent tiles (any order) and the call info. It is deterministic
// and leaves its inputs untouched.
func Reconstruct(owner model.Seat, tiles []model.Tile, call model.CallInfo) model.Arrangement {
	sorted := make([]model.Tile, len(tiles))
	copy(sorted, tiles)
	model.SortTiles(sorted)

	if call.Added != nil {
		return reconstructAddedKan(owner, sorted, call)
	}
	if call.Source == owner {
		return reconstructConcealedKan(sorted)
	}
	return reconstructOpenCall(owner, sorted, call)
}

// reconstructAddedKan lays out the three-tile base with the originally called
// tile back in its seat-encoding slot; the upgrade tile is stacked on that
// slot rather than laid in line.
func reconstructAddedKan(owner model.Seat, sorted []model.Tile, call model.CallInfo) model.Arrangement {
	base, _ := model.RemoveTile(sorted, call.Called)
	base, _ = model.RemoveTile(base, *call.Added)

	pos := calledSlot(owner, call.Source, len(base))
	added := *call.Added
	return model.Arrangement{
		Tiles:       insertAt(base, pos, call.Called),
		CalledIndex: pos,
		Extra:       &added,
	}
}

// reconstructConcealedKan shows the lowest tile face up between two face-down
// tiles, with its partner copy stacked on the middle slot. Nothing was
// called, but the reference slot is fixed at 1 so presenters treat it like
// any other arrangement.
func reconstructConcealedKan(sorted []model.Tile) model.Arrangement {
	low := sorted[0]
	partner := sorted[1]
	return model.Arrangement{
		Tiles:       []model.Tile{sorted[2], low, sorted[3]},
		CalledIndex: 1,
		Extra:       &partner,
		Concealed:   []bool{true, false, true},
	}
}

// reconstructOpenCall covers chi, pon and open kan: remove the called tile
// from the sorted run and reinsert it at the slot encoding its source seat.
// An open kan keeps only three tiles in line; the first leftover is set aside
// as a stacked extra.
func reconstructOpenCall(owner model.Seat, sorted []model.Tile, call model.CallInfo) model.Arrangement {
	rest, _ := model.RemoveTile(sorted, call.Called)

	var extra *model.Tile
	if len(rest) == 3 {
		e := rest[0]
		extra = &e
		rest = rest[1:]
	}

	pos := calledSlot(owner, call.Source, len(rest))
	return model.Arrangement{
		Tiles:       insertAt(rest, pos, call.Called),
		CalledIndex: pos,
		Extra:       extra,
	}
}

// calledSlot maps the source seat into a display slot: (3 − rel) mod 4,
// clamped to the line length for safety against malformed call info.
func calledSlot(owner, source model.Seat, lineLen int) int {
	pos := (3 - int(model.Relative(owner, source))) % 4
	if pos > lineLen {
		pos = lineLen
	}
	return pos
}

func insertAt(tiles []model.Tile, pos int, tile model.Tile) []model.Tile {
	out := make([]model.Tile, 0, len(tiles)+1)
	out = append(out, tiles[:pos]...)
	out = append(out, tile)
	out = append(out, tiles[pos:]...)
	return out
}
