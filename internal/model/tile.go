package model

import (
	"fmt"
	"sort"
)

// Tile identifies one of the 136 physical tiles (0-135). Four copies of each
// of the 34 tile kinds exist; dividing by four collapses a tile to its kind.
type Tile int

// Rank returns the tile kind (0-33), ignoring which of the four copies it is.
func (t Tile) Rank() int {
	return int(t) / 4
}

var honorNames = [...]string{"E", "S", "W", "N", "Wh", "G", "R"}

// String renders the tile kind in conventional notation: 1m-9m, 1p-9p,
// 1s-9s, then the winds and dragons.
func (t Tile) String() string {
	rank := t.Rank()
	switch {
	case rank < 0 || rank > 33:
		return fmt.Sprintf("?%d", int(t))
	case rank < 9:
		return fmt.Sprintf("%dm", rank+1)
	case rank < 18:
		return fmt.Sprintf("%dp", rank-8)
	case rank < 27:
		return fmt.Sprintf("%ds", rank-17)
	default:
		return honorNames[rank-27]
	}
}

// SortTiles sorts tiles ascending in place.
func SortTiles(tiles []Tile) {
	sort.Slice(tiles, func(i, j int) bool { return tiles[i] < tiles[j] })
}

// RemoveTile removes the first occurrence of tile and reports whether it was
// present.
func RemoveTile(tiles []Tile, tile Tile) ([]Tile, bool) {
	for i, t := range tiles {
		if t == tile {
			return append(tiles[:i], tiles[i+1:]...), true
		}
	}
	return tiles, false
}

// ContainsTile reports whether tile is present.
func ContainsTile(tiles []Tile, tile Tile) bool {
	for _, t := range tiles {
		if t == tile {
			return true
		}
	}
	return false
}
