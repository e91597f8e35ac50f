package model

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type TileSuite struct {
	suite.Suite
}

func TestTileSuite(t *testing.T) {
	suite.Run(t, new(TileSuite))
}

func (s *TileSuite) TestRankCollapsesCopies() {
	s.Equal(0, Tile(0).Rank())
	s.Equal(0, Tile(3).Rank())
	s.Equal(1, Tile(4).Rank())
	s.Equal(33, Tile(135).Rank())
}

func (s *TileSuite) TestString() {
	s.Equal("1m", Tile(0).String())
	s.Equal("9m", Tile(32).String())
	s.Equal("1p", Tile(36).String())
	s.Equal("9s", Tile(104).String())
	s.Equal("E", Tile(108).String())
	s.Equal("R", Tile(135).String())
	s.Equal("?150", Tile(150).String())
}

func (s *TileSuite) TestRemoveTileTakesFirstOccurrence() {
	tiles := []Tile{4, 8, 8, 12}
	rest, found := RemoveTile(tiles, 8)
	s.True(found)
	s.Equal([]Tile{4, 8, 12}, rest)

	_, found = RemoveTile(rest, 99)
	s.False(found)
}

func (s *TileSuite) TestRelativePositions() {
	s.Equal(PositionSelf, Relative(2, 2))
	s.Equal(PositionRight, Relative(2, 3))
	s.Equal(PositionAcross, Relative(2, 0))
	s.Equal(PositionLeft, Relative(2, 1))
}
