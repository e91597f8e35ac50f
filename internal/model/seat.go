package model

// Seat is an absolute table position, 0-3. Turn order proceeds 0→1→2→3→0.
type Seat int

// RelativePosition classifies another seat from a viewer's perspective.
type RelativePosition int

const (
	PositionSelf   RelativePosition = 0
	PositionRight  RelativePosition = 1
	PositionAcross RelativePosition = 2
	PositionLeft   RelativePosition = 3
)

// Relative maps an absolute seat into the viewer's frame of reference:
// (other − self) mod 4, normalized into [0,3].
func Relative(self, other Seat) RelativePosition {
	return RelativePosition(((other-self)%4 + 4) % 4)
}
