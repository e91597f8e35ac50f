package model

// MeldKind identifies the shape of an exposed meld.
type MeldKind int

const (
	MeldSequence     MeldKind = 0 // chi: three consecutive tiles called from the left player
	MeldTriplet      MeldKind = 1 // pon: three identical-rank tiles called from any player
	MeldOpenKan      MeldKind = 2 // daiminkan: four tiles formed on another player's discard
	MeldConcealedKan MeldKind = 3 // ankan: four tiles from the owner's own hand
	MeldAddedKan     MeldKind = 4 // shouminkan: a triplet upgraded with the fourth tile
)

// MeldKey addresses one meld inside a player's meld collection. Sequences are
// keyed by their lowest tile plus an ordinal (a player can hold several
// identical sequences); everything else is keyed by base rank.
type MeldKey struct {
	Kind MeldKind
	Base int
	Seq  int
}

// SequenceKey builds the key for a called sequence.
func SequenceKey(lowest Tile, ordinal int) MeldKey {
	return MeldKey{Kind: MeldSequence, Base: int(lowest), Seq: ordinal}
}

// TripletKey builds the key for a pon. Added-kan upgrades look up the prior
// triplet through this same key, so the record stays unique per base rank.
func TripletKey(baseRank int) MeldKey {
	return MeldKey{Kind: MeldTriplet, Base: baseRank}
}

// KanKey builds the key for an open or concealed kan.
func KanKey(kind MeldKind, baseRank int) MeldKey {
	return MeldKey{Kind: kind, Base: baseRank}
}

// Meld is one exposed meld owned by a seat.
type Meld struct {
	Kind   MeldKind
	Owner  Seat
	Source Seat // who supplied the called tile; equals Owner for a concealed kan

	// Called is the tile claimed from Source's discard. Nil for a concealed
	// kan, where no single tile is called.
	Called *Tile

	// Tiles are the constituent tiles, unordered.
	Tiles []Tile

	// Added is the fourth tile stacked onto a triplet by an added-kan
	// upgrade. Nil otherwise.
	Added *Tile
}

// CallInfo is the minimal wire-level description of how a meld was formed:
// the called tile and its source seat, plus the stacked tile for an added-kan
// upgrade.
type CallInfo struct {
	Called Tile
	Source Seat
	Added  *Tile // only set for an added-kan upgrade
}

// Arrangement is the canonical display form of a meld. The called tile's slot
// encodes which neighbour supplied it, so a presenter can lay the meld out
// without re-deriving seat semantics.
type Arrangement struct {
	// Tiles laid in a line, in display order.
	Tiles []Tile

	// CalledIndex is the slot of the called tile within Tiles, or -1 when
	// nothing was called.
	CalledIndex int

	// Extra is a tile stacked sideways on the called slot rather than laid in
	// line: the leftover copy for an open kan, or the upgrade tile for an
	// added kan, or the revealed partner tile for a concealed kan.
	Extra *Tile

	// Concealed marks slots rendered face down. Nil except for a concealed
	// kan.
	Concealed []bool
}
