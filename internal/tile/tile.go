// Package tile parses the tile labels found in snapshots into one canonical
// identity and maps that identity to an asset file name.
package tile

import "strconv"

type Kind uint8

const (
	KindUnparsed Kind = iota
	KindNumber
	KindHonor
)

type Suit uint8

const (
	SuitNone Suit = iota
	Manzu
	Pinzu
	Souzu
)

// Letter returns the shorthand suit letter (m, p, s).
func (s Suit) Letter() byte {
	switch s {
	case Manzu:
		return 'm'
	case Pinzu:
		return 'p'
	case Souzu:
		return 's'
	}
	return '?'
}

type Honor uint8

// Order matters: honor codes 1z..7z and the Unicode honor block index into it.
const (
	HonorNone Honor = iota
	East
	South
	West
	North
	White
	Green
	Red
)

var honorGlyphs = [...]string{"", "東", "南", "西", "北", "白", "發", "中"}

// Glyph returns the ideographic form of h.
func (h Honor) Glyph() string {
	if h > Red {
		return ""
	}
	return honorGlyphs[h]
}

func (h Honor) IsWind() bool   { return h >= East && h <= North }
func (h Honor) IsDragon() bool { return h >= White && h <= Red }

// Tile is the canonical, encoding-independent tile identity. The zero value
// is the unparsed result, so two labels denote the same tile exactly when
// their parsed Tiles compare equal.
type Tile struct {
	Kind  Kind
	Suit  Suit
	Rank  int
	Red   bool
	Honor Honor
}

func Number(s Suit, rank int, red bool) Tile {
	return Tile{Kind: KindNumber, Suit: s, Rank: rank, Red: red && rank == 5}
}

func HonorTile(h Honor) Tile {
	return Tile{Kind: KindHonor, Honor: h}
}

func (t Tile) Parsed() bool { return t.Kind != KindUnparsed }

// String returns the ASCII shorthand: "0m" for a red five, "1z".."7z" for
// honors and "?" for unparsed.
func (t Tile) String() string {
	switch t.Kind {
	case KindNumber:
		r := t.Rank
		if t.Red {
			r = 0
		}
		return strconv.Itoa(r) + string(t.Suit.Letter())
	case KindHonor:
		return strconv.Itoa(int(t.Honor)) + "z"
	}
	return "?"
}
