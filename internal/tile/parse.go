package tile

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Face-down markers. They are not tiles; callers check IsBack before Parse.
const (
	BackToken  = "BACK"
	BackSymbol = "\U0001F02B"
)

const redGlyph = "赤"

// IsBack reports whether label is one of the face-down markers.
func IsBack(label string) bool {
	s := strings.TrimSpace(label)
	return s == BackToken || s == BackSymbol
}

// Parse converts any supported label into its canonical Tile. Unknown
// labels yield the zero Tile; Parse never panics.
func Parse(label string) Tile {
	s := strings.TrimSpace(label)
	if s == "" {
		return Tile{}
	}
	// Full-width digits and letters ("５ｍ") fold to ASCII; ideographs are untouched.
	s = width.Narrow.String(s)

	if t, ok := parseHonorCode(s); ok {
		return t
	}
	if t, ok := parseShorthand(s); ok {
		return t
	}
	if t, ok := parseIdeographic(s); ok {
		return t
	}
	if t, ok := parseHonorGlyph(s); ok {
		return t
	}
	if t, ok := parseUnicode(s); ok {
		return t
	}
	return Tile{}
}

// "1z".."7z", case-insensitive.
func parseHonorCode(s string) (Tile, bool) {
	if len(s) != 2 || (s[1] != 'z' && s[1] != 'Z') {
		return Tile{}, false
	}
	if s[0] < '1' || s[0] > '7' {
		return Tile{}, false
	}
	return HonorTile(Honor(s[0] - '0')), true
}

// "5m", "0p" (red five), "5sr"/"5sR" (red five, alternate spelling).
func parseShorthand(s string) (Tile, bool) {
	if len(s) != 2 && len(s) != 3 {
		return Tile{}, false
	}
	if s[0] < '0' || s[0] > '9' {
		return Tile{}, false
	}
	suit := suitFromLetter(s[1])
	if suit == SuitNone {
		return Tile{}, false
	}
	red := s[0] == '0'
	if len(s) == 3 {
		if s[2] != 'r' && s[2] != 'R' {
			return Tile{}, false
		}
		red = true
	}
	rank := int(s[0] - '0')
	if rank == 0 {
		rank = 5
	}
	// A red marker on anything but a five is an anomaly; Number drops it.
	return Number(suit, rank, red), true
}

// "5萬", "赤5萬", "5萬r", "五筒", "赤五索".
func parseIdeographic(s string) (Tile, bool) {
	red := false
	if strings.HasPrefix(s, redGlyph) {
		red = true
		s = strings.TrimPrefix(s, redGlyph)
	}
	switch {
	case strings.HasSuffix(s, "r"), strings.HasSuffix(s, "R"):
		red = true
		s = s[:len(s)-1]
	case strings.HasSuffix(s, redGlyph):
		red = true
		s = strings.TrimSuffix(s, redGlyph)
	}

	num, size := utf8.DecodeRuneInString(s)
	rank := numeralRank(num)
	if rank == 0 {
		return Tile{}, false
	}
	suit := suitFromGlyph(s[size:])
	if suit == SuitNone {
		return Tile{}, false
	}
	return Number(suit, rank, red), true
}

func parseHonorGlyph(s string) (Tile, bool) {
	switch s {
	case "東":
		return HonorTile(East), true
	case "南":
		return HonorTile(South), true
	case "西":
		return HonorTile(West), true
	case "北":
		return HonorTile(North), true
	case "白":
		return HonorTile(White), true
	case "發", "発":
		return HonorTile(Green), true
	case "中":
		return HonorTile(Red), true
	}
	return Tile{}, false
}

// Unicode Mahjong Tiles block. The block runs honors, manzu, souzu, pinzu;
// souzu comes before pinzu here, unlike the usual m/p/s order.
const (
	cpHonorFirst = 0x1F000
	cpManFirst   = 0x1F007
	cpSouFirst   = 0x1F010
	cpPinFirst   = 0x1F019
	cpPinLast    = 0x1F021
)

func parseUnicode(s string) (Tile, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return Tile{}, false
	}
	switch {
	case r >= cpHonorFirst && r < cpManFirst:
		return HonorTile(Honor(r-cpHonorFirst) + East), true
	case r >= cpManFirst && r < cpSouFirst:
		return Number(Manzu, int(r-cpManFirst)+1, false), true
	case r >= cpSouFirst && r < cpPinFirst:
		return Number(Souzu, int(r-cpSouFirst)+1, false), true
	case r >= cpPinFirst && r <= cpPinLast:
		return Number(Pinzu, int(r-cpPinFirst)+1, false), true
	}
	return Tile{}, false
}

func suitFromLetter(c byte) Suit {
	switch c {
	case 'm':
		return Manzu
	case 'p':
		return Pinzu
	case 's':
		return Souzu
	}
	return SuitNone
}

func suitFromGlyph(s string) Suit {
	switch s {
	case "萬", "万":
		return Manzu
	case "筒":
		return Pinzu
	case "索":
		return Souzu
	}
	return SuitNone
}

var kanjiNumerals = map[rune]int{
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

// numeralRank maps 1-9 (already width-folded) or a kanji numeral to its
// rank, 0 otherwise.
func numeralRank(r rune) int {
	if r >= '1' && r <= '9' {
		return int(r - '0')
	}
	return kanjiNumerals[r]
}
