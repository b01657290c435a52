// Package dora lays out the revealed indicator tiles as a two-row strip.
//
// Indicators are grouped by rank (all suits of one rank together), then
// winds, then dragons. Groups are atomic: a group never breaks across
// rows. The split point is the one that keeps the wider row as narrow as
// possible, and the whole strip is shrunk uniformly when it still does not
// fit the container.
package dora

import (
	"slices"

	"github.com/DoyleJ11/toppan-client/internal/tile"
)

// Key identifies a group: ranks 1-9, then the two honor groups.
type Key int

const (
	KeyWinds   Key = 10
	KeyDragons Key = 11
)

func (k Key) String() string {
	switch k {
	case KeyWinds:
		return "winds"
	case KeyDragons:
		return "dragons"
	}
	return string(rune('0' + k))
}

// Sequence is the fixed visual order of groups. 9 leads: its indicator
// points at 1, the start of the cycle.
var Sequence = []Key{9, 1, 2, 3, 4, 5, 6, 7, 8, KeyWinds, KeyDragons}

type Group struct {
	Key    Key
	Labels []string
}

func suitPriority(s tile.Suit) int {
	switch s {
	case tile.Manzu:
		return 0
	case tile.Pinzu:
		return 1
	case tile.Souzu:
		return 2
	}
	return 3
}

type entry struct {
	label string
	t     tile.Tile
}

// Classify buckets the indicator labels and returns the non-empty groups
// in Sequence order. Labels that do not parse are kept at the end of the
// dragons group in arrival order, so every revealed tile is shown.
func Classify(labels []string) []Group {
	var (
		byRank  [10][]entry
		winds   []entry
		dragons []entry
		misc    []string
	)
	for _, l := range labels {
		t := tile.Parse(l)
		switch {
		case t.Kind == tile.KindNumber && t.Rank >= 1 && t.Rank <= 9:
			byRank[t.Rank] = append(byRank[t.Rank], entry{l, t})
		case t.Kind == tile.KindHonor && t.Honor.IsWind():
			winds = append(winds, entry{l, t})
		case t.Kind == tile.KindHonor && t.Honor.IsDragon():
			dragons = append(dragons, entry{l, t})
		default:
			misc = append(misc, l)
		}
	}

	bySuit := func(a, b entry) int { return suitPriority(a.t.Suit) - suitPriority(b.t.Suit) }
	byHonor := func(a, b entry) int { return int(a.t.Honor) - int(b.t.Honor) }

	groups := make([]Group, 0, len(Sequence))
	for _, k := range Sequence {
		var es []entry
		switch k {
		case KeyWinds:
			es = winds
			slices.SortStableFunc(es, byHonor)
		case KeyDragons:
			es = dragons
			slices.SortStableFunc(es, byHonor)
		default:
			es = byRank[k]
			slices.SortStableFunc(es, bySuit)
		}
		g := Group{Key: k, Labels: make([]string, 0, len(es))}
		for _, e := range es {
			g.Labels = append(g.Labels, e.label)
		}
		if k == KeyDragons {
			g.Labels = append(g.Labels, misc...)
		}
		if len(g.Labels) > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

// Count returns the number of tiles across groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Labels)
	}
	return n
}
