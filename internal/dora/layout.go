package dora

import (
	"math"
)

// Metrics holds the pixel constants of the strip. Tile width is an
// estimate from the 2:3 tile aspect ratio; real widths come in later
// through the view when images load.
type Metrics struct {
	TileHeight int
	TileWidth  int
	GroupGap   int // between tiles of one group
	RowGap     int // between groups of one row
	FitRatio   float64
	Margin     float64
}

const DefaultTileHeight = 64

func DefaultMetrics() Metrics {
	return NewMetrics(DefaultTileHeight)
}

// NewMetrics derives the tile width from the height.
func NewMetrics(tileHeight int) Metrics {
	if tileHeight <= 0 {
		tileHeight = DefaultTileHeight
	}
	return Metrics{
		TileHeight: tileHeight,
		TileWidth:  int(math.Round(float64(tileHeight) * 2 / 3)),
		GroupGap:   8,
		RowGap:     12,
		FitRatio:   0.9,
		Margin:     2,
	}
}

// GroupWidth estimates the width of a group of n tiles.
func (m Metrics) GroupWidth(n int) int {
	if n <= 0 {
		return 0
	}
	return n*m.TileWidth + (n-1)*m.GroupGap
}

// RowWidth sums group widths plus the gaps between them.
func RowWidth(widths []int, gap int) int {
	if len(widths) == 0 {
		return 0
	}
	w := (len(widths) - 1) * gap
	for _, x := range widths {
		w += x
	}
	return w
}

// Split picks k so that row one is widths[:k] and row two widths[k:],
// minimising the wider row. Every k in 1..n-1 is tried; the first minimum
// wins. With fewer than two groups everything goes on row one.
func Split(widths []int, gap int) (k int, best int) {
	n := len(widths)
	if n < 2 {
		return n, RowWidth(widths, gap)
	}
	k, best = 1, math.MaxInt
	for i := 1; i < n; i++ {
		score := max(RowWidth(widths[:i], gap), RowWidth(widths[i:], gap))
		if score < best {
			k, best = i, score
		}
	}
	return k, best
}

// Strip is the computed arrangement: groups in display order and the
// index where row two starts.
type Strip struct {
	Groups []Group
	Widths []int
	Split  int
}

func (s Strip) Rows() (first, second []Group) {
	return s.Groups[:s.Split], s.Groups[s.Split:]
}

// EstimatedRowWidths returns the estimated widths of both rows.
func (s Strip) EstimatedRowWidths(m Metrics) (int, int) {
	return RowWidth(s.Widths[:s.Split], m.RowGap), RowWidth(s.Widths[s.Split:], m.RowGap)
}

// Layout classifies labels and chooses the split.
func (m Metrics) Layout(labels []string) Strip {
	groups := Classify(labels)
	widths := make([]int, len(groups))
	for i, g := range groups {
		widths[i] = m.GroupWidth(len(g.Labels))
	}
	k, _ := Split(widths, m.RowGap)
	return Strip{Groups: groups, Widths: widths, Split: k}
}

// MinScale keeps the strip visible in a container too narrow to fit it.
const MinScale = 0.1

// Room is the width available to the strip inside a container.
func (m Metrics) Room(container float64) float64 {
	return container*m.FitRatio - m.Margin
}

// Scale returns the uniform shrink factor for rows measured at w1 and w2
// inside a container. It stays within [MinScale, 1].
func (m Metrics) Scale(container, w1, w2 float64) float64 {
	widest := math.Max(w1, w2)
	avail := m.Room(container)
	if widest <= avail {
		return 1
	}
	return math.Max(MinScale, math.Min(1, avail/math.Max(widest, 1)))
}
