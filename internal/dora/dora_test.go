package dora

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_EndToEnd(t *testing.T) {
	groups := Classify([]string{"9p", "1m", "1p", "5s", "0s", "東", "東"})

	require.Len(t, groups, 4)
	assert.Equal(t, Group{Key: 9, Labels: []string{"9p"}}, groups[0])
	assert.Equal(t, Group{Key: 1, Labels: []string{"1m", "1p"}}, groups[1])
	assert.Equal(t, Group{Key: 5, Labels: []string{"5s", "0s"}}, groups[2])
	assert.Equal(t, Group{Key: KeyWinds, Labels: []string{"東", "東"}}, groups[3])

	strip := DefaultMetrics().Layout([]string{"9p", "1m", "1p", "5s", "0s", "東", "東"})
	assert.GreaterOrEqual(t, strip.Split, 1)
	assert.Less(t, strip.Split, len(strip.Groups))
	first, second := strip.Rows()
	assert.NotEmpty(t, first)
	assert.NotEmpty(t, second)
	assert.Equal(t, 7, Count(first)+Count(second))
}

func TestClassify_SuitPriorityWithinRank(t *testing.T) {
	groups := Classify([]string{"3s", "3p", "3m", "赤5索", "5萬", "5p"})
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"3m", "3p", "3s"}, groups[0].Labels)
	assert.Equal(t, []string{"5萬", "5p", "赤5索"}, groups[1].Labels)
}

func TestClassify_HonorsOrderedAndUnparsedKept(t *testing.T) {
	groups := Classify([]string{"中", "北", "??", "2z", "白", "東", "BACK", "發"})
	require.Len(t, groups, 2)
	assert.Equal(t, KeyWinds, groups[0].Key)
	assert.Equal(t, []string{"東", "2z", "北"}, groups[0].Labels)
	assert.Equal(t, KeyDragons, groups[1].Key)
	assert.Equal(t, []string{"白", "發", "中", "??", "BACK"}, groups[1].Labels)
}

func TestClassify_SequenceOrder(t *testing.T) {
	groups := Classify([]string{"8m", "白", "2p", "南", "9s", "1s"})
	var keys []Key
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []Key{9, 1, 2, 8, KeyWinds, KeyDragons}, keys)
}

func TestClassify_Empty(t *testing.T) {
	assert.Empty(t, Classify(nil))
	strip := DefaultMetrics().Layout(nil)
	assert.Equal(t, 0, strip.Split)
	first, second := strip.Rows()
	assert.Empty(t, first)
	assert.Empty(t, second)
}

func TestLayout_SingleGroupStaysOnFirstRow(t *testing.T) {
	strip := DefaultMetrics().Layout([]string{"4m", "4p"})
	first, second := strip.Rows()
	assert.Len(t, first, 1)
	assert.Empty(t, second)
}

func TestMetrics_Defaults(t *testing.T) {
	m := DefaultMetrics()
	assert.Equal(t, 64, m.TileHeight)
	assert.Equal(t, 43, m.TileWidth)
	assert.Equal(t, 0, m.GroupWidth(0))
	assert.Equal(t, 43, m.GroupWidth(1))
	assert.Equal(t, 3*43+2*8, m.GroupWidth(3))
	assert.Equal(t, 43+12+94, RowWidth([]int{43, 94}, 12))
}

// bruteSplit evaluates every split independently of Split.
func bruteSplit(widths []int, gap int) int {
	best := math.MaxInt
	for k := 1; k < len(widths); k++ {
		a, b := 0, 0
		for i, w := range widths {
			if i < k {
				a += w
			} else {
				b += w
			}
		}
		a += (k - 1) * gap
		b += (len(widths) - k - 1) * gap
		if s := max(a, b); s < best {
			best = s
		}
	}
	return best
}

func TestSplit_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for iter := 0; iter < 2000; iter++ {
		n := 2 + rng.Intn(10)
		widths := make([]int, n)
		for i := range widths {
			widths[i] = 1 + rng.Intn(300)
		}
		gap := rng.Intn(20)

		k, got := Split(widths, gap)
		require.GreaterOrEqual(t, k, 1)
		require.Less(t, k, n)
		require.Equal(t, bruteSplit(widths, gap), got, "widths=%v gap=%d", widths, gap)
		require.Equal(t, got, max(RowWidth(widths[:k], gap), RowWidth(widths[k:], gap)))
	}
}

func TestSplit_TiesKeepFirst(t *testing.T) {
	// k=1 and k=2 both give max 100.
	k, best := Split([]int{100, 0, 100}, 0)
	assert.Equal(t, 1, k)
	assert.Equal(t, 100, best)
}

func TestScale(t *testing.T) {
	m := DefaultMetrics()
	cases := []struct {
		name      string
		container float64
		w1, w2    float64
		want      float64
	}{
		{"fits", 480, 200, 300, 1},
		{"exactly fits", 480, 430, 10, 1},
		{"too wide", 480, 860, 100, 0.5},
		{"second row wider", 480, 100, 860, 0.5},
		{"empty rows", 480, 0, 0, 1},
		{"no room", 2, 300, 0, MinScale},
		{"zero container", 0, 300, 300, MinScale},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, m.Scale(tc.container, tc.w1, tc.w2), 1e-9)
		})
	}
}

func TestScale_NeverUpscales(t *testing.T) {
	m := DefaultMetrics()
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		c := float64(rng.Intn(1200))
		w1, w2 := float64(rng.Intn(1500)), float64(rng.Intn(1500))
		s := m.Scale(c, w1, w2)
		require.LessOrEqual(t, s, 1.0)
		require.GreaterOrEqual(t, s, MinScale)
		if s < 1 {
			require.Greater(t, math.Max(w1, w2), c*0.9-2)
		}
	}
}
