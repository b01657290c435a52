package buffer

import (
	"math/rand"
	"testing"

	"github.com/DoyleJ11/toppan-client/pkg/types"
)

func snap(wall int, seat *int) types.Snapshot {
	return types.Snapshot{WallCount: wall, YouSeat: seat}
}

func walls(rs []Ready) []int {
	out := make([]int, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Snapshot.WallCount)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestBuffer_MissingSeatThenSeatUnblocks(t *testing.T) {
	b := New(0)
	if got := b.MarkReady(); len(got) != 0 {
		t.Fatalf("nothing queued yet, got %v", walls(got))
	}

	if got := b.Push(snap(1, nil)); len(got) != 0 {
		t.Fatalf("snapshot without seat must be held, got %v", walls(got))
	}
	if b.State() != Buffering {
		t.Fatalf("want buffering, got %v", b.State())
	}

	got := b.Push(snap(2, types.IntPtr(2)))
	if !equalInts(walls(got), []int{1, 2}) {
		t.Fatalf("want [1 2], got %v", walls(got))
	}
	for _, r := range got {
		if r.Seat != 2 {
			t.Fatalf("want seat 2 for every released snapshot, got %d", r.Seat)
		}
	}
	if b.State() != Live {
		t.Fatalf("want live, got %v", b.State())
	}
}

func TestBuffer_WaitsForSurface(t *testing.T) {
	b := New(0)
	if got := b.Push(snap(1, types.IntPtr(0))); len(got) != 0 {
		t.Fatalf("surface not ready, got %v", walls(got))
	}
	if b.State() != AwaitingReadiness {
		t.Fatalf("want awaiting readiness, got %v", b.State())
	}
	b.Push(snap(2, nil))

	got := b.MarkReady()
	if !equalInts(walls(got), []int{1, 2}) {
		t.Fatalf("want [1 2], got %v", walls(got))
	}
	if again := b.MarkReady(); again != nil {
		t.Fatalf("second MarkReady must be a no-op")
	}
}

func TestBuffer_LatestSeatWins(t *testing.T) {
	b := New(0)
	b.MarkReady()
	b.Push(snap(1, types.IntPtr(1)))

	got := b.Push(snap(2, types.IntPtr(3)))
	if len(got) != 1 || got[0].Seat != 3 {
		t.Fatalf("want seat 3 from latest snapshot, got %+v", got)
	}
	got = b.Push(snap(3, nil))
	if len(got) != 1 || got[0].Seat != 3 {
		t.Fatalf("snapshot without seat keeps the last one, got %+v", got)
	}
	got = b.Push(snap(4, types.IntPtr(9)))
	if len(got) != 1 || got[0].Seat != 3 {
		t.Fatalf("out of range seat is ignored, got %+v", got)
	}
}

func TestBuffer_QueuedSeatsApplyInOrder(t *testing.T) {
	b := New(0)
	b.Push(snap(1, types.IntPtr(1)))
	b.Push(snap(2, nil))
	b.Push(snap(3, types.IntPtr(2)))

	got := b.MarkReady()
	want := []int{1, 1, 2}
	for i, r := range got {
		if r.Seat != want[i] {
			t.Fatalf("item %d: want seat %d, got %d", i, want[i], r.Seat)
		}
	}
	if s, ok := b.Seat(); !ok || s != 2 {
		t.Fatalf("want final seat 2, got %d (%v)", s, ok)
	}
}

// Any interleaving of N early and M late snapshots renders in arrival order.
func TestBuffer_OrderPreservedAcrossInterleavings(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for iter := 0; iter < 500; iter++ {
		b := New(0)
		n := rng.Intn(20)
		m := rng.Intn(20)
		seatAt := rng.Intn(n + m + 1) // first snapshot carrying a seat
		readyAt := rng.Intn(n + 1)    // surface becomes ready after readyAt pushes

		var rendered []int
		for i := 0; i < n+m; i++ {
			if i == readyAt {
				rendered = append(rendered, walls(b.MarkReady())...)
			}
			var seat *int
			if i >= seatAt {
				seat = types.IntPtr(i % 4)
			}
			rendered = append(rendered, walls(b.Push(snap(i, seat)))...)
		}
		if readyAt >= n+m {
			rendered = append(rendered, walls(b.MarkReady())...)
		}

		var want []int
		if seatAt < n+m {
			for i := 0; i < n+m; i++ {
				want = append(want, i)
			}
		}
		if !equalInts(rendered, want) {
			t.Fatalf("n=%d m=%d seatAt=%d readyAt=%d: got %v", n, m, seatAt, readyAt, rendered)
		}
	}
}

func TestBuffer_BoundDropsOldest(t *testing.T) {
	b := New(3)
	for i := 0; i < 5; i++ {
		b.Push(snap(i, nil))
	}
	if b.Pending() != 3 || b.Dropped() != 2 {
		t.Fatalf("want 3 pending / 2 dropped, got %d / %d", b.Pending(), b.Dropped())
	}
	b.MarkReady()
	got := b.Push(snap(5, types.IntPtr(0)))
	if !equalInts(walls(got), []int{3, 4, 5}) {
		t.Fatalf("want [3 4 5], got %v", walls(got))
	}
}
