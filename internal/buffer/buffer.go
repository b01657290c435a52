// Package buffer holds snapshots back until the surface is ready and the
// viewer's own seat is known, then releases them in arrival order.
package buffer

import (
	"github.com/DoyleJ11/toppan-client/pkg/types"
)

type State int

const (
	AwaitingReadiness State = iota
	Buffering
	Draining
	Live
)

func (s State) String() string {
	switch s {
	case AwaitingReadiness:
		return "awaiting_readiness"
	case Buffering:
		return "buffering"
	case Draining:
		return "draining"
	case Live:
		return "live"
	}
	return "unknown"
}

// DefaultMaxPending bounds the queue. In practice it only ever holds the
// burst of messages that arrive before the first render.
const DefaultMaxPending = 1024

// Ready is a snapshot released for rendering with the seat in effect for it.
type Ready struct {
	Snapshot types.Snapshot
	Seat     int
}

// Buffer is not safe for concurrent use; the view loop owns it.
type Buffer struct {
	state      State
	surface    bool
	seat       int
	seatKnown  bool
	pending    []types.Snapshot
	maxPending int
	dropped    int
}

func New(maxPending int) *Buffer {
	if maxPending <= 0 {
		maxPending = DefaultMaxPending
	}
	return &Buffer{maxPending: maxPending}
}

func (b *Buffer) State() State { return b.state }

// Seat returns the viewer's seat once the server has declared one.
func (b *Buffer) Seat() (int, bool) { return b.seat, b.seatKnown }

func (b *Buffer) Pending() int { return len(b.pending) }

// Dropped counts snapshots discarded because the queue was full.
func (b *Buffer) Dropped() int { return b.dropped }

// Push accepts the next snapshot in arrival order and returns whatever can
// be rendered now, oldest first.
//
// The latest valid you_seat always wins. A snapshot without one keeps the
// seat already known.
func (b *Buffer) Push(snap types.Snapshot) []Ready {
	if b.state == Live {
		b.adoptSeat(snap)
		return []Ready{{Snapshot: snap, Seat: b.seat}}
	}

	b.enqueue(snap)
	if types.ValidSeat(snap.YouSeat) {
		b.adoptSeat(snap)
	}
	return b.tryDrain()
}

// MarkReady records that the surface can be drawn on. Only the first call
// has an effect.
func (b *Buffer) MarkReady() []Ready {
	if b.surface {
		return nil
	}
	b.surface = true
	if b.state == AwaitingReadiness {
		b.state = Buffering
	}
	return b.tryDrain()
}

func (b *Buffer) enqueue(snap types.Snapshot) {
	if len(b.pending) >= b.maxPending {
		b.pending = b.pending[1:]
		b.dropped++
	}
	b.pending = append(b.pending, snap)
}

func (b *Buffer) adoptSeat(snap types.Snapshot) {
	if types.ValidSeat(snap.YouSeat) {
		b.seat = *snap.YouSeat
		b.seatKnown = true
	}
}

// tryDrain flushes the queue once both conditions hold. Snapshots in the
// queue that declare a seat update it as they are released, so each one
// renders with the seat the server meant at that point; those queued before
// any declaration take the seat that unblocked the queue.
func (b *Buffer) tryDrain() []Ready {
	if !b.surface || !b.seatKnown {
		return nil
	}
	b.state = Draining
	out := make([]Ready, 0, len(b.pending))
	for _, snap := range b.pending {
		b.adoptSeat(snap)
		out = append(out, Ready{Snapshot: snap, Seat: b.seat})
	}
	b.pending = nil
	b.state = Live
	return out
}
