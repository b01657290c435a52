// Package seat maps absolute table seats onto the viewer-relative screen
// slots. The viewer always sits at the bottom; the seat that plays right
// before the viewer is drawn on the left, the one right after on the right.
package seat

import "github.com/DoyleJ11/toppan-client/pkg/types"

type Slot int

const (
	SlotMe Slot = iota
	SlotLeft
	SlotTop
	SlotRight
)

var slotNames = [...]string{"me", "left", "top", "right"}

func (s Slot) String() string {
	if s < SlotMe || s > SlotRight {
		return "unknown"
	}
	return slotNames[s]
}

// Slots lists the four slots in drawing order.
var Slots = []Slot{SlotMe, SlotLeft, SlotTop, SlotRight}

// Offset of each slot from the viewer's seat, in turn order.
var slotOffset = [...]int{SlotMe: 0, SlotLeft: 3, SlotTop: 2, SlotRight: 1}

type Placement struct {
	Seat   int
	Player *types.Player // nil when nobody sits there
}

func (p Placement) Empty() bool { return p.Player == nil }

type Assignment struct {
	Me, Left, Top, Right Placement
}

// Place computes which seat lands in each slot for a viewer at mySeat.
// Missing players leave their slot empty; players with out-of-range seats
// are ignored.
func Place(players []types.Player, mySeat int) Assignment {
	me := ((mySeat % types.NumSeats) + types.NumSeats) % types.NumSeats

	var bySeat [types.NumSeats]*types.Player
	for i := range players {
		p := &players[i]
		if p.Seat < 0 || p.Seat >= types.NumSeats {
			continue
		}
		bySeat[p.Seat] = p
	}

	at := func(s Slot) Placement {
		abs := (me + slotOffset[s]) % types.NumSeats
		return Placement{Seat: abs, Player: bySeat[abs]}
	}
	return Assignment{
		Me:    at(SlotMe),
		Left:  at(SlotLeft),
		Top:   at(SlotTop),
		Right: at(SlotRight),
	}
}

// Get returns the placement for slot s.
func (a Assignment) Get(s Slot) Placement {
	switch s {
	case SlotLeft:
		return a.Left
	case SlotTop:
		return a.Top
	case SlotRight:
		return a.Right
	}
	return a.Me
}

// SlotOf reports which slot shows the absolute seat.
func (a Assignment) SlotOf(seat int) (Slot, bool) {
	for _, s := range Slots {
		if a.Get(s).Seat == seat {
			return s, true
		}
	}
	return SlotMe, false
}
