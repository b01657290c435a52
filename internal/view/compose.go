package view

import (
	"fmt"

	"github.com/DoyleJ11/toppan-client/internal/command"
	"github.com/DoyleJ11/toppan-client/internal/dora"
	"github.com/DoyleJ11/toppan-client/internal/render"
	"github.com/DoyleJ11/toppan-client/internal/seat"
	"github.com/DoyleJ11/toppan-client/pkg/types"
)

const (
	BadgeReady   = "ready"
	BadgeWaiting = "waiting"
)

type nodeBuilder struct {
	r     render.Renderer
	nodes []render.Node
}

func (b *nodeBuilder) add(label string, o render.Options) int {
	n := b.r.Tile(label, o)
	n.ID = len(b.nodes)
	b.nodes = append(b.nodes, n)
	return n.ID
}

// compose builds the frame for snap as seen from mySeat. It reads the loop's
// state but never writes it.
func (c *Context) compose(snap types.Snapshot, mySeat int) Frame {
	b := &nodeBuilder{r: c.renderer}
	f := Frame{
		Renderer:  c.renderer.Name(),
		RoomID:    c.roomID,
		Phase:     snap.Phase,
		Status:    c.status,
		Turn:      turnText(snap),
		WallCount: snap.WallCount,
		MySeat:    mySeat,
		Controls:  command.Derive(snap, mySeat, c.sid),
		BetDraft:  c.draft,
		Results:   snap.Results,
		Chat:      c.chat,
	}
	if snap.RoomID != "" {
		f.RoomID = snap.RoomID
	}

	a := seat.Place(snap.Players, mySeat)
	for _, s := range seat.Slots {
		f.Seats[s] = seatView(snap, a.Get(s), s, b)
	}

	f.Dora = c.doraView(snap, b)
	f.Nodes = b.nodes
	f.Dora.Widths = c.measureDora(f)
	f.Dora.Scale = c.metrics.Scale(c.container, f.Dora.Widths[0], f.Dora.Widths[1])
	return f
}

func turnText(snap types.Snapshot) string {
	if snap.TurnSeat == nil {
		return "-"
	}
	p, ok := snap.PlayerAt(*snap.TurnSeat)
	if !ok {
		return "-"
	}
	return snap.SeatLabel(*snap.TurnSeat) + "・" + p.Name
}

func seatView(snap types.Snapshot, p seat.Placement, slot seat.Slot, b *nodeBuilder) SeatView {
	sv := SeatView{
		Slot:  slot.String(),
		Seat:  p.Seat,
		Empty: p.Empty(),
		Badge: BadgeWaiting,
		Hand:  []int{},
		River: []int{},
	}
	if p.Empty() {
		sv.NameLine = snap.SeatLabel(p.Seat)
		return sv
	}

	pl := p.Player
	sv.Wind = snap.SeatLabel(pl.Seat)
	if sv.Wind == "" {
		sv.Wind = pl.SeatLabel
	}
	sv.NameLine = fmt.Sprintf("%s (%dpt)", pl.Name, pl.Points)
	sv.BetLine = "bet: -"
	if pl.Bet != nil {
		sv.BetLine = fmt.Sprintf("bet: %d", *pl.Bet)
	}
	sv.Ready = pl.Ready
	if pl.Ready {
		sv.Badge = BadgeReady
	}
	sv.Status = pl.Status
	sv.Turn = snap.TurnSeat != nil && *snap.TurnSeat == pl.Seat
	sv.Dealer = snap.DealerSeat != nil && *snap.DealerSeat == pl.Seat

	// Own hand full size, everyone else's small.
	mine := slot == seat.SlotMe
	opts := render.Options{Small: !mine}
	for _, label := range pl.Hand {
		sv.Hand = append(sv.Hand, b.add(label, opts))
	}
	if !mine && len(pl.Hand) == 0 {
		for i := 0; i < pl.HandCount; i++ {
			sv.Hand = append(sv.Hand, b.add("", render.Options{Small: true, FaceDown: true}))
		}
	}
	for _, label := range pl.Discards {
		sv.River = append(sv.River, b.add(label, render.Options{Small: true}))
	}
	return sv
}

func (c *Context) doraView(snap types.Snapshot, b *nodeBuilder) DoraView {
	dv := DoraView{Hidden: snap.Phase == types.PhaseWaiting, Rows: [][]DoraGroup{}, Scale: 1}
	strip := c.metrics.Layout(snap.DoraDisplays)
	first, second := strip.Rows()
	for _, row := range [][]dora.Group{first, second} {
		if len(row) == 0 {
			continue
		}
		out := make([]DoraGroup, 0, len(row))
		for _, g := range row {
			dg := DoraGroup{Key: g.Key.String(), Nodes: make([]int, 0, len(g.Labels))}
			for _, label := range g.Labels {
				id := b.add(label, render.Options{})
				b.nodes[id].ForceHeight(c.metrics.TileHeight, c.metrics.TileWidth)
				dg.Nodes = append(dg.Nodes, id)
			}
			out = append(out, dg)
		}
		dv.Rows = append(dv.Rows, out)
	}
	return dv
}

// measureDora returns the width of both dora rows from the node widths
// currently known, estimating tiles that have not loaded.
func (c *Context) measureDora(f Frame) [2]float64 {
	var out [2]float64
	for i, row := range f.Dora.Rows {
		if i >= len(out) {
			break
		}
		widths := make([]int, 0, len(row))
		for _, g := range row {
			w := 0
			for _, id := range g.Nodes {
				nw := f.Nodes[id].Width
				if nw <= 0 {
					nw = c.metrics.TileWidth
				}
				w += nw
			}
			if len(g.Nodes) > 1 {
				w += (len(g.Nodes) - 1) * c.metrics.GroupGap
			}
			widths = append(widths, w)
		}
		out[i] = float64(dora.RowWidth(widths, c.metrics.RowGap))
	}
	return out
}

func (c *Context) isDoraNode(id int) bool {
	for _, row := range c.frame.Dora.Rows {
		for _, g := range row {
			for _, n := range g.Nodes {
				if n == id {
					return true
				}
			}
		}
	}
	return false
}

// chatLine formats a chat message as "name（wind）: message". The wind falls
// back to the seat table of the last snapshot.
func chatLine(m types.ChatMessage, seats [4]string) string {
	who := m.Name
	if who == "" && m.SID != "" {
		r := []rune(m.SID)
		who = string(r[:min(4, len(r))])
	}
	wind := m.SeatLabel
	if wind == "" && types.ValidSeat(m.Seat) {
		wind = seats[*m.Seat]
	}
	if who == "" {
		return m.Message
	}
	prefix := who
	if wind != "" {
		prefix += "（" + wind + "）"
	}
	return prefix + ": " + m.Message
}
