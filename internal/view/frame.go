package view

import (
	"slices"

	"github.com/DoyleJ11/toppan-client/internal/command"
	"github.com/DoyleJ11/toppan-client/internal/render"
	"github.com/DoyleJ11/toppan-client/internal/seat"
	"github.com/DoyleJ11/toppan-client/pkg/types"
)

// Frame is everything a surface needs to draw the table. Hands, rivers and
// the dora strip refer to Nodes by index.
type Frame struct {
	Gen       uint64           `json:"gen"`
	Renderer  string           `json:"renderer"`
	RoomID    string           `json:"room_id,omitempty"`
	Phase     types.Phase      `json:"phase"`
	Status    string           `json:"status"`
	Turn      string           `json:"turn"`
	WallCount int              `json:"wall_count"`
	MySeat    int              `json:"my_seat"`
	Seats     [4]SeatView      `json:"seats"` // indexed by seat.Slot
	Nodes     []render.Node    `json:"nodes"`
	Dora      DoraView         `json:"dora"`
	Controls  command.Controls `json:"controls"`
	BetDraft  BetDraft         `json:"bet_draft"`
	Results   *types.Results   `json:"results,omitempty"`
	Chat      []string         `json:"chat"`
}

type SeatView struct {
	Slot     string `json:"slot"`
	Seat     int    `json:"seat"`
	Empty    bool   `json:"empty"`
	Wind     string `json:"wind"`
	NameLine string `json:"name_line"`
	BetLine  string `json:"bet_line,omitempty"`
	Ready    bool   `json:"ready"`
	Badge    string `json:"badge"`
	Turn     bool   `json:"turn"`
	Dealer   bool   `json:"dealer"`
	Status   string `json:"status,omitempty"`
	Hand     []int  `json:"hand"`
	River    []int  `json:"river"`
}

type DoraGroup struct {
	Key   string `json:"key"`
	Nodes []int  `json:"nodes"`
}

type DoraView struct {
	Hidden bool          `json:"hidden"`
	Rows   [][]DoraGroup `json:"rows"`
	Scale  float64       `json:"scale"`
	Widths [2]float64    `json:"widths"`
}

// BetDraft is the viewer's bet input state for the current round.
type BetDraft struct {
	LastSent  *int `json:"last_sent,omitempty"`
	Confirmed bool `json:"confirmed"`
}

// Seat returns the view drawn in slot s.
func (f Frame) Seat(s seat.Slot) SeatView { return f.Seats[s] }

// Rendered reports whether any snapshot has been drawn yet.
func (f Frame) Rendered() bool { return f.Gen > 0 }

// Clone returns a deep copy safe to hand to another goroutine.
func (f Frame) Clone() Frame {
	out := f
	out.Nodes = make([]render.Node, len(f.Nodes))
	for i, n := range f.Nodes {
		n.Candidates = slices.Clone(n.Candidates)
		out.Nodes[i] = n
	}
	for i := range out.Seats {
		out.Seats[i].Hand = slices.Clone(f.Seats[i].Hand)
		out.Seats[i].River = slices.Clone(f.Seats[i].River)
	}
	out.Dora.Rows = make([][]DoraGroup, len(f.Dora.Rows))
	for i, row := range f.Dora.Rows {
		r := make([]DoraGroup, len(row))
		for j, g := range row {
			r[j] = DoraGroup{Key: g.Key, Nodes: slices.Clone(g.Nodes)}
		}
		out.Dora.Rows[i] = r
	}
	out.Chat = slices.Clone(f.Chat)
	if f.Controls.BetInput != nil {
		out.Controls.BetInput = types.IntPtr(*f.Controls.BetInput)
	}
	if f.BetDraft.LastSent != nil {
		out.BetDraft.LastSent = types.IntPtr(*f.BetDraft.LastSent)
	}
	if f.Results != nil {
		r := *f.Results
		r.Pairs = slices.Clone(f.Results.Pairs)
		out.Results = &r
	}
	return out
}

// NodesOf resolves node indices, skipping any that are out of range.
func (f Frame) NodesOf(ids []int) []render.Node {
	out := make([]render.Node, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(f.Nodes) {
			out = append(out, f.Nodes[id])
		}
	}
	return out
}
