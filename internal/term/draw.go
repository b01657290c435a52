package term

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/text/width"

	"github.com/DoyleJ11/toppan-client/internal/render"
	"github.com/DoyleJ11/toppan-client/internal/seat"
	"github.com/DoyleJ11/toppan-client/internal/tile"
	"github.com/DoyleJ11/toppan-client/internal/view"
)

var (
	styleDefault = tcell.StyleDefault
	styleTurn    = tcell.StyleDefault.Bold(true).Foreground(tcell.ColorYellow)
	styleDim     = tcell.StyleDefault.Dim(true)
	styleStatus  = tcell.StyleDefault.Reverse(true)
)

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	if r >= 0x1F000 && r <= 0x1F02B {
		return 2
	}
	return 1
}

// put writes s at (x, y) and returns the column after it.
func put(sc tcell.Screen, x, y int, style tcell.Style, s string) int {
	w, _ := sc.Size()
	for _, r := range s {
		if x >= w {
			break
		}
		sc.SetContent(x, y, r, nil, style)
		x += runeWidth(r)
	}
	return x
}

// tileText is how a node reads on a terminal: the label, or the back glyph.
func tileText(n render.Node) string {
	if n.Back {
		return tile.BackSymbol
	}
	if n.Kind == render.KindText {
		return n.Text
	}
	if t := tile.Parse(n.Label); t.Parsed() {
		return t.String()
	}
	return n.Label
}

func tiles(f view.Frame, ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, n := range f.NodesOf(ids) {
		parts = append(parts, tileText(n))
	}
	return strings.Join(parts, " ")
}

func seatLines(f view.Frame, s seat.Slot) (head, hand, river string) {
	sv := f.Seat(s)
	if sv.Empty {
		return fmt.Sprintf("[%s] %s (empty)", sv.Slot, sv.NameLine), "", ""
	}
	head = fmt.Sprintf("[%s] %s %s | %s | %s", sv.Slot, sv.Wind, sv.NameLine, sv.BetLine, sv.Badge)
	if sv.Dealer {
		head += " | dealer"
	}
	if sv.Turn {
		head += " | turn"
	}
	return head, tiles(f, sv.Hand), tiles(f, sv.River)
}

func controlHints(f view.Frame, bet int) string {
	c := f.Controls
	var hints []string
	if c.ShowStart {
		hints = append(hints, "r/u ready", "p points")
		if c.CanStart {
			hints = append(hints, "s start")
		}
	}
	if c.CanAct {
		hints = append(hints, "d draw", "t stay")
	}
	if c.BetPanel {
		hint := fmt.Sprintf("+/- bet %d, b confirm", bet)
		if f.BetDraft.Confirmed {
			hint += " (confirmed)"
		}
		hints = append(hints, hint)
	}
	if c.ResetPanel {
		hints = append(hints, c.ResetPrompt)
		if c.CanReset {
			hints = append(hints, "y reset", "n keep")
		}
	}
	hints = append(hints, "c chat", "q quit")
	return strings.Join(hints, "  ")
}

// Draw paints f onto sc. bet is the amount currently entered.
func Draw(sc tcell.Screen, f view.Frame, bet int, input string) {
	sc.Clear()
	_, h := sc.Size()
	y := 0
	line := func(style tcell.Style, s string) {
		if y < h {
			put(sc, 0, y, style, s)
		}
		y++
	}

	if !f.Rendered() {
		line(styleDim, "waiting for the table...")
	} else {
		line(styleDefault, fmt.Sprintf("room: %s  phase: %s  turn: %s  wall: %d  [%s]",
			f.RoomID, f.Phase, f.Turn, f.WallCount, f.Renderer))
		for _, s := range []seat.Slot{seat.SlotTop, seat.SlotLeft, seat.SlotRight, seat.SlotMe} {
			head, hand, river := seatLines(f, s)
			style := styleDefault
			if f.Seat(s).Turn {
				style = styleTurn
			}
			line(style, head)
			if hand != "" {
				line(styleDefault, "  hand:  "+hand)
			}
			if river != "" {
				line(styleDim, "  river: "+river)
			}
		}
		if !f.Dora.Hidden && len(f.Dora.Rows) > 0 {
			for i, row := range f.Dora.Rows {
				groups := make([]string, 0, len(row))
				for _, g := range row {
					groups = append(groups, tiles(f, g.Nodes))
				}
				line(styleDefault, fmt.Sprintf("dora %d: %s", i+1, strings.Join(groups, "  |  ")))
			}
		}
		if f.Results != nil && len(f.Results.Pairs) > 0 {
			for _, p := range f.Results.Pairs {
				line(styleDim, fmt.Sprintf("result seat %d: %s (%+d)", p.ChildSeat, p.Verdict(), p.Gain()))
			}
		}
		line(styleDim, controlHints(f, bet))
	}

	for _, c := range lastN(f.Chat, 5) {
		line(styleDim, c)
	}
	if input != "" {
		line(styleDefault, "> "+input)
	}
	if h > 0 {
		put(sc, 0, h-1, styleStatus, f.Status)
	}
	sc.Show()
}

func lastN(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}
