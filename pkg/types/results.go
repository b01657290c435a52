package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
)

const (
	OutcomeChildWin  = "child_win"
	OutcomeDealerWin = "dealer_win"
	OutcomePush      = "push"
)

// Results is the settlement of the last round. The server sends an empty
// object between rounds, so every field is optional.
type Results struct {
	DealerSeat  *int  `json:"dealer_seat,omitempty"`
	Pairs       Pairs `json:"pairs,omitempty"`
	DealerDelta int   `json:"dealer_delta,omitempty"`
}

// Pair is one child's settlement against the dealer.
type Pair struct {
	ChildSeat       int     `json:"child_seat"`
	Bet             int     `json:"bet"`
	Result          float64 `json:"result"` // bet multiplier; negative when the dealer wins
	Delta           int     `json:"delta"`
	ChildTotal      float64 `json:"child_total,omitempty"`
	DealerTotal     float64 `json:"dealer_total,omitempty"`
	ChildRoles      []Role  `json:"child_roles,omitempty"`
	ChildRoleTotal  int     `json:"child_role_total,omitempty"`
	DealerRoles     []Role  `json:"dealer_roles,omitempty"`
	DealerRoleTotal int     `json:"dealer_role_total,omitempty"`
	Outcome         string  `json:"outcome,omitempty"`
	DeltaChild      int     `json:"delta_child,omitempty"`
}

type Role struct {
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Multiplier int    `json:"multiplier"`
}

// Verdict is the outcome label, derived from the multiplier when the
// server did not name one.
func (p Pair) Verdict() string {
	if p.Outcome != "" {
		return p.Outcome
	}
	switch {
	case p.Result > 0:
		return OutcomeChildWin
	case p.Result < 0:
		return OutcomeDealerWin
	}
	return OutcomePush
}

// Gain is the child's point change.
func (p Pair) Gain() int {
	if p.Delta != 0 {
		return p.Delta
	}
	return p.DeltaChild
}

// Pairs is ordered by child seat. On the wire it is either a list of pairs
// or an object keyed by child seat.
type Pairs []Pair

func (ps *Pairs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ps = nil
		return nil
	}
	if data[0] == '[' {
		var list []Pair
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*ps = list
		return nil
	}

	var bySeat map[string]Pair
	if err := json.Unmarshal(data, &bySeat); err != nil {
		return err
	}
	out := make(Pairs, 0, len(bySeat))
	for key, p := range bySeat {
		seat, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("pairs: seat key %q: %w", key, err)
		}
		p.ChildSeat = seat
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Pair) int { return a.ChildSeat - b.ChildSeat })
	*ps = out
	return nil
}
