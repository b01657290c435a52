package types

import "encoding/json"

// Snapshot is the full table state pushed by the server on every change.
// It replaces the previous one wholesale.
type Snapshot struct {
	RoomID            string    `json:"room_id,omitempty"`
	Host              string    `json:"host"`
	Phase             Phase     `json:"phase"`
	TurnSeat          *int      `json:"turn_seat"`
	DealerSeat        *int      `json:"dealer_seat"`
	WallCount         int       `json:"wall_count"`
	Players           []Player  `json:"players"`
	Seats             [4]string `json:"seats"`
	DoraDisplays      []string  `json:"dora_displays"`
	Results           *Results  `json:"results,omitempty"`
	DealerFirstHidden bool      `json:"dealer_first_hidden,omitempty"`
	YouSeat           *int      `json:"you_seat"`
}

// UnmarshalJSON decodes the snapshot, treating the settlement as optional:
// a results object this client cannot read is dropped rather than losing
// the table around it.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	var aux struct {
		plain
		Results json.RawMessage `json:"results,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Snapshot(aux.plain)
	s.Results = nil
	if len(aux.Results) > 0 && string(aux.Results) != "null" {
		var r Results
		if err := json.Unmarshal(aux.Results, &r); err == nil {
			s.Results = &r
		}
	}
	return nil
}

type Phase string

const (
	PhaseWaiting     Phase = "waiting"
	PhaseBetting     Phase = "betting"
	PhasePlaying     Phase = "playing"
	PhaseResetPrompt Phase = "reset_prompt"
	PhaseEnded       Phase = "ended"
)

type Player struct {
	Seat          int      `json:"seat"`
	SeatLabel     string   `json:"seat_label,omitempty"`
	Name          string   `json:"name"`
	Points        int      `json:"points"`
	InitialPoints *int     `json:"initial_points,omitempty"`
	Bet           *int     `json:"bet"`
	Ready         bool     `json:"ready"`
	Status        string   `json:"status"`
	Hand          []string `json:"hand"`
	HandCount     int      `json:"hand_count,omitempty"`
	Discards      []string `json:"discards"`
}

const StatusPlaying = "playing"

const NumSeats = 4

// ValidSeat reports whether s points at one of the four table seats.
func ValidSeat(s *int) bool {
	return s != nil && *s >= 0 && *s < NumSeats
}

// SeatLabel returns the wind name for seat, or "" when out of range.
func (s Snapshot) SeatLabel(seat int) string {
	if seat < 0 || seat >= NumSeats {
		return ""
	}
	return s.Seats[seat]
}

// PlayerAt returns the player sitting at seat, if any.
func (s Snapshot) PlayerAt(seat int) (Player, bool) {
	for _, p := range s.Players {
		if p.Seat == seat {
			return p, true
		}
	}
	return Player{}, false
}

func IntPtr(v int) *int { return &v }
