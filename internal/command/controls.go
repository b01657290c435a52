package command

import (
	"github.com/DoyleJ11/toppan-client/pkg/types"
)

const (
	ResetPromptDealer = "reset the wall?"
	ResetPromptWait   = "the dealer is choosing whether to reset..."
)

// Controls is what the viewer may do right now, derived from the latest
// snapshot. Surfaces show or enable their inputs from it.
type Controls struct {
	Phase    types.Phase `json:"phase"`
	IsHost   bool        `json:"is_host"`
	IsDealer bool        `json:"is_dealer"`

	ShowStart         bool `json:"show_start"`
	CanStart          bool `json:"can_start"`
	ShowInitialPoints bool `json:"show_initial_points"`
	CanAct            bool `json:"can_act"`

	BetPanel bool `json:"bet_panel"`
	// BetInput mirrors the bet the server holds for the viewer.
	BetInput    *int   `json:"bet_input,omitempty"`
	ResetPanel  bool   `json:"reset_panel"`
	ResetPrompt string `json:"reset_prompt,omitempty"`
	CanReset    bool   `json:"can_reset"`
}

// Derive computes the controls for the viewer at seat. sid is the
// connection id the server announced in hello; the host is compared by it.
func Derive(snap types.Snapshot, seat int, sid string) Controls {
	c := Controls{Phase: snap.Phase}
	c.IsHost = sid != "" && snap.Host == sid
	c.IsDealer = snap.DealerSeat != nil && *snap.DealerSeat == seat

	waiting := snap.Phase == types.PhaseWaiting
	c.ShowStart = waiting
	c.ShowInitialPoints = waiting
	c.CanStart = waiting && len(snap.Players) >= 2 && c.IsHost

	me, ok := snap.PlayerAt(seat)
	c.CanAct = snap.Phase == types.PhasePlaying &&
		ok && me.Status == types.StatusPlaying &&
		snap.TurnSeat != nil && *snap.TurnSeat == seat

	c.BetPanel = snap.Phase == types.PhaseBetting && !c.IsDealer
	if ok && me.Bet != nil {
		c.BetInput = types.IntPtr(*me.Bet)
	}

	if snap.Phase == types.PhaseResetPrompt {
		c.ResetPanel = true
		c.CanReset = c.IsDealer
		c.ResetPrompt = ResetPromptWait
		if c.IsDealer {
			c.ResetPrompt = ResetPromptDealer
		}
	}
	return c
}

// Check reports whether cmd is allowed under c. It mirrors which inputs a
// surface shows as enabled; the server stays the authority.
func Check(c Controls, cmd Command) error {
	switch cmd.Name {
	case CreateRoomCmd, JoinRoomCmd, ChatCmd:
		return nil
	case SetReadyCmd, SetInitialPointsCmd:
		if c.Phase != types.PhaseWaiting {
			return ErrWrongPhase
		}
	case StartGameCmd:
		if c.Phase != types.PhaseWaiting {
			return ErrWrongPhase
		}
		if !c.IsHost {
			return ErrNotHost
		}
		if !c.CanStart {
			return ErrNotEnoughPlayers
		}
	case DrawTileCmd, StayCmd:
		if c.Phase != types.PhasePlaying {
			return ErrWrongPhase
		}
		if !c.CanAct {
			return ErrNotYourTurn
		}
	case SetBetPointsCmd:
		if c.Phase != types.PhaseBetting {
			return ErrWrongPhase
		}
		if c.IsDealer {
			return ErrDealerCannotBet
		}
	case DealerResetCmd:
		if c.Phase != types.PhaseResetPrompt {
			return ErrWrongPhase
		}
		if !c.IsDealer {
			return ErrNotDealer
		}
	default:
		return ErrUnknownCommand
	}
	return nil
}
