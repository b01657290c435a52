package command

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/toppan-client/pkg/types"
)

func TestConstructors_Normalise(t *testing.T) {
	c := CreateRoom("   ")
	assert.Equal(t, types.CreateRoom{Name: "Player"}, c.Data)

	_, err := JoinRoom("  ", "a")
	assert.ErrorIs(t, err, ErrRoomIDRequired)

	j, err := JoinRoom(" ab12 ", "")
	require.NoError(t, err)
	assert.Equal(t, types.JoinRoom{RoomID: "ab12", Name: "Player"}, j.Data)

	assert.Equal(t, types.SetInitialPoints{Points: 300}, SetInitialPoints("abc").Data)
	assert.Equal(t, types.SetInitialPoints{Points: 500}, SetInitialPoints(" 500 ").Data)
	assert.Equal(t, types.SetInitialPoints{Points: 120}, SetInitialPoints("１２０").Data)

	bet, ok := SetBetPoints("").Bet()
	assert.True(t, ok)
	assert.Equal(t, 0, bet)
	bet, _ = SetBetPoints("7").Bet()
	assert.Equal(t, 7, bet)

	_, err = Chat("  ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.False(t, Command{Name: ChatCmd}.Acked())
	assert.True(t, StartGame().Acked())
}

func TestParse(t *testing.T) {
	c, err := Parse("set_ready", map[string]string{"ready": "false"})
	require.NoError(t, err)
	assert.Equal(t, types.SetReady{Ready: false}, c.Data)

	c, err = Parse("dealer_reset", map[string]string{"reset": "true"})
	require.NoError(t, err)
	assert.Equal(t, types.DealerReset{Reset: true}, c.Data)

	_, err = Parse("fold", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func table(phase types.Phase, players int) types.Snapshot {
	s := types.Snapshot{Host: "sid-0", Phase: phase, Seats: [4]string{"東", "南", "西", "北"}}
	for i := 0; i < players; i++ {
		s.Players = append(s.Players, types.Player{Seat: i, Name: string(rune('A' + i)), Status: types.StatusPlaying})
	}
	return s
}

func TestDerive(t *testing.T) {
	cases := []struct {
		name  string
		snap  types.Snapshot
		seat  int
		sid   string
		check func(t *testing.T, c Controls)
	}{
		{
			name: "host can start with two players",
			snap: table(types.PhaseWaiting, 2), seat: 0, sid: "sid-0",
			check: func(t *testing.T, c Controls) {
				assert.True(t, c.CanStart)
				assert.True(t, c.ShowInitialPoints)
			},
		},
		{
			name: "host alone cannot start",
			snap: table(types.PhaseWaiting, 1), seat: 0, sid: "sid-0",
			check: func(t *testing.T, c Controls) { assert.False(t, c.CanStart) },
		},
		{
			name: "guest cannot start",
			snap: table(types.PhaseWaiting, 3), seat: 1, sid: "sid-1",
			check: func(t *testing.T, c Controls) {
				assert.False(t, c.IsHost)
				assert.False(t, c.CanStart)
				assert.True(t, c.ShowStart)
			},
		},
		{
			name: "own turn while playing",
			snap: func() types.Snapshot {
				s := table(types.PhasePlaying, 3)
				s.TurnSeat = types.IntPtr(2)
				return s
			}(), seat: 2,
			check: func(t *testing.T, c Controls) { assert.True(t, c.CanAct) },
		},
		{
			name: "own turn but stayed",
			snap: func() types.Snapshot {
				s := table(types.PhasePlaying, 3)
				s.TurnSeat = types.IntPtr(2)
				s.Players[2].Status = "stay"
				return s
			}(), seat: 2,
			check: func(t *testing.T, c Controls) { assert.False(t, c.CanAct) },
		},
		{
			name: "bet panel for children only",
			snap: func() types.Snapshot {
				s := table(types.PhaseBetting, 3)
				s.DealerSeat = types.IntPtr(0)
				s.Players[1].Bet = types.IntPtr(4)
				return s
			}(), seat: 1,
			check: func(t *testing.T, c Controls) {
				assert.True(t, c.BetPanel)
				require.NotNil(t, c.BetInput)
				assert.Equal(t, 4, *c.BetInput)
			},
		},
		{
			name: "dealer sees no bet panel",
			snap: func() types.Snapshot {
				s := table(types.PhaseBetting, 3)
				s.DealerSeat = types.IntPtr(0)
				return s
			}(), seat: 0,
			check: func(t *testing.T, c Controls) {
				assert.True(t, c.IsDealer)
				assert.False(t, c.BetPanel)
			},
		},
		{
			name: "reset prompt",
			snap: func() types.Snapshot {
				s := table(types.PhaseResetPrompt, 2)
				s.DealerSeat = types.IntPtr(1)
				return s
			}(), seat: 0,
			check: func(t *testing.T, c Controls) {
				assert.True(t, c.ResetPanel)
				assert.False(t, c.CanReset)
				assert.Equal(t, ResetPromptWait, c.ResetPrompt)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, Derive(tc.snap, tc.seat, tc.sid))
		})
	}
}

func TestCheck(t *testing.T) {
	waitingGuest := Controls{Phase: types.PhaseWaiting}
	waitingHost := Controls{Phase: types.PhaseWaiting, IsHost: true}
	cases := []struct {
		name string
		ctl  Controls
		cmd  Command
		want error
	}{
		{"create always allowed", Controls{Phase: types.PhasePlaying}, CreateRoom("x"), nil},
		{"start in wrong phase", Controls{Phase: types.PhaseBetting}, StartGame(), ErrWrongPhase},
		{"start by guest", waitingGuest, StartGame(), ErrNotHost},
		{"start alone", waitingHost, StartGame(), ErrNotEnoughPlayers},
		{"start ok", Controls{Phase: types.PhaseWaiting, IsHost: true, CanStart: true}, StartGame(), nil},
		{"draw off turn", Controls{Phase: types.PhasePlaying}, DrawTile(), ErrNotYourTurn},
		{"stay on turn", Controls{Phase: types.PhasePlaying, CanAct: true}, Stay(), nil},
		{"dealer bet", Controls{Phase: types.PhaseBetting, IsDealer: true}, BetPoints(3), ErrDealerCannotBet},
		{"child bet", Controls{Phase: types.PhaseBetting}, BetPoints(3), nil},
		{"reset by child", Controls{Phase: types.PhaseResetPrompt}, DealerReset(true), ErrNotDealer},
		{"reset by dealer", Controls{Phase: types.PhaseResetPrompt, IsDealer: true}, DealerReset(false), nil},
		{"points after start", Controls{Phase: types.PhasePlaying}, SetInitialPoints("1"), ErrWrongPhase},
		{"unknown", waitingHost, Command{Name: "fold"}, ErrUnknownCommand},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Check(tc.ctl, tc.cmd)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

type fakeSender struct {
	mu       sync.Mutex
	ack      types.Ack
	err      error
	requests []string
	notifies []string
}

func (f *fakeSender) Request(_ context.Context, name string, _ any) (types.Ack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, name)
	return f.ack, f.err
}

func (f *fakeSender) Notify(_ context.Context, name string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notifies = append(f.notifies, name)
	return f.err
}

type results []Result

func (r *results) Report(res Result) { *r = append(*r, res) }

func TestDispatcher_Rejection(t *testing.T) {
	s := &fakeSender{ack: types.Ack{OK: false}}
	var got results
	d := NewDispatcher(s, &got, nil)

	err := d.Dispatch(context.Background(), Controls{Phase: types.PhasePlaying, CanAct: true}, DrawTile())
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	require.Len(t, got, 1)
	assert.Equal(t, "draw failed", got[0].Status)

	s.ack = types.Ack{OK: false, Error: "deck empty"}
	err = d.Dispatch(context.Background(), Controls{Phase: types.PhasePlaying, CanAct: true}, DrawTile())
	var rej *Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "deck empty", rej.Reason)
	assert.Equal(t, "deck empty", got[1].Status)
}

func TestDispatcher_GatedLocally(t *testing.T) {
	s := &fakeSender{ack: types.Ack{OK: true}}
	var got results
	d := NewDispatcher(s, &got, nil)

	err := d.Dispatch(context.Background(), Controls{Phase: types.PhaseWaiting}, StartGame())
	assert.ErrorIs(t, err, ErrNotHost)
	assert.Empty(t, s.requests, "gated command never reaches the server")
	require.Len(t, got, 1)
	assert.Equal(t, ErrNotHost.Error(), got[0].Status)
}

func TestDispatcher_SuccessAndChat(t *testing.T) {
	s := &fakeSender{ack: types.Ack{OK: true, RoomID: "r9"}}
	var got results
	d := NewDispatcher(s, &got, nil)

	require.NoError(t, d.Dispatch(context.Background(), Controls{}, CreateRoom("amy")))
	assert.Equal(t, "room created: r9", got[0].Status)

	msg, err := Chat("hi")
	require.NoError(t, err)
	require.NoError(t, d.Dispatch(context.Background(), Controls{}, msg))
	assert.Equal(t, []string{"chat"}, s.notifies)
	assert.Equal(t, []string{"create_room"}, s.requests)
}

func TestDispatcher_TransportError(t *testing.T) {
	boom := errors.New("closed")
	s := &fakeSender{err: boom}
	var got results
	d := NewDispatcher(s, &got, nil)

	err := d.Dispatch(context.Background(), Controls{Phase: types.PhaseWaiting}, SetReady(true))
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsRejection(err))
	assert.Equal(t, "ready failed", got[0].Status)
}
