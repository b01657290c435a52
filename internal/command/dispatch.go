package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/toppan-client/pkg/types"
)

// Sender delivers commands to the game server.
type Sender interface {
	Request(ctx context.Context, name string, data any) (types.Ack, error)
	Notify(ctx context.Context, name string, data any) error
}

// Result is the outcome of one dispatched command.
type Result struct {
	Command Command
	Ack     types.Ack
	Err     error
	// Status is the line to show the user; empty leaves the status alone.
	Status string
}

// Reporter receives every Result, including commands refused locally.
type Reporter interface {
	Report(Result)
}

// failureText is shown when the server rejects a command without a reason.
var failureText = map[Name]string{
	CreateRoomCmd:       "create room failed",
	JoinRoomCmd:         "join room failed",
	SetReadyCmd:         "ready failed",
	StartGameCmd:        "start failed (host only, all ready, 2+ players)",
	DrawTileCmd:         "draw failed",
	StayCmd:             "stay failed",
	SetInitialPointsCmd: "initial points failed",
	SetBetPointsCmd:     "bet failed",
	DealerResetCmd:      "reset failed",
	ChatCmd:             "chat failed",
}

const DefaultAckTimeout = 5 * time.Second

type Dispatcher struct {
	send    Sender
	report  Reporter
	log     *zap.Logger
	timeout time.Duration
}

func NewDispatcher(s Sender, r Reporter, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{send: s, report: r, log: log.Named("command"), timeout: DefaultAckTimeout}
}

// Dispatch checks cmd against ctl, sends it, and waits for the ack. The
// outcome is reported before Dispatch returns. A nil error means the server
// accepted the command (or, for chat, that it was written).
func (d *Dispatcher) Dispatch(ctx context.Context, ctl Controls, cmd Command) error {
	if err := Check(ctl, cmd); err != nil {
		d.emit(Result{Command: cmd, Err: err, Status: err.Error()})
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if !cmd.Acked() {
		err := d.send.Notify(ctx, string(cmd.Name), cmd.Data)
		if err != nil {
			d.log.Warn("notify failed", zap.String("cmd", string(cmd.Name)), zap.Error(err))
			d.emit(Result{Command: cmd, Err: err, Status: failureText[cmd.Name]})
			return err
		}
		d.emit(Result{Command: cmd})
		return nil
	}

	ack, err := d.send.Request(ctx, string(cmd.Name), cmd.Data)
	if err != nil {
		d.log.Warn("request failed", zap.String("cmd", string(cmd.Name)), zap.Error(err))
		d.emit(Result{Command: cmd, Err: err, Status: failureText[cmd.Name]})
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	if !ack.OK {
		rej := &Rejection{Command: cmd.Name, Reason: ack.Error}
		if rej.Reason == "" {
			rej.Reason = failureText[cmd.Name]
		}
		d.log.Info("command rejected", zap.String("cmd", string(cmd.Name)), zap.String("reason", rej.Reason))
		d.emit(Result{Command: cmd, Ack: ack, Err: rej, Status: rej.Reason})
		return rej
	}
	d.emit(Result{Command: cmd, Ack: ack, Status: successText(cmd, ack)})
	return nil
}

func successText(cmd Command, ack types.Ack) string {
	switch cmd.Name {
	case CreateRoomCmd:
		return "room created: " + ack.RoomID
	case JoinRoomCmd:
		rid := ack.RoomID
		if j, ok := cmd.Data.(types.JoinRoom); ok && rid == "" {
			rid = j.RoomID
		}
		return "joined room: " + rid
	}
	return ""
}

func (d *Dispatcher) emit(r Result) {
	if d.report != nil {
		d.report.Report(r)
	}
}

// IsRejection reports whether err came from the server refusing a command.
func IsRejection(err error) bool {
	var rej *Rejection
	return errors.As(err, &rej)
}
