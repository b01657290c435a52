package view

import (
	"image"

	"github.com/DoyleJ11/toppan-client/internal/buffer"
	"github.com/DoyleJ11/toppan-client/internal/command"
	"github.com/DoyleJ11/toppan-client/pkg/types"
)

type Msg interface{ isViewMsg() }

// SnapshotArrived carries a state push, in the order the transport read it.
type SnapshotArrived struct {
	Snapshot types.Snapshot
}

func (SnapshotArrived) isViewMsg() {}

// SurfaceReady is posted once a surface can be drawn on.
type SurfaceReady struct{}

func (SurfaceReady) isViewMsg() {}

// SelfIdentified carries the connection id from the server's hello.
type SelfIdentified struct{ SID string }

func (SelfIdentified) isViewMsg() {}

type ChatArrived struct {
	Chat types.ChatMessage
}

func (ChatArrived) isViewMsg() {}

type StatusUpdate struct{ Text string }

func (StatusUpdate) isViewMsg() {}

// CommandDone reports a dispatched command back to the view.
type CommandDone struct {
	Result command.Result
}

func (CommandDone) isViewMsg() {}

// AssetLoaded and AssetFailed answer a load started by the render with
// generation Gen. Answers for older generations are dropped.
type AssetLoaded struct {
	Gen    uint64
	NodeID int
	Size   image.Point
}

func (AssetLoaded) isViewMsg() {}

type AssetFailed struct {
	Gen    uint64
	NodeID int
	Err    error
}

func (AssetFailed) isViewMsg() {}

// Resize reports a new container width for the dora strip.
type Resize struct{ Width float64 }

func (Resize) isViewMsg() {}

type Subscribe struct {
	ID     string
	Outbox chan Frame // where this subscriber wants to receive frames
	// Latest keeps a subscriber that falls behind: its oldest queued frame
	// is replaced instead of the outbox being closed.
	Latest bool
}

func (Subscribe) isViewMsg() {}

type Unsubscribe struct{ ID string }

func (Unsubscribe) isViewMsg() {}

type GetFrame struct {
	Reply chan Frame
}

func (GetFrame) isViewMsg() {}

// Stats is a race-free look at the loop's bookkeeping.
type Stats struct {
	Gen         uint64
	Buffer      buffer.State
	Pending     int
	Dropped     int
	Subscribers int
	Renderer    string
	Panics      int
	Unrecorded  int // journal records dropped on a full queue
}

type GetStats struct {
	Reply chan Stats
}

func (GetStats) isViewMsg() {}

type Shutdown struct{}

func (Shutdown) isViewMsg() {}
