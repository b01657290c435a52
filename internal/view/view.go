// Package view owns everything on screen. A single goroutine holds the
// snapshot buffer, the current frame and the asset load state; transport,
// asset loads and surfaces talk to it only through its inbox.
package view

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/DoyleJ11/toppan-client/internal/buffer"
	"github.com/DoyleJ11/toppan-client/internal/command"
	"github.com/DoyleJ11/toppan-client/internal/dora"
	"github.com/DoyleJ11/toppan-client/internal/render"
	"github.com/DoyleJ11/toppan-client/pkg/types"
)

const (
	DefaultContainerWidth = 480
	DefaultChatLimit      = 50
	DefaultLoadParallel   = 8
	DefaultFrameInterval  = 16 * time.Millisecond
	DefaultRecordQueue    = 256
)

var ErrStopped = errors.New("view stopped")

// recordTimeout bounds one journal write, including the ones drained after
// the view has stopped.
const recordTimeout = 5 * time.Second

// Recorder is told about every snapshot that reached the screen.
type Recorder interface {
	Record(ctx context.Context, gen uint64, mySeat int, snap types.Snapshot) error
}

type Options struct {
	Renderer       render.Renderer
	Loader         render.Loader // nil disables asset loads
	Metrics        dora.Metrics
	ContainerWidth float64
	MaxPending     int
	ChatLimit      int
	LoadParallel   int64
	FrameInterval  time.Duration // minimum gap between broadcasts
	Recorder       Recorder
	RecordQueue    int
	Logger         *zap.Logger
}

type record struct {
	gen  uint64
	seat int
	snap types.Snapshot
}

type subscriber struct {
	out    chan Frame
	latest bool
}

type Context struct {
	inbox  chan Msg
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger

	renderer  render.Renderer
	loader    render.Loader
	loadSlots *semaphore.Weighted
	recorder  Recorder
	records   chan record
	stopped   chan struct{}
	metrics   dora.Metrics
	container float64
	chatLimit int

	buf      *buffer.Buffer
	gen      uint64
	latest   atomic.Uint64 // mirrors gen for load goroutines
	frame    Frame
	retries  map[int]*render.Retry
	lastSnap types.Snapshot
	sid      string
	roomID   string
	status   string
	chat     []string

	lastPhase types.Phase
	draft     BetDraft

	clients    map[string]subscriber
	dirty      bool
	interval   time.Duration
	lastSent   time.Time
	flushC     <-chan time.Time
	panics     int
	unrecorded int
}

func New(parent context.Context, opts Options) *Context {
	ctx, cancel := context.WithCancel(parent)
	if opts.Renderer == nil {
		opts.Renderer = render.TextRenderer{}
	}
	if opts.Metrics.TileHeight == 0 {
		opts.Metrics = dora.DefaultMetrics()
	}
	if opts.ContainerWidth <= 0 {
		opts.ContainerWidth = DefaultContainerWidth
	}
	if opts.ChatLimit <= 0 {
		opts.ChatLimit = DefaultChatLimit
	}
	if opts.LoadParallel <= 0 {
		opts.LoadParallel = DefaultLoadParallel
	}
	if opts.RecordQueue <= 0 {
		opts.RecordQueue = DefaultRecordQueue
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	c := &Context{
		inbox:     make(chan Msg, 256),
		ctx:       ctx,
		cancel:    cancel,
		log:       opts.Logger.Named("view"),
		renderer:  opts.Renderer,
		loader:    opts.Loader,
		loadSlots: semaphore.NewWeighted(opts.LoadParallel),
		recorder:  opts.Recorder,
		stopped:   make(chan struct{}),
		metrics:   opts.Metrics,
		container: opts.ContainerWidth,
		chatLimit: opts.ChatLimit,
		buf:       buffer.New(opts.MaxPending),
		retries:   make(map[int]*render.Retry),
		clients:   make(map[string]subscriber),
		interval:  opts.FrameInterval,
	}
	c.frame = Frame{Renderer: c.renderer.Name(), Dora: DoraView{Hidden: true, Scale: 1}}

	if c.recorder != nil {
		c.records = make(chan record, opts.RecordQueue)
		go c.writeRecords()
	}
	go c.loop()
	return c
}

// Inbox exposes the loop's mailbox to the transport and surfaces.
func (c *Context) Inbox() chan<- Msg { return c.inbox }

// Post delivers m unless the loop has stopped.
func (c *Context) Post(m Msg) bool {
	if c.ctx.Err() != nil {
		return false
	}
	select {
	case c.inbox <- m:
		return true
	case <-c.ctx.Done():
		return false
	}
}

// Report lets the command dispatcher feed results back into the view.
func (c *Context) Report(r command.Result) { c.Post(CommandDone{Result: r}) }

// Hello, State and Chat let the transport feed server pushes in.
func (c *Context) Hello(h types.Hello)      { c.Post(SelfIdentified{SID: h.SID}) }
func (c *Context) State(s types.Snapshot)   { c.Post(SnapshotArrived{Snapshot: s}) }
func (c *Context) Chat(m types.ChatMessage) { c.Post(ChatArrived{Chat: m}) }

// Frame asks the loop for a copy of the current frame.
func (c *Context) Frame(ctx context.Context) (Frame, error) {
	reply := make(chan Frame, 1)
	if !c.Post(GetFrame{Reply: reply}) {
		return Frame{}, ErrStopped
	}
	select {
	case f := <-reply:
		return f, nil
	case <-c.ctx.Done():
		return Frame{}, ErrStopped
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Done is closed once the loop has stopped.
func (c *Context) Done() <-chan struct{} { return c.ctx.Done() }

// Stopped is closed after the loop has stopped and every queued journal
// record has been written.
func (c *Context) Stopped() <-chan struct{} { return c.stopped }

func (c *Context) loop() {
	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return

		case <-c.flushC:
			c.flushC = nil
			c.flush()

		case m := <-c.inbox:
			if stop := c.handle(m); stop {
				c.shutdown()
				return
			}
			// Coalesce bursts: publish once the inbox is drained, and no
			// more often than once per interval.
			if c.dirty && len(c.inbox) == 0 && c.flushC == nil {
				if wait := c.interval - time.Since(c.lastSent); wait > 0 {
					c.flushC = time.After(wait)
				} else {
					c.broadcast()
				}
			}
		}
	}
}

func (c *Context) handle(m Msg) bool {
	switch msg := m.(type) {
	case SnapshotArrived:
		c.lastSnap = msg.Snapshot
		c.renderAll(c.buf.Push(msg.Snapshot))

	case SurfaceReady:
		c.renderAll(c.buf.MarkReady())

	case SelfIdentified:
		c.sid = msg.SID

	case ChatArrived:
		c.chat = append(c.chat, chatLine(msg.Chat, c.lastSnap.Seats))
		if over := len(c.chat) - c.chatLimit; over > 0 {
			c.chat = append([]string(nil), c.chat[over:]...)
		}
		c.frame.Chat = c.chat
		c.dirty = true

	case StatusUpdate:
		c.setStatus(msg.Text)

	case CommandDone:
		c.commandDone(msg.Result)

	case AssetLoaded:
		c.assetLoaded(msg)

	case AssetFailed:
		c.assetFailed(msg)

	case Resize:
		// A width with no room for the strip is a transient measurement.
		if c.metrics.Room(msg.Width) > 0 {
			c.container = msg.Width
			c.frame.Dora.Scale = c.metrics.Scale(c.container, c.frame.Dora.Widths[0], c.frame.Dora.Widths[1])
			c.dirty = true
		}

	case Subscribe:
		s := subscriber{out: msg.Outbox, latest: msg.Latest}
		c.clients[msg.ID] = s
		c.deliver(msg.ID, s, c.frame.Clone())

	case Unsubscribe:
		if s, ok := c.clients[msg.ID]; ok {
			close(s.out)
			delete(c.clients, msg.ID)
		}

	case GetFrame:
		c.flush()
		msg.Reply <- c.frame.Clone()

	case GetStats:
		c.flush()
		msg.Reply <- Stats{
			Gen:         c.gen,
			Buffer:      c.buf.State(),
			Pending:     c.buf.Pending(),
			Dropped:     c.buf.Dropped(),
			Subscribers: len(c.clients),
			Renderer:    c.renderer.Name(),
			Panics:      c.panics,
			Unrecorded:  c.unrecorded,
		}

	case Shutdown:
		return true
	}
	return false
}

func (c *Context) renderAll(ready []buffer.Ready) {
	for _, r := range ready {
		c.safeRender(r)
	}
}

// safeRender draws one snapshot. A panic loses that snapshot only; the
// previous frame stays on screen and the loop keeps going.
func (c *Context) safeRender(r buffer.Ready) {
	defer func() {
		if p := recover(); p != nil {
			c.panics++
			c.log.Error("render failed",
				zap.Any("panic", p),
				zap.Int("wall_count", r.Snapshot.WallCount),
				zap.Stack("stack"))
		}
	}()
	c.render(r)
}

func (c *Context) render(r buffer.Ready) {
	snap := r.Snapshot
	if snap.Phase != c.lastPhase {
		c.lastPhase = snap.Phase
		if snap.Phase != types.PhaseBetting {
			c.draft.LastSent = nil
		}
		c.draft.Confirmed = false
	}
	c.status = fmt.Sprintf("players: %d", len(snap.Players))

	f := c.compose(snap, r.Seat)
	gen := c.gen + 1
	f.Gen = gen
	c.gen = gen
	c.latest.Store(gen)
	c.frame = f
	c.dirty = true

	clear(c.retries)
	for i := range f.Nodes {
		n := &c.frame.Nodes[i]
		if n.Kind != render.KindImage || c.loader == nil {
			continue
		}
		c.retries[n.ID] = &render.Retry{Candidates: n.Candidates}
		c.startLoad(gen, n.ID, n.Src)
	}

	if c.records != nil {
		select {
		case c.records <- record{gen: gen, seat: r.Seat, snap: snap}:
		default:
			c.unrecorded++
			c.log.Warn("journal queue full", zap.Uint64("gen", gen), zap.Int("unrecorded", c.unrecorded))
		}
	}
}

// writeRecords is the only journal writer, so rows land in render order.
func (c *Context) writeRecords() {
	defer close(c.stopped)
	for r := range c.records {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), recordTimeout)
		if err := c.recorder.Record(ctx, r.gen, r.seat, r.snap); err != nil {
			c.log.Warn("journal write failed", zap.Uint64("gen", r.gen), zap.Error(err))
		}
		cancel()
	}
}

func (c *Context) startLoad(gen uint64, id int, src string) {
	go func() {
		if err := c.loadSlots.Acquire(c.ctx, 1); err != nil {
			return
		}
		defer c.loadSlots.Release(1)
		if c.latest.Load() != gen {
			return
		}
		size, err := c.loader.Load(c.ctx, src)
		if err != nil {
			c.Post(AssetFailed{Gen: gen, NodeID: id, Err: err})
			return
		}
		c.Post(AssetLoaded{Gen: gen, NodeID: id, Size: size})
	}()
}

func (c *Context) node(gen uint64, id int) *render.Node {
	if gen != c.gen || id < 0 || id >= len(c.frame.Nodes) {
		return nil
	}
	n := &c.frame.Nodes[id]
	if n.State != render.LoadPending {
		return nil
	}
	return n
}

func (c *Context) assetLoaded(msg AssetLoaded) {
	n := c.node(msg.Gen, msg.NodeID)
	if n == nil {
		return
	}
	n.State = render.LoadDone
	n.NaturalW, n.NaturalH = msg.Size.X, msg.Size.Y
	if c.isDoraNode(n.ID) {
		n.ForceHeight(c.metrics.TileHeight, c.metrics.TileWidth)
		c.frame.Dora.Widths = c.measureDora(c.frame)
		c.frame.Dora.Scale = c.metrics.Scale(c.container, c.frame.Dora.Widths[0], c.frame.Dora.Widths[1])
	} else {
		n.ForceHeight(n.Height, n.Width)
	}
	delete(c.retries, n.ID)
	c.dirty = true
}

func (c *Context) assetFailed(msg AssetFailed) {
	n := c.node(msg.Gen, msg.NodeID)
	if n == nil {
		return
	}
	retry, ok := c.retries[n.ID]
	if !ok {
		return
	}
	next, ok := retry.Fail()
	if !ok {
		c.log.Debug("asset broken", zap.String("asset", n.Asset), zap.Error(msg.Err))
		n.State = render.LoadBroken
		n.Src = ""
		delete(c.retries, n.ID)
		c.dirty = true
		return
	}
	n.Src = next
	c.dirty = true
	c.startLoad(msg.Gen, n.ID, next)
}

func (c *Context) setStatus(text string) {
	c.status = text
	c.frame.Status = text
	c.dirty = true
}

func (c *Context) commandDone(r command.Result) {
	switch r.Command.Name {
	case command.SetBetPointsCmd:
		// The bet went out unless it was refused locally.
		if bet, ok := r.Command.Bet(); ok && (r.Err == nil || command.IsRejection(r.Err)) {
			c.draft.LastSent = types.IntPtr(bet)
			c.draft.Confirmed = r.Err == nil
			c.frame.BetDraft = c.draft
			c.dirty = true
		}
	case command.CreateRoomCmd:
		if r.Err == nil && r.Ack.RoomID != "" {
			c.roomID = r.Ack.RoomID
			c.frame.RoomID = c.roomID
			c.dirty = true
		}
	case command.JoinRoomCmd:
		if r.Err == nil {
			if j, ok := r.Command.Data.(types.JoinRoom); ok {
				c.roomID = j.RoomID
				c.frame.RoomID = c.roomID
				c.dirty = true
			}
		}
	}
	if r.Status != "" {
		c.setStatus(r.Status)
	}
}

func (c *Context) shutdown() {
	c.cancel()
	for id, s := range c.clients {
		close(s.out) // no more frames
		delete(c.clients, id)
	}
	if c.records != nil {
		close(c.records) // the writer drains what is queued
	} else {
		close(c.stopped)
	}
}

// flush publishes a pending frame so a reply never runs ahead of what
// subscribers have seen.
func (c *Context) flush() {
	if c.dirty {
		c.broadcast()
	}
}

func (c *Context) broadcast() {
	c.dirty = false
	c.lastSent = time.Now()
	for id, s := range c.clients {
		c.deliver(id, s, c.frame.Clone())
	}
}

func (c *Context) deliver(id string, s subscriber, f Frame) {
	select {
	case s.out <- f:
		return
	default:
	}
	if s.latest {
		// The loop is the only sender, so once a stale frame is taken out
		// there is room for this one.
		select {
		case <-s.out:
		default:
		}
		select {
		case s.out <- f:
		default:
		}
		return
	}
	// Subscriber is slow/full - drop it.
	close(s.out)
	delete(c.clients, id)
}
