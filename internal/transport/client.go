// Package transport is the websocket link to the game server. It decodes
// server pushes for a Handler and correlates command acks by id.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/toppan-client/pkg/types"
)

var ErrClosed = errors.New("transport closed")
var ErrAckTimeout = errors.New("no ack from server")

// Handler receives server pushes in the order they were read.
type Handler interface {
	Hello(types.Hello)
	State(types.Snapshot)
	Chat(types.ChatMessage)
}

type Options struct {
	ReadLimit    int64         // bytes per message
	ReadTimeout  time.Duration // 0 waits forever
	WriteTimeout time.Duration
	Logger       *zap.Logger
}

const (
	DefaultReadLimit    = 1 << 20
	DefaultWriteTimeout = 3 * time.Second
)

type Client struct {
	conn *websocket.Conn
	h    Handler
	log  *zap.Logger
	opts Options

	nextID  atomic.Uint64
	mu      sync.Mutex
	waiting map[uint64]chan types.Ack

	done    chan struct{}
	closeMu sync.Once
}

// Dial connects to the server's websocket endpoint. Call Run to start
// reading.
func Dial(ctx context.Context, url string, h Handler, opts Options) (*Client, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newClient(conn, h, opts), nil
}

func newClient(conn *websocket.Conn, h Handler, opts Options) *Client {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = DefaultReadLimit
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	conn.SetReadLimit(opts.ReadLimit)
	return &Client{
		conn:    conn,
		h:       h,
		log:     opts.Logger.Named("transport"),
		opts:    opts,
		waiting: make(map[uint64]chan types.Ack),
		done:    make(chan struct{}),
	}
}

// Run reads until the connection ends. A normal close returns nil.
func (c *Client) Run(ctx context.Context) error {
	defer c.markDone()
	for {
		readCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.opts.ReadTimeout > 0 {
			readCtx, cancel = context.WithTimeout(ctx, c.opts.ReadTimeout)
		}
		_, data, err := c.conn.Read(readCtx)
		cancel()
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		c.dispatch(data)
	}
}

func (c *Client) dispatch(data []byte) {
	var env types.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.log.Warn("bad frame", zap.Error(err))
		return
	}

	switch env.Type {
	case types.TypeHello:
		var h types.Hello
		if c.decode(env, &h) {
			c.h.Hello(h)
		}
	case types.TypeState:
		var s types.Snapshot
		if c.decode(env, &s) {
			c.h.State(s)
		}
	case types.TypeChat:
		var m types.ChatMessage
		if c.decode(env, &m) {
			c.h.Chat(m)
		}
	case types.TypeAck:
		var a types.Ack
		if c.decode(env, &a) {
			c.resolve(env.ID, a)
		}
	default:
		c.log.Debug("unknown frame type", zap.String("type", env.Type))
	}
}

func (c *Client) decode(env types.Envelope, v any) bool {
	if err := json.Unmarshal(env.Data, v); err != nil {
		c.log.Warn("bad payload", zap.String("type", env.Type), zap.Error(err))
		return false
	}
	return true
}

func (c *Client) resolve(id uint64, a types.Ack) {
	c.mu.Lock()
	ch, ok := c.waiting[id]
	delete(c.waiting, id)
	c.mu.Unlock()
	if !ok {
		c.log.Debug("ack without request", zap.Uint64("id", id))
		return
	}
	ch <- a
}

// Request sends a command and waits for its ack.
func (c *Client) Request(ctx context.Context, name string, data any) (types.Ack, error) {
	id := c.nextID.Add(1)
	ch := make(chan types.Ack, 1)
	c.mu.Lock()
	c.waiting[id] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.waiting, id)
		c.mu.Unlock()
	}()

	if err := c.write(ctx, id, name, data); err != nil {
		return types.Ack{}, err
	}

	select {
	case a := <-ch:
		return a, nil
	case <-c.done:
		return types.Ack{}, ErrClosed
	case <-ctx.Done():
		return types.Ack{}, fmt.Errorf("%w: %s: %w", ErrAckTimeout, name, ctx.Err())
	}
}

// Notify sends a command that gets no ack.
func (c *Client) Notify(ctx context.Context, name string, data any) error {
	return c.write(ctx, 0, name, data)
}

func (c *Client) write(ctx context.Context, id uint64, name string, data any) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	payload, err := json.Marshal(types.Envelope{Type: types.TypeCommand, ID: id, Name: name, Data: raw})
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
	defer cancel()
	if err := c.conn.Write(wctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// Done is closed once Run has returned.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) markDone() {
	c.closeMu.Do(func() { close(c.done) })
}

func (c *Client) Close() error {
	err := c.conn.Close(websocket.StatusNormalClosure, "bye")
	if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
		return nil
	}
	return err
}
