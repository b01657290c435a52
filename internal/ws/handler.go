package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/toppan-client/internal/command"
	"github.com/DoyleJ11/toppan-client/internal/types"
	"github.com/DoyleJ11/toppan-client/internal/view"
)

// Handler streams frames to a browser viewer and runs the commands it sends.
func Handler(v *view.Context, d *command.Dispatcher, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ws")
	return func(w http.ResponseWriter, r *http.Request) {
		// Viewers are local pages; anything served from loopback may connect.
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
		})
		if err != nil {
			log.Debug("accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan view.Frame, 8)
		viewerID := randID(6)

		if !v.Post(view.Subscribe{ID: viewerID, Outbox: out}) {
			return
		}
		defer v.Post(view.Unsubscribe{ID: viewerID})
		log.Debug("viewer joined", zap.String("viewer", viewerID))

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for f := range out {
				writeJSON(writeCtx, conn, types.ViewerUpdate{Type: types.UpdateFrame, Frame: &f})
			}
			// Dropped for being slow, or the view stopped.
			conn.Close(websocket.StatusGoingAway, "frames stopped")
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				// Treat clean close/going-away as normal:
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				log.Debug("viewer read ended", zap.String("viewer", viewerID), zap.Error(err))
				return
			}

			var vm types.ViewerMessage
			if err := json.Unmarshal(data, &vm); err != nil {
				writeJSON(r.Context(), conn, types.ViewerUpdate{Type: types.UpdateError, Error: "bad json"})
				continue
			}

			switch vm.Type {
			case types.ViewerResize:
				v.Post(view.Resize{Width: vm.Width})
			case types.ViewerCommand:
				writeJSON(r.Context(), conn, run(r.Context(), v, d, vm))
			default:
				writeJSON(r.Context(), conn, types.ViewerUpdate{Type: types.UpdateError, Error: "unknown type"})
			}
		}
	}
}

func run(ctx context.Context, v *view.Context, d *command.Dispatcher, vm types.ViewerMessage) types.ViewerUpdate {
	res := types.ViewerUpdate{Type: types.UpdateResult, Name: vm.Name}
	cmd, err := command.Parse(vm.Name, vm.Form)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	f, err := v.Frame(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if err := d.Dispatch(ctx, f.Controls, cmd); err != nil {
		res.Error = err.Error()
		return res
	}
	res.OK = true
	return res
}

func writeJSON(ctx context.Context, conn *websocket.Conn, u types.ViewerUpdate) {
	payload, _ := json.Marshal(u)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_ = conn.Write(ctx, websocket.MessageText, payload)
}

func randID(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
