package types

import "encoding/json"

// Server -> Client
// hello:
//   sid: string                      // connection id, compared with Snapshot.Host
//
// state: Snapshot (see snapshot.go)
//
// chat:
//   name?: string
//   sid?: string
//   seat_label?: string
//   seat?: number
//   system?: boolean
//   message: string
//
// ack (reply to a command, same id):
//   ok: boolean
//   error?: string
//   room_id?: string
//
// Client -> Server
// command:
//   id: number
//   name: "create_room" | "join_room" | "set_ready" | "start_game" |
//         "draw_tile" | "stay" | "set_initial_points" | "set_bet_points" |
//         "dealer_reset" | "chat"
//   data: per-command payload (see CreateRoom .. DealerReset below)

const (
	TypeHello   = "hello"
	TypeState   = "state"
	TypeChat    = "chat"
	TypeAck     = "ack"
	TypeCommand = "command"
)

// Envelope is the single frame shape used in both directions.
type Envelope struct {
	Type string          `json:"type"`
	ID   uint64          `json:"id,omitempty"`
	Name string          `json:"name,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type Hello struct {
	SID string `json:"sid"`
}

type ChatMessage struct {
	Name      string `json:"name,omitempty"`
	SID       string `json:"sid,omitempty"`
	SeatLabel string `json:"seat_label,omitempty"`
	Seat      *int   `json:"seat,omitempty"`
	System    bool   `json:"system,omitempty"`
	Message   string `json:"message"`
}

type Ack struct {
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	RoomID string `json:"room_id,omitempty"`
}

// Command payloads.

type CreateRoom struct {
	Name string `json:"name"`
}

type JoinRoom struct {
	RoomID string `json:"room_id"`
	Name   string `json:"name"`
}

type SetReady struct {
	Ready bool `json:"ready"`
}

type SetInitialPoints struct {
	Points int `json:"points"`
}

type SetBetPoints struct {
	Bet int `json:"bet"`
}

type DealerReset struct {
	Reset bool `json:"reset"`
}

type Chat struct {
	Message string `json:"message"`
}

type Empty struct{}
