// Package command builds the requests a player can send, gates them against
// the controls currently shown, and reports the server's answer.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/DoyleJ11/toppan-client/pkg/types"
	"golang.org/x/text/width"
)

var ErrWrongPhase = errors.New("not available in this phase")
var ErrNotHost = errors.New("only the host can start")
var ErrNotEnoughPlayers = errors.New("need at least 2 players")
var ErrNotYourTurn = errors.New("not your turn")
var ErrDealerCannotBet = errors.New("the dealer does not bet")
var ErrNotDealer = errors.New("only the dealer can choose")
var ErrRoomIDRequired = errors.New("enter a room id")
var ErrEmptyMessage = errors.New("empty message")
var ErrUnknownCommand = errors.New("unknown command")

type Name string

const (
	CreateRoomCmd       Name = "create_room"
	JoinRoomCmd         Name = "join_room"
	SetReadyCmd         Name = "set_ready"
	StartGameCmd        Name = "start_game"
	DrawTileCmd         Name = "draw_tile"
	StayCmd             Name = "stay"
	SetInitialPointsCmd Name = "set_initial_points"
	SetBetPointsCmd     Name = "set_bet_points"
	DealerResetCmd      Name = "dealer_reset"
	ChatCmd             Name = "chat"
)

const (
	DefaultPlayerName    = "Player"
	DefaultInitialPoints = 300
	DefaultBet           = 0
)

// Command is one request with its wire payload.
type Command struct {
	Name Name
	Data any
}

// Acked reports whether the server answers the command with an ack.
func (c Command) Acked() bool { return c.Name != ChatCmd }

// Rejection is a command the server answered with ok=false.
type Rejection struct {
	Command Name
	Reason  string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s rejected: %s", r.Command, r.Reason)
}

func playerName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return DefaultPlayerName
}

func CreateRoom(name string) Command {
	return Command{Name: CreateRoomCmd, Data: types.CreateRoom{Name: playerName(name)}}
}

func JoinRoom(roomID, name string) (Command, error) {
	rid := strings.TrimSpace(roomID)
	if rid == "" {
		return Command{}, ErrRoomIDRequired
	}
	return Command{Name: JoinRoomCmd, Data: types.JoinRoom{RoomID: rid, Name: playerName(name)}}, nil
}

func SetReady(ready bool) Command {
	return Command{Name: SetReadyCmd, Data: types.SetReady{Ready: ready}}
}

func StartGame() Command { return Command{Name: StartGameCmd, Data: types.Empty{}} }
func DrawTile() Command  { return Command{Name: DrawTileCmd, Data: types.Empty{}} }
func Stay() Command      { return Command{Name: StayCmd, Data: types.Empty{}} }

// SetInitialPoints parses raw and falls back to DefaultInitialPoints.
func SetInitialPoints(raw string) Command {
	return Command{Name: SetInitialPointsCmd, Data: types.SetInitialPoints{Points: parseInt(raw, DefaultInitialPoints)}}
}

// SetBetPoints parses raw and falls back to DefaultBet.
func SetBetPoints(raw string) Command {
	return BetPoints(parseInt(raw, DefaultBet))
}

func BetPoints(bet int) Command {
	return Command{Name: SetBetPointsCmd, Data: types.SetBetPoints{Bet: bet}}
}

func DealerReset(reset bool) Command {
	return Command{Name: DealerResetCmd, Data: types.DealerReset{Reset: reset}}
}

func Chat(message string) (Command, error) {
	m := strings.TrimSpace(message)
	if m == "" {
		return Command{}, ErrEmptyMessage
	}
	return Command{Name: ChatCmd, Data: types.Chat{Message: m}}, nil
}

// Bet returns the amount carried by a set_bet_points command.
func (c Command) Bet() (int, bool) {
	b, ok := c.Data.(types.SetBetPoints)
	return b.Bet, ok
}

func parseInt(raw string, def int) int {
	s := width.Narrow.String(strings.TrimSpace(raw))
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Parse builds a command from a name and loosely typed form values, the way
// the viewer HTTP API receives them.
func Parse(name string, form map[string]string) (Command, error) {
	switch Name(name) {
	case CreateRoomCmd:
		return CreateRoom(form["name"]), nil
	case JoinRoomCmd:
		return JoinRoom(form["room_id"], form["name"])
	case SetReadyCmd:
		return SetReady(parseBool(form["ready"], true)), nil
	case StartGameCmd:
		return StartGame(), nil
	case DrawTileCmd:
		return DrawTile(), nil
	case StayCmd:
		return Stay(), nil
	case SetInitialPointsCmd:
		return SetInitialPoints(form["points"]), nil
	case SetBetPointsCmd:
		return SetBetPoints(form["bet"]), nil
	case DealerResetCmd:
		return DealerReset(parseBool(form["reset"], false)), nil
	case ChatCmd:
		return Chat(form["message"])
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

func parseBool(raw string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return b
}
