// Package term is the terminal surface: it draws frames with tcell and turns
// key presses into commands.
package term

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/DoyleJ11/toppan-client/internal/command"
	"github.com/DoyleJ11/toppan-client/internal/view"
)

// Approximate pixels per terminal column, for the dora fit computation.
const pxPerColumn = 8

type inputMode int

const (
	modeKeys inputMode = iota
	modeChat
	modePoints
)

type Surface struct {
	screen tcell.Screen
	view   *view.Context
	disp   *command.Dispatcher
	log    *zap.Logger

	last  view.Frame
	bet   int
	betOK bool // bet seeded from the server for this phase
	mode  inputMode
	input []rune
}

func New(screen tcell.Screen, v *view.Context, d *command.Dispatcher, log *zap.Logger) *Surface {
	if log == nil {
		log = zap.NewNop()
	}
	return &Surface{screen: screen, view: v, disp: d, log: log.Named("term")}
}

// Run owns the screen until ctx ends or the user quits.
func (s *Surface) Run(ctx context.Context) error {
	if err := s.screen.Init(); err != nil {
		return err
	}
	defer s.screen.Fini()

	frames := make(chan view.Frame, 16)
	if !s.view.Post(view.Subscribe{ID: "term", Outbox: frames, Latest: true}) {
		return view.ErrStopped
	}
	defer s.view.Post(view.Unsubscribe{ID: "term"})
	s.view.Post(view.SurfaceReady{})
	s.resize()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go s.screen.ChannelEvents(events, quit)

	for {
		select {
		case <-ctx.Done():
			return nil
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			s.apply(f)
			s.draw()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				s.screen.Sync()
				s.resize()
				s.draw()
			case *tcell.EventKey:
				if stop := s.key(ctx, ev); stop {
					return nil
				}
				s.draw()
			}
		}
	}
}

func (s *Surface) resize() {
	w, _ := s.screen.Size()
	s.view.Post(view.Resize{Width: float64(w * pxPerColumn)})
}

func (s *Surface) apply(f view.Frame) {
	if f.Phase != s.last.Phase {
		s.betOK = false
	}
	if !s.betOK && f.Controls.BetInput != nil {
		s.bet = *f.Controls.BetInput
		s.betOK = true
	}
	s.last = f
}

func (s *Surface) draw() {
	Draw(s.screen, s.last, s.bet, s.prompt())
}

func (s *Surface) prompt() string {
	switch s.mode {
	case modeChat:
		return "chat: " + string(s.input)
	case modePoints:
		return "points: " + string(s.input)
	}
	return ""
}

// key handles one key press and reports whether the user asked to quit.
func (s *Surface) key(ctx context.Context, ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}
	if s.mode != modeKeys {
		s.edit(ctx, ev)
		return false
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	switch ev.Rune() {
	case 'q':
		return true
	case 'c':
		s.mode = modeChat
	case 'p':
		s.mode = modePoints
	case '+':
		s.bet++
	case '-':
		if s.bet > 0 {
			s.bet--
		}
	default:
		if cmd, ok := KeyCommand(ev.Rune(), s.bet); ok {
			s.dispatch(ctx, cmd)
		}
	}
	return false
}

func (s *Surface) edit(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape:
		s.mode, s.input = modeKeys, nil
	case tcell.KeyEnter:
		text := string(s.input)
		mode := s.mode
		s.mode, s.input = modeKeys, nil
		switch mode {
		case modeChat:
			if cmd, err := command.Chat(text); err == nil {
				s.dispatch(ctx, cmd)
			}
		case modePoints:
			s.dispatch(ctx, command.SetInitialPoints(text))
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(s.input); n > 0 {
			s.input = s.input[:n-1]
		}
	case tcell.KeyRune:
		s.input = append(s.input, ev.Rune())
	}
}

// dispatch runs cmd off the UI goroutine; the outcome comes back through
// the view as a status line.
func (s *Surface) dispatch(ctx context.Context, cmd command.Command) {
	ctl := s.last.Controls
	go func() {
		if err := s.disp.Dispatch(ctx, ctl, cmd); err != nil {
			s.log.Debug("command not applied", zap.String("cmd", string(cmd.Name)), zap.Error(err))
		}
	}()
}

// KeyCommand maps a key to the command it triggers.
func KeyCommand(r rune, bet int) (command.Command, bool) {
	switch r {
	case 'r':
		return command.SetReady(true), true
	case 'u':
		return command.SetReady(false), true
	case 's':
		return command.StartGame(), true
	case 'd':
		return command.DrawTile(), true
	case 't':
		return command.Stay(), true
	case 'b':
		return command.BetPoints(bet), true
	case 'y':
		return command.DealerReset(true), true
	case 'n':
		return command.DealerReset(false), true
	}
	return command.Command{}, false
}
