package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/toppan-client/internal/command"
	"github.com/DoyleJ11/toppan-client/internal/config"
	"github.com/DoyleJ11/toppan-client/internal/httpapi"
	"github.com/DoyleJ11/toppan-client/internal/journal"
	"github.com/DoyleJ11/toppan-client/internal/logging"
	"github.com/DoyleJ11/toppan-client/internal/render"
	"github.com/DoyleJ11/toppan-client/internal/term"
	"github.com/DoyleJ11/toppan-client/internal/transport"
	"github.com/DoyleJ11/toppan-client/internal/view"
)

type recorder interface {
	view.Recorder
	Close() error
}

func main() {
	path := flag.String("config", "", "YAML config file")
	flag.Parse()

	if err := run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) (err error) {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Dev, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	var loader render.Loader
	if cfg.Assets.Enabled {
		l, err := render.NewHTTPLoader(cfg.Assets.Origin, &http.Client{Timeout: 5 * time.Second}, render.DefaultCacheSize)
		if err != nil {
			return err
		}
		loader = l
	}
	renderer, err := render.Resolve(ctx, cfg.Assets.Base, cfg.Assets.Enabled, loader)
	if err != nil {
		log.Warn("using text tiles", zap.Error(err))
		loader = nil
	}

	var rec recorder = journal.Nop{}
	if cfg.Journal.DSN != "" {
		j, err := journal.Open(cfg.Journal.DSN)
		if err != nil {
			return err
		}
		log.Info("journal open", zap.String("session", j.Session()))
		rec = j
	}
	defer func() { err = multierr.Append(err, rec.Close()) }()

	v := view.New(ctx, view.Options{
		Renderer:       renderer,
		Loader:         loader,
		ContainerWidth: cfg.Table.ContainerWidth,
		MaxPending:     cfg.Table.MaxPending,
		Recorder:       rec,
		Logger:         log,
	})
	// Runs before the journal closes: queued records are written first.
	defer func() {
		cancel()
		<-v.Stopped()
	}()

	client, err := transport.Dial(ctx, cfg.Server.URL, v, transport.Options{Logger: log})
	if err != nil {
		return err
	}
	disp := command.NewDispatcher(client, v, log)

	screen, err := tcell.NewScreen()
	if err != nil {
		return multierr.Append(err, client.Close())
	}
	surface := term.New(screen, v, disp, log)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return client.Run(gctx)
	})

	g.Go(func() error {
		defer cancel()
		return surface.Run(gctx)
	})

	g.Go(func() error {
		enter(gctx, cfg.Player, v, disp, log)
		return nil
	})

	if cfg.Viewer.Listen != "" {
		srv := &http.Server{
			Addr: cfg.Viewer.Listen,
			Handler: httpapi.SetupRoutes(httpapi.Deps{
				View:       v,
				Dispatcher: disp,
				AssetDir:   cfg.Assets.Dir,
				Logger:     log,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Info("viewer listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, scancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer scancel()
			return srv.Shutdown(sctx)
		})
	}

	err = g.Wait()
	select {
	case <-client.Done():
	default:
		err = multierr.Append(err, client.Close())
	}
	return err
}

// enter creates a room, or joins the configured one.
func enter(ctx context.Context, p config.PlayerConfig, v *view.Context, d *command.Dispatcher, log *zap.Logger) {
	cmd := command.CreateRoom(p.Name)
	if p.Room != "" {
		var err error
		if cmd, err = command.JoinRoom(p.Room, p.Name); err != nil {
			log.Warn("bad room id", zap.Error(err))
			return
		}
	}
	f, err := v.Frame(ctx)
	if err != nil {
		return
	}
	if err := d.Dispatch(ctx, f.Controls, cmd); err != nil {
		log.Warn("could not enter a room", zap.String("cmd", string(cmd.Name)), zap.Error(err))
	}
}
