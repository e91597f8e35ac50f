package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tsumogiri/riichi-client/internal/api"
	"github.com/tsumogiri/riichi-client/internal/dependencies/clock"
	"github.com/tsumogiri/riichi-client/internal/factory"
	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/presentation"
	"github.com/tsumogiri/riichi-client/internal/services/dispatch"
	"github.com/tsumogiri/riichi-client/internal/services/session"
	"github.com/tsumogiri/riichi-client/internal/storage/redis"
	"github.com/tsumogiri/riichi-client/internal/transport"
)

// sessionOptions selects how a live session is joined.
type sessionOptions struct {
	username string
	observe  bool
	record   bool
}

// runSession connects, joins, and runs the event loop until the session ends
// or the user interrupts.
func runSession(opts sessionOptions) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := newApp()
	if err != nil {
		return err
	}

	var tap transport.Recorder
	var finishRecording func()
	if opts.record {
		recorder, err := app.ReplayService.StartRecording(ctx, opts.username, cfg.Server.Addr, opts.observe)
		if err != nil {
			return err
		}
		tap = recorder
		finishRecording = func() {
			finishCtx, finishCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer finishCancel()
			if err := recorder.Finish(finishCtx); err != nil {
				logger.Warn("could not finish replay", slog.String("error", err.Error()))
			} else {
				fmt.Fprintf(os.Stdout, "replay saved: %s\n", recorder.ID())
			}
		}
	}

	conn, err := transport.Dial(ctx, logger, cfg.Server.Addr, tap)
	if err != nil {
		return err
	}
	defer conn.Close()

	store := session.New(logger)
	store.SetIdentity(opts.username, opts.observe)

	console := presentation.NewConsole(os.Stdout)
	track := newTracker(console)
	dispatcher := dispatch.New(logger, clock.New(), store, track, conn)

	if cfg.DebugAPI.Enabled {
		stopAPI := startDebugAPI(ctx, app)
		defer stopAPI()
	}

	if err := conn.Send(model.JoinRequest{Username: opts.username, Observe: opts.observe}); err != nil {
		return err
	}

	go inputLoop(ctx, os.Stdin, track, dispatcher, conn, cancel)

	runErr := dispatcher.Run(ctx, conn.Events())

	// Best effort: tell the server we are leaving before tearing down.
	_ = conn.Send(model.QuitAction{})
	_ = conn.Close()
	if finishRecording != nil {
		finishRecording()
	}

	if errors.Is(runErr, model.ErrNotConnected) || errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// newApp builds the storage-backed application components from the loaded
// configuration.
func newApp() (*factory.App, error) {
	fcfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
	}
	if cfg.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redis.DefaultConfig()
		redisCfg.URL = cfg.Storage.RedisURL
		fcfg.RedisConfig = &redisCfg
	}
	return factory.New(fcfg)
}

// startDebugAPI serves the replay inspection API until ctx is done. The
// returned function blocks until the server has shut down.
func startDebugAPI(ctx context.Context, app *factory.App) func() {
	router := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		ReplayService: app.ReplayService,
	})
	serverCfg := api.DefaultServerConfig()
	serverCfg.Host = cfg.DebugAPI.Host
	serverCfg.Port = cfg.DebugAPI.Port
	server := api.NewServer(router, serverCfg, logger)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.Start(); err != nil {
			logger.Warn("debug api stopped", slog.String("error", err.Error()))
		}
	}()
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	return func() {
		_ = server.Shutdown(context.Background())
		<-done
	}
}
