package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"golang.org/x/sync/errgroup"

	"schedboard/internal/capture"
	"schedboard/internal/config"
	"schedboard/internal/display"
	appLog "schedboard/internal/log"
	"schedboard/internal/mode"
	"schedboard/internal/poll"
	"schedboard/internal/render"
	"schedboard/internal/source"
	"schedboard/internal/web"
)

const version = "0.3.0"

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to config file." type:"path" default:"/etc/schedboard/config.yaml"`
	Listen  string `help:"HTTP listen address (overrides config if set)."`
	Once    bool   `help:"Render one cycle to stdout and exit."`
	Debug   bool   `help:"Enable debug logging."`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("schedboard"),
		kong.Description("Kiosk schedule board for shift and room-booking systems"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	if err := run(); err != nil {
		appLog.Error("schedboard failed", err)
		appLog.Sync()
		os.Exit(1)
	}
	appLog.Sync()
}

func run() error {
	conf, err := config.Load(CLI.Config)
	if err != nil {
		return fmt.Errorf("load config %s: %w", CLI.Config, err)
	}

	// CLI --listen overrides config file listen if provided.
	if CLI.Listen != "" {
		conf.Listen = CLI.Listen
	}
	level := appLog.Level(conf.Log.Level)
	if CLI.Debug {
		level = appLog.LevelDebug
	}
	appLog.Setup(appLog.Options{Level: level, File: conf.Log.File})
	appLog.Info("schedboard starting", "version", version)

	if err := conf.Validate(); err != nil {
		return err
	}
	loc, err := conf.Location()
	if err != nil {
		return err
	}

	sources, err := mode.BuildSources(conf, loc, source.NewHTTPClient())
	if err != nil {
		return err
	}
	plan, err := mode.NewResolver(conf, sources).Plan(conf.Display.LeftMode, conf.Display.RightMode)
	if err != nil {
		return err
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"left_mode", conf.Display.LeftMode,
		"right_mode", conf.Display.RightMode,
		"single", plan.Single,
		"first_seconds", conf.Refresh.FirstSeconds,
		"initial_seconds", conf.Refresh.InitialSeconds,
		"max_seconds", conf.Refresh.MaxSeconds,
		"capture", conf.Capture.Enabled,
		"once", CLI.Once,
	)

	orch := &render.Orchestrator{
		Plan:        plan,
		LeftHeader:  conf.Display.LeftTitle,
		RightHeader: conf.Display.RightTitle,
		Now:         func() time.Time { return time.Now().In(loc) },
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	if CLI.Once {
		out, err := orch.Render(ctx)
		if err != nil {
			return err
		}
		fmt.Println(out.HTML)
		return nil
	}

	board := display.NewBoard()
	clock := display.NewClock(board, loc)
	if err := clock.Start(); err != nil {
		return err
	}
	defer clock.Stop()

	loop := &poll.Loop{
		Renderer: orch,
		Surface:  board,
		State: poll.NewState(
			time.Duration(conf.Refresh.InitialSeconds)*time.Second,
			time.Duration(conf.Refresh.MaxSeconds)*time.Second,
		),
		First: time.Duration(conf.Refresh.FirstSeconds) * time.Second,
	}
	if conf.Capture.Enabled {
		loop.AfterSuccess = captureHook(conf)
	}

	server := web.NewServer(conf, board)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Serve(gctx, nil) })
	g.Go(func() error {
		err := loop.Run(gctx)
		// The loop ending (cleanly or not) takes the server down with it.
		cancel()
		return err
	})

	err = g.Wait()
	appLog.Info("schedboard exiting")
	return err
}

// captureHook snapshots the board after each successful cycle. Capture
// failures are logged and never fail the cycle.
func captureHook(conf *config.Config) func(context.Context, render.Output) {
	target := boardURL(conf.Listen, conf.BasicAuth)
	return func(ctx context.Context, _ render.Output) {
		err := capture.BoardPNG(ctx, capture.Options{
			URL:        target,
			OutputPath: conf.Capture.OutputPath,
			Width:      conf.Capture.Width,
			Height:     conf.Capture.Height,
		})
		if err != nil {
			appLog.Error("board capture failed", err, "listen", conf.Listen)
			return
		}
		appLog.Debug("board captured", "path", conf.Capture.OutputPath)
	}
}

// boardURL is the loopback URL of the board page for a listen address,
// carrying basic auth credentials when they are configured.
func boardURL(listen string, auth *config.BasicAuthConfig) string {
	u := url.URL{Scheme: "http", Host: listen, Path: "/"}
	if host, port, err := net.SplitHostPort(listen); err == nil {
		if host == "" || host == "0.0.0.0" || host == "::" {
			host = "127.0.0.1"
		}
		u.Host = net.JoinHostPort(host, port)
	}
	if auth != nil && auth.Username != "" && auth.Password != "" {
		u.User = url.UserPassword(auth.Username, auth.Password)
	}
	return u.String()
}
