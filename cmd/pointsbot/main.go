package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pointsbot/pkg/app"

	"github.com/joho/godotenv"
	"github.com/vmkteam/embedlog"
)

const (
	appName         = "pointsbot"
	shutdownTimeout = 10 * time.Second
)

var (
	flConfigPath = flag.String("config", "config.toml", "Path to config file")
	flVerbose    = flag.Bool("verbose", false, "enable debug output")
	flJSONLogs   = flag.Bool("json", false, "enable json output")
	flDev        = flag.Bool("dev", false, "enable dev mode")
)

func main() {
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sl := embedlog.NewLogger(*flVerbose, *flJSONLogs)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		exitOnError(ctx, sl, "failed to load .env", err)
	}

	cfg, err := app.LoadConfig(*flConfigPath)
	if err != nil {
		exitOnError(ctx, sl, "failed to load config", err)
	}
	if *flDev {
		cfg.Server.IsDevel = true
		cfg.Telegram.Debug = true
	}

	a, err := app.New(ctx, appName, sl, cfg)
	if err != nil {
		exitOnError(ctx, sl, "failed to create app", err)
	}

	if err = serve(ctx, cancel, a, sl); err != nil {
		exitOnError(context.Background(), sl, "app stopped with error", err)
	}
}

type service interface {
	Run(ctx context.Context) error
	Shutdown(timeout time.Duration) error
}

// serve runs a until ctx is done or Run fails, then shuts it down. The
// returned error carries the Run failure, if any, and the shutdown error.
func serve(ctx context.Context, cancel context.CancelFunc, a service, sl embedlog.Logger) error {
	runErr := make(chan error, 1)
	go func() {
		err := a.Run(ctx)
		if err != nil {
			sl.Error(ctx, "app run failed", "err", err)
		}
		runErr <- err
		cancel()
	}()

	<-ctx.Done()
	sl.Print(context.Background(), "shutting down")

	err := a.Shutdown(shutdownTimeout)

	// Run has already returned if it failed
	select {
	case rerr := <-runErr:
		err = errors.Join(rerr, err)
	default:
	}

	return err
}

func exitOnError(ctx context.Context, sl embedlog.Logger, msg string, err error) {
	sl.Error(ctx, msg, "err", err)
	os.Exit(1)
}
