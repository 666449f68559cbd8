package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pointsbot/pkg/db"
	"pointsbot/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/vmkteam/appkit"
	"github.com/vmkteam/embedlog"
)

type App struct {
	embedlog.Logger
	appName string
	cfg     Config
	repo    *db.Repo
	echo    *echo.Echo
	tgBot   *telegram.Bot
}

// New opens the store and creates the bot. The store is closed again if the
// bot cannot be created.
func New(ctx context.Context, appName string, sl embedlog.Logger, cfg Config) (*App, error) {
	store, err := db.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	a := &App{
		appName: appName,
		cfg:     cfg,
		repo:    db.NewRepo(store, sl),
		echo:    appkit.NewEcho(),
		Logger:  sl,
	}

	tgBot, err := telegram.New(ctx, telegram.Config{
		Token:      cfg.Telegram.Token,
		Debug:      cfg.Telegram.Debug,
		AdminID:    cfg.Telegram.AdminID,
		SessionTTL: cfg.Intake.SessionTTL,
	}, a.repo, sl)
	if err != nil {
		return nil, errors.Join(err, a.repo.Close())
	}
	a.tgBot = tgBot

	return a, nil
}

// Run is a function that runs application. It blocks until ctx is done or
// the http listener fails.
func (a *App) Run(ctx context.Context) error {
	go func() {
		if err := a.tgBot.Start(ctx); err != nil {
			a.Error(ctx, "telegram bot error", "err", err)
		}
	}()

	if a.cfg.Server.Port == 0 {
		a.Print(ctx, "http listener disabled")
		<-ctx.Done()
		return nil
	}

	a.registerMetrics()
	a.registerHandlers()
	a.registerDebugHandlers()
	a.registerMetadata()

	err := a.runHTTPServer(ctx, a.cfg.Server.Host, a.cfg.Server.Port)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// Shutdown is a function that gracefully stops HTTP server and flushes the store.
func (a *App) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// handlers may still write to the store until Stop returns
	stopErr := a.tgBot.Stop(ctx)

	return errors.Join(stopErr, a.echo.Shutdown(ctx), a.repo.Close())
}

// registerMetadata is a function that registers meta info from service.
func (a *App) registerMetadata() {
	opts := appkit.MetadataOpts{
		HasPublicAPI:  false, // no public API, only the Telegram bot
		HasPrivateAPI: false,
		Services: []appkit.ServiceMetadata{
			// long polling runs in its own goroutine
			appkit.NewServiceMetadata("telegram-bot", appkit.MetadataServiceTypeAsync),
		},
	}

	md := appkit.NewMetadataManager(opts)
	md.RegisterMetrics()

	a.echo.GET("/debug/metadata", md.Handler)
}
