package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pointsbot/pkg/db"
	"pointsbot/pkg/points"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/vmkteam/embedlog"
)

type Bot struct {
	api        *bot.Bot
	logger     embedlog.Logger
	points     *points.Manager
	debug      bool
	sessionTTL time.Duration

	// inflight tracks running handlers and the sweeper; no new work is
	// admitted once closing is set.
	mu       sync.Mutex
	closing  bool
	inflight sync.WaitGroup
}

type Config struct {
	Token      string
	Debug      bool
	AdminID    int64
	SessionTTL time.Duration
}

// New creates a new Telegram bot instance
func New(ctx context.Context, cfg Config, repo *db.Repo, logger embedlog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram token is required")
	}
	if cfg.AdminID <= 0 {
		return nil, errors.New("telegram admin id is required")
	}

	opts := []bot.Option{
		bot.WithDefaultHandler(defaultHandler(logger)),
	}

	if cfg.Debug {
		opts = append(opts, bot.WithDebug())
	}

	api, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	pm, err := points.NewManager(repo, newSender(api), points.Config{
		AdminID:    cfg.AdminID,
		SessionTTL: cfg.SessionTTL,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create points manager: %w", err)
	}

	b := &Bot{
		api:        api,
		logger:     logger,
		points:     pm,
		debug:      cfg.Debug,
		sessionTTL: cfg.SessionTTL,
	}

	b.registerHandlers()

	return b, nil
}

// Start starts the bot with long polling and blocks until ctx is done.
func (b *Bot) Start(ctx context.Context) error {
	me, err := b.api.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	if b.enter() {
		go func() {
			defer b.inflight.Done()
			b.points.RunSessionSweeper(ctx, sweepInterval(b.sessionTTL))
		}()
	}

	b.logger.Print(ctx, "telegram bot started", "username", me.Username, "id", me.ID, "admin_id", b.points.AdminID())
	b.api.Start(ctx)

	return nil
}

// Stop refuses new updates and waits for running handlers and the session
// sweeper until ctx is done. The store must stay open until Stop returns.
func (b *Bot) Stop(ctx context.Context) error {
	b.logger.Print(ctx, "stopping telegram bot")

	b.mu.Lock()
	b.closing = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram handlers still running: %w", ctx.Err())
	}
}

// enter admits one unit of work, it reports false after Stop.
func (b *Bot) enter() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closing {
		return false
	}
	b.inflight.Add(1)

	return true
}

// track wraps h so Stop can wait for it.
func (b *Bot) track(h bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, api *bot.Bot, update *models.Update) {
		if !b.enter() {
			return
		}
		defer b.inflight.Done()

		h(ctx, api, update)
	}
}

// registerHandlers registers all update handlers. Commands are routed inside
// handleMessage so the dispatch order does not depend on the library.
func (b *Bot) registerHandlers() {
	b.api.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, b.track(b.handleCallback))
	b.api.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, b.track(b.handleMessage))
}

// sweepInterval is how often expired dialogues are dropped, 0 disables it.
func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}

	return max(ttl/4, time.Minute)
}

// defaultHandler handles updates without a text, like stickers or photos.
func defaultHandler(logger embedlog.Logger) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}

		messagesProcessed.WithLabelValues("other").Inc()
		if update.Message.From != nil {
			logger.Print(ctx, "unsupported message", "from", update.Message.From.ID)
		}

		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: update.Message.Chat.ID,
			Text:   textUnsupported,
		})
		if err != nil {
			logger.Error(ctx, "failed to send message", "err", err)
		}
	}
}
