// Package points implements the payment claim workflow: the per-user intake
// dialogue that creates pending submissions and the administrator decision
// that credits the points ledger.
package points

import (
	"context"
	"errors"
	"time"

	"pointsbot/pkg/db"

	"github.com/google/uuid"
	"github.com/vmkteam/embedlog"
)

type Config struct {
	// AdminID is the chat id that receives submissions and decides on them.
	AdminID int64
	// SessionTTL drops dialogues idle for longer, 0 disables expiry.
	SessionTTL time.Duration
}

type Manager struct {
	repo      *db.Repo
	messenger Messenger
	log       embedlog.Logger
	adminID   int64
	sessions  *SessionManager
	newID     func() string
}

func NewManager(repo *db.Repo, messenger Messenger, cfg Config, log embedlog.Logger) (*Manager, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if messenger == nil {
		return nil, errors.New("messenger is required")
	}
	if cfg.AdminID <= 0 {
		return nil, errors.New("admin id must be positive")
	}

	return &Manager{
		repo:      repo,
		messenger: messenger,
		log:       log,
		adminID:   cfg.AdminID,
		sessions:  NewSessionManager(cfg.SessionTTL),
		newID:     shortID,
	}, nil
}

// AdminID returns the only user allowed to decide on submissions.
func (m *Manager) AdminID() int64 {
	return m.adminID
}

// Sessions exposes the dialogue sessions, mostly for inspection.
func (m *Manager) Sessions() *SessionManager {
	return m.sessions
}

// RunSessionSweeper periodically drops expired dialogues until ctx is done.
func (m *Manager) RunSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.sessions.Sweep(); n > 0 {
				sessionsExpired.Add(float64(n))
				m.log.Print(ctx, "expired dialogue sessions dropped", "count", n)
			}
		}
	}
}

// shortID returns the first 8 hex chars of a random UUID.
func shortID() string {
	return uuid.NewString()[:8]
}
