package points

import (
	"context"
	"errors"
	"fmt"

	"pointsbot/pkg/catalog"
	"pointsbot/pkg/db"
)

// TextMessage is an inbound plain text from a user.
type TextMessage struct {
	UserID   int64
	Username string
	Text     string
}

// Begin starts a new submission dialogue for the user, replacing any
// dialogue already in progress.
func (m *Manager) Begin(ctx context.Context, userID int64) error {
	sl := m.sessions.lock(userID)
	defer m.sessions.unlock(userID, sl)

	sl.session = &Session{
		Stage:     StageAwaitingAmount,
		UpdatedAt: m.sessions.now(),
	}

	return m.reply(ctx, userID, textEnterAmount)
}

// Cancel drops the user's dialogue and tells the user about it.
func (m *Manager) Cancel(ctx context.Context, userID int64) error {
	text := textNothingToAbort
	if m.sessions.Clear(userID) {
		text = textCancelled
	}

	return m.reply(ctx, userID, text)
}

// Reset silently drops the user's dialogue.
func (m *Manager) Reset(userID int64) {
	m.sessions.Clear(userID)
}

// HandleText feeds a text into the user's dialogue. It returns false when the
// user has no active dialogue and the text was left untouched.
func (m *Manager) HandleText(ctx context.Context, msg TextMessage) (bool, error) {
	sl := m.sessions.lock(msg.UserID)
	defer m.sessions.unlock(msg.UserID, sl)

	s := sl.session
	if s == nil {
		return false, nil
	}
	s.UpdatedAt = m.sessions.now()

	switch s.Stage {
	case StageAwaitingAmount:
		s.Amount = msg.Text
		s.Stage = StageAwaitingTimeSent
		return true, m.reply(ctx, msg.UserID, textEnterTimeSent)
	case StageAwaitingTimeSent:
		s.TimeSent = msg.Text
		s.Stage = StageAwaitingAvailed
		return true, m.reply(ctx, msg.UserID, textEnterAvailed)
	case StageAwaitingAvailed:
		done, err := m.submit(ctx, msg, s)
		if done {
			sl.session = nil
		}
		return true, err
	default:
		sl.session = nil
		return false, fmt.Errorf("invalid dialogue stage %d", s.Stage)
	}
}

// submit completes the dialogue. It reports whether the session is finished;
// on failure the session stays at the availed step so the user can retry.
func (m *Manager) submit(ctx context.Context, msg TextMessage, s *Session) (bool, error) {
	pts, ok := catalog.Lookup(msg.Text)
	if !ok {
		unrecognizedDescriptors.Inc()
		return false, m.reply(ctx, msg.UserID, textNotRecognized)
	}

	var sub *db.Submission
	err := m.repo.Update(ctx, func(doc *db.Document) error {
		id := m.newID()
		for doc.Pending[id] != nil {
			id = m.newID()
		}

		sub = &db.Submission{
			ID:       id,
			UserID:   msg.UserID,
			Username: msg.Username,
			Amount:   s.Amount,
			TimeSent: s.TimeSent,
			Availed:  catalog.Normalize(msg.Text),
			Points:   pts,
		}
		doc.Pending[id] = sub

		return nil
	})
	if err != nil {
		errorsTotal.WithLabelValues("store").Inc()
		m.log.Error(ctx, "failed to save submission", "err", err, "user_id", msg.UserID)
		return false, errors.Join(err, m.reply(ctx, msg.UserID, textSubmitFailed))
	}

	_, err = m.messenger.SendMessage(ctx, m.adminID, adminText(sub), &DecisionPrompt{SubmissionID: sub.ID})
	if err != nil {
		errorsTotal.WithLabelValues("notify_admin").Inc()
		m.log.Error(ctx, "failed to notify admin, rolling back submission", "err", err, "submission_id", sub.ID)
		return false, errors.Join(err, m.rollback(ctx, sub.ID), m.reply(ctx, msg.UserID, textSubmitFailed))
	}

	submissionsCreated.Inc()
	m.log.Print(ctx, "submission created",
		"submission_id", sub.ID,
		"user_id", sub.UserID,
		"availed", sub.Availed,
		"points", sub.Points,
	)

	return true, m.reply(ctx, msg.UserID, textSubmitted)
}

// rollback removes a submission the administrator never heard about.
func (m *Manager) rollback(ctx context.Context, id string) error {
	err := m.repo.Update(ctx, func(doc *db.Document) error {
		if _, ok := doc.Pending[id]; !ok {
			return db.ErrNoChange
		}
		delete(doc.Pending, id)
		return nil
	})
	if err != nil {
		errorsTotal.WithLabelValues("store").Inc()
		m.log.Error(ctx, "failed to roll back submission", "err", err, "submission_id", id)
	}

	return err
}

func (m *Manager) reply(ctx context.Context, userID int64, text string) error {
	if _, err := m.messenger.SendMessage(ctx, userID, text, nil); err != nil {
		errorsTotal.WithLabelValues("prompt").Inc()
		m.log.Error(ctx, "failed to send message", "err", err, "user_id", userID)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}
