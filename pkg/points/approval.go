package points

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"pointsbot/pkg/db"
)

// Decide applies an administrator decision. The ledger credit (if any) and
// the removal from pending are saved together, so a submission is credited at
// most once. Decisions on ids that are no longer pending change nothing and
// notify nobody.
//
// ref is the administrator's prompt, it is edited to show the result.
func (m *Manager) Decide(ctx context.Context, d Decision, ref MessageRef) (Outcome, error) {
	if err := d.validate(); err != nil {
		return "", err
	}

	var (
		sub     *db.Submission
		balance int64
	)
	err := m.repo.Update(ctx, func(doc *db.Document) error {
		s, ok := doc.Pending[d.SubmissionID]
		if !ok {
			return db.ErrNoChange
		}

		switch d.Kind {
		case Approve:
			balance = credit(doc, s.UserID, s.Points)
		case Reject:
		}

		delete(doc.Pending, d.SubmissionID)
		sub = s

		return nil
	})
	if err != nil {
		errorsTotal.WithLabelValues("store").Inc()
		m.log.Error(ctx, "failed to apply decision", "err", err, "submission_id", d.SubmissionID, "decision", d.Kind)
		return "", err
	}

	if sub == nil {
		decisionsTotal.WithLabelValues(string(OutcomeStale)).Inc()
		m.log.Print(ctx, "decision on submission that is not pending", "submission_id", d.SubmissionID, "decision", d.Kind)
		return OutcomeStale, nil
	}

	outcome, text := OutcomeRejected, textRejected
	if d.Kind == Approve {
		outcome, text = OutcomeApproved, textApproved(sub.Points, balance)
		pointsCredited.Add(float64(sub.Points))
	}
	decisionsTotal.WithLabelValues(string(outcome)).Inc()

	m.log.Print(ctx, "submission decided",
		"submission_id", sub.ID,
		"user_id", sub.UserID,
		"outcome", outcome,
		"points", sub.Points,
	)

	// state is committed, delivery failures below are reported but do not undo it
	var errs []error
	if _, err = m.messenger.SendMessage(ctx, sub.UserID, text, nil); err != nil {
		errorsTotal.WithLabelValues("notify_user").Inc()
		m.log.Error(ctx, "failed to notify user about decision", "err", err, "submission_id", sub.ID, "user_id", sub.UserID)
		errs = append(errs, err)
	}

	if err = m.messenger.EditMessage(ctx, ref, ackText(outcome, sub)); err != nil {
		errorsTotal.WithLabelValues("ack_admin").Inc()
		m.log.Error(ctx, "failed to update admin prompt", "err", err, "submission_id", sub.ID)
		errs = append(errs, err)
	}

	return outcome, errors.Join(errs...)
}

// Pending returns the submissions waiting for a decision ordered by id.
func (m *Manager) Pending(ctx context.Context) ([]db.Submission, error) {
	var list []db.Submission
	err := m.repo.View(ctx, func(doc *db.Document) error {
		list = make([]db.Submission, 0, len(doc.Pending))
		for _, s := range doc.Pending {
			list = append(list, *s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	return list, nil
}

// ResendPending sends the decision prompt of every pending submission to the
// administrator again and returns how many were sent.
func (m *Manager) ResendPending(ctx context.Context) (int, error) {
	list, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	if len(list) == 0 {
		return 0, m.reply(ctx, m.adminID, textNoPending)
	}

	for i := range list {
		s := &list[i]
		if _, err = m.messenger.SendMessage(ctx, m.adminID, adminText(s), &DecisionPrompt{SubmissionID: s.ID}); err != nil {
			errorsTotal.WithLabelValues("notify_admin").Inc()
			return i, fmt.Errorf("failed to resend submission %s: %w", s.ID, err)
		}
	}

	return len(list), nil
}
