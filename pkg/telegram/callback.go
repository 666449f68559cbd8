package telegram

import (
	"errors"
	"fmt"
	"strings"

	"pointsbot/pkg/points"
)

// Callback payloads are "ok_<id>" and "no_<id>".
const (
	approvePrefix = "ok_"
	rejectPrefix  = "no_"
)

var errBadCallback = errors.New("malformed callback data")

func decisionData(kind points.DecisionKind, submissionID string) string {
	switch kind {
	case points.Approve:
		return approvePrefix + submissionID
	case points.Reject:
		return rejectPrefix + submissionID
	default:
		return ""
	}
}

// parseDecision decodes a callback payload into a decision.
func parseDecision(data string) (points.Decision, error) {
	var d points.Decision

	switch {
	case strings.HasPrefix(data, approvePrefix):
		d = points.Decision{Kind: points.Approve, SubmissionID: strings.TrimPrefix(data, approvePrefix)}
	case strings.HasPrefix(data, rejectPrefix):
		d = points.Decision{Kind: points.Reject, SubmissionID: strings.TrimPrefix(data, rejectPrefix)}
	default:
		return d, fmt.Errorf("%w: %q", errBadCallback, data)
	}

	if d.SubmissionID == "" || strings.Contains(d.SubmissionID, "_") {
		return points.Decision{}, fmt.Errorf("%w: %q", errBadCallback, data)
	}

	return d, nil
}
