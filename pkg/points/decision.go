package points

import (
	"errors"
	"fmt"
)

var ErrUnknownDecision = errors.New("unknown decision kind")

// DecisionKind is the administrator's binary choice.
type DecisionKind int

const (
	Approve DecisionKind = iota + 1
	Reject
)

func (k DecisionKind) String() string {
	switch k {
	case Approve:
		return "approve"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("DecisionKind(%d)", int(k))
	}
}

// Decision is a decoded administrator decision on a pending submission.
type Decision struct {
	Kind         DecisionKind
	SubmissionID string
}

func (d Decision) validate() error {
	switch d.Kind {
	case Approve, Reject:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownDecision, d.Kind)
	}

	if d.SubmissionID == "" {
		return errors.New("submission id is required")
	}

	return nil
}

// Outcome is what a decision did to the stored state.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
	// OutcomeStale means the submission was already decided or never existed.
	OutcomeStale Outcome = "stale"
)
