package points

import (
	"fmt"
	"strings"

	"pointsbot/pkg/catalog"
	"pointsbot/pkg/db"
)

const (
	textEnterAmount    = "Enter amount:"
	textEnterTimeSent  = "Enter time sent:"
	textEnterAvailed   = "What availed? (ex: Bo5 normal)"
	textNotRecognized  = "Not recognized, try again. Use /prices to see the list."
	textSubmitted      = "Submitted, pending admin approval."
	textSubmitFailed   = "Could not submit right now. Send the availed service again to retry."
	textCancelled      = "Submission cancelled."
	textNothingToAbort = "Nothing to cancel."
	textRejected       = "Rejected ❌"
	textAckApproved    = "Confirmed"
	textAckRejected    = "Rejected"
	textNoPending      = "No pending submissions."
)

func textApproved(points, balance int64) string {
	return fmt.Sprintf("Approved ✅ +%d pts (total %d)", points, balance)
}

// adminText is the administrator notification for a new submission.
func adminText(s *db.Submission) string {
	user := "@" + s.Username
	if s.Username == "" {
		user = fmt.Sprintf("id %d", s.UserID)
	}

	return fmt.Sprintf(
		"NEW PAYMENT #%s\n\n"+
			"User: %s\n"+
			"Availed: %s\n"+
			"Amount: %s\n"+
			"Time: %s\n"+
			"Points: %d",
		s.ID, user, s.Availed, s.Amount, s.TimeSent, s.Points,
	)
}

func ackText(outcome Outcome, s *db.Submission) string {
	verdict := textAckRejected
	if outcome == OutcomeApproved {
		verdict = textAckApproved
	}

	return fmt.Sprintf("%s #%s: %s, %d pts", verdict, s.ID, s.Availed, s.Points)
}

// PricesText lists the catalog for the /prices command.
func PricesText() string {
	var sb strings.Builder
	sb.WriteString("Points per availed service:\n\n")
	for _, e := range catalog.Entries() {
		fmt.Fprintf(&sb, "%s: %d\n", e.Descriptor, e.Points)
	}

	return sb.String()
}

// PointsText is the reply to the points query.
func PointsText(balance int64) string {
	return fmt.Sprintf("You have %d points ⭐", balance)
}
