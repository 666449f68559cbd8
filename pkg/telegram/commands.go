package telegram

import "strings"

const (
	cmdStart   = "start"
	cmdHelp    = "help"
	cmdPoints  = "points"
	cmdSubmit  = "submit"
	cmdCancel  = "cancel"
	cmdPrices  = "prices"
	cmdPending = "pending"
)

var knownCommands = map[string]bool{
	cmdStart:   true,
	cmdHelp:    true,
	cmdPoints:  true,
	cmdSubmit:  true,
	cmdCancel:  true,
	cmdPrices:  true,
	cmdPending: true,
}

const (
	textHelp = "/submit - submit payment\n" +
		"/points - check points\n" +
		"/prices - points per availed service\n" +
		"/cancel - cancel a submission in progress"
	textUnsupported   = "Only text messages are supported. Use /help for the list of commands."
	textNoDialogue    = "Use /submit to submit a payment or /help for the list of commands."
	textPointsFailed  = "Could not read your points, try again later."
	textAdminOnly     = "This command is for the administrator only."
	textPendingFailed = "Could not list pending submissions."

	textDecisionForbidden = "Only the administrator can decide."
	textDecisionUnknown   = "Unknown action"
	textDecisionFailed    = "Failed to save the decision, try again."
	textDecisionStale     = "Already decided."
)

// parseCommand extracts a known command name from "/name", "/name@bot" or
// "/name args". Unknown commands are reported as not a command.
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	name, _, _ := strings.Cut(text[1:], " ")
	name, _, _ = strings.Cut(name, "@")
	name = strings.ToLower(name)

	return name, knownCommands[name]
}
