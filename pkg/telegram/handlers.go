package telegram

import (
	"context"

	"pointsbot/pkg/points"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// handleMessage routes commands and feeds any other text into the dialogue.
func (b *Bot) handleMessage(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	msg := update.Message
	if cmd, ok := parseCommand(msg.Text); ok {
		commandsProcessed.WithLabelValues(cmd).Inc()
		b.handleCommand(ctx, botAPI, msg, cmd)
		return
	}

	handled, err := b.points.HandleText(ctx, points.TextMessage{
		UserID:   msg.From.ID,
		Username: msg.From.Username,
		Text:     msg.Text,
	})
	if err != nil {
		errorsTotal.WithLabelValues("intake").Inc()
		b.logger.Error(ctx, "failed to handle dialogue message", "err", err, "user_id", msg.From.ID)
	}

	if handled {
		messagesProcessed.WithLabelValues("dialogue").Inc()
		return
	}

	messagesProcessed.WithLabelValues("unhandled").Inc()
	b.send(ctx, botAPI, msg.Chat.ID, textNoDialogue)
}

func (b *Bot) handleCommand(ctx context.Context, botAPI *bot.Bot, msg *models.Message, cmd string) {
	userID := msg.From.ID
	chatID := msg.Chat.ID

	var err error
	switch cmd {
	case cmdStart:
		b.points.Reset(userID)
		b.logger.Print(ctx, "user started bot", "user_id", userID, "username", msg.From.Username)
		b.send(ctx, botAPI, chatID, textHelp)
	case cmdHelp:
		b.send(ctx, botAPI, chatID, textHelp)
	case cmdPrices:
		b.send(ctx, botAPI, chatID, points.PricesText())
	case cmdPoints:
		b.handlePoints(ctx, botAPI, chatID, userID)
	case cmdSubmit:
		err = b.points.Begin(ctx, userID)
	case cmdCancel:
		err = b.points.Cancel(ctx, userID)
	case cmdPending:
		b.handlePending(ctx, botAPI, chatID, userID)
	}

	if err != nil {
		errorsTotal.WithLabelValues("intake").Inc()
		b.logger.Error(ctx, "failed to handle command", "err", err, "command", cmd, "user_id", userID)
	}
}

// handlePoints replies with the caller's ledger balance
func (b *Bot) handlePoints(ctx context.Context, botAPI *bot.Bot, chatID, userID int64) {
	balance, err := b.points.Balance(ctx, userID)
	if err != nil {
		errorsTotal.WithLabelValues("ledger").Inc()
		b.logger.Error(ctx, "failed to read balance", "err", err, "user_id", userID)
		b.send(ctx, botAPI, chatID, textPointsFailed)
		return
	}

	b.send(ctx, botAPI, chatID, points.PointsText(balance))
}

// handlePending resends decision prompts of all undecided submissions
func (b *Bot) handlePending(ctx context.Context, botAPI *bot.Bot, chatID, userID int64) {
	if userID != b.points.AdminID() {
		b.send(ctx, botAPI, chatID, textAdminOnly)
		return
	}

	n, err := b.points.ResendPending(ctx)
	if err != nil {
		errorsTotal.WithLabelValues("decision").Inc()
		b.logger.Error(ctx, "failed to resend pending submissions", "err", err, "sent", n)
		b.send(ctx, botAPI, chatID, textPendingFailed)
	}
}

// handleCallback handles approve/reject buttons pressed by the administrator
func (b *Bot) handleCallback(ctx context.Context, botAPI *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}

	callback := update.CallbackQuery
	b.logger.Print(ctx, "callback received", "data", callback.Data, "from", callback.From.ID)

	ans := b.decide(ctx, callback.From.ID, callback.Data, promptRef(callback))
	b.answer(ctx, botAPI, callback.ID, ans.text, ans.alert)
}

// callbackAnswer is the popup shown to whoever pressed a button.
type callbackAnswer struct {
	text  string
	alert bool
}

// decide authorizes the caller and applies the decision encoded in data.
// Only the administrator's presses reach the points manager.
func (b *Bot) decide(ctx context.Context, fromID int64, data string, ref points.MessageRef) callbackAnswer {
	if fromID != b.points.AdminID() {
		callbacksProcessed.WithLabelValues("forbidden").Inc()
		b.logger.Print(ctx, "decision from non-admin ignored", "from", fromID)
		return callbackAnswer{text: textDecisionForbidden, alert: true}
	}

	decision, err := parseDecision(data)
	if err != nil {
		callbacksProcessed.WithLabelValues("malformed").Inc()
		b.logger.Error(ctx, "bad callback data", "err", err)
		return callbackAnswer{text: textDecisionUnknown}
	}

	outcome, err := b.points.Decide(ctx, decision, ref)
	if err != nil {
		errorsTotal.WithLabelValues("decision").Inc()
		b.logger.Error(ctx, "decision failed", "err", err, "submission_id", decision.SubmissionID, "outcome", outcome)
	}

	switch {
	case outcome == "":
		callbacksProcessed.WithLabelValues("failed").Inc()
		return callbackAnswer{text: textDecisionFailed, alert: true}
	case outcome == points.OutcomeStale:
		callbacksProcessed.WithLabelValues(string(outcome)).Inc()
		return callbackAnswer{text: textDecisionStale}
	case err != nil:
		callbacksProcessed.WithLabelValues(string(outcome)).Inc()
		return callbackAnswer{text: "Saved as " + string(outcome) + ", but a notification failed.", alert: true}
	default:
		callbacksProcessed.WithLabelValues(string(outcome)).Inc()
		return callbackAnswer{text: "Done: " + string(outcome)}
	}
}

// promptRef returns the message carrying the pressed buttons.
func promptRef(callback *models.CallbackQuery) points.MessageRef {
	switch {
	case callback.Message.Message != nil:
		return points.MessageRef{ChatID: callback.Message.Message.Chat.ID, MessageID: callback.Message.Message.ID}
	case callback.Message.InaccessibleMessage != nil:
		return points.MessageRef{ChatID: callback.Message.InaccessibleMessage.Chat.ID, MessageID: callback.Message.InaccessibleMessage.MessageID}
	default:
		return points.MessageRef{ChatID: callback.From.ID}
	}
}

func (b *Bot) send(ctx context.Context, botAPI *bot.Bot, chatID int64, text string) {
	_, err := botAPI.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		errorsTotal.WithLabelValues("send").Inc()
		b.logger.Error(ctx, "failed to send message", "err", err, "chat_id", chatID)
	}
}

func (b *Bot) answer(ctx context.Context, botAPI *bot.Bot, callbackID, text string, alert bool) {
	_, err := botAPI.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		errorsTotal.WithLabelValues("answer_callback").Inc()
		b.logger.Error(ctx, "failed to answer callback", "err", err)
	}
}
