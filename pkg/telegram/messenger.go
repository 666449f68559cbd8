package telegram

import (
	"context"

	"pointsbot/pkg/points"

	"github.com/go-telegram/bot"
)

// sender delivers points notifications through the Bot API.
type sender struct {
	api *bot.Bot
}

func newSender(api *bot.Bot) *sender {
	return &sender{api: api}
}

func (s *sender) SendMessage(ctx context.Context, chatID int64, text string, prompt *points.DecisionPrompt) (points.MessageRef, error) {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	if prompt != nil {
		params.ReplyMarkup = decisionKeyboard(prompt.SubmissionID)
	}

	msg, err := s.api.SendMessage(ctx, params)
	if err != nil {
		return points.MessageRef{}, err
	}

	return points.MessageRef{ChatID: msg.Chat.ID, MessageID: msg.ID}, nil
}

// EditMessage replaces the text and drops the decision buttons.
func (s *sender) EditMessage(ctx context.Context, ref points.MessageRef, text string) error {
	_, err := s.api.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		Text:      text,
	})

	return err
}
