package telegram

import (
	"pointsbot/pkg/points"

	"github.com/go-telegram/bot/models"
)

// decisionKeyboard returns the approve/reject buttons for a submission
func decisionKeyboard(submissionID string) models.ReplyMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "✅ Confirm", CallbackData: decisionData(points.Approve, submissionID)},
				{Text: "❌ Reject", CallbackData: decisionData(points.Reject, submissionID)},
			},
		},
	}
}
