package points

import "context"

// MessageRef addresses a message that was sent earlier.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// DecisionPrompt asks the transport to attach approve/reject buttons for a
// submission to the outgoing message.
type DecisionPrompt struct {
	SubmissionID string
}

// Messenger is the outbound side of the chat transport.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, prompt *DecisionPrompt) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, text string) error
}
