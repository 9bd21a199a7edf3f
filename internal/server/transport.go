package server

import "context"

// MessageRef identifies a message delivered through the transport.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Chat is the conversation a command was sent from.
type Chat struct {
	ID    int64
	Title string
}

// Transport is the set of chat capabilities the bot relies on.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) (MessageRef, error)
	SendMarkdown(ctx context.Context, chatID int64, text string) (MessageRef, error)
	SendTyping(ctx context.Context, chatID int64) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
	PinMessage(ctx context.Context, ref MessageRef) error
}

// Request is an inbound command.
type Request struct {
	ID      string
	Command string
	Args    string
	Chat    Chat
	Sender  string
	Message MessageRef

	// chatID is the internal chat id, set once the chat has been authorized.
	chatID int64
}
