package channel

import (
	"context"
	"errors"
)

var ErrUnsupportedOperation = errors.New("channel operation is not supported")

type Type string

const (
	Telegram Type = "telegram"
)

var SupportedChannels = []Type{
	Telegram,
}

// Channel is a runtime adapter between Edison and a chat platform.
// Implementations receive inbound events and send outbound responses for a
// specific provider.
type Channel interface {
	// ID returns the unique configured channel identifier.
	ID() string

	// Type returns the channel provider type used for routing.
	Type() Type

	// Start begins the channel receive loop and should block until the
	// context is canceled or a fatal error occurs.
	Start(ctx context.Context) error

	// Stop gracefully shuts down channel resources.
	Stop(ctx context.Context) error

	// SendMessage sends text content to the target chat. chatID is
	// provider-specific and is passed as a string for portability.
	SendMessage(ctx context.Context, chatID string, content string) error

	// RegisterMessageHandler registers the inbound message callback, invoked
	// for each incoming normalized Message.
	RegisterMessageHandler(handler func(ctx context.Context, msg *Message) error) error
}

type Message struct {
	ID          string
	ChannelID   string
	ChannelType Type
	UserID      string
	ChatID      string
	Content     string
}
