// Package bot turns chat commands and button presses into bucket listings,
// menus and links. It knows nothing about Telegram; the telegram package
// converts updates into Command and Callback events and implements Replier.
package bot

import (
	"context"

	"github.com/memohai/bucketlink/internal/callback"
)

// Command is a slash command such as /files.
type Command struct {
	ChatID int64
	// Name is the command without the leading slash or @botname suffix.
	Name     string
	UserID   int64
	Username string
}

// Callback is an inline-button press.
type Callback struct {
	ID       string
	ChatID   int64
	Data     string
	UserID   int64
	Username string
}

// KeyLister lists the object keys of the configured bucket.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Linker produces a link for key with the given validity.
type Linker interface {
	Link(ctx context.Context, d callback.Duration, key string) (string, error)
}

// Replier sends output back to the chat.
type Replier interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMenu(ctx context.Context, chatID int64, menu Menu) error
	// AckCallback answers the button press so the client stops its spinner.
	AckCallback(ctx context.Context, callbackID string) error
}
