package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/memohai/bucketlink/internal/callback"
	"github.com/memohai/bucketlink/internal/logger"
	"github.com/memohai/bucketlink/internal/storage"
)

// Reply texts.
const (
	MsgListFailed   = "❌ Error fetching file list. Check your storage permissions."
	MsgNoFiles      = "📂 No files found in storage."
	MsgMenuExpired  = "⌛ This menu has expired. Send /files again."
	MsgLinkPrefix   = "✅ Here is your file link: "
	MsgHelp         = "Send /files to browse the bucket, pick a file, then choose how long the link should stay valid."
	msgLinkFailed   = "❌ Could not generate a link for %s."
	msgLinkDenied   = "❌ Access to %s was denied. Check your storage permissions."
	msgFileNotFound = "❌ File %s no longer exists."
	msgMenuFailed   = "❌ Could not build the menu."
)

// Commands handled by the dispatcher.
const (
	CommandFiles = "files"
	CommandStart = "start"
	CommandHelp  = "help"
)

// Dispatcher routes commands and button presses. It keeps no per-chat state:
// everything needed for a step travels in the callback payload.
type Dispatcher struct {
	lister    KeyLister
	linker    Linker
	replier   Replier
	codec     *callback.Codec
	presenter *Presenter
	log       *slog.Logger
}

// NewDispatcher wires a Dispatcher from its collaborators.
func NewDispatcher(log *slog.Logger, lister KeyLister, linker Linker, replier Replier, codec *callback.Codec) *Dispatcher {
	return &Dispatcher{
		lister:    lister,
		linker:    linker,
		replier:   replier,
		codec:     codec,
		presenter: NewPresenter(codec),
		log:       log,
	}
}

// requestLogger returns the request logger carried by ctx, falling back to the one
// given at construction.
func (d *Dispatcher) requestLogger(ctx context.Context) *slog.Logger {
	return logger.FromContext(ctx, d.log).With(slog.String("component", "dispatcher"))
}

// HandleCommand handles a slash command. Storage failures become replies; the
// returned error is only non-nil when the reply itself could not be sent.
func (d *Dispatcher) HandleCommand(ctx context.Context, cmd Command) error {
	log := d.requestLogger(ctx).With(
		slog.Int64("chat_id", cmd.ChatID),
		slog.String("command", cmd.Name),
		slog.Int64("user_id", cmd.UserID),
	)
	switch strings.ToLower(cmd.Name) {
	case CommandFiles:
		return d.handleFiles(ctx, log, cmd.ChatID)
	case CommandStart, CommandHelp:
		return d.replier.SendText(ctx, cmd.ChatID, MsgHelp)
	default:
		log.Debug("ignoring unknown command")
		return nil
	}
}

func (d *Dispatcher) handleFiles(ctx context.Context, log *slog.Logger, chatID int64) error {
	keys, err := d.lister.Keys(ctx)
	if err != nil {
		log.Warn("list failed", slog.Any("error", err))
		return d.replier.SendText(ctx, chatID, MsgListFailed)
	}
	if len(keys) == 0 {
		return d.replier.SendText(ctx, chatID, MsgNoFiles)
	}
	menu, err := d.presenter.RenderFileMenu(keys)
	if err != nil {
		log.Error("render file menu failed", slog.Any("error", err))
		return d.replier.SendText(ctx, chatID, msgMenuFailed)
	}
	log.Info("file menu sent", slog.Int("files", len(keys)))
	return d.replier.SendMenu(ctx, chatID, menu)
}

// HandleCallback handles a button press. Unrecognized payloads are logged and
// dropped without a chat reply.
func (d *Dispatcher) HandleCallback(ctx context.Context, cb Callback) error {
	log := d.requestLogger(ctx).With(
		slog.Int64("chat_id", cb.ChatID),
		slog.String("callback_id", cb.ID),
		slog.Int64("user_id", cb.UserID),
	)
	if err := d.replier.AckCallback(ctx, cb.ID); err != nil {
		log.Warn("ack callback failed", slog.Any("error", err))
	}

	payload, err := d.codec.Decode(cb.Data)
	switch {
	case errors.Is(err, callback.ErrExpired):
		log.Info("expired menu reference", slog.String("data", cb.Data))
		return d.replier.SendText(ctx, cb.ChatID, MsgMenuExpired)
	case err != nil:
		log.Warn("dropping unrecognized callback payload",
			slog.String("data", cb.Data),
			slog.String("username", cb.Username),
		)
		return nil
	}

	switch payload.Action {
	case callback.ActionBrowse:
		menu, err := d.presenter.RenderDurationMenu(payload.Key)
		if err != nil {
			log.Error("render duration menu failed", slog.String("key", payload.Key), slog.Any("error", err))
			return d.replier.SendText(ctx, cb.ChatID, msgMenuFailed)
		}
		return d.replier.SendMenu(ctx, cb.ChatID, menu)
	case callback.ActionLink:
		return d.handleLink(ctx, log, cb.ChatID, payload)
	default:
		log.Warn("dropping callback with unknown action", slog.String("action", string(payload.Action)))
		return nil
	}
}

func (d *Dispatcher) handleLink(ctx context.Context, log *slog.Logger, chatID int64, payload callback.Payload) error {
	log = log.With(slog.String("key", payload.Key), slog.String("duration", string(payload.Duration)))
	url, err := d.linker.Link(ctx, payload.Duration, payload.Key)
	if err != nil {
		log.Warn("link generation failed",
			slog.String("kind", storage.KindOf(err).String()),
			slog.Any("error", err),
		)
		if storage.IsNotFound(err) {
			return d.replier.SendText(ctx, chatID, fmt.Sprintf(msgFileNotFound, payload.Key))
		}
		if storage.IsPermissionDenied(err) {
			return d.replier.SendText(ctx, chatID, fmt.Sprintf(msgLinkDenied, payload.Key))
		}
		return d.replier.SendText(ctx, chatID, fmt.Sprintf(msgLinkFailed, payload.Key))
	}
	log.Info("link issued")
	return d.replier.SendText(ctx, chatID, MsgLinkPrefix+url)
}
